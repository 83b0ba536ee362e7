package chat

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/chaines-io/chat-hub/internal/models"
)

// SQLiteStore is the single-file chat store. Timestamps are stored as Unix milliseconds.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a chat store on an open SQLite handle.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// ListMessages returns messages ordered by id, optionally filtered by a case-insensitive
// text substring. Folding uses unicode_lower, registered by database.OpenSQLite.
func (s *SQLiteStore) ListMessages(ctx context.Context, query string) ([]models.ChatMessage, error) {
	const base = `SELECT id, user, room, message, image, file, file_name, file_type, timestamp
		FROM chat_messages`
	q := base + ` ORDER BY id`
	var args []any
	if query != "" {
		q = base + ` WHERE unicode_lower(COALESCE(message, '')) LIKE '%' || ? || '%' ESCAPE '\' ORDER BY id`
		args = append(args, strings.ToLower(escapeLike(query)))
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var out []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		var room, image, file, fileName, fileType sql.NullString
		var ts int64
		if err := rows.Scan(&m.ID, &m.User, &room, &m.Text, &image, &file, &fileName, &fileType, &ts); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.Room = nullString(room)
		m.Image = nullString(image)
		m.File = nullString(file)
		m.FileName = nullString(fileName)
		m.FileType = nullString(fileType)
		m.Timestamp = time.UnixMilli(ts)
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListComments returns all comments ordered by id.
func (s *SQLiteStore) ListComments(ctx context.Context) ([]models.Comment, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, message_id, user, text, timestamp FROM comments ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	var out []models.Comment
	for rows.Next() {
		var c models.Comment
		var ts int64
		if err := rows.Scan(&c.ID, &c.MessageID, &c.User, &c.Text, &ts); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		c.Timestamp = time.UnixMilli(ts)
		out = append(out, c)
	}
	return out, rows.Err()
}

// LikeCounts returns the number of likes per message.
func (s *SQLiteStore) LikeCounts(ctx context.Context) (map[int64]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT message_id, COUNT(*) FROM likes GROUP BY message_id`)
	if err != nil {
		return nil, fmt.Errorf("query likes: %w", err)
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var id int64
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("scan like count: %w", err)
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

// InsertMessage appends a message and sets its ID.
func (s *SQLiteStore) InsertMessage(ctx context.Context, m *models.ChatMessage) error {
	const q = `INSERT INTO chat_messages (user, room, message, image, file, file_name, file_type, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := s.db.ExecContext(ctx, q, m.User, m.Room, m.Text, m.Image, m.File, m.FileName, m.FileType, m.Timestamp.UnixMilli())
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	m.ID, err = res.LastInsertId()
	return err
}

// InsertComment appends a comment and sets its ID.
func (s *SQLiteStore) InsertComment(ctx context.Context, c *models.Comment) error {
	const q = `INSERT INTO comments (message_id, user, text, timestamp) VALUES (?, ?, ?, ?)`
	res, err := s.db.ExecContext(ctx, q, c.MessageID, c.User, c.Text, c.Timestamp.UnixMilli())
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	c.ID, err = res.LastInsertId()
	return err
}

// InsertLike records a like; a repeated (message, user) pair is ignored.
func (s *SQLiteStore) InsertLike(ctx context.Context, l models.Like) error {
	const q = `INSERT OR IGNORE INTO likes (message_id, user, timestamp) VALUES (?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, q, l.MessageID, l.User, l.Timestamp.UnixMilli()); err != nil {
		return fmt.Errorf("insert like: %w", err)
	}
	return nil
}

// CountLikes returns the number of likes on a message.
func (s *SQLiteStore) CountLikes(ctx context.Context, messageID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM likes WHERE message_id = ?`, messageID).Scan(&n)
	return n, err
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

// escapeLike escapes LIKE wildcards so the query is matched literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
