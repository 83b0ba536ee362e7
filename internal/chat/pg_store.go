package chat

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chaines-io/chat-hub/internal/models"
)

// PgStore is the PostgreSQL chat store.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore creates a chat store backed by a pgx pool.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

// ListMessages returns messages ordered by id, optionally filtered by a text substring.
func (s *PgStore) ListMessages(ctx context.Context, query string) ([]models.ChatMessage, error) {
	const base = `SELECT id, "user", room, message, image, file, file_name, file_type, timestamp
		FROM chat_messages`
	sql := base + ` ORDER BY id`
	var args []any
	if query != "" {
		sql = base + ` WHERE message ILIKE '%' || $1 || '%' ORDER BY id`
		args = append(args, escapeLike(query))
	}
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var out []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.User, &m.Room, &m.Text, &m.Image, &m.File, &m.FileName, &m.FileType, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListComments returns all comments ordered by id.
func (s *PgStore) ListComments(ctx context.Context) ([]models.Comment, error) {
	const q = `SELECT id, message_id, "user", text, timestamp FROM comments ORDER BY id`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	var out []models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.MessageID, &c.User, &c.Text, &c.Timestamp); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// LikeCounts returns the number of likes per message.
func (s *PgStore) LikeCounts(ctx context.Context) (map[int64]int, error) {
	const q = `SELECT message_id, COUNT(*) FROM likes GROUP BY message_id`
	rows, err := s.pool.Query(ctx, q)
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
func (s *PgStore) InsertMessage(ctx context.Context, m *models.ChatMessage) error {
	const q = `INSERT INTO chat_messages ("user", room, message, image, file, file_name, file_type, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	return s.pool.QueryRow(ctx, q, m.User, m.Room, m.Text, m.Image, m.File, m.FileName, m.FileType, m.Timestamp).
		Scan(&m.ID)
}

// InsertComment appends a comment and sets its ID.
func (s *PgStore) InsertComment(ctx context.Context, c *models.Comment) error {
	const q = `INSERT INTO comments (message_id, "user", text, timestamp)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	return s.pool.QueryRow(ctx, q, c.MessageID, c.User, c.Text, c.Timestamp).Scan(&c.ID)
}

// InsertLike records a like; a repeated (message, user) pair is ignored.
func (s *PgStore) InsertLike(ctx context.Context, l models.Like) error {
	const q = `INSERT INTO likes (message_id, "user", timestamp) VALUES ($1, $2, $3)
		ON CONFLICT (message_id, "user") DO NOTHING`
	_, err := s.pool.Exec(ctx, q, l.MessageID, l.User, l.Timestamp)
	return err
}

// CountLikes returns the number of likes on a message.
func (s *PgStore) CountLikes(ctx context.Context, messageID int64) (int, error) {
	const q = `SELECT COUNT(*) FROM likes WHERE message_id = $1`
	var n int
	err := s.pool.QueryRow(ctx, q, messageID).Scan(&n)
	return n, err
}
