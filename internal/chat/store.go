// Package chat persists chat messages, comments and likes and assembles history.
package chat

import (
	"context"

	"github.com/chaines-io/chat-hub/internal/models"
)

// Store is the durable chat log. Implementations: PgStore (pgx) and SQLiteStore.
// Every call is self-contained; no cross-call transaction is required.
type Store interface {
	// ListMessages returns messages ordered by ascending id. A non-empty query keeps only
	// messages whose text contains it, case-insensitively.
	ListMessages(ctx context.Context, query string) ([]models.ChatMessage, error)
	// ListComments returns every comment ordered by ascending id.
	ListComments(ctx context.Context) ([]models.Comment, error)
	// LikeCounts returns message id -> number of likes, omitting messages with none.
	LikeCounts(ctx context.Context) (map[int64]int, error)
	InsertMessage(ctx context.Context, m *models.ChatMessage) error
	InsertComment(ctx context.Context, c *models.Comment) error
	// InsertLike ignores a duplicate (messageID, user) pair.
	InsertLike(ctx context.Context, l models.Like) error
	CountLikes(ctx context.Context, messageID int64) (int, error)
}
