package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/chaines-io/chat-hub/internal/models"
)

var (
	// ErrPayloadTooLarge is returned when an image or file exceeds its encoded limit.
	ErrPayloadTooLarge = errors.New("chat payload too large")
	// ErrInvalidInput is returned when a required field is missing.
	ErrInvalidInput = errors.New("invalid chat input")
)

// Limits bounds attachments by their encoded (data URL) length.
type Limits struct {
	MaxImageEncoded int
	MaxFileEncoded  int
}

// DefaultLimits allow roughly 15MB images and 35MB files once base64 overhead is removed.
var DefaultLimits = Limits{MaxImageEncoded: 20_000_000, MaxFileEncoded: 50_000_000}

// PostInput is an inbound chat message before it is stored.
type PostInput struct {
	User     string
	Room     string
	Text     string
	Image    string
	File     string
	FileName string
	FileType string
	TS       int64 // client Unix millis; 0 means receipt time
}

// Gateway validates and persists chat traffic and assembles history views.
type Gateway struct {
	store  Store
	limits Limits
	logger *zap.Logger
	now    func() time.Time
}

// NewGateway creates a chat gateway over store.
func NewGateway(store Store, limits Limits, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	if limits.MaxImageEncoded <= 0 {
		limits.MaxImageEncoded = DefaultLimits.MaxImageEncoded
	}
	if limits.MaxFileEncoded <= 0 {
		limits.MaxFileEncoded = DefaultLimits.MaxFileEncoded
	}
	return &Gateway{store: store, limits: limits, logger: logger, now: time.Now}
}

// History returns every message with nested comments and like counts, ordered by id.
func (g *Gateway) History(ctx context.Context) ([]MessageView, error) {
	return g.assemble(ctx, "")
}

// Search is History filtered by a case-insensitive text substring. An empty query is History.
func (g *Gateway) Search(ctx context.Context, query string) ([]MessageView, error) {
	return g.assemble(ctx, strings.TrimSpace(query))
}

func (g *Gateway) assemble(ctx context.Context, query string) ([]MessageView, error) {
	messages, err := g.store.ListMessages(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	comments, err := g.store.ListComments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	likes, err := g.store.LikeCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("like counts: %w", err)
	}

	byMessage := make(map[int64][]CommentView)
	for _, c := range comments {
		byMessage[c.MessageID] = append(byMessage[c.MessageID], commentView(c))
	}
	out := make([]MessageView, 0, len(messages))
	for _, m := range messages {
		v := messageView(m)
		v.Likes = likes[m.ID]
		if cs := byMessage[m.ID]; cs != nil {
			v.Comments = cs
		}
		out = append(out, v)
	}
	return out, nil
}

// PostMessage stores a chat message and returns the echo to fan out.
// Oversized attachments return ErrPayloadTooLarge and nothing is stored.
func (g *Gateway) PostMessage(ctx context.Context, in PostInput) (*MessageView, error) {
	if len(in.Image) > g.limits.MaxImageEncoded || len(in.File) > g.limits.MaxFileEncoded {
		return nil, ErrPayloadTooLarge
	}
	ts := g.now()
	if in.TS > 0 {
		ts = time.UnixMilli(in.TS)
	}
	m := models.ChatMessage{
		User:      in.User,
		Room:      optional(in.Room),
		Text:      in.Text,
		Image:     optional(in.Image),
		File:      optional(in.File),
		FileName:  optional(in.FileName),
		FileType:  optional(in.FileType),
		Timestamp: ts,
	}
	if err := g.store.InsertMessage(ctx, &m); err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	echo := messageView(m).Echo()
	g.logger.Debug("chat message stored", zap.Int64("id", m.ID), zap.String("user", m.User))
	return &echo, nil
}

// PostComment stores a comment. The message is not required to exist.
func (g *Gateway) PostComment(ctx context.Context, messageID int64, user, text string) (*CommentEvent, error) {
	if messageID == 0 || text == "" {
		return nil, ErrInvalidInput
	}
	c := models.Comment{MessageID: messageID, User: user, Text: text, Timestamp: g.now()}
	if err := g.store.InsertComment(ctx, &c); err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	return &CommentEvent{
		Type:      "comment",
		ID:        c.ID,
		MessageID: c.MessageID,
		User:      c.User,
		Text:      c.Text,
		TS:        c.Timestamp.UnixMilli(),
	}, nil
}

// PostLike records a like idempotently and returns the message's new total.
func (g *Gateway) PostLike(ctx context.Context, messageID int64, user string) (*LikeEvent, error) {
	if messageID == 0 {
		return nil, ErrInvalidInput
	}
	if err := g.store.InsertLike(ctx, models.Like{MessageID: messageID, User: user, Timestamp: g.now()}); err != nil {
		return nil, fmt.Errorf("insert like: %w", err)
	}
	n, err := g.store.CountLikes(ctx, messageID)
	if err != nil {
		return nil, fmt.Errorf("count likes: %w", err)
	}
	return &LikeEvent{Type: "like", MessageID: messageID, Count: n}, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
