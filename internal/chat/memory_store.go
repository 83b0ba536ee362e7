package chat

import (
	"context"
	"strings"
	"sync"

	"github.com/chaines-io/chat-hub/internal/models"
)

// MemoryStore keeps the chat log in process memory. It is used by tests and by
// DB_DRIVER=memory for throwaway local runs; nothing survives a restart.
type MemoryStore struct {
	mu       sync.Mutex
	messages []models.ChatMessage
	comments []models.Comment
	likes    map[int64]map[string]struct{}
	nextMsg  int64
	nextCmt  int64

	// Fail, when set, is returned by every call. Tests use it to simulate store outages.
	Fail error
}

// NewMemoryStore creates an empty in-memory chat store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{likes: make(map[int64]map[string]struct{})}
}

func (s *MemoryStore) ListMessages(_ context.Context, query string) ([]models.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	q := strings.ToLower(query)
	out := make([]models.ChatMessage, 0, len(s.messages))
	for _, m := range s.messages {
		if q == "" || strings.Contains(strings.ToLower(m.Text), q) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *MemoryStore) ListComments(context.Context) ([]models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	return append([]models.Comment(nil), s.comments...), nil
}

func (s *MemoryStore) LikeCounts(context.Context) (map[int64]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	counts := make(map[int64]int, len(s.likes))
	for id, users := range s.likes {
		counts[id] = len(users)
	}
	return counts, nil
}

func (s *MemoryStore) InsertMessage(_ context.Context, m *models.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	s.nextMsg++
	m.ID = s.nextMsg
	s.messages = append(s.messages, *m)
	return nil
}

func (s *MemoryStore) InsertComment(_ context.Context, c *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	s.nextCmt++
	c.ID = s.nextCmt
	s.comments = append(s.comments, *c)
	return nil
}

func (s *MemoryStore) InsertLike(_ context.Context, l models.Like) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	users := s.likes[l.MessageID]
	if users == nil {
		users = make(map[string]struct{})
		s.likes[l.MessageID] = users
	}
	users[l.User] = struct{}{}
	return nil
}

func (s *MemoryStore) CountLikes(_ context.Context, messageID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return 0, s.Fail
	}
	return len(s.likes[messageID]), nil
}
