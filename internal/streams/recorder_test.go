package streams

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/chaines-io/chat-hub/internal/models"
)

type memSessions struct {
	mu       sync.Mutex
	next     int64
	sessions map[int64]*models.BroadcastSession
	listErr  error
}

func newMemSessions() *memSessions {
	return &memSessions{sessions: make(map[int64]*models.BroadcastSession)}
}

func (m *memSessions) Create(_ context.Context, identity, username string) (*models.BroadcastSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	s := &models.BroadcastSession{ID: m.next, Identity: identity, Username: username, StartedAt: time.Now()}
	m.sessions[s.ID] = s
	return s, nil
}

func (m *memSessions) UpdatePeakListeners(_ context.Context, id int64, count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s := m.sessions[id]; s != nil && count > s.PeakListeners {
		s.PeakListeners = count
	}
	return nil
}

func (m *memSessions) End(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	m.sessions[id].EndedAt = &now
	return nil
}

func (m *memSessions) ListRecent(_ context.Context, limit int) ([]models.BroadcastSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []models.BroadcastSession
	for id := m.next; id > 0 && len(out) < limit; id-- {
		out = append(out, *m.sessions[id])
	}
	return out, nil
}

func (m *memSessions) get(id int64) models.BroadcastSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.sessions[id]
}

func TestRecorder_TracksPeakAndEnd(t *testing.T) {
	store := newMemSessions()
	rec := NewRecorder(store, 16, zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go rec.Run(ctx)

	rec.BroadcastStarted("abcd1234", "hal")
	rec.ListenersChanged("abcd1234", 1)
	rec.ListenersChanged("abcd1234", 3)
	rec.ListenersChanged("abcd1234", 2)
	rec.ListenersChanged("unknown", 9)
	rec.BroadcastEnded("abcd1234")

	require.Eventually(t, func() bool { return store.get(1).EndedAt != nil }, 2*time.Second, 5*time.Millisecond)
	s := store.get(1)
	require.Equal(t, "hal", s.Username)
	require.Equal(t, 3, s.PeakListeners)
}

func TestRecorder_DropsWhenFull(t *testing.T) {
	rec := NewRecorder(newMemSessions(), 1, zaptest.NewLogger(t))
	rec.BroadcastStarted("a", "")
	rec.BroadcastStarted("b", "")
	require.Len(t, rec.events, 1)
}
