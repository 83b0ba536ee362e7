package streams

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/chaines-io/chat-hub/internal/models"
)

// SessionStore is the persistence the recorder writes to (implemented by *Repository).
type SessionStore interface {
	Create(ctx context.Context, identity, username string) (*models.BroadcastSession, error)
	UpdatePeakListeners(ctx context.Context, sessionID int64, count int) error
	End(ctx context.Context, sessionID int64) error
}

type eventKind int

const (
	eventStarted eventKind = iota
	eventListeners
	eventEnded
)

type event struct {
	kind     eventKind
	identity string
	username string
	count    int
}

// Recorder logs broadcast lifecycles to the session store. The hub calls it with its
// lock held, so events are queued and written by Run; a full queue drops events.
type Recorder struct {
	store  SessionStore
	events chan event
	logger *zap.Logger

	// identity -> open session id; owned by Run
	open map[string]int64
}

// NewRecorder creates a recorder with room for buffer pending events.
func NewRecorder(store SessionStore, buffer int, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if buffer <= 0 {
		buffer = 256
	}
	return &Recorder{store: store, events: make(chan event, buffer), logger: logger, open: make(map[string]int64)}
}

func (r *Recorder) BroadcastStarted(identity, username string) {
	r.push(event{kind: eventStarted, identity: identity, username: username})
}

func (r *Recorder) ListenersChanged(identity string, count int) {
	r.push(event{kind: eventListeners, identity: identity, count: count})
}

func (r *Recorder) BroadcastEnded(identity string) {
	r.push(event{kind: eventEnded, identity: identity})
}

func (r *Recorder) push(e event) {
	select {
	case r.events <- e:
	default:
		r.logger.Warn("broadcast session event dropped", zap.String("identity", e.identity))
	}
}

// Run writes queued events until ctx is done.
func (r *Recorder) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-r.events:
			r.apply(ctx, e)
		}
	}
}

func (r *Recorder) apply(ctx context.Context, e event) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	switch e.kind {
	case eventStarted:
		s, err := r.store.Create(ctx, e.identity, e.username)
		if err != nil {
			r.logger.Error("create broadcast session", zap.String("identity", e.identity), zap.Error(err))
			return
		}
		r.open[e.identity] = s.ID
	case eventListeners:
		id, ok := r.open[e.identity]
		if !ok || e.count == 0 {
			return
		}
		if err := r.store.UpdatePeakListeners(ctx, id, e.count); err != nil {
			r.logger.Error("update peak listeners", zap.Int64("session_id", id), zap.Error(err))
		}
	case eventEnded:
		id, ok := r.open[e.identity]
		if !ok {
			return
		}
		delete(r.open, e.identity)
		if err := r.store.End(ctx, id); err != nil {
			r.logger.Error("end broadcast session", zap.Int64("session_id", id), zap.Error(err))
		}
	}
}
