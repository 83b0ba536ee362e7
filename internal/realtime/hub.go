package realtime

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/chaines-io/chat-hub/internal/chat"
)

const (
	// PingInterval and PongWait are used for heartbeat (seconds).
	PingInterval = 30
	PongWait     = 60

	storeTimeout = 10 * time.Second
)

// ChatService is the chat gateway as seen by the hub (implemented by *chat.Gateway).
type ChatService interface {
	History(ctx context.Context) ([]chat.MessageView, error)
	Search(ctx context.Context, query string) ([]chat.MessageView, error)
	PostMessage(ctx context.Context, in chat.PostInput) (*chat.MessageView, error)
	PostComment(ctx context.Context, messageID int64, user, text string) (*chat.CommentEvent, error)
	PostLike(ctx context.Context, messageID int64, user string) (*chat.LikeEvent, error)
}

// ChatPublisher fans chat events out across instances. The subscriber side calls
// Hub.BroadcastRaw on every instance, this one included.
type ChatPublisher interface {
	PublishChatEvent(ctx context.Context, payload []byte) error
}

// SessionRecorder observes broadcast lifecycles (implemented by streams.Recorder).
// Calls are made with the hub lock held and must not block.
type SessionRecorder interface {
	BroadcastStarted(identity, username string)
	ListenersChanged(identity string, count int)
	BroadcastEnded(identity string)
}

// Options configures a Hub.
type Options struct {
	Welcome   string
	Publisher ChatPublisher
	Recorder  SessionRecorder
}

// Hub owns every piece of shared realtime state: the connection registry, the
// broadcaster set with its approved guest, the watcher index and the thumbnail cache.
// One mutex serialises registration, disconnects and every inbound frame, so frames
// are applied one at a time in arrival order.
type Hub struct {
	mu sync.Mutex

	clients       map[string]*Client
	seq           uint64
	broadcasters  map[string]*Client
	approvedGuest string
	watchers      *watchIndex
	thumbs        map[string]string

	chat      ChatService
	publisher ChatPublisher
	recorder  SessionRecorder
	welcome   string
	logger    *zap.Logger
	newID     func() string
}

// NewHub creates a hub backed by the chat gateway.
func NewHub(logger *zap.Logger, chatSvc ChatService, opts Options) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	welcome := opts.Welcome
	if welcome == "" {
		welcome = "Connected to CHAINeS WS"
	}
	return &Hub{
		clients:      make(map[string]*Client),
		broadcasters: make(map[string]*Client),
		watchers:     newWatchIndex(),
		thumbs:       make(map[string]string),
		chat:         chatSvc,
		publisher:    opts.Publisher,
		recorder:     opts.Recorder,
		welcome:      welcome,
		logger:       logger,
		newID:        newIdentity,
	}
}

// Register assigns the client its identity and sends the welcome, the chat history,
// the identity itself and the cached thumbnails, then republishes presence.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c.ID = h.uniqueIDLocked()
	h.seq++
	c.seq = h.seq
	c.open = true
	h.clients[c.ID] = c

	h.sendLocked(c, encode(systemMsg{Type: TypeSystem, Text: h.welcome}))
	h.sendLocked(c, encode(historyMsg{Type: TypeHistory, Messages: h.historyLocked(c, "")}))
	h.sendLocked(c, encode(idMsg{Type: TypeID, ID: c.ID}))
	h.publishUsersLocked()
	for id, thumb := range h.thumbs {
		h.sendLocked(c, encode(thumbMsg{Type: TypeThumb, ID: id, Thumb: thumb}))
	}
	h.logger.Debug("client connected", zap.String("client_id", c.ID))
}

// Unregister tears down everything keyed by the client's identity. Safe to call twice.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !c.open {
		return
	}
	h.teardownLocked(c)
	h.logger.Debug("client disconnected", zap.String("client_id", c.ID))
}

// teardownLocked is the single disconnect routine: registry removal, implicit
// end-broadcast, watcher edges, then presence.
func (h *Hub) teardownLocked(c *Client) {
	delete(h.clients, c.ID)
	c.open = false
	close(c.send)

	if _, ok := h.broadcasters[c.ID]; ok {
		h.endBroadcastLocked(c)
	} else if h.approvedGuest == c.ID {
		h.approvedGuest = ""
	}
	for _, hostID := range h.watchers.dropWatcher(c.ID) {
		h.publishListenersLocked(hostID)
	}
	h.publishUsersLocked()
}

// Handle parses one inbound frame and dispatches it. Malformed frames are dropped.
func (h *Hub) Handle(c *Client, raw []byte) {
	f, ok := parseFrame(raw)
	if !ok {
		h.logger.Debug("dropped malformed frame", zap.String("client_id", c.ID))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if !c.open {
		return
	}

	switch f.Type {
	case TypeJoin:
		c.Username = f.User
		h.publishUsersLocked()
	case TypeBroadcaster:
		h.startBroadcastLocked(c)
	case TypeEndBroadcast:
		if _, ok := h.broadcasters[c.ID]; ok {
			h.endBroadcastLocked(c)
		}
	case TypeJoinRequest:
		h.joinRequestLocked(c, f.ID)
	case TypeApproveJoin:
		h.approveJoinLocked(c, f.ID)
	case TypeDenyJoin:
		h.denyJoinLocked(f.ID)
	case TypeWatcher:
		h.watchLocked(c, f.ID)
	case TypeUnwatcher:
		h.unwatchLocked(c, f.ID)
	case TypeThumb:
		if thumb, ok := f.thumb(); ok {
			h.updateThumbLocked(c, thumb)
		}
	case TypeCaption:
		if f.Text != nil && *f.Text != "" {
			h.captionLocked(c, *f.Text)
		}
	case TypeOffer, TypeAnswer, TypeCandidate, TypeBye:
		h.relayLocked(c, f)
	case TypeChat:
		h.postMessageLocked(c, f)
	case TypeComment:
		h.postCommentLocked(c, f)
	case TypeLike:
		h.postLikeLocked(c, f)
	case TypeSearch:
		h.sendLocked(c, encode(historyMsg{Type: TypeHistory, Messages: h.historyLocked(c, f.Q)}))
	default:
		h.logger.Debug("dropped unknown frame", zap.String("client_id", c.ID), zap.String("type", f.Type))
	}
}

// BroadcastRaw sends an already-encoded frame to every open connection.
// The Redis subscriber uses it for chat events published by any instance.
func (h *Hub) BroadcastRaw(payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.broadcastAllLocked(payload, nil)
}

// ConnectionCount returns the number of registered connections.
func (h *Hub) ConnectionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// sendLocked delivers to one connection. Closed or full recipients drop the frame.
func (h *Hub) sendLocked(c *Client, payload []byte) {
	if c == nil || !c.open || payload == nil {
		return
	}
	select {
	case c.send <- payload:
	default:
		h.logger.Debug("send buffer full, frame dropped", zap.String("client_id", c.ID))
	}
}

// broadcastAllLocked delivers to every open connection except skip.
func (h *Hub) broadcastAllLocked(payload []byte, skip *Client) {
	for _, c := range h.clients {
		if c != skip {
			h.sendLocked(c, payload)
		}
	}
}

// sendToWatchersLocked delivers only to the current watchers of hostID.
func (h *Hub) sendToWatchersLocked(hostID string, payload []byte) {
	for _, id := range h.watchers.watchersOf(hostID) {
		h.sendLocked(h.clients[id], payload)
	}
}

func storeContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), storeTimeout)
}
