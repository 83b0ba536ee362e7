package realtime

import (
	"errors"

	"go.uber.org/zap"

	"github.com/chaines-io/chat-hub/internal/chat"
)

// historyLocked loads history (or search results) for one connection. A store failure
// is logged and yields an empty list so the connection still gets its frames.
func (h *Hub) historyLocked(c *Client, query string) []chat.MessageView {
	if h.chat == nil {
		return []chat.MessageView{}
	}
	ctx, cancel := storeContext()
	defer cancel()
	list, err := h.chat.Search(ctx, query)
	if err != nil {
		h.logger.Error("load history", zap.String("client_id", c.ID), zap.Error(err))
		return []chat.MessageView{}
	}
	return list
}

func (h *Hub) postMessageLocked(c *Client, f *frame) {
	if h.chat == nil {
		return
	}
	ctx, cancel := storeContext()
	defer cancel()
	echo, err := h.chat.PostMessage(ctx, f.chatInput())
	if err != nil {
		h.logChatError("chat", c, err)
		return
	}
	h.fanOutChatLocked(encode(echo))
}

func (h *Hub) postCommentLocked(c *Client, f *frame) {
	if h.chat == nil {
		return
	}
	text := ""
	if f.Text != nil {
		text = *f.Text
	}
	ctx, cancel := storeContext()
	defer cancel()
	ev, err := h.chat.PostComment(ctx, f.messageID(), f.User, text)
	if err != nil {
		h.logChatError("comment", c, err)
		return
	}
	h.fanOutChatLocked(encode(ev))
}

func (h *Hub) postLikeLocked(c *Client, f *frame) {
	if h.chat == nil {
		return
	}
	ctx, cancel := storeContext()
	defer cancel()
	ev, err := h.chat.PostLike(ctx, f.messageID(), f.User)
	if err != nil {
		h.logChatError("like", c, err)
		return
	}
	h.fanOutChatLocked(encode(ev))
}

// fanOutChatLocked sends a chat event to every open connection, sender included.
// With a publisher configured the event goes through Redis and each instance's
// subscriber delivers it; if publishing fails it is delivered locally.
func (h *Hub) fanOutChatLocked(payload []byte) {
	if h.publisher != nil {
		ctx, cancel := storeContext()
		err := h.publisher.PublishChatEvent(ctx, payload)
		cancel()
		if err == nil {
			return
		}
		h.logger.Warn("publish chat event, delivering locally", zap.Error(err))
	}
	h.broadcastAllLocked(payload, nil)
}

func (h *Hub) logChatError(kind string, c *Client, err error) {
	switch {
	case errors.Is(err, chat.ErrPayloadTooLarge), errors.Is(err, chat.ErrInvalidInput):
		h.logger.Debug("chat frame rejected", zap.String("type", kind), zap.String("client_id", c.ID), zap.Error(err))
	default:
		h.logger.Error("chat store failure", zap.String("type", kind), zap.String("client_id", c.ID), zap.Error(err))
	}
}
