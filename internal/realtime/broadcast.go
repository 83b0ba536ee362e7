package realtime

import "go.uber.org/zap"

// startBroadcastLocked admits c as a broadcaster when nobody is live or when c is the
// approved guest. Anyone else is told join-denied.
func (h *Hub) startBroadcastLocked(c *Client) {
	if _, live := h.broadcasters[c.ID]; live {
		return
	}
	if len(h.broadcasters) > 0 && c.ID != h.approvedGuest {
		h.sendLocked(c, encode(typeOnly{Type: TypeJoinDenied}))
		return
	}
	h.broadcasters[c.ID] = c
	if h.recorder != nil {
		h.recorder.BroadcastStarted(c.ID, c.Username)
	}
	h.logger.Info("broadcast started", zap.String("client_id", c.ID), zap.Int("broadcasters", len(h.broadcasters)))
	h.publishUsersLocked()
}

// endBroadcastLocked is the only path out of the broadcasting state, used by
// end-broadcast and by disconnect.
func (h *Hub) endBroadcastLocked(c *Client) {
	delete(h.broadcasters, c.ID)
	delete(h.thumbs, c.ID)
	h.broadcastAllLocked(encode(idMsg{Type: TypeBye, ID: c.ID}), c)

	if h.approvedGuest == c.ID || len(h.broadcasters) <= 1 {
		h.approvedGuest = ""
	}
	h.watchers.dropHost(c.ID)
	h.publishListenersLocked(c.ID)

	if h.recorder != nil {
		h.recorder.BroadcastEnded(c.ID)
	}
	h.logger.Info("broadcast ended", zap.String("client_id", c.ID), zap.Int("broadcasters", len(h.broadcasters)))
	h.publishUsersLocked()
}

// joinRequestLocked forwards a guest request to a live host. While a guest is already
// approved, or when the host is not live, the requester is denied at once.
func (h *Hub) joinRequestLocked(c *Client, hostID string) {
	if h.approvedGuest != "" {
		h.sendLocked(c, encode(typeOnly{Type: TypeJoinDenied}))
		return
	}
	host, live := h.broadcasters[hostID]
	if !live || !host.open {
		h.sendLocked(c, encode(typeOnly{Type: TypeJoinDenied}))
		return
	}
	h.sendLocked(host, encode(joinRequestMsg{Type: TypeJoinRequest, ID: c.ID, User: c.Username}))
}

// approveJoinLocked lets a live broadcaster fill the single guest slot.
func (h *Hub) approveJoinLocked(c *Client, guestID string) {
	if h.approvedGuest != "" {
		return
	}
	if _, live := h.broadcasters[c.ID]; !live {
		return
	}
	guest := h.lookupLocked(guestID)
	if guest == nil {
		return
	}
	h.approvedGuest = guest.ID
	h.sendLocked(guest, encode(typeOnly{Type: TypeJoinApproved}))
}

func (h *Hub) denyJoinLocked(guestID string) {
	h.sendLocked(h.lookupLocked(guestID), encode(typeOnly{Type: TypeJoinDenied}))
}
