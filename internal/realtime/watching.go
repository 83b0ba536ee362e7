package realtime

// watchLocked attaches c to a live host: the host learns of the watcher and every
// connection gets the new listener count. Non-live hosts are ignored.
func (h *Hub) watchLocked(c *Client, hostID string) {
	host, live := h.broadcasters[hostID]
	if !live || !host.open {
		return
	}
	h.sendLocked(host, encode(idMsg{Type: TypeWatcher, ID: c.ID}))
	h.watchers.add(c.ID, hostID)
	h.publishListenersLocked(hostID)
}

func (h *Hub) unwatchLocked(c *Client, hostID string) {
	if h.watchers.remove(c.ID, hostID) {
		h.publishListenersLocked(hostID)
	}
}
