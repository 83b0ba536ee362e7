package realtime

// updateThumbLocked caches a broadcaster's latest still and shows it to everyone.
// Late joiners receive the cache from Register.
func (h *Hub) updateThumbLocked(c *Client, thumb string) {
	if _, live := h.broadcasters[c.ID]; !live {
		return
	}
	h.thumbs[c.ID] = thumb
	h.broadcastAllLocked(encode(thumbMsg{Type: TypeThumb, ID: c.ID, Thumb: thumb}), nil)
}
