package realtime

// relayLocked forwards offer/answer/candidate/bye to the target identity, stamped with
// the sender's identity. Payloads are not inspected; unknown or closed targets drop.
func (h *Hub) relayLocked(c *Client, f *frame) {
	dest := h.lookupLocked(f.ID)
	if dest == nil {
		return
	}
	out := signalMsg{Type: f.Type, ID: c.ID}
	if present(f.SDP) {
		out.SDP = f.SDP
	}
	if present(f.Candidate) {
		out.Candidate = f.Candidate
	}
	h.sendLocked(dest, encode(out))
}

// captionLocked sends a live caption to the sender's current watchers only.
func (h *Hub) captionLocked(c *Client, text string) {
	if h.watchers.count(c.ID) == 0 {
		return
	}
	h.sendToWatchersLocked(c.ID, encode(captionMsg{Type: TypeCaption, ID: c.ID, Text: text}))
}
