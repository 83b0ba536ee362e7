package realtime

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// newIdentity returns a short random identity taken from a v4 UUID's random bits.
func newIdentity() string {
	u := uuid.New()
	return hex.EncodeToString(u[:4])
}

// uniqueIDLocked regenerates on the unlikely collision with a live identity.
func (h *Hub) uniqueIDLocked() string {
	for {
		id := h.newID()
		if _, taken := h.clients[id]; !taken && id != "" {
			return id
		}
	}
}

// lookupLocked returns the open connection with the given identity, or nil.
func (h *Hub) lookupLocked(id string) *Client {
	c, ok := h.clients[id]
	if !ok || !c.open {
		return nil
	}
	return c
}
