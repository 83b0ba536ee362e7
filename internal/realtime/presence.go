package realtime

import "sort"

// publishUsersLocked recomputes the roster and sends it to every open connection.
// Connections that have not sent a join (empty username) are not listed.
func (h *Hub) publishUsersLocked() {
	members := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		if c.open && c.Username != "" {
			members = append(members, c)
		}
	}
	sort.Slice(members, func(i, j int) bool { return members[i].seq < members[j].seq })

	users := make([]rosterEntry, 0, len(members))
	for _, c := range members {
		_, live := h.broadcasters[c.ID]
		users = append(users, rosterEntry{Name: c.Username, ID: c.ID, Live: live})
	}
	h.broadcastAllLocked(encode(usersMsg{Type: TypeUsers, Users: users, Count: len(users)}), nil)
}

// publishListenersLocked sends a host's listener count to every open connection.
func (h *Hub) publishListenersLocked(hostID string) {
	count := h.watchers.count(hostID)
	h.broadcastAllLocked(encode(listenersMsg{Type: TypeListeners, ID: hostID, Count: count}), nil)
	if h.recorder != nil {
		h.recorder.ListenersChanged(hostID, count)
	}
}
