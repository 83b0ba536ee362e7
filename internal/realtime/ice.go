package realtime

import (
	"github.com/gin-gonic/gin"
	"github.com/pion/webrtc/v3"

	"github.com/chaines-io/chat-hub/pkg/response"
)

var defaultICE = []webrtc.ICEServer{{URLs: []string{"stun:stun.l.google.com:19302"}}}

// ParseICEServers turns configured STUN/TURN URLs into ICE servers for peers.
func ParseICEServers(urls []string) []webrtc.ICEServer {
	out := make([]webrtc.ICEServer, 0, len(urls))
	for _, u := range urls {
		if u == "" {
			continue
		}
		out = append(out, webrtc.ICEServer{URLs: []string{u}})
	}
	if len(out) == 0 {
		return defaultICE
	}
	return out
}

// ICEServersHandler handles GET /api/ice-servers. Peers negotiate directly; the hub
// only tells them which STUN/TURN servers to use.
func ICEServersHandler(servers []webrtc.ICEServer) gin.HandlerFunc {
	cfg := webrtc.Configuration{ICEServers: servers}
	return func(c *gin.Context) {
		response.OK(c, gin.H{"iceServers": cfg.ICEServers})
	}
}
