package realtime

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/chaines-io/chat-hub/internal/chat"
)

func startServer(t *testing.T) (*Hub, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zaptest.NewLogger(t)
	h := NewHub(logger, chat.NewGateway(chat.NewMemoryStore(), chat.DefaultLimits, logger), Options{})

	r := gin.New()
	r.GET("/ws", ServeWs(h, logger, ClientConfig{ReadLimit: 1 << 20, SendBuffer: 64}))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return h, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// readUntil reads frames until one of the given type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, typ string) msg {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var m msg
		require.NoError(t, conn.ReadJSON(&m))
		if m["type"] == typ {
			return m
		}
	}
}

func TestServeWs_EndToEnd(t *testing.T) {
	h, url := startServer(t)

	a := dial(t, url)
	require.Equal(t, "system", readUntil(t, a, "system")["type"])
	aID := readUntil(t, a, "id")["id"].(string)
	require.Len(t, aID, 8)

	b := dial(t, url)
	bID := readUntil(t, b, "id")["id"].(string)

	require.NoError(t, b.WriteJSON(msg{"type": "join", "user": "bob"}))
	users := readUntil(t, a, "users")
	for users["count"] != float64(1) {
		users = readUntil(t, a, "users")
	}
	require.Equal(t, []interface{}{map[string]interface{}{"name": "bob", "id": bID, "live": false}}, users["users"])

	require.NoError(t, a.WriteJSON(msg{"type": "chat", "text": "over the wire", "user": "ann"}))
	echo := readUntil(t, b, "chat")
	require.Equal(t, "over the wire", echo["text"])
	require.Equal(t, "over the wire", readUntil(t, a, "chat")["text"])

	require.NoError(t, a.WriteJSON(msg{"type": "offer", "id": bID, "sdp": "v=0"}))
	offer := readUntil(t, b, "offer")
	require.Equal(t, aID, offer["id"])
	require.Equal(t, "v=0", offer["sdp"])

	require.NoError(t, b.Close())
	require.Eventually(t, func() bool { return h.ConnectionCount() == 1 }, 5*time.Second, 20*time.Millisecond)
}
