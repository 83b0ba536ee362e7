package realtime

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // allow all origins
	},
}

// ClientConfig sizes per-connection buffers.
type ClientConfig struct {
	ReadLimit  int64
	SendBuffer int
}

// Client is one live duplex connection. ID, Username, seq and open are owned by the
// Hub and only touched under its lock.
type Client struct {
	ID       string
	Username string
	seq      uint64
	open     bool

	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	logger *zap.Logger
}

func newClient(hub *Hub, conn *websocket.Conn, buffer int, logger *zap.Logger) *Client {
	if buffer <= 0 {
		buffer = 256
	}
	return &Client{hub: hub, conn: conn, send: make(chan []byte, buffer), logger: logger}
}

// ServeWs handles the WebSocket upgrade and runs the client loop.
func ServeWs(hub *Hub, logger *zap.Logger, cfg ClientConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}
		client := newClient(hub, conn, cfg.SendBuffer, logger)
		hub.Register(client)
		go client.writePump()
		client.readPump(cfg.ReadLimit)
	}
}

func (c *Client) readPump(limit int64) {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	if limit > 0 {
		c.conn.SetReadLimit(limit)
	}
	_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				c.logger.Debug("websocket read", zap.String("client_id", c.ID), zap.Error(err))
			}
			break
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))
		c.hub.Handle(c, data)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(PingInterval * time.Second)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
