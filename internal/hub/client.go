package hub

import (
	"context"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

const (
	sendBuffer   = 16
	writeTimeout = 10 * time.Second
	pingPeriod   = 30 * time.Second
)

// Connection is an interface that abstracts the websocket connection.
type Connection interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (int, []byte, error)
	Close() error
}

// deadliner is implemented by *websocket.Conn.
type deadliner interface {
	SetWriteDeadline(t time.Time) error
}

// Client is one websocket subscribed to a user's task events.
type Client struct {
	UserID int64
	conn   Connection
	send   chan []byte
}

func NewClient(userID int64, conn Connection) *Client {
	return &Client{
		UserID: userID,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
	}
}

// WritePump writes queued messages until the hub closes the send queue or a
// write fails, then closes the connection.
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		if err := c.conn.Close(); err != nil {
			slog.DebugContext(ctx, "Error closing websocket", "user.id", c.UserID, "error", err)
		}
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				_ = c.write(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.write(websocket.TextMessage, msg); err != nil {
				slog.WarnContext(ctx, "Error writing task event", "user.id", c.UserID, "error", err)
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ReadPump drains incoming frames so control messages are processed, and
// unregisters the client when the peer goes away.
func (c *Client) ReadPump(h *Hub) {
	defer h.Unregister(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) write(messageType int, data []byte) error {
	if d, ok := c.conn.(deadliner); ok {
		_ = d.SetWriteDeadline(time.Now().Add(writeTimeout))
	}
	return c.conn.WriteMessage(messageType, data)
}
