package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// client is one viewer connection. The read loop runs on the HTTP handler
// goroutine, writes go through send and the write loop.
type client struct {
	conn         *websocket.Conn
	remote       string
	writeTimeout time.Duration

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once

	// Owned by the tick goroutine.
	hasLandscape bool
}

func newClient(conn *websocket.Conn, writeTimeout time.Duration) *client {
	return &client{
		conn:         conn,
		remote:       conn.RemoteAddr().String(),
		writeTimeout: writeTimeout,
		send:         make(chan []byte, sendBuffer),
		done:         make(chan struct{}),
	}
}

// enqueue queues data without blocking. It reports false when the viewer
// is gone or too far behind.
func (c *client) enqueue(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *client) writeLoop(log *zap.Logger) {
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ping.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
				time.Now().Add(time.Second))
			return

		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Debug("websocket write", zap.String("remote", c.remote), zap.Error(err))
				return
			}

		case <-ping.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}
