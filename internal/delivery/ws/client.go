package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vogiaan1904/draftqueue/internal/connection"
	"github.com/vogiaan1904/draftqueue/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 64
)

type client struct {
	hub      *Hub
	conn     *websocket.Conn
	playerID string
	send     chan []byte

	disconnect connection.Listeners[struct{}]
	ready      connection.Listeners[models.ReadyState]

	done      chan struct{}
	closeOnce sync.Once
	gone      sync.Once
}

func newClient(hub *Hub, conn *websocket.Conn, playerID string) *client {
	return &client{
		hub:      hub,
		conn:     conn,
		playerID: playerID,
		send:     make(chan []byte, sendBufferSize),
		done:     make(chan struct{}),
	}
}

// enqueue never blocks. A client that cannot keep up is dropped.
func (c *client) enqueue(data []byte) error {
	select {
	case <-c.done:
		return connection.ErrNotConnected
	default:
	}

	select {
	case c.send <- data:
		return nil
	default:
		go c.hub.unregister(c)
		return ErrSendBufferFull
	}
}

// close asks writePump to send a close frame and tear the connection down.
func (c *client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *client) readPump(handle func(*client, inboundFrame)) {
	defer c.hub.unregister(c)

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var f inboundFrame
		if err := c.conn.ReadJSON(&f); err != nil {
			return
		}
		handle(c, f)
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
