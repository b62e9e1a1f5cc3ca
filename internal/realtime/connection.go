package realtime

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	maxFrameBytes  = 16 * 1024
	sendBufferSize = 128
)

var (
	ErrConnectionClosed = errors.New("connection closed")
	// ErrSlowConsumer means the send buffer was full and the connection has been closed.
	ErrSlowConsumer = errors.New("connection buffer exceeded")
)

// Connection wraps a websocket and serializes outbound writes through a buffered channel.
// Only the write loop touches the socket for writing.
type Connection struct {
	ID     string
	UserID string

	ws           *websocket.Conn
	send         chan []byte
	done         chan struct{}
	once         sync.Once
	pingInterval time.Duration
	readTimeout  time.Duration
}

func NewConnection(userID string, ws *websocket.Conn, pingInterval, readTimeout time.Duration) *Connection {
	return &Connection{
		ID:           uuid.NewString(),
		UserID:       userID,
		ws:           ws,
		send:         make(chan []byte, sendBufferSize),
		done:         make(chan struct{}),
		pingInterval: pingInterval,
		readTimeout:  readTimeout,
	}
}

func (c *Connection) SessionID() string { return c.ID }

// Done is closed once the connection has been closed.
func (c *Connection) Done() <-chan struct{} { return c.done }

// Start launches the write loop. It must be called exactly once per connection.
func (c *Connection) Start() {
	go c.writeLoop()
}

// Send enqueues payload for delivery and never blocks. A client too slow to drain
// its buffer is disconnected and ErrSlowConsumer is returned.
func (c *Connection) Send(payload []byte) error {
	select {
	case <-c.done:
		return ErrConnectionClosed
	default:
	}

	select {
	case <-c.done:
		return ErrConnectionClosed
	case c.send <- payload:
		return nil
	default:
		c.Close(websocket.CloseGoingAway, "send buffer full")
		return ErrSlowConsumer
	}
}

// Close marks the connection closed and returns at once. The close frame and socket
// teardown run in the background: WriteControl waits for the write loop, which may be
// stuck on a stalled peer for up to writeWait. Safe to call more than once.
func (c *Connection) Close(code int, reason string) {
	c.once.Do(func() {
		close(c.done)
		go func() {
			_ = c.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(writeWait))
			_ = c.ws.Close()
		}()
	})
}

// ReadLoop blocks reading frames until the peer goes away or stops answering pings.
// onActivity runs on every frame and pong.
func (c *Connection) ReadLoop(handle func(payload []byte), onActivity func()) error {
	c.ws.SetReadLimit(maxFrameBytes)
	_ = c.ws.SetReadDeadline(time.Now().Add(c.readTimeout))
	c.ws.SetPongHandler(func(string) error {
		onActivity()
		return c.ws.SetReadDeadline(time.Now().Add(c.readTimeout))
	})

	for {
		msgType, payload, err := c.ws.ReadMessage()
		if err != nil {
			return err
		}
		_ = c.ws.SetReadDeadline(time.Now().Add(c.readTimeout))
		onActivity()
		if msgType != websocket.TextMessage {
			continue
		}
		handle(payload)
	}
}

func (c *Connection) writeLoop() {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			if err := c.write(websocket.TextMessage, msg); err != nil {
				c.Close(websocket.CloseInternalServerErr, "write failed")
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				c.Close(websocket.CloseInternalServerErr, "ping failed")
				return
			}
		}
	}
}

func (c *Connection) write(msgType int, payload []byte) error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(msgType, payload)
}
