package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// connection wraps one socket. gorilla/websocket allows one concurrent
// writer, so every write goes through writeMu.
type connection struct {
	ws  *websocket.Conn
	cfg Config

	writeMu  sync.Mutex
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func newConnection(ws *websocket.Conn, cfg Config) *connection {
	conn := &connection{ws: ws, cfg: cfg, done: make(chan struct{})}
	_ = ws.SetReadDeadline(time.Now().Add(cfg.PongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(cfg.PongWait))
	})
	return conn
}

func (c *connection) write(ctx context.Context, messageType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	deadline := time.Now().Add(c.cfg.WriteTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = c.ws.SetWriteDeadline(deadline)
	return c.ws.WriteMessage(messageType, data)
}

func (c *connection) stopped() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// stop closes the socket without a close frame.
func (c *connection) stop() {
	c.stopOnce.Do(func() {
		close(c.done)
		_ = c.ws.Close()
	})
}

// stopGraceful sends a close frame, closes the socket and waits for the
// read and ping loops to exit.
func (c *connection) stopGraceful() {
	c.stopOnce.Do(func() {
		close(c.done)

		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = c.write(context.Background(), websocket.CloseMessage, msg)
		_ = c.ws.Close()
	})
	c.wg.Wait()
}
