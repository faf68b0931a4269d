package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dmitrymomot/nearby/core/logger"
	"github.com/dmitrymomot/nearby/core/session"
)

// Message is the wire frame exchanged with the server.
type Message struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Handler receives the data of an incoming event.
type Handler func(data json.RawMessage)

// CredentialReader provides the credential the socket authenticates with.
type CredentialReader interface {
	Credential() session.Credential
}

// Client is a realtime socket client. Handlers registered with On survive
// reconnects; the socket itself is opened with Connect and closed with Close.
type Client struct {
	cfg   Config
	creds CredentialReader
	opts  *options

	mu   sync.Mutex
	conn *connection

	hmu      sync.RWMutex
	handlers map[string][]Handler
}

// New creates a Client. It does not connect.
func New(cfg Config, creds CredentialReader, opts ...Option) *Client {
	cfg.setDefaults()
	return &Client{
		cfg:      cfg,
		creds:    creds,
		opts:     buildOptions(opts),
		handlers: make(map[string][]Handler),
	}
}

// Enabled reports whether a socket URL is configured.
func (c *Client) Enabled() bool {
	return c.cfg.URL != ""
}

// Connect dials the socket using the current credential. It is a no-op when
// already connected.
func (c *Client) Connect(ctx context.Context) error {
	if !c.Enabled() {
		return ErrNotConfigured
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return nil
	}

	cred := c.creds.Credential()
	if cred.IsZero() {
		return ErrNotAuthenticated
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+string(cred))

	dialer := *c.opts.dialer
	dialer.HandshakeTimeout = c.cfg.HandshakeTimeout

	ws, resp, err := dialer.DialContext(ctx, c.cfg.URL, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return fmt.Errorf("realtime: dial: %w", err)
	}

	conn := newConnection(ws, c.cfg)
	c.conn = conn

	conn.wg.Add(2)
	go c.readLoop(conn)
	go c.pingLoop(conn)

	c.opts.logger.InfoContext(ctx, "realtime connected", logger.Component("realtime"))
	return nil
}

// IsConnected reports whether the socket is open.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Emit sends event with payload encoded as JSON.
func (c *Client) Emit(ctx context.Context, event string, payload any) error {
	if event == "" {
		return ErrEmptyEvent
	}

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	msg := Message{Event: event}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("realtime: encode %s: %w", event, err)
		}
		msg.Data = data
	}

	frame, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("realtime: encode %s: %w", event, err)
	}

	if err := conn.write(ctx, websocket.TextMessage, frame); err != nil {
		c.detach(conn)
		return fmt.Errorf("realtime: emit %s: %w", event, err)
	}
	return nil
}

// On registers handler for event.
func (c *Client) On(event string, handler Handler) {
	if event == "" || handler == nil {
		return
	}
	c.hmu.Lock()
	defer c.hmu.Unlock()
	c.handlers[event] = append(c.handlers[event], handler)
}

// Off removes every handler for event.
func (c *Client) Off(event string) {
	c.hmu.Lock()
	defer c.hmu.Unlock()
	delete(c.handlers, event)
}

// Close sends a close frame and shuts the socket down. Safe to call when not
// connected.
func (c *Client) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn == nil {
		return nil
	}

	conn.stopGraceful()
	c.opts.logger.Info("realtime disconnected", logger.Component("realtime"))
	return nil
}

func (c *Client) readLoop(conn *connection) {
	defer conn.wg.Done()
	defer c.detach(conn)

	for {
		_, data, err := conn.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) && !conn.stopped() {
				c.opts.logger.Warn("realtime connection lost", logger.Component("realtime"), logger.Error(err))
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil || msg.Event == "" {
			c.opts.logger.Debug("realtime frame ignored", logger.Component("realtime"), logger.Error(err))
			continue
		}
		c.dispatch(msg)
	}
}

func (c *Client) dispatch(msg Message) {
	c.hmu.RLock()
	handlers := append([]Handler(nil), c.handlers[msg.Event]...)
	c.hmu.RUnlock()

	for _, h := range handlers {
		h(msg.Data)
	}
}

func (c *Client) pingLoop(conn *connection) {
	defer conn.wg.Done()

	ticker := time.NewTicker(c.cfg.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := conn.write(context.Background(), websocket.PingMessage, nil); err != nil {
				c.detach(conn)
				return
			}
		case <-conn.done:
			return
		}
	}
}

// detach drops conn if it is still the current connection.
func (c *Client) detach(conn *connection) {
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	c.mu.Unlock()
	conn.stop()
}
