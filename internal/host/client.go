package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dshills/deckmacro/internal/macro"
)

// ErrNotConnected is returned when sending without a live connection.
var ErrNotConnected = errors.New("not connected")

const (
	writeWait  = 5 * time.Second
	sendBuffer = 64
)

// Engine is the part of macro.Engine the client drives.
type Engine interface {
	Run(kind macro.ActionKind, p macro.Params) error
	Label(kind macro.ActionKind, p macro.Params) string
	SetNotifier(fn func())
}

// Client is a websocket connection to the host.
type Client struct {
	url    string
	engine Engine
	dialer *websocket.Dialer
	log    *slog.Logger

	mu   sync.Mutex
	send chan []byte // nil while disconnected
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithDialer sets the websocket dialer.
func WithDialer(d *websocket.Dialer) Option {
	return func(c *Client) {
		if d != nil {
			c.dialer = d
		}
	}
}

// NewClient creates a client for the host at url.
func NewClient(url string, engine Engine, opts ...Option) *Client {
	c := &Client{
		url:    url,
		engine: engine,
		dialer: websocket.DefaultDialer,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With("component", "host")
	return c
}

// Run connects to the host and dispatches its events until ctx is done or
// the connection fails. It returns nil when ctx is cancelled.
func (c *Client) Run(ctx context.Context) error {
	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("dialing host %s: %w", c.url, err)
	}
	c.log.Info("connected", "url", c.url)

	send := make(chan []byte, sendBuffer)
	c.mu.Lock()
	c.send = send
	c.mu.Unlock()
	c.engine.SetNotifier(c.ImageChanged)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.writePump(conn, send)
	}()

	stop := context.AfterFunc(ctx, func() {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
		_ = conn.Close()
	})
	defer stop()

	err = c.readPump(conn)

	c.engine.SetNotifier(nil)
	c.mu.Lock()
	c.send = nil
	c.mu.Unlock()
	close(send)
	wg.Wait()
	_ = conn.Close()

	if ctx.Err() != nil {
		c.log.Info("disconnected")
		return nil
	}
	return fmt.Errorf("reading from host: %w", err)
}

// ImageChanged tells the host that binding visuals need refreshing.
func (c *Client) ImageChanged() {
	data, err := encodeImageChanged()
	if err != nil {
		c.log.Error("encode imageChanged", "error", err)
		return
	}
	if err := c.enqueue(data); err != nil {
		c.log.Debug("imageChanged dropped", "error", err)
	}
}

func (c *Client) readPump(conn *websocket.Conn) error {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		msg, err := DecodeMessage(data)
		if err != nil {
			c.log.Warn("invalid message", "error", err)
			continue
		}
		c.handle(msg)
	}
}

func (c *Client) handle(msg Message) {
	switch msg.Event {
	case EventRun:
		kind, err := macro.ParseActionKind(msg.Action)
		if err != nil {
			c.log.Warn("run ignored", "context", msg.Context, "error", err)
			return
		}
		if err := c.engine.Run(kind, msg.Params); err != nil {
			c.log.Warn("run failed", "context", msg.Context, "error", err)
		}

	case EventTitleRequested:
		kind, err := macro.ParseActionKind(msg.Action)
		if err != nil {
			c.log.Warn("title ignored", "context", msg.Context, "error", err)
			return
		}
		data, err := encodeSetTitle(msg.Context, c.engine.Label(kind, msg.Params))
		if err != nil {
			c.log.Error("encode setTitle", "error", err)
			return
		}
		if err := c.enqueue(data); err != nil {
			c.log.Debug("setTitle dropped", "error", err)
		}

	default:
		c.log.Debug("unknown event", "event", msg.Event)
	}
}

// enqueue hands a frame to the write pump without blocking.
func (c *Client) enqueue(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.send == nil {
		return ErrNotConnected
	}
	select {
	case c.send <- data:
		return nil
	default:
		return errors.New("send buffer full")
	}
}

func (c *Client) writePump(conn *websocket.Conn, send <-chan []byte) {
	for data := range send {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			// Keep draining so senders never block.
			c.log.Warn("write failed", "error", err)
		}
	}
}
