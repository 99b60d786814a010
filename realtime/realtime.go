// Package realtime delivers live entity-change notifications over a
// WebSocket feed, so screens can refresh invoices and bank transactions
// without polling.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ledgerline/erpclient/logger"
	"github.com/ledgerline/erpclient/tokenstore"
	"github.com/ledgerline/erpclient/transform"
)

const (
	feedPath          = "/api/v1/ws"
	handshakeTimeout  = 10 * time.Second
	heartbeatInterval = 30 * time.Second
)

// Event is a single change notification from the server.
type Event struct {
	// Topic names the entity stream, e.g. "invoices" or "bank_transactions".
	Topic string `json:"topic"`
	// Action is "created", "updated" or "deleted".
	Action string `json:"action"`
	// Record carries the changed entity in wire shape.
	Record transform.Record `json:"record"`
	// Ref correlates replies to subscribe requests.
	Ref string `json:"ref,omitempty"`
}

// Handler receives events for a subscribed topic. Handlers run on their own
// goroutine and must not block indefinitely.
type Handler func(ev Event)

// Config configures the feed.
type Config struct {
	// BaseURL is the API origin (http or https scheme, converted to ws/wss).
	BaseURL string
	// Tokens supplies the access token for the handshake.
	Tokens *tokenstore.Store
	// Logger is optional.
	Logger *logger.Logger
	// Bundle, when set, converts incoming records to app shape.
	Bundle transform.Config
}

// Feed is a WebSocket subscription client. A Feed is safe for concurrent use.
type Feed struct {
	mu       sync.RWMutex
	url      string
	tokens   *tokenstore.Store
	log      *logger.Logger
	bundle   transform.Config
	conn     *websocket.Conn
	handlers map[string][]Handler
	done     chan struct{}
	ref      int
}

// New creates a feed. It does not connect.
func New(cfg Config) (*Feed, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("realtime: base URL is required")
	}
	if cfg.Tokens == nil {
		return nil, fmt.Errorf("realtime: token store is required")
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	wsURL := cfg.BaseURL
	switch {
	case strings.HasPrefix(wsURL, "https"):
		wsURL = "wss" + wsURL[len("https"):]
	case strings.HasPrefix(wsURL, "http"):
		wsURL = "ws" + wsURL[len("http"):]
	}
	wsURL = strings.TrimRight(wsURL, "/") + feedPath

	return &Feed{
		url:      wsURL,
		tokens:   cfg.Tokens,
		log:      log,
		bundle:   cfg.Bundle,
		handlers: make(map[string][]Handler),
	}, nil
}

// Connect opens the WebSocket and starts the read loop and heartbeat.
// Connecting an already connected feed is a no-op.
func (f *Feed) Connect(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.conn != nil {
		return nil
	}

	token := f.tokens.AccessToken()
	if token == "" {
		return fmt.Errorf("realtime: not authenticated")
	}

	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, f.url+"?token="+token, nil)
	if err != nil {
		return fmt.Errorf("realtime: dial: %w", err)
	}

	f.conn = conn
	f.done = make(chan struct{})

	go f.readLoop(conn, f.done)
	go f.heartbeat(f.done)

	f.log.Info("realtime connected", "url", f.url)
	return nil
}

// Close tears down the connection. Registered handlers survive a Close and
// fire again after a reconnect.
func (f *Feed) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.conn == nil {
		return nil
	}

	close(f.done)
	f.conn.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
	)
	err := f.conn.Close()
	f.conn = nil
	return err
}

// Subscribe registers a handler for a topic and sends the subscribe frame.
func (f *Feed) Subscribe(topic string, h Handler) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.handlers[topic] = append(f.handlers[topic], h)

	if f.conn == nil {
		// Deferred until Connect; the server replays subscriptions from
		// frames sent after the handshake, so resend there is not needed
		// for the first connect.
		return nil
	}
	return f.sendLocked("subscribe", topic)
}

// Unsubscribe drops all handlers for a topic and tells the server.
func (f *Feed) Unsubscribe(topic string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.handlers, topic)
	if f.conn == nil {
		return nil
	}
	return f.sendLocked("unsubscribe", topic)
}

func (f *Feed) sendLocked(action, topic string) error {
	f.ref++
	msg := map[string]any{
		"action": action,
		"topic":  topic,
		"ref":    fmt.Sprintf("%d", f.ref),
	}
	if err := f.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("realtime: send %s: %w", action, err)
	}
	return nil
}

func (f *Feed) readLoop(conn *websocket.Conn, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		default:
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			f.log.Warn("realtime read loop ended", "error", err)
			return
		}

		var ev Event
		if err := json.Unmarshal(message, &ev); err != nil {
			f.log.Debug("realtime: dropping malformed frame", "error", err)
			continue
		}
		f.dispatch(ev)
	}
}

func (f *Feed) dispatch(ev Event) {
	if ev.Record != nil && f.bundle.Name != "" {
		ev.Record = transform.Response(ev.Record, f.bundle)
	}

	f.mu.RLock()
	handlers := make([]Handler, len(f.handlers[ev.Topic]))
	copy(handlers, f.handlers[ev.Topic])
	f.mu.RUnlock()

	for _, h := range handlers {
		go f.invoke(h, ev)
	}
}

// invoke isolates handler panics from the read loop.
func (f *Feed) invoke(h Handler, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			f.log.Error("realtime handler panic", "topic", ev.Topic, "panic", r)
		}
	}()
	h(ev)
}

func (f *Feed) heartbeat(done chan struct{}) {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			f.mu.Lock()
			if f.conn != nil {
				f.ref++
				f.conn.WriteJSON(map[string]any{
					"action": "heartbeat",
					"ref":    fmt.Sprintf("%d", f.ref),
				})
			}
			f.mu.Unlock()
		}
	}
}
