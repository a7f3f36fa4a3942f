package client

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/config"
	ws "github.com/SamiraSamrose/Thirteen-Oracles-Of-Astraeum/internal/websocket"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handler consumes the payload of one event frame.
type Handler func(data json.RawMessage)

// Transport maintains the event WebSocket to the campaign server. It
// reconnects on failure with a linearly growing delay and gives up
// after a fixed number of attempts.
type Transport struct {
	url         string
	token       TokenSource
	dialer      *websocket.Dialer
	log         *zap.Logger
	baseDelay   time.Duration
	maxAttempts int

	mu       sync.Mutex
	handlers map[string]Handler
	conn     *websocket.Conn
	closed   bool
	done     chan struct{}
}

// NewTransport builds a transport from the client configuration. The
// connection is not opened until Connect is called.
func NewTransport(cfg *config.ClientConfig, token TokenSource, log *zap.Logger) *Transport {
	return &Transport{
		url:         cfg.WSURL,
		token:       token,
		dialer:      &websocket.Dialer{HandshakeTimeout: cfg.RequestTimeout},
		log:         log,
		baseDelay:   cfg.ReconnectBaseDelay,
		maxAttempts: cfg.ReconnectMaxAttempts,
		handlers:    make(map[string]Handler),
		done:        make(chan struct{}),
	}
}

// On registers a handler for an event type. Registering the same type
// again replaces the previous handler.
func (t *Transport) On(eventType string, handler Handler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handlers[eventType] = handler
}

// Connect opens the WebSocket and starts the read loop. The loop keeps
// the connection alive across failures until Close is called or the
// reconnect budget is exhausted.
func (t *Transport) Connect() error {
	conn, err := t.dial()
	if err != nil {
		return err
	}

	t.mu.Lock()
	t.conn = conn
	t.mu.Unlock()

	go t.readLoop(conn)
	return nil
}

func (t *Transport) dial() (*websocket.Conn, error) {
	url := t.url
	if t.token != nil {
		if tok := t.token(); tok != "" {
			url += "?token=" + tok
		}
	}
	conn, _, err := t.dialer.Dial(url, nil)
	return conn, err
}

func (t *Transport) readLoop(conn *websocket.Conn) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			conn.Close()
			if t.isClosed() {
				return
			}
			t.reconnect()
			return
		}
		t.dispatch(raw)
	}
}

// reconnect retries the dial with a delay that grows with each
// attempt. After maxAttempts failures it stops quietly and the
// transport stays offline.
func (t *Transport) reconnect() {
	for attempt := 1; attempt <= t.maxAttempts; attempt++ {
		delay := time.Duration(attempt) * t.baseDelay

		select {
		case <-t.done:
			return
		case <-time.After(delay):
		}

		conn, err := t.dial()
		if err != nil {
			t.log.Warn("reconnect failed",
				zap.Int("attempt", attempt),
				zap.Error(err))
			continue
		}

		t.mu.Lock()
		if t.closed {
			t.mu.Unlock()
			conn.Close()
			return
		}
		t.conn = conn
		t.mu.Unlock()

		t.log.Info("reconnected", zap.Int("attempt", attempt))
		go t.readLoop(conn)
		return
	}
	t.log.Warn("gave up reconnecting", zap.Int("attempts", t.maxAttempts))
}

func (t *Transport) dispatch(raw []byte) {
	var msg ws.Message
	if err := json.Unmarshal(raw, &msg); err != nil || msg.Type == "" {
		t.log.Warn("dropping malformed frame", zap.Int("bytes", len(raw)))
		return
	}

	t.mu.Lock()
	handler := t.handlers[msg.Type]
	t.mu.Unlock()

	if handler == nil {
		t.log.Debug("no handler for event", zap.String("type", msg.Type))
		return
	}
	handler(msg.Data)
}

// Send writes one message to the server. When the transport is offline
// the message is dropped without error.
func (t *Transport) Send(msgType string, data interface{}) {
	t.mu.Lock()
	conn := t.conn
	closed := t.closed
	t.mu.Unlock()

	if closed || conn == nil {
		return
	}

	frame := map[string]interface{}{"type": msgType}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			t.log.Warn("dropping unencodable message", zap.String("type", msgType))
			return
		}
		frame["data"] = json.RawMessage(raw)
	}

	if err := conn.WriteJSON(frame); err != nil {
		t.log.Warn("send failed", zap.String("type", msgType), zap.Error(err))
	}
}

// SubscribeGame asks the server to route a campaign's events here.
func (t *Transport) SubscribeGame(gameID uint) {
	t.mu.Lock()
	conn := t.conn
	closed := t.closed
	t.mu.Unlock()

	if closed || conn == nil {
		return
	}

	frame := ws.Message{Type: ws.MessageTypeSubscribeGame, GameID: gameID}
	if err := conn.WriteJSON(frame); err != nil {
		t.log.Warn("subscribe failed", zap.Uint("game_id", gameID), zap.Error(err))
	}
}

func (t *Transport) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

// Close shuts the transport down. Further Send calls are dropped and
// no reconnect is attempted.
func (t *Transport) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	conn := t.conn
	t.conn = nil
	close(t.done)
	t.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
}
