package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	writeTimeout  = 10 * time.Second
	pingInterval  = 30 * time.Second
	turnEventBuf  = 16
	c2sJoin       = "session_join"
	c2sLeave      = "session_leave"
	c2sMessage    = "session_message"
	c2sHistory    = "history_request"
	s2cHistory    = "history_response"
)

// ErrNotConnected is returned for operations that need a live stream.
var ErrNotConnected = errors.New("session stream is not connected")

// ErrTurnActive is returned when a send is attempted while the previous
// turn's events are still being drained.
var ErrTurnActive = errors.New("previous turn is still draining")

// Config holds connection parameters.
type Config struct {
	BaseURL     string
	AccessToken string
	UserID      string
	Logger      *zap.Logger
}

// Conn is the persistent session stream. All exported methods are safe to
// call from the owning goroutine at any connection state; Disconnect is
// safe even when Connect never ran or partially failed.
type Conn struct {
	wsURL  string
	header http.Header
	logger *zap.Logger
	dialer *websocket.Dialer

	mu        sync.Mutex
	ws        *websocket.Conn
	connected bool
	turn      chan Event
	pending   map[string]chan []HistoryMessage
	closing   chan struct{}
	stop      func()
	group     *errgroup.Group

	writeMu sync.Mutex
}

// envelope is the wire frame in both directions.
type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewConn builds a Conn for the given endpoint. The websocket URL is
// derived from the REST base URL.
func NewConn(cfg Config) *Conn {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	header := http.Header{}
	if cfg.AccessToken != "" {
		header.Set("Authorization", "Bearer "+cfg.AccessToken)
	}
	if cfg.UserID != "" {
		header.Set("X-Pine-User-Id", cfg.UserID)
	}

	return &Conn{
		wsURL:   deriveWSURL(cfg.BaseURL),
		header:  header,
		logger:  logger,
		dialer:  &websocket.Dialer{HandshakeTimeout: 15 * time.Second},
		pending: make(map[string]chan []HistoryMessage),
	}
}

// deriveWSURL maps https://host → wss://host/api/v1/ws.
func deriveWSURL(baseURL string) string {
	u := strings.TrimRight(baseURL, "/")
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u + "/api/v1/ws"
}

// Connect dials the stream and starts the read and keepalive pumps.
// Calling Connect on an already-connected Conn is a no-op.
func (c *Conn) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.connected {
		return nil
	}

	ws, resp, err := c.dialer.DialContext(ctx, c.wsURL, c.header)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return fmt.Errorf("failed to connect: %w", err)
	}

	closing := make(chan struct{})
	var once sync.Once

	c.ws = ws
	c.connected = true
	c.closing = closing
	c.stop = func() { once.Do(func() { close(closing) }) }
	c.group = &errgroup.Group{}
	c.group.Go(func() error { return c.readPump(ws) })
	c.group.Go(func() error { return c.pingLoop(ws, closing) })

	c.logger.Debug("session stream connected", zap.String("url", c.wsURL))
	return nil
}

// Disconnect closes the stream and waits for the pumps to exit. Safe to
// call at any time, including after a partial connect or repeatedly.
func (c *Conn) Disconnect() error {
	c.mu.Lock()
	ws := c.ws
	stop := c.stop
	group := c.group
	c.ws = nil
	c.connected = false
	c.group = nil
	c.mu.Unlock()

	if ws == nil {
		return nil
	}

	stop()
	deadline := time.Now().Add(writeTimeout)
	_ = ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	_ = ws.Close()
	if group != nil {
		_ = group.Wait()
	}

	c.logger.Debug("session stream disconnected")
	return nil
}

// Connected reports whether the stream is currently up. The read pump
// flips this off when the underlying connection fails asynchronously.
func (c *Conn) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Join registers interest in a session's event stream.
func (c *Conn) Join(ctx context.Context, sessionID string) error {
	return c.write(c2sJoin, map[string]string{"session_id": sessionID})
}

// Leave unregisters from a session. Fire-and-forget at the protocol
// level; callers typically ignore the returned error.
func (c *Conn) Leave(sessionID string) error {
	return c.write(c2sLeave, map[string]string{"session_id": sessionID})
}

// Send delivers one message without waiting for the response events.
func (c *Conn) Send(sessionID, text string) error {
	return c.write(c2sMessage, map[string]string{
		"session_id": sessionID,
		"content":    text,
		"message_id": uuid.NewString(),
	})
}

// Chat sends one message and returns the finite, ordered event sequence
// for that turn. The channel is closed on the turn-complete signal or on
// stream closure; the caller must drain it fully before sending again.
func (c *Conn) Chat(ctx context.Context, sessionID, text string) (<-chan Event, error) {
	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return nil, ErrNotConnected
	}
	if c.turn != nil {
		c.mu.Unlock()
		return nil, ErrTurnActive
	}
	turn := make(chan Event, turnEventBuf)
	c.turn = turn
	c.mu.Unlock()

	err := c.write(c2sMessage, map[string]string{
		"session_id": sessionID,
		"content":    text,
		"message_id": uuid.NewString(),
	})
	if err != nil {
		c.mu.Lock()
		if c.turn == turn {
			c.turn = nil
		}
		c.mu.Unlock()
		return nil, err
	}
	return turn, nil
}

// GetHistory fetches up to maxMessages persisted records for a session,
// oldest-first when order is "asc".
func (c *Conn) GetHistory(ctx context.Context, sessionID string, maxMessages int, order string) ([]HistoryMessage, error) {
	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return nil, ErrNotConnected
	}
	requestID := uuid.NewString()
	ch := make(chan []HistoryMessage, 1)
	c.pending[requestID] = ch
	closing := c.closing
	c.mu.Unlock()

	err := c.write(c2sHistory, map[string]any{
		"session_id":   sessionID,
		"max_messages": maxMessages,
		"order":        order,
		"request_id":   requestID,
	})
	if err != nil {
		c.dropPending(requestID)
		return nil, err
	}

	select {
	case messages, ok := <-ch:
		if !ok {
			return nil, ErrNotConnected
		}
		return messages, nil
	case <-closing:
		c.dropPending(requestID)
		return nil, ErrNotConnected
	case <-ctx.Done():
		c.dropPending(requestID)
		return nil, ctx.Err()
	}
}

func (c *Conn) dropPending(requestID string) {
	c.mu.Lock()
	delete(c.pending, requestID)
	c.mu.Unlock()
}

// write marshals and sends one frame. gorilla/websocket allows a single
// concurrent writer, hence writeMu.
func (c *Conn) write(frameType string, data any) error {
	c.mu.Lock()
	ws := c.ws
	c.mu.Unlock()
	if ws == nil {
		return ErrNotConnected
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal %s frame: %w", frameType, err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := ws.WriteJSON(envelope{Type: frameType, Data: payload}); err != nil {
		return fmt.Errorf("failed to send %s frame: %w", frameType, err)
	}
	return nil
}

// readPump is the single reader. It routes history responses to their
// waiters, terminates the active turn on the turn-complete signal, and
// forwards everything else to the active turn channel.
func (c *Conn) readPump(ws *websocket.Conn) error {
	defer c.teardown()
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Debug("session stream read failed", zap.Error(err))
			}
			return nil
		}

		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			c.logger.Debug("skipping malformed frame", zap.Error(err))
			continue
		}
		c.dispatch(env)
	}
}

func (c *Conn) dispatch(env envelope) {
	switch env.Type {
	case s2cHistory:
		var body struct {
			RequestID string           `json:"request_id"`
			Messages  []HistoryMessage `json:"messages"`
		}
		if err := json.Unmarshal(env.Data, &body); err != nil {
			c.logger.Debug("skipping malformed history response", zap.Error(err))
			return
		}
		c.mu.Lock()
		ch, ok := c.pending[body.RequestID]
		delete(c.pending, body.RequestID)
		c.mu.Unlock()
		if ok {
			ch <- body.Messages
		}

	case string(EventDone):
		c.mu.Lock()
		turn := c.turn
		c.turn = nil
		c.mu.Unlock()
		if turn != nil {
			close(turn)
		}

	default:
		c.mu.Lock()
		turn := c.turn
		closing := c.closing
		c.mu.Unlock()
		if turn == nil {
			return
		}
		select {
		case turn <- Event{Type: EventType(env.Type), Data: env.Data}:
		case <-closing:
		}
	}
}

// pingLoop keeps the connection alive until the stream closes.
func (c *Conn) pingLoop(ws *websocket.Conn, closing <-chan struct{}) error {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-closing:
			return nil
		case <-ticker.C:
			deadline := time.Now().Add(writeTimeout)
			if err := ws.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return nil
			}
		}
	}
}

// teardown runs when the read pump exits for any reason: the connection
// is marked down, the active turn ends, and history waiters fail fast.
func (c *Conn) teardown() {
	c.mu.Lock()
	c.connected = false
	turn := c.turn
	c.turn = nil
	pending := c.pending
	c.pending = make(map[string]chan []HistoryMessage)
	stop := c.stop
	ws := c.ws
	c.mu.Unlock()

	if stop != nil {
		stop()
	}
	if turn != nil {
		close(turn)
	}
	for _, ch := range pending {
		close(ch)
	}
	if ws != nil {
		_ = ws.Close()
	}
}
