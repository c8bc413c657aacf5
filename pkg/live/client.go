// Package live keeps a session's cache current with server-pushed count
// updates and notifications over a websocket.
package live

import (
	"context"
	"errors"
	"math/rand"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	json "github.com/json-iterator/go"
	"github.com/kazem-mohamed/socialhub-app/pkg/config"
	"github.com/kazem-mohamed/socialhub-app/pkg/logger"
)

// MessageType is the type of a live message
type MessageType string

const (
	MessageTypeLikeCountUpdate     MessageType = "like_count_update"
	MessageTypeCommentCountUpdate  MessageType = "comment_count_update"
	MessageTypeFollowerCountUpdate MessageType = "follower_count_update"
	MessageTypeNotification        MessageType = "notification"
	MessageTypeHeartbeat           MessageType = "heartbeat"
	MessageTypePong                MessageType = "pong"
	MessageTypeError               MessageType = "error"
)

// Message is one frame from the server
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Handler receives messages of one type
type Handler func(Message)

// ErrNotConnected is returned by Send without a connection
var ErrNotConnected = errors.New("not connected")

// Config holds live connection settings
type Config struct {
	URL                  string
	ConnectTimeout       time.Duration
	HeartbeatInterval    time.Duration
	ReconnectBaseDelay   time.Duration
	ReconnectMaxDelay    time.Duration
	MaxReconnectAttempts int // negative means unlimited
}

// DefaultConfig returns settings for a local server
func DefaultConfig() Config {
	return Config{
		URL:                  "ws://localhost:8080/api/v1/ws",
		ConnectTimeout:       15 * time.Second,
		HeartbeatInterval:    30 * time.Second,
		ReconnectBaseDelay:   2 * time.Second,
		ReconnectMaxDelay:    30 * time.Second,
		MaxReconnectAttempts: -1,
	}
}

// ConfigFromViper reads live.url over the defaults
func ConfigFromViper() Config {
	cfg := DefaultConfig()
	if u := config.GetString("live.url"); u != "" {
		cfg.URL = u
	}
	return cfg
}

// ConnectionState is the state of the connection
type ConnectionState int

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateConnected
	StateReconnecting
	StateError
)

func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateError:
		return "error"
	}
	return "unknown"
}

// ConnectionStats holds connection statistics
type ConnectionStats struct {
	MessagesReceived int64
	MessagesSent     int64
	ReconnectCount   int
	LastError        string
	ConnectedAt      time.Time
	DisconnectedAt   time.Time
}

type subscription struct {
	id      int
	handler Handler
}

// Client is a reconnecting websocket client. Handlers run on the read loop in
// arrival order, so a later update always lands after an earlier one.
type Client struct {
	config Config

	mu    sync.Mutex
	conn  *websocket.Conn
	token string

	writeMu sync.Mutex
	state   atomic.Value // ConnectionState

	listenersMu sync.RWMutex
	listeners   map[MessageType][]subscription
	nextID      int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	statsMu sync.RWMutex
	stats   ConnectionStats
}

// NewClient creates a disconnected client
func NewClient(cfg Config) *Client {
	c := &Client{
		config:    cfg,
		listeners: make(map[MessageType][]subscription),
	}
	c.state.Store(StateDisconnected)
	return c
}

// On subscribes to a message type. An empty type receives every message.
// The returned func unsubscribes.
func (c *Client) On(msgType MessageType, h Handler) func() {
	c.listenersMu.Lock()
	c.nextID++
	id := c.nextID
	c.listeners[msgType] = append(c.listeners[msgType], subscription{id: id, handler: h})
	c.listenersMu.Unlock()

	return func() {
		c.listenersMu.Lock()
		defer c.listenersMu.Unlock()
		subs := c.listeners[msgType]
		for i, s := range subs {
			if s.id == id {
				c.listeners[msgType] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Connect dials the server and starts the read and heartbeat loops. The
// connection lives until ctx is done or Close is called.
func (c *Client) Connect(ctx context.Context, token string) error {
	c.mu.Lock()
	c.token = token
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.mu.Unlock()

	c.setState(StateConnecting)
	conn, err := c.dial()
	if err != nil {
		c.setState(StateError)
		c.recordError(err)
		return err
	}
	if !c.attach(conn) {
		return context.Canceled
	}

	logger.Debug("Live connection established", "url", c.config.URL)
	return nil
}

// Close stops reconnecting and closes the connection
func (c *Client) Close() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	if c.conn != nil {
		c.writeMu.Lock()
		_ = c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.writeMu.Unlock()
		c.conn.Close()
		c.conn = nil
	}
	c.mu.Unlock()

	c.wg.Wait()
	c.setState(StateDisconnected)
	c.recordDisconnected()
	logger.Debug("Live connection closed")
}

// State returns the connection state
func (c *Client) State() ConnectionState {
	return c.state.Load().(ConnectionState)
}

// IsConnected reports whether the connection is up
func (c *Client) IsConnected() bool {
	return c.State() == StateConnected
}

// Stats returns connection statistics
func (c *Client) Stats() ConnectionStats {
	c.statsMu.RLock()
	defer c.statsMu.RUnlock()
	return c.stats
}

// Send writes one message to the server
func (c *Client) Send(msgType MessageType, payload any) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	msg := struct {
		Type    MessageType `json:"type"`
		Payload any         `json:"payload,omitempty"`
	}{msgType, payload}
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	err = conn.WriteMessage(websocket.TextMessage, data)
	c.writeMu.Unlock()
	if err != nil {
		return err
	}

	c.statsMu.Lock()
	c.stats.MessagesSent++
	c.statsMu.Unlock()
	return nil
}

func (c *Client) dial() (*websocket.Conn, error) {
	u, err := url.Parse(c.config.URL)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	token, parent := c.token, c.ctx
	c.mu.Unlock()
	if token != "" {
		q := u.Query()
		q.Set("token", token)
		u.RawQuery = q.Encode()
	}

	dialCtx := parent
	if c.config.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(parent, c.config.ConnectTimeout)
		defer cancel()
	}
	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, u.String(), nil)
	return conn, err
}

func (c *Client) attach(conn *websocket.Conn) bool {
	c.mu.Lock()
	ctx := c.ctx
	if ctx.Err() != nil {
		// closed while dialing
		c.mu.Unlock()
		conn.Close()
		return false
	}
	c.conn = conn
	c.mu.Unlock()

	c.setState(StateConnected)
	c.statsMu.Lock()
	c.stats.ConnectedAt = time.Now()
	c.statsMu.Unlock()

	connCtx, stop := context.WithCancel(ctx)
	c.wg.Add(2)
	go func() {
		defer c.wg.Done()
		c.readLoop(conn)
		stop()
		c.reconnect(ctx)
	}()
	go func() {
		defer c.wg.Done()
		c.heartbeatLoop(connCtx)
	}()
	return true
}

func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if c.ctx.Err() == nil {
				c.recordError(err)
				logger.Warn("Live read failed", "error", err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Debug("Ignoring malformed live message", "error", err)
			continue
		}

		c.statsMu.Lock()
		c.stats.MessagesReceived++
		c.statsMu.Unlock()

		c.dispatch(msg)
	}
}

func (c *Client) dispatch(msg Message) {
	c.listenersMu.RLock()
	subs := append([]subscription{}, c.listeners[msg.Type]...)
	subs = append(subs, c.listeners[""]...)
	c.listenersMu.RUnlock()

	for _, s := range subs {
		s.handler(msg)
	}
}

func (c *Client) heartbeatLoop(ctx context.Context) {
	if c.config.HeartbeatInterval <= 0 {
		return
	}
	ticker := time.NewTicker(c.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.Send(MessageTypeHeartbeat, nil); err != nil {
				logger.Debug("Failed to send heartbeat", "error", err)
			}
		}
	}
}

// reconnect redials with exponential backoff plus jitter until it succeeds,
// attempts run out or ctx is done.
func (c *Client) reconnect(ctx context.Context) {
	c.mu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.mu.Unlock()

	if ctx.Err() != nil {
		return
	}
	c.setState(StateReconnecting)
	c.recordDisconnected()

	delay := c.config.ReconnectBaseDelay
	for attempt := 0; ; attempt++ {
		if c.config.MaxReconnectAttempts >= 0 && attempt >= c.config.MaxReconnectAttempts {
			c.setState(StateError)
			logger.Error("Live reconnection attempts exhausted", "attempts", attempt)
			return
		}

		wait := delay + time.Duration(rand.Int63n(int64(delay/2)+1))
		logger.Debug("Reconnecting live connection", "attempt", attempt+1, "wait", wait)

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}

		conn, err := c.dial()
		if err != nil {
			c.recordError(err)
			delay = min(delay*2, c.config.ReconnectMaxDelay)
			continue
		}

		if !c.attach(conn) {
			return
		}
		c.statsMu.Lock()
		c.stats.ReconnectCount++
		c.statsMu.Unlock()
		logger.Debug("Live connection re-established")
		return
	}
}

func (c *Client) setState(s ConnectionState) {
	c.state.Store(s)
}

func (c *Client) recordError(err error) {
	c.statsMu.Lock()
	c.stats.LastError = err.Error()
	c.statsMu.Unlock()
}

func (c *Client) recordDisconnected() {
	c.statsMu.Lock()
	c.stats.DisconnectedAt = time.Now()
	c.statsMu.Unlock()
}
