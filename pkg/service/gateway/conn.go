package gateway

import (
	"context"
	"sync"
	"time"

	"github.com/cottonlesergal/ucontrol/pkg/domain/interfaces"
	"github.com/cottonlesergal/ucontrol/pkg/domain/model"
	"github.com/cottonlesergal/ucontrol/pkg/domain/types"
	"github.com/cottonlesergal/ucontrol/pkg/utils/logging"
	"github.com/gorilla/websocket"
	"github.com/m-mizutani/goerr/v2"
)

const (
	// DefaultPingInterval is how often a keep-alive PING is emitted
	DefaultPingInterval = 15 * time.Second
	// DefaultBackoffBase is the first reconnect delay after an abnormal close
	DefaultBackoffBase = 2 * time.Second
	// DefaultBackoffMax caps the reconnect delay
	DefaultBackoffMax = 30 * time.Second
)

type connState int

const (
	stateIdle connState = iota
	stateConnecting
	stateOpen
	stateClosed
)

// Conn manages one long-lived gateway connection. Envelopes read from the
// socket are delivered synchronously to a single EnvelopeHandler, preserving
// arrival order. Abnormal closures trigger reconnection with capped
// exponential backoff; an explicit Close or a normal closure does not.
type Conn struct {
	url          string
	botID        types.UserID
	handler      interfaces.EnvelopeHandler
	status       interfaces.StatusHandler
	dialer       *websocket.Dialer
	pingInterval time.Duration
	backoffBase  time.Duration
	backoffMax   time.Duration

	mu     sync.Mutex
	state  connState
	ws     *websocket.Conn
	closed bool
}

var _ interfaces.Gateway = &Conn{}

// Option is a functional option for gateway configuration
type Option func(*Conn)

// WithDialer replaces the websocket dialer
func WithDialer(d *websocket.Dialer) Option {
	return func(c *Conn) {
		c.dialer = d
	}
}

// WithPingInterval sets the keep-alive interval
func WithPingInterval(interval time.Duration) Option {
	return func(c *Conn) {
		c.pingInterval = interval
	}
}

// WithBackoff sets the reconnect delay bounds
func WithBackoff(base, max time.Duration) Option {
	return func(c *Conn) {
		c.backoffBase = base
		c.backoffMax = max
	}
}

// WithStatusHandler registers a callback for connection state transitions
func WithStatusHandler(h interfaces.StatusHandler) Option {
	return func(c *Conn) {
		c.status = h
	}
}

// WithBotID sets the identity sent in the IDENTIFY envelope on connect
func WithBotID(botID types.UserID) Option {
	return func(c *Conn) {
		c.botID = botID
	}
}

// New creates a gateway connection for the given websocket URL. handler is
// the single ingestion entry point for all inbound envelopes.
func New(url string, handler interfaces.EnvelopeHandler, opts ...Option) (*Conn, error) {
	if url == "" {
		return nil, goerr.New("gateway URL is required")
	}
	if handler == nil {
		return nil, goerr.New("envelope handler is required")
	}

	c := &Conn{
		url:          url,
		handler:      handler,
		dialer:       websocket.DefaultDialer,
		pingInterval: DefaultPingInterval,
		backoffBase:  DefaultBackoffBase,
		backoffMax:   DefaultBackoffMax,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Start begins the connect/read loop in the background. A second call while
// a connection is open or being established is a no-op.
func (c *Conn) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.state == stateConnecting || c.state == stateOpen {
		c.mu.Unlock()
		logging.From(ctx).Warn("gateway already open or connecting, skipping init")
		return nil
	}
	if c.closed {
		c.mu.Unlock()
		return goerr.New("gateway is closed")
	}
	c.state = stateConnecting
	c.mu.Unlock()

	go c.run(ctx)
	return nil
}

// Connected reports whether a connection is currently open
func (c *Conn) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == stateOpen
}

// Send marshals and writes an outbound envelope
func (c *Conn) Send(ctx context.Context, env *model.Envelope) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != stateOpen || c.ws == nil {
		return goerr.New("gateway is not connected", goerr.V(types.EventTypeKey, env.Type))
	}
	if err := c.ws.WriteJSON(env); err != nil {
		return goerr.Wrap(err, "failed to write envelope", goerr.V(types.EventTypeKey, env.Type))
	}
	return nil
}

// Close shuts the connection down normally and suppresses reconnection
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	c.state = stateClosed
	if c.ws != nil {
		deadline := time.Now().Add(time.Second)
		_ = c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		err := c.ws.Close()
		c.ws = nil
		return err
	}
	return nil
}

// run is the connect/read loop. It exits when the connection is explicitly
// closed or the server closes normally.
func (c *Conn) run(ctx context.Context) {
	logger := logging.From(ctx)
	backoff := c.backoffBase

	for {
		if c.isClosed() {
			return
		}

		ws, _, err := c.dialer.DialContext(ctx, c.url, nil)
		if err != nil {
			logger.Warn("gateway dial failed, retrying", "url", c.url,
				"delay", backoff.String(), "error", err.Error())
			if !c.sleep(ctx, backoff) {
				return
			}
			backoff = c.nextBackoff(backoff)
			continue
		}
		backoff = c.backoffBase

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			_ = ws.Close()
			return
		}
		c.ws = ws
		c.state = stateOpen
		c.mu.Unlock()

		c.notifyStatus(ctx, true)
		c.identify(ctx)

		pingDone := make(chan struct{})
		go c.pingLoop(ctx, pingDone)

		normal := c.readLoop(ctx)
		close(pingDone)

		c.mu.Lock()
		if c.ws != nil {
			_ = c.ws.Close()
			c.ws = nil
		}
		explicit := c.closed
		if !explicit {
			c.state = stateConnecting
		}
		c.mu.Unlock()

		c.notifyStatus(ctx, false)

		if explicit || normal {
			c.mu.Lock()
			c.state = stateClosed
			c.closed = true
			c.mu.Unlock()
			logger.Info("gateway closed normally, not reconnecting")
			return
		}

		logger.Info("gateway disconnected, reconnecting", "delay", backoff.String())
		if !c.sleep(ctx, backoff) {
			return
		}
		backoff = c.nextBackoff(backoff)
	}
}

// readLoop delivers inbound envelopes until the connection drops. It returns
// true when the peer closed normally. A malformed envelope is logged and
// skipped; it never terminates the loop.
func (c *Conn) readLoop(ctx context.Context) bool {
	logger := logging.From(ctx)

	for {
		c.mu.Lock()
		ws := c.ws
		c.mu.Unlock()
		if ws == nil {
			return false
		}

		_, raw, err := ws.ReadMessage()
		if err != nil {
			return websocket.IsCloseError(err, websocket.CloseNormalClosure)
		}

		env, err := model.ParseEnvelope(raw)
		if err != nil {
			logger.Warn("dropping malformed envelope", "error", err.Error())
			continue
		}

		c.deliver(ctx, env)
	}
}

// deliver invokes the ingestion handler, shielding the read loop from
// handler panics.
func (c *Conn) deliver(ctx context.Context, env *model.Envelope) {
	defer func() {
		if r := recover(); r != nil {
			logging.From(ctx).Error("panic in envelope handler",
				"panic", r, "event_type", env.Type)
		}
	}()
	c.handler(ctx, env)
}

// identify announces the bot's identity right after connecting
func (c *Conn) identify(ctx context.Context) {
	if c.botID == "" {
		return
	}
	env, err := model.NewEnvelope(types.EventIdentify, model.IdentifyPayload{BotID: c.botID})
	if err != nil {
		logging.From(ctx).Error("failed to build IDENTIFY envelope", "error", err.Error())
		return
	}
	if err := c.Send(ctx, env); err != nil {
		logging.From(ctx).Warn("failed to send IDENTIFY", "error", err.Error())
	}
}

// pingLoop emits a periodic keep-alive until done is closed
func (c *Conn) pingLoop(ctx context.Context, done <-chan struct{}) {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			env, err := model.NewEnvelope(types.EventPing, model.PingPayload{
				Timestamp: time.Now().UnixMilli(),
			})
			if err != nil {
				continue
			}
			if err := c.Send(ctx, env); err != nil {
				logging.From(ctx).Debug("keep-alive send failed", "error", err.Error())
			}
		}
	}
}

func (c *Conn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Conn) notifyStatus(ctx context.Context, connected bool) {
	if c.status != nil {
		c.status(ctx, connected)
	}
}

func (c *Conn) nextBackoff(current time.Duration) time.Duration {
	next := current * 2
	if next > c.backoffMax {
		return c.backoffMax
	}
	return next
}

// sleep waits for d or until ctx is cancelled; it returns false on cancel
func (c *Conn) sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
