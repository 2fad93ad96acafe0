// Package stream owns the persistent push channel that carries live
// log events from the backend. The subscriber is the only component
// allowed to touch the websocket; everyone else sees its output as
// appends on the view store.
package stream

import (
	"context"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Channel states. There is no terminal failure state: a drop always
// transitions to StateRetryWait and then back to StateConnecting.
const (
	StateConnecting int32 = 0
	StateOpen       int32 = 1
	StateRetryWait  int32 = 2
)

// DefaultRetryDelay matches the original panel's reconnect timer. The
// delay is deliberately fixed: the server may come back at any moment
// and operator tolerance for a stale log is low, so there is no
// backoff and no cap.
const DefaultRetryDelay = 3 * time.Second

// Appender receives every payload in arrival order.
type Appender interface {
	AppendEvent(line string)
}

// Subscriber maintains one websocket connection to the panel's push
// endpoint and feeds every text frame, unmodified, into the appender.
// On any closure it waits a fixed delay and reconnects, forever,
// until Close disarms the loop.
type Subscriber struct {
	wsURL      string
	appender   Appender
	logger     *zap.Logger
	retryDelay time.Duration

	state     atomic.Int32
	done      chan struct{}
	closeOnce sync.Once

	mu   sync.Mutex
	conn *websocket.Conn
}

// New builds a subscriber for the given endpoint. http/https schemes
// are rewritten to ws/wss. A zero retryDelay uses DefaultRetryDelay.
func New(wsURL string, appender Appender, retryDelay time.Duration, logger *zap.Logger) *Subscriber {
	if retryDelay <= 0 {
		retryDelay = DefaultRetryDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Subscriber{
		wsURL:      wsURL,
		appender:   appender,
		logger:     logger,
		retryDelay: retryDelay,
		done:       make(chan struct{}),
	}
}

// Run drives the connect/read/retry loop until ctx is cancelled or
// Close is called. A drop is never surfaced as an error; the only
// visible effect is a possible gap in the log.
func (s *Subscriber) Run(ctx context.Context) {
	for {
		if s.stopped(ctx) {
			return
		}

		s.state.Store(StateConnecting)
		conn, err := s.dial(ctx)
		if err != nil {
			s.logger.Debug("stream dial failed", zap.Error(err))
			if !s.waitRetry(ctx) {
				return
			}
			continue
		}

		// Close may have landed while the dial was in flight; without
		// this check the fresh socket would outlive the subscriber.
		if s.stopped(ctx) {
			_ = conn.Close()
			return
		}

		s.setConn(conn)
		s.state.Store(StateOpen)
		s.logger.Info("stream connected", zap.String("url", s.wsURL))

		s.readLoop(conn)

		s.setConn(nil)
		_ = conn.Close()
		s.logger.Debug("stream closed, scheduling reconnect")

		if !s.waitRetry(ctx) {
			return
		}
	}
}

// Close tears the subscriber down. Ordering matters: the done channel
// is closed first so the retry transition is disarmed before the
// socket closes, guaranteeing the read-loop exit cannot race a fresh
// reconnect attempt.
func (s *Subscriber) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
	if conn := s.getConn(); conn != nil {
		_ = conn.Close()
	}
}

// State reports the channel state machine's current position.
func (s *Subscriber) State() int32 {
	return s.state.Load()
}

// IsOpen reports whether the push channel is currently established.
func (s *Subscriber) IsOpen() bool {
	return s.state.Load() == StateOpen
}

// WaitForOpen blocks until the channel is open or the timeout expires.
func (s *Subscriber) WaitForOpen(timeout time.Duration) bool {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	tick := time.NewTicker(20 * time.Millisecond)
	defer tick.Stop()

	for {
		if s.IsOpen() {
			return true
		}
		select {
		case <-s.done:
			return false
		case <-deadline.C:
			return false
		case <-tick.C:
		}
	}
}

func (s *Subscriber) readLoop(conn *websocket.Conn) {
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return
		}
		s.appender.AppendEvent(string(message))
	}
}

func (s *Subscriber) dial(ctx context.Context) (*websocket.Conn, error) {
	endpoint, err := s.buildURL()
	if err != nil {
		return nil, err
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// waitRetry sits out the fixed delay in StateRetryWait. It returns
// false when teardown arrived during the wait, in which case no
// further connection attempt may happen.
func (s *Subscriber) waitRetry(ctx context.Context) bool {
	s.state.Store(StateRetryWait)
	timer := time.NewTimer(s.retryDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-s.done:
		return false
	case <-timer.C:
		return true
	}
}

func (s *Subscriber) stopped(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	case <-s.done:
		return true
	default:
		return false
	}
}

func (s *Subscriber) buildURL() (string, error) {
	parsed, err := url.Parse(s.wsURL)
	if err != nil {
		return "", err
	}
	switch parsed.Scheme {
	case "http":
		parsed.Scheme = "ws"
	case "https":
		parsed.Scheme = "wss"
	}
	return parsed.String(), nil
}

func (s *Subscriber) setConn(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn = conn
}

func (s *Subscriber) getConn() *websocket.Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}
