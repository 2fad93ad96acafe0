package stream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

type recordingAppender struct {
	mu    sync.Mutex
	lines []string
}

func (a *recordingAppender) AppendEvent(line string) {
	a.mu.Lock()
	a.lines = append(a.lines, line)
	a.mu.Unlock()
}

func (a *recordingAppender) snapshot() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.lines...)
}

func (a *recordingAppender) waitLen(n int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if len(a.snapshot()) >= n {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

func TestSubscriberReconnectsAfterDrop(t *testing.T) {
	var connections atomic.Int32
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		count := connections.Add(1)
		if count == 1 {
			_ = conn.WriteMessage(websocket.TextMessage, []byte("before drop"))
			_ = conn.Close()
			return
		}
		defer conn.Close()
		_ = conn.WriteMessage(websocket.TextMessage, []byte("after drop"))
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	appender := &recordingAppender{}
	sub := New(srv.URL+"/ws", appender, 50*time.Millisecond, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go sub.Run(ctx)
	defer sub.Close()

	if !appender.waitLen(2, 4*time.Second) {
		t.Fatalf("expected lines from both connections, got %v", appender.snapshot())
	}

	lines := appender.snapshot()
	if lines[0] != "before drop" || lines[1] != "after drop" {
		t.Fatalf("lines out of order: %v", lines)
	}
	// Exactly one attempt per drop: once the second connection holds,
	// no further dials may happen.
	time.Sleep(4 * sub.retryDelay)
	if got := connections.Load(); got != 2 {
		t.Fatalf("expected exactly 2 connections, got %d", got)
	}
}

func TestSubscriberCloseStopsReconnecting(t *testing.T) {
	var connections atomic.Int32
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		connections.Add(1)
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	sub := New(srv.URL+"/ws", &recordingAppender{}, 20*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		sub.Run(ctx)
		close(done)
	}()

	if !sub.WaitForOpen(2 * time.Second) {
		t.Fatalf("channel never opened")
	}

	sub.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("run loop did not exit after Close")
	}

	before := connections.Load()
	time.Sleep(100 * time.Millisecond)
	if connections.Load() != before {
		t.Fatalf("reconnect attempted after Close")
	}
}

func TestCloseDuringDialClosesFreshSocket(t *testing.T) {
	dialStarted := make(chan struct{})
	proceed := make(chan struct{})
	serverRead := make(chan error, 1)
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(dialStarted)
		<-proceed
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, _, readErr := conn.ReadMessage()
		serverRead <- readErr
	}))
	defer srv.Close()

	sub := New(srv.URL+"/ws", &recordingAppender{}, 20*time.Millisecond, nil)

	done := make(chan struct{})
	go func() {
		sub.Run(context.Background())
		close(done)
	}()

	// Teardown lands while the handshake is still being held open.
	<-dialStarted
	sub.Close()
	close(proceed)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("run loop did not exit after Close")
	}

	// The successfully dialed socket must be dropped, not left for the
	// peer's read deadline to reap.
	select {
	case <-serverRead:
	case <-time.After(2 * time.Second):
		t.Fatalf("socket left open after Close during dial")
	}
}

func TestSubscriberRetriesWhileServerDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	sub := New(srv.URL+"/ws", &recordingAppender{}, 20*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sub.Run(ctx)
	defer sub.Close()

	deadline := time.Now().Add(time.Second)
	sawRetry := false
	for time.Now().Before(deadline) {
		if sub.State() == StateRetryWait {
			sawRetry = true
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if !sawRetry {
		t.Fatalf("expected retry-wait state while server refuses upgrades")
	}
	if sub.IsOpen() {
		t.Fatalf("channel must not report open")
	}
}

func TestBuildURLRewritesHTTPSchemes(t *testing.T) {
	cases := map[string]string{
		"http://host:8000/ws":  "ws",
		"https://host:8000/ws": "wss",
		"ws://host:8000/ws":    "ws",
	}
	for raw, wantScheme := range cases {
		sub := New(raw, &recordingAppender{}, 0, nil)
		built, err := sub.buildURL()
		if err != nil {
			t.Fatalf("buildURL(%s): %v", raw, err)
		}
		parsed, err := url.Parse(built)
		if err != nil {
			t.Fatalf("parse built url: %v", err)
		}
		if parsed.Scheme != wantScheme {
			t.Fatalf("url %s: got scheme %s, want %s", raw, parsed.Scheme, wantScheme)
		}
	}
}
