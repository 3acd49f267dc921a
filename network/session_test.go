package network

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/automoto/mirra-netsync/shared/messages"
	"github.com/automoto/mirra-netsync/shared/netconfig"
	"github.com/automoto/mirra-netsync/shared/protocol"
	"github.com/coder/websocket"
	"github.com/go-gl/mathgl/mgl64"
)

type upgrade struct {
	path string
	hash string
}

func startServer(t *testing.T, handle func(ctx context.Context, conn *websocket.Conn)) (string, <-chan upgrade) {
	t.Helper()
	upgrades := make(chan upgrade, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upgrades <- upgrade{path: r.URL.Path, hash: r.Header.Get("dark-worlds-client-hash")}
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.CloseNow()
		handle(r.Context(), conn)
	}))
	t.Cleanup(srv.Close)
	return strings.TrimPrefix(srv.URL, "http://"), upgrades
}

func waitFor[T any](t *testing.T, what string, poll func() []T) []T {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if got := poll(); len(got) > 0 {
			return got
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
	return nil
}

func newTestSession(t *testing.T, addr string) *Session {
	t.Helper()
	s, err := NewSession(SessionOptions{
		Addr:       addr,
		SessionID:  "s1",
		PlayerID:   7,
		ClientHash: "abc123",
	})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSessionReceivesAndSends(t *testing.T) {
	frame, err := protocol.EncodeEvent(messages.PingUpdate{LatencyMs: 12})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	actions := make(chan messages.ClientAction, 1)

	addr, upgrades := startServer(t, func(ctx context.Context, conn *websocket.Conn) {
		if err := conn.Write(ctx, websocket.MessageBinary, frame); err != nil {
			return
		}
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		if a, err := protocol.DecodeAction(data); err == nil {
			actions <- a
		}
		conn.Close(websocket.StatusNormalClosure, "match over")
	})

	s := newTestSession(t, addr)
	if s.State() != SessionConnecting {
		t.Fatalf("state = %v, want connecting", s.State())
	}
	if err := s.Send(messages.NewClientAction(netconfig.ActionAddBot)); err != ErrNotConnected {
		t.Fatalf("Send before open = %v, want ErrNotConnected", err)
	}
	s.Connect()

	up := <-upgrades
	wantPath := "/play/s1/" + s.ClientID() + "/7"
	if up.path != wantPath || up.hash != "abc123" {
		t.Fatalf("upgrade = %+v, want path %q hash abc123", up, wantPath)
	}

	lifecycle := waitFor(t, "connected", s.DrainLifecycle)
	if lifecycle[0] != LifecycleConnected {
		t.Fatalf("lifecycle = %v, want connected", lifecycle)
	}
	if s.State() != SessionOpen {
		t.Fatalf("state = %v, want open", s.State())
	}

	frames := waitFor(t, "frame", s.DrainFrames)
	ev, err := protocol.Decode(frames[0])
	if err != nil || ev.(messages.PingUpdate).LatencyMs != 12 {
		t.Fatalf("frame decoded to %v, %v", ev, err)
	}

	if err := s.Send(messages.NewDirectedAction(netconfig.ActionSkill1, mgl64.Vec2{1, 0})); err != nil {
		t.Fatalf("Send: %v", err)
	}
	select {
	case a := <-actions:
		if a.Action != netconfig.ActionSkill1 || a.Direction != (mgl64.Vec2{1, 0}) {
			t.Fatalf("server got %+v", a)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("server never received the action")
	}

	lifecycle = waitFor(t, "disconnected", s.DrainLifecycle)
	if lifecycle[0] != LifecycleDisconnected {
		t.Fatalf("lifecycle = %v, want disconnected on normal close", lifecycle)
	}
	if s.State() != SessionClosed {
		t.Fatalf("state = %v, want closed", s.State())
	}
	if err := s.Send(messages.NewClientAction(netconfig.ActionAddBot)); err != ErrSessionClosed {
		t.Fatalf("Send after close = %v, want ErrSessionClosed", err)
	}
}

func TestSessionAbnormalCloseRequiresReconnect(t *testing.T) {
	addr, _ := startServer(t, func(ctx context.Context, conn *websocket.Conn) {
		frame, _ := protocol.EncodeEvent(messages.PingUpdate{LatencyMs: 30})
		conn.Write(ctx, websocket.MessageBinary, frame)
		conn.Close(websocket.StatusInternalError, "crashed")
	})

	s := newTestSession(t, addr)
	s.Connect()

	var got []Lifecycle
	waitFor(t, "reconnect required", func() []Lifecycle {
		got = append(got, s.DrainLifecycle()...)
		if len(got) > 0 && got[len(got)-1] == LifecycleReconnectRequired {
			return got
		}
		return nil
	})
	if got[0] != LifecycleConnected {
		t.Fatalf("lifecycle = %v, want connected first", got)
	}
	<-s.Done()
	// Frames that arrived before the close are still delivered.
	if frames := s.DrainFrames(); len(frames) != 1 {
		t.Fatalf("frames after remote close = %d, want 1", len(frames))
	}
}

func TestSessionDialFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := strings.TrimPrefix(srv.URL, "http://")
	srv.Close()

	s := newTestSession(t, addr)
	s.Connect()
	got := waitFor(t, "reconnect required", s.DrainLifecycle)
	if got[0] != LifecycleReconnectRequired {
		t.Fatalf("lifecycle = %v, want reconnect required", got)
	}
	if s.State() != SessionClosed {
		t.Fatalf("state = %v, want closed", s.State())
	}
}

func TestSessionCloseIsIdempotent(t *testing.T) {
	addr, _ := startServer(t, func(ctx context.Context, conn *websocket.Conn) {
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				return
			}
		}
	})

	s := newTestSession(t, addr)
	s.Connect()
	waitFor(t, "connected", s.DrainLifecycle)

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	select {
	case <-s.Done():
	case <-time.After(3 * time.Second):
		t.Fatalf("reader still running after Close")
	}
	if got := s.DrainLifecycle(); len(got) != 0 {
		t.Fatalf("local close emitted %v", got)
	}
}

func TestSessionCloseBeforeConnect(t *testing.T) {
	s := newTestSession(t, "127.0.0.1:1")
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	s.Connect()

	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatalf("Done never closed for a session that was never dialed")
	}
	if s.State() != SessionClosed {
		t.Fatalf("State = %v, want %v", s.State(), SessionClosed)
	}
	if got := s.DrainLifecycle(); len(got) != 0 {
		t.Fatalf("lifecycle after Close = %v, want none", got)
	}
}

func TestPlayURL(t *testing.T) {
	tests := []struct {
		addr string
		want string
	}{
		{"localhost:4000", "ws://localhost:4000/play/s/c/3"},
		{"127.0.0.1:4000", "ws://127.0.0.1:4000/play/s/c/3"},
		{"wss://arena.example.com", "wss://arena.example.com/play/s/c/3"},
	}
	for _, tt := range tests {
		got, err := playURL(tt.addr, "s", "c", 3)
		if err != nil {
			t.Fatalf("playURL(%q): %v", tt.addr, err)
		}
		if got != tt.want {
			t.Fatalf("playURL(%q) = %q, want %q", tt.addr, got, tt.want)
		}
	}
}
