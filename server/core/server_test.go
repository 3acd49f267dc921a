package core

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/automoto/mirra-netsync/config"
	"github.com/automoto/mirra-netsync/network"
)

func startTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	cfg := config.DevServer
	cfg.TickRate = 50
	cfg.JitterMs = 0
	cfg.StartingBots = 0
	s := NewServer(cfg, WithSeed(7))
	srv := httptest.NewServer(s.Handler())
	s.StartLoop()
	t.Cleanup(func() {
		s.Stop()
		srv.Close()
	})
	return s, strings.TrimPrefix(srv.URL, "http://")
}

func eventually(t *testing.T, what string, c *network.Client, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		c.Tick(time.Now().UnixMilli())
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestClientReceivesStateStream(t *testing.T) {
	_, addr := startTestServer(t)

	c, err := network.NewClient(network.ClientOptions{
		Session: network.SessionOptions{Addr: addr, SessionID: "m1", PlayerID: 1},
		NetSync: config.NetSync,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })
	c.Connect()

	eventually(t, "snapshots", c, func() bool { return c.Buffer().Len() >= 3 })

	if !c.AllSelected() || c.SelectedCharacters()[1] == "" {
		t.Errorf("character selection not received: %v", c.SelectedCharacters())
	}
	if c.DecodeErrors() != 0 {
		t.Errorf("decode errors = %d", c.DecodeErrors())
	}

	world, ok := c.Sample(time.Now().UnixMilli())
	if !ok {
		t.Fatalf("no world state")
	}
	var found bool
	for _, e := range world.Entities {
		if e.Key.ID == 1 {
			found = true
		}
	}
	if !found {
		t.Errorf("local player missing from %+v", world.Entities)
	}

	c.DrainEvents()
	if err := c.AddBot(); err != nil {
		t.Fatal(err)
	}
	var spawned bool
	eventually(t, "bot spawn", c, func() bool {
		for _, ev := range c.DrainEvents() {
			if _, ok := ev.(network.BotSpawnEvent); ok {
				spawned = true
			}
		}
		return spawned
	})
	if len(c.Players()) != 2 {
		t.Errorf("players = %d, want 2", len(c.Players()))
	}
}

func TestPlayersShareMatchBySession(t *testing.T) {
	_, addr := startTestServer(t)

	var clients []*network.Client
	for _, id := range []uint64{1, 2} {
		c, err := network.NewClient(network.ClientOptions{
			Session: network.SessionOptions{Addr: addr, SessionID: "shared", PlayerID: id},
			NetSync: config.NetSync,
		})
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { c.Close() })
		c.Connect()
		clients = append(clients, c)
	}

	for _, c := range clients {
		eventually(t, "both players", c, func() bool { return len(c.Players()) == 2 })
	}
}

func TestRejectsBadPlayerID(t *testing.T) {
	s := NewServer(config.DevServer)
	for _, path := range []string{"/play/m1/c1/abc", "/play/m1/c1/0", "/play/m1/c1/100000"} {
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status %d, want 400", path, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("health: status %d", rec.Code)
	}
}
