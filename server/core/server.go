package core

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/automoto/mirra-netsync/config"
	"github.com/automoto/mirra-netsync/shared/messages"
	"github.com/automoto/mirra-netsync/shared/protocol"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
)

type commandKind int

const (
	cmdJoin commandKind = iota
	cmdLeave
	cmdAction
)

// command is queued by connection goroutines and applied by the game loop.
type command struct {
	kind   commandKind
	peer   *peer
	action messages.ClientAction
}

// Server runs development matches and streams their state to clients over
// websockets. Match state is owned by the game loop goroutine; connection
// goroutines talk to it through the command queue.
type Server struct {
	cfg      config.DevServerConfig
	loop     *GameLoop
	router   chi.Router
	upgrader websocket.Upgrader
	logger   *slog.Logger
	now      func() time.Time
	rng      *rand.Rand

	commands chan command
	matches  map[string]*Match

	mu      sync.Mutex
	http    *http.Server
	started bool
}

// Option customizes a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithClock replaces time.Now for server timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithSeed makes spawn points and bot behavior reproducible.
func WithSeed(seed uint64) Option {
	return func(s *Server) { s.rng = rand.New(rand.NewPCG(seed, seed)) }
}

// NewServer creates a new development server
func NewServer(cfg config.DevServerConfig, opts ...Option) *Server {
	s := &Server{
		cfg:      cfg,
		logger:   slog.Default(),
		now:      time.Now,
		rng:      rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
		commands: make(chan command, 1024),
		matches:  make(map[string]*Match),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "devserver")
	s.loop = NewGameLoop(s, cfg.TickRate, cfg.PingInterval)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/play/{session}/{client}/{player}", s.handlePlay)
	s.router = r
	return s
}

// Handler exposes the HTTP routes, for embedding or tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the game loop in the background and serves HTTP on addr until
// Stop is called.
func (s *Server) Start(addr string) error {
	s.StartLoop()

	s.mu.Lock()
	s.http = &http.Server{Addr: addr, Handler: s.router}
	srv := s.http
	s.mu.Unlock()

	s.logger.Info("listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// StartLoop starts only the game loop; used with Handler.
func (s *Server) StartLoop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	go s.loop.Run()
}

// Stop halts the loop, closes every client with a normal close and shuts the
// HTTP server down.
func (s *Server) Stop() {
	s.mu.Lock()
	started := s.started
	s.started = false
	srv := s.http
	s.mu.Unlock()

	if started {
		s.loop.Stop()
	}
	for _, m := range s.matches {
		for _, p := range m.peers() {
			close(p.send)
		}
	}
	s.matches = map[string]*Match{}

	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "session")
	clientID := chi.URLParam(r, "client")
	playerID, err := strconv.ParseUint(chi.URLParam(r, "player"), 10, 64)
	if err != nil || playerID == 0 || playerID >= firstBotID {
		http.Error(w, "invalid player id", http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade failed", "err", err)
		return
	}

	p := newPeer(conn, matchID, clientID, playerID, s.cfg.SendQueue, s.cfg.JitterMs, s.logger)
	s.logger.Info("client connected", "match", matchID, "client", clientID, "player", playerID)
	s.queue(command{kind: cmdJoin, peer: p})

	go p.writePump()
	go p.readPump(s)
}

func (s *Server) queue(c command) {
	select {
	case s.commands <- c:
	default:
		s.logger.Warn("command queue full, dropping", "kind", c.kind)
	}
}

// ProcessCommands applies every command queued since the last tick.
func (s *Server) ProcessCommands() {
	for {
		select {
		case c := <-s.commands:
			s.apply(c)
		default:
			return
		}
	}
}

func (s *Server) apply(c command) {
	switch c.kind {
	case cmdJoin:
		m, ok := s.matches[c.peer.matchID]
		if !ok {
			m = newMatch(c.peer.matchID, s.cfg, s.loop.TickDuration().Milliseconds(), s.rng)
			s.matches[m.id] = m
			s.logger.Info("match created", "match", m.id)
		}
		m.join(c.peer.playerID, c.peer)
		s.sendJoinEvents(m, c.peer)
	case cmdLeave:
		m, ok := s.matches[c.peer.matchID]
		if !ok {
			return
		}
		m.leave(c.peer.playerID, c.peer)
		if len(m.peers()) == 0 {
			delete(s.matches, m.id)
			s.logger.Info("match closed", "match", m.id)
		}
	case cmdAction:
		if m, ok := s.matches[c.peer.matchID]; ok {
			m.apply(c.peer.playerID, c.action)
		}
	}
}

func (s *Server) sendJoinEvents(m *Match, p *peer) {
	players := m.playerStates()
	selected := m.selectedCharacters()
	for _, ev := range []messages.Event{
		messages.InitialPositions{Players: players},
		messages.SelectedCharacterUpdate{Selected: selected},
		messages.FinishCharacterSelection{Selected: selected, Players: players},
	} {
		s.send(p, ev)
	}
}

func (s *Server) send(p *peer, ev messages.Event) {
	frame, err := protocol.EncodeEvent(ev)
	if err != nil {
		s.logger.Error("encode failed", "type", ev.Type(), "err", err)
		return
	}
	p.enqueue(frame)
}

func (s *Server) broadcast(m *Match, ev messages.Event) {
	frame, err := protocol.EncodeEvent(ev)
	if err != nil {
		s.logger.Error("encode failed", "type", ev.Type(), "err", err)
		return
	}
	for _, p := range m.peers() {
		p.enqueue(frame)
	}
}

// step advances every match one tick and broadcasts its state.
func (s *Server) step() {
	ts := s.now().UnixMilli()
	for _, m := range s.matches {
		m.step()
		s.broadcast(m, messages.StateUpdate{Snapshot: m.snapshot(ts)})
		if m.winner != nil && !m.announced {
			m.announced = true
			s.logger.Info("match finished", "match", m.id, "winner", m.winner.Key.ID)
			s.broadcast(m, messages.GameFinished{Winner: *m.winner, Players: m.playerStates()})
		}
	}
}

func (s *Server) broadcastPing() {
	for _, m := range s.matches {
		for _, p := range m.peers() {
			s.send(p, messages.PingUpdate{LatencyMs: uint64(max(p.latencyMs.Load(), 0))})
		}
	}
}
