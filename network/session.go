package network

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/automoto/mirra-netsync/shared/messages"
	"github.com/automoto/mirra-netsync/shared/protocol"
	"github.com/coder/websocket"
	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
)

var (
	ErrNotConnected  = errors.New("network: not connected")
	ErrSessionClosed = errors.New("network: session closed")
	ErrSendQueueFull = errors.New("network: send queue full")
)

type SessionState int

const (
	SessionConnecting SessionState = iota
	SessionOpen
	SessionClosing
	SessionClosed
)

var sessionStateNames = map[SessionState]string{
	SessionConnecting: "connecting",
	SessionOpen:       "open",
	SessionClosing:    "closing",
	SessionClosed:     "closed",
}

func (s SessionState) String() string {
	if name, ok := sessionStateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Lifecycle is reported to whoever owns the session. The session never
// reconnects by itself.
type Lifecycle int

const (
	LifecycleConnected Lifecycle = iota
	LifecycleReconnectRequired
	LifecycleDisconnected
)

var lifecycleNames = map[Lifecycle]string{
	LifecycleConnected:         "connected",
	LifecycleReconnectRequired: "reconnect_required",
	LifecycleDisconnected:      "disconnected",
}

func (l Lifecycle) String() string {
	if name, ok := lifecycleNames[l]; ok {
		return name
	}
	return "unknown"
}

// ClientHashHeader carries the client build identifier on the upgrade request.
const ClientHashHeader = "dark-worlds-client-hash"

const writeTimeout = 5 * time.Second

// SessionOptions describes which match to join and how.
type SessionOptions struct {
	Addr       string // host:port, or a full ws:// or wss:// base URL
	SessionID  string
	PlayerID   uint64
	ClientID   string // generated when empty
	ClientHash string

	QueueSize int // raw inbound frames buffered for Tick
	Logger    *slog.Logger
}

// Session owns one websocket connection to a match. A reader goroutine only
// queues raw frames; decoding happens on the host goroutine via DrainFrames.
// All shared fields are protected by mu.
type Session struct {
	mu sync.Mutex

	state    SessionState
	dialing  bool
	discard  bool // closed locally, inbound frames are dropped
	conn     *websocket.Conn
	url      string
	header   http.Header
	clientID string
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	frames    chan []byte
	outbound  chan []byte
	lifecycle chan Lifecycle
	done      chan struct{} // closed when the reader exits
}

func NewSession(opts SessionOptions) (*Session, error) {
	if opts.SessionID == "" {
		return nil, errors.New("network: session id required")
	}
	if opts.ClientID == "" {
		opts.ClientID = uuid.NewString()
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	u, err := playURL(opts.Addr, opts.SessionID, opts.ClientID, opts.PlayerID)
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	if opts.ClientHash != "" {
		header.Set(ClientHashHeader, opts.ClientHash)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		state:     SessionConnecting,
		url:       u,
		header:    header,
		clientID:  opts.ClientID,
		logger:    opts.Logger.With("component", "session", "client_id", opts.ClientID),
		ctx:       ctx,
		cancel:    cancel,
		frames:    make(chan []byte, opts.QueueSize),
		outbound:  make(chan []byte, 32),
		lifecycle: make(chan Lifecycle, 4),
		done:      make(chan struct{}),
	}, nil
}

func playURL(addr, sessionID, clientID string, playerID uint64) (string, error) {
	base := addr
	if u, err := url.Parse(addr); err != nil || (u.Scheme != "ws" && u.Scheme != "wss") {
		base = "ws://" + addr
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid server address %q: %w", addr, err)
	}
	return u.JoinPath("play", sessionID, clientID, strconv.FormatUint(playerID, 10)).String(), nil
}

// Connect dials the server in a background goroutine. Progress is reported
// through DrainLifecycle.
func (s *Session) Connect() {
	s.mu.Lock()
	if s.dialing || s.state != SessionConnecting {
		s.mu.Unlock()
		return
	}
	s.dialing = true
	s.mu.Unlock()

	go func() {
		defer sentry.Recover()

		dialCtx, cancel := context.WithTimeout(s.ctx, 10*time.Second)
		defer cancel()

		conn, _, err := websocket.Dial(dialCtx, s.url, &websocket.DialOptions{HTTPHeader: s.header})
		if err != nil {
			s.logger.Warn("dial failed", "url", s.url, "err", err)
			s.finish(LifecycleReconnectRequired)
			close(s.done)
			return
		}
		conn.SetReadLimit(1 << 20)

		s.mu.Lock()
		if s.state != SessionConnecting {
			s.mu.Unlock()
			_ = conn.CloseNow()
			close(s.done)
			return
		}
		s.conn = conn
		s.state = SessionOpen
		s.mu.Unlock()

		s.logger.Info("connected", "url", s.url)
		s.emit(LifecycleConnected)

		go s.writeLoop(conn)
		s.readLoop(conn)
	}()
}

func (s *Session) readLoop(conn *websocket.Conn) {
	defer close(s.done)
	for {
		typ, data, err := conn.Read(s.ctx)
		if err != nil {
			s.handleClose(err)
			return
		}
		if typ != websocket.MessageBinary {
			continue
		}
		select {
		case s.frames <- data:
		default:
			s.logger.Warn("inbound queue full, dropping frame", "bytes", len(data))
		}
	}
}

func (s *Session) writeLoop(conn *websocket.Conn) {
	defer sentry.Recover()
	for {
		select {
		case <-s.ctx.Done():
			return
		case payload := <-s.outbound:
			ctx, cancel := context.WithTimeout(s.ctx, writeTimeout)
			err := conn.Write(ctx, websocket.MessageBinary, payload)
			cancel()
			if err != nil {
				s.logger.Debug("write failed", "err", err)
			}
		}
	}
}

func (s *Session) handleClose(err error) {
	code := websocket.CloseStatus(err)

	s.mu.Lock()
	local := s.state == SessionClosing || s.state == SessionClosed
	s.mu.Unlock()
	if local {
		return
	}

	if code == websocket.StatusNormalClosure {
		s.logger.Info("server closed the session")
		s.finish(LifecycleDisconnected)
		return
	}
	s.logger.Warn("connection lost", "code", int(code), "err", err)
	s.finish(LifecycleReconnectRequired)
}

// finish moves the session to Closed after a remote close or a failed dial.
func (s *Session) finish(ev Lifecycle) {
	s.mu.Lock()
	if s.state == SessionClosed {
		s.mu.Unlock()
		return
	}
	s.state = SessionClosed
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	s.cancel()
	if conn != nil {
		_ = conn.CloseNow()
	}
	s.emit(ev)
}

func (s *Session) emit(ev Lifecycle) {
	select {
	case s.lifecycle <- ev:
	default:
		s.logger.Warn("lifecycle queue full", "event", ev)
	}
}

// Send queues an encoded action for the writer. It never blocks; ordering
// against inbound snapshots is not guaranteed.
func (s *Session) Send(action messages.ClientAction) error {
	payload, err := protocol.EncodeAction(action)
	if err != nil {
		return fmt.Errorf("encode action: %w", err)
	}

	switch s.State() {
	case SessionOpen:
	case SessionClosing, SessionClosed:
		return ErrSessionClosed
	default:
		return ErrNotConnected
	}

	select {
	case s.outbound <- payload:
		return nil
	default:
		return ErrSendQueueFull
	}
}

// DrainFrames returns all raw frames received since the last call. Frames
// that arrived before a remote close are still returned; nothing is returned
// after Close.
func (s *Session) DrainFrames() [][]byte {
	s.mu.Lock()
	discard := s.discard
	s.mu.Unlock()
	if discard {
		drainChan(s.frames)
		return nil
	}
	return drainChan(s.frames)
}

// DrainLifecycle returns pending lifecycle events, non-blocking.
func (s *Session) DrainLifecycle() []Lifecycle {
	return drainChan(s.lifecycle)
}

// Close sends a normal close frame and stops the reader. It is safe to call
// more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.state == SessionClosing || s.state == SessionClosed {
		s.mu.Unlock()
		return nil
	}
	s.state = SessionClosing
	s.discard = true
	conn := s.conn
	dialing := s.dialing
	s.mu.Unlock()

	// Without a dial no goroutine will ever close done.
	if !dialing {
		close(s.done)
	}

	var err error
	if conn != nil {
		err = conn.Close(websocket.StatusNormalClosure, "")
	}
	s.cancel()

	s.mu.Lock()
	s.state = SessionClosed
	s.conn = nil
	s.mu.Unlock()

	if conn != nil {
		_ = conn.CloseNow()
	}
	drainChan(s.frames)
	s.logger.Info("session closed")
	return err
}

// Done is closed once the connection goroutines have exited.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) ClientID() string {
	return s.clientID
}

func (s *Session) URL() string {
	return s.url
}

func drainChan[T any](ch chan T) []T {
	var out []T
	for {
		select {
		case v := <-ch:
			out = append(out, v)
		default:
			return out
		}
	}
}
