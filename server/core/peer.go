package core

import (
	"encoding/binary"
	"log/slog"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/automoto/mirra-netsync/shared/protocol"
	"github.com/getsentry/sentry-go"
	"github.com/gorilla/websocket"
)

const (
	pingPeriod = 2 * time.Second
	pongWait   = 10 * time.Second
	writeWait  = 5 * time.Second
)

// peer is one websocket connection attached to a player in a match.
type peer struct {
	conn     *websocket.Conn
	send     chan []byte
	done     chan struct{}
	matchID  string
	clientID string
	playerID uint64
	jitterMs int
	logger   *slog.Logger

	latencyMs atomic.Int64 // last ping round trip
}

func newPeer(conn *websocket.Conn, matchID, clientID string, playerID uint64, queue, jitterMs int, logger *slog.Logger) *peer {
	return &peer{
		conn:     conn,
		send:     make(chan []byte, queue),
		done:     make(chan struct{}),
		matchID:  matchID,
		clientID: clientID,
		playerID: playerID,
		jitterMs: jitterMs,
		logger:   logger.With("match", matchID, "player", playerID),
	}
}

// enqueue hands a frame to the write pump without blocking the game loop.
func (p *peer) enqueue(frame []byte) {
	select {
	case p.send <- frame:
	default:
		p.logger.Warn("send queue full, dropping frame")
	}
}

// readPump decodes client actions into server commands until the connection
// fails, then queues a leave.
func (p *peer) readPump(s *Server) {
	defer sentry.Recover()
	defer func() {
		s.queue(command{kind: cmdLeave, peer: p})
		close(p.done)
		p.conn.Close()
	}()

	p.conn.SetReadLimit(4096)
	p.conn.SetReadDeadline(time.Now().Add(pongWait))
	p.conn.SetPongHandler(func(data string) error {
		p.conn.SetReadDeadline(time.Now().Add(pongWait))
		if len(data) == 8 {
			sent := int64(binary.BigEndian.Uint64([]byte(data)))
			p.latencyMs.Store(time.Now().UnixMilli() - sent)
		}
		return nil
	})

	for {
		typ, data, err := p.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				p.logger.Warn("unexpected close", "err", err)
			}
			return
		}
		if typ != websocket.BinaryMessage {
			continue
		}
		action, err := protocol.DecodeAction(data)
		if err != nil {
			p.logger.Warn("dropping action", "err", err)
			continue
		}
		s.queue(command{kind: cmdAction, peer: p, action: action})
	}
}

// writePump sends queued frames and keeps the connection alive with pings.
// With jitter enabled each frame waits a random delay first; order is kept.
func (p *peer) writePump() {
	defer sentry.Recover()
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		p.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-p.send:
			if !ok {
				p.conn.SetWriteDeadline(time.Now().Add(writeWait))
				p.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "match over"))
				return
			}
			if p.jitterMs > 0 {
				time.Sleep(time.Duration(rand.IntN(p.jitterMs+1)) * time.Millisecond)
			}
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
				p.logger.Debug("write failed", "err", err)
				return
			}
		case <-ticker.C:
			stamp := binary.BigEndian.AppendUint64(nil, uint64(time.Now().UnixMilli()))
			if err := p.conn.WriteControl(websocket.PingMessage, stamp, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-p.done:
			p.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		}
	}
}
