// Package host owns the single writable copy of the game session. All
// inbound messages, from every connection and from the host's own UI,
// are folded into the session one at a time on a serial loop; each
// accepted mutation is followed by a full-state rebroadcast to every
// connection, so convergence never depends on any individual event
// arriving.
package host

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/lanfest/munchkin-lan/internal/game"
	"github.com/lanfest/munchkin-lan/internal/protocol"
	"github.com/lanfest/munchkin-lan/internal/transport"
)

// Recorder persists a finished game. Implemented by the stats store.
type Recorder interface {
	RecordGame(game.Session) error
}

type Config struct {
	MaxPlayers int
	Logger     *zap.Logger
	Recorder   Recorder // optional
}

type Msg interface{ isHostMsg() }

// Attach hands a freshly accepted channel to the loop.
type Attach struct{ Ch *transport.Channel }

// Subscribe registers a local observer outbox for session snapshots.
type Subscribe struct {
	ID  string
	Out chan game.Session
}

// Unsubscribe drops a local observer.
type Unsubscribe struct{ ID string }

// Shutdown closes every connection and stops the loop.
type Shutdown struct{}

type inboundMsg struct {
	connID string
	env    protocol.Envelope
}

type closedMsg struct {
	connID string
	info   transport.CloseInfo
}

type localOp struct {
	apply func(game.Session) game.Session
}

type getState struct{ reply chan game.Session }

func (Attach) isHostMsg()      {}
func (Subscribe) isHostMsg()   {}
func (Unsubscribe) isHostMsg() {}
func (Shutdown) isHostMsg()    {}
func (inboundMsg) isHostMsg()  {}
func (closedMsg) isHostMsg()   {}
func (localOp) isHostMsg()     {}
func (getState) isHostMsg()    {}

// Per-connection lifecycle.
type connState int

const (
	connAccepted connState = iota // channel up, no player bound
	connJoined                    // player_join accepted, player bound
	connActive                    // has sent gameplay traffic
	connClosed
)

// outboxSize bounds the per-connection broadcast backlog. A connection
// that falls this far behind is dropped rather than allowed to stall
// the loop.
const outboxSize = 32

type conn struct {
	id       string
	ch       *transport.Channel
	playerID string // bound at join time, empty while Accepted
	state    connState
	outbox   chan protocol.Envelope
}

type Host struct {
	inbox   chan Msg
	session game.Session
	conns   map[string]*conn
	subs    map[string]chan game.Session
	cfg     Config
	log     *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	nextID  int
}

// New starts the authority loop around an existing session.
func New(parent context.Context, session game.Session, cfg Config) *Host {
	if cfg.MaxPlayers <= 0 {
		cfg.MaxPlayers = game.DefaultMaxPlayers
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(parent)
	h := &Host{
		inbox:   make(chan Msg, 64),
		session: session,
		conns:   make(map[string]*conn),
		subs:    make(map[string]chan game.Session),
		cfg:     cfg,
		log:     cfg.Logger,
		ctx:     ctx,
		cancel:  cancel,
	}
	go h.loop()
	return h
}

func (h *Host) Inbox() chan<- Msg { return h.inbox }

// Serve accepts client channels until ctx is cancelled.
func (h *Host) Serve(ctx context.Context, ln *transport.Listener) error {
	return ln.Serve(ctx, func(ch *transport.Channel) {
		select {
		case h.inbox <- Attach{Ch: ch}:
		case <-h.ctx.Done():
			ch.Close()
		}
	})
}

func (h *Host) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case Attach:
				h.attach(msg.Ch)

			case inboundMsg:
				h.handleInbound(msg.connID, msg.env)

			case closedMsg:
				h.handleClosed(msg.connID, msg.info)

			case localOp:
				// The host's own UI mutates through the same
				// apply-then-rebroadcast path as remote events.
				h.apply(msg.apply)

			case getState:
				msg.reply <- h.session

			case Subscribe:
				h.subs[msg.ID] = msg.Out
				select {
				case msg.Out <- h.session:
				default:
				}

			case Unsubscribe:
				delete(h.subs, msg.ID)

			case Shutdown:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Host) shutdown() {
	for _, c := range h.conns {
		h.closeConn(c)
	}
	clear(h.conns)
	for id, out := range h.subs {
		close(out)
		delete(h.subs, id)
	}
	h.cancel()
}

// attach registers the channel and bootstraps the late joiner with the
// current full state. Writes go through a per-connection outbox drained
// by its own goroutine, so a peer that stops reading never blocks the
// loop.
func (h *Host) attach(ch *transport.Channel) {
	h.nextID++
	c := &conn{
		id:     connID(h.nextID),
		ch:     ch,
		state:  connAccepted,
		outbox: make(chan protocol.Envelope, outboxSize),
	}
	h.conns[c.id] = c

	go func() {
		for env := range c.outbox {
			if err := ch.Send(env); err != nil {
				// Writer is gone; the closed event will clean up.
				h.log.Warn("send failed", zap.String("conn", c.id), zap.Error(err))
				ch.Close()
				return
			}
		}
	}()

	go func() {
		for env := range ch.Inbound() {
			select {
			case h.inbox <- inboundMsg{connID: c.id, env: env}:
			case <-h.ctx.Done():
				return
			}
		}
		info := <-ch.Closed()
		select {
		case h.inbox <- closedMsg{connID: c.id, info: info}:
		case <-h.ctx.Done():
		}
	}()

	h.sendState(c)
}

// closeConn stops the writer and the socket exactly once. The conn may
// stay in the map until its closed event finishes roster cleanup.
func (h *Host) closeConn(c *conn) {
	if c.state == connClosed {
		return
	}
	c.state = connClosed
	close(c.outbox)
	c.ch.Close()
}

// apply folds a mutation into the session and rebroadcasts when anything
// changed. Finish transitions hand the session to the recorder.
func (h *Host) apply(fn func(game.Session) game.Session) {
	before := h.session
	h.session = fn(before)
	h.broadcast()

	if before.Status != game.StatusFinished && h.session.Status == game.StatusFinished && h.cfg.Recorder != nil {
		finished := h.session
		go func() {
			if err := h.cfg.Recorder.RecordGame(finished); err != nil {
				h.log.Warn("failed to record finished game", zap.Error(err))
			}
		}()
	}
}

func (h *Host) handleInbound(connID string, env protocol.Envelope) {
	c, ok := h.conns[connID]
	if !ok || c.state == connClosed {
		return
	}

	payload, err := protocol.DecodePayload(env)
	if err != nil {
		// Protocol error: drop the message, keep the connection.
		h.log.Warn("dropping bad message",
			zap.String("conn", connID),
			zap.String("type", string(env.Type)),
			zap.Error(err))
		return
	}

	switch p := payload.(type) {
	case protocol.PlayerJoin:
		h.handleJoin(c, p.Player)

	case protocol.PlayerUpdate:
		if c.state != connJoined && c.state != connActive {
			return
		}
		// Identity boundary: a connection may only patch the player
		// bound to it at join time. Foreign ids are ignored without
		// surfacing an error.
		if p.PlayerID != c.playerID {
			h.log.Debug("ignoring player_update for foreign id",
				zap.String("conn", connID),
				zap.String("bound", c.playerID),
				zap.String("target", p.PlayerID))
			return
		}
		c.state = connActive
		h.apply(func(s game.Session) game.Session {
			return game.PatchPlayer(s, p.PlayerID, p.Patch)
		})

	case protocol.CombatStart:
		if !h.gameplayAllowed(c) {
			return
		}
		h.apply(func(s game.Session) game.Session {
			if !s.HasPlayer(p.Combat.MainPlayerID) {
				return s
			}
			return game.SetCombat(s, p.Combat)
		})

	case protocol.CombatUpdate:
		if !h.gameplayAllowed(c) {
			return
		}
		h.apply(func(s game.Session) game.Session {
			return game.SetCombat(s, p.Combat)
		})

	case protocol.CombatEnd:
		if !h.gameplayAllowed(c) {
			return
		}
		h.apply(func(s game.Session) game.Session {
			if p.Cancelled {
				return game.CancelCombat(s)
			}
			return game.ResolveCombat(s, p.Victory)
		})

	case protocol.TurnChange:
		if !h.gameplayAllowed(c) {
			return
		}
		h.apply(func(s game.Session) game.Session {
			return game.NextTurn(s, time.Now())
		})

	case protocol.DiceRoll:
		if !h.gameplayAllowed(c) {
			return
		}
		h.apply(func(s game.Session) game.Session {
			return game.AppendDiceRoll(s, p.Roll)
		})

	case protocol.PlayerLeave:
		h.detachPlayer(c)
		h.closeConn(c)
		delete(h.conns, c.id)

	case protocol.SyncState:
		// Only the host emits state; a client copy is never folded back.
		h.log.Debug("ignoring sync_state from client", zap.String("conn", connID))
	}
}

// gameplayAllowed marks the connection Active and admits combat, turn
// and dice traffic from any joined connection. The game is cooperative;
// identity of player records is the only hard boundary.
func (h *Host) gameplayAllowed(c *conn) bool {
	if c.state != connJoined && c.state != connActive {
		return false
	}
	c.state = connActive
	return true
}

func (h *Host) handleJoin(c *conn, player game.Player) {
	if c.state != connAccepted {
		// Duplicate join on a bound connection: ignore.
		return
	}
	before := h.session
	h.apply(func(s game.Session) game.Session {
		return game.AddPlayer(s, player, h.cfg.MaxPlayers)
	})
	if len(h.session.Players) == len(before.Players) {
		// Capacity or duplicate-id reject. The client infers this from
		// the unchanged roster in the sync_state it already received.
		h.log.Info("join rejected",
			zap.String("player", player.ID),
			zap.Int("roster", len(before.Players)),
			zap.Int("max", h.cfg.MaxPlayers))
		return
	}
	c.playerID = player.ID
	c.state = connJoined
	h.log.Info("player joined",
		zap.String("player", player.ID),
		zap.String("name", player.Name))
}

func (h *Host) handleClosed(connID string, info transport.CloseInfo) {
	c, ok := h.conns[connID]
	if !ok {
		return
	}
	h.log.Info("connection closed",
		zap.String("conn", connID),
		zap.String("cause", info.Cause.String()),
		zap.Error(info.Err))
	h.closeConn(c)
	delete(h.conns, connID)
	h.detachPlayer(c)
}

// detachPlayer removes the bound player (if any) from the roster and
// rebroadcasts.
func (h *Host) detachPlayer(c *conn) {
	if c.playerID == "" {
		return
	}
	playerID := c.playerID
	c.playerID = ""
	h.apply(func(s game.Session) game.Session {
		return game.RemovePlayer(s, playerID)
	})
}

// broadcast retransmits the entire session to every connection and every
// local observer. There is no diffing; repeated full-state sync is the
// recovery mechanism for anything lost in flight. Enqueues never block:
// a connection whose outbox is full has stopped reading and is dropped,
// so one stalled peer cannot freeze the loop for everyone else.
func (h *Host) broadcast() {
	env, err := protocol.NewEnvelope(h.session.HostID, protocol.SyncState{Session: h.session})
	if err != nil {
		h.log.Error("failed to build sync_state", zap.Error(err))
		return
	}
	for _, c := range h.conns {
		if c.state == connClosed {
			continue
		}
		select {
		case c.outbox <- env:
		default:
			h.log.Warn("dropping stalled connection", zap.String("conn", c.id))
			h.closeConn(c)
		}
	}
	for id, out := range h.subs {
		select {
		case out <- h.session:
		default:
			// Slow observer: drop it, like a slow client outbox.
			close(out)
			delete(h.subs, id)
		}
	}
}

func (h *Host) sendState(c *conn) {
	env, err := protocol.NewEnvelope(h.session.HostID, protocol.SyncState{Session: h.session})
	if err != nil {
		h.log.Error("failed to build sync_state", zap.Error(err))
		return
	}
	select {
	case c.outbox <- env:
	default:
		h.log.Warn("dropping stalled connection", zap.String("conn", c.id))
		h.closeConn(c)
	}
}

func connID(n int) string {
	return "conn-" + strconv.Itoa(n)
}
