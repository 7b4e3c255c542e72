// Package client keeps a read-mostly mirror of the host's session. Local
// intents go upstream and are never final until the host echoes them
// back in a sync_state; lost connections are retried with a doubling
// backoff before giving up for good.
package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lanfest/munchkin-lan/internal/game"
	"github.com/lanfest/munchkin-lan/internal/protocol"
	"github.com/lanfest/munchkin-lan/internal/transport"
)

var (
	// ErrNotConnected is returned when an intent is sent with no live
	// channel.
	ErrNotConnected = errors.New("client: not connected")
	// ErrReconnectFailed is surfaced after the last reconnect attempt;
	// a fresh Connect call is required to try again.
	ErrReconnectFailed = errors.New("client: connection lost and reconnection failed")
)

// State of the replica's connection machine.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateReconnecting
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "disconnected"
	}
}

const (
	maxReconnectAttempts = 5
	maxBackoff           = 10 // in backoff units
)

// Dialer opens a channel to the host; swapped out in tests.
type Dialer func(ctx context.Context, addr string) (*transport.Channel, error)

type Config struct {
	Logger *zap.Logger
	Dial   Dialer
	// BackoffUnit scales the reconnect delays (1,2,4,8,10 units).
	// Defaults to one second, the wire-contract schedule.
	BackoffUnit time.Duration
}

type Replica struct {
	cfg    Config
	log    *zap.Logger
	player game.Player

	mu        sync.Mutex
	state     State
	session   game.Session
	hasMirror bool
	ch        *transport.Channel
	addr      string
	attempts  int
	connCtx   context.Context
	connStop  context.CancelFunc

	updates chan game.Session
	errs    chan error
}

// New builds a replica for the given local player record.
func New(player game.Player, cfg Config) *Replica {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Dial == nil {
		cfg.Dial = func(ctx context.Context, addr string) (*transport.Channel, error) {
			return transport.Dial(ctx, addr, cfg.Logger)
		}
	}
	if cfg.BackoffUnit <= 0 {
		cfg.BackoffUnit = time.Second
	}
	return &Replica{
		cfg:     cfg,
		log:     cfg.Logger,
		player:  player,
		updates: make(chan game.Session, 8),
		errs:    make(chan error, 1),
	}
}

// State reports the connection machine's current state.
func (r *Replica) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Session returns the current mirror and whether one has arrived yet.
func (r *Replica) Session() (game.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session, r.hasMirror
}

// LocalPlayer returns the authoritative copy of the local player from
// the mirror when available, else the record used to join.
func (r *Replica) LocalPlayer() game.Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.hasMirror {
		if p, ok := r.session.Player(r.player.ID); ok {
			return p
		}
	}
	return r.player
}

// Updates delivers every applied sync_state. Slow readers miss
// intermediate snapshots, never the latest.
func (r *Replica) Updates() <-chan game.Session { return r.updates }

// Errors surfaces terminal connection failures.
func (r *Replica) Errors() <-chan error { return r.errs }

// Connect dials the host and joins the session. It resets the reconnect
// counter, so a terminal replica can always be revived explicitly.
func (r *Replica) Connect(ctx context.Context, addr string) error {
	r.mu.Lock()
	if r.state == StateConnected || r.state == StateConnecting {
		r.mu.Unlock()
		return nil
	}
	if r.connStop != nil {
		// Abandon any in-flight reconnect loop from a prior connect.
		r.connStop()
	}
	r.state = StateConnecting
	r.addr = addr
	r.attempts = 0
	connCtx, stop := context.WithCancel(context.Background())
	r.connCtx = connCtx
	r.connStop = stop
	r.mu.Unlock()

	ch, err := r.cfg.Dial(ctx, addr)
	if err != nil {
		r.mu.Lock()
		r.state = StateDisconnected
		r.mu.Unlock()
		return err
	}
	return r.attachChannel(ch)
}

// attachChannel joins on a fresh channel and starts its read loop.
func (r *Replica) attachChannel(ch *transport.Channel) error {
	env, err := protocol.NewEnvelope(r.player.ID, protocol.PlayerJoin{Player: r.player})
	if err == nil {
		err = ch.Send(env)
	}
	if err != nil {
		ch.Close()
		r.mu.Lock()
		r.state = StateDisconnected
		r.mu.Unlock()
		return err
	}

	r.mu.Lock()
	r.ch = ch
	r.state = StateConnected
	r.attempts = 0
	ctx := r.connCtx
	r.mu.Unlock()

	r.log.Info("connected to host", zap.String("addr", r.addr))
	go r.run(ctx, ch)
	return nil
}

func (r *Replica) run(ctx context.Context, ch *transport.Channel) {
	for env := range ch.Inbound() {
		r.handleInbound(env)
	}
	info := <-ch.Closed()

	r.mu.Lock()
	if r.connCtx != ctx {
		// A newer Connect superseded this channel; its lifecycle is no
		// longer ours to report.
		r.mu.Unlock()
		return
	}
	deliberate := ctx.Err() != nil || info.Cause == transport.CloseLocal
	if deliberate {
		r.state = StateDisconnected
		r.ch = nil
		r.mu.Unlock()
		return
	}
	r.state = StateReconnecting
	r.ch = nil
	r.mu.Unlock()

	r.log.Warn("connection lost",
		zap.String("cause", info.Cause.String()),
		zap.Error(info.Err))
	go r.reconnect(ctx)
}

// handleInbound applies host broadcasts. Only sync_state matters to a
// replica; anything else is dropped.
func (r *Replica) handleInbound(env protocol.Envelope) {
	payload, err := protocol.DecodePayload(env)
	if err != nil {
		r.log.Warn("dropping bad message", zap.String("type", string(env.Type)), zap.Error(err))
		return
	}
	sync, ok := payload.(protocol.SyncState)
	if !ok {
		return
	}

	r.mu.Lock()
	r.session = sync.Session
	r.hasMirror = true
	r.mu.Unlock()

	// Keep only the freshest snapshot for slow readers.
	for {
		select {
		case r.updates <- sync.Session:
			return
		default:
			select {
			case <-r.updates:
			default:
			}
		}
	}
}

// backoffDelay is the wait before reconnect attempt n (1-based):
// 1, 2, 4, 8 then capped at 10 units.
func backoffDelay(attempt int, unit time.Duration) time.Duration {
	d := 1 << (attempt - 1)
	if d > maxBackoff {
		d = maxBackoff
	}
	return time.Duration(d) * unit
}

func (r *Replica) reconnect(ctx context.Context) {
	for {
		r.mu.Lock()
		if r.connCtx != ctx {
			// Superseded by a newer Connect; the live connection's state
			// must not be stomped by this stale loop.
			r.mu.Unlock()
			return
		}
		if ctx.Err() != nil {
			r.state = StateDisconnected
			r.mu.Unlock()
			return
		}
		r.attempts++
		attempt := r.attempts
		addr := r.addr
		r.mu.Unlock()

		if attempt > maxReconnectAttempts {
			r.mu.Lock()
			if r.connCtx == ctx {
				r.state = StateDisconnected
			}
			r.mu.Unlock()
			r.log.Error("giving up after max reconnect attempts",
				zap.Int("attempts", maxReconnectAttempts))
			select {
			case r.errs <- ErrReconnectFailed:
			default:
			}
			return
		}

		delay := backoffDelay(attempt, r.cfg.BackoffUnit)
		r.log.Info("reconnecting",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay))

		select {
		case <-ctx.Done():
			r.mu.Lock()
			if r.connCtx == ctx {
				r.state = StateDisconnected
			}
			r.mu.Unlock()
			return
		case <-time.After(delay):
		}

		ch, err := r.cfg.Dial(ctx, addr)
		if err != nil {
			r.log.Warn("reconnect attempt failed", zap.Int("attempt", attempt), zap.Error(err))
			continue
		}
		if err := r.attachChannel(ch); err != nil {
			r.log.Warn("rejoin failed", zap.Int("attempt", attempt), zap.Error(err))
			continue
		}
		return
	}
}

// Disconnect leaves deliberately: player_leave is sent best-effort, the
// channel is torn down and all reconnection state is reset.
func (r *Replica) Disconnect() {
	r.mu.Lock()
	ch := r.ch
	stop := r.connStop
	r.ch = nil
	r.state = StateDisconnected
	r.attempts = 0
	r.hasMirror = false
	r.mu.Unlock()

	if stop != nil {
		stop()
	}
	if ch != nil {
		if env, err := protocol.NewEnvelope(r.player.ID, protocol.PlayerLeave{PlayerID: r.player.ID}); err == nil {
			_ = ch.Send(env)
		}
		ch.Close()
	}
}

func (r *Replica) send(p protocol.Payload) error {
	r.mu.Lock()
	ch := r.ch
	state := r.state
	r.mu.Unlock()
	if ch == nil || state != StateConnected {
		return ErrNotConnected
	}
	env, err := protocol.NewEnvelope(r.player.ID, p)
	if err != nil {
		return err
	}
	return ch.Send(env)
}

// UpdatePlayer sends a patch for the local player upstream. The mirror
// is not touched; the authoritative value arrives in the next
// sync_state.
func (r *Replica) UpdatePlayer(patch game.PlayerPatch) error {
	return r.send(protocol.PlayerUpdate{PlayerID: r.player.ID, Patch: patch})
}

func (r *Replica) SetLevel(level int) error {
	return r.UpdatePlayer(game.PlayerPatch{Level: &level})
}

func (r *Replica) SetGear(gear int) error {
	return r.UpdatePlayer(game.PlayerPatch{GearBonus: &gear})
}

func (r *Replica) SetRace(race game.RaceID) error {
	return r.UpdatePlayer(game.PlayerPatch{Race: &race})
}

func (r *Replica) SetClass(class game.ClassID) error {
	return r.UpdatePlayer(game.PlayerPatch{Class: &class})
}

func (r *Replica) StartCombat(c game.Combat) error {
	return r.send(protocol.CombatStart{Combat: c})
}

func (r *Replica) UpdateCombat(c game.Combat) error {
	return r.send(protocol.CombatUpdate{Combat: c})
}

func (r *Replica) EndCombat(victory, cancelled bool) error {
	return r.send(protocol.CombatEnd{Victory: victory, Cancelled: cancelled})
}

func (r *Replica) NextTurn() error {
	return r.send(protocol.TurnChange{})
}

// RollDice draws a die locally and reports it upstream; the roll counts
// once it comes back in a sync_state.
func (r *Replica) RollDice(value int, reason string) error {
	return r.send(protocol.DiceRoll{Roll: game.DiceRoll{
		PlayerID:    r.player.ID,
		Value:       value,
		TimestampMs: time.Now().UnixMilli(),
		Reason:      reason,
	}})
}
