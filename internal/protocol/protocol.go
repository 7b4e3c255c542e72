// Package protocol defines the wire contract between host and clients:
// newline-terminated JSON envelopes of the form
//
//	{ "type": "...", "payload": ..., "senderId": "...", "timestampMs": 0 }
//
// Each message type carries a concretely typed payload; DecodePayload is
// the single place raw JSON turns into one of them.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lanfest/munchkin-lan/internal/game"
)

type MessageType string

const (
	MsgPlayerJoin   MessageType = "player_join"
	MsgPlayerLeave  MessageType = "player_leave"
	MsgPlayerUpdate MessageType = "player_update"
	MsgCombatStart  MessageType = "combat_start"
	MsgCombatUpdate MessageType = "combat_update"
	MsgCombatEnd    MessageType = "combat_end"
	MsgTurnChange   MessageType = "turn_change"
	MsgDiceRoll     MessageType = "dice_roll"
	MsgSyncState    MessageType = "sync_state"
)

type Envelope struct {
	Type        MessageType     `json:"type"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	SenderID    string          `json:"senderId"`
	TimestampMs int64           `json:"timestampMs"`
}

// Payload is the closed set of message bodies.
type Payload interface{ isPayload() }

// PlayerJoin carries the joiner's full player record.
type PlayerJoin struct {
	Player game.Player `json:"player"`
}

// PlayerLeave announces a deliberate departure.
type PlayerLeave struct {
	PlayerID string `json:"playerId"`
}

// PlayerUpdate patches fields of the sender's own player record.
type PlayerUpdate struct {
	PlayerID string `json:"playerId"`
	Patch    game.PlayerPatch
}

// CombatStart opens a combat led by the sender.
type CombatStart struct {
	Combat game.Combat `json:"combat"`
}

// CombatUpdate replaces the current combat wholesale.
type CombatUpdate struct {
	Combat game.Combat `json:"combat"`
}

// CombatEnd resolves or cancels the current combat.
type CombatEnd struct {
	Victory   bool `json:"victory"`
	Cancelled bool `json:"cancelled,omitempty"`
}

// TurnChange advances the round-robin turn pointer.
type TurnChange struct{}

// DiceRoll appends one die result to the session history.
type DiceRoll struct {
	Roll game.DiceRoll `json:"roll"`
}

// SyncState is the host's full-state broadcast.
type SyncState struct {
	Session game.Session `json:"session"`
}

func (PlayerJoin) isPayload()   {}
func (PlayerLeave) isPayload()  {}
func (PlayerUpdate) isPayload() {}
func (CombatStart) isPayload()  {}
func (CombatUpdate) isPayload() {}
func (CombatEnd) isPayload()    {}
func (TurnChange) isPayload()   {}
func (DiceRoll) isPayload()     {}
func (SyncState) isPayload()    {}

// playerUpdateWire flattens the patch next to the player id on the wire.
type playerUpdateWire struct {
	PlayerID string `json:"playerId"`
	game.PlayerPatch
}

func messageType(p Payload) (MessageType, any) {
	switch v := p.(type) {
	case PlayerJoin:
		return MsgPlayerJoin, v
	case PlayerLeave:
		return MsgPlayerLeave, v
	case PlayerUpdate:
		return MsgPlayerUpdate, playerUpdateWire{PlayerID: v.PlayerID, PlayerPatch: v.Patch}
	case CombatStart:
		return MsgCombatStart, v
	case CombatUpdate:
		return MsgCombatUpdate, v
	case CombatEnd:
		return MsgCombatEnd, v
	case TurnChange:
		return MsgTurnChange, v
	case DiceRoll:
		return MsgDiceRoll, v
	case SyncState:
		return MsgSyncState, v
	default:
		return "", v
	}
}

// NewEnvelope wraps a payload for sending.
func NewEnvelope(senderID string, p Payload) (Envelope, error) {
	msgType, body := messageType(p)
	if msgType == "" {
		return Envelope{}, fmt.Errorf("protocol: unknown payload %T", p)
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return Envelope{}, fmt.Errorf("protocol: marshal %s: %w", msgType, err)
	}
	return Envelope{
		Type:        msgType,
		Payload:     raw,
		SenderID:    senderID,
		TimestampMs: time.Now().UnixMilli(),
	}, nil
}

// DecodePayload parses an envelope's body into its concrete type.
func DecodePayload(env Envelope) (Payload, error) {
	switch env.Type {
	case MsgPlayerJoin:
		var p PlayerJoin
		return p, unmarshal(env, &p)
	case MsgPlayerLeave:
		var p PlayerLeave
		return p, unmarshal(env, &p)
	case MsgPlayerUpdate:
		var w playerUpdateWire
		if err := unmarshal(env, &w); err != nil {
			return nil, err
		}
		return PlayerUpdate{PlayerID: w.PlayerID, Patch: w.PlayerPatch}, nil
	case MsgCombatStart:
		var p CombatStart
		return p, unmarshal(env, &p)
	case MsgCombatUpdate:
		var p CombatUpdate
		return p, unmarshal(env, &p)
	case MsgCombatEnd:
		var p CombatEnd
		return p, unmarshal(env, &p)
	case MsgTurnChange:
		return TurnChange{}, nil
	case MsgDiceRoll:
		var p DiceRoll
		return p, unmarshal(env, &p)
	case MsgSyncState:
		var p SyncState
		return p, unmarshal(env, &p)
	default:
		return nil, fmt.Errorf("protocol: unknown message type %q", env.Type)
	}
}

func unmarshal(env Envelope, dst any) error {
	if len(env.Payload) == 0 {
		return fmt.Errorf("protocol: empty payload for %s", env.Type)
	}
	if err := json.Unmarshal(env.Payload, dst); err != nil {
		return fmt.Errorf("protocol: decode %s: %w", env.Type, err)
	}
	return nil
}
