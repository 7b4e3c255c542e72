package protocol

import (
	"encoding/json"
	"testing"

	"github.com/lanfest/munchkin-lan/internal/game"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	level := 4
	payloads := []Payload{
		PlayerJoin{Player: game.Player{ID: "p1", Name: "alice", Level: 3}},
		PlayerLeave{PlayerID: "p1"},
		PlayerUpdate{PlayerID: "p1", Patch: game.PlayerPatch{Level: &level}},
		CombatStart{Combat: game.Combat{ID: "c1", MainPlayerID: "p1"}},
		CombatUpdate{Combat: game.Combat{ID: "c1", PlayerBonus: 2}},
		CombatEnd{Victory: true},
		TurnChange{},
		DiceRoll{Roll: game.DiceRoll{PlayerID: "p1", Value: 6}},
		SyncState{Session: game.Session{ID: "s1", HostID: "p1"}},
	}

	for _, p := range payloads {
		env, err := NewEnvelope("p1", p)
		if err != nil {
			t.Fatalf("%T: envelope: %v", p, err)
		}
		if env.SenderID != "p1" || env.TimestampMs == 0 {
			t.Fatalf("%T: envelope header: %+v", p, env)
		}

		// Through the wire and back.
		line, err := json.Marshal(env)
		if err != nil {
			t.Fatalf("%T: marshal: %v", p, err)
		}
		var decoded Envelope
		if err := json.Unmarshal(line, &decoded); err != nil {
			t.Fatalf("%T: unmarshal: %v", p, err)
		}
		got, err := DecodePayload(decoded)
		if err != nil {
			t.Fatalf("%T: decode: %v", p, err)
		}
		gotType, _ := messageType(got)
		if gotType != env.Type {
			t.Fatalf("%T: decoded as %T (%s)", p, got, gotType)
		}
	}
}

func TestDecodePlayerUpdateFields(t *testing.T) {
	level, gear := 7, 3
	env, err := NewEnvelope("p1", PlayerUpdate{
		PlayerID: "p1",
		Patch:    game.PlayerPatch{Level: &level, GearBonus: &gear},
	})
	if err != nil {
		t.Fatalf("envelope: %v", err)
	}

	// The patch is flattened next to the player id on the wire.
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(env.Payload, &raw); err != nil {
		t.Fatalf("payload: %v", err)
	}
	for _, key := range []string{"playerId", "level", "gearBonus"} {
		if _, ok := raw[key]; !ok {
			t.Fatalf("payload missing %q: %s", key, env.Payload)
		}
	}

	got, err := DecodePayload(env)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	update := got.(PlayerUpdate)
	if update.PlayerID != "p1" || update.Patch.Level == nil || *update.Patch.Level != 7 {
		t.Fatalf("round trip lost patch: %+v", update)
	}
	if update.Patch.GearBonus == nil || *update.Patch.GearBonus != 3 {
		t.Fatalf("round trip lost gear: %+v", update)
	}
	if update.Patch.Race != nil || update.Patch.IsDead != nil {
		t.Fatalf("absent fields decoded as set: %+v", update.Patch)
	}
}

func TestDecodeRejectsUnknownType(t *testing.T) {
	_, err := DecodePayload(Envelope{Type: "teleport", Payload: json.RawMessage(`{}`)})
	if err == nil {
		t.Fatalf("unknown type decoded")
	}
}

func TestDecodeRejectsEmptyPayload(t *testing.T) {
	_, err := DecodePayload(Envelope{Type: MsgPlayerJoin})
	if err == nil {
		t.Fatalf("empty player_join payload decoded")
	}

	// turn_change carries no body and must still decode.
	if _, err := DecodePayload(Envelope{Type: MsgTurnChange}); err != nil {
		t.Fatalf("turn_change without payload: %v", err)
	}
}

func TestDecodeRejectsMalformedBody(t *testing.T) {
	_, err := DecodePayload(Envelope{Type: MsgSyncState, Payload: json.RawMessage(`{"session":`)})
	if err == nil {
		t.Fatalf("malformed body decoded")
	}
}
