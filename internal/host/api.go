package host

import (
	"math/rand"
	"time"

	"github.com/lanfest/munchkin-lan/internal/combat"
	"github.com/lanfest/munchkin-lan/internal/game"
)

// Collaborator surface for the host device's own UI. Every call is a
// thin wrapper over the pure session mutations, routed through the loop
// so host-local changes share the apply-then-rebroadcast path with
// remote events.

func (h *Host) do(fn func(game.Session) game.Session) {
	select {
	case h.inbox <- localOp{apply: fn}:
	case <-h.ctx.Done():
	}
}

// Session returns a snapshot of the current state.
func (h *Host) Session() game.Session {
	reply := make(chan game.Session, 1)
	select {
	case h.inbox <- getState{reply: reply}:
		return <-reply
	case <-h.ctx.Done():
		return game.Session{}
	}
}

func (h *Host) SetPlayerLevel(playerID string, level int) {
	h.do(func(s game.Session) game.Session { return game.SetPlayerLevel(s, playerID, level) })
}

func (h *Host) SetPlayerGear(playerID string, gear int) {
	h.do(func(s game.Session) game.Session { return game.SetPlayerGear(s, playerID, gear) })
}

func (h *Host) SetPlayerRace(playerID string, race game.RaceID) {
	h.do(func(s game.Session) game.Session { return game.SetPlayerRace(s, playerID, race) })
}

func (h *Host) SetPlayerClass(playerID string, class game.ClassID) {
	h.do(func(s game.Session) game.Session { return game.SetPlayerClass(s, playerID, class) })
}

func (h *Host) StartGame() {
	h.do(func(s game.Session) game.Session { return game.StartGame(s, time.Now()) })
}

func (h *Host) NextTurn() {
	h.do(func(s game.Session) game.Session { return game.NextTurn(s, time.Now()) })
}

func (h *Host) SetTimerConfig(enabled bool, durationSec int) {
	h.do(func(s game.Session) game.Session { return game.SetTimerConfig(s, enabled, durationSec) })
}

func (h *Host) StartCombat(mainPlayerID string) {
	h.do(func(s game.Session) game.Session { return game.StartCombat(s, mainPlayerID, time.Now()) })
}

func (h *Host) AddMonsterToCombat(m game.Monster, enhancers int) {
	h.do(func(s game.Session) game.Session { return game.AddMonsterToCombat(s, m, enhancers) })
}

// AddMonsterToCombatByID resolves a catalog id (built-in or user-added)
// and adds that monster to the current combat.
func (h *Host) AddMonsterToCombatByID(id string, enhancers int) {
	h.do(func(s game.Session) game.Session {
		m, ok := s.MonsterByID(id)
		if !ok {
			return s
		}
		return game.AddMonsterToCombat(s, m, enhancers)
	})
}

func (h *Host) RemoveMonsterFromCombat(index int) {
	h.do(func(s game.Session) game.Session { return game.RemoveMonsterFromCombat(s, index) })
}

func (h *Host) AddHelperToCombat(playerID string) {
	h.do(func(s game.Session) game.Session { return game.AddHelperToCombat(s, playerID) })
}

func (h *Host) RemoveHelperFromCombat(playerID string) {
	h.do(func(s game.Session) game.Session { return game.RemoveHelperFromCombat(s, playerID) })
}

func (h *Host) ResolveCombat(victory bool) {
	h.do(func(s game.Session) game.Session { return game.ResolveCombat(s, victory) })
}

func (h *Host) CancelCombat() {
	h.do(game.CancelCombat)
}

// UpdateSession replaces the session wholesale, for collaborator flows
// that edit several fields in one step.
func (h *Host) UpdateSession(next game.Session) {
	h.do(func(game.Session) game.Session { return next })
}

// ResolveFleeFailure applies the bad stuff after a failed run-away: a
// lethal monster in the encounter kills every combatant, and the combat
// ends either way.
func (h *Host) ResolveFleeFailure() {
	h.do(func(s game.Session) game.Session {
		if s.CurrentCombat == nil {
			return s
		}
		if combat.LethalBadStuff(s.CurrentCombat.Monsters) {
			for _, p := range s.Combatants() {
				s = game.KillPlayer(s, p.ID)
			}
		}
		return game.CancelCombat(s)
	})
}

func (h *Host) KillPlayer(playerID string) {
	h.do(func(s game.Session) game.Session { return game.KillPlayer(s, playerID) })
}

func (h *Host) RespawnPlayer(playerID string) {
	h.do(func(s game.Session) game.Session { return game.RespawnPlayer(s, playerID) })
}

func (h *Host) ApplyCurse(playerID, curseID string) {
	h.do(func(s game.Session) game.Session { return game.ApplyCurse(s, playerID, curseID) })
}

func (h *Host) RemoveCurse(playerID, curseID string) {
	h.do(func(s game.Session) game.Session { return game.RemoveCurse(s, playerID, curseID) })
}

func (h *Host) AddCustomMonster(m game.Monster) {
	h.do(func(s game.Session) game.Session { return game.AddCustomMonster(s, m) })
}

// RollDice draws a die for the player, records it in the session and
// returns the face value.
func (h *Host) RollDice(playerID, reason string) int {
	value := rand.Intn(6) + 1
	roll := game.DiceRoll{
		PlayerID:    playerID,
		Value:       value,
		TimestampMs: time.Now().UnixMilli(),
		Reason:      reason,
	}
	h.do(func(s game.Session) game.Session { return game.AppendDiceRoll(s, roll) })
	return value
}

// Watch registers a local observer that receives every broadcast
// snapshot, starting with the current one. The channel is closed on
// shutdown or when the observer falls behind.
func (h *Host) Watch(id string) <-chan game.Session {
	out := make(chan game.Session, 8)
	select {
	case h.inbox <- Subscribe{ID: id, Out: out}:
	case <-h.ctx.Done():
		close(out)
	}
	return out
}

func (h *Host) Unwatch(id string) {
	select {
	case h.inbox <- Unsubscribe{ID: id}:
	case <-h.ctx.Done():
	}
}

// Stop tears down the loop and every connection.
func (h *Host) Stop() {
	select {
	case h.inbox <- Shutdown{}:
	case <-h.ctx.Done():
	}
}
