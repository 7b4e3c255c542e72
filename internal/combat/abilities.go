package combat

import (
	"fmt"

	"github.com/lanfest/munchkin-lan/internal/game"
)

// Modifiers is the resolved effect of a player's race and class plus
// their lingering curses for one encounter.
type Modifiers struct {
	CombatBonus int
	FleeBonus   int
	TiesWin     bool
	Notes       []string
}

// Context carries per-call inputs the session does not model as cards:
// warrior discards and gnome no-class-item usage come from the table.
type Context struct {
	Monsters          []game.CombatMonster
	DiscardedCards    int
	UsingNoClassItems bool
}

// RaceModifiers resolves the race ability for one player. Orc kills come
// from the player's own session counter.
func RaceModifiers(p game.Player, ctx Context) Modifiers {
	var m Modifiers
	switch p.Race {
	case game.RaceElf:
		m.FleeBonus = 1
		m.Notes = append(m.Notes, "Elf: +1 to run away")
	case game.RaceOrc:
		if p.MonstersKilled > 0 {
			m.CombatBonus = p.MonstersKilled
			m.Notes = append(m.Notes, fmt.Sprintf("Orc: +%d (monsters defeated)", p.MonstersKilled))
		}
	case game.RaceGnome:
		if ctx.UsingNoClassItems {
			m.CombatBonus = 2
			m.Notes = append(m.Notes, "Gnome: +2 (no-class items)")
		}
	}
	return m
}

// ClassModifiers resolves the class ability for one player.
func ClassModifiers(p game.Player, ctx Context) Modifiers {
	var m Modifiers
	switch p.Class {
	case game.ClassWarrior:
		if ctx.DiscardedCards > 0 {
			m.CombatBonus = ctx.DiscardedCards
			m.Notes = append(m.Notes, fmt.Sprintf("Warrior: +%d (discarded cards)", ctx.DiscardedCards))
		}
		m.TiesWin = true
		m.Notes = append(m.Notes, "Warrior: wins ties")
	case game.ClassCleric:
		for _, cm := range ctx.Monsters {
			if cm.Monster.Undead {
				m.CombatBonus = 3
				m.Notes = append(m.Notes, "Cleric: +3 vs undead")
				break
			}
		}
	}
	return m
}

// PlayerModifiers combines race, class and curse effects. A no-abilities
// curse blanks the race/class contribution entirely, including the
// warrior tie rule; penalty curses always apply.
func PlayerModifiers(p game.Player, ctx Context) Modifiers {
	curses := game.CursesByIDs(p.ActiveCurseIDs)

	var m Modifiers
	if !abilitiesLocked(curses) {
		race := RaceModifiers(p, ctx)
		class := ClassModifiers(p, ctx)
		m.CombatBonus = race.CombatBonus + class.CombatBonus
		m.FleeBonus = race.FleeBonus + class.FleeBonus
		m.TiesWin = race.TiesWin || class.TiesWin
		m.Notes = append(race.Notes, class.Notes...)
	}
	m.CombatBonus -= CombatPenalty(curses)
	m.FleeBonus -= FleePenalty(curses)
	return m
}

func abilitiesLocked(curses []game.Curse) bool {
	for _, c := range curses {
		if c.Effect == game.CurseNoAbilities {
			return true
		}
	}
	return false
}

// CombatPenalty sums the magnitudes of active combat-penalty curses.
func CombatPenalty(curses []game.Curse) int {
	total := 0
	for _, c := range curses {
		if c.Effect == game.CurseCombatPenalty {
			total += c.Modifier
		}
	}
	return total
}

// FleePenalty sums the magnitudes of active flee-penalty curses.
func FleePenalty(curses []game.Curse) int {
	total := 0
	for _, c := range curses {
		if c.Effect == game.CurseFleePenalty {
			total += c.Modifier
		}
	}
	return total
}
