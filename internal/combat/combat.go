// Package combat turns a roster of combatants, their monsters and the
// active modifiers into strength totals and a win/lose/flee outcome. It
// is a pure calculator: nothing here mutates session state.
package combat

import "github.com/lanfest/munchkin-lan/internal/game"

// FleeBaseThreshold is the face value needed to run away before
// modifiers: roll >= 5 escapes.
const FleeBaseThreshold = 5

// PlayerStrength is the player side's total: levels plus gear for the
// main player and every helper, the free-floating player bonus, and each
// combatant's ability modifiers (curse penalties included).
func PlayerStrength(main game.Player, helpers []game.Player, c game.Combat, ctx Context) int {
	strength := main.Level + main.GearBonus + c.PlayerBonus
	strength += PlayerModifiers(main, ctx).CombatBonus
	for _, h := range helpers {
		strength += h.Level + h.GearBonus
		strength += PlayerModifiers(h, ctx).CombatBonus
	}
	return strength
}

// MonsterStrength is the monster side's total. Each bonus rule fires
// once per matching combatant, so two vulnerable elves double an
// anti-elf bonus.
func MonsterStrength(monsters []game.CombatMonster, combatants []game.Player, c game.Combat) int {
	strength := c.MonsterBonus
	for _, cm := range monsters {
		level := cm.Monster.Level + cm.Enhancers
		for _, bonus := range cm.Monster.Bonuses {
			for _, p := range combatants {
				if bonusMatches(bonus.Target, p) {
					level += bonus.Value
				}
			}
		}
		strength += level
	}
	return strength
}

func bonusMatches(target game.BonusTarget, p game.Player) bool {
	switch target {
	case game.TargetNoClass:
		return p.Class == ""
	case game.TargetNoRace:
		return p.Race == ""
	}
	if p.Race != "" && target == game.BonusTarget(p.Race) {
		return true
	}
	if p.Class != "" && target == game.BonusTarget(p.Class) {
		return true
	}
	return target == game.BonusTarget(p.Sex)
}

// Result of comparing the two sides.
type Result struct {
	PlayerStrength  int
	MonsterStrength int
	Victory         bool
}

// Resolve computes both totals and the outcome. Equal totals favor the
// monsters unless a combatant's abilities say ties win (warrior rule).
func Resolve(main game.Player, helpers []game.Player, c game.Combat, ctx Context) Result {
	combatants := append([]game.Player{main}, helpers...)
	ps := PlayerStrength(main, helpers, c, ctx)
	ms := MonsterStrength(c.Monsters, combatants, c)

	tiesWin := false
	for _, p := range combatants {
		if PlayerModifiers(p, ctx).TiesWin {
			tiesWin = true
			break
		}
	}
	return Result{
		PlayerStrength:  ps,
		MonsterStrength: ms,
		Victory:         ps > ms || (tiesWin && ps == ms),
	}
}

// FleeThreshold is the roll a player needs to escape: the base 5,
// reduced by flee bonuses (elf) and raised by flee-penalty curses.
func FleeThreshold(p game.Player, ctx Context) int {
	return FleeBaseThreshold - PlayerModifiers(p, ctx).FleeBonus
}

// ResolveFlee reports whether a drawn face value escapes.
func ResolveFlee(roll int, p game.Player, ctx Context) bool {
	return roll >= FleeThreshold(p, ctx)
}

// LethalBadStuff reports whether losing to (or failing to flee from) any
// of the monsters kills the combatants outright. This reads the explicit
// per-monster flag; free-text scanning happens only at data entry.
func LethalBadStuff(monsters []game.CombatMonster) bool {
	for _, cm := range monsters {
		if cm.Monster.LethalBadStuff {
			return true
		}
	}
	return false
}
