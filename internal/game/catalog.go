package game

import "strings"

// Static catalogs. Races and classes are the playable base set plus the
// expansions the tracker supports; curses are looked up by id and only
// referenced from session state, never embedded in it.

var Races = []Race{
	{ID: RaceHuman, Name: "Human", Expansion: ExpansionBase, Ability: "No special ability"},
	{ID: RaceElf, Name: "Elf", Expansion: ExpansionBase, Ability: "+1 to Run Away. Gain 1 level when you help someone win a combat"},
	{ID: RaceDwarf, Name: "Dwarf", Expansion: ExpansionBase, Ability: "Can carry 6 Big items. Can have 6 cards in hand"},
	{ID: RaceHalfling, Name: "Halfling", Expansion: ExpansionBase, Ability: "Sell items at double value"},
	{ID: RaceOrc, Name: "Orc", Expansion: ExpansionUnnatural, Ability: "+1 for each monster you kill"},
	{ID: RaceGnome, Name: "Gnome", Expansion: ExpansionClerical, Ability: "+2 when using items without class requirement"},
}

var Classes = []Class{
	{ID: ClassWarrior, Name: "Warrior", Expansion: ExpansionBase, Ability: "Discard cards for +1 each in combat. Wins ties"},
	{ID: ClassWizard, Name: "Wizard", Expansion: ExpansionBase, Ability: "Discard cards to run away automatically"},
	{ID: ClassCleric, Name: "Cleric", Expansion: ExpansionBase, Ability: "+3 vs Undead"},
	{ID: ClassThief, Name: "Thief", Expansion: ExpansionBase, Ability: "Can backstab during combat"},
	{ID: ClassBard, Name: "Bard", Expansion: ExpansionClerical, Ability: "Can charm monsters"},
	{ID: ClassRanger, Name: "Ranger", Expansion: ExpansionDeRanged, Ability: "+1 when kicking doors"},
}

type CurseEffect string

const (
	CurseFleePenalty   CurseEffect = "flee_penalty"
	CurseCombatPenalty CurseEffect = "combat_penalty"
	CurseLevelLoss     CurseEffect = "level_loss"
	CurseNoEquipment   CurseEffect = "no_equipment"
	CurseNoAbilities   CurseEffect = "no_abilities"
	CurseExtraBadStuff CurseEffect = "extra_bad_stuff"
)

type CurseDuration string

const (
	DurationInstant   CurseDuration = "instant"
	DurationCombat    CurseDuration = "combat"
	DurationTurn      CurseDuration = "turn"
	DurationPermanent CurseDuration = "permanent"
)

type Curse struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Effect    CurseEffect   `json:"effect"`
	Modifier  int           `json:"modifier"`
	Duration  CurseDuration `json:"duration"`
	Expansion Expansion     `json:"expansion"`
}

var Curses = []Curse{
	{ID: "duck_doom", Name: "Duck of Doom", Effect: CurseLevelLoss, Modifier: 2, Duration: DurationInstant, Expansion: ExpansionBase},
	{ID: "truly_obnoxious", Name: "Truly Obnoxious Curse", Effect: CurseLevelLoss, Modifier: 1, Duration: DurationInstant, Expansion: ExpansionBase},
	{ID: "income_tax", Name: "Income Tax", Effect: CurseLevelLoss, Modifier: 1, Duration: DurationInstant, Expansion: ExpansionBase},
	{ID: "curse_chicken", Name: "Chicken on Your Head", Effect: CurseCombatPenalty, Modifier: 1, Duration: DurationPermanent, Expansion: ExpansionBase},
	{ID: "curse_weakness", Name: "Curse of Weakness", Effect: CurseCombatPenalty, Modifier: 3, Duration: DurationCombat, Expansion: ExpansionBase},
	{ID: "curse_cowardice", Name: "Curse of Cowardice", Effect: CurseFleePenalty, Modifier: 2, Duration: DurationCombat, Expansion: ExpansionBase},
	{ID: "curse_malign_mirror", Name: "Malign Mirror", Effect: CurseNoAbilities, Modifier: 0, Duration: DurationPermanent, Expansion: ExpansionBase},
	{ID: "curse_change_sex", Name: "Change Sex", Effect: CurseNoEquipment, Modifier: 0, Duration: DurationPermanent, Expansion: ExpansionBase},
	{ID: "lose_helmet", Name: "Lose the Headgear", Effect: CurseNoEquipment, Modifier: 0, Duration: DurationInstant, Expansion: ExpansionBase},
}

func RaceByID(id RaceID) (Race, bool) {
	for _, r := range Races {
		if r.ID == id {
			return r, true
		}
	}
	return Race{}, false
}

func ClassByID(id ClassID) (Class, bool) {
	for _, c := range Classes {
		if c.ID == id {
			return c, true
		}
	}
	return Class{}, false
}

func CurseByID(id string) (Curse, bool) {
	for _, c := range Curses {
		if c.ID == id {
			return c, true
		}
	}
	return Curse{}, false
}

// CursesByIDs resolves a set of catalog ids, skipping unknown ones.
func CursesByIDs(ids []string) []Curse {
	out := make([]Curse, 0, len(ids))
	for _, id := range ids {
		if c, ok := CurseByID(id); ok {
			out = append(out, c)
		}
	}
	return out
}

// lethalKeywords flags bad-stuff text that kills the character outright.
// Used only when importing user-entered monsters; built-in catalog
// entries carry an explicit LethalBadStuff flag instead.
var lethalKeywords = []string{"you die", "you are dead", "death", "muerte", "mueres", "morirás"}

// ClassifyLethalBadStuff is a data-entry helper for user-added monsters
// whose lethality was not set explicitly.
func ClassifyLethalBadStuff(badStuff string) bool {
	text := strings.ToLower(badStuff)
	for _, kw := range lethalKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
