package game

// BuiltinMonsters is the seed catalog shipped with the tracker. User
// monsters live on the session (CustomMonsters) and are merged on sync.
var BuiltinMonsters = []Monster{
	{
		ID: "potted_plant", Name: "Potted Plant", Level: 1, Expansion: ExpansionBase,
		BadStuff: "None, unless you fail to run away.", Treasures: 1, LevelsGranted: 1,
	},
	{
		ID: "drooling_slime", Name: "Drooling Slime", Level: 1, Expansion: ExpansionBase,
		Bonuses:  []MonsterBonus{{Target: BonusTarget(RaceElf), Value: 4}},
		BadStuff: "Lose your footgear.", Treasures: 1, LevelsGranted: 1,
	},
	{
		ID: "undead_horse", Name: "Undead Horse", Level: 4, Expansion: ExpansionBase, Undead: true,
		Bonuses:  []MonsterBonus{{Target: BonusTarget(RaceDwarf), Value: 5}},
		BadStuff: "Lose 2 levels.", Treasures: 2, LevelsGranted: 1,
	},
	{
		ID: "shrieking_geek", Name: "Shrieking Geek", Level: 6, Expansion: ExpansionBase,
		Bonuses:  []MonsterBonus{{Target: BonusTarget(ClassWarrior), Value: 6}},
		BadStuff: "Lose your class. No class? Lose 3 levels.", Treasures: 2, LevelsGranted: 1,
	},
	{
		ID: "wannabe_vampire", Name: "Wannabe Vampire", Level: 12, Expansion: ExpansionBase, Undead: true,
		Bonuses:  []MonsterBonus{{Target: BonusTarget(ClassCleric), Value: -3}},
		BadStuff: "Lose 3 levels.", Treasures: 3, LevelsGranted: 1,
	},
	{
		ID: "ghoulfiends", Name: "Ghoulfiends", Level: 8, Expansion: ExpansionBase, Undead: true,
		BadStuff: "You are at level 1 now.", Treasures: 2, LevelsGranted: 1,
	},
	{
		ID: "net_troll", Name: "Net Troll", Level: 10, Expansion: ExpansionBase,
		BadStuff: "Lose your two best items.", Treasures: 3, LevelsGranted: 1,
	},
	{
		ID: "king_tut", Name: "King Tut", Level: 16, Expansion: ExpansionBase, Undead: true,
		BadStuff:       "Lose all your items and any small items. You die if you are below level 4.",
		LethalBadStuff: true, Treasures: 4, LevelsGranted: 2,
	},
	{
		ID: "squidzilla", Name: "Squidzilla", Level: 18, Expansion: ExpansionBase,
		Bonuses:        []MonsterBonus{{Target: BonusTarget(RaceElf), Value: 4}},
		BadStuff:       "You are eaten. You die.", LethalBadStuff: true,
		Treasures: 4, LevelsGranted: 2,
	},
	{
		ID: "plutonium_dragon", Name: "Plutonium Dragon", Level: 20, Expansion: ExpansionBase,
		BadStuff:       "You are roasted and eaten. You die.", LethalBadStuff: true,
		Treasures: 5, LevelsGranted: 2,
	},
	{
		ID: "gazebo", Name: "Gazebo", Level: 8, Expansion: ExpansionBase,
		BadStuff: "No one can help you. Lose 3 levels.", Treasures: 2, LevelsGranted: 1,
	},
	{
		ID: "bigfoot", Name: "Bigfoot", Level: 12, Expansion: ExpansionBase,
		Bonuses:  []MonsterBonus{{Target: BonusTarget(RaceDwarf), Value: 3}, {Target: BonusTarget(RaceGnome), Value: 3}},
		BadStuff: "Stomps you flat. Lose your headgear.", Treasures: 3, LevelsGranted: 1,
	},
	{
		ID: "amazon", Name: "Amazon", Level: 8, Expansion: ExpansionBase,
		Bonuses:  []MonsterBonus{{Target: BonusTarget(SexFemale), Value: -8}},
		BadStuff: "Lose 3 levels.", Treasures: 2, LevelsGranted: 1,
	},
	{
		ID: "lawyer", Name: "Lawyer", Level: 6, Expansion: ExpansionBase,
		Bonuses:  []MonsterBonus{{Target: BonusTarget(ClassThief), Value: 6}},
		BadStuff: "Discard your hand.", Treasures: 2, LevelsGranted: 1,
	},
	{
		ID: "insurance_salesman", Name: "Insurance Salesman", Level: 14, Expansion: ExpansionBase,
		Bonuses:  []MonsterBonus{{Target: TargetNoClass, Value: 4}},
		BadStuff: "Lose all your gear.", Treasures: 4, LevelsGranted: 1,
	},
	{
		ID: "faceless_horror", Name: "Faceless Horror", Level: 8, Expansion: ExpansionUnnatural,
		Bonuses:  []MonsterBonus{{Target: BonusTarget(RaceHuman), Value: 3}, {Target: TargetNoRace, Value: 3}},
		BadStuff: "Your face is stolen.", Treasures: 2, LevelsGranted: 1,
	},
}

// MonsterByID looks a monster up in the built-in catalog plus the
// session's user-added monsters.
func (s Session) MonsterByID(id string) (Monster, bool) {
	for _, m := range BuiltinMonsters {
		if m.ID == id {
			return m, true
		}
	}
	for _, m := range s.CustomMonsters {
		if m.ID == id {
			return m, true
		}
	}
	return Monster{}, false
}
