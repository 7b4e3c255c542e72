package combat

import (
	"testing"

	"github.com/lanfest/munchkin-lan/internal/game"
)

func player(name string, level, gear int) game.Player {
	p := game.NewPlayer(name)
	p.Level = level
	p.GearBonus = gear
	return p
}

func TestPlayerStrength(t *testing.T) {
	cases := []struct {
		name    string
		main    game.Player
		helpers []game.Player
		combat  game.Combat
		want    int
	}{
		{
			name: "level plus gear",
			main: player("a", 5, 3),
			want: 8,
		},
		{
			name:   "one-shot player bonus",
			main:   player("a", 3, 2),
			combat: game.Combat{PlayerBonus: 5},
			want:   10,
		},
		{
			name:    "helpers stack",
			main:    player("a", 4, 1),
			helpers: []game.Player{player("b", 2, 2)},
			want:    9,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := PlayerStrength(tc.main, tc.helpers, tc.combat, Context{})
			if got != tc.want {
				t.Fatalf("got %d, want %d", got, tc.want)
			}
		})
	}
}

func TestMonsterStrength(t *testing.T) {
	elf := player("elf", 1, 0)
	elf.Race = game.RaceElf
	human := player("human", 1, 0)

	antiElf := game.Monster{
		Name:    "Shrieking Geek",
		Level:   6,
		Bonuses: []game.MonsterBonus{{Target: game.BonusTarget(game.RaceElf), Value: 4}},
	}

	cases := []struct {
		name       string
		monsters   []game.CombatMonster
		combatants []game.Player
		combat     game.Combat
		want       int
	}{
		{
			name:     "level plus enhancers",
			monsters: []game.CombatMonster{{Monster: game.Monster{Level: 5}, Enhancers: 3}},
			want:     8,
		},
		{
			name: "levels sum across monsters",
			monsters: []game.CombatMonster{
				{Monster: game.Monster{Level: 5}},
				{Monster: game.Monster{Level: 8}},
			},
			want: 13,
		},
		{
			name:     "one-shot monster bonus",
			monsters: []game.CombatMonster{{Monster: game.Monster{Level: 4}}},
			combat:   game.Combat{MonsterBonus: 2},
			want:     6,
		},
		{
			name:       "bonus fires once per matching combatant",
			monsters:   []game.CombatMonster{{Monster: antiElf}},
			combatants: []game.Player{elf, elf, human},
			want:       14, // 6 + 4 + 4
		},
		{
			name:       "bonus skips non-matching side",
			monsters:   []game.CombatMonster{{Monster: antiElf}},
			combatants: []game.Player{human},
			want:       6,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := MonsterStrength(tc.monsters, tc.combatants, tc.combat)
			if got != tc.want {
				t.Fatalf("got %d, want %d", got, tc.want)
			}
		})
	}
}

func TestBonusTargets(t *testing.T) {
	classless := player("a", 1, 0)
	warrior := player("b", 1, 0)
	warrior.Class = game.ClassWarrior
	raceless := player("c", 1, 0)
	female := player("d", 1, 0)
	female.Sex = game.SexFemale

	cases := []struct {
		name   string
		target game.BonusTarget
		p      game.Player
		want   bool
	}{
		{name: "noClass matches classless", target: game.TargetNoClass, p: classless, want: true},
		{name: "noClass skips warrior", target: game.TargetNoClass, p: warrior, want: false},
		{name: "noRace matches raceless", target: game.TargetNoRace, p: raceless, want: true},
		{name: "class target", target: "warrior", p: warrior, want: true},
		{name: "sex target", target: "female", p: female, want: true},
		{name: "sex target misses male", target: "female", p: classless, want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := bonusMatches(tc.target, tc.p); got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestResolveTies(t *testing.T) {
	monsters := []game.CombatMonster{{Monster: game.Monster{Level: 8}}}
	c := game.Combat{Monsters: monsters}

	// 5 + 3 = 8 ties the monster; monsters win by default.
	main := player("a", 5, 3)
	res := Resolve(main, nil, c, Context{})
	if res.PlayerStrength != 8 || res.MonsterStrength != 8 {
		t.Fatalf("strengths: %d vs %d", res.PlayerStrength, res.MonsterStrength)
	}
	if res.Victory {
		t.Fatalf("tie resolved for the player without a warrior")
	}

	// A warrior anywhere on the player side flips the tie.
	warrior := player("a", 5, 3)
	warrior.Class = game.ClassWarrior
	if res := Resolve(warrior, nil, c, Context{}); !res.Victory {
		t.Fatalf("warrior lost a tie")
	}

	helper := player("b", 1, 0)
	helper.Class = game.ClassWarrior
	weaker := player("a", 4, 3) // 4+3+1 = 8 with the helper's level
	if res := Resolve(weaker, []game.Player{helper}, c, Context{}); !res.Victory {
		t.Fatalf("warrior helper's tie rule ignored")
	}

	// A no-abilities curse blanks the tie rule too.
	cursed := player("a", 5, 3)
	cursed.Class = game.ClassWarrior
	cursed.ActiveCurseIDs = []string{"curse_malign_mirror"}
	if res := Resolve(cursed, nil, c, Context{}); res.Victory {
		t.Fatalf("cursed warrior still won the tie")
	}
}

func TestAbilityModifiers(t *testing.T) {
	undead := Context{Monsters: []game.CombatMonster{{Monster: game.Monster{Undead: true}}}}

	orc := player("orc", 1, 0)
	orc.Race = game.RaceOrc
	orc.MonstersKilled = 3
	if m := PlayerModifiers(orc, Context{}); m.CombatBonus != 3 {
		t.Fatalf("orc bonus: got %d, want 3", m.CombatBonus)
	}

	gnome := player("gnome", 1, 0)
	gnome.Race = game.RaceGnome
	if m := PlayerModifiers(gnome, Context{UsingNoClassItems: true}); m.CombatBonus != 2 {
		t.Fatalf("gnome bonus: got %d, want 2", m.CombatBonus)
	}
	if m := PlayerModifiers(gnome, Context{}); m.CombatBonus != 0 {
		t.Fatalf("gnome bonus without no-class items: got %d", m.CombatBonus)
	}

	cleric := player("cleric", 1, 0)
	cleric.Class = game.ClassCleric
	if m := PlayerModifiers(cleric, undead); m.CombatBonus != 3 {
		t.Fatalf("cleric vs undead: got %d, want 3", m.CombatBonus)
	}
	if m := PlayerModifiers(cleric, Context{}); m.CombatBonus != 0 {
		t.Fatalf("cleric vs living: got %d", m.CombatBonus)
	}

	warrior := player("warrior", 1, 0)
	warrior.Class = game.ClassWarrior
	if m := PlayerModifiers(warrior, Context{DiscardedCards: 2}); m.CombatBonus != 2 || !m.TiesWin {
		t.Fatalf("warrior: bonus=%d tiesWin=%v", m.CombatBonus, m.TiesWin)
	}

	// Penalty curses apply even under a no-abilities curse.
	cursed := player("cursed", 1, 0)
	cursed.Class = game.ClassWarrior
	cursed.ActiveCurseIDs = []string{"curse_malign_mirror", "curse_weakness"}
	if m := PlayerModifiers(cursed, Context{DiscardedCards: 2}); m.CombatBonus != -3 || m.TiesWin {
		t.Fatalf("cursed warrior: bonus=%d tiesWin=%v", m.CombatBonus, m.TiesWin)
	}
}

func TestFleeThreshold(t *testing.T) {
	cases := []struct {
		name   string
		race   game.RaceID
		curses []string
		want   int
	}{
		{name: "base", want: 5},
		{name: "elf", race: game.RaceElf, want: 4},
		{name: "cowardice", curses: []string{"curse_cowardice"}, want: 7},
		{name: "elf with cowardice", race: game.RaceElf, curses: []string{"curse_cowardice"}, want: 6},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := player("a", 1, 0)
			p.Race = tc.race
			p.ActiveCurseIDs = tc.curses
			if got := FleeThreshold(p, Context{}); got != tc.want {
				t.Fatalf("got %d, want %d", got, tc.want)
			}
			if ok := ResolveFlee(tc.want, p, Context{}); !ok {
				t.Fatalf("roll at threshold did not escape")
			}
			if ok := ResolveFlee(tc.want-1, p, Context{}); ok {
				t.Fatalf("roll below threshold escaped")
			}
		})
	}
}

func TestLethalBadStuff(t *testing.T) {
	safe := []game.CombatMonster{{Monster: game.Monster{Name: "Goblin"}}}
	if LethalBadStuff(safe) {
		t.Fatalf("harmless pack flagged lethal")
	}
	lethal := append(safe, game.CombatMonster{Monster: game.Monster{Name: "Squidzilla", LethalBadStuff: true}})
	if !LethalBadStuff(lethal) {
		t.Fatalf("lethal monster not flagged")
	}
}
