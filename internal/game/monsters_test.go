package game

import "testing"

func TestMonsterByID(t *testing.T) {
	s := NewSession(NewPlayer("a"))

	if _, ok := s.MonsterByID("plutonium_dragon"); !ok {
		t.Fatalf("built-in monster not found")
	}
	if _, ok := s.MonsterByID("invented"); ok {
		t.Fatalf("unknown id resolved")
	}

	s = AddCustomMonster(s, Monster{ID: "homebrew", Name: "Homebrew Horror", Level: 9})
	m, ok := s.MonsterByID("homebrew")
	if !ok || !m.UserAdded {
		t.Fatalf("user-added monster not found via session lookup: %+v", m)
	}
}

func TestBuiltinCatalogLethalityIsExplicit(t *testing.T) {
	lethal := map[string]bool{}
	for _, m := range BuiltinMonsters {
		lethal[m.ID] = m.LethalBadStuff
	}
	for _, id := range []string{"king_tut", "squidzilla", "plutonium_dragon"} {
		if !lethal[id] {
			t.Fatalf("%s should carry the lethal flag", id)
		}
	}
	if lethal["potted_plant"] {
		t.Fatalf("potted plant flagged lethal")
	}
}
