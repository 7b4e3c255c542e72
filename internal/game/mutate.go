package game

// Pure session mutations. Every operation takes a well-formed session by
// value and returns the next one; out-of-range inputs are clamped or
// ignored, never rejected with an error. Callers that care whether a
// mutation was a no-op compare the before/after values.

import "time"

func clampLevel(level int) int {
	if level < MinLevel {
		return MinLevel
	}
	if level > WinLevel {
		return WinLevel
	}
	return level
}

func clampGear(gear int) int {
	if gear < 0 {
		return 0
	}
	return gear
}

func clampMonsterLevel(level int) int {
	if level < MinMonsterLevel {
		return MinMonsterLevel
	}
	if level > MaxMonsterLevel {
		return MaxMonsterLevel
	}
	return level
}

// clonePlayers gives the returned session its own roster backing array so
// the input session stays untouched.
func clonePlayers(players []Player) []Player {
	out := make([]Player, len(players))
	copy(out, players)
	return out
}

func cloneCombat(c *Combat) *Combat {
	if c == nil {
		return nil
	}
	cc := *c
	cc.HelperIDs = append([]string(nil), c.HelperIDs...)
	cc.Monsters = append([]CombatMonster(nil), c.Monsters...)
	return &cc
}

// mapPlayer applies fn to the roster entry with the given id. Unknown ids
// leave the session unchanged.
func mapPlayer(s Session, id string, fn func(Player) Player) Session {
	idx := -1
	for i, p := range s.Players {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s
	}
	s.Players = clonePlayers(s.Players)
	s.Players[idx] = fn(s.Players[idx])
	return s
}

func appendLog(s Session, t LogType, playerID, msg string) Session {
	entry := LogEntry{TimestampMs: time.Now().UnixMilli(), Type: t, PlayerID: playerID, Message: msg}
	s.Log = append(append([]LogEntry(nil), s.Log...), entry)
	return s
}

// AddPlayer appends p to the roster. The join is ignored when the roster
// is at capacity or the id is already present. New joiners never arrive
// as host.
func AddPlayer(s Session, p Player, maxPlayers int) Session {
	if maxPlayers <= 0 {
		maxPlayers = DefaultMaxPlayers
	}
	if len(s.Players) >= maxPlayers || s.HasPlayer(p.ID) {
		return s
	}
	p.IsHost = false
	p.IsConnected = true
	p.Level = clampLevel(p.Level)
	p.GearBonus = clampGear(p.GearBonus)
	s.Players = append(clonePlayers(s.Players), p)
	return appendLog(s, LogPlayerJoin, p.ID, p.Name+" joined")
}

// RemovePlayer splices the player out, preserving roster order. The turn
// pointer moves to the next surviving player if it pointed at the leaver.
func RemovePlayer(s Session, id string) Session {
	idx := -1
	for i, p := range s.Players {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s
	}
	players := make([]Player, 0, len(s.Players)-1)
	players = append(players, s.Players[:idx]...)
	players = append(players, s.Players[idx+1:]...)
	s.Players = players

	if s.CurrentTurnPlayerID == id {
		if len(players) == 0 {
			s.CurrentTurnPlayerID = ""
		} else {
			s.CurrentTurnPlayerID = players[idx%len(players)].ID
		}
	}
	if s.CurrentCombat != nil {
		c := cloneCombat(s.CurrentCombat)
		helpers := c.HelperIDs[:0]
		for _, h := range c.HelperIDs {
			if h != id {
				helpers = append(helpers, h)
			}
		}
		c.HelperIDs = helpers
		if c.MainPlayerID == id {
			c = nil
		}
		s.CurrentCombat = c
	}
	return appendLog(s, LogPlayerLeave, id, "left the game")
}

// PlayerPatch carries the fields a player_update may change. Nil fields
// are left alone; id and host flag can never be patched.
type PlayerPatch struct {
	Name           *string  `json:"name,omitempty"`
	Level          *int     `json:"level,omitempty"`
	GearBonus      *int     `json:"gearBonus,omitempty"`
	Race           *RaceID  `json:"race,omitempty"`
	Class          *ClassID `json:"gameClass,omitempty"`
	Sex            *Sex     `json:"sex,omitempty"`
	IsDead         *bool    `json:"isDead,omitempty"`
	MonstersKilled *int     `json:"monstersKilled,omitempty"`
	ActiveCurseIDs []string `json:"activeCurseIds,omitempty"`
}

// PatchPlayer applies the allowed fields of a player update, clamping
// ranges and preserving id, host flag and connectivity verbatim.
func PatchPlayer(s Session, id string, patch PlayerPatch) Session {
	return mapPlayer(s, id, func(p Player) Player {
		if patch.Name != nil && *patch.Name != "" {
			p.Name = *patch.Name
		}
		if patch.Level != nil {
			p.Level = clampLevel(*patch.Level)
		}
		if patch.GearBonus != nil {
			p.GearBonus = clampGear(*patch.GearBonus)
		}
		if patch.Race != nil {
			p.Race = *patch.Race
		}
		if patch.Class != nil {
			p.Class = *patch.Class
		}
		if patch.Sex != nil {
			p.Sex = *patch.Sex
		}
		if patch.IsDead != nil {
			if *patch.IsDead {
				return killed(p, s.TurnNumber)
			}
			p.IsDead = false
			p.DeathTurn = 0
		}
		if patch.MonstersKilled != nil && *patch.MonstersKilled >= 0 {
			p.MonstersKilled = *patch.MonstersKilled
		}
		if patch.ActiveCurseIDs != nil {
			p.ActiveCurseIDs = append([]string(nil), patch.ActiveCurseIDs...)
		}
		return p
	})
}

func SetPlayerLevel(s Session, id string, level int) Session {
	return mapPlayer(s, id, func(p Player) Player {
		p.Level = clampLevel(level)
		return p
	})
}

func SetPlayerGear(s Session, id string, gear int) Session {
	return mapPlayer(s, id, func(p Player) Player {
		p.GearBonus = clampGear(gear)
		return p
	})
}

func SetPlayerRace(s Session, id string, race RaceID) Session {
	return mapPlayer(s, id, func(p Player) Player {
		p.Race = race
		return p
	})
}

func SetPlayerClass(s Session, id string, class ClassID) Session {
	return mapPlayer(s, id, func(p Player) Player {
		p.Class = class
		return p
	})
}

func SetPlayerConnected(s Session, id string, connected bool) Session {
	return mapPlayer(s, id, func(p Player) Player {
		p.IsConnected = connected
		return p
	})
}

// StartGame moves the lobby into play: first roster entry takes the
// turn, turn counter starts at 1, the timer clock is stamped if enabled.
// A lobby with no players, or a session already underway, is unchanged.
func StartGame(s Session, now time.Time) Session {
	if s.Status != StatusLobby || len(s.Players) == 0 {
		return s
	}
	s.Status = StatusInProgress
	s.CurrentTurnPlayerID = s.Players[0].ID
	s.TurnNumber = 1
	if s.TimerEnabled {
		s.TurnStartedAtMs = now.UnixMilli()
	} else {
		s.TurnStartedAtMs = 0
	}
	return appendLog(s, LogGameStart, s.Players[0].ID, "game started")
}

// NextTurn round-robins the turn pointer through the roster in order,
// bumps the counter and restamps the timer. Turn-scoped curses on the
// player whose turn just ended expire here.
func NextTurn(s Session, now time.Time) Session {
	if s.Status != StatusInProgress || len(s.Players) == 0 {
		return s
	}
	prevID := s.CurrentTurnPlayerID
	idx := 0
	for i, p := range s.Players {
		if p.ID == prevID {
			idx = (i + 1) % len(s.Players)
			break
		}
	}
	s.CurrentTurnPlayerID = s.Players[idx].ID
	s.TurnNumber++
	if s.TimerEnabled {
		s.TurnStartedAtMs = now.UnixMilli()
	} else {
		s.TurnStartedAtMs = 0
	}
	if prevID != "" {
		s = expireCurses(s, prevID, DurationTurn)
	}
	return appendLog(s, LogTurnStart, s.CurrentTurnPlayerID, "")
}

func SetTimerConfig(s Session, enabled bool, durationSec int) Session {
	if durationSec <= 0 {
		durationSec = DefaultTimerSeconds
	}
	s.TimerEnabled = enabled
	s.TimerDurationSec = durationSec
	return s
}

// StartCombat opens a preparing combat led by mainPlayerID. An existing
// combat is replaced only when it belongs to the same player; otherwise
// the call is ignored.
func StartCombat(s Session, mainPlayerID string, now time.Time) Session {
	if !s.HasPlayer(mainPlayerID) {
		return s
	}
	if s.CurrentCombat != nil && s.CurrentCombat.MainPlayerID != mainPlayerID {
		return s
	}
	s.CurrentCombat = &Combat{
		ID:           NewID(),
		MainPlayerID: mainPlayerID,
		HelperIDs:    []string{},
		Monsters:     []CombatMonster{},
		Status:       CombatPreparing,
		StartedAtMs:  now.UnixMilli(),
	}
	return appendLog(s, LogCombatStart, mainPlayerID, "")
}

// SetCombat replaces the current combat wholesale (combat_update path).
func SetCombat(s Session, c Combat) Session {
	cc := cloneCombat(&c)
	if cc.HelperIDs == nil {
		cc.HelperIDs = []string{}
	}
	if cc.Monsters == nil {
		cc.Monsters = []CombatMonster{}
	}
	s.CurrentCombat = cc
	return s
}

func AddMonsterToCombat(s Session, m Monster, enhancers int) Session {
	if s.CurrentCombat == nil {
		return s
	}
	c := cloneCombat(s.CurrentCombat)
	c.Monsters = append(c.Monsters, CombatMonster{Monster: m, Enhancers: enhancers})
	c.Status = CombatInProgress
	s.CurrentCombat = c
	return s
}

func RemoveMonsterFromCombat(s Session, index int) Session {
	if s.CurrentCombat == nil || index < 0 || index >= len(s.CurrentCombat.Monsters) {
		return s
	}
	c := cloneCombat(s.CurrentCombat)
	c.Monsters = append(c.Monsters[:index], c.Monsters[index+1:]...)
	s.CurrentCombat = c
	return s
}

func AddHelperToCombat(s Session, playerID string) Session {
	if s.CurrentCombat == nil || !s.HasPlayer(playerID) || playerID == s.CurrentCombat.MainPlayerID {
		return s
	}
	for _, id := range s.CurrentCombat.HelperIDs {
		if id == playerID {
			return s
		}
	}
	c := cloneCombat(s.CurrentCombat)
	c.HelperIDs = append(c.HelperIDs, playerID)
	s.CurrentCombat = c
	return s
}

func RemoveHelperFromCombat(s Session, playerID string) Session {
	if s.CurrentCombat == nil {
		return s
	}
	c := cloneCombat(s.CurrentCombat)
	helpers := c.HelperIDs[:0]
	for _, id := range c.HelperIDs {
		if id != playerID {
			helpers = append(helpers, id)
		}
	}
	c.HelperIDs = helpers
	s.CurrentCombat = c
	return s
}

// ResolveCombat closes the current combat. On victory the main player
// gains the monsters' granted levels (clamped at the win level) and one
// kill per monster, elf helpers gain a level each, and reaching the win
// level finishes the session. Combat-scoped curses on all combatants
// expire either way.
func ResolveCombat(s Session, victory bool) Session {
	if s.CurrentCombat == nil {
		return s
	}
	combat := *s.CurrentCombat
	combatantIDs := append([]string{combat.MainPlayerID}, combat.HelperIDs...)

	if victory {
		levels := 0
		for _, cm := range combat.Monsters {
			levels += cm.Monster.LevelsGranted
		}
		kills := len(combat.Monsters)
		s = mapPlayer(s, combat.MainPlayerID, func(p Player) Player {
			p.Level = clampLevel(p.Level + levels)
			p.MonstersKilled += kills
			return p
		})
		for _, id := range combat.HelperIDs {
			s = mapPlayer(s, id, func(p Player) Player {
				if p.Race == RaceElf {
					p.Level = clampLevel(p.Level + 1)
				}
				return p
			})
		}
		s = appendLog(s, LogCombatWin, combat.MainPlayerID, "")
	} else {
		s = appendLog(s, LogCombatLose, combat.MainPlayerID, "")
	}

	for _, id := range combatantIDs {
		s = expireCurses(s, id, DurationCombat)
	}
	s.CurrentCombat = nil

	if victory {
		if winner, ok := s.Player(combat.MainPlayerID); ok && winner.Level >= WinLevel {
			s.Status = StatusFinished
			s.WinnerID = winner.ID
			s = appendLog(s, LogGameEnd, winner.ID, winner.Name+" won")
		}
	}
	return s
}

func CancelCombat(s Session) Session {
	s.CurrentCombat = nil
	return s
}

func killed(p Player, turn int) Player {
	p.IsDead = true
	p.DeathTurn = turn
	p.GearBonus = 0
	return p
}

// KillPlayer marks the player dead at the current turn and zeroes their
// gear bonus.
func KillPlayer(s Session, id string) Session {
	if !s.HasPlayer(id) {
		return s
	}
	turn := s.TurnNumber
	s = mapPlayer(s, id, func(p Player) Player { return killed(p, turn) })
	return appendLog(s, LogPlayerDeath, id, "")
}

// RespawnPlayer clears the death flag and marker.
func RespawnPlayer(s Session, id string) Session {
	return mapPlayer(s, id, func(p Player) Player {
		p.IsDead = false
		p.DeathTurn = 0
		return p
	})
}

// AppendDiceRoll records a 1-6 face value; anything else is ignored.
func AppendDiceRoll(s Session, roll DiceRoll) Session {
	if roll.Value < 1 || roll.Value > 6 {
		return s
	}
	if !s.HasPlayer(roll.PlayerID) {
		return s
	}
	s.DiceRolls = append(append([]DiceRoll(nil), s.DiceRolls...), roll)
	return s
}

// ApplyCurse attaches a catalog curse to a player. Instant level-loss
// curses resolve immediately instead of lingering.
func ApplyCurse(s Session, playerID, curseID string) Session {
	curse, ok := CurseByID(curseID)
	if !ok {
		return s
	}
	if curse.Duration == DurationInstant {
		if curse.Effect == CurseLevelLoss {
			return mapPlayer(s, playerID, func(p Player) Player {
				p.Level = clampLevel(p.Level - curse.Modifier)
				return p
			})
		}
		return s
	}
	return mapPlayer(s, playerID, func(p Player) Player {
		for _, id := range p.ActiveCurseIDs {
			if id == curseID {
				return p
			}
		}
		p.ActiveCurseIDs = append(append([]string(nil), p.ActiveCurseIDs...), curseID)
		return p
	})
}

// RemoveCurse lifts a lingering curse from a player.
func RemoveCurse(s Session, playerID, curseID string) Session {
	return mapPlayer(s, playerID, func(p Player) Player {
		ids := make([]string, 0, len(p.ActiveCurseIDs))
		for _, id := range p.ActiveCurseIDs {
			if id != curseID {
				ids = append(ids, id)
			}
		}
		p.ActiveCurseIDs = ids
		return p
	})
}

// expireCurses drops the player's curses with the given duration class.
func expireCurses(s Session, playerID string, d CurseDuration) Session {
	return mapPlayer(s, playerID, func(p Player) Player {
		if len(p.ActiveCurseIDs) == 0 {
			return p
		}
		ids := make([]string, 0, len(p.ActiveCurseIDs))
		for _, id := range p.ActiveCurseIDs {
			if c, ok := CurseByID(id); ok && c.Duration == d {
				continue
			}
			ids = append(ids, id)
		}
		p.ActiveCurseIDs = ids
		return p
	})
}

// AddCustomMonster registers a user-entered monster on the session,
// classifying lethality from its text when not set explicitly.
func AddCustomMonster(s Session, m Monster) Session {
	if m.ID == "" {
		m.ID = NewID()
	}
	for _, existing := range s.CustomMonsters {
		if existing.ID == m.ID {
			return s
		}
	}
	m.UserAdded = true
	m.Level = clampMonsterLevel(m.Level)
	if !m.LethalBadStuff {
		m.LethalBadStuff = ClassifyLethalBadStuff(m.BadStuff)
	}
	s.CustomMonsters = append(append([]Monster(nil), s.CustomMonsters...), m)
	return s
}
