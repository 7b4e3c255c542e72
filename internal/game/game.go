package game

import (
	"time"

	"github.com/google/uuid"
)

const (
	// WinLevel is the level that ends the game.
	WinLevel = 10
	// MinLevel is the floor a player can be reduced to.
	MinLevel = 1
	// MinMonsterLevel and MaxMonsterLevel bound a monster's base level.
	MinMonsterLevel = 1
	MaxMonsterLevel = 30
	// DefaultMaxPlayers caps the roster unless configured otherwise.
	DefaultMaxPlayers = 6
	// DefaultTimerSeconds is the turn timer used when none is configured.
	DefaultTimerSeconds = 60
)

type Expansion string

const (
	ExpansionBase      Expansion = "base"
	ExpansionUnnatural Expansion = "unnatural"
	ExpansionClerical  Expansion = "clerical"
	ExpansionDeRanged  Expansion = "de_ranged"
	ExpansionCustom    Expansion = "custom"
)

type RaceID string

const (
	RaceHuman    RaceID = "human"
	RaceElf      RaceID = "elf"
	RaceDwarf    RaceID = "dwarf"
	RaceHalfling RaceID = "halfling"
	RaceOrc      RaceID = "orc"
	RaceGnome    RaceID = "gnome"
)

type ClassID string

const (
	ClassWarrior ClassID = "warrior"
	ClassWizard  ClassID = "wizard"
	ClassCleric  ClassID = "cleric"
	ClassThief   ClassID = "thief"
	ClassBard    ClassID = "bard"
	ClassRanger  ClassID = "ranger"
)

type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

type Race struct {
	ID        RaceID    `json:"id"`
	Name      string    `json:"name"`
	Expansion Expansion `json:"expansion"`
	Ability   string    `json:"ability"`
}

type Class struct {
	ID        ClassID   `json:"id"`
	Name      string    `json:"name"`
	Expansion Expansion `json:"expansion"`
	Ability   string    `json:"ability"`
}

// Player is one participant's declared character. Race and Class are
// catalog ids; empty means none.
type Player struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Level          int      `json:"level"`
	GearBonus      int      `json:"gearBonus"`
	Race           RaceID   `json:"race,omitempty"`
	Class          ClassID  `json:"gameClass,omitempty"`
	Sex            Sex      `json:"sex"`
	IsHost         bool     `json:"isHost"`
	IsConnected    bool     `json:"isConnected"`
	IsDead         bool     `json:"isDead"`
	DeathTurn      int      `json:"deathTurn,omitempty"`
	MonstersKilled int      `json:"monstersKilled"`
	ActiveCurseIDs []string `json:"activeCurseIds,omitempty"`
}

// BonusTarget selects which combatants a monster bonus rule applies to:
// a race id, a class id, a sex, or the special "noClass"/"noRace" values.
type BonusTarget string

const (
	TargetNoClass BonusTarget = "noClass"
	TargetNoRace  BonusTarget = "noRace"
)

type MonsterBonus struct {
	Target BonusTarget `json:"target"`
	Value  int         `json:"value"`
}

type Monster struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Level          int            `json:"level"`
	Expansion      Expansion      `json:"expansion"`
	Bonuses        []MonsterBonus `json:"bonuses,omitempty"`
	BadStuff       string         `json:"badStuff"`
	LethalBadStuff bool           `json:"lethalBadStuff"`
	Undead         bool           `json:"isUndead,omitempty"`
	Treasures      int            `json:"treasures"`
	LevelsGranted  int            `json:"levelsGranted"`
	UserAdded      bool           `json:"userAdded,omitempty"`
}

// CombatMonster is a monster instance in the current encounter. Enhancers
// are card effects that raise its level for this fight only.
type CombatMonster struct {
	Monster   Monster `json:"monster"`
	Enhancers int     `json:"enhancers"`
}

type CombatStatus string

const (
	CombatPreparing  CombatStatus = "preparing"
	CombatInProgress CombatStatus = "in_progress"
	CombatVictory    CombatStatus = "victory"
	CombatDefeat     CombatStatus = "defeat"
)

type Combat struct {
	ID           string          `json:"id"`
	MainPlayerID string          `json:"mainPlayerId"`
	HelperIDs    []string        `json:"helperIds"`
	Monsters     []CombatMonster `json:"monsters"`
	PlayerBonus  int             `json:"playerBonus"`
	MonsterBonus int             `json:"monstersBonus"`
	Status       CombatStatus    `json:"status"`
	StartedAtMs  int64           `json:"startedAt"`
}

type SessionStatus string

const (
	StatusLobby      SessionStatus = "lobby"
	StatusInProgress SessionStatus = "in_progress"
	StatusFinished   SessionStatus = "finished"
)

type DiceRoll struct {
	PlayerID    string `json:"playerId"`
	Value       int    `json:"value"`
	TimestampMs int64  `json:"timestamp"`
	Reason      string `json:"reason,omitempty"`
}

type LogType string

const (
	LogGameStart   LogType = "game_start"
	LogGameEnd     LogType = "game_end"
	LogTurnStart   LogType = "turn_start"
	LogCombatStart LogType = "combat_start"
	LogCombatWin   LogType = "combat_win"
	LogCombatLose  LogType = "combat_lose"
	LogPlayerJoin  LogType = "player_join"
	LogPlayerLeave LogType = "player_leave"
	LogPlayerDeath LogType = "player_death"
)

type LogEntry struct {
	TimestampMs int64   `json:"timestamp"`
	Type        LogType `json:"type"`
	PlayerID    string  `json:"playerId,omitempty"`
	Message     string  `json:"message,omitempty"`
}

// Session is the canonical shared state of one game. Player order is
// append order and defines turn order; it must survive replication
// unchanged.
type Session struct {
	ID                  string        `json:"id"`
	HostID              string        `json:"hostId"`
	CreatedAtMs         int64         `json:"createdAt"`
	Players             []Player      `json:"players"`
	CurrentCombat       *Combat       `json:"currentCombat,omitempty"`
	Status              SessionStatus `json:"status"`
	WinnerID            string        `json:"winnerId,omitempty"`
	CurrentTurnPlayerID string        `json:"currentTurnPlayerId,omitempty"`
	TurnNumber          int           `json:"turnNumber"`
	TimerEnabled        bool          `json:"timerEnabled"`
	TimerDurationSec    int           `json:"timerDuration"`
	TurnStartedAtMs     int64         `json:"turnStartedAt,omitempty"`
	DiceRolls           []DiceRoll    `json:"diceRolls"`
	Log                 []LogEntry    `json:"log,omitempty"`
	CustomMonsters      []Monster     `json:"customMonsters,omitempty"`
}

// NewID returns a fresh identifier for sessions, players and combats.
func NewID() string {
	return uuid.NewString()
}

// NewPlayer builds a level-1 player with no race or class.
func NewPlayer(name string) Player {
	return Player{
		ID:          NewID(),
		Name:        name,
		Level:       MinLevel,
		Sex:         SexMale,
		IsConnected: true,
	}
}

// NewSession opens a lobby owned by host. The host is the first roster
// entry and therefore first in turn order.
func NewSession(host Player) Session {
	host.IsHost = true
	host.IsConnected = true
	return Session{
		ID:               NewID(),
		HostID:           host.ID,
		CreatedAtMs:      time.Now().UnixMilli(),
		Players:          []Player{host},
		Status:           StatusLobby,
		TimerDurationSec: DefaultTimerSeconds,
		DiceRolls:        []DiceRoll{},
	}
}

// Player returns the roster entry with the given id, if present.
func (s Session) Player(id string) (Player, bool) {
	for _, p := range s.Players {
		if p.ID == id {
			return p, true
		}
	}
	return Player{}, false
}

// HasPlayer reports whether id is on the roster.
func (s Session) HasPlayer(id string) bool {
	_, ok := s.Player(id)
	return ok
}

// Combatants returns the main player followed by helpers for the current
// combat. Missing ids are skipped.
func (s Session) Combatants() []Player {
	if s.CurrentCombat == nil {
		return nil
	}
	out := make([]Player, 0, 1+len(s.CurrentCombat.HelperIDs))
	if p, ok := s.Player(s.CurrentCombat.MainPlayerID); ok {
		out = append(out, p)
	}
	for _, id := range s.CurrentCombat.HelperIDs {
		if p, ok := s.Player(id); ok {
			out = append(out, p)
		}
	}
	return out
}
