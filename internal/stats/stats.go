// Package stats persists finished games on the host device so rankings
// and dice-luck numbers survive across sessions. Only the store lives
// here; any presentation of it is someone else's problem.
package stats

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lanfest/munchkin-lan/internal/game"
)

var ErrUnknownCategory = errors.New("stats: unknown leaderboard category")

// GameRecord is one finished game.
type GameRecord struct {
	ID          string `gorm:"primaryKey" json:"id"`
	PlayedAt    time.Time `json:"playedAt"`
	DurationSec int       `json:"durationSec"`
	Turns       int       `json:"turns"`
	WinnerID    string    `json:"winnerId"`
	WinnerName  string    `json:"winnerName"`

	Players []PlayerResult `gorm:"foreignKey:GameRecordID" json:"players"`
}

// PlayerResult is one player's final line in a finished game, including
// their dice-luck aggregates for that game.
type PlayerResult struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"-"`
	GameRecordID string `gorm:"index" json:"-"`

	PlayerID         string `gorm:"index" json:"playerId"`
	Name             string `json:"name"`
	Won              bool   `json:"won"`
	FinalLevel       int    `json:"finalLevel"`
	FinalGear        int    `json:"finalGear"`
	MonstersDefeated int    `json:"monstersDefeated"`
	DiceRolls        int    `json:"diceRolls"`
	DiceSum          int    `json:"diceSum"`
}

type Category string

const (
	CategoryWins         Category = "wins"
	CategoryGames        Category = "gamesPlayed"
	CategoryMonsters     Category = "monstersDefeated"
	CategoryHighestLevel Category = "highestLevel"
)

// LeaderboardEntry is one ranked row.
type LeaderboardEntry struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Value    int    `json:"value"`
}

type Store struct {
	db *gorm.DB
}

// Open creates or opens the sqlite database at path and migrates the
// schema.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("stats: open %s: %w", path, err)
	}
	if err := db.AutoMigrate(&GameRecord{}, &PlayerResult{}); err != nil {
		return nil, fmt.Errorf("stats: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// RecordGame persists a finished session. Recording the same session id
// twice is a no-op, so a duplicated finish broadcast cannot double-count.
func (st *Store) RecordGame(s game.Session) error {
	if s.Status != game.StatusFinished {
		return nil
	}
	var existing int64
	if err := st.db.Model(&GameRecord{}).Where("id = ?", s.ID).Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		return nil
	}

	winnerName := ""
	if w, ok := s.Player(s.WinnerID); ok {
		winnerName = w.Name
	}
	record := GameRecord{
		ID:          s.ID,
		PlayedAt:    time.UnixMilli(s.CreatedAtMs),
		DurationSec: int(time.Since(time.UnixMilli(s.CreatedAtMs)) / time.Second),
		Turns:       s.TurnNumber,
		WinnerID:    s.WinnerID,
		WinnerName:  winnerName,
	}

	rolls := make(map[string][2]int) // playerID -> count, sum
	for _, dr := range s.DiceRolls {
		agg := rolls[dr.PlayerID]
		agg[0]++
		agg[1] += dr.Value
		rolls[dr.PlayerID] = agg
	}
	for _, p := range s.Players {
		agg := rolls[p.ID]
		record.Players = append(record.Players, PlayerResult{
			PlayerID:         p.ID,
			Name:             p.Name,
			Won:              p.ID == s.WinnerID,
			FinalLevel:       p.Level,
			FinalGear:        p.GearBonus,
			MonstersDefeated: p.MonstersKilled,
			DiceRolls:        agg[0],
			DiceSum:          agg[1],
		})
	}
	return st.db.Create(&record).Error
}

// Games returns the most recent finished games with player lines.
func (st *Store) Games(limit int) ([]GameRecord, error) {
	var games []GameRecord
	err := st.db.Preload("Players").
		Order("played_at DESC").
		Limit(limit).
		Find(&games).Error
	return games, err
}

// Leaderboard ranks players across all recorded games.
func (st *Store) Leaderboard(category Category, limit int) ([]LeaderboardEntry, error) {
	var expr string
	switch category {
	case CategoryWins:
		expr = "SUM(CASE WHEN won THEN 1 ELSE 0 END)"
	case CategoryGames:
		expr = "COUNT(*)"
	case CategoryMonsters:
		expr = "SUM(monsters_defeated)"
	case CategoryHighestLevel:
		expr = "MAX(final_level)"
	default:
		return nil, ErrUnknownCategory
	}

	var entries []LeaderboardEntry
	err := st.db.Model(&PlayerResult{}).
		Select("player_id, name, " + expr + " AS value").
		Group("player_id, name").
		Order("value DESC").
		Limit(limit).
		Scan(&entries).Error
	return entries, err
}
