// Package config loads process configuration from the environment, with
// an optional .env file for development.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	// TCPPort is the fixed port clients connect to.
	TCPPort int `env:"MUNCHKIN_TCP_PORT" envDefault:"8765"`
	// HTTPAddr serves the local collaborator surface (UI, stats).
	HTTPAddr string `env:"MUNCHKIN_HTTP_ADDR" envDefault:"127.0.0.1:8080"`
	// MaxPlayers caps the roster.
	MaxPlayers int `env:"MUNCHKIN_MAX_PLAYERS" envDefault:"6"`
	// TimerSeconds is the default turn timer duration.
	TimerSeconds int `env:"MUNCHKIN_TIMER_SECONDS" envDefault:"60"`
	// StatsDB is the sqlite file for finished-game records; empty
	// disables stats.
	StatsDB string `env:"MUNCHKIN_STATS_DB" envDefault:"munchkin.db"`
	// Debug switches the logger to development output.
	Debug bool `env:"MUNCHKIN_DEBUG" envDefault:"false"`
}

// Load reads .env when present, then the process environment.
func Load() (Config, error) {
	// Missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
