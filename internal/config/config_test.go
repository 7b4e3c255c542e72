package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TCPPort != 8765 {
		t.Fatalf("tcp port: got %d, want 8765", cfg.TCPPort)
	}
	if cfg.MaxPlayers != 6 || cfg.TimerSeconds != 60 {
		t.Fatalf("defaults: %+v", cfg)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("MUNCHKIN_TCP_PORT", "9999")
	t.Setenv("MUNCHKIN_STATS_DB", "")
	t.Setenv("MUNCHKIN_DEBUG", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TCPPort != 9999 {
		t.Fatalf("tcp port: got %d", cfg.TCPPort)
	}
	if cfg.StatsDB != "" {
		t.Fatalf("stats db not overridden: %q", cfg.StatsDB)
	}
	if !cfg.Debug {
		t.Fatalf("debug not set")
	}
}
