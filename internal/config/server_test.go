package config

import (
	"testing"
	"time"
)

func TestLoadServerDefaults(t *testing.T) {
	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("LoadServer() error = %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.MaxGamesPerUser != 5 {
		t.Fatalf("MaxGamesPerUser = %d, want 5", cfg.MaxGamesPerUser)
	}
	if cfg.FirstMover != "inviter" {
		t.Fatalf("FirstMover = %q, want inviter", cfg.FirstMover)
	}
	if cfg.GameTimeLimit != 10*time.Minute {
		t.Fatalf("GameTimeLimit = %v, want 10m", cfg.GameTimeLimit)
	}
	if cfg.InactivityTimeout != 5*time.Minute {
		t.Fatalf("InactivityTimeout = %v, want 5m", cfg.InactivityTimeout)
	}
	if cfg.GameSweepInterval != time.Minute {
		t.Fatalf("GameSweepInterval = %v, want 60s", cfg.GameSweepInterval)
	}
	if cfg.UserSweepInterval != 5*time.Minute {
		t.Fatalf("UserSweepInterval = %v, want 300s", cfg.UserSweepInterval)
	}
}

func TestLoadServerParseTypes(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("MAX_GAMES_PER_USER", "2")
	t.Setenv("FIRST_MOVER", "acceptor")
	t.Setenv("GAME_TIME_LIMIT", "30s")
	t.Setenv("USER_SWEEP_INTERVAL", "1m")

	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("LoadServer() error = %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Fatalf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.MaxGamesPerUser != 2 {
		t.Fatalf("MaxGamesPerUser = %d", cfg.MaxGamesPerUser)
	}
	if cfg.FirstMover != "acceptor" {
		t.Fatalf("FirstMover = %q", cfg.FirstMover)
	}
	if cfg.GameTimeLimit != 30*time.Second {
		t.Fatalf("GameTimeLimit = %v", cfg.GameTimeLimit)
	}
	if cfg.UserSweepInterval != time.Minute {
		t.Fatalf("UserSweepInterval = %v", cfg.UserSweepInterval)
	}
}

func TestLoadAppComposes(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("HTTP_ADDR", ":7070")

	cfg, err := LoadApp()
	if err != nil {
		t.Fatalf("LoadApp() error = %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("Log.Level = %q", cfg.Log.Level)
	}
	if cfg.Server.HTTPAddr != ":7070" {
		t.Fatalf("Server.HTTPAddr = %q", cfg.Server.HTTPAddr)
	}
}
