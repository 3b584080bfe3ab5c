package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type ServerConfig struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	MaxGamesPerUser int    `env:"MAX_GAMES_PER_USER" envDefault:"5"`
	FirstMover      string `env:"FIRST_MOVER" envDefault:"inviter"`

	GameTimeLimit     time.Duration `env:"GAME_TIME_LIMIT" envDefault:"10m"`
	InactivityTimeout time.Duration `env:"INACTIVITY_TIMEOUT" envDefault:"5m"`
	GameSweepInterval time.Duration `env:"GAME_SWEEP_INTERVAL" envDefault:"60s"`
	UserSweepInterval time.Duration `env:"USER_SWEEP_INTERVAL" envDefault:"300s"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	err := env.Parse(&cfg)
	return cfg, err
}
