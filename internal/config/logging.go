package config

import "github.com/caarlos0/env/v11"

// LogConfig controls log output. An empty File keeps logs on stderr;
// MaxMB caps the file size before it is truncated in place.
type LogConfig struct {
	Level       string `env:"LOG_LEVEL" envDefault:"info"`
	File        string `env:"LOG_FILE"`
	MaxMB       int    `env:"LOG_MAX_MB" envDefault:"10"`
	Pretty      bool   `env:"LOG_PRETTY" envDefault:"false"`
	SampleEvery int    `env:"LOG_SAMPLE_EVERY" envDefault:"0"`
}

func LoadLog() (LogConfig, error) {
	var cfg LogConfig
	err := env.Parse(&cfg)
	return cfg, err
}
