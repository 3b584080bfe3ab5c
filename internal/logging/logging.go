// Package logging configures the process-wide zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"tictac-arena/internal/config"
)

var writer io.Writer = os.Stdout

// Init applies cfg to the global logger: level, optional console
// formatting, optional sampling, and an optional size-capped file sink.
func Init(cfg config.LogConfig) {
	level := zerolog.InfoLevel
	if parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level))); err == nil && cfg.Level != "" {
		level = parsed
	}
	zerolog.SetGlobalLevel(level)

	writer = os.Stdout
	if cfg.File != "" {
		if fw, err := newCappedFileWriter(cfg.File, cfg.MaxMB); err == nil {
			writer = fw
		}
	}
	out := writer
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: writer}
	}

	logger := zerolog.New(out).With().Timestamp().Logger()
	if cfg.SampleEvery > 1 {
		logger = logger.Sample(&zerolog.BasicSampler{N: uint32(cfg.SampleEvery)})
	}
	log.Logger = logger
}

// Writer exposes the raw log sink for other log producers (HTTP request
// logs) so everything lands in the same place.
func Writer() io.Writer {
	return writer
}
