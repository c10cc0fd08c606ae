package logger

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
)

// Config selects the level and output format of the logger.
type Config struct {
	Level  string // trace, debug, info, warn, error
	Format string // console or json
}

// New builds a zerolog logger writing to out.
func New(cfg Config, out io.Writer) (zerolog.Logger, error) {
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level: %w", err)
	}

	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.DateTime}
	}

	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("service", "rsi-monitor").
		Logger(), nil
}
