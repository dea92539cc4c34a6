package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
	Output string `mapstructure:"output" validate:"required,oneof=stdout stderr"`
}

// NewLogger builds a logger writing to the configured stream.
func (c LoggingConfig) NewLogger() (*slog.Logger, error) {
	var w io.Writer = os.Stdout
	if c.Output == "stderr" {
		w = os.Stderr
	}
	return c.newLogger(w)
}

func (c LoggingConfig) newLogger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return nil, fmt.Errorf("logging level %q: %w", c.Level, err)
	}
	opts := &slog.HandlerOptions{Level: level}

	switch c.Format {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", c.Format)
	}
}
