package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"
)

// Config holds logging configuration. Paths lists zap sink URLs
// ("stdout", "stderr" or file paths).
type Config struct {
	Level  zapcore.Level
	Format string
	Paths  []string
	Caller bool
	Fields map[string]string
}

// NewDefaultConfig returns config with production-ready defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Level:  zapcore.InfoLevel,
		Format: "json",
		Paths:  []string{"stderr"},
		Caller: true,
	}
}

// ParseConfig builds a Config from the textual level and format stored
// in the application config file.
func ParseConfig(level, format string) (*Config, error) {
	cfg := NewDefaultConfig()
	if level != "" {
		lvl, err := zapcore.ParseLevel(strings.ToLower(level))
		if err != nil {
			return nil, fmt.Errorf("parsing log level: %w", err)
		}
		cfg.Level = lvl
	}
	if format != "" {
		cfg.Format = strings.ToLower(format)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks configuration consistency.
func (c *Config) Validate() error {
	if c.Format != "json" && c.Format != "console" {
		return fmt.Errorf("format must be 'json' or 'console', got %q", c.Format)
	}
	if len(c.Paths) == 0 {
		return fmt.Errorf("at least one output path must be set")
	}
	return nil
}
