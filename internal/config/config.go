package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/anm2edit/internal/logging"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "ANM2EDIT_"

// Config is the complete configuration.
type Config struct {
	Log     LogConfig     `toml:"log"`
	History HistoryConfig `toml:"history"`
	Naming  NamingConfig  `toml:"naming"`
	Watch   WatchConfig   `toml:"watch"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `toml:"level"`  // debug|info|warn|error
	Format string `toml:"format"` // auto|json|console
}

// HistoryConfig configures the undo history.
type HistoryConfig struct {
	// MaxEntries is the number of undo units kept. The oldest whole units
	// are dropped past it.
	MaxEntries int `toml:"max_entries"`
}

// NamingConfig configures script display names.
type NamingConfig struct {
	Language string `toml:"language"` // BCP 47 tag
	Catalog  string `toml:"catalog"`  // optional TOML catalog file
}

// WatchConfig configures external change notification.
type WatchConfig struct {
	Enabled bool `toml:"enabled"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Log:     LogConfig{Level: "info", Format: string(logging.FormatAuto)},
		History: HistoryConfig{MaxEntries: 1000},
		Naming:  NamingConfig{Language: "en"},
		Watch:   WatchConfig{Enabled: true},
	}
}

// DefaultPath returns the primary config path under the user config
// directory, or "" when it cannot be determined.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "anm2edit", "config.toml")
}

// LogLevel returns the parsed log level.
func (c *Config) LogLevel() logging.Level {
	return logging.ParseLevel(c.Log.Level)
}

// Validate checks every setting.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Path: "log.level", Value: c.Log.Level, Message: "unknown level"}
	}
	switch logging.Format(c.Log.Format) {
	case logging.FormatAuto, logging.FormatJSON, logging.FormatConsole:
	default:
		return &ValidationError{Path: "log.format", Value: c.Log.Format, Message: "unknown format"}
	}
	if c.History.MaxEntries < 1 {
		return &ValidationError{Path: "history.max_entries", Value: c.History.MaxEntries, Message: "must be at least 1"}
	}
	if c.Naming.Language == "" {
		return &ValidationError{Path: "naming.language", Value: c.Naming.Language, Message: "must not be empty"}
	}
	return nil
}

// Loader loads configuration layers.
type Loader struct {
	logger *logging.Logger
	getenv func(string) (string, bool)
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets the logger used to report ignored override problems.
func WithLogger(l *logging.Logger) LoaderOption {
	return func(ld *Loader) {
		ld.logger = l.WithComponent("config")
	}
}

// WithEnv replaces the environment lookup.
func WithEnv(lookup func(string) (string, bool)) LoaderOption {
	return func(ld *Loader) {
		ld.getenv = lookup
	}
}

// NewLoader creates a loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{logger: logging.Nop(), getenv: os.LookupEnv}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load loads defaults, then primary, then override, then the environment.
// Either path may be "".
func Load(primary, override string) (*Config, error) {
	return NewLoader().Load(primary, override)
}

// Load loads defaults, then primary, then override, then the environment.
// Either path may be "".
func (l *Loader) Load(primary, override string) (*Config, error) {
	cfg := Default()

	if primary != "" {
		if err := decodeFile(primary, cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", primary, err)
		}
	}

	if override != "" {
		l.loadOverride(override, cfg)
	}

	if err := l.applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	return cfg, nil
}

// loadOverride applies the override file on a copy so a bad file leaves
// cfg untouched.
func (l *Loader) loadOverride(path string, cfg *Config) {
	next := *cfg
	err := decodeFile(path, &next)
	if err == nil {
		err = next.Validate()
	}
	switch {
	case err == nil:
		*cfg = next
	case errors.Is(err, os.ErrNotExist):
		l.logger.Debug("override %s not found", path)
	default:
		l.logger.Warn("ignoring override %s: %v", path, err)
	}
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return err
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		pe := &ParseError{Path: path, Message: err.Error(), Err: err}
		var de *toml.DecodeError
		if errors.As(err, &de) {
			pe.Line, pe.Column = de.Position()
		}
		return pe
	}
	return nil
}

func (l *Loader) applyEnv(cfg *Config) error {
	if v, ok := l.getenv(EnvPrefix + "LOG_LEVEL"); ok {
		cfg.Log.Level = v
	}
	if v, ok := l.getenv(EnvPrefix + "LOG_FORMAT"); ok {
		cfg.Log.Format = v
	}
	if v, ok := l.getenv(EnvPrefix + "HISTORY_MAX"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return &ValidationError{Path: "history.max_entries", Value: v, Message: "not an integer"}
		}
		cfg.History.MaxEntries = n
	}
	if v, ok := l.getenv(EnvPrefix + "LANGUAGE"); ok {
		cfg.Naming.Language = v
	}
	return nil
}
