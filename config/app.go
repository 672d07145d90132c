package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. ROSEBOT_SERVER_ADDRESS.
const EnvPrefix = "ROSEBOT_"

// AppConfig configures the rosebot binary.
type AppConfig struct {
	Server       ServerConfig  `yaml:"server" envPrefix:"SERVER_"`
	TickInterval time.Duration `yaml:"tick_interval" env:"TICK_INTERVAL"`
	Tracker      TrackerConfig `yaml:"tracker" envPrefix:"TRACKER_"`
	Logging      LoggingConfig `yaml:"logging" envPrefix:"LOG_"`
	Store        StoreConfig   `yaml:"store" envPrefix:"STORE_"`

	// Profile is the path of the Lua automation profile. Empty means
	// built-in defaults.
	Profile string `yaml:"profile" env:"PROFILE"`
}

// ServerConfig is the game server to connect to.
type ServerConfig struct {
	Address     string        `yaml:"address" env:"ADDRESS"`
	DialTimeout time.Duration `yaml:"dial_timeout" env:"DIAL_TIMEOUT"`
	SendQueue   int           `yaml:"send_queue" env:"SEND_QUEUE"`
}

// TrackerConfig tunes the combat tracker and experience parsing.
type TrackerConfig struct {
	InactivityTimeout time.Duration `yaml:"inactivity_timeout" env:"INACTIVITY_TIMEOUT"`
	AwaitingLifetime  time.Duration `yaml:"awaiting_lifetime" env:"AWAITING_LIFETIME"`
	HistorySize       int           `yaml:"history_size" env:"HISTORY_SIZE"`
	ExperienceCeiling int           `yaml:"experience_ceiling" env:"EXPERIENCE_CEILING"`
}

// LoggingConfig selects the zap logger.
type LoggingConfig struct {
	Level       string `yaml:"level" env:"LEVEL"` // debug, info, warn, error
	Development bool   `yaml:"development" env:"DEVELOPMENT"`
}

// StoreConfig locates the combat history database. Empty Path disables it.
type StoreConfig struct {
	Path string `yaml:"path" env:"PATH"`
}

// DefaultAppConfig returns the configuration used when no file is given.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		Server: ServerConfig{
			Address:     "localhost:4000",
			DialTimeout: 10 * time.Second,
			SendQueue:   64,
		},
		TickInterval: 500 * time.Millisecond,
		Tracker: TrackerConfig{
			InactivityTimeout: 2 * time.Minute,
			AwaitingLifetime:  30 * time.Second,
			HistorySize:       100,
			ExperienceCeiling: 100000,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// LoadApp reads the YAML file at path over the defaults and then applies
// ROSEBOT_* environment overrides. A missing file is not an error.
func LoadApp(path string) (AppConfig, error) {
	cfg := DefaultAppConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return AppConfig{}, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return AppConfig{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := ParseEnv(&cfg); err != nil {
		return AppConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// ParseEnv applies ROSEBOT_* environment variables to target.
func ParseEnv(target any) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks the values a zero or negative setting would break.
func (c AppConfig) Validate() error {
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick_interval must be positive, got %s", c.TickInterval)
	}
	if c.Tracker.HistorySize < 0 {
		return fmt.Errorf("tracker.history_size must not be negative")
	}
	if c.Server.SendQueue < 0 {
		return fmt.Errorf("server.send_queue must not be negative")
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown logging.level %q", c.Logging.Level)
	}
	return nil
}
