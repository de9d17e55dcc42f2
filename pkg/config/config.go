// Package config loads jyotish settings.
//
// Values are layered: built-in defaults, then the TOML file, then JYOTISH_*
// environment variables. Command-line flags are applied last by the CLI.
//
// Example config.toml:
//
//	[log]
//	level = "debug"
//
//	[cache]
//	backend = "redis"
//	[cache.redis]
//	addr = "localhost:6379"
//
//	[ephemeris]
//	provider = "table"
//	table = "/data/longitudes.csv"
//
//	[timing.Sa]
//	step_days = 14
//	max_days = 1000
//	grace_days = 180
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/kelseyhightower/envconfig"

	"github.com/matzehuels/jyotish/pkg/cache"
	"github.com/matzehuels/jyotish/pkg/core/ephemeris"
	"github.com/matzehuels/jyotish/pkg/core/graha"
	"github.com/matzehuels/jyotish/pkg/core/timing"
	"github.com/matzehuels/jyotish/pkg/errors"
)

// EnvPrefix is the prefix of environment overrides, e.g. JYOTISH_LOG_LEVEL.
const EnvPrefix = "JYOTISH"

// Cache backends.
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Config is the complete application configuration.
type Config struct {
	Log       LogConfig       `toml:"log" envconfig:"LOG"`
	Cache     CacheConfig     `toml:"cache" envconfig:"CACHE"`
	Ephemeris EphemerisConfig `toml:"ephemeris" envconfig:"EPHEMERIS"`
	Server    ServerConfig    `toml:"server" envconfig:"SERVER"`
	Location  LocationConfig  `toml:"location" envconfig:"LOCATION"`

	// Timing overrides search parameters per body key ("Sa", "Ju", ...).
	// Bodies not listed keep their defaults.
	Timing map[string]timing.SearchConfig `toml:"timing" ignored:"true"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `toml:"level" envconfig:"LEVEL"`
}

// CacheConfig selects and configures the report cache.
type CacheConfig struct {
	Backend string            `toml:"backend" envconfig:"BACKEND"`
	Dir     string            `toml:"dir" envconfig:"DIR"`
	TTL     time.Duration     `toml:"ttl" envconfig:"TTL"` // zero keeps per-report defaults
	Redis   cache.RedisConfig `toml:"redis" envconfig:"REDIS"`
}

// EphemerisConfig selects the longitude provider.
type EphemerisConfig struct {
	Provider string `toml:"provider" envconfig:"PROVIDER"`
	Table    string `toml:"table" envconfig:"TABLE"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr       string        `toml:"addr" envconfig:"ADDR"`
	SessionTTL time.Duration `toml:"session_ttl" envconfig:"SESSION_TTL"`
	Metrics    bool          `toml:"metrics" envconfig:"METRICS"`

	// SessionDir persists sessions as JSON files. Empty keeps them in memory.
	SessionDir string `toml:"session_dir" envconfig:"SESSION_DIR"`
}

// LocationConfig is the default observer used when a command omits
// coordinates.
type LocationConfig struct {
	Latitude  *float64 `toml:"latitude" envconfig:"LATITUDE"`
	Longitude *float64 `toml:"longitude" envconfig:"LONGITUDE"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log:       LogConfig{Level: "info"},
		Cache:     CacheConfig{Backend: BackendFile, Redis: cache.RedisConfig{Addr: "localhost:6379", Prefix: "jyotish:"}},
		Ephemeris: EphemerisConfig{Provider: string(ephemeris.KindKepler)},
		Server:    ServerConfig{Addr: ":8080", SessionTTL: 24 * time.Hour, Metrics: true},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/jyotish/config.toml, falling back
// to ~/.config/jyotish/config.toml.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "jyotish", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "jyotish", "config.toml"), nil
}

// Load reads configuration from path and the environment. An empty path
// means [DefaultPath], which may be absent; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "locate config file")
		}
		path = p
	}

	if err := cfg.decodeFile(path); err != nil {
		if !explicit && os.IsNotExist(err) {
			err = nil
		} else {
			return cfg, err
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "environment overrides")
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) decodeFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	if err := errors.ValidatePath(path); err != nil {
		return err
	}
	meta, err := toml.DecodeFile(path, c)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// Validate checks enumerated values and cross-field requirements.
func (c Config) Validate() error {
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "log.level")
	}

	switch c.Cache.Backend {
	case BackendNone, BackendFile:
	case BackendRedis:
		if c.Cache.Redis.Addr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.redis.addr is required for the redis backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q (want none, file or redis)", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl must not be negative")
	}

	kind, err := ephemeris.ParseKind(c.Ephemeris.Provider)
	if err != nil {
		return err
	}
	if kind == ephemeris.KindTable && c.Ephemeris.Table == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "ephemeris.table is required for the table provider")
	}

	if c.Server.Addr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "server.addr is required")
	}
	if c.Server.SessionTTL <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server.session_ttl must be positive")
	}

	if (c.Location.Latitude == nil) != (c.Location.Longitude == nil) {
		return errors.New(errors.ErrCodeInvalidConfig, "location needs both latitude and longitude")
	}
	if c.Location.Latitude != nil {
		if err := errors.ValidateLatitude(*c.Location.Latitude); err != nil {
			return err
		}
		if err := errors.ValidateLongitude(*c.Location.Longitude); err != nil {
			return err
		}
	}

	_, err = c.SearchConfigs()
	return err
}

// LogLevel returns the parsed log level, defaulting to info.
func (c Config) LogLevel() log.Level {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// Provider opens the configured ephemeris provider.
func (c Config) Provider() (ephemeris.Provider, error) {
	kind, err := ephemeris.ParseKind(c.Ephemeris.Provider)
	if err != nil {
		return nil, err
	}
	return ephemeris.Open(kind, c.Ephemeris.Table)
}

// SearchConfigs merges the [timing] overrides into the default table.
func (c Config) SearchConfigs() (timing.SearchConfigs, error) {
	cs := timing.DefaultSearchConfigs()
	for key, sc := range c.Timing {
		body, err := graha.Parse(key)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "timing.%s", key)
		}
		cs[body] = sc
	}
	if err := cs.Validate(); err != nil {
		return nil, err
	}
	return cs, nil
}

// DefaultLocation returns the configured observer, if any.
func (c Config) DefaultLocation() (lat, lon float64, ok bool) {
	if c.Location.Latitude == nil || c.Location.Longitude == nil {
		return 0, 0, false
	}
	return *c.Location.Latitude, *c.Location.Longitude, true
}
