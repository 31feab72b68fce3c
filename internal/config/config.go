package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jask/convolens/internal/viewsync"
)

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Sync     SyncConfig     `mapstructure:"sync"`
	UI       UIConfig       `mapstructure:"ui"`
	Log      LogConfig      `mapstructure:"log"`
	Feed     FeedConfig     `mapstructure:"feed"`
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
	// Driver is "sqlite3" (mattn, cgo) or "sqlite" (modernc, pure Go).
	Driver string `mapstructure:"driver"`
}

// SyncConfig holds the pane synchronization delays in milliseconds.
type SyncConfig struct {
	DebounceMS  int  `mapstructure:"debounce_ms"`
	RateLimitMS int  `mapstructure:"rate_limit_ms"`
	SettleMS    int  `mapstructure:"settle_ms"`
	CooldownMS  int  `mapstructure:"cooldown_ms"`
	Smooth      bool `mapstructure:"smooth"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	DateFormat string  `mapstructure:"date_format"`
	Timezone   string  `mapstructure:"timezone"`
	Split      float64 `mapstructure:"split"`
}

// LogConfig controls the rotating log file.
type LogConfig struct {
	Path       string `mapstructure:"path"`
	Level      string `mapstructure:"level"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// FeedConfig controls the focus feed websocket. Empty Addr disables it.
type FeedConfig struct {
	Addr string `mapstructure:"addr"`
}

const (
	DriverMattn   = "sqlite3"
	DriverModernc = "sqlite"
)

func dataDir() string {
	return filepath.Join(os.Getenv("HOME"), ".local", "share", "convolens")
}

// Path returns the config file location, honouring CONVOLENS_CONFIG.
func Path() string {
	if p := os.Getenv("CONVOLENS_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "convolens", "config.toml")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.path", filepath.Join(dataDir(), "convolens.db"))
	v.SetDefault("database.driver", DriverMattn)
	v.SetDefault("sync.debounce_ms", 150)
	v.SetDefault("sync.rate_limit_ms", 100)
	v.SetDefault("sync.settle_ms", 50)
	v.SetDefault("sync.cooldown_ms", 500)
	v.SetDefault("sync.smooth", true)
	v.SetDefault("ui.date_format", "Mon 02 Jan")
	v.SetDefault("ui.timezone", "Local")
	v.SetDefault("ui.split", 0.55)
	v.SetDefault("log.path", filepath.Join(dataDir(), "convolens.log"))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("feed.addr", "")
}

// Load reads configuration from file and env. Env var overrides use prefix CONVOLENS_.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")
	if p := os.Getenv("CONVOLENS_CONFIG"); p != "" {
		v.SetConfigFile(p)
	} else {
		v.AddConfigPath(filepath.Dir(Path()))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("CONVOLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// the file is optional
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects settings the app cannot run with.
func (c Config) Validate() error {
	switch c.Database.Driver {
	case DriverMattn, DriverModernc:
	default:
		return fmt.Errorf("config: unknown database.driver %q", c.Database.Driver)
	}
	if c.Sync.DebounceMS <= 0 || c.Sync.RateLimitMS <= 0 || c.Sync.SettleMS <= 0 || c.Sync.CooldownMS <= 0 {
		return errors.New("config: sync delays must be positive")
	}
	if c.UI.Split <= 0 || c.UI.Split >= 1 {
		return fmt.Errorf("config: ui.split must be between 0 and 1, got %v", c.UI.Split)
	}
	return nil
}

// Timing converts the sync section for the engine.
func (c Config) Timing() viewsync.Timing {
	ms := func(n int) time.Duration { return time.Duration(n) * time.Millisecond }
	return viewsync.Timing{
		Debounce:  ms(c.Sync.DebounceMS),
		RateLimit: ms(c.Sync.RateLimitMS),
		Settle:    ms(c.Sync.SettleMS),
		Cooldown:  ms(c.Sync.CooldownMS),
	}
}

// Behavior maps sync.smooth to a scroll behavior.
func (c Config) Behavior() viewsync.Behavior {
	if c.Sync.Smooth {
		return viewsync.Smooth
	}
	return viewsync.Instant
}

// Location resolves ui.timezone, falling back to the local zone.
func (c Config) Location() *time.Location {
	if c.UI.Timezone == "" || strings.EqualFold(c.UI.Timezone, "local") {
		return time.Local
	}
	loc, err := time.LoadLocation(c.UI.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Save writes the provided config to disk, creating the config directory if needed.
func Save(cfg Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("database.driver", cfg.Database.Driver)
	v.Set("sync.debounce_ms", cfg.Sync.DebounceMS)
	v.Set("sync.rate_limit_ms", cfg.Sync.RateLimitMS)
	v.Set("sync.settle_ms", cfg.Sync.SettleMS)
	v.Set("sync.cooldown_ms", cfg.Sync.CooldownMS)
	v.Set("sync.smooth", cfg.Sync.Smooth)
	v.Set("ui.date_format", cfg.UI.DateFormat)
	v.Set("ui.timezone", cfg.UI.Timezone)
	v.Set("ui.split", cfg.UI.Split)
	v.Set("log.path", cfg.Log.Path)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.max_size_mb", cfg.Log.MaxSizeMB)
	v.Set("log.max_backups", cfg.Log.MaxBackups)
	v.Set("feed.addr", cfg.Feed.Addr)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
