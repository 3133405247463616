package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DataConfig controls where and how timesheet data is stored.
type DataConfig struct {
	// DBPath is the SQLite database file.
	DBPath string `mapstructure:"db_path" yaml:"db_path"`

	// CacheTTLSec is how long store reads are served from memory.
	CacheTTLSec int `mapstructure:"cache_ttl_sec" yaml:"cache_ttl_sec"`
}

// TimerConfig controls display refresh and status polling.
type TimerConfig struct {
	TickIntervalMs int `mapstructure:"tick_interval_ms" yaml:"tick_interval_ms"`
	StatusPollMs   int `mapstructure:"status_poll_ms" yaml:"status_poll_ms"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme       string  `mapstructure:"theme" yaml:"theme"`
	TargetHours float64 `mapstructure:"target_hours" yaml:"target_hours"`
}

// SubmitConfig describes the IMAP mailbox that receives timesheet drafts.
// The password lives in the system keyring, never in this file.
type SubmitConfig struct {
	IMAPHost string `mapstructure:"imap_host" yaml:"imap_host"`
	IMAPPort string `mapstructure:"imap_port" yaml:"imap_port"`
	Username string `mapstructure:"username" yaml:"username"`
	From     string `mapstructure:"from" yaml:"from"`
	To       string `mapstructure:"to" yaml:"to"`
	Mailbox  string `mapstructure:"mailbox" yaml:"mailbox"`
	TLS      bool   `mapstructure:"tls" yaml:"tls"`
}

// SecurityConfig gates the application behind the login flag.
type SecurityConfig struct {
	RequireLogin bool `mapstructure:"require_login" yaml:"require_login"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Data     DataConfig     `mapstructure:"data" yaml:"data"`
	Timer    TimerConfig    `mapstructure:"timer" yaml:"timer"`
	Display  DisplayConfig  `mapstructure:"display" yaml:"display"`
	Submit   SubmitConfig   `mapstructure:"submit" yaml:"submit"`
	Security SecurityConfig `mapstructure:"security" yaml:"security"`
}

// CacheTTL returns the store read-cache expiry.
func (c *AppConfig) CacheTTL() time.Duration {
	return time.Duration(c.Data.CacheTTLSec) * time.Second
}

// TickInterval returns the display refresh cadence.
func (c *AppConfig) TickInterval() time.Duration {
	return time.Duration(c.Timer.TickIntervalMs) * time.Millisecond
}

// StatusPollInterval returns how often the persisted timer state is polled.
func (c *AppConfig) StatusPollInterval() time.Duration {
	return time.Duration(c.Timer.StatusPollMs) * time.Millisecond
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/timesheet/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "timesheet", "config.yaml")
}

// DefaultDBPath returns ~/.local/share/timesheet/timesheet.db.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "timesheet.db")
	}
	return filepath.Join(home, ".local", "share", "timesheet", "timesheet.db")
}

// DefaultAppConfig returns a sensible default configuration.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Data: DataConfig{
			DBPath:      DefaultDBPath(),
			CacheTTLSec: 300,
		},
		Timer: TimerConfig{
			TickIntervalMs: 1000,
			StatusPollMs:   1000,
		},
		Display: DisplayConfig{
			Theme:       "default",
			TargetHours: 8,
		},
		Submit: SubmitConfig{
			IMAPPort: "993",
			Mailbox:  "Drafts",
			TLS:      true,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultAppConfig()
	v.SetDefault("data.db_path", d.Data.DBPath)
	v.SetDefault("data.cache_ttl_sec", d.Data.CacheTTLSec)
	v.SetDefault("timer.tick_interval_ms", d.Timer.TickIntervalMs)
	v.SetDefault("timer.status_poll_ms", d.Timer.StatusPollMs)
	v.SetDefault("display.theme", d.Display.Theme)
	v.SetDefault("display.target_hours", d.Display.TargetHours)
	v.SetDefault("submit.imap_port", d.Submit.IMAPPort)
	v.SetDefault("submit.mailbox", d.Submit.Mailbox)
	v.SetDefault("submit.tls", d.Submit.TLS)
	v.SetDefault("security.require_login", false)
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration. Values
// can be overridden with TIMESHEET_* environment variables, e.g.
// TIMESHEET_DATA_DB_PATH.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("timesheet")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if _, ok := err.(*os.PathError); !ok && !notFound {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := DefaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Data.CacheTTLSec <= 0 {
		cfg.Data.CacheTTLSec = 300
	}
	if cfg.Timer.TickIntervalMs <= 0 {
		cfg.Timer.TickIntervalMs = 1000
	}
	if cfg.Timer.StatusPollMs <= 0 {
		cfg.Timer.StatusPollMs = 1000
	}
	if cfg.Display.TargetHours <= 0 {
		cfg.Display.TargetHours = 8
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("data", cfg.Data)
	v.Set("timer", cfg.Timer)
	v.Set("display", cfg.Display)
	v.Set("submit", cfg.Submit)
	v.Set("security", cfg.Security)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
