// Package config loads client settings from defaults, an optional YAML
// file and EDUMASTER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/omergehad405/EduMaster/internal/gateway"
	"github.com/omergehad405/EduMaster/internal/practice"
)

// EnvPrefix prefixes every environment override, e.g. EDUMASTER_API_BASE_URL.
const EnvPrefix = "EDUMASTER"

type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Retry    RetryConfig    `mapstructure:"retry"`
	Store    StoreConfig    `mapstructure:"store"`
	Log      LogConfig      `mapstructure:"log"`
	Practice PracticeConfig `mapstructure:"practice"`
}

type APIConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RatePerSecond float64       `mapstructure:"rate_per_second"`
	Burst         int           `mapstructure:"burst"`
}

type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	InitialWait time.Duration `mapstructure:"initial_wait"`
	MaxWait     time.Duration `mapstructure:"max_wait"`
	Multiplier  float64       `mapstructure:"multiplier"`
}

type StoreConfig struct {
	// Path of the SQLite database. Empty selects the XDG data directory.
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	// File receives JSON logs. Empty selects the XDG state directory.
	File       string `mapstructure:"file"`
	Level      string `mapstructure:"level"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`

	// Verbose mirrors logs to stderr. Set by --verbose, never by the TUI.
	Verbose bool `mapstructure:"verbose"`
}

type PracticeConfig struct {
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes"`
}

var logLevels = []string{"debug", "info", "warn", "error"}

// Default returns the built-in settings.
func Default() Config {
	gw := gateway.DefaultConfig()
	return Config{
		API: APIConfig{
			BaseURL:       gw.BaseURL,
			Timeout:       gw.Timeout,
			RatePerSecond: gw.RatePerSecond,
			Burst:         gw.Burst,
		},
		Retry: RetryConfig{
			MaxAttempts: gw.Retry.MaxAttempts,
			InitialWait: gw.Retry.InitialWait,
			MaxWait:     gw.Retry.MaxWait,
			Multiplier:  gw.Retry.Multiplier,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Practice: PracticeConfig{MaxUploadBytes: practice.DefaultMaxUploadBytes},
	}
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.timeout", d.API.Timeout)
	v.SetDefault("api.rate_per_second", d.API.RatePerSecond)
	v.SetDefault("api.burst", d.API.Burst)
	v.SetDefault("retry.max_attempts", d.Retry.MaxAttempts)
	v.SetDefault("retry.initial_wait", d.Retry.InitialWait)
	v.SetDefault("retry.max_wait", d.Retry.MaxWait)
	v.SetDefault("retry.multiplier", d.Retry.Multiplier)
	v.SetDefault("store.path", d.Store.Path)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.max_size_mb", d.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
	v.SetDefault("log.verbose", d.Log.Verbose)
	v.SetDefault("practice.max_upload_bytes", d.Practice.MaxUploadBytes)
}

// Load reads the configuration into v. file names an explicit config file;
// when empty, config.yaml in Dir() is used if it exists. Values already
// set on v (for example bound flags) take precedence.
func Load(v *viper.Viper, file string) (Config, error) {
	setDefaults(v, Default())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", file, err)
		}
	} else if dir, err := Dir(); err == nil {
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for unusable values.
func (c Config) Validate() error {
	var errs []error
	u, err := url.Parse(c.API.BaseURL)
	switch {
	case strings.TrimSpace(c.API.BaseURL) == "":
		errs = append(errs, errors.New("api.base_url is required"))
	case err != nil:
		errs = append(errs, fmt.Errorf("api.base_url: %w", err))
	case u.Scheme != "http" && u.Scheme != "https", u.Host == "":
		errs = append(errs, fmt.Errorf("api.base_url %q must be an absolute http(s) URL", c.API.BaseURL))
	}
	if c.API.Timeout <= 0 {
		errs = append(errs, errors.New("api.timeout must be positive"))
	}
	if c.API.RatePerSecond < 0 {
		errs = append(errs, errors.New("api.rate_per_second must not be negative"))
	}
	if c.Retry.MaxAttempts < 1 {
		errs = append(errs, errors.New("retry.max_attempts must be at least 1"))
	}
	if !slices.Contains(logLevels, c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level %q must be one of %s", c.Log.Level, strings.Join(logLevels, ", ")))
	}
	if c.Practice.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("practice.max_upload_bytes must be positive"))
	}
	return errors.Join(errs...)
}

// Gateway returns the settings of the remote data gateway.
func (c Config) Gateway() gateway.Config {
	return gateway.Config{
		BaseURL:       c.API.BaseURL,
		Timeout:       c.API.Timeout,
		RatePerSecond: c.API.RatePerSecond,
		Burst:         c.API.Burst,
		Retry: gateway.RetryConfig{
			MaxAttempts: c.Retry.MaxAttempts,
			InitialWait: c.Retry.InitialWait,
			MaxWait:     c.Retry.MaxWait,
			Multiplier:  c.Retry.Multiplier,
		},
	}
}

// Dir returns the configuration directory: $XDG_CONFIG_HOME/edumaster or
// ~/.config/edumaster.
func Dir() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "edumaster"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "edumaster"), nil
}

// DefaultLogFile returns $XDG_STATE_HOME/edumaster/edumaster.log or
// ~/.local/state/edumaster/edumaster.log.
func DefaultLogFile() (string, error) {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "edumaster", "edumaster.log"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".local", "state", "edumaster", "edumaster.log"), nil
}
