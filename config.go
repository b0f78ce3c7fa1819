package bridgelog

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/spf13/viper"
)

// Config holds the settings shared by the logger, the sink server and the CLI.
// It is stored as config.yaml in ConfigDir; BRIDGELOG_* environment variables override it.
type Config struct {
	viper         *viper.Viper
	ConfigDir     string        `mapstructure:"config_dir"`     // Current config dir
	DBPath        string        `mapstructure:"db_path"`        // SQLite file for the mirror and the sink store
	SinkURL       string        `mapstructure:"sink_url"`       // Base URL of the REST sink
	ListenAddr    string        `mapstructure:"listen_addr"`    // Address the sink server binds
	RetryDelay    time.Duration `mapstructure:"retry_delay"`    // Base delay between delivery retries
	MaxRetries    int           `mapstructure:"max_retries"`    // Retries per delivery
	MirrorLimit   int           `mapstructure:"mirror_limit"`   // Entries kept in the local mirror
	ProbeInterval time.Duration `mapstructure:"probe_interval"` // How often connectivity is probed
	HTTPTimeout   time.Duration `mapstructure:"http_timeout"`   // Timeout of sink requests
	LogLevel      string        `mapstructure:"log_level"`      // zap level name
}

// LoadConfig reads config.yaml from dir, creating the directory and a default file when missing.
func LoadConfig(dir string) (*Config, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating config dir %s : %w", dir, err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.SetEnvPrefix("BRIDGELOG")
	v.AutomaticEnv()

	v.SetDefault("db_path", filepath.Join(dir, "bridgelog.db"))
	v.SetDefault("sink_url", "http://127.0.0.1:8080")
	v.SetDefault("listen_addr", "127.0.0.1:8080")
	v.SetDefault("retry_delay", "1s")
	v.SetDefault("max_retries", DefaultMaxRetries)
	v.SetDefault("mirror_limit", DefaultMirrorLimit)
	v.SetDefault("probe_interval", "15s")
	v.SetDefault("http_timeout", "10s")
	v.SetDefault("log_level", "info")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if err := v.SafeWriteConfig(); err != nil {
				return nil, fmt.Errorf("writing config file : %w", err)
			}
		} else {
			return nil, fmt.Errorf("reading config file : %w", err)
		}
	}

	cfg := &Config{viper: v}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config to struct : %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s : %w", v.ConfigFileUsed(), err)
	}
	cfg.ConfigDir = dir
	return cfg, nil
}

func (cfg *Config) validate() error {
	switch {
	case cfg.ProbeInterval <= 0:
		return fmt.Errorf("probe_interval should be positive, got %s", cfg.ProbeInterval)
	case cfg.HTTPTimeout <= 0:
		return fmt.Errorf("http_timeout should be positive, got %s", cfg.HTTPTimeout)
	case cfg.RetryDelay < 0:
		return fmt.Errorf("retry_delay should not be negative, got %s", cfg.RetryDelay)
	case cfg.MaxRetries < 0:
		return fmt.Errorf("max_retries should not be negative, got %d", cfg.MaxRetries)
	case cfg.MirrorLimit < 1:
		return fmt.Errorf("mirror_limit should be at least 1, got %d", cfg.MirrorLimit)
	}
	return nil
}

// Set updates one known key, writes the file and reloads the struct.
// Values that would make the config invalid are rejected and nothing is written.
func (cfg *Config) Set(key string, value any) error {
	if !slices.Contains(cfg.viper.AllKeys(), key) {
		return fmt.Errorf("unknown config key %q", key)
	}
	previous := cfg.viper.Get(key)
	cfg.viper.Set(key, value)

	var next Config
	if err := cfg.viper.Unmarshal(&next); err != nil {
		cfg.viper.Set(key, previous)
		return fmt.Errorf("invalid value for %s : %w", key, err)
	}
	if err := next.validate(); err != nil {
		cfg.viper.Set(key, previous)
		return err
	}

	if err := cfg.viper.WriteConfig(); err != nil {
		return fmt.Errorf("failed to save configuration : %w", err)
	}
	if err := cfg.viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unmarshalling config to struct : %w", err)
	}
	return nil
}

// Path returns the config file location.
func (cfg *Config) Path() string {
	return filepath.Join(cfg.ConfigDir, "config.yaml")
}
