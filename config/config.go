// Package config loads store settings from TOML files and BBECS_* environment variables.
package config

import (
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// EnvPrefix is prepended to environment overrides, e.g. BBECS_STORE_BLOCK_SIZE.
const EnvPrefix = "BBECS"

type Config struct {
	Store         StoreConfig         `toml:"store" mapstructure:"store"`
	Logging       LoggingConfig       `toml:"logging" mapstructure:"logging"`
	Observability ObservabilityConfig `toml:"observability" mapstructure:"observability"`
	Prefabs       PrefabConfig        `toml:"prefabs" mapstructure:"prefabs"`
}

type StoreConfig struct {
	BlockSize int `toml:"block_size" mapstructure:"block_size"` // slots added to every column per growth
}

type LoggingConfig struct {
	Level  string `toml:"level" mapstructure:"level"`
	Format string `toml:"format" mapstructure:"format"` // "json" or "console"
}

type ObservabilityConfig struct {
	StructuredLogging bool   `toml:"structured_logging" mapstructure:"structured_logging"`
	LogFormat         string `toml:"log_format" mapstructure:"log_format"` // "json" or "kv"
	Prometheus        bool   `toml:"prometheus" mapstructure:"prometheus"`
	SigNoz            bool   `toml:"signoz" mapstructure:"signoz"`
	ServiceName       string `toml:"service_name" mapstructure:"service_name"`
}

type PrefabConfig struct {
	Dir   string `toml:"dir" mapstructure:"dir"`
	Watch bool   `toml:"watch" mapstructure:"watch"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			BlockSize: 1024,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Observability: ObservabilityConfig{
			LogFormat:   "json",
			ServiceName: "bbecs",
		},
	}
}

// Load reads a TOML file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// NewViper returns a viper instance carrying the defaults and environment binding.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// SetDefaults mirrors Default into v so environment variables can override every key.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("store.block_size", d.Store.BlockSize)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("observability.structured_logging", d.Observability.StructuredLogging)
	v.SetDefault("observability.log_format", d.Observability.LogFormat)
	v.SetDefault("observability.prometheus", d.Observability.Prometheus)
	v.SetDefault("observability.signoz", d.Observability.SigNoz)
	v.SetDefault("observability.service_name", d.Observability.ServiceName)
	v.SetDefault("prefabs.dir", d.Prefabs.Dir)
	v.SetDefault("prefabs.watch", d.Prefabs.Watch)
}

// LoadWithViper unmarshals and validates a configuration from v.
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the store cannot run with.
func (c *Config) Validate() error {
	if c.Store.BlockSize <= 0 {
		return errors.WithHint(
			errors.Newf("store.block_size must be positive, got %d", c.Store.BlockSize),
			"a few hundred to a few thousand slots suits most frames")
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(c.Logging.Level)); err != nil {
		return errors.Wrapf(err, "logging.level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return errors.Newf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	switch c.Observability.LogFormat {
	case "json", "kv":
	default:
		return errors.Newf("observability.log_format must be json or kv, got %q", c.Observability.LogFormat)
	}
	return nil
}
