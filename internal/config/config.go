// Package config resolves run settings from flags, environment, and an
// optional YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/cdtdelta/mactimer/internal/database"
	"github.com/cdtdelta/mactimer/internal/timezone"
)

// EnvPrefix prefixes environment overrides, e.g. MACTIMER_STORE_DRIVER.
const EnvPrefix = "MACTIMER"

// Keys match the long flag names so flags can be bound directly.
const (
	KeyType        = "type"
	KeyYear        = "year"
	KeyTimezone    = "timezone"
	KeySkew        = "skew"
	KeyNormalize   = "normalize"
	KeyLog         = "log"
	KeyLogLevel    = "log-level"
	KeyCustom1     = "custom1"
	KeyCustom2     = "custom2"
	KeyStoreDriver = "store-driver"
	KeyStore       = "store"
)

var keys = []string{
	KeyType, KeyYear, KeyTimezone, KeySkew, KeyNormalize, KeyLog, KeyLogLevel,
	KeyCustom1, KeyCustom2, KeyStoreDriver, KeyStore,
}

// Config holds the settings of one run.
type Config struct {
	Type        string `mapstructure:"type"`
	Year        int    `mapstructure:"year"`
	Timezone    string `mapstructure:"timezone"`
	Skew        int32  `mapstructure:"skew"`
	Normalize   bool   `mapstructure:"normalize"`
	Log         string `mapstructure:"log"`
	LogLevel    string `mapstructure:"log-level"`
	Custom1     string `mapstructure:"custom1"`
	Custom2     string `mapstructure:"custom2"`
	StoreDriver string `mapstructure:"store-driver"`
	Store       string `mapstructure:"store"`
}

// SetDefaults registers default values on v. The default year is the
// current one.
func SetDefaults(v *viper.Viper, now time.Time) {
	v.SetDefault(KeyYear, now.Year())
	v.SetDefault(KeyTimezone, timezone.DefaultRule)
	v.SetDefault(KeySkew, 0)
	v.SetDefault(KeyNormalize, false)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyStoreDriver, "sqlite")
}

// Load reads environment overrides and, when path is set, a YAML file into
// v, then decodes and validates the result. A missing file is not an error.
func Load(v *viper.Viper, path string) (Config, error) {
	var cfg Config

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return cfg, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return cfg, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks that the settings describe a runnable conversion.
func (c Config) Validate() error {
	if c.Type == "" {
		return errors.New("an input type is required")
	}
	if c.Year < 1 {
		return fmt.Errorf("invalid year %d", c.Year)
	}
	if _, err := timezone.New(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone: %w", err)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	if c.Store != "" && !slices.Contains(database.Drivers, c.StoreDriver) {
		return fmt.Errorf("unsupported store driver %q (supported: %s)",
			c.StoreDriver, strings.Join(database.Drivers, ", "))
	}
	return nil
}
