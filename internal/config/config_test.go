package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v, now)
	return v
}

func TestLoad_Defaults(t *testing.T) {
	v := newViper()
	v.Set(KeyType, "ief")

	cfg, err := Load(v, "")
	require.NoError(t, err)
	assert.Equal(t, Config{
		Type:        "ief",
		Year:        2026,
		Timezone:    "UTC",
		LogLevel:    "info",
		StoreDriver: "sqlite",
	}, cfg)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mactimer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"type: notes\nyear: 2009\ntimezone: EST-5EDT\nskew: -60\nnormalize: true\ncustom1: interview\n"), 0o644))

	cfg, err := Load(newViper(), path)
	require.NoError(t, err)
	assert.Equal(t, "notes", cfg.Type)
	assert.Equal(t, 2009, cfg.Year)
	assert.Equal(t, "EST-5EDT", cfg.Timezone)
	assert.Equal(t, int32(-60), cfg.Skew)
	assert.True(t, cfg.Normalize)
	assert.Equal(t, "interview", cfg.Custom1)
}

func TestLoad_MissingFileIsIgnored(t *testing.T) {
	v := newViper()
	v.Set(KeyType, "tln")

	_, err := Load(v, filepath.Join(t.TempDir(), "absent.yaml"))
	assert.NoError(t, err)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("MACTIMER_TYPE", "griffeye")
	t.Setenv("MACTIMER_STORE_DRIVER", "postgres")
	t.Setenv("MACTIMER_STORE", "postgres://localhost/timeline")

	cfg, err := Load(newViper(), "")
	require.NoError(t, err)
	assert.Equal(t, "griffeye", cfg.Type)
	assert.Equal(t, "postgres", cfg.StoreDriver)
	assert.Equal(t, "postgres://localhost/timeline", cfg.Store)
}

func TestValidate(t *testing.T) {
	valid := Config{Type: "ief", Year: 2009, Timezone: "UTC", LogLevel: "info", StoreDriver: "sqlite"}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"no type", func(c *Config) { c.Type = "" }, "input type is required"},
		{"bad year", func(c *Config) { c.Year = 0 }, "invalid year"},
		{"bad zone", func(c *Config) { c.Timezone = "Mars/Olympus" }, "invalid timezone"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "invalid log level"},
		{"bad driver", func(c *Config) { c.Store = "x"; c.StoreDriver = "mysql" }, "unsupported store driver"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.modify(&cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}

func TestValidate_DriverIgnoredWithoutStore(t *testing.T) {
	cfg := Config{Type: "ief", Year: 2009, Timezone: "UTC", LogLevel: "info", StoreDriver: "mysql"}
	assert.NoError(t, cfg.Validate())
}
