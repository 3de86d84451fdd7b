// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment variables overriding file values.
const EnvPrefix = "MUSICLIB_"

// Config represents the application configuration.
type Config struct {
	Server   ServerConfig            `yaml:"server" envPrefix:"SERVER_"`
	Control  ControlConfig           `yaml:"control" envPrefix:"CONTROL_"`
	Catalog  CatalogConfig           `yaml:"catalog" envPrefix:"CATALOG_"`
	Audio    AudioConfig             `yaml:"audio" envPrefix:"AUDIO_"`
	Playback PlaybackConfig          `yaml:"playback" envPrefix:"PLAYBACK_"`
	Filters  map[string]FilterConfig `yaml:"filters" validate:"dive"`
}

// ServerConfig represents server configuration.
type ServerConfig struct {
	Addr  string      `yaml:"addr" env:"ADDR" default:":8080"`
	Hooks HooksConfig `yaml:"hooks"`
}

// HooksConfig represents lifecycle hooks configuration.
type HooksConfig struct {
	OnStarted []string `yaml:"on_started"`
	OnStopped []string `yaml:"on_stopped"`
}

// ControlConfig represents control API configuration.
type ControlConfig struct {
	// Token, when set, is required in the X-Control-Token header.
	Token string `yaml:"token" env:"TOKEN"`
}

// CatalogConfig represents catalog file configuration.
type CatalogConfig struct {
	Path     string `yaml:"path" env:"PATH" validate:"required"`
	MediaDir string `yaml:"media_dir" env:"MEDIA_DIR"`
	ReadTags bool   `yaml:"read_tags" env:"READ_TAGS"`
}

// AudioConfig represents audio backend configuration.
type AudioConfig struct {
	Backend            string         `yaml:"backend" env:"BACKEND" default:"beep" validate:"oneof=beep null"`
	ProgressIntervalMs int            `yaml:"progress_interval_ms" env:"PROGRESS_INTERVAL_MS" default:"250" validate:"gte=10,lte=5000"`
	Settings           map[string]any `yaml:"settings"`
}

// PlaybackConfig represents the initial player state.
type PlaybackConfig struct {
	RepeatOne      bool   `yaml:"repeat_one" env:"REPEAT_ONE"`
	PlaylistLoop   bool   `yaml:"playlist_loop" env:"PLAYLIST_LOOP"`
	TypeContinuous bool   `yaml:"type_continuous" env:"TYPE_CONTINUOUS"`
	Shuffle        bool   `yaml:"shuffle" env:"SHUFFLE"`
	InitialFilter  string `yaml:"initial_filter" env:"INITIAL_FILTER" default:"all"`
	Seed           uint64 `yaml:"seed" env:"SEED"` // 0 seeds from the system source
}

// FilterConfig represents a named browse filter preset.
type FilterConfig struct {
	Kind     string         `yaml:"kind" validate:"required"`
	Settings map[string]any `yaml:"settings,omitempty"`
}

// Load loads configuration from a YAML file.
// Environment variables prefixed with MUSICLIB_ take precedence over file values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	// Override with environment variables
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, errors.Wrap(err, "failed to parse environment")
	}

	// Set defaults using creasty/defaults
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}

	if err := c.validateFilterNames(); err != nil {
		return err
	}

	return nil
}

// reservedFilterNames are filter values that presets cannot shadow.
var reservedFilterNames = []string{"all", "short", "long", "english", "inst"}

// validateFilterNames checks that preset names do not collide with
// built-in filter values.
func (c *Config) validateFilterNames() error {
	for name := range c.Filters {
		lower := strings.ToLower(strings.TrimSpace(name))
		if lower == "" {
			return errors.New("filter preset name must not be empty")
		}
		if strings.Contains(lower, ",") || strings.HasPrefix(lower, "tag:") {
			return errors.Newf("filter preset name %q must not contain ',' or start with 'tag:'", name)
		}
		for _, reserved := range reservedFilterNames {
			if lower == reserved {
				return errors.Newf("filter preset name %q is reserved", name)
			}
		}
	}
	return nil
}

// ProgressInterval returns the audio progress reporting interval.
func (c *Config) ProgressInterval() time.Duration {
	return time.Duration(c.Audio.ProgressIntervalMs) * time.Millisecond
}

// ResolveCatalogPath resolves the catalog path relative to the config file
// directory when it is not absolute.
func (c *Config) ResolveCatalogPath(configPath string) string {
	return resolveRelative(c.Catalog.Path, configPath)
}

// ResolveMediaDir resolves the media directory the same way as the catalog path.
// An empty media directory stays empty.
func (c *Config) ResolveMediaDir(configPath string) string {
	if c.Catalog.MediaDir == "" {
		return ""
	}
	return resolveRelative(c.Catalog.MediaDir, configPath)
}
