// SPDX-License-Identifier: EPL-2.0

// Package config loads otodecks settings from config.yaml, OTODECKS_*
// environment variables and bound command-line flags through viper.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ik5/otodecks/engine"
	"github.com/ik5/otodecks/logger"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Audio   AudioConfig   `mapstructure:"audio"`
	Mixer   MixerConfig   `mapstructure:"mixer"`
	Decks   DecksConfig   `mapstructure:"decks"`
	Library LibraryConfig `mapstructure:"library"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// AudioConfig describes the output device.
type AudioConfig struct {
	SampleRate int           `mapstructure:"sample_rate"`
	BlockSize  int           `mapstructure:"block_size"` // frames per pull
	Channels   int           `mapstructure:"channels"`
	Buffer     time.Duration `mapstructure:"buffer"` // device latency
}

type MixerConfig struct {
	Clipping string `mapstructure:"clipping"` // none, hard or soft
}

// DecksConfig holds the deck count and the values each deck starts with.
type DecksConfig struct {
	Count int     `mapstructure:"count"`
	Gain  float64 `mapstructure:"gain"`
	Speed float64 `mapstructure:"speed"`
}

type LibraryConfig struct {
	TracksDir string `mapstructure:"tracks_dir"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or text
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("audio.sample_rate", 44100)
	v.SetDefault("audio.block_size", 512)
	v.SetDefault("audio.channels", 2)
	v.SetDefault("audio.buffer", "100ms")
	v.SetDefault("mixer.clipping", "none")
	v.SetDefault("decks.count", 2)
	v.SetDefault("decks.gain", 0.5)
	v.SetDefault("decks.speed", 1.0)
	v.SetDefault("library.tracks_dir", "Tracks")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// LoadConfig loads configuration through the global viper instance, which
// is where the CLI binds its flags.
func LoadConfig() (*Config, error) {
	return Load(viper.GetViper())
}

// Load reads config.yaml from the usual search paths unless a file was
// already set on v, then layers the environment over it. A missing config
// file is not an error.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.otodecks")
	v.AddConfigPath("/etc/otodecks")

	v.SetEnvPrefix("OTODECKS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		slog.Debug("No config file found, using defaults and environment variables")
	} else {
		slog.Info("Using config file", slog.String("file", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	return &cfg, nil
}

// Validate checks every field and reports the first bad one.
func (c *Config) Validate() error {
	switch {
	case c.Audio.SampleRate < 8000 || c.Audio.SampleRate > 384000:
		return &ConfigError{Field: "audio.sample_rate", Message: "must be between 8000 and 384000"}
	case c.Audio.BlockSize < 16 || c.Audio.BlockSize > 8192:
		return &ConfigError{Field: "audio.block_size", Message: "must be between 16 and 8192 frames"}
	case c.Audio.Channels < 1 || c.Audio.Channels > 8:
		return &ConfigError{Field: "audio.channels", Message: "must be between 1 and 8"}
	case c.Audio.Buffer < 0:
		return &ConfigError{Field: "audio.buffer", Message: "must not be negative"}
	case c.Decks.Count < 1 || c.Decks.Count > 8:
		return &ConfigError{Field: "decks.count", Message: "must be between 1 and 8"}
	case c.Decks.Gain < engine.MinGain || c.Decks.Gain > engine.MaxGain:
		return &ConfigError{Field: "decks.gain", Message: fmt.Sprintf("must be between %v and %v", engine.MinGain, engine.MaxGain)}
	case c.Decks.Speed < engine.MinSpeed || c.Decks.Speed > engine.MaxSpeed:
		return &ConfigError{Field: "decks.speed", Message: fmt.Sprintf("must be between %v and %v", engine.MinSpeed, engine.MaxSpeed)}
	}

	if _, err := engine.ParseClipMode(c.Mixer.Clipping); err != nil {
		return &ConfigError{Field: "mixer.clipping", Message: "must be none, hard or soft", Err: err}
	}
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		return &ConfigError{Field: "logging.level", Message: "must be debug, info, warn or error", Err: err}
	}
	if f := strings.ToLower(c.Logging.Format); f != "text" && f != "json" {
		return &ConfigError{Field: "logging.format", Message: "must be text or json"}
	}

	return nil
}

// ClipMode returns the parsed mixer clipping mode.
func (c *Config) ClipMode() engine.ClipMode {
	mode, _ := engine.ParseClipMode(c.Mixer.Clipping)
	return mode
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *ConfigError) Unwrap() error { return e.Err }
