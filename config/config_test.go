// SPDX-License-Identifier: EPL-2.0

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ik5/otodecks/engine"
	"github.com/spf13/viper"
)

func writeConfig(t *testing.T, body string) *viper.Viper {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	v := viper.New()
	v.SetConfigFile(path)

	return v
}

func TestLoad_Defaults(t *testing.T) {
	v := writeConfig(t, "")

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := Config{
		Audio:   AudioConfig{SampleRate: 44100, BlockSize: 512, Channels: 2, Buffer: 100 * time.Millisecond},
		Mixer:   MixerConfig{Clipping: "none"},
		Decks:   DecksConfig{Count: 2, Gain: 0.5, Speed: 1},
		Library: LibraryConfig{TracksDir: "Tracks"},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
	if *cfg != want {
		t.Errorf("Load() = %+v, want %+v", *cfg, want)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults error = %v", err)
	}
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	v := writeConfig(t, `
audio:
  sample_rate: 48000
  buffer: 50ms
mixer:
  clipping: soft
decks:
  count: 4
library:
  tracks_dir: /music
`)

	t.Setenv("OTODECKS_AUDIO_BLOCK_SIZE", "1024")
	t.Setenv("OTODECKS_LOGGING_LEVEL", "debug")

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Audio.SampleRate != 48000 || cfg.Audio.Buffer != 50*time.Millisecond {
		t.Errorf("audio = %+v", cfg.Audio)
	}
	if cfg.Audio.BlockSize != 1024 {
		t.Errorf("block_size = %d, want 1024 from the environment", cfg.Audio.BlockSize)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("logging.level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Decks.Count != 4 || cfg.Library.TracksDir != "/music" {
		t.Errorf("decks = %+v, library = %+v", cfg.Decks, cfg.Library)
	}
	if cfg.ClipMode() != engine.ClipSoft {
		t.Errorf("ClipMode() = %v, want soft", cfg.ClipMode())
	}
}

func TestLoad_BrokenFile(t *testing.T) {
	v := writeConfig(t, "audio: [not: a map")

	if _, err := Load(v); err == nil {
		t.Error("Load() of broken YAML succeeded")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := func() Config {
		return Config{
			Audio:   AudioConfig{SampleRate: 44100, BlockSize: 512, Channels: 2},
			Mixer:   MixerConfig{Clipping: "hard"},
			Decks:   DecksConfig{Count: 2, Gain: 1, Speed: 1},
			Logging: LoggingConfig{Level: "warn", Format: "json"},
		}
	}

	tests := []struct {
		field  string
		mutate func(*Config)
	}{
		{"audio.sample_rate", func(c *Config) { c.Audio.SampleRate = 0 }},
		{"audio.block_size", func(c *Config) { c.Audio.BlockSize = 100000 }},
		{"audio.channels", func(c *Config) { c.Audio.Channels = 0 }},
		{"audio.buffer", func(c *Config) { c.Audio.Buffer = -time.Second }},
		{"decks.count", func(c *Config) { c.Decks.Count = 0 }},
		{"decks.gain", func(c *Config) { c.Decks.Gain = 1.5 }},
		{"decks.speed", func(c *Config) { c.Decks.Speed = -1 }},
		{"mixer.clipping", func(c *Config) { c.Mixer.Clipping = "brickwall" }},
		{"logging.level", func(c *Config) { c.Logging.Level = "loud" }},
		{"logging.format", func(c *Config) { c.Logging.Format = "xml" }},
	}

	base := valid()
	if err := base.Validate(); err != nil {
		t.Fatalf("Validate() on valid config error = %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			t.Parallel()

			cfg := valid()
			tt.mutate(&cfg)

			var cerr *ConfigError
			if err := cfg.Validate(); !errors.As(err, &cerr) || cerr.Field != tt.field {
				t.Errorf("Validate() error = %v, want field %s", err, tt.field)
			}
		})
	}
}

func TestConfigError_Unwrap(t *testing.T) {
	t.Parallel()

	cfg := Config{
		Audio:   AudioConfig{SampleRate: 44100, BlockSize: 512, Channels: 2},
		Mixer:   MixerConfig{Clipping: "brickwall"},
		Decks:   DecksConfig{Count: 2},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}

	if err := cfg.Validate(); !errors.Is(err, engine.ErrInvalidParameter) {
		t.Errorf("Validate() error = %v, want ErrInvalidParameter in chain", err)
	}
}
