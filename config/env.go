package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// EnvPrefix namespaces every environment override
const EnvPrefix = "VOICE_DODGER_"

// DotEnvFile is read from the working directory when present
var DotEnvFile = ".env"

// loadDotEnv merges DotEnvFile into the process environment without overriding set variables
func loadDotEnv() error {
	if err := godotenv.Load(DotEnvFile); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", DotEnvFile, err)
	}
	return nil
}

// applyEnv overrides cfg fields from VOICE_DODGER_* variables
func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvPrefix + "DEVICE"); v != "" {
		cfg.Capture.Device = v
	}
	if v := os.Getenv(EnvPrefix + "BACKEND"); v != "" {
		cfg.Capture.Backend = v
	}

	floats := []struct {
		key string
		dst *float64
	}{
		{"PITCH_MIN", &cfg.Pitch.MinHz},
		{"PITCH_MAX", &cfg.Pitch.MaxHz},
		{"ACCEPT_MIN", &cfg.Pitch.AcceptMinHz},
		{"ACCEPT_MAX", &cfg.Pitch.AcceptMaxHz},
		{"CLARITY", &cfg.Pitch.ClarityThreshold},
		{"GAIN", &cfg.Pitch.Gain},
		{"TONE_HZ", &cfg.Capture.ToneHz},
	}
	for _, f := range floats {
		v := os.Getenv(EnvPrefix + f.key)
		if v == "" {
			continue
		}
		val, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: %s%s=%q", ErrInvalidConfig, EnvPrefix, f.key, v)
		}
		*f.dst = val
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"SAMPLE_RATE", &cfg.Capture.SampleRate},
		{"WINDOW_SIZE", &cfg.Capture.WindowSize},
		{"MAX_HEALTH", &cfg.Session.MaxHealth},
	}
	for _, f := range ints {
		v := os.Getenv(EnvPrefix + f.key)
		if v == "" {
			continue
		}
		val, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s%s=%q", ErrInvalidConfig, EnvPrefix, f.key, v)
		}
		*f.dst = val
	}

	if v := os.Getenv(EnvPrefix + "SEED"); v != "" {
		val, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %sSEED=%q", ErrInvalidConfig, EnvPrefix, v)
		}
		cfg.Field.Seed = val
	}

	bools := []struct {
		key string
		dst *bool
	}{
		{"STRICT_CLAMP", &cfg.Pitch.StrictBandClamp},
		{"SOUND", &cfg.Sound.Enabled},
	}
	for _, f := range bools {
		v := os.Getenv(EnvPrefix + f.key)
		if v == "" {
			continue
		}
		val, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s%s=%q", ErrInvalidConfig, EnvPrefix, f.key, v)
		}
		*f.dst = val
	}

	// Volume is 0-100 like the mixer control, stored as 0.0-1.0
	if v := os.Getenv(EnvPrefix + "VOLUME"); v != "" {
		val, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %sVOLUME=%q", ErrInvalidConfig, EnvPrefix, v)
		}
		vol := float64(val) / 100.0
		if vol < 0 {
			vol = 0
		}
		if vol > 1 {
			vol = 1
		}
		cfg.Sound.Volume = vol
	}
	return nil
}
