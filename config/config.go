// Package config loads game tunables from defaults, an optional YAML file, an optional .env file
// and VOICE_DODGER_* environment variables, in that order of precedence (last wins)
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/voice-dodger/parameter"
)

// Device kinds accepted by Capture.Device
const (
	DeviceMic  = "mic"
	DevicePipe = "pipe"
	DeviceTone = "tone"
)

// ErrInvalidConfig wraps every validation failure
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the complete game configuration
type Config struct {
	Pitch   Pitch   `yaml:"pitch"`
	Capture Capture `yaml:"capture"`
	Player  Player  `yaml:"player"`
	Field   Field   `yaml:"field"`
	Session Session `yaml:"session"`
	Frame   Frame   `yaml:"frame"`
	Sound   Sound   `yaml:"sound"`
}

// Pitch configures the control mapper
type Pitch struct {
	MinHz            float64 `yaml:"min_hz"`
	MaxHz            float64 `yaml:"max_hz"`
	AcceptMinHz      float64 `yaml:"accept_min_hz"` // raw-pitch acceptance band, defaults to the normalization band
	AcceptMaxHz      float64 `yaml:"accept_max_hz"`
	ClarityThreshold float64 `yaml:"clarity_threshold"`
	Gain             float64 `yaml:"gain"`
	StrictBandClamp  bool    `yaml:"strict_band_clamp"` // clamp normalized pitch to [0,1] when the accept band is wider
}

// Capture configures the audio source
type Capture struct {
	Device     string  `yaml:"device"` // mic, pipe, tone
	SampleRate int     `yaml:"sample_rate"`
	WindowSize int     `yaml:"window_size"`
	FrameSize  int     `yaml:"frame_size"`
	Backend    string  `yaml:"backend"` // pipe recorder override (parec, pw-record, arecord, rec)
	ToneHz     float64 `yaml:"tone_hz"`
}

// Player configures the avatar body
type Player struct {
	X           float64       `yaml:"x"`
	Width       float64       `yaml:"width"`
	Height      float64       `yaml:"height"`
	HitReaction time.Duration `yaml:"hit_reaction"`
}

// Field configures the play area and obstacle spawning
type Field struct {
	Width          float64       `yaml:"width"`
	Height         float64       `yaml:"height"`
	ObstacleWidth  float64       `yaml:"obstacle_width"`
	ObstacleHeight float64       `yaml:"obstacle_height"`
	SpeedMin       float64       `yaml:"speed_min"`
	SpeedMax       float64       `yaml:"speed_max"`
	SpawnMin       time.Duration `yaml:"spawn_min"`
	SpawnMax       time.Duration `yaml:"spawn_max"`
	Seed           int64         `yaml:"seed"` // 0 = seed from clock
}

// Session configures scoring and health
type Session struct {
	MaxHealth int `yaml:"max_health"`
}

// Frame configures the presentation loop
type Frame struct {
	Interval time.Duration `yaml:"interval"`
	MaxDelta time.Duration `yaml:"max_delta"`
}

// Sound configures feedback cues
type Sound struct {
	Enabled bool    `yaml:"enabled"`
	Volume  float64 `yaml:"volume"` // 0.0-1.0
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Pitch: Pitch{
			MinHz:            parameter.PitchMin,
			MaxHz:            parameter.PitchMax,
			AcceptMinHz:      parameter.PitchMin,
			AcceptMaxHz:      parameter.PitchMax,
			ClarityThreshold: parameter.PitchClarityThreshold,
			Gain:             parameter.PitchGain,
			StrictBandClamp:  true,
		},
		Capture: Capture{
			Device:     DeviceMic,
			SampleRate: parameter.CaptureSampleRate,
			WindowSize: parameter.CaptureWindowSize,
			FrameSize:  parameter.CaptureFrameSize,
			ToneHz:     parameter.ToneFrequency,
		},
		Player: Player{
			X:           parameter.PlayerX,
			Width:       parameter.PlayerWidth,
			Height:      parameter.PlayerHeight,
			HitReaction: parameter.PlayerHitReaction,
		},
		Field: Field{
			Width:          parameter.AreaWidth,
			Height:         parameter.AreaHeight,
			ObstacleWidth:  parameter.ObstacleWidth,
			ObstacleHeight: parameter.ObstacleHeight,
			SpeedMin:       parameter.ObstacleSpeedMin,
			SpeedMax:       parameter.ObstacleSpeedMax,
			SpawnMin:       parameter.SpawnIntervalMin,
			SpawnMax:       parameter.SpawnIntervalMax,
		},
		Session: Session{
			MaxHealth: parameter.MaxHealth,
		},
		Frame: Frame{
			Interval: parameter.FrameUpdateInterval,
			MaxDelta: parameter.MaxFrameDelta,
		},
		Sound: Sound{
			Enabled: true,
			Volume:  0.6,
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (skipped when empty),
// then .env, then VOICE_DODGER_* variables; the result is validated
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and cross-field constraints
func Validate(cfg *Config) error {
	p := cfg.Pitch
	switch {
	case p.MinHz <= 0 || p.MaxHz <= p.MinHz:
		return fmt.Errorf("%w: pitch band [%g, %g]", ErrInvalidConfig, p.MinHz, p.MaxHz)
	case p.AcceptMaxHz <= p.AcceptMinHz:
		return fmt.Errorf("%w: accept band [%g, %g]", ErrInvalidConfig, p.AcceptMinHz, p.AcceptMaxHz)
	case p.ClarityThreshold < 0 || p.ClarityThreshold > 1:
		return fmt.Errorf("%w: clarity threshold %g outside [0,1]", ErrInvalidConfig, p.ClarityThreshold)
	case p.Gain <= 0:
		return fmt.Errorf("%w: gain must be positive", ErrInvalidConfig)
	}

	c := cfg.Capture
	switch c.Device {
	case DeviceMic, DevicePipe, DeviceTone:
	default:
		return fmt.Errorf("%w: unknown capture device %q", ErrInvalidConfig, c.Device)
	}
	if c.SampleRate <= 0 || c.WindowSize <= 0 || c.FrameSize <= 0 {
		return fmt.Errorf("%w: capture sizes must be positive", ErrInvalidConfig)
	}
	if c.Device == DeviceTone && c.ToneHz <= 0 {
		return fmt.Errorf("%w: tone frequency must be positive", ErrInvalidConfig)
	}

	f := cfg.Field
	switch {
	case f.Width <= 0 || f.Height <= 0:
		return fmt.Errorf("%w: play area %gx%g", ErrInvalidConfig, f.Width, f.Height)
	case f.ObstacleWidth <= 0 || f.ObstacleHeight <= 0 || f.ObstacleHeight > f.Height:
		return fmt.Errorf("%w: obstacle size %gx%g", ErrInvalidConfig, f.ObstacleWidth, f.ObstacleHeight)
	case f.SpeedMin <= 0 || f.SpeedMax < f.SpeedMin:
		return fmt.Errorf("%w: obstacle speed [%g, %g]", ErrInvalidConfig, f.SpeedMin, f.SpeedMax)
	case f.SpawnMin <= 0 || f.SpawnMax < f.SpawnMin:
		return fmt.Errorf("%w: spawn interval [%s, %s]", ErrInvalidConfig, f.SpawnMin, f.SpawnMax)
	}

	pl := cfg.Player
	if pl.Width <= 0 || pl.Height <= 0 || pl.Height > f.Height || pl.X < 0 || pl.X+pl.Width > f.Width {
		return fmt.Errorf("%w: player body does not fit the play area", ErrInvalidConfig)
	}
	if pl.HitReaction < 0 {
		return fmt.Errorf("%w: negative hit reaction", ErrInvalidConfig)
	}

	if cfg.Session.MaxHealth < 1 {
		return fmt.Errorf("%w: max health must be at least 1", ErrInvalidConfig)
	}
	if cfg.Frame.Interval <= 0 || cfg.Frame.MaxDelta < cfg.Frame.Interval {
		return fmt.Errorf("%w: frame interval %s, max delta %s", ErrInvalidConfig, cfg.Frame.Interval, cfg.Frame.MaxDelta)
	}
	if cfg.Sound.Volume < 0 || cfg.Sound.Volume > 1 {
		return fmt.Errorf("%w: sound volume %g outside [0,1]", ErrInvalidConfig, cfg.Sound.Volume)
	}
	return nil
}
