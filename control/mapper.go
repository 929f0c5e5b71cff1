package control

import (
	"math"

	"github.com/lixenwraith/voice-dodger/audio"
	"github.com/lixenwraith/voice-dodger/config"
	"github.com/lixenwraith/voice-dodger/vmath"
)

// Reason classifies the outcome of mapping one observation
type Reason int

const (
	ReasonAccepted Reason = iota
	ReasonLowClarity
	ReasonOutOfBand
	ReasonInvalid
)

func (r Reason) String() string {
	switch r {
	case ReasonAccepted:
		return "Accepted"
	case ReasonLowClarity:
		return "LowClarity"
	case ReasonOutOfBand:
		return "OutOfBand"
	case ReasonInvalid:
		return "Invalid"
	default:
		return "Unknown"
	}
}

// Mapper converts pitch observations into control values
// Immutable after construction; safe for use from the audio goroutine
type Mapper struct {
	minHz, maxHz     float64
	acceptMin        float64
	acceptMax        float64
	clarityThreshold float64
	gain             float64
	strictBandClamp  bool
}

// NewMapper creates a mapper from the pitch section of the configuration
// A zero accept band falls back to the normalization band
func NewMapper(cfg config.Pitch) *Mapper {
	m := &Mapper{
		minHz:            cfg.MinHz,
		maxHz:            cfg.MaxHz,
		acceptMin:        cfg.AcceptMinHz,
		acceptMax:        cfg.AcceptMaxHz,
		clarityThreshold: cfg.ClarityThreshold,
		gain:             cfg.Gain,
		strictBandClamp:  cfg.StrictBandClamp,
	}
	if m.acceptMin == 0 && m.acceptMax == 0 {
		m.acceptMin, m.acceptMax = m.minHz, m.maxHz
	}
	return m
}

// Normalize maps pitchHz onto the band, 0 at MinHz and 1 at MaxHz
// With strict clamping the result is limited to [0,1]; otherwise it extrapolates linearly
func (m *Mapper) Normalize(pitchHz float64) float64 {
	n := vmath.InverseLerp(m.minHz, m.maxHz, pitchHz)
	if m.strictBandClamp {
		n = vmath.Clamp(n, 0, 1)
	}
	return n
}

// Velocity applies the control law to a normalized pitch
// Mid band is neutral, low pitch moves down (+Y), high pitch moves up (-Y)
func (m *Mapper) Velocity(normalized float64) float64 {
	return (0.5 - normalized) * m.gain
}

// Map derives a control value from obs; the value is meaningful only when the reason is ReasonAccepted
// Acceptance is decided on the raw pitch, never on the normalized one
func (m *Mapper) Map(obs audio.Observation) (Value, Reason) {
	if math.IsNaN(obs.PitchHz) || math.IsInf(obs.PitchHz, 0) || math.IsNaN(obs.Clarity) {
		return Value{}, ReasonInvalid
	}

	normalized := m.Normalize(obs.PitchHz)

	if obs.Clarity < m.clarityThreshold {
		return Value{}, ReasonLowClarity
	}
	if obs.PitchHz < m.acceptMin || obs.PitchHz > m.acceptMax {
		return Value{}, ReasonOutOfBand
	}

	return Value{
		VerticalVelocity: m.Velocity(normalized),
		NormalizedPitch:  normalized,
		PitchHz:          obs.PitchHz,
		Clarity:          obs.Clarity,
	}, ReasonAccepted
}

// Apply maps obs and publishes the result to cell when accepted
// Rejections leave the cell untouched
func (m *Mapper) Apply(obs audio.Observation, cell *Cell) Reason {
	v, reason := m.Map(obs)
	if reason == ReasonAccepted {
		cell.Store(v)
	}
	return reason
}
