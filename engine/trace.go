package engine

import (
	"github.com/lixenwraith/voice-dodger/control"
)

// TracePoint is one accepted control value on the scrolling pitch chart
type TracePoint struct {
	X          float64 // chart column, width at insertion, scrolls toward 0
	Normalized float64
	PitchHz    float64
	Velocity   float64
}

// Trace keeps the recent accepted values for the pitch chart
// New points enter at the right edge; every frame scrolls all points left by step
// and drops those past the left edge
type Trace struct {
	width  float64
	step   float64
	points []TracePoint
}

// NewTrace creates a chart width columns wide scrolling step columns per frame
func NewTrace(width, step float64) *Trace {
	return &Trace{
		width:  width,
		step:   step,
		points: make([]TracePoint, 0, int(width/max(step, 1e-9))+1),
	}
}

// Push adds v at the right edge
func (t *Trace) Push(v control.Value) {
	t.points = append(t.points, TracePoint{
		X:          t.width,
		Normalized: v.NormalizedPitch,
		PitchHz:    v.PitchHz,
		Velocity:   v.VerticalVelocity,
	})
}

// Advance scrolls one frame
func (t *Trace) Advance() {
	kept := t.points[:0]
	for _, p := range t.points {
		p.X -= t.step
		if p.X >= 0 {
			kept = append(kept, p)
		}
	}
	t.points = kept
}

// Points returns a copy oldest first
func (t *Trace) Points() []TracePoint {
	out := make([]TracePoint, len(t.points))
	copy(out, t.points)
	return out
}

// Width returns the chart width in columns
func (t *Trace) Width() float64 {
	return t.width
}

// Reset clears the chart
func (t *Trace) Reset() {
	t.points = t.points[:0]
}
