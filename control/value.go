package control

import (
	"sync/atomic"
)

// Value is the derived control driving the player's vertical velocity
type Value struct {
	VerticalVelocity float64 // play-area units per second, positive = down
	NormalizedPitch  float64 // 0 = bottom of band, 1 = top of band
	PitchHz          float64 // raw accepted pitch, for presentation
	Clarity          float64 // clarity of the accepted estimate
}

// Neutral is the value held before any observation is accepted
var Neutral = Value{VerticalVelocity: 0, NormalizedPitch: 0.5}

// slot is the immutable payload swapped into the cell
type slot struct {
	value Value
	seq   uint64
}

// Cell is a single-slot latest-value handoff between the audio goroutine and the frame loop
// Writers overwrite, readers never block and never consume; a reader that finds no new
// value simply reuses the last one
type Cell struct {
	ptr atomic.Pointer[slot]
}

// NewCell creates a cell holding Neutral with sequence 0
func NewCell() *Cell {
	c := &Cell{}
	c.ptr.Store(&slot{value: Neutral})
	return c
}

// Store publishes v, replacing any unread value
func (c *Cell) Store(v Value) {
	prev := c.ptr.Load()
	c.ptr.Store(&slot{value: v, seq: prev.seq + 1})
}

// Load returns the latest value and its sequence number
// Sequence 0 only before the first Store or Reset; both advance it, so a changed sequence means a new value
func (c *Cell) Load() (Value, uint64) {
	s := c.ptr.Load()
	return s.value, s.seq
}

// Reset restores Neutral; the sequence keeps counting so readers see the change
func (c *Cell) Reset() {
	prev := c.ptr.Load()
	c.ptr.Store(&slot{value: Neutral, seq: prev.seq + 1})
}
