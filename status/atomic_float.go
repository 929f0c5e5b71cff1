package status

import (
	"math"
	"sync/atomic"
)

// AtomicFloat stores a float64 as its IEEE bits in an atomic word
// Zero value is ready to use (represents 0.0)
type AtomicFloat struct {
	bits atomic.Uint64
}

// Set stores a float64 value atomically
func (f *AtomicFloat) Set(val float64) {
	f.bits.Store(math.Float64bits(val))
}

// Get loads the float64 value atomically
func (f *AtomicFloat) Get() float64 {
	return math.Float64frombits(f.bits.Load())
}

// Observe folds val into an exponential moving average with weight alpha
// The first observation seeds the average
func (f *AtomicFloat) Observe(val, alpha float64) float64 {
	for {
		old := f.bits.Load()
		prev := math.Float64frombits(old)
		next := val
		if old != 0 {
			next = prev + alpha*(val-prev)
		}
		if f.bits.CompareAndSwap(old, math.Float64bits(next)) {
			return next
		}
	}
}
