package status

import (
	"fmt"
	"sync/atomic"
)

// Metric keys shared between producers and the status line
const (
	KeyTicks            = "engine.ticks"
	KeyFrameMs          = "engine.frame_ms"
	KeySession          = "engine.session"
	KeyWindowsAnalyzed  = "audio.windows.analyzed"
	KeyWindowsDropped   = "audio.windows.dropped"
	KeyWindowsSlow      = "audio.windows.slow"
	KeyFramesInvalid    = "audio.frames.invalid"
	KeyCaptureRunning   = "audio.capture.running"
	KeyControlAccepted  = "control.accepted"
	KeyControlRejected  = "control.rejected"
	KeyCollisionHits    = "collision.hits"
	KeyObstaclesPassed  = "field.passed"
	KeyObstaclesSpawned = "field.spawned"
)

// Registry is the central metrics facade
// Producers cache pointers during init; hot loops write directly to atomics
type Registry struct {
	Bools   *MetricMap[atomic.Bool]
	Ints    *MetricMap[atomic.Int64]
	Floats  *MetricMap[AtomicFloat]
	Strings *MetricMap[AtomicString]
}

// NewRegistry creates an initialized Registry
func NewRegistry() *Registry {
	return &Registry{
		Bools:   NewMetricMap[atomic.Bool](),
		Ints:    NewMetricMap[atomic.Int64](),
		Floats:  NewMetricMap[AtomicFloat](),
		Strings: NewMetricMap[AtomicString](),
	}
}

// TotalCount returns total metrics across all types
func (r *Registry) TotalCount() int {
	return r.Bools.Count() + r.Ints.Count() + r.Floats.Count() + r.Strings.Count()
}

// Lines renders every metric as "key=value", ints first then floats, bools and strings
// Each group is in sorted key order
func (r *Registry) Lines() []string {
	lines := make([]string, 0, r.TotalCount())
	r.Ints.Range(func(key string, v *atomic.Int64) {
		lines = append(lines, fmt.Sprintf("%s=%d", key, v.Load()))
	})
	r.Floats.Range(func(key string, v *AtomicFloat) {
		lines = append(lines, fmt.Sprintf("%s=%.2f", key, v.Get()))
	})
	r.Bools.Range(func(key string, v *atomic.Bool) {
		lines = append(lines, fmt.Sprintf("%s=%t", key, v.Load()))
	})
	r.Strings.Range(func(key string, v *AtomicString) {
		lines = append(lines, fmt.Sprintf("%s=%s", key, v.Load()))
	})
	return lines
}
