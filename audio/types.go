package audio

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// Observation is one pitch estimate of one analysis window
type Observation struct {
	PitchHz float64 // 0 when no periodicity was found
	Clarity float64 // 0..1 confidence of the estimate
	At      time.Time
}

// Stream is an open capture stream delivering raw mono frames
type Stream interface {
	// Read blocks until the next frame is available
	// Returns ErrStreamClosed once Close was called
	Read() ([]float32, error)
	SampleRate() int
	Close() error
}

// Device acquires a capture stream
// The context bounds acquisition only; the stream lives until Close
type Device interface {
	Name() string
	Open(ctx context.Context) (Stream, error)
}

// Estimator finds the fundamental of a window of samples
type Estimator func(samples []float32, sampleRate int) (pitchHz, clarity float64)

// BackendType identifies the recorder used by PipeDevice
type BackendType int

const (
	BackendPulse BackendType = iota
	BackendPipeWire
	BackendALSA
	BackendSoX
)

// BackendConfig describes a CLI recorder writing raw s16le mono to stdout
type BackendConfig struct {
	Type BackendType
	Name string
	Path string
	Args []string
}

// Sentinel errors
var (
	ErrPermissionDenied  = errors.New("capture permission denied")
	ErrDeviceUnavailable = errors.New("capture device unavailable")
	ErrInvalidFrame      = errors.New("invalid capture frame")
	ErrStreamClosed      = errors.New("capture stream closed")
	ErrAlreadyRunning    = errors.New("capture already running")
	ErrNoCaptureBackend  = errors.New("no compatible capture backend found")
)

// permissionHints are lowercase fragments that backends use for access refusals
var permissionHints = []string{
	"permission",
	"denied",
	"not authorized",
	"not permitted",
}

// classifyOpenError wraps a backend failure in ErrPermissionDenied or ErrDeviceUnavailable
func classifyOpenError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrPermissionDenied) || errors.Is(err, ErrDeviceUnavailable) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)
	}

	msg := strings.ToLower(err.Error())
	for _, hint := range permissionHints {
		if strings.Contains(msg, hint) {
			return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
		}
	}
	return fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)
}

// validFrame rejects empty frames and frames carrying NaN or Inf samples
func validFrame(frame []float32) bool {
	if len(frame) == 0 {
		return false
	}
	for _, s := range frame {
		if f := float64(s); math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
