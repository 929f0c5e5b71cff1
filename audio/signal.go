package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/voice-dodger/config"
	"github.com/lixenwraith/voice-dodger/core"
	"github.com/lixenwraith/voice-dodger/parameter"
	"github.com/lixenwraith/voice-dodger/status"
)

// Signal turns a capture device into a stream of pitch observations
// A reader goroutine assembles raw frames into windows; an analyser goroutine estimates
// each window and invokes the callback. The two are joined by a one-slot handoff so a
// busy analyser drops windows instead of queueing them
type Signal struct {
	device     Device
	estimator  Estimator
	windowSize int
	log        *slog.Logger

	// Cached metric pointers
	statAnalyzed *atomic.Int64
	statDropped  *atomic.Int64
	statSlow     *atomic.Int64
	statInvalid  *atomic.Int64
	statRunning  *atomic.Bool

	mu       sync.Mutex // serializes Start and Stop
	running  atomic.Bool
	stream   Stream
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewSignal creates a signal over device using the capture configuration
func NewSignal(device Device, cfg config.Capture, log *slog.Logger, reg *status.Registry) *Signal {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if reg == nil {
		reg = status.NewRegistry()
	}

	windowSize := cfg.WindowSize
	if windowSize <= 0 {
		windowSize = parameter.CaptureWindowSize
	}

	return &Signal{
		device:       device,
		estimator:    EstimatePitch,
		windowSize:   windowSize,
		log:          log.With("component", "audio", "device", device.Name()),
		statAnalyzed: reg.Ints.Get(status.KeyWindowsAnalyzed),
		statDropped:  reg.Ints.Get(status.KeyWindowsDropped),
		statSlow:     reg.Ints.Get(status.KeyWindowsSlow),
		statInvalid:  reg.Ints.Get(status.KeyFramesInvalid),
		statRunning:  reg.Bools.Get(status.KeyCaptureRunning),
	}
}

// SetEstimator replaces the pitch estimator; takes effect on the next Start
func (s *Signal) SetEstimator(e Estimator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e != nil {
		s.estimator = e
	}
}

// Device returns the capture device
func (s *Signal) Device() Device {
	return s.device
}

// Running reports whether capture is active
func (s *Signal) Running() bool {
	return s.running.Load()
}

// Start acquires the device and begins delivering observations to cb
// Returns ErrAlreadyRunning if capture is active, or the classified device error
func (s *Signal) Start(ctx context.Context, cb func(Observation)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running.Load() {
		return ErrAlreadyRunning
	}

	openCtx, cancel := context.WithTimeout(ctx, parameter.CaptureOpenTimeout)
	stream, err := s.device.Open(openCtx)
	cancel()
	if err != nil {
		s.log.Warn("capture open failed", "error", err)
		return fmt.Errorf("open %s: %w", s.device.Name(), classifyOpenError(err))
	}

	sampleRate := stream.SampleRate()
	if sampleRate <= 0 {
		stream.Close()
		return fmt.Errorf("open %s: %w: sample rate %d", s.device.Name(), ErrDeviceUnavailable, sampleRate)
	}
	windows := make(chan []float32, 1)
	stopChan := make(chan struct{})

	s.stream = stream
	s.stopChan = stopChan
	s.running.Store(true)
	s.statRunning.Store(true)

	s.wg.Add(2)
	core.Go(func() {
		defer s.wg.Done()
		s.readLoop(stream, windows, stopChan)
	})
	core.Go(func() {
		defer s.wg.Done()
		s.analyseLoop(s.estimator, sampleRate, windows, stopChan, cb)
	})

	s.log.Info("capture started", "sample_rate", sampleRate, "window", s.windowSize)
	return nil
}

// Stop halts callbacks and releases the device
// No callback runs after Stop returns; safe to call repeatedly or before Start
func (s *Signal) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running.CompareAndSwap(true, false) {
		return
	}

	close(s.stopChan)
	if err := s.stream.Close(); err != nil {
		s.log.Debug("capture close", "error", err)
	}
	s.wg.Wait()

	s.stream = nil
	s.statRunning.Store(false)
	s.log.Info("capture stopped")
}

// readLoop assembles frames into windows and offers each to the analyser
func (s *Signal) readLoop(stream Stream, windows chan<- []float32, stopChan <-chan struct{}) {
	buf := make([]float32, 0, s.windowSize)

	for {
		frame, err := stream.Read()
		if err != nil {
			select {
			case <-stopChan:
				return
			default:
			}
			if errors.Is(err, ErrInvalidFrame) {
				s.statInvalid.Add(1)
				s.log.Debug("invalid frame skipped", "error", err)
				continue
			}
			if !errors.Is(err, ErrStreamClosed) {
				s.log.Error("capture read failed", "error", err)
			}
			s.statRunning.Store(false)
			return
		}

		if !validFrame(frame) {
			s.statInvalid.Add(1)
			s.log.Debug("invalid frame skipped", "len", len(frame))
			continue
		}

		for len(frame) > 0 {
			n := min(s.windowSize-len(buf), len(frame))
			buf = append(buf, frame[:n]...)
			frame = frame[n:]

			if len(buf) < s.windowSize {
				continue
			}

			select {
			case windows <- buf:
				buf = make([]float32, 0, s.windowSize)
			default:
				// Analyser busy with the previous window
				s.statDropped.Add(1)
				buf = buf[:0]
			}
		}
	}
}

// analyseLoop estimates each window and reports it unless the estimate overran the window duration
func (s *Signal) analyseLoop(estimate Estimator, sampleRate int, windows <-chan []float32, stopChan <-chan struct{}, cb func(Observation)) {
	budget := time.Duration(float64(s.windowSize) / float64(sampleRate) * float64(time.Second))

	for {
		select {
		case <-stopChan:
			return
		case window := <-windows:
			began := time.Now()
			pitch, clarity := estimate(window, sampleRate)
			if elapsed := time.Since(began); elapsed > budget {
				s.statSlow.Add(1)
				s.log.Debug("estimate overran window", "elapsed", elapsed, "budget", budget)
				continue
			}
			s.statAnalyzed.Add(1)

			select {
			case <-stopChan:
				return
			default:
			}
			cb(Observation{PitchHz: pitch, Clarity: clarity, At: time.Now()})
		}
	}
}
