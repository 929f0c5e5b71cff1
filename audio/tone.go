package audio

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"

	"github.com/lixenwraith/voice-dodger/parameter"
)

// ToneDevice synthesizes a voiced signal at an adjustable frequency
// Frames are paced at the real-time rate of the sample clock
// A frequency of 0 produces silence
type ToneDevice struct {
	sampleRate int
	frameSize  int
	amplitude  float64
	freqBits   atomic.Uint64
}

// NewToneDevice creates a synthetic device at hz
func NewToneDevice(sampleRate, frameSize int, hz float64) *ToneDevice {
	if sampleRate <= 0 {
		sampleRate = parameter.CaptureSampleRate
	}
	if frameSize <= 0 {
		frameSize = parameter.CaptureFrameSize
	}
	d := &ToneDevice{
		sampleRate: sampleRate,
		frameSize:  frameSize,
		amplitude:  parameter.ToneAmplitude,
	}
	d.SetFrequency(hz)
	return d
}

// Name implements Device
func (d *ToneDevice) Name() string {
	return "tone"
}

// Frequency returns the current tone frequency
func (d *ToneDevice) Frequency() float64 {
	return math.Float64frombits(d.freqBits.Load())
}

// SetFrequency changes the tone; open streams pick it up on their next frame
func (d *ToneDevice) SetFrequency(hz float64) {
	nyquist := float64(d.sampleRate) / 2
	if hz < 0 || math.IsNaN(hz) {
		hz = 0
	}
	if hz >= nyquist {
		hz = nyquist - 1
	}
	d.freqBits.Store(math.Float64bits(hz))
}

// Nudge shifts the tone by delta Hz and returns the new frequency
func (d *ToneDevice) Nudge(delta float64) float64 {
	d.SetFrequency(d.Frequency() + delta)
	return d.Frequency()
}

// Open implements Device
func (d *ToneDevice) Open(ctx context.Context) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, classifyOpenError(err)
	}

	frameDur := time.Duration(float64(d.frameSize) / float64(d.sampleRate) * float64(time.Second))
	ts := &toneStream{
		device: d,
		buf:    make([][2]float64, d.frameSize),
		ticker: time.NewTicker(frameDur),
		done:   make(chan struct{}),
		hz:     -1,
	}
	return ts, nil
}

type toneStream struct {
	device    *ToneDevice
	streamer  beep.Streamer
	hz        float64
	buf       [][2]float64
	ticker    *time.Ticker
	done      chan struct{}
	closeOnce sync.Once
}

func (s *toneStream) Read() ([]float32, error) {
	select {
	case <-s.done:
		return nil, ErrStreamClosed
	default:
	}

	select {
	case <-s.done:
		return nil, ErrStreamClosed
	case <-s.ticker.C:
	}

	if hz := s.device.Frequency(); hz != s.hz || s.streamer == nil {
		s.streamer = toneStreamer(beep.SampleRate(s.device.sampleRate), hz)
		s.hz = hz
	}

	n, ok := s.streamer.Stream(s.buf)
	if !ok {
		return nil, ErrStreamClosed
	}

	frame := make([]float32, n)
	for i := 0; i < n; i++ {
		frame[i] = float32(s.buf[i][0] * s.device.amplitude)
	}
	return frame, nil
}

func (s *toneStream) SampleRate() int {
	return s.device.sampleRate
}

func (s *toneStream) Close() error {
	s.closeOnce.Do(func() {
		s.ticker.Stop()
		close(s.done)
	})
	return nil
}

// toneStreamer returns an endless sine at hz, or silence for 0
func toneStreamer(sr beep.SampleRate, hz float64) beep.Streamer {
	if hz <= 0 {
		return beep.Silence(-1)
	}
	sine, err := generators.SineTone(sr, hz)
	if err != nil {
		return beep.Silence(-1)
	}
	return sine
}

// SynthesizeTone renders n mono samples of a sine at hz through the beep generator
// Used to feed the estimator without a device
func SynthesizeTone(sampleRate int, hz, amplitude float64, n int) []float32 {
	streamer := toneStreamer(beep.SampleRate(sampleRate), hz)
	buf := make([][2]float64, n)
	got, _ := streamer.Stream(buf)

	out := make([]float32, n)
	for i := 0; i < got; i++ {
		out[i] = float32(buf[i][0] * amplitude)
	}
	return out
}
