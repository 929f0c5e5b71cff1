package audio

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"

	"github.com/lixenwraith/voice-dodger/parameter"
)

// MicDevice captures the default input device through miniaudio
type MicDevice struct {
	sampleRate int
	log        *slog.Logger
}

// NewMicDevice creates a microphone device requesting sampleRate
func NewMicDevice(sampleRate int, log *slog.Logger) *MicDevice {
	if sampleRate <= 0 {
		sampleRate = parameter.CaptureSampleRate
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &MicDevice{sampleRate: sampleRate, log: log}
}

// Name implements Device
func (d *MicDevice) Name() string {
	return "mic"
}

// Open implements Device
func (d *MicDevice) Open(ctx context.Context) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, classifyOpenError(err)
	}

	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		d.log.Debug("miniaudio", "message", strings.TrimSpace(message))
	})
	if err != nil {
		return nil, classifyOpenError(fmt.Errorf("init context: %w", err))
	}

	cfg := malgo.DefaultDeviceConfig(malgo.Capture)
	cfg.Capture.Format = malgo.FormatF32
	cfg.Capture.Channels = 1
	cfg.SampleRate = uint32(d.sampleRate)
	cfg.Alsa.NoMMap = 1

	ms := &micStream{
		frames: make(chan []float32, parameter.CaptureQueueDepth),
		done:   make(chan struct{}),
		mctx:   mctx,
	}

	device, err := malgo.InitDevice(mctx.Context, cfg, malgo.DeviceCallbacks{
		Data: ms.onData,
	})
	if err != nil {
		_ = mctx.Uninit()
		mctx.Free()
		return nil, classifyOpenError(fmt.Errorf("init device: %w", err))
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		_ = mctx.Uninit()
		mctx.Free()
		return nil, classifyOpenError(fmt.Errorf("start device: %w", err))
	}

	ms.device = device
	ms.sampleRate = int(device.SampleRate())
	if ms.sampleRate <= 0 {
		ms.sampleRate = d.sampleRate
	}
	return ms, nil
}

// micStream bridges the miniaudio callback thread to blocking reads
type micStream struct {
	frames     chan []float32
	done       chan struct{}
	closeOnce  sync.Once
	overflow   atomic.Int64
	sampleRate int

	device *malgo.Device
	mctx   *malgo.AllocatedContext
}

// onData runs on the miniaudio thread and must not block
func (s *micStream) onData(_, input []byte, _ uint32) {
	if len(input) < 4 {
		return
	}

	frame := make([]float32, len(input)/4)
	for i := range frame {
		frame[i] = math.Float32frombits(binary.LittleEndian.Uint32(input[i*4:]))
	}

	select {
	case s.frames <- frame:
	default:
		s.overflow.Add(1)
	}
}

func (s *micStream) Read() ([]float32, error) {
	select {
	case <-s.done:
		return nil, ErrStreamClosed
	default:
	}

	select {
	case <-s.done:
		return nil, ErrStreamClosed
	case frame := <-s.frames:
		return frame, nil
	}
}

func (s *micStream) SampleRate() int {
	return s.sampleRate
}

func (s *micStream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.device.Stop()
		s.device.Uninit()
		if uerr := s.mctx.Uninit(); err == nil {
			err = uerr
		}
		s.mctx.Free()
	})
	return err
}
