package audio

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/voice-dodger/core"
	"github.com/lixenwraith/voice-dodger/parameter"
)

// PipeDevice captures through an external recorder process writing raw s16le mono to stdout
type PipeDevice struct {
	backend    string
	sampleRate int
	frameSize  int
}

// NewPipeDevice creates a recorder-backed device; backend may be empty for auto-detection
func NewPipeDevice(backend string, sampleRate, frameSize int) *PipeDevice {
	if sampleRate <= 0 {
		sampleRate = parameter.CaptureSampleRate
	}
	if frameSize <= 0 {
		frameSize = parameter.CaptureFrameSize
	}
	return &PipeDevice{backend: backend, sampleRate: sampleRate, frameSize: frameSize}
}

// Name implements Device
func (d *PipeDevice) Name() string {
	return "pipe"
}

// Open implements Device
func (d *PipeDevice) Open(ctx context.Context) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, classifyOpenError(err)
	}

	backend, err := DetectRecorder(d.backend, d.sampleRate)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)
	}

	stream, err := openRecorder(ctx, backend, d.sampleRate, d.frameSize)
	if err != nil {
		return nil, err
	}
	return stream, nil
}

// openRecorder launches the recorder and holds until its first frame arrives
// A recorder that exits or stays silent before ctx ends fails the open with the classified reason
func openRecorder(ctx context.Context, backend *BackendConfig, sampleRate, frameSize int) (*pipeStream, error) {
	stream, err := startRecorder(backend, sampleRate, frameSize)
	if err != nil {
		return nil, err
	}
	if err := stream.prime(ctx); err != nil {
		stream.Close()
		return nil, err
	}
	return stream, nil
}

// startRecorder launches the recorder and wraps its stdout
func startRecorder(backend *BackendConfig, sampleRate, frameSize int) (*pipeStream, error) {
	cmd := exec.Command(backend.Path, backend.Args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)
	}

	stderr := &tailBuffer{}
	cmd.Stderr = stderr
	// Children of the recorder may keep stderr open after it is killed
	cmd.WaitDelay = recorderWaitDelay

	if err := cmd.Start(); err != nil {
		return nil, classifyOpenError(fmt.Errorf("start %s: %w", backend.Name, err))
	}

	return &pipeStream{
		backend:    backend,
		cmd:        cmd,
		stdout:     stdout,
		reader:     bufio.NewReaderSize(stdout, frameSize*2*parameter.CaptureQueueDepth),
		stderr:     stderr,
		raw:        make([]byte, frameSize*2),
		sampleRate: sampleRate,
	}, nil
}

type pipeStream struct {
	backend *BackendConfig
	cmd     *exec.Cmd
	stdout  io.ReadCloser
	reader  *bufio.Reader
	stderr  *tailBuffer
	raw     []byte
	pending []float32 // first frame read during open

	sampleRate int
	closed     atomic.Bool
	closeOnce  sync.Once
	waitOnce   sync.Once
	waitErr    error
}

// prime reads the first frame into pending
func (s *pipeStream) prime(ctx context.Context) error {
	done := make(chan error, 1)
	core.Go(func() {
		frame, err := s.Read()
		if err == nil {
			s.pending = frame
		}
		done <- err
	})

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		s.Close()
		<-done
		return classifyOpenError(fmt.Errorf("%s: no audio before open deadline: %w", s.backend.Name, ctx.Err()))
	}
}

func (s *pipeStream) Read() ([]float32, error) {
	if s.closed.Load() {
		return nil, ErrStreamClosed
	}
	if frame := s.pending; frame != nil {
		s.pending = nil
		return frame, nil
	}

	if _, err := io.ReadFull(s.reader, s.raw); err != nil {
		if s.closed.Load() {
			return nil, ErrStreamClosed
		}
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			// Recorder exited on its own; stderr carries the reason once the process is reaped
			s.wait()
			reason := strings.TrimSpace(s.stderr.String())
			if reason == "" {
				reason = "recorder exited"
			}
			return nil, classifyOpenError(fmt.Errorf("%s: %s", s.backend.Name, reason))
		}
		return nil, fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)
	}

	return decodeS16LE(s.raw), nil
}

func (s *pipeStream) SampleRate() int {
	return s.sampleRate
}

func (s *pipeStream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		if s.cmd.Process != nil {
			_ = s.cmd.Process.Kill()
		}
		// Closing stdout fails a pending Read before the process is reaped
		_ = s.stdout.Close()
		if werr := s.wait(); werr != nil {
			var exitErr *exec.ExitError
			if !errors.As(werr, &exitErr) {
				err = werr
			}
		}
	})
	return err
}

// wait reaps the recorder exactly once
func (s *pipeStream) wait() error {
	s.waitOnce.Do(func() {
		s.waitErr = s.cmd.Wait()
	})
	return s.waitErr
}

// decodeS16LE converts signed 16-bit little-endian samples to [-1,1)
func decodeS16LE(raw []byte) []float32 {
	out := make([]float32, len(raw)/2)
	for i := range out {
		out[i] = float32(int16(binary.LittleEndian.Uint16(raw[i*2:]))) / 32768
	}
	return out
}

// tailBuffer keeps the last bytes written by the recorder's stderr
type tailBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

const (
	tailLimit         = 512
	recorderWaitDelay = 500 * time.Millisecond
)

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.buf.Write(p)
	if over := b.buf.Len() - tailLimit; over > 0 {
		b.buf.Next(over)
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
