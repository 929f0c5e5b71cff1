package audio

import (
	"context"
	"errors"
	"math"
	"testing"
)

// TestToneDeviceFrequency verifies clamping and nudging
func TestToneDeviceFrequency(t *testing.T) {
	d := NewToneDevice(8000, 64, 225)

	if d.Frequency() != 225 {
		t.Errorf("Expected 225, got %f", d.Frequency())
	}
	if got := d.Nudge(5); got != 230 {
		t.Errorf("Expected 230 after nudge, got %f", got)
	}

	d.SetFrequency(-10)
	if d.Frequency() != 0 {
		t.Errorf("Expected negative clamped to 0, got %f", d.Frequency())
	}

	d.SetFrequency(10000)
	if d.Frequency() >= 4000 {
		t.Errorf("Expected clamp below Nyquist, got %f", d.Frequency())
	}
}

// TestToneStreamFrames verifies paced frames follow frequency changes
func TestToneStreamFrames(t *testing.T) {
	d := NewToneDevice(8000, 256, 200)

	stream, err := d.Open(context.Background())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	frame, err := stream.Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(frame) != 256 {
		t.Fatalf("Expected 256 samples, got %d", len(frame))
	}

	var peak float64
	for _, s := range frame {
		peak = math.Max(peak, math.Abs(float64(s)))
	}
	if peak == 0 || peak > 0.5+1e-6 {
		t.Errorf("Expected peak in (0,0.5], got %f", peak)
	}

	d.SetFrequency(0)
	frame, err = stream.Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	for i, s := range frame {
		if s != 0 {
			t.Fatalf("Expected silence at 0 Hz, sample %d = %f", i, s)
		}
	}

	stream.Close()
	if _, err := stream.Read(); !errors.Is(err, ErrStreamClosed) {
		t.Errorf("Expected ErrStreamClosed, got %v", err)
	}
}

// TestToneDeviceCancelledOpen verifies a cancelled context refuses the open
func TestToneDeviceCancelledOpen(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewToneDevice(8000, 64, 200).Open(ctx)
	if !errors.Is(err, ErrDeviceUnavailable) {
		t.Errorf("Expected ErrDeviceUnavailable, got %v", err)
	}
}
