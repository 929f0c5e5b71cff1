// Command pitch-probe prints live pitch observations from a capture device, or benchmarks the estimator
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lixenwraith/voice-dodger/audio"
	"github.com/lixenwraith/voice-dodger/config"
	"github.com/lixenwraith/voice-dodger/control"
	"github.com/lixenwraith/voice-dodger/status"
)

var (
	configFlag     = flag.String("config", "", "Path to a YAML config file")
	deviceFlag     = flag.String("device", "", "Capture device: mic, pipe, tone (overrides config)")
	durationFlag   = flag.Duration("duration", 0, "Stop after this long (0 = until interrupted)")
	benchFlag      = flag.Bool("bench", false, "Benchmark the estimator on synthesized tones instead of probing a device")
	iterationsFlag = flag.Int("iterations", 200, "Windows per tone in benchmark mode")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pitch-probe: %v\n", err)
		os.Exit(1)
	}
	if *deviceFlag != "" {
		cfg.Capture.Device = *deviceFlag
	}

	if *benchFlag {
		bench(cfg.Capture, *iterationsFlag)
		return
	}

	if err := probe(cfg, *durationFlag); err != nil {
		fmt.Fprintf(os.Stderr, "pitch-probe: %v\n", err)
		os.Exit(1)
	}
}

// probe streams observations with the mapper's verdict until interrupted
func probe(cfg *config.Config, d time.Duration) error {
	var device audio.Device
	switch cfg.Capture.Device {
	case config.DevicePipe:
		device = audio.NewPipeDevice(cfg.Capture.Backend, cfg.Capture.SampleRate, cfg.Capture.FrameSize)
	case config.DeviceTone:
		device = audio.NewToneDevice(cfg.Capture.SampleRate, cfg.Capture.FrameSize, cfg.Capture.ToneHz)
	default:
		device = audio.NewMicDevice(cfg.Capture.SampleRate, nil)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	reg := status.NewRegistry()
	sig := audio.NewSignal(device, cfg.Capture, nil, reg)
	mapper := control.NewMapper(cfg.Pitch)

	fmt.Printf("Probing %s at %d Hz, window %d (Ctrl+C to stop)\n", device.Name(), cfg.Capture.SampleRate, cfg.Capture.WindowSize)
	fmt.Printf("%10s %9s %8s %9s  %s\n", "Pitch", "Clarity", "Norm", "Velocity", "Verdict")

	err := sig.Start(ctx, func(obs audio.Observation) {
		v, reason := mapper.Map(obs)
		if reason != control.ReasonAccepted {
			fmt.Printf("%7.1f Hz %9.3f %8s %9s  %s\n", obs.PitchHz, obs.Clarity, "-", "-", reason)
			return
		}
		fmt.Printf("%7.1f Hz %9.3f %8.3f %+9.2f  %s\n", obs.PitchHz, obs.Clarity, v.NormalizedPitch, v.VerticalVelocity, reason)
	})
	if err != nil {
		return err
	}

	<-ctx.Done()
	sig.Stop()

	fmt.Println("──────────────────────────────────────────────")
	for _, line := range reg.Lines() {
		fmt.Println(line)
	}
	return nil
}

// bench runs the estimator over synthesized tones and reports accuracy and cost per window
func bench(cfg config.Capture, iterations int) {
	windowDur := time.Duration(float64(cfg.WindowSize) / float64(cfg.SampleRate) * float64(time.Second))

	fmt.Printf("Estimator Benchmark (%d windows of %d samples at %d Hz, budget %s)\n",
		iterations, cfg.WindowSize, cfg.SampleRate, windowDur)
	fmt.Println("══════════════════════════════════════════════════════════════")
	fmt.Printf("%-10s %12s %10s %10s %14s\n", "Tone", "Estimate", "Error", "Clarity", "Per window")
	fmt.Println("──────────────────────────────────────────────────────────────")

	for _, hz := range []float64{82.4, 110, 146.8, 196, 261.6, 329.6, 440} {
		samples := audio.SynthesizeTone(cfg.SampleRate, hz, 0.5, cfg.WindowSize)

		var pitch, clarity float64
		start := time.Now()
		for i := 0; i < iterations; i++ {
			pitch, clarity = audio.EstimatePitch(samples, cfg.SampleRate)
		}
		per := time.Since(start) / time.Duration(max(iterations, 1))

		errPct := math.Abs(pitch-hz) / hz * 100
		fmt.Printf("%7.1f Hz %9.2f Hz %9.2f%% %10.3f %14s\n", hz, pitch, errPct, clarity, per)
	}

	fmt.Println("══════════════════════════════════════════════════════════════")
}
