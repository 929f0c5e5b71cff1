package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/voice-dodger/audio"
	"github.com/lixenwraith/voice-dodger/config"
	"github.com/lixenwraith/voice-dodger/core"
	"github.com/lixenwraith/voice-dodger/engine"
	"github.com/lixenwraith/voice-dodger/render"
	"github.com/lixenwraith/voice-dodger/status"
)

var (
	configFlag = flag.String("config", "", "Path to a YAML config file")
	deviceFlag = flag.String("device", "", "Capture device: mic, pipe, tone (overrides config)")
	debugFlag  = flag.Bool("debug", false, "Write logs to logs/ and show metrics on the status line")
	colorFlag  = flag.String("color", "true", "Color mode: true, basic, mono")
)

func main() {
	// Panic Recovery: restore the terminal before printing the trace
	defer func() {
		if r := recover(); r != nil {
			core.HandleCrash(r)
		}
	}()

	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "voice-dodger: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(*configFlag)
	if err != nil {
		return err
	}
	if *deviceFlag != "" {
		cfg.Capture.Device = *deviceFlag
		if err := config.Validate(cfg); err != nil {
			return err
		}
	}

	colorMode, err := render.ParseColorMode(*colorFlag)
	if err != nil {
		return err
	}

	logger, logFile := setupLogging(*debugFlag)
	if logFile != nil {
		defer logFile.Close()
	}

	reg := status.NewRegistry()
	device, tone := newDevice(cfg.Capture, logger)
	capture := audio.NewSignal(device, cfg.Capture, logger, reg)
	logger.Info("capture device selected", "device", device.Name())

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}
	defer screen.Fini()
	core.SetCrashReset(screen.Fini)

	view := render.NewScreen(screen, colorMode, reg, *debugFlag)
	game := engine.NewGame(cfg, capture, view, engine.Options{Log: logger, Registry: reg})

	// Feedback is optional; a missing speaker leaves the game silent
	feedback := audio.NewFeedback(cfg.Sound, logger)
	_ = feedback.Initialize()
	defer feedback.Close()
	game.Subscribe(engine.CueListener(feedback))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	input := render.NewInput(game.Submit, tone, view.Redraw)
	core.Go(func() {
		input.Run(ctx, screen)
		stop()
	})

	game.Run(ctx)
	return nil
}

// newDevice builds the configured capture device
// The tone device is also returned as a keyboard nudger; other devices have none
func newDevice(cfg config.Capture, logger *slog.Logger) (audio.Device, render.Nudger) {
	switch cfg.Device {
	case config.DevicePipe:
		return audio.NewPipeDevice(cfg.Backend, cfg.SampleRate, cfg.FrameSize), nil
	case config.DeviceTone:
		tone := audio.NewToneDevice(cfg.SampleRate, cfg.FrameSize, cfg.ToneHz)
		return tone, tone
	default:
		return audio.NewMicDevice(cfg.SampleRate, logger), nil
	}
}
