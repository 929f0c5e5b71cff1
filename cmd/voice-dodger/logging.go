package main

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

const (
	logDir      = "logs"
	logFileName = "voice-dodger.log"
	maxLogSize  = 10 * 1024 * 1024
)

// setupLogging returns the application logger and the open log file, if any
// Without debug every log is discarded because the terminal belongs to the renderer
func setupLogging(debug bool) (*slog.Logger, *os.File) {
	discard := slog.New(slog.DiscardHandler)
	if !debug {
		log.SetOutput(io.Discard)
		return discard, nil
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.SetOutput(io.Discard)
		return discard, nil
	}

	logPath := filepath.Join(logDir, logFileName)

	// Rotate an oversized log to a timestamped name
	if info, err := os.Stat(logPath); err == nil && info.Size() > maxLogSize {
		rotated := filepath.Join(logDir, fmt.Sprintf("voice-dodger-%s.log", time.Now().Format("20060102-150405")))
		_ = os.Rename(logPath, rotated)
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		log.SetOutput(io.Discard)
		return discard, nil
	}

	log.SetOutput(f)
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	logger.Info("logging started", "pid", os.Getpid())
	return logger, f
}
