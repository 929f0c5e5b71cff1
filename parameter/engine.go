package parameter

import "time"

// Game Loop & Frame Timing
const (
	// FrameUpdateInterval is the presentation frame interval (~60 FPS)
	FrameUpdateInterval = 16 * time.Millisecond

	// MaxFrameDelta caps the variable step after a stall (window drag, suspend)
	MaxFrameDelta = 100 * time.Millisecond

	// RequestQueueSize is the buffered capacity for UI start/stop requests
	RequestQueueSize = 16

	// TraceLength is the number of accepted observations kept for the pitch chart
	TraceLength = 64

	// TraceStep is the leftward scroll of the pitch chart per frame, in chart columns
	TraceStep = 1.0
)
