package parameter

import "time"

// Capture Settings
const (
	// CaptureSampleRate is requested from devices that let us choose
	CaptureSampleRate = 44100

	// CaptureWindowSize is the analysis window in samples (AnalyserNode fftSize equivalent)
	CaptureWindowSize = 2048

	// CaptureFrameSize is the read size for pipe-based recorders, in samples
	CaptureFrameSize = 512

	// CaptureOpenTimeout bounds device acquisition
	CaptureOpenTimeout = 3 * time.Second

	// CaptureQueueDepth is the number of raw device frames buffered between callback and reader
	CaptureQueueDepth = 8
)

// Test Tone Device
const (
	// ToneFrequency is the default synthetic voice pitch (mid band, neutral)
	ToneFrequency = 225.0

	// ToneAmplitude keeps the synthetic signal below clipping
	ToneAmplitude = 0.5

	// ToneNudgeHz is the frequency step of the keyboard-driven tone
	ToneNudgeHz = 5.0
)

// Feedback Sounds
const (
	FeedbackSampleRate     = 44100
	FeedbackBufferDuration = 100 * time.Millisecond

	HitSoundDuration      = 150 * time.Millisecond
	HitSoundFrequency     = 120.0
	ScoreSoundDuration    = 60 * time.Millisecond
	ScoreSoundFrequency   = 1320.0
	GameOverSoundDuration = 600 * time.Millisecond
	GameOverSoundFreq     = 90.0
)
