package audio

import (
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"github.com/lixenwraith/voice-dodger/config"
	"github.com/lixenwraith/voice-dodger/parameter"
)

// Cue identifies a feedback sound
type Cue int

const (
	CueHit Cue = iota
	CueScore
	CueGameOver
)

// Feedback plays short gameplay cues through the system speaker
// All methods are no-ops until Initialize succeeds
type Feedback struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	sampleRate  beep.SampleRate
	volume      float64
	enabled     bool
	initialized bool
	log         *slog.Logger
}

// NewFeedback creates a feedback player from the sound configuration
func NewFeedback(cfg config.Sound, log *slog.Logger) *Feedback {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Feedback{
		mixer:      &beep.Mixer{},
		sampleRate: beep.SampleRate(parameter.FeedbackSampleRate),
		volume:     math.Max(0, math.Min(1, cfg.Volume)),
		enabled:    cfg.Enabled,
		log:        log.With("component", "feedback"),
	}
}

// Initialize opens the speaker; a failure leaves feedback silent
func (f *Feedback) Initialize() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.initialized || !f.enabled {
		return nil
	}

	err := speaker.Init(f.sampleRate, f.sampleRate.N(parameter.FeedbackBufferDuration))
	if err != nil {
		f.log.Warn("speaker unavailable, feedback disabled", "error", err)
		return err
	}

	speaker.Play(f.mixer)
	f.initialized = true
	return nil
}

// Close clears pending cues and releases the speaker
func (f *Feedback) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.initialized {
		return
	}

	speaker.Lock()
	f.mixer.Clear()
	speaker.Unlock()

	speaker.Close()
	f.initialized = false
}

// Play queues cue on the mixer, returning false when feedback is silent
func (f *Feedback) Play(cue Cue) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.initialized || f.volume == 0 {
		return false
	}

	s := f.build(cue)
	if s == nil {
		return false
	}

	speaker.Lock()
	f.mixer.Add(s)
	speaker.Unlock()
	return true
}

// PlayHit plays the collision buzz
func (f *Feedback) PlayHit() { f.Play(CueHit) }

// PlayScore plays the passed-obstacle blip
func (f *Feedback) PlayScore() { f.Play(CueScore) }

// PlayGameOver plays the falling game-over sweep
func (f *Feedback) PlayGameOver() { f.Play(CueGameOver) }

// build renders the finite streamer for cue at the configured volume
func (f *Feedback) build(cue Cue) beep.Streamer {
	var s beep.Streamer

	switch cue {
	case CueHit:
		s = beep.Take(f.sampleRate.N(parameter.HitSoundDuration), NewBuzzGenerator(f.sampleRate, parameter.HitSoundFrequency))
	case CueScore:
		sine, err := generators.SineTone(f.sampleRate, parameter.ScoreSoundFrequency)
		if err != nil {
			return nil
		}
		s = beep.Take(f.sampleRate.N(parameter.ScoreSoundDuration), &fadeOut{Streamer: sine, total: f.sampleRate.N(parameter.ScoreSoundDuration)})
	case CueGameOver:
		s = beep.Take(f.sampleRate.N(parameter.GameOverSoundDuration), NewSweepGenerator(f.sampleRate, parameter.GameOverSoundFreq*4, parameter.GameOverSoundFreq, parameter.GameOverSoundDuration))
	default:
		return nil
	}

	return &effects.Gain{Streamer: s, Gain: f.volume - 1}
}

// BuzzGenerator generates a low-pitch buzz sound
type BuzzGenerator struct {
	sr   beep.SampleRate
	freq float64
	pos  int
}

// NewBuzzGenerator creates a buzz sound generator
func NewBuzzGenerator(sr beep.SampleRate, freq float64) *BuzzGenerator {
	return &BuzzGenerator{
		sr:   sr,
		freq: freq,
	}
}

func (g *BuzzGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)

		// Fundamental plus two harmonics for a harsh edge
		sample := 0.0
		sample += 0.3 * math.Sin(2*math.Pi*g.freq*t)
		sample += 0.15 * math.Sin(2*math.Pi*g.freq*2*t)
		sample += 0.075 * math.Sin(2*math.Pi*g.freq*3*t)

		// 20ms attack
		envelope := math.Min(t/0.02, 1.0)
		sample *= envelope * 0.6

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *BuzzGenerator) Err() error {
	return nil
}

// SweepGenerator glides exponentially from one frequency to another over a duration
type SweepGenerator struct {
	sr       beep.SampleRate
	from, to float64
	samples  int
	pos      int
	phase    float64
}

// NewSweepGenerator creates a sweep from -> to lasting d
func NewSweepGenerator(sr beep.SampleRate, from, to float64, d time.Duration) *SweepGenerator {
	return &SweepGenerator{
		sr:      sr,
		from:    from,
		to:      to,
		samples: max(sr.N(d), 1),
	}
}

func (g *SweepGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		progress := math.Min(float64(g.pos)/float64(g.samples), 1)
		freq := g.from * math.Pow(g.to/g.from, progress)

		g.phase += 2 * math.Pi * freq / float64(g.sr)
		if g.phase > 2*math.Pi {
			g.phase -= 2 * math.Pi
		}

		// Linear release
		sample := 0.4 * (1 - progress) * math.Sin(g.phase)

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *SweepGenerator) Err() error {
	return nil
}

// fadeOut applies a linear release over total samples
type fadeOut struct {
	beep.Streamer
	total int
	pos   int
}

func (f *fadeOut) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = f.Streamer.Stream(samples)
	for i := 0; i < n; i++ {
		gain := 1 - math.Min(float64(f.pos)/float64(f.total), 1)
		samples[i][0] *= gain
		samples[i][1] *= gain
		f.pos++
	}
	return n, ok
}
