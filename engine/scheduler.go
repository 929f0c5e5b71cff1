package engine

import (
	"sync"
	"sync/atomic"
	"time"
)

// Token authorizes frames for one run of the loop
// Cancel is permanent; frames carrying a cancelled token are dropped by the loop
type Token struct {
	id    uint64
	valid atomic.Bool
}

// Cancel invalidates the token; safe to call repeatedly
func (t *Token) Cancel() {
	if t != nil {
		t.valid.Store(false)
	}
}

// Valid reports whether frames for this token may still run
func (t *Token) Valid() bool {
	return t != nil && t.valid.Load()
}

// ID identifies the run the token belongs to
func (t *Token) ID() uint64 {
	if t == nil {
		return 0
	}
	return t.id
}

// Pulse is one scheduled frame
type Pulse struct {
	Token *Token
	At    time.Time
}

// Scheduler arms one timer per requested frame
// The next frame is requested only after the current tick finished, so a slow tick delays the schedule
// instead of queueing frames
type Scheduler struct {
	interval time.Duration
	clock    Clock

	mu      sync.Mutex
	current *Token
	timer   *time.Timer
	pending bool
	nextID  uint64

	frames chan Pulse
}

// NewScheduler creates a scheduler delivering frames every interval
func NewScheduler(interval time.Duration, clock Clock) *Scheduler {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Scheduler{
		interval: interval,
		clock:    clock,
		frames:   make(chan Pulse, 1),
	}
}

// Frames delivers scheduled pulses
func (s *Scheduler) Frames() <-chan Pulse {
	return s.frames
}

// Start cancels any previous run and issues a fresh token
func (s *Scheduler) Start() *Token {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked()

	// A pulse of the previous run left in the slot would crowd out the first frame of this one
	select {
	case <-s.frames:
	default:
	}

	s.nextID++
	tok := &Token{id: s.nextID}
	tok.valid.Store(true)
	s.current = tok
	return tok
}

// Request arms the timer for the next frame of tok
// Returns false when tok is no longer valid or a frame is already pending
func (s *Scheduler) Request(tok *Token) bool {
	if !tok.Valid() {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if tok != s.current || s.pending {
		return false
	}
	s.pending = true

	s.timer = time.AfterFunc(s.interval, func() {
		s.mu.Lock()
		if s.current == tok {
			s.pending = false
		}
		s.mu.Unlock()

		select {
		case s.frames <- Pulse{Token: tok, At: s.clock.Now()}:
		default:
			// Slot still holds an undrained pulse; the loop re-requests for the current token once it drains it
		}
	})
	return true
}

// Stop cancels the current token and disarms the timer; idempotent
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
}

func (s *Scheduler) cancelLocked() {
	if s.current != nil {
		s.current.Cancel()
		s.current = nil
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pending = false
}
