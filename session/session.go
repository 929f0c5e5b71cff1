// Package session holds score, health and the Idle/Running/Stopped lifecycle
package session

import (
	"sync"
)

// State is the session lifecycle phase
type State int

const (
	Idle    State = iota // no capture, no simulation
	Running              // capture and simulation active
	Stopped              // frozen with the final score; only Reset leaves it
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Running:
		return "Running"
	case Stopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// Listener receives session changes synchronously on the mutating goroutine
type Listener interface {
	ScoreChanged(score int)
	HealthChanged(health, maxHealth int)
	Hit()
	StateChanged(from, to State)
}

// Snapshot is a consistent copy of the session
type Snapshot struct {
	State     State
	Score     int
	Health    int
	MaxHealth int
}

// Session is the only owner of score and health
// Mutators are meant for the frame loop; the mutex only guards Snapshot readers on other goroutines
type Session struct {
	mu        sync.RWMutex
	state     State
	score     int
	health    int
	maxHealth int

	listeners []Listener
}

// New creates an Idle session with full health
func New(maxHealth int) *Session {
	if maxHealth < 1 {
		maxHealth = 1
	}
	return &Session{
		state:     Idle,
		health:    maxHealth,
		maxHealth: maxHealth,
	}
}

// Subscribe registers l for all future changes
func (s *Session) Subscribe(l Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()
}

// Snapshot returns a copy of the current session
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{State: s.state, Score: s.score, Health: s.health, MaxHealth: s.maxHealth}
}

// State returns the lifecycle phase
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Start moves Idle to Running with a fresh score and full health
func (s *Session) Start() bool {
	s.mu.Lock()
	if s.state != Idle {
		s.mu.Unlock()
		return false
	}
	s.score = 0
	s.health = s.maxHealth
	s.state = Running
	s.mu.Unlock()

	s.notify(func(l Listener) {
		l.ScoreChanged(0)
		l.HealthChanged(s.maxHealth, s.maxHealth)
		l.StateChanged(Idle, Running)
	})
	return true
}

// Stop moves Running to Stopped, keeping the final score
func (s *Session) Stop() bool {
	s.mu.Lock()
	if s.state != Running {
		s.mu.Unlock()
		return false
	}
	s.state = Stopped
	s.mu.Unlock()

	s.notify(func(l Listener) { l.StateChanged(Running, Stopped) })
	return true
}

// Reset moves Stopped back to Idle with score and health restored
func (s *Session) Reset() bool {
	s.mu.Lock()
	if s.state != Stopped {
		s.mu.Unlock()
		return false
	}
	s.state = Idle
	s.score = 0
	s.health = s.maxHealth
	s.mu.Unlock()

	s.notify(func(l Listener) {
		l.ScoreChanged(0)
		l.HealthChanged(s.maxHealth, s.maxHealth)
		l.StateChanged(Stopped, Idle)
	})
	return true
}

// Hit applies one collision; returns true when it ended the session
// Ignored unless Running
func (s *Session) Hit() (gameOver bool) {
	s.mu.Lock()
	if s.state != Running {
		s.mu.Unlock()
		return false
	}
	s.health--
	health := s.health
	if health <= 0 {
		s.health = 0
		health = 0
		s.state = Stopped
		gameOver = true
	}
	s.mu.Unlock()

	s.notify(func(l Listener) {
		l.Hit()
		l.HealthChanged(health, s.maxHealth)
		if gameOver {
			l.StateChanged(Running, Stopped)
		}
	})
	return gameOver
}

// Passed scores one obstacle that got past the player
// Ignored unless Running, so the final score is frozen once Stopped
func (s *Session) Passed() bool {
	s.mu.Lock()
	if s.state != Running {
		s.mu.Unlock()
		return false
	}
	s.score++
	score := s.score
	s.mu.Unlock()

	s.notify(func(l Listener) { l.ScoreChanged(score) })
	return true
}

// notify runs fn for each listener outside the lock so listeners may read the session
func (s *Session) notify(fn func(Listener)) {
	s.mu.RLock()
	ls := s.listeners
	s.mu.RUnlock()

	for _, l := range ls {
		fn(l)
	}
}
