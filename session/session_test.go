package session

import (
	"fmt"
	"slices"
	"testing"
)

// recorder captures listener calls in order
type recorder struct {
	calls []string
}

func (r *recorder) ScoreChanged(score int) {
	r.calls = append(r.calls, fmt.Sprintf("score:%d", score))
}

func (r *recorder) HealthChanged(health, maxHealth int) {
	r.calls = append(r.calls, fmt.Sprintf("health:%d/%d", health, maxHealth))
}

func (r *recorder) Hit() {
	r.calls = append(r.calls, "hit")
}

func (r *recorder) StateChanged(from, to State) {
	r.calls = append(r.calls, fmt.Sprintf("state:%s->%s", from, to))
}

// TestTransitionTable verifies every operation in every state
func TestTransitionTable(t *testing.T) {
	// Drives a fresh session into the given state
	into := func(st State) *Session {
		s := New(4)
		switch st {
		case Running:
			s.Start()
		case Stopped:
			s.Start()
			s.Stop()
		}
		return s
	}

	tests := []struct {
		from   State
		op     string
		wantOK bool
		want   State
	}{
		{Idle, "start", true, Running},
		{Idle, "stop", false, Idle},
		{Idle, "reset", false, Idle},
		{Idle, "hit", false, Idle},
		{Idle, "passed", false, Idle},
		{Running, "start", false, Running},
		{Running, "stop", true, Stopped},
		{Running, "reset", false, Running},
		{Running, "hit", false, Running},
		{Running, "passed", true, Running},
		{Stopped, "start", false, Stopped},
		{Stopped, "stop", false, Stopped},
		{Stopped, "reset", true, Idle},
		{Stopped, "hit", false, Stopped},
		{Stopped, "passed", false, Stopped},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s_%s", tt.from, tt.op), func(t *testing.T) {
			s := into(tt.from)

			var ok bool
			switch tt.op {
			case "start":
				ok = s.Start()
			case "stop":
				ok = s.Stop()
			case "reset":
				ok = s.Reset()
			case "hit":
				// One hit of four never ends the session
				ok = s.Hit()
			case "passed":
				ok = s.Passed()
			}

			if ok != tt.wantOK {
				t.Errorf("Expected ok=%v, got %v", tt.wantOK, ok)
			}
			if got := s.State(); got != tt.want {
				t.Errorf("Expected state %s, got %s", tt.want, got)
			}
		})
	}
}

// TestHealthToZeroEndsSession verifies four hits from 4 health stop the game on the fourth
func TestHealthToZeroEndsSession(t *testing.T) {
	s := New(4)
	s.Start()
	s.Passed()
	s.Passed()

	for i := 1; i <= 3; i++ {
		if s.Hit() {
			t.Fatalf("Hit %d: unexpected game over", i)
		}
		if s.State() != Running {
			t.Fatalf("Hit %d: expected Running, got %s", i, s.State())
		}
	}

	if !s.Hit() {
		t.Fatal("Expected game over on fourth hit")
	}

	snap := s.Snapshot()
	if snap.State != Stopped || snap.Health != 0 || snap.Score != 2 {
		t.Errorf("Expected Stopped with health 0 and score 2, got %+v", snap)
	}

	// Score and health are frozen
	if s.Passed() || s.Hit() {
		t.Error("Expected no scoring or hits after game over")
	}
	if snap2 := s.Snapshot(); snap2 != snap {
		t.Errorf("Expected frozen snapshot, got %+v", snap2)
	}
}

// TestScoreMonotonic verifies score never decreases while running
func TestScoreMonotonic(t *testing.T) {
	s := New(3)
	s.Start()

	prev := 0
	for i := 0; i < 10; i++ {
		if i%3 == 0 {
			s.Hit()
		} else {
			s.Passed()
		}
		score := s.Snapshot().Score
		if score < prev {
			t.Fatalf("Score decreased from %d to %d", prev, score)
		}
		prev = score
	}
}

// TestListenerNotifications verifies the callback sequence
func TestListenerNotifications(t *testing.T) {
	s := New(2)
	r := &recorder{}
	s.Subscribe(r)

	s.Start()
	s.Passed()
	s.Hit()
	s.Hit()
	s.Reset()

	want := []string{
		"score:0", "health:2/2", "state:Idle->Running",
		"score:1",
		"hit", "health:1/2",
		"hit", "health:0/2", "state:Running->Stopped",
		"score:0", "health:2/2", "state:Stopped->Idle",
	}
	if !slices.Equal(r.calls, want) {
		t.Errorf("Expected calls\n%v\ngot\n%v", want, r.calls)
	}
}

// TestRestartAfterReset verifies a full cycle starts fresh
func TestRestartAfterReset(t *testing.T) {
	s := New(4)
	s.Start()
	s.Passed()
	s.Hit()
	s.Stop()
	s.Reset()

	if !s.Start() {
		t.Fatal("Expected start after reset")
	}
	snap := s.Snapshot()
	if snap.Score != 0 || snap.Health != 4 {
		t.Errorf("Expected fresh session, got %+v", snap)
	}
}

// TestNewClampsMaxHealth verifies a degenerate health setting still allows one hit
func TestNewClampsMaxHealth(t *testing.T) {
	s := New(0)
	s.Start()
	if !s.Hit() {
		t.Error("Expected single hit to end a session with max health 1")
	}
}
