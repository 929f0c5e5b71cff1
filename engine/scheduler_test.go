package engine

import (
	"testing"
	"time"
)

func receivePulse(t *testing.T, s *Scheduler, within time.Duration) (Pulse, bool) {
	t.Helper()
	select {
	case p := <-s.Frames():
		return p, true
	case <-time.After(within):
		return Pulse{}, false
	}
}

// TestSchedulerDeliversRequestedFrame verifies one request yields one pulse
func TestSchedulerDeliversRequestedFrame(t *testing.T) {
	s := NewScheduler(5*time.Millisecond, nil)
	defer s.Stop()

	tok := s.Start()
	if !s.Request(tok) {
		t.Fatal("Expected request accepted")
	}

	p, ok := receivePulse(t, s, time.Second)
	if !ok {
		t.Fatal("Expected a pulse")
	}
	if p.Token != tok {
		t.Errorf("Expected pulse for token %d, got %d", tok.ID(), p.Token.ID())
	}

	if _, ok := receivePulse(t, s, 30*time.Millisecond); ok {
		t.Error("Expected no further pulse without a new request")
	}
}

// TestSchedulerSinglePending verifies at most one frame is pending per token
func TestSchedulerSinglePending(t *testing.T) {
	s := NewScheduler(20*time.Millisecond, nil)
	defer s.Stop()

	tok := s.Start()
	if !s.Request(tok) {
		t.Fatal("Expected first request accepted")
	}
	if s.Request(tok) {
		t.Error("Expected second request refused while pending")
	}

	if _, ok := receivePulse(t, s, time.Second); !ok {
		t.Fatal("Expected a pulse")
	}
	if !s.Request(tok) {
		t.Error("Expected request accepted after delivery")
	}
}

// TestSchedulerCancelledToken verifies cancelled and superseded tokens cannot schedule
func TestSchedulerCancelledToken(t *testing.T) {
	tests := []struct {
		name   string
		revoke func(s *Scheduler, tok *Token)
	}{
		{"stop", func(s *Scheduler, _ *Token) { s.Stop() }},
		{"cancel", func(_ *Scheduler, tok *Token) { tok.Cancel() }},
		{"restart", func(s *Scheduler, _ *Token) { s.Start() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScheduler(5*time.Millisecond, nil)
			defer s.Stop()

			tok := s.Start()
			tt.revoke(s, tok)

			if tok.Valid() {
				t.Error("Expected token invalid")
			}
			if s.Request(tok) {
				t.Error("Expected request refused for revoked token")
			}
		})
	}
}

// TestSchedulerStopDisarms verifies Stop prevents a pending frame from arriving
func TestSchedulerStopDisarms(t *testing.T) {
	s := NewScheduler(20*time.Millisecond, nil)
	tok := s.Start()
	s.Request(tok)
	s.Stop()
	s.Stop()

	if p, ok := receivePulse(t, s, 60*time.Millisecond); ok && p.Token.Valid() {
		t.Error("Expected no valid pulse after stop")
	}
}

// TestSchedulerRestartIsolated verifies a stale timer does not block the new run
func TestSchedulerRestartIsolated(t *testing.T) {
	s := NewScheduler(10*time.Millisecond, nil)
	defer s.Stop()

	old := s.Start()
	s.Request(old)

	tok := s.Start()
	if tok.ID() == old.ID() {
		t.Fatal("Expected distinct token IDs")
	}
	if !s.Request(tok) {
		t.Fatal("Expected new token to schedule despite the old pending frame")
	}

	p, ok := receivePulse(t, s, time.Second)
	if !ok {
		t.Fatal("Expected a pulse")
	}
	if p.Token != tok {
		t.Errorf("Expected pulse for current token, got %d", p.Token.ID())
	}
}

// TestTokenNilSafe verifies the zero token is permanently invalid
func TestTokenNilSafe(t *testing.T) {
	var tok *Token
	tok.Cancel()
	if tok.Valid() || tok.ID() != 0 {
		t.Error("Expected nil token invalid with ID 0")
	}
}

// TestMockClock verifies manual time advancement
func TestMockClock(t *testing.T) {
	start := time.Unix(1000, 0)
	c := NewMockClock(start)
	c.Advance(250 * time.Millisecond)
	if got := c.Now().Sub(start); got != 250*time.Millisecond {
		t.Errorf("Expected 250ms elapsed, got %v", got)
	}
}

// TestSchedulerStartClearsStalePulse verifies an undrained pulse of a previous run does not block the next run
func TestSchedulerStartClearsStalePulse(t *testing.T) {
	s := NewScheduler(5*time.Millisecond, nil)
	defer s.Stop()

	old := s.Start()
	s.Request(old)
	deadline := time.Now().Add(time.Second)
	for len(s.frames) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if len(s.frames) == 0 {
		t.Fatal("Expected a queued pulse")
	}

	tok := s.Start()
	if !s.Request(tok) {
		t.Fatal("Expected request accepted")
	}
	time.Sleep(30 * time.Millisecond)

	p, ok := receivePulse(t, s, time.Second)
	if !ok {
		t.Fatal("Expected a pulse for the new run")
	}
	if p.Token != tok {
		t.Errorf("Expected pulse for token %d, got %d", tok.ID(), p.Token.ID())
	}
}
