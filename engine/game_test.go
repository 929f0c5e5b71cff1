package engine

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/lixenwraith/voice-dodger/audio"
	"github.com/lixenwraith/voice-dodger/config"
	"github.com/lixenwraith/voice-dodger/session"
	"github.com/lixenwraith/voice-dodger/status"
	"github.com/lixenwraith/voice-dodger/vmath"
)

// fakeCapture records lifecycle calls and lets tests emit observations
type fakeCapture struct {
	mu       sync.Mutex
	startErr error
	cb       func(audio.Observation)
	running  bool
	starts   int
	stops    int
}

func (c *fakeCapture) Start(_ context.Context, cb func(audio.Observation)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.startErr != nil {
		return c.startErr
	}
	c.cb = cb
	c.running = true
	c.starts++
	return nil
}

func (c *fakeCapture) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		c.stops++
	}
	c.running = false
}

func (c *fakeCapture) emit(pitch, clarity float64) {
	c.mu.Lock()
	cb := c.cb
	c.mu.Unlock()
	cb(audio.Observation{PitchHz: pitch, Clarity: clarity, At: time.Now()})
}

func (c *fakeCapture) isRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// recordingPresenter keeps every presented frame
type recordingPresenter struct {
	mu     sync.Mutex
	frames []Frame
}

func (p *recordingPresenter) Present(f Frame) {
	p.mu.Lock()
	p.frames = append(p.frames, f)
	p.mu.Unlock()
}

func (p *recordingPresenter) last() Frame {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.frames) == 0 {
		return Frame{}
	}
	return p.frames[len(p.frames)-1]
}

func (p *recordingPresenter) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.frames)
}

// testConfig disables random spawns so tests place obstacles explicitly
func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Field.SpawnMin = time.Hour
	cfg.Field.SpawnMax = time.Hour
	cfg.Frame.Interval = 5 * time.Millisecond
	return cfg
}

type harness struct {
	game    *Game
	capture *fakeCapture
	view    *recordingPresenter
	reg     *status.Registry
}

func newHarness(t *testing.T, cfg *config.Config) *harness {
	t.Helper()
	h := &harness{
		capture: &fakeCapture{},
		view:    &recordingPresenter{},
		reg:     status.NewRegistry(),
	}
	h.game = NewGame(cfg, h.capture, h.view, Options{
		Registry: h.reg,
		Rand:     rand.New(rand.NewSource(1)),
	})
	return h
}

func (h *harness) start(t *testing.T) {
	t.Helper()
	if err := h.game.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
}

func (h *harness) stat(key string) int64 {
	return h.reg.Ints.Get(key).Load()
}

// TestStartFailureStaysIdle verifies a capture error leaves no partial session
func TestStartFailureStaysIdle(t *testing.T) {
	h := newHarness(t, testConfig())
	h.capture.startErr = audio.ErrPermissionDenied

	err := h.game.Start(context.Background())
	if !errors.Is(err, audio.ErrPermissionDenied) {
		t.Fatalf("Expected ErrPermissionDenied, got %v", err)
	}
	if st := h.game.Session().State; st != session.Idle {
		t.Errorf("Expected Idle after failed start, got %s", st)
	}
	if h.game.token.Valid() {
		t.Error("Expected no scheduling token after failed start")
	}

	// Ticks do nothing while Idle
	h.game.Tick(16 * time.Millisecond)
	if h.stat(status.KeyTicks) != 0 {
		t.Error("Expected no ticks while Idle")
	}
}

// TestStartGuard verifies Start is refused unless Idle
func TestStartGuard(t *testing.T) {
	h := newHarness(t, testConfig())
	h.start(t)

	if err := h.game.Start(context.Background()); !errors.Is(err, ErrNotIdle) {
		t.Errorf("Expected ErrNotIdle, got %v", err)
	}
	if h.capture.starts != 1 {
		t.Errorf("Expected a single capture start, got %d", h.capture.starts)
	}
	if h.game.sessionID == "" {
		t.Error("Expected session ID assigned")
	}
	if got := h.reg.Strings.Get(status.KeySession).Load(); got != h.game.sessionID {
		t.Errorf("Expected session metric %q, got %q", h.game.sessionID, got)
	}
}

// TestTickFollowsControl verifies accepted pitch steers the player and rejected pitch does not
func TestTickFollowsControl(t *testing.T) {
	h := newHarness(t, testConfig())
	h.start(t)
	startY := h.game.body.State().Position.Y

	// Low clarity is ignored; neutral control keeps the player still
	h.capture.emit(110, 0.5)
	h.game.Tick(100 * time.Millisecond)
	if y := h.game.body.State().Position.Y; y != startY {
		t.Errorf("Expected no movement on rejected observation, got y=%f", y)
	}

	// Low voice moves down
	h.capture.emit(110, 0.99)
	h.game.Tick(100 * time.Millisecond)
	f := h.view.last()
	if f.Player.Position.Y <= startY {
		t.Errorf("Expected downward movement, y=%f start=%f", f.Player.Position.Y, startY)
	}
	if f.Control.VerticalVelocity <= 0 {
		t.Errorf("Expected positive velocity in frame, got %f", f.Control.VerticalVelocity)
	}
	if len(f.Trace) != 1 {
		t.Errorf("Expected one trace point, got %d", len(f.Trace))
	}

	// No new observation: the last value is reused and no trace point is added
	h.game.Tick(100 * time.Millisecond)
	if got := len(h.view.last().Trace); got != 1 {
		t.Errorf("Expected trace unchanged without new observation, got %d", got)
	}

	if h.stat(status.KeyControlAccepted) != 1 || h.stat(status.KeyControlRejected) != 1 {
		t.Errorf("Expected 1 accepted and 1 rejected, got %d/%d",
			h.stat(status.KeyControlAccepted), h.stat(status.KeyControlRejected))
	}
}

// TestTickClampsDelta verifies a long stall advances at most MaxFrameDelta
func TestTickClampsDelta(t *testing.T) {
	cfg := testConfig()
	h := newHarness(t, cfg)
	h.start(t)
	startY := h.game.body.State().Position.Y

	h.capture.emit(110, 0.99)
	v, _ := h.game.cell.Load()
	h.game.Tick(5 * time.Second)

	moved := h.game.body.State().Position.Y - startY
	maxMove := v.VerticalVelocity * cfg.Frame.MaxDelta.Seconds()
	if moved > maxMove+1e-9 {
		t.Errorf("Expected movement at most %f, got %f", maxMove, moved)
	}
}

// TestOverlapAtSpawnSingleHit verifies an obstacle spawned on the player hits exactly once
func TestOverlapAtSpawnSingleHit(t *testing.T) {
	h := newHarness(t, testConfig())
	h.start(t)

	h.game.field.SpawnAt(h.game.body.State().Position, 0)

	for i := 0; i < 5; i++ {
		h.game.Tick(16 * time.Millisecond)
	}

	if hits := h.stat(status.KeyCollisionHits); hits != 1 {
		t.Errorf("Expected 1 hit, got %d", hits)
	}
	snap := h.game.Session()
	if snap.Health != snap.MaxHealth-1 || snap.State != session.Running {
		t.Errorf("Expected one health lost while running, got %+v", snap)
	}
	f := h.view.last()
	if len(f.Obstacles) != 0 {
		t.Errorf("Expected hit obstacle gone from frame, got %d", len(f.Obstacles))
	}
	if !f.Player.Hit {
		t.Error("Expected hit reaction in frame")
	}
}

// TestGameOverWithinFrame verifies the final hit stops capture and scheduling in the same tick
func TestGameOverWithinFrame(t *testing.T) {
	cfg := testConfig()
	cfg.Session.MaxHealth = 1
	h := newHarness(t, cfg)
	h.start(t)

	pos := h.game.body.State().Position
	h.game.field.SpawnAt(pos, 0)
	h.game.field.SpawnAt(vmath.Vec2{X: pos.X + 1, Y: pos.Y}, 0)
	// Far obstacle about to pass the player; must not score after game over
	h.game.field.SpawnAt(vmath.Vec2{X: -2.9, Y: 0}, 10)
	tok := h.game.token

	h.game.Tick(16 * time.Millisecond)

	snap := h.game.Session()
	if snap.State != session.Stopped || snap.Health != 0 {
		t.Fatalf("Expected Stopped with 0 health, got %+v", snap)
	}
	if snap.Score != 0 {
		t.Errorf("Expected frozen score 0, got %d", snap.Score)
	}
	if h.capture.isRunning() {
		t.Error("Expected capture halted on game over")
	}
	if tok.Valid() {
		t.Error("Expected scheduling token cancelled on game over")
	}
	if hits := h.stat(status.KeyCollisionHits); hits != 1 {
		t.Errorf("Expected processing to stop at the fatal hit, got %d hits", hits)
	}
	if f := h.view.last(); f.Session.State != session.Stopped || f.Player.Alive {
		t.Errorf("Expected final frame to show game over, got %+v", f.Session)
	}

	ticks := h.stat(status.KeyTicks)
	h.game.Tick(16 * time.Millisecond)
	if h.stat(status.KeyTicks) != ticks {
		t.Error("Expected no simulation after game over")
	}
}

// TestPassedObstacleScores verifies an obstacle leaving past the player scores once
func TestPassedObstacleScores(t *testing.T) {
	h := newHarness(t, testConfig())
	h.start(t)

	h.game.field.SpawnAt(vmath.Vec2{X: -2, Y: 0}, 10)
	h.game.Tick(100 * time.Millisecond)
	h.game.Tick(100 * time.Millisecond)

	if score := h.game.Session().Score; score != 1 {
		t.Errorf("Expected score 1, got %d", score)
	}
	if passed := h.stat(status.KeyObstaclesPassed); passed != 1 {
		t.Errorf("Expected 1 passed, got %d", passed)
	}
}

// TestRandomSpawnsAdvance verifies the field spawns on its own while running
func TestRandomSpawnsAdvance(t *testing.T) {
	cfg := testConfig()
	cfg.Field.SpawnMin = 100 * time.Millisecond
	cfg.Field.SpawnMax = 100 * time.Millisecond
	h := newHarness(t, cfg)
	h.start(t)

	for i := 0; i < 10; i++ {
		h.game.Tick(50 * time.Millisecond)
	}
	if n := h.stat(status.KeyObstaclesSpawned); n != 5 {
		t.Errorf("Expected 5 spawns, got %d", n)
	}
}

// TestStopResetCycle verifies stop freezes the session and reset clears it for a new start
func TestStopResetCycle(t *testing.T) {
	h := newHarness(t, testConfig())
	h.start(t)
	tok := h.game.token

	h.game.field.SpawnAt(vmath.Vec2{X: 40, Y: 0}, 10)
	h.game.Tick(16 * time.Millisecond)

	h.game.Stop()
	h.game.Stop()
	if h.game.Session().State != session.Stopped {
		t.Fatalf("Expected Stopped, got %s", h.game.Session().State)
	}
	if tok.Valid() || h.capture.isRunning() {
		t.Error("Expected token cancelled and capture halted on stop")
	}
	if h.capture.stops != 1 {
		t.Errorf("Expected one capture stop, got %d", h.capture.stops)
	}

	h.game.Reset()
	if h.game.Session().State != session.Idle {
		t.Fatalf("Expected Idle after reset, got %s", h.game.Session().State)
	}
	if f := h.view.last(); len(f.Obstacles) != 0 || len(f.Trace) != 0 {
		t.Error("Expected cleared field and trace after reset")
	}

	h.start(t)
	if !h.game.token.Valid() || h.game.token == tok {
		t.Error("Expected a fresh token for the new run")
	}
}

// TestSubmitNonBlocking verifies the request queue drops instead of blocking
func TestSubmitNonBlocking(t *testing.T) {
	h := newHarness(t, testConfig())

	for i := 0; i < cap(h.game.requests); i++ {
		if !h.game.Submit(RequestStart) {
			t.Fatalf("Submit %d unexpectedly dropped", i)
		}
	}
	if h.game.Submit(RequestStart) {
		t.Error("Expected Submit to drop when the queue is full")
	}
}

// TestRunLoop verifies requests drive the loop and stop prevents further frames
func TestRunLoop(t *testing.T) {
	h := newHarness(t, testConfig())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		h.game.Run(ctx)
		close(done)
	}()

	h.game.Submit(RequestStart)
	waitUntil(t, "ticks", func() bool { return h.stat(status.KeyTicks) >= 3 })

	h.game.Submit(RequestStop)
	waitUntil(t, "stopped", func() bool { return h.view.last().Session.State == session.Stopped })

	ticks := h.stat(status.KeyTicks)
	time.Sleep(50 * time.Millisecond)
	if h.stat(status.KeyTicks) != ticks {
		t.Error("Expected no frames after stop")
	}

	h.game.Submit(RequestQuit)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after quit")
	}
	if h.capture.isRunning() {
		t.Error("Expected capture released on exit")
	}
}

// TestRunStartFailureReported verifies a failed start is surfaced in the frame
func TestRunStartFailureReported(t *testing.T) {
	h := newHarness(t, testConfig())
	h.capture.startErr = audio.ErrDeviceUnavailable
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		h.game.Run(ctx)
		close(done)
	}()

	h.game.Submit(RequestStart)
	waitUntil(t, "error message", func() bool { return h.view.last().Message != "" })

	if f := h.view.last(); f.Session.State != session.Idle {
		t.Errorf("Expected Idle, got %s", f.Session.State)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

// TestRunDropsCancelledFrame verifies a pulse whose token was cancelled never ticks
func TestRunDropsCancelledFrame(t *testing.T) {
	h := newHarness(t, testConfig())
	h.start(t)

	// Start armed a frame; cancel it before the loop sees it
	tok := h.game.token
	tok.Cancel()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.game.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	if n := h.stat(status.KeyTicks); n != 0 {
		t.Errorf("Expected cancelled frame dropped, got %d ticks", n)
	}
}

// TestRunTicksAfterRestart verifies a run restarted while a pulse of the previous run was undrained still ticks
func TestRunTicksAfterRestart(t *testing.T) {
	h := newHarness(t, testConfig())
	h.start(t)
	waitUntil(t, "queued pulse", func() bool { return len(h.game.sched.frames) == 1 })

	h.game.Stop()
	h.game.Reset()
	h.start(t)
	time.Sleep(30 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.game.Run(ctx)
		close(done)
	}()

	waitUntil(t, "ticks", func() bool { return h.stat(status.KeyTicks) >= 3 })
	cancel()
	<-done
}

// TestRunRearmsBehindStalePulse verifies the loop re-requests the current run after dropping a stale pulse
func TestRunRearmsBehindStalePulse(t *testing.T) {
	h := newHarness(t, testConfig())
	h.start(t)
	waitUntil(t, "queued pulse", func() bool { return len(h.game.sched.frames) == 1 })

	// Replace the queued pulse with a cancelled one, as if a timer of an earlier run fired late
	<-h.game.sched.frames
	stale := &Token{id: 0}
	h.game.sched.frames <- Pulse{Token: stale, At: time.Now()}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.game.Run(ctx)
		close(done)
	}()

	waitUntil(t, "ticks", func() bool { return h.stat(status.KeyTicks) >= 3 })
	cancel()
	<-done
}

// waitUntil polls cond until it holds or fails the test
func waitUntil(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("Timed out waiting for %s", what)
}
