package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/lixenwraith/voice-dodger/audio"
	"github.com/lixenwraith/voice-dodger/collision"
	"github.com/lixenwraith/voice-dodger/config"
	"github.com/lixenwraith/voice-dodger/control"
	"github.com/lixenwraith/voice-dodger/obstacle"
	"github.com/lixenwraith/voice-dodger/parameter"
	"github.com/lixenwraith/voice-dodger/physics"
	"github.com/lixenwraith/voice-dodger/session"
	"github.com/lixenwraith/voice-dodger/status"
)

// ErrNotIdle is returned by Start when a session is already running or awaiting reset
var ErrNotIdle = errors.New("session not idle")

// Capture is the pitch source driven by the game
// audio.Signal implements it
type Capture interface {
	Start(ctx context.Context, cb func(audio.Observation)) error
	Stop()
}

// Options carries optional collaborators; zero values select defaults
type Options struct {
	Log      *slog.Logger
	Registry *status.Registry
	Clock    Clock
	Rand     *rand.Rand
}

// Game owns one play session and everything it simulates
// All methods except Submit and the capture callback run on the loop goroutine
type Game struct {
	cfg       *config.Config
	log       *slog.Logger
	clock     Clock
	capture   Capture
	presenter Presenter

	mapper  *control.Mapper
	cell    *control.Cell
	body    *physics.Body
	field   *obstacle.Field
	session *session.Session
	sched   *Scheduler
	trace   *Trace

	requests chan Request

	token     *Token
	lastFrame time.Time
	lastSeq   uint64
	frameSeq  uint64
	sessionID string
	message   string

	// Cached metric pointers
	statTicks    *atomic.Int64
	statFrameMs  *status.AtomicFloat
	statSession  *status.AtomicString
	statAccepted *atomic.Int64
	statRejected *atomic.Int64
	statHits     *atomic.Int64
	statPassed   *atomic.Int64
	statSpawned  *atomic.Int64
}

// NewGame wires a session from cfg around capture and presenter
func NewGame(cfg *config.Config, capture Capture, presenter Presenter, opts Options) *Game {
	if opts.Log == nil {
		opts.Log = slog.New(slog.DiscardHandler)
	}
	if opts.Registry == nil {
		opts.Registry = status.NewRegistry()
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	if presenter == nil {
		presenter = PresenterFunc(func(Frame) {})
	}
	reg := opts.Registry

	g := &Game{
		cfg:       cfg,
		log:       opts.Log.With("component", "engine"),
		clock:     opts.Clock,
		capture:   capture,
		presenter: presenter,

		mapper:  control.NewMapper(cfg.Pitch),
		cell:    control.NewCell(),
		body:    physics.NewBody(cfg.Player, cfg.Field.Height, cfg.Session.MaxHealth),
		field:   obstacle.NewField(cfg.Field, opts.Rand),
		session: session.New(cfg.Session.MaxHealth),
		sched:   NewScheduler(cfg.Frame.Interval, opts.Clock),
		trace:   NewTrace(parameter.TraceLength, parameter.TraceStep),

		requests: make(chan Request, parameter.RequestQueueSize),

		statTicks:    reg.Ints.Get(status.KeyTicks),
		statFrameMs:  reg.Floats.Get(status.KeyFrameMs),
		statSession:  reg.Strings.Get(status.KeySession),
		statAccepted: reg.Ints.Get(status.KeyControlAccepted),
		statRejected: reg.Ints.Get(status.KeyControlRejected),
		statHits:     reg.Ints.Get(status.KeyCollisionHits),
		statPassed:   reg.Ints.Get(status.KeyObstaclesPassed),
		statSpawned:  reg.Ints.Get(status.KeyObstaclesSpawned),
	}
	return g
}

// Subscribe registers a session listener
func (g *Game) Subscribe(l session.Listener) {
	g.session.Subscribe(l)
}

// Session returns a snapshot of score, health and state
func (g *Game) Session() session.Snapshot {
	return g.session.Snapshot()
}

// Submit queues a UI request without blocking; returns false if the queue is full
func (g *Game) Submit(req Request) bool {
	select {
	case g.requests <- req:
		return true
	default:
		g.log.Warn("request dropped, queue full", "request", req)
		return false
	}
}

// Run is the cooperative loop: UI requests, scheduled frames and cancellation are handled on this goroutine
// Returns after RequestQuit or ctx cancellation, with capture and scheduling stopped
func (g *Game) Run(ctx context.Context) {
	defer g.halt()

	g.present()

	for {
		select {
		case <-ctx.Done():
			return

		case req := <-g.requests:
			if req == RequestQuit {
				g.log.Info("quit requested")
				return
			}
			g.handle(ctx, req)

		case p := <-g.sched.Frames():
			if !p.Token.Valid() {
				// Cancelled between arming and delivery; a frame of the current run may have been dropped behind it
				if g.token != nil {
					g.sched.Request(g.token)
				}
				continue
			}

			now := g.clock.Now()
			dt := now.Sub(g.lastFrame)
			g.lastFrame = now

			began := time.Now()
			g.Tick(dt)
			g.statFrameMs.Observe(float64(time.Since(began).Microseconds())/1000, 0.1)

			// Tick may have ended the session and cancelled the token
			g.sched.Request(p.Token)
		}
	}
}

// handle applies one UI request
func (g *Game) handle(ctx context.Context, req Request) {
	switch req {
	case RequestStart:
		if err := g.Start(ctx); err != nil {
			g.message = err.Error()
			g.present()
		}
	case RequestStop:
		g.Stop()
	case RequestReset:
		g.Reset()
	}
}

// Start acquires capture and begins a session
// On any failure the session stays Idle and the error is returned
func (g *Game) Start(ctx context.Context) error {
	if g.session.State() != session.Idle {
		return ErrNotIdle
	}

	g.cell.Reset()
	_, g.lastSeq = g.cell.Load()
	g.body.Reset()
	g.field.Reset()
	g.trace.Reset()

	if err := g.capture.Start(ctx, g.onObservation); err != nil {
		g.log.Error("start failed", "error", err)
		return fmt.Errorf("start capture: %w", err)
	}

	g.session.Start()
	g.sessionID = uuid.NewString()
	g.statSession.Store(g.sessionID)
	g.message = ""

	g.token = g.sched.Start()
	g.lastFrame = g.clock.Now()
	g.sched.Request(g.token)

	g.log.Info("session started", "session", g.sessionID)
	g.present()
	return nil
}

// Stop ends a running session, keeping the final score
func (g *Game) Stop() {
	if !g.session.Stop() {
		return
	}
	g.halt()
	g.log.Info("session stopped", "session", g.sessionID, "score", g.session.Snapshot().Score)
	g.present()
}

// Reset returns a stopped session to Idle with a cleared field
func (g *Game) Reset() {
	if !g.session.Reset() {
		return
	}
	g.cell.Reset()
	g.body.Reset()
	g.field.Reset()
	g.trace.Reset()
	g.message = ""
	g.present()
}

// halt releases capture and cancels scheduling; safe to repeat
func (g *Game) halt() {
	g.capture.Stop()
	g.sched.Stop()
	g.token = nil
}

// onObservation runs on the analyser goroutine; the cell is the only state it touches
func (g *Game) onObservation(obs audio.Observation) {
	if g.mapper.Apply(obs, g.cell) == control.ReasonAccepted {
		g.statAccepted.Add(1)
	} else {
		g.statRejected.Add(1)
	}
}

// Tick advances the simulation by dt and presents the result
// dt is clamped to the configured maximum frame delta
func (g *Game) Tick(dt time.Duration) {
	if g.session.State() != session.Running {
		return
	}
	dt = min(max(dt, 0), g.cfg.Frame.MaxDelta)

	value, seq := g.cell.Load()
	if seq != g.lastSeq {
		g.lastSeq = seq
		g.trace.Push(value)
	}
	g.trace.Advance()

	g.body.Integrate(dt, value)

	g.field.Update(dt)
	if _, ok := g.field.MaybeSpawn(dt); ok {
		g.statSpawned.Add(1)
	}

	// Collisions resolve before exits so an obstacle touching the player on its way out is a hit
	for _, hit := range collision.Check(g.body.Volume(), g.field.Candidates()) {
		if !g.field.Kill(hit.ObstacleID) {
			continue
		}
		g.statHits.Add(1)

		over := g.session.Hit()
		g.body.OnHit(g.session.Snapshot().Health)
		g.log.Debug("hit", "obstacle", hit.ObstacleID, "game_over", over)
		if over {
			break
		}
	}

	for range g.field.RetireExited() {
		if g.session.Passed() {
			g.statPassed.Add(1)
		}
	}

	if g.session.State() != session.Running {
		g.halt()
		g.log.Info("game over", "session", g.sessionID, "score", g.session.Snapshot().Score)
	}

	g.statTicks.Add(1)
	g.present()
}

// present hands a copy of the current state to the presenter
func (g *Game) present() {
	g.frameSeq++
	value, _ := g.cell.Load()

	g.presenter.Present(Frame{
		Seq:        g.frameSeq,
		SessionID:  g.sessionID,
		Player:     g.body.State(),
		Obstacles:  g.field.Candidates(),
		Control:    value,
		Session:    g.session.Snapshot(),
		Trace:      g.trace.Points(),
		TraceWidth: g.trace.Width(),
		AreaWidth:  g.cfg.Field.Width,
		AreaHeight: g.cfg.Field.Height,
		Message:    g.message,
	})
}
