package physics

import (
	"math"
	"time"

	"github.com/lixenwraith/voice-dodger/config"
	"github.com/lixenwraith/voice-dodger/control"
	"github.com/lixenwraith/voice-dodger/vmath"
)

// PlayerState is a snapshot of the avatar handed to presentation
type PlayerState struct {
	Position vmath.Vec2
	Velocity vmath.Vec2
	Size     vmath.Vec2
	Health   int  // mirror of the session's health
	Alive    bool // Health > 0
	Hit      bool // hit reaction active
}

// Body owns the avatar's kinematics
// Not safe for concurrent use; touched only by the frame loop
type Body struct {
	kin    Kinetic
	size   vmath.Vec2
	top    float64
	bottom float64

	health    int
	maxHealth int

	hitReaction  time.Duration
	hitRemaining time.Duration
}

// NewBody creates a body at the vertical center of a play area of areaHeight
func NewBody(cfg config.Player, areaHeight float64, maxHealth int) *Body {
	b := &Body{
		size:        vmath.Vec2{X: cfg.Width, Y: cfg.Height},
		top:         0,
		bottom:      areaHeight,
		maxHealth:   maxHealth,
		hitReaction: cfg.HitReaction,
	}
	b.kin.Pos.X = cfg.X
	b.Reset()
	return b
}

// Reset recenters the body, restores health and clears the hit reaction
func (b *Body) Reset() {
	b.kin.Pos.Y = b.top + (b.bottom-b.top-b.size.Y)/2
	b.kin.Vel = vmath.Vec2{}
	b.health = b.maxHealth
	b.hitRemaining = 0
}

// Integrate advances the body by dt under value
// Velocity is taken directly from the control value; there is no momentum
func (b *Body) Integrate(dt time.Duration, value control.Value) {
	vy := value.VerticalVelocity
	if math.IsNaN(vy) || math.IsInf(vy, 0) {
		vy = 0
	}

	SetImpulse(&b.kin, 0, vy)
	Integrate(&b.kin, dt.Seconds())
	ClampBoundsY(&b.kin, b.top, b.bottom-b.size.Y)

	// Reaction expiry is lazy; nothing waits on it
	if b.hitRemaining > 0 {
		b.hitRemaining -= dt
		if b.hitRemaining < 0 {
			b.hitRemaining = 0
		}
	}
}

// Volume returns the current collision box
func (b *Body) Volume() vmath.AABB {
	return vmath.BoxAt(b.kin.Pos, b.size)
}

// OnHit raises the hit reaction and records the session's remaining health
func (b *Body) OnHit(health int) {
	b.hitRemaining = b.hitReaction
	b.health = max(health, 0)
}

// State returns a copy of the current player state
func (b *Body) State() PlayerState {
	return PlayerState{
		Position: b.kin.Pos,
		Velocity: b.kin.Vel,
		Size:     b.size,
		Health:   b.health,
		Alive:    b.health > 0,
		Hit:      b.hitRemaining > 0,
	}
}
