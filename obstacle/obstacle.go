package obstacle

import (
	"github.com/lixenwraith/voice-dodger/physics"
	"github.com/lixenwraith/voice-dodger/vmath"
)

// Cause records why an obstacle died
type Cause int

const (
	CauseNone   Cause = iota
	CauseHit          // collided with the player
	CauseMissed       // left the play area past the player
)

func (c Cause) String() string {
	switch c {
	case CauseHit:
		return "Hit"
	case CauseMissed:
		return "Missed"
	default:
		return "None"
	}
}

// Obstacle is one hazard travelling toward the player
type Obstacle struct {
	ID       uint64
	Position vmath.Vec2 // top-left corner
	Size     vmath.Vec2
	Speed    float64 // units per second toward -X
	Dead     bool
	Cause    Cause
}

// Volume returns the collision box
func (o Obstacle) Volume() vmath.AABB {
	return vmath.BoxAt(o.Position, o.Size)
}

// advance moves the obstacle through the shared integrator
func (o *Obstacle) advance(dt float64) {
	k := physics.Kinetic{Pos: o.Position}
	physics.SetImpulse(&k, -o.Speed, 0)
	physics.Integrate(&k, dt)
	o.Position = k.Pos
}
