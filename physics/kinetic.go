package physics

import (
	"github.com/lixenwraith/voice-dodger/vmath"
)

// Kinetic is a point mass in play-area units
type Kinetic struct {
	Pos vmath.Vec2
	Vel vmath.Vec2
}

// Integrate performs explicit integration: p = p + v*dt
// dt is in seconds
func Integrate(k *Kinetic, dt float64) {
	k.Pos = vmath.V2Add(k.Pos, vmath.V2Scale(k.Vel, dt))
}

// SetImpulse overrides velocity (velocity-mode control)
func SetImpulse(k *Kinetic, vx, vy float64) {
	k.Vel.X = vx
	k.Vel.Y = vy
}

// ClampBoundsY holds the position inside [minY, maxY] without bouncing
// The velocity component pointing into the violated bound is zeroed
// Returns true if clamping occurred
func ClampBoundsY(k *Kinetic, minY, maxY float64) bool {
	if k.Pos.Y < minY {
		k.Pos.Y = minY
		if k.Vel.Y < 0 {
			k.Vel.Y = 0
		}
		return true
	}
	if k.Pos.Y > maxY {
		k.Pos.Y = maxY
		if k.Vel.Y > 0 {
			k.Vel.Y = 0
		}
		return true
	}
	return false
}
