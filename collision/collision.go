// Package collision resolves player/obstacle overlap for one frame
package collision

import (
	"github.com/lixenwraith/voice-dodger/obstacle"
	"github.com/lixenwraith/voice-dodger/vmath"
)

// HitEvent reports one obstacle overlapping the player
type HitEvent struct {
	ObstacleID uint64
	Obstacle   obstacle.Obstacle // copy at the time of the check
	Overlap    vmath.Vec2        // penetration extent on each axis
}

// Check tests player against every candidate and returns one event per overlapping obstacle
// Pure and stateless; dead candidates are skipped even if the caller passes them
func Check(player vmath.AABB, candidates []obstacle.Obstacle) []HitEvent {
	var events []HitEvent
	for _, o := range candidates {
		if o.Dead {
			continue
		}
		box := o.Volume()
		if !player.Intersects(box) {
			continue
		}
		events = append(events, HitEvent{
			ObstacleID: o.ID,
			Obstacle:   o,
			Overlap:    overlap(player, box),
		})
	}
	return events
}

// overlap returns the intersection extent of two boxes
func overlap(a, b vmath.AABB) vmath.Vec2 {
	aMax, bMax := a.Max(), b.Max()
	return vmath.Vec2{
		X: min(aMax.X, bMax.X) - max(a.Min.X, b.Min.X),
		Y: min(aMax.Y, bMax.Y) - max(a.Min.Y, b.Min.Y),
	}
}
