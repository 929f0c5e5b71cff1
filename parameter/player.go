package parameter

import "time"

// Player Body
const (
	// PlayerX is the fixed horizontal position of the avatar's left edge
	PlayerX = 6.0

	PlayerWidth  = 3.0
	PlayerHeight = 2.0

	// PlayerHitReaction is how long the hit flag stays raised after a collision
	PlayerHitReaction = 300 * time.Millisecond
)
