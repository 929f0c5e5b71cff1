package parameter

import "time"

// Play Area
const (
	// AreaWidth and AreaHeight are in play-area units (one unit = one terminal cell at scale 1)
	AreaWidth  = 72.0
	AreaHeight = 20.0
)

// Session
const (
	// MaxHealth is the number of hits that end a session
	MaxHealth = 4
)

// Obstacles
const (
	ObstacleWidth  = 3.0
	ObstacleHeight = 2.0

	ObstacleSpeedMin = 14.0
	ObstacleSpeedMax = 26.0

	SpawnIntervalMin = 900 * time.Millisecond
	SpawnIntervalMax = 1800 * time.Millisecond
)
