package parameter

// Layout & Margins
const (
	// TopMargin is the HUD row
	TopMargin = 1

	// BottomMargin is the status row
	BottomMargin = 1

	// RightMargin holds the gap and velocity bar column
	RightMargin = 2

	// ChartRows is the pitch chart height when the terminal is tall enough
	ChartRows = 5

	// ChartMinScreenRows is the terminal height below which the chart is hidden
	ChartMinScreenRows = 18

	// MinScreenWidth and MinScreenHeight are the smallest terminal that can hold the play area
	MinScreenWidth  = 24
	MinScreenHeight = 8
)

// Status Bar
const (
	// HealthChar and HealthLostChar draw one unit of health in the HUD
	HealthChar     = '♥'
	HealthLostChar = '♡'

	// HelpText is shown on the status row when there is no message
	HelpText = "Enter start  Esc stop  r reset  q quit  ↑/↓ tone"
)

// Glyphs
const (
	PlayerChar   = '█'
	ObstacleChar = '▓'
	ChartChar    = '•'
	ChartAxis    = '·'
	BarChar      = '█'
	BarZeroChar  = '─'
)

// Input
const (
	// InputQueueSize buffers terminal events between the poller and the input loop
	InputQueueSize = 32
)
