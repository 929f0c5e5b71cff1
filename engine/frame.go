package engine

import (
	"github.com/lixenwraith/voice-dodger/control"
	"github.com/lixenwraith/voice-dodger/obstacle"
	"github.com/lixenwraith/voice-dodger/physics"
	"github.com/lixenwraith/voice-dodger/session"
)

// Frame is everything presentation needs for one tick
// All fields are copies; presenters have no write access to game state
type Frame struct {
	Seq        uint64
	SessionID  string
	Player     physics.PlayerState
	Obstacles  []obstacle.Obstacle
	Control    control.Value
	Session    session.Snapshot
	Trace      []TracePoint
	TraceWidth float64
	AreaWidth  float64
	AreaHeight float64
	Message    string // last user-facing error or notice
}

// Presenter draws frames
type Presenter interface {
	Present(Frame)
}

// PresenterFunc adapts a function to Presenter
type PresenterFunc func(Frame)

// Present implements Presenter
func (f PresenterFunc) Present(fr Frame) {
	f(fr)
}

// Request is a control command submitted by the UI
type Request int

const (
	RequestStart Request = iota
	RequestStop
	RequestReset
	RequestQuit
)

func (r Request) String() string {
	switch r {
	case RequestStart:
		return "Start"
	case RequestStop:
		return "Stop"
	case RequestReset:
		return "Reset"
	case RequestQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}
