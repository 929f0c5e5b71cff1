package render

import (
	"context"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/voice-dodger/core"
	"github.com/lixenwraith/voice-dodger/engine"
	"github.com/lixenwraith/voice-dodger/parameter"
)

// Nudger is a capture source whose pitch can be moved from the keyboard
// audio.ToneDevice implements it
type Nudger interface {
	Nudge(delta float64) float64
}

// Input maps terminal keys to game requests
type Input struct {
	submit   func(engine.Request) bool
	tone     Nudger
	step     float64
	onResize func()
}

// NewInput creates a key mapper submitting to submit
// tone and onResize may be nil
func NewInput(submit func(engine.Request) bool, tone Nudger, onResize func()) *Input {
	return &Input{
		submit:   submit,
		tone:     tone,
		step:     parameter.ToneNudgeHz,
		onResize: onResize,
	}
}

// Run polls terminal events until quit is pressed, ctx ends or the screen is finalized
func (in *Input) Run(ctx context.Context, screen tcell.Screen) {
	events := make(chan tcell.Event, parameter.InputQueueSize)
	quit := make(chan struct{})
	defer close(quit)

	core.Go(func() { screen.ChannelEvents(events, quit) })

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if !in.Handle(ev) {
				return
			}
		}
	}
}

// Handle processes one event; returns false once quit was requested
func (in *Input) Handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return in.handleKey(ev.Key(), ev.Rune())
	case *tcell.EventResize:
		if in.onResize != nil {
			in.onResize()
		}
	}
	return true
}

func (in *Input) handleKey(key tcell.Key, r rune) bool {
	switch key {
	case tcell.KeyEnter:
		in.submit(engine.RequestStart)
	case tcell.KeyEscape:
		in.submit(engine.RequestStop)
	case tcell.KeyCtrlC:
		in.submit(engine.RequestQuit)
		return false
	case tcell.KeyUp:
		in.nudge(in.step)
	case tcell.KeyDown:
		in.nudge(-in.step)
	case tcell.KeyRune:
		switch r {
		case 'r', 'R':
			in.submit(engine.RequestReset)
		case 'q', 'Q':
			in.submit(engine.RequestQuit)
			return false
		}
	}
	return true
}

func (in *Input) nudge(delta float64) {
	if in.tone != nil {
		in.tone.Nudge(delta)
	}
}
