package engine

import (
	"github.com/lixenwraith/voice-dodger/session"
)

// Cues plays gameplay feedback
type Cues interface {
	PlayHit()
	PlayScore()
	PlayGameOver()
}

// CueListener turns session notifications into feedback cues
func CueListener(c Cues) session.Listener {
	return &cueListener{cues: c, health: -1}
}

type cueListener struct {
	cues   Cues
	health int
}

func (l *cueListener) ScoreChanged(score int) {
	if score > 0 {
		l.cues.PlayScore()
	}
}

func (l *cueListener) HealthChanged(health, _ int) {
	l.health = health
}

func (l *cueListener) Hit() {
	l.cues.PlayHit()
}

func (l *cueListener) StateChanged(_, to session.State) {
	// Game over is a stop caused by health, not by the player
	if to == session.Stopped && l.health == 0 {
		l.cues.PlayGameOver()
	}
}
