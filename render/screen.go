package render

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/lixenwraith/voice-dodger/engine"
	"github.com/lixenwraith/voice-dodger/parameter"
	"github.com/lixenwraith/voice-dodger/session"
	"github.com/lixenwraith/voice-dodger/status"
	"github.com/lixenwraith/voice-dodger/vmath"
)

// Screen presents frames on a tcell screen
// Present runs on the game loop, Redraw on the input goroutine; the mutex serializes them
type Screen struct {
	screen  tcell.Screen
	palette Palette
	reg     *status.Registry
	debug   bool

	mu    sync.Mutex
	last  engine.Frame
	drawn bool
}

// NewScreen wraps an initialized tcell screen
// reg may be nil; metrics are shown on the status row only in debug mode
func NewScreen(screen tcell.Screen, mode ColorMode, reg *status.Registry, debug bool) *Screen {
	screen.HideCursor()
	return &Screen{
		screen:  screen,
		palette: NewPalette(mode),
		reg:     reg,
		debug:   debug,
	}
}

// Present implements engine.Presenter
func (s *Screen) Present(f engine.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.last = f
	s.drawn = true
	s.draw(f)
}

// Redraw repaints the last frame after a resize
func (s *Screen) Redraw() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.screen.Sync()
	if s.drawn {
		s.draw(s.last)
	}
}

func (s *Screen) draw(f engine.Frame) {
	s.screen.SetStyle(s.palette.Background)
	s.screen.Clear()

	w, h := s.screen.Size()
	l, ok := computeLayout(w, h)
	if !ok {
		drawText(s.screen, 0, 0, w, "terminal too small", s.palette.HUDAlert)
		s.screen.Show()
		return
	}

	s.drawHUD(l, f)
	s.drawBox(l)

	vp := newViewport(l.play, f.AreaWidth, f.AreaHeight)
	for _, o := range f.Obstacles {
		fillBox(s.screen, vp, o.Volume(), parameter.ObstacleChar, s.palette.Obstacle)
	}

	playerStyle := s.palette.Player
	if f.Player.Hit {
		playerStyle = s.palette.PlayerHit
	}
	fillBox(s.screen, vp, vmath.BoxAt(f.Player.Position, f.Player.Size), parameter.PlayerChar, playerStyle)

	s.drawBanner(l, f)
	s.drawBar(l, f)
	s.drawChart(l, f)
	s.drawStatus(l, f)

	s.screen.Show()
}

func (s *Screen) drawHUD(l layout, f engine.Frame) {
	x := drawText(s.screen, 0, l.hudY, l.width, fmt.Sprintf(" VOICE DODGER  SCORE %d  ", f.Session.Score), s.palette.HUD)

	for i := 0; i < f.Session.MaxHealth && x < l.width; i++ {
		if i < f.Session.Health {
			s.screen.SetContent(x, l.hudY, parameter.HealthChar, nil, s.palette.Health)
		} else {
			s.screen.SetContent(x, l.hudY, parameter.HealthLostChar, nil, s.palette.HealthLost)
		}
		x++
	}

	label, style := stateLabel(f.Session), s.palette.HUD
	if f.Session.State == session.Stopped && f.Session.Health == 0 {
		style = s.palette.HUDAlert
	}
	x = drawText(s.screen, x, l.hudY, l.width-x, "  "+label, style)

	if f.Control.PitchHz > 0 {
		drawText(s.screen, x, l.hudY, l.width-x, fmt.Sprintf("  %.0f Hz", f.Control.PitchHz), s.palette.HUD)
	}
}

func (s *Screen) drawBox(l layout) {
	b, st := l.box, s.palette.Border
	right, bottom := b.x+b.w-1, b.y+b.h-1

	for x := b.x + 1; x < right; x++ {
		s.screen.SetContent(x, b.y, tcell.RuneHLine, nil, st)
		s.screen.SetContent(x, bottom, tcell.RuneHLine, nil, st)
	}
	for y := b.y + 1; y < bottom; y++ {
		s.screen.SetContent(b.x, y, tcell.RuneVLine, nil, st)
		s.screen.SetContent(right, y, tcell.RuneVLine, nil, st)
	}
	s.screen.SetContent(b.x, b.y, tcell.RuneULCorner, nil, st)
	s.screen.SetContent(right, b.y, tcell.RuneURCorner, nil, st)
	s.screen.SetContent(b.x, bottom, tcell.RuneLLCorner, nil, st)
	s.screen.SetContent(right, bottom, tcell.RuneLRCorner, nil, st)
}

// drawBanner centers a prompt over the play area outside of Running
func (s *Screen) drawBanner(l layout, f engine.Frame) {
	var text string
	switch {
	case f.Session.State == session.Idle:
		text = "press Enter and use your voice: high goes up, low goes down"
	case f.Session.State == session.Stopped && f.Session.Health == 0:
		text = fmt.Sprintf("GAME OVER  score %d  press r", f.Session.Score)
	case f.Session.State == session.Stopped:
		text = fmt.Sprintf("stopped  score %d  press r", f.Session.Score)
	default:
		return
	}

	width := min(runewidth.StringWidth(text), l.play.w)
	x := l.play.x + (l.play.w-width)/2
	y := l.play.y + l.play.h/2
	drawText(s.screen, x, y, width, text, s.palette.HUD)
}

// drawBar shows the vertical velocity as a bar growing from the middle row, down for positive
func (s *Screen) drawBar(l layout, f engine.Frame) {
	b := l.bar
	mid := b.y + b.h/2
	s.screen.SetContent(b.x, mid, parameter.BarZeroChar, nil, s.palette.ChartAxis)

	fill := vmath.Clamp((0.5-f.Control.NormalizedPitch)*2, -1, 1)
	n := int(math.Round(math.Abs(fill) * float64(b.h/2)))

	for i := 1; i <= n; i++ {
		if fill > 0 {
			if y := mid + i; y < b.y+b.h {
				s.screen.SetContent(b.x, y, parameter.BarChar, nil, s.palette.BarDown)
			}
		} else if y := mid - i; y >= b.y {
			s.screen.SetContent(b.x, y, parameter.BarChar, nil, s.palette.BarUp)
		}
	}
}

// drawChart plots accepted pitch over time, newest on the right, high pitch at the top
func (s *Screen) drawChart(l layout, f engine.Frame) {
	c := l.chart
	if c.h == 0 || c.w == 0 {
		return
	}

	mid := c.y + c.h/2
	for x := c.x; x < c.x+c.w; x++ {
		s.screen.SetContent(x, mid, parameter.ChartAxis, nil, s.palette.ChartAxis)
	}

	if f.TraceWidth <= 0 {
		return
	}
	for _, p := range f.Trace {
		x := c.x + int(math.Round(p.X/f.TraceWidth*float64(c.w-1)))
		y := c.y + int(math.Round((1-vmath.Clamp(p.Normalized, 0, 1))*float64(c.h-1)))
		if c.contains(x, y) {
			s.screen.SetContent(x, y, parameter.ChartChar, nil, s.palette.Chart)
		}
	}
}

func (s *Screen) drawStatus(l layout, f engine.Frame) {
	for x := 0; x < l.width; x++ {
		s.screen.SetContent(x, l.statusY, ' ', nil, s.palette.Status)
	}

	switch {
	case f.Message != "":
		drawText(s.screen, 0, l.statusY, l.width, " "+f.Message, s.palette.Message)
	case s.debug && s.reg != nil:
		drawText(s.screen, 0, l.statusY, l.width, " "+strings.Join(s.reg.Lines(), " "), s.palette.Status)
	default:
		drawText(s.screen, 0, l.statusY, l.width, " "+parameter.HelpText, s.palette.Status)
	}
}

// stateLabel is the HUD text for the session state
func stateLabel(snap session.Snapshot) string {
	switch snap.State {
	case session.Idle:
		return "READY"
	case session.Running:
		return "RUNNING"
	case session.Stopped:
		if snap.Health == 0 {
			return "GAME OVER"
		}
		return "STOPPED"
	default:
		return snap.State.String()
	}
}

// fillBox paints every cell covered by box
func fillBox(scr tcell.Screen, vp viewport, box vmath.AABB, ch rune, style tcell.Style) {
	x0, y0, x1, y1, ok := vp.cells(box)
	if !ok {
		return
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			scr.SetContent(x, y, ch, nil, style)
		}
	}
}

// drawText writes text from x clipped to maxWidth cells, returning the column after the last cell written
func drawText(scr tcell.Screen, x, y, maxWidth int, text string, style tcell.Style) int {
	end := x + maxWidth
	for _, r := range text {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if x+w > end {
			break
		}
		scr.SetContent(x, y, r, nil, style)
		x += w
	}
	return x
}
