package render

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
)

// ColorMode selects how styles are expressed to the terminal
type ColorMode int

const (
	ColorTrue  ColorMode = iota // 24-bit RGB
	ColorBasic                  // 16 named colors
	ColorMono                   // attributes only
)

func (m ColorMode) String() string {
	switch m {
	case ColorTrue:
		return "true"
	case ColorBasic:
		return "basic"
	case ColorMono:
		return "mono"
	default:
		return "unknown"
	}
}

// ParseColorMode accepts true, basic or mono; empty selects true
func ParseColorMode(s string) (ColorMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "true", "truecolor", "24bit":
		return ColorTrue, nil
	case "basic", "16", "256":
		return ColorBasic, nil
	case "mono", "none", "off":
		return ColorMono, nil
	default:
		return ColorTrue, fmt.Errorf("unknown color mode %q", s)
	}
}

// Palette holds every style the screen draws with
type Palette struct {
	Background tcell.Style
	Border     tcell.Style
	Player     tcell.Style
	PlayerHit  tcell.Style
	Obstacle   tcell.Style
	HUD        tcell.Style
	HUDAlert   tcell.Style
	Health     tcell.Style
	HealthLost tcell.Style
	Chart      tcell.Style
	ChartAxis  tcell.Style
	BarUp      tcell.Style
	BarDown    tcell.Style
	Status     tcell.Style
	Message    tcell.Style
}

// RGB values follow the Tokyo Night scheme
var (
	rgbBackground = tcell.NewRGBColor(26, 27, 38)
	rgbBorder     = tcell.NewRGBColor(86, 95, 137)
	rgbPlayer     = tcell.NewRGBColor(158, 206, 106)
	rgbPlayerHit  = tcell.NewRGBColor(247, 118, 142)
	rgbObstacle   = tcell.NewRGBColor(224, 175, 104)
	rgbText       = tcell.NewRGBColor(192, 202, 245)
	rgbAlert      = tcell.NewRGBColor(255, 80, 80)
	rgbHealth     = tcell.NewRGBColor(247, 118, 142)
	rgbDim        = tcell.NewRGBColor(65, 72, 104)
	rgbChart      = tcell.NewRGBColor(125, 207, 255)
	rgbBarUp      = tcell.NewRGBColor(115, 218, 202)
	rgbBarDown    = tcell.NewRGBColor(187, 154, 247)
	rgbStatusBg   = tcell.NewRGBColor(36, 40, 59)
)

// NewPalette builds the styles for mode
func NewPalette(mode ColorMode) Palette {
	base := tcell.StyleDefault

	switch mode {
	case ColorMono:
		return Palette{
			Background: base,
			Border:     base.Dim(true),
			Player:     base.Reverse(true),
			PlayerHit:  base.Reverse(true).Blink(true),
			Obstacle:   base.Bold(true),
			HUD:        base.Bold(true),
			HUDAlert:   base.Bold(true).Reverse(true),
			Health:     base.Bold(true),
			HealthLost: base.Dim(true),
			Chart:      base,
			ChartAxis:  base.Dim(true),
			BarUp:      base.Reverse(true),
			BarDown:    base.Reverse(true),
			Status:     base.Dim(true),
			Message:    base.Bold(true),
		}

	case ColorBasic:
		return Palette{
			Background: base,
			Border:     base.Foreground(tcell.ColorGray),
			Player:     base.Foreground(tcell.ColorGreen),
			PlayerHit:  base.Foreground(tcell.ColorRed),
			Obstacle:   base.Foreground(tcell.ColorYellow),
			HUD:        base.Foreground(tcell.ColorWhite).Bold(true),
			HUDAlert:   base.Foreground(tcell.ColorRed).Bold(true),
			Health:     base.Foreground(tcell.ColorRed),
			HealthLost: base.Foreground(tcell.ColorGray),
			Chart:      base.Foreground(tcell.ColorAqua),
			ChartAxis:  base.Foreground(tcell.ColorGray),
			BarUp:      base.Foreground(tcell.ColorTeal),
			BarDown:    base.Foreground(tcell.ColorPurple),
			Status:     base.Foreground(tcell.ColorSilver),
			Message:    base.Foreground(tcell.ColorYellow),
		}

	default:
		bg := base.Background(rgbBackground)
		return Palette{
			Background: bg,
			Border:     bg.Foreground(rgbBorder),
			Player:     bg.Foreground(rgbPlayer),
			PlayerHit:  bg.Foreground(rgbPlayerHit),
			Obstacle:   bg.Foreground(rgbObstacle),
			HUD:        bg.Foreground(rgbText).Bold(true),
			HUDAlert:   bg.Foreground(rgbAlert).Bold(true),
			Health:     bg.Foreground(rgbHealth),
			HealthLost: bg.Foreground(rgbDim),
			Chart:      bg.Foreground(rgbChart),
			ChartAxis:  bg.Foreground(rgbDim),
			BarUp:      bg.Foreground(rgbBarUp),
			BarDown:    bg.Foreground(rgbBarDown),
			Status:     base.Background(rgbStatusBg).Foreground(rgbText),
			Message:    bg.Foreground(rgbObstacle),
		}
	}
}
