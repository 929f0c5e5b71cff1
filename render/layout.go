package render

import (
	"math"

	"github.com/lixenwraith/voice-dodger/parameter"
	"github.com/lixenwraith/voice-dodger/vmath"
)

// rect is a cell rectangle
type rect struct {
	x, y, w, h int
}

func (r rect) contains(x, y int) bool {
	return x >= r.x && x < r.x+r.w && y >= r.y && y < r.y+r.h
}

// layout splits the terminal into HUD, play box, velocity bar, pitch chart and status row
type layout struct {
	width, height int

	hudY    int
	statusY int
	box     rect // play area including border
	play    rect // play area inside the border
	bar     rect // velocity bar column
	chart   rect // pitch chart, zero height when hidden
}

// computeLayout returns false when the terminal is too small to play in
func computeLayout(width, height int) (layout, bool) {
	if width < parameter.MinScreenWidth || height < parameter.MinScreenHeight {
		return layout{width: width, height: height}, false
	}

	chartRows := 0
	if height >= parameter.ChartMinScreenRows {
		chartRows = parameter.ChartRows
	}

	l := layout{
		width:   width,
		height:  height,
		hudY:    0,
		statusY: height - 1,
	}
	l.box = rect{
		x: 0,
		y: parameter.TopMargin,
		w: width - parameter.RightMargin,
		h: height - parameter.TopMargin - parameter.BottomMargin - chartRows,
	}
	l.play = rect{x: l.box.x + 1, y: l.box.y + 1, w: l.box.w - 2, h: l.box.h - 2}
	l.bar = rect{x: width - 1, y: l.play.y, w: 1, h: l.play.h}
	l.chart = rect{x: 1, y: l.box.y + l.box.h, w: width - 2, h: chartRows}
	return l, true
}

// viewport maps play-area units onto the play rectangle
type viewport struct {
	area   rect
	sx, sy float64
}

func newViewport(area rect, areaW, areaH float64) viewport {
	v := viewport{area: area}
	if areaW > 0 {
		v.sx = float64(area.w) / areaW
	}
	if areaH > 0 {
		v.sy = float64(area.h) / areaH
	}
	return v
}

// cells returns the clipped cell span covered by box, and false when nothing is visible
// Every visible box covers at least one cell
func (v viewport) cells(box vmath.AABB) (x0, y0, x1, y1 int, ok bool) {
	bMax := box.Max()
	x0 = v.area.x + int(math.Floor(box.Min.X*v.sx))
	y0 = v.area.y + int(math.Floor(box.Min.Y*v.sy))
	x1 = v.area.x + int(math.Ceil(bMax.X*v.sx)) - 1
	y1 = v.area.y + int(math.Ceil(bMax.Y*v.sy)) - 1
	x1 = max(x1, x0)
	y1 = max(y1, y0)

	x0 = max(x0, v.area.x)
	y0 = max(y0, v.area.y)
	x1 = min(x1, v.area.x+v.area.w-1)
	y1 = min(y1, v.area.y+v.area.h-1)
	return x0, y0, x1, y1, x0 <= x1 && y0 <= y1
}
