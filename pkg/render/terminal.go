// pkg/render/terminal.go
package render

import (
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/opd-ai/go-arena/pkg/engine"
	"github.com/opd-ai/go-arena/pkg/physics"
)

// Overlay colours.
var (
	StyleIdle      = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	StyleColliding = tcell.StyleDefault.Foreground(tcell.ColorRed)
	StyleStatus    = tcell.StyleDefault.Foreground(tcell.ColorYellow)
)

// maxCircleSteps bounds the points plotted for one circle outline.
const maxCircleSteps = 4096

// TerminalRenderer draws collider outlines on a tcell screen. Outlines are
// red while their entity is in an ongoing collision and white otherwise.
// With the overlay off only entity centres are drawn.
type TerminalRenderer struct {
	screen    tcell.Screen
	scale     float64
	centerPos physics.Vector2D
	overlay   bool
}

// NewTerminalRenderer creates a renderer on screen. scale is world units
// per terminal cell.
func NewTerminalRenderer(screen tcell.Screen, scale float64) *TerminalRenderer {
	if scale <= 0 {
		scale = 1
	}
	return &TerminalRenderer{
		screen:  screen,
		scale:   scale,
		overlay: true,
	}
}

// SetCenter sets the center position of the view
func (r *TerminalRenderer) SetCenter(pos physics.Vector2D) {
	r.centerPos = pos
}

// SetScale sets world units per cell.
func (r *TerminalRenderer) SetScale(scale float64) {
	if scale > 0 {
		r.scale = scale
	}
}

// FitWorld picks a scale that shows a square world of worldSize.
func (r *TerminalRenderer) FitWorld(worldSize float64) {
	w, h := r.screen.Size()
	if w <= 0 || h <= 1 || worldSize <= 0 {
		return
	}
	r.scale = worldSize / float64(min(w, h-1))
}

// SetOverlay turns outline drawing on or off.
func (r *TerminalRenderer) SetOverlay(on bool) {
	r.overlay = on
}

// ToggleOverlay flips outline drawing and returns the new state.
func (r *TerminalRenderer) ToggleOverlay() bool {
	r.overlay = !r.overlay
	return r.overlay
}

// Overlay reports whether outlines are drawn.
func (r *TerminalRenderer) Overlay() bool {
	return r.overlay
}

// WorldToScreen converts world coordinates to screen coordinates
func (r *TerminalRenderer) WorldToScreen(pos physics.Vector2D) (int, int) {
	w, h := r.screen.Size()
	screenX := int(math.Floor((pos.X-r.centerPos.X)/r.scale + float64(w)/2))
	screenY := int(math.Floor((pos.Y-r.centerPos.Y)/r.scale + float64(h)/2))
	return screenX, screenY
}

// ScreenToWorld converts a cell to the world position of its centre.
func (r *TerminalRenderer) ScreenToWorld(x, y int) physics.Vector2D {
	w, h := r.screen.Size()
	return physics.Vector2D{
		X: (float64(x)+0.5-float64(w)/2)*r.scale + r.centerPos.X,
		Y: (float64(y)+0.5-float64(h)/2)*r.scale + r.centerPos.Y,
	}
}

// Clear implements Renderer.
func (r *TerminalRenderer) Clear() {
	r.screen.Clear()
}

// Present implements Renderer.
func (r *TerminalRenderer) Present() {
	r.screen.Show()
}

// RenderEntity implements Renderer.
func (r *TerminalRenderer) RenderEntity(e engine.EntityState) {
	style := StyleIdle
	if e.Colliding {
		style = StyleColliding
	}

	if r.overlay && e.HasShape {
		switch e.Shape.Kind() {
		case physics.ShapeRect:
			r.drawRect(e.Shape.Bounds(e.Position), style)
		case physics.ShapeCircle:
			r.drawCircle(e.Position, e.Shape.Radius(), style)
		}
	}

	x, y := r.WorldToScreen(e.Position)
	r.set(x, y, glyph(e), style)
}

// RenderStatus implements Renderer.
func (r *TerminalRenderer) RenderStatus(state *engine.GameState) {
	for i, ch := range StatusLine(state, r.overlay) {
		r.set(i, 0, ch, StyleStatus)
	}
}

func (r *TerminalRenderer) drawRect(b physics.AABB, style tcell.Style) {
	w, h := r.screen.Size()
	// Edges beyond the screen land on -1 or w/h and are dropped by set.
	x0, y0 := r.clampedScreen(b.Min, w, h)
	x1, y1 := r.clampedScreen(b.Max, w, h)
	for x := max(x0, 0); x <= min(x1, w-1); x++ {
		r.set(x, y0, '-', style)
		r.set(x, y1, '-', style)
	}
	for y := max(y0, 0); y <= min(y1, h-1); y++ {
		r.set(x0, y, '|', style)
		r.set(x1, y, '|', style)
	}
	for _, c := range [][2]int{{x0, y0}, {x1, y0}, {x0, y1}, {x1, y1}} {
		r.set(c[0], c[1], '+', style)
	}
}

// clampedScreen is WorldToScreen limited to one cell outside the screen on
// each side, so unbounded coordinates stay representable.
func (r *TerminalRenderer) clampedScreen(pos physics.Vector2D, w, h int) (int, int) {
	clampAxis := func(v, center float64, size int) int {
		f := math.Floor((v-center)/r.scale + float64(size)/2)
		switch {
		case math.IsNaN(f), f < -1:
			return -1
		case f > float64(size):
			return size
		}
		return int(f)
	}
	return clampAxis(pos.X, r.centerPos.X, w), clampAxis(pos.Y, r.centerPos.Y, h)
}

func (r *TerminalRenderer) drawCircle(center physics.Vector2D, radius float64, style tcell.Style) {
	if math.IsInf(radius, 0) || math.IsNaN(radius) {
		return
	}
	cells := radius / r.scale
	steps := min(maxCircleSteps, max(8, int(math.Ceil(2*math.Pi*cells*2))))
	for i := 0; i < steps; i++ {
		angle := 2 * math.Pi * float64(i) / float64(steps)
		x, y := r.WorldToScreen(center.Add(physics.FromAngle(angle, radius)))
		r.set(x, y, '.', style)
	}
}

func (r *TerminalRenderer) set(x, y int, ch rune, style tcell.Style) {
	w, h := r.screen.Size()
	if x >= 0 && x < w && y >= 0 && y < h {
		r.screen.SetContent(x, y, ch, nil, style)
	}
}

func glyph(e engine.EntityState) rune {
	switch e.Team {
	case "player":
		return '@'
	case "enemy":
		return 'E'
	}
	if e.Name != "" {
		return []rune(e.Name)[0]
	}
	return '*'
}
