package display

import (
	"github.com/tuffrabit/tinygo-oledpager/pkg/layout"
)

// Status bar positions, in pixels.
const (
	leftTickX     = 16 // vertical tick after the left indicator
	rightTickFrom = 16 // distance of the right tick from the right edge
	modeNameX     = 17
	rightTextFrom = 15
)

// Renderer maps text lines and status indicators onto a Surface.
type Renderer struct {
	s   Surface
	geo layout.Geometry
}

// NewRenderer returns a renderer for s laid out by geo.
func NewRenderer(s Surface, geo layout.Geometry) *Renderer {
	return &Renderer{s: s, geo: geo}
}

// Surface returns the underlying drawing target.
func (r *Renderer) Surface() Surface { return r.s }

// Geometry returns the text layout.
func (r *Renderer) Geometry() layout.Geometry { return r.geo }

// BaseFrame clears the frame and draws the status bar: a divider across the
// bottom line, two short ticks flanking it and the mode name.
func (r *Renderer) BaseFrame(mode string) {
	y := r.geo.StatusY()
	w := r.geo.Width()

	r.s.Fill(Black)
	r.s.HLine(0, y, w, White)
	r.s.VLine(leftTickX, y, layout.CellHeight, White)
	r.s.VLine(w-rightTickFrom, y, layout.CellHeight, White)
	r.s.Text(mode, modeNameX, y)
}

// StatusLeft draws s at the left end of the status bar.
func (r *Renderer) StatusLeft(s string) {
	r.s.Text(s, 0, r.geo.StatusY())
}

// StatusRight draws s at the right end of the status bar.
func (r *Renderer) StatusRight(s string) {
	r.s.Text(s, r.geo.Width()-rightTextFrom, r.geo.StatusY())
}

// StatusText draws s in the status bar at x pixels from the right edge.
func (r *Renderer) StatusText(s string, fromRight int) {
	r.s.Text(s, r.geo.Width()-fromRight, r.geo.StatusY())
}

// Divider draws a status bar tick at x pixels from the right edge.
func (r *Renderer) Divider(fromRight int) {
	r.s.VLine(r.geo.Width()-fromRight, r.geo.StatusY(), layout.CellHeight, White)
}

// Underline draws a rule under text line row, chars characters wide.
func (r *Renderer) Underline(row, chars int) {
	r.s.HLine(0, (row+1)*layout.CellHeight, chars*layout.CellWidth, White)
}

// Present flushes the frame.
func (r *Renderer) Present() error {
	return r.s.Present()
}

// DrawLine writes text on line, one 8x8 cell per character, left to right.
// Byte content is treated as character codes.
func DrawLine[T string | []byte | []rune](r *Renderer, line int, text T) {
	y := line * layout.CellHeight
	switch v := any(text).(type) {
	case string:
		col := 0
		for _, ch := range v {
			r.s.Text(string(ch), col*layout.CellWidth, y)
			col++
		}
	case []byte:
		for col, b := range v {
			r.s.Text(string(rune(b)), col*layout.CellWidth, y)
		}
	case []rune:
		for col, ch := range v {
			r.s.Text(string(ch), col*layout.CellWidth, y)
		}
	}
}
