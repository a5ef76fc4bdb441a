// Package layout computes the text grid of the display.
//
// The font cell is fixed at 8x8 pixels. One line's worth of pixel rows at
// the bottom is reserved for the status bar.
package layout

import (
	"strconv"

	"github.com/tuffrabit/tinygo-oledpager/pkg/errcode"
)

const (
	// CellWidth and CellHeight are the font cell size in pixels.
	CellWidth  = 8
	CellHeight = 8

	// statusRows is the number of text lines reserved for the status bar.
	statusRows = 1
)

// Geometry is the text layout for one display. It is immutable.
type Geometry struct {
	width      int
	height     int
	lineLength int
	lines      int
}

// New derives the layout for a width x height pixel display.
func New(width, height int) (Geometry, error) {
	g := Geometry{
		width:      width,
		height:     height,
		lineLength: width / CellWidth,
		lines:      height/CellHeight - statusRows,
	}
	if g.lineLength < 1 || g.lines < 1 {
		return Geometry{}, &errcode.E{
			C:   errcode.InvalidConfig,
			Op:  "layout.New",
			Msg: strconv.Itoa(width) + "x" + strconv.Itoa(height) + " leaves no text area",
		}
	}
	return g, nil
}

// Width is the display width in pixels.
func (g Geometry) Width() int { return g.width }

// Height is the display height in pixels.
func (g Geometry) Height() int { return g.height }

// LineLength is the number of characters per line.
func (g Geometry) LineLength() int { return g.lineLength }

// Lines is the number of text lines above the status bar.
func (g Geometry) Lines() int { return g.lines }

// Capacity is the number of characters one page can hold.
func (g Geometry) Capacity() int { return g.lineLength * g.lines }

// StatusY is the top pixel row of the status bar.
func (g Geometry) StatusY() int { return g.height - 7 }
