// Package display draws the paged text UI on a small monochrome panel.
//
// Drawing goes through Surface. Framebuffer is the in-memory Surface used on
// every target; Present hands the finished frame to a Sink (the SSD1306 panel
// on the board, a terminal in the simulator).
package display

// Color is a monochrome pixel value.
type Color uint8

const (
	Black Color = 0
	White Color = 1
)

// Surface is the pixel-level drawing target. Coordinates are pixel offsets
// from the top-left corner. Text is drawn with the 8x8 font, set pixels
// only.
type Surface interface {
	Fill(c Color)
	HLine(x, y, length int, c Color)
	VLine(x, y, length int, c Color)
	Text(s string, x, y int)
	Present() error
}

// Sink receives finished frames.
type Sink interface {
	Flush(fb *Framebuffer) error
}
