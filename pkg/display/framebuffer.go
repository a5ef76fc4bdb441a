package display

// Framebuffer is a 1 bit per pixel frame in SSD1306 page layout: each byte
// holds 8 vertically stacked pixels, bit 0 on top.
type Framebuffer struct {
	width  int
	height int
	buf    []byte
	sink   Sink
}

// NewFramebuffer allocates a cleared frame. sink may be nil.
func NewFramebuffer(width, height int, sink Sink) *Framebuffer {
	pages := (height + 7) / 8
	return &Framebuffer{
		width:  width,
		height: height,
		buf:    make([]byte, width*pages),
		sink:   sink,
	}
}

// Width returns the frame width in pixels.
func (f *Framebuffer) Width() int { return f.width }

// Height returns the frame height in pixels.
func (f *Framebuffer) Height() int { return f.height }

// Buffer returns the raw page-layout bytes. The slice is owned by f.
func (f *Framebuffer) Buffer() []byte { return f.buf }

// SetPixel sets one pixel. Out of range coordinates are ignored.
func (f *Framebuffer) SetPixel(x, y int, c Color) {
	if x < 0 || x >= f.width || y < 0 || y >= f.height {
		return
	}
	i := x + (y/8)*f.width
	if c != Black {
		f.buf[i] |= 1 << uint(y%8)
	} else {
		f.buf[i] &^= 1 << uint(y%8)
	}
}

// Pixel reports whether the pixel at x, y is lit.
func (f *Framebuffer) Pixel(x, y int) bool {
	if x < 0 || x >= f.width || y < 0 || y >= f.height {
		return false
	}
	return f.buf[x+(y/8)*f.width]&(1<<uint(y%8)) != 0
}

func (f *Framebuffer) Fill(c Color) {
	var v byte
	if c != Black {
		v = 0xFF
	}
	for i := range f.buf {
		f.buf[i] = v
	}
}

func (f *Framebuffer) HLine(x, y, length int, c Color) {
	for i := 0; i < length; i++ {
		f.SetPixel(x+i, y, c)
	}
}

func (f *Framebuffer) VLine(x, y, length int, c Color) {
	for i := 0; i < length; i++ {
		f.SetPixel(x, y+i, c)
	}
}

// Text draws s starting at x, y, advancing 8 pixels per character.
// Background pixels are left untouched.
func (f *Framebuffer) Text(s string, x, y int) {
	col := 0
	for _, r := range s {
		f.drawChar(x+col*8, y, r)
		col++
	}
}

// drawChar draws a single glyph with its top-left corner at x, y.
func (f *Framebuffer) drawChar(x, y int, r rune) {
	if x >= f.width || y >= f.height || x <= -8 || y <= -8 {
		return
	}
	bitmap := glyph(r)
	for row := 0; row < 8; row++ {
		bits := bitmap[row]
		for bit := 0; bit < 8; bit++ {
			if (bits>>uint(bit))&1 != 0 {
				f.SetPixel(x+bit, y+row, White)
			}
		}
	}
}

// Present hands the frame to the sink.
func (f *Framebuffer) Present() error {
	if f.sink == nil {
		return nil
	}
	return f.sink.Flush(f)
}
