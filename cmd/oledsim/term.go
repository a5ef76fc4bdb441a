//go:build !rp2040

package main

import (
	"github.com/gdamore/tcell/v2"

	"github.com/tuffrabit/tinygo-oledpager/pkg/button"
	"github.com/tuffrabit/tinygo-oledpager/pkg/display"
)

var pixelStyle = tcell.StyleDefault.Foreground(tcell.ColorAqua).Background(tcell.ColorBlack)

// termSink shows a framebuffer with two pixels per terminal cell.
type termSink struct {
	screen tcell.Screen
}

func (t *termSink) Flush(fb *display.Framebuffer) error {
	for y := 0; y < fb.Height(); y += 2 {
		for x := 0; x < fb.Width(); x++ {
			t.screen.SetContent(x, y/2, cellRune(fb.Pixel(x, y), fb.Pixel(x, y+1)), nil, pixelStyle)
		}
	}
	t.screen.Show()
	return nil
}

// cellRune returns the half-block glyph for a vertical pixel pair.
func cellRune(top, bottom bool) rune {
	switch {
	case top && bottom:
		return '█'
	case top:
		return '▀'
	case bottom:
		return '▄'
	default:
		return ' '
	}
}

// keyPins maps keys to simulated button edges.
type keyPins struct {
	left, right, up, down *button.FakePin
}

// handle reports false when the key asks to quit.
func (k keyPins) handle(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyLeft:
		k.left.Fall()
	case tcell.KeyRight:
		k.right.Fall()
	case tcell.KeyUp:
		k.up.Fall()
	case tcell.KeyDown:
		k.down.Fall()
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return false
		case 'm':
			k.left.Fall()
			k.right.Fall()
		case 'c':
			k.up.Fall()
			k.down.Fall()
		}
	}
	return true
}
