package ui

import (
	"strconv"

	"github.com/tuffrabit/tinygo-oledpager/pkg/display"
	"github.com/tuffrabit/tinygo-oledpager/pkg/mathx"
)

// handleSelect moves the menu cursor with left/right and commits the
// highlighted mode with up or down. The cursor is clamped right after it
// moves, so a commit always names a registered mode.
func (m *Machine) handleSelect(pressed Directions) {
	last := len(m.modes) - 1
	switch {
	case pressed.Has(Right):
		m.selection = mathx.Clamp(m.selection+1, 0, last)
	case pressed.Has(Left):
		m.selection = mathx.Clamp(m.selection-1, 0, last)
	case pressed.Has(Up) || pressed.Has(Down):
		m.selection = mathx.Clamp(m.selection, 0, last)
		if err := m.SetMode(m.modes[m.selection].Name); err != nil {
			m.log.Error("select mode", "err", err)
		}
	}
}

// renderSelect lists the content modes, one per line, and underlines the
// highlighted one. Long menus scroll a screenful at a time.
func (m *Machine) renderSelect() {
	m.r.BaseFrame(string(ModeSelect))
	m.r.StatusLeft(display.PageIndicator(m.selection))
	m.r.StatusRight(strconv.Itoa(len(m.modes)))

	lines := m.geo.Lines()
	width := m.geo.LineLength()
	first := (m.selection / lines) * lines

	name := string(m.modes[m.selection].Name)
	m.r.Underline(m.selection-first, len(display.Truncate(name, width)))

	for row := 0; row < lines && first+row < len(m.modes); row++ {
		display.DrawLine(m.r, row, display.Truncate(string(m.modes[first+row].Name), width))
	}
}
