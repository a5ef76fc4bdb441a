package ui

import (
	"strconv"

	"github.com/tuffrabit/tinygo-oledpager/pkg/display"
	"github.com/tuffrabit/tinygo-oledpager/pkg/mathx"
)

// Status bar offsets of the capacity indicator, from the right edge.
const (
	usedDividerFrom = 42
	usedTextFrom    = 40
)

// handleText pages through the text store. Up and down together clear it.
func (m *Machine) handleText(pressed Directions) {
	if pressed.Has(Up) && pressed.Has(Down) {
		m.log.Info("clearing the text buffer")
		m.store.Clear()
		m.page = 0
	}
	switch {
	case pressed.Has(Right):
		m.page++
	case pressed.Has(Left):
		m.page--
	}
	m.page = mathx.Clamp(m.page, 0, m.store.PageCount()-1)
}

func (m *Machine) renderText() {
	m.r.BaseFrame(string(m.mode))
	m.r.StatusLeft(display.PageIndicator(m.page))
	m.r.StatusRight(strconv.Itoa(m.store.PageCount()))
	m.r.Divider(usedDividerFrom)
	m.r.StatusText(display.Percent(m.store.UsedPercent()), usedTextFrom)

	for i, line := range m.store.Page(m.page) {
		if i >= m.geo.Lines() {
			break
		}
		display.DrawLine(m.r, i, line)
	}
}
