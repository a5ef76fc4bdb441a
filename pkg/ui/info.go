package ui

import (
	"strconv"
	"time"

	"github.com/tuffrabit/tinygo-oledpager/pkg/display"
)

// handleInfo resets the press counter on up+down.
func (m *Machine) handleInfo(pressed Directions) {
	if pressed.Has(Up) && pressed.Has(Down) {
		m.presses = 0
	}
}

// renderInfo shows store usage, the text page in view, the press counter
// and uptime.
func (m *Machine) renderInfo() {
	m.r.BaseFrame(string(m.mode))

	up := m.now().Sub(m.started).Truncate(time.Second)
	rows := []string{
		"pages " + strconv.Itoa(m.store.PageCount()),
		"used  " + display.Percent(m.store.UsedPercent()),
		"page  " + display.PageIndicator(m.page),
		"keys  " + strconv.Itoa(m.presses),
		"up    " + up.String(),
	}
	for i, s := range rows {
		if i >= m.geo.Lines() {
			break
		}
		display.DrawLine(m.r, i, display.Truncate(s, m.geo.LineLength()))
	}
}
