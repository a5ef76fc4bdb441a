package ui

import (
	"github.com/tuffrabit/tinygo-oledpager/pkg/mathx"
)

// CommandKind selects what a Command does.
type CommandKind uint8

const (
	CmdClear CommandKind = iota + 1
	CmdMode
	CmdPage
)

// Command is a request from outside the loop goroutine.
type Command struct {
	Kind CommandKind
	Mode Mode // CmdMode
	Page int  // CmdPage, zero-based
}

// Post queues c for the next tick. It never blocks and reports false when
// the queue is full. Safe for concurrent use.
func (m *Machine) Post(c Command) bool {
	select {
	case m.cmds <- c:
		return true
	default:
		return false
	}
}

func (m *Machine) drainCommands() {
	for {
		select {
		case c := <-m.cmds:
			m.apply(c)
		default:
			return
		}
	}
}

func (m *Machine) apply(c Command) {
	switch c.Kind {
	case CmdClear:
		m.log.Info("clearing the text buffer")
		m.store.Clear()
		m.page = 0
	case CmdMode:
		if c.Mode == ModeSelect {
			m.openMenu()
			return
		}
		if err := m.SetMode(c.Mode); err != nil {
			m.log.Warn("mode command", "err", err)
		}
	case CmdPage:
		m.page = mathx.Clamp(c.Page, 0, m.store.PageCount()-1)
	default:
		m.log.Warn("unknown command", "kind", int(c.Kind))
	}
}
