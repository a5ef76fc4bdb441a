// Package ui runs the pager: it polls the four buttons, dispatches them to
// the active display mode and redraws the frame, once per tick.
//
// Modes are a static table of (handler, renderer) pairs validated when the
// Machine is built. The reserved select mode is the menu used to switch
// between content modes; pressing left and right together opens it from
// anywhere.
package ui

import (
	"context"
	"log/slog"
	"time"

	"github.com/tuffrabit/tinygo-oledpager/pkg/display"
	"github.com/tuffrabit/tinygo-oledpager/pkg/errcode"
	"github.com/tuffrabit/tinygo-oledpager/pkg/layout"
)

// DefaultTickDelay is the pause between input handling and rendering.
const DefaultTickDelay = 100 * time.Millisecond

// commandQueue is the capacity of the Post queue.
const commandQueue = 8

// TextStore is the text collaborator. Pages are sequences of lines; each
// line holds at most Geometry.LineLength character codes.
type TextStore interface {
	Append(text string)
	Clear()
	PageCount() int
	Page(index int) [][]byte
	UsedPercent() int
}

// Config wires a Machine.
type Config struct {
	Surface  display.Surface
	Geometry layout.Geometry
	Store    TextStore
	Inputs   Inputs

	// Modes are the content modes in menu order. Nil means DefaultModes.
	Modes []ModeSpec

	// Initial is the mode entered at boot. Empty means the first mode.
	Initial Mode

	// TickDelay defaults to DefaultTickDelay.
	TickDelay time.Duration

	Logger *slog.Logger
}

// Machine is the display mode state machine. Everything except Post and
// HasMode must be called from the goroutine running the loop.
type Machine struct {
	log    *slog.Logger
	r      *display.Renderer
	geo    layout.Geometry
	store  TextStore
	inputs Inputs
	tick   time.Duration

	modes      []ModeSpec
	byName     map[Mode]int
	selectMode ModeSpec

	mode   Mode
	active ModeSpec

	selection int // menu cursor, [0, len(modes)-1]
	page      int // text page, [0, store.PageCount()-1]

	presses int
	started time.Time
	now     func() time.Time

	cmds chan Command
}

// New validates cfg and returns a Machine in its initial mode.
func New(cfg Config) (*Machine, error) {
	switch {
	case cfg.Surface == nil:
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "ui.New", Msg: "no display surface"}
	case cfg.Store == nil:
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "ui.New", Msg: "no text store"}
	case !cfg.Inputs.complete():
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "ui.New", Msg: "missing button input"}
	case cfg.Geometry.Lines() < 1:
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "ui.New", Msg: "no text area"}
	}

	modes := cfg.Modes
	if modes == nil {
		modes = DefaultModes()
	}
	byName, err := buildTable(modes)
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	tick := cfg.TickDelay
	if tick <= 0 {
		tick = DefaultTickDelay
	}

	m := &Machine{
		log:        logger,
		r:          display.NewRenderer(cfg.Surface, cfg.Geometry),
		geo:        cfg.Geometry,
		store:      cfg.Store,
		inputs:     cfg.Inputs,
		tick:       tick,
		modes:      append([]ModeSpec(nil), modes...),
		byName:     byName,
		selectMode: selectSpec(),
		now:        time.Now,
		cmds:       make(chan Command, commandQueue),
	}
	m.started = m.now()

	initial := cfg.Initial
	if initial == "" {
		initial = m.modes[0].Name
	}
	if err := m.SetMode(initial); err != nil {
		return nil, err
	}
	return m, nil
}

// Mode returns the active mode.
func (m *Machine) Mode() Mode { return m.mode }

// Selection returns the menu cursor.
func (m *Machine) Selection() int { return m.selection }

// Page returns the text page being viewed.
func (m *Machine) Page() int { return m.page }

// Modes returns the content mode names in menu order.
func (m *Machine) Modes() []Mode {
	names := make([]Mode, len(m.modes))
	for i, s := range m.modes {
		names[i] = s.Name
	}
	return names
}

// HasMode reports whether name can be passed to SetMode. Safe for
// concurrent use.
func (m *Machine) HasMode(name Mode) bool {
	if name == ModeSelect {
		return true
	}
	_, ok := m.byName[name]
	return ok
}

// SetMode switches the active mode. Unknown names fail with
// errcode.InvalidMode, modes lacking a handler or renderer with
// *IncompleteModeError.
func (m *Machine) SetMode(name Mode) error {
	spec, err := m.lookup(name)
	if err != nil {
		return err
	}
	if name != m.mode {
		m.log.Info("mode", "from", string(m.mode), "to", string(name))
	}
	m.mode = name
	m.active = spec
	return nil
}

func (m *Machine) lookup(name Mode) (ModeSpec, error) {
	var spec ModeSpec
	if name == ModeSelect {
		spec = m.selectMode
	} else {
		i, ok := m.byName[name]
		if !ok {
			return ModeSpec{}, invalidMode("ui.SetMode", name, "unknown mode")
		}
		spec = m.modes[i]
	}
	if spec.Handle == nil {
		return ModeSpec{}, &IncompleteModeError{Mode: name, Part: PartHandler}
	}
	if spec.Render == nil {
		return ModeSpec{}, &IncompleteModeError{Mode: name, Part: PartRenderer}
	}
	return spec, nil
}

// openMenu enters the select mode with the cursor on the first entry.
func (m *Machine) openMenu() {
	m.selection = 0
	m.mode = ModeSelect
	m.active = m.selectMode
}

// Tick runs the input half of one loop iteration: pending commands, one
// poll of every button, then either the menu shortcut or the active
// mode's handler.
func (m *Machine) Tick() {
	m.drainCommands()

	pressed := m.inputs.poll()
	m.presses += pressed.Count()

	if pressed.Has(Left) && pressed.Has(Right) {
		if m.mode != ModeSelect {
			m.log.Info("mode", "from", string(m.mode), "to", string(ModeSelect))
		}
		m.openMenu()
		return
	}
	m.active.Handle(m, pressed)
}

// Draw renders the active mode and presents the frame.
func (m *Machine) Draw() error {
	m.active.Render(m)
	return m.r.Present()
}

// start shows the boot frame.
func (m *Machine) start() error {
	m.log.Info("starting display")
	m.r.Surface().Fill(display.Black)
	m.store.Append("Starting...\n")
	return m.r.Present()
}

// Run shows the boot frame and loops until ctx is cancelled. The tick
// delay sits between input handling and rendering; it is the loop's only
// suspension point.
func (m *Machine) Run(ctx context.Context) error {
	if err := m.start(); err != nil {
		return err
	}

	timer := time.NewTimer(m.tick)
	defer timer.Stop()

	for {
		m.Tick()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}

		if err := m.Draw(); err != nil {
			return err
		}
		timer.Reset(m.tick)
	}
}
