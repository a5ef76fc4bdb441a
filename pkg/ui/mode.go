package ui

import (
	"strconv"

	"github.com/tuffrabit/tinygo-oledpager/pkg/errcode"
)

// Mode names a display mode.
type Mode string

const (
	// ModeSelect is the reserved menu pseudo-mode. It cannot be registered.
	ModeSelect Mode = "select"

	ModeText Mode = "text"
	ModeInfo Mode = "info"
)

// HandlerFunc reacts to the buttons pressed in one tick.
type HandlerFunc func(m *Machine, pressed Directions)

// RenderFunc draws one frame. The frame is presented by the caller.
type RenderFunc func(m *Machine)

// ModeSpec pairs a content mode with its input handler and renderer.
type ModeSpec struct {
	Name   Mode
	Handle HandlerFunc
	Render RenderFunc
}

// DefaultModes returns the built-in content modes in menu order.
func DefaultModes() []ModeSpec {
	return []ModeSpec{
		{Name: ModeText, Handle: (*Machine).handleText, Render: (*Machine).renderText},
		{Name: ModeInfo, Handle: (*Machine).handleInfo, Render: (*Machine).renderInfo},
	}
}

func selectSpec() ModeSpec {
	return ModeSpec{Name: ModeSelect, Handle: (*Machine).handleSelect, Render: (*Machine).renderSelect}
}

// Part names the missing half of an incomplete mode.
type Part uint8

const (
	PartHandler Part = iota + 1
	PartRenderer
)

func (p Part) String() string {
	switch p {
	case PartHandler:
		return "input handler"
	case PartRenderer:
		return "renderer"
	default:
		return "part"
	}
}

// IncompleteModeError reports a mode registered without a handler or a
// renderer. It matches errcode.IncompleteMode under errors.Is.
type IncompleteModeError struct {
	Mode Mode
	Part Part
}

func (e *IncompleteModeError) Error() string {
	return string(errcode.IncompleteMode) + ": mode " + string(e.Mode) + " has no " + e.Part.String()
}

func (e *IncompleteModeError) Code() errcode.Code { return errcode.IncompleteMode }

func (e *IncompleteModeError) Is(target error) bool {
	return target == error(errcode.IncompleteMode)
}

func invalidMode(op string, name Mode, why string) error {
	return &errcode.E{C: errcode.InvalidMode, Op: op, Msg: why + " " + strconv.Quote(string(name))}
}

// buildTable validates specs and indexes them by name.
func buildTable(specs []ModeSpec) (map[Mode]int, error) {
	if len(specs) == 0 {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "ui.New", Msg: "no content modes"}
	}
	byName := make(map[Mode]int, len(specs))
	for i, s := range specs {
		switch {
		case s.Name == "":
			return nil, invalidMode("ui.New", s.Name, "empty mode name")
		case s.Name == ModeSelect:
			return nil, invalidMode("ui.New", s.Name, "reserved mode name")
		}
		if _, dup := byName[s.Name]; dup {
			return nil, invalidMode("ui.New", s.Name, "duplicate mode")
		}
		if s.Handle == nil {
			return nil, &IncompleteModeError{Mode: s.Name, Part: PartHandler}
		}
		if s.Render == nil {
			return nil, &IncompleteModeError{Mode: s.Name, Part: PartRenderer}
		}
		byName[s.Name] = i
	}
	return byName, nil
}
