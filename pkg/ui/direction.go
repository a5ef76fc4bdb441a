package ui

import "strings"

// Direction is one of the four buttons.
type Direction uint8

const (
	Left Direction = 1 << iota
	Right
	Up
	Down
)

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return "?"
	}
}

// Directions is the unordered set of buttons pressed in one tick.
type Directions uint8

// Press builds a set from individual directions.
func Press(dirs ...Direction) Directions {
	var s Directions
	for _, d := range dirs {
		s |= Directions(d)
	}
	return s
}

// Has reports whether d is in the set.
func (s Directions) Has(d Direction) bool { return s&Directions(d) != 0 }

// Count returns the number of directions in the set.
func (s Directions) Count() int {
	n := 0
	for _, d := range []Direction{Left, Right, Up, Down} {
		if s.Has(d) {
			n++
		}
	}
	return n
}

func (s Directions) String() string {
	var parts []string
	for _, d := range []Direction{Left, Right, Up, Down} {
		if s.Has(d) {
			parts = append(parts, d.String())
		}
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Input is a debounced button. Poll reports a new press at most once.
type Input interface {
	Poll() bool
}

// Inputs binds one Input per direction.
type Inputs struct {
	Left  Input
	Right Input
	Up    Input
	Down  Input
}

func (in Inputs) complete() bool {
	return in.Left != nil && in.Right != nil && in.Up != nil && in.Down != nil
}

// poll samples every input exactly once.
func (in Inputs) poll() Directions {
	var s Directions
	if in.Left.Poll() {
		s |= Directions(Left)
	}
	if in.Right.Poll() {
		s |= Directions(Right)
	}
	if in.Up.Poll() {
		s |= Directions(Up)
	}
	if in.Down.Poll() {
		s |= Directions(Down)
	}
	return s
}
