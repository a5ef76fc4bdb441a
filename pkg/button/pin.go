package button

// Pull selects the input pull resistor.
type Pull uint8

const (
	PullDown Pull = iota
	PullUp
	PullNone
)

func (p Pull) String() string {
	switch p {
	case PullDown:
		return "pulldown"
	case PullUp:
		return "pullup"
	default:
		return "none"
	}
}

// Pin is a claimed digital input.
type Pin interface {
	// ConfigureInput makes the pin a digital input with the given pull resistor.
	ConfigureInput(pull Pull) error

	// OnFallingEdge registers fn to run on every falling edge. fn may run in
	// interrupt context. A nil fn disables the interrupt.
	OnFallingEdge(fn func()) error
}

// Board hands out pins. A pin can be claimed once until it is released.
type Board interface {
	Claim(id int) (Pin, error)
	Release(id int)
}
