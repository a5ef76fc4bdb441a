//go:build rp2040

package button

import (
	"machine"
	"strconv"
	"sync"

	"github.com/tuffrabit/tinygo-oledpager/pkg/errcode"
)

// MachineBoard claims RP2040 GPIOs, GP0..GP28.
type MachineBoard struct {
	mu      sync.Mutex
	claimed map[int]bool
}

// NewMachineBoard returns a board with no pins claimed.
func NewMachineBoard() *MachineBoard {
	return &MachineBoard{claimed: make(map[int]bool)}
}

func (b *MachineBoard) Claim(id int) (Pin, error) {
	if id < 0 || id > 28 {
		return nil, &errcode.E{C: errcode.UnknownPin, Op: "claim", Msg: "GP" + strconv.Itoa(id)}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.claimed[id] {
		return nil, &errcode.E{C: errcode.PinInUse, Op: "claim", Msg: "GP" + strconv.Itoa(id)}
	}
	b.claimed[id] = true
	return &rp2Pin{p: machine.Pin(id)}, nil
}

func (b *MachineBoard) Release(id int) {
	b.mu.Lock()
	delete(b.claimed, id)
	b.mu.Unlock()
}

type rp2Pin struct {
	p machine.Pin
}

func (r *rp2Pin) ConfigureInput(pull Pull) error {
	var mode machine.PinMode
	switch pull {
	case PullUp:
		mode = machine.PinInputPullup
	case PullDown:
		mode = machine.PinInputPulldown
	default:
		mode = machine.PinInput
	}
	r.p.Configure(machine.PinConfig{Mode: mode})
	return nil
}

func (r *rp2Pin) OnFallingEdge(fn func()) error {
	if fn == nil {
		var zero machine.PinChange
		return r.p.SetInterrupt(zero, nil)
	}
	return r.p.SetInterrupt(machine.PinFalling, func(machine.Pin) { fn() })
}
