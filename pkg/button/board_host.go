//go:build !rp2040

package button

import (
	"strconv"
	"sync"

	"github.com/tuffrabit/tinygo-oledpager/pkg/errcode"
)

// FakeBoard is a host-side Board for tests and the simulator. Pins are
// created on first claim and kept after release so edges can still be
// driven through Pin.
type FakeBoard struct {
	mu      sync.Mutex
	max     int
	pins    map[int]*FakePin
	claimed map[int]bool
}

// NewFakeBoard returns a board accepting pin ids 0..max.
func NewFakeBoard(max int) *FakeBoard {
	return &FakeBoard{
		max:     max,
		pins:    make(map[int]*FakePin),
		claimed: make(map[int]bool),
	}
}

func (b *FakeBoard) Claim(id int) (Pin, error) {
	if id < 0 || id > b.max {
		return nil, &errcode.E{C: errcode.UnknownPin, Op: "claim", Msg: "GP" + strconv.Itoa(id)}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.claimed[id] {
		return nil, &errcode.E{C: errcode.PinInUse, Op: "claim", Msg: "GP" + strconv.Itoa(id)}
	}
	b.claimed[id] = true
	p, ok := b.pins[id]
	if !ok {
		p = &FakePin{id: id}
		b.pins[id] = p
	}
	return p, nil
}

func (b *FakeBoard) Release(id int) {
	b.mu.Lock()
	delete(b.claimed, id)
	b.mu.Unlock()
}

// Pin exposes the underlying *FakePin so tests can drive edges.
func (b *FakeBoard) Pin(id int) (*FakePin, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.pins[id]
	return p, ok
}

// FakePin implements Pin. ConfigErr, when set, is returned by ConfigureInput.
type FakePin struct {
	mu        sync.RWMutex
	id        int
	pull      Pull
	input     bool
	irq       func()
	ConfigErr error
}

func (p *FakePin) ConfigureInput(pull Pull) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ConfigErr != nil {
		return p.ConfigErr
	}
	p.pull = pull
	p.input = true
	return nil
}

func (p *FakePin) OnFallingEdge(fn func()) error {
	p.mu.Lock()
	p.irq = fn
	p.mu.Unlock()
	return nil
}

// Fall simulates a falling edge, running the callback like an ISR would.
func (p *FakePin) Fall() {
	p.mu.RLock()
	fn := p.irq
	p.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

// Pull returns the pull resistor last configured.
func (p *FakePin) Pull() Pull {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.pull
}

// Armed reports whether an edge callback is registered.
func (p *FakePin) Armed() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.irq != nil
}
