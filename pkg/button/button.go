// Package button turns edge-triggered GPIO inputs into debounced presses.
//
// The edge callback only ever raises an atomic pending flag. Poll is the
// single consumer: it accepts at most one press per debounce window and
// coalesces any number of edges inside that window into one press.
package button

import (
	"strconv"
	"sync/atomic"
	"time"

	"github.com/tuffrabit/tinygo-oledpager/pkg/errcode"
)

// DefaultDebounce is the debounce window used when none is configured.
const DefaultDebounce = 250 * time.Millisecond

// Button is one debounced physical button.
type Button struct {
	board  Board
	id     int
	pin    Pin
	window time.Duration

	// last is only touched by Poll.
	last time.Time

	// pending is written from interrupt context.
	pending atomic.Bool
	edges   atomic.Uint32

	now func() time.Time
}

// New claims pin id on board, configures it as an input with the given pull
// resistor and arms the falling-edge interrupt.
func New(board Board, id int, pull Pull, window time.Duration) (*Button, error) {
	if window < 0 {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "button.New", Msg: "negative debounce window"}
	}

	pin, err := board.Claim(id)
	if err != nil {
		return nil, err
	}

	b := &Button{
		board:  board,
		id:     id,
		pin:    pin,
		window: window,
		now:    time.Now,
	}
	b.last = b.now()

	if err := pin.ConfigureInput(pull); err != nil {
		board.Release(id)
		return nil, &errcode.E{C: errcode.PinConfig, Op: "button.New", Msg: "GP" + strconv.Itoa(id), Err: err}
	}
	if err := pin.OnFallingEdge(b.edge); err != nil {
		board.Release(id)
		return nil, &errcode.E{C: errcode.PinConfig, Op: "button.New", Msg: "GP" + strconv.Itoa(id), Err: err}
	}

	return b, nil
}

// edge is the interrupt handler. It must not block.
func (b *Button) edge() {
	b.pending.Store(true)
	b.edges.Add(1)
}

// Poll reports a press at most once per debounce window.
//
// Inside the window it returns false even when an edge is pending; the edge
// stays pending and is reported once the window has elapsed. A press landing
// exactly on the window boundary is accepted.
func (b *Button) Poll() bool {
	now := b.now()
	if now.Sub(b.last) < b.window {
		return false
	}
	if b.pending.CompareAndSwap(true, false) {
		b.last = now
		return true
	}
	return false
}

// Edges returns the number of raw falling edges seen since boot.
func (b *Button) Edges() uint32 { return b.edges.Load() }

// ID returns the GPIO number the button is bound to.
func (b *Button) ID() int { return b.id }

// Close disarms the interrupt and releases the pin.
func (b *Button) Close() error {
	err := b.pin.OnFallingEdge(nil)
	b.board.Release(b.id)
	return err
}
