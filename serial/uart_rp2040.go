//go:build rp2040

package serial

import (
	"context"
	"errors"
	"machine"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
)

var errNoData = errors.New("serial: no data")

// UARTSource reads console input from UART0 through the interrupt-driven
// uartx driver. It implements io.ByteReader and io.Writer.
type UARTSource struct {
	ctx context.Context
	u   *uartx.UART
	buf [32]byte
	n   int
	i   int
}

// NewUARTSource configures UART0. Reads block until data arrives or ctx
// is done.
func NewUARTSource(ctx context.Context, baud uint32, tx, rx machine.Pin) (*UARTSource, error) {
	u := uartx.UART0
	if err := u.Configure(uartx.UARTConfig{
		BaudRate: baud,
		TX:       tx,
		RX:       rx,
	}); err != nil {
		return nil, err
	}
	return &UARTSource{ctx: ctx, u: u}, nil
}

func (s *UARTSource) ReadByte() (byte, error) {
	if s.i < s.n {
		b := s.buf[s.i]
		s.i++
		return b, nil
	}

	n, err := s.u.RecvSomeContext(s.ctx, s.buf[:])
	if n == 0 {
		if err == nil {
			err = errNoData
		}
		return 0, err
	}
	s.n, s.i = n, 1
	return s.buf[0], nil
}

func (s *UARTSource) Write(p []byte) (int, error) { return s.u.Write(p) }
