// Package config defines the persisted device settings of the pager.
// The record is fixed-size for zero-allocation binary serialization.
package config

import (
	"encoding/binary"
	"errors"
	"time"

	"github.com/tuffrabit/tinygo-oledpager/pkg/button"
	"github.com/tuffrabit/tinygo-oledpager/pkg/errcode"
)

// CurrentVersion is the config format version.
// Bump this when making breaking changes to the config format.
// When firmware boots and finds a different version in flash, the config is wiped.
const CurrentVersion uint16 = 1

// Size is the encoded length of a DeviceConfig.
const Size = 20

// Device flags.
const (
	FlagPullUp      uint16 = 1 << iota // buttons pull up instead of down
	FlagUARTConsole                    // read text from UART0 instead of USB CDC
)

// DeviceConfig holds the panel, button and loop settings.
// Total size: 20 bytes
// Layout:
//   [0-1]:   Version (uint16)
//   [2-3]:   Flags (uint16)
//   [4-5]:   Width (uint16)
//   [6-7]:   Height (uint16)
//   [8-9]:   DebounceMs (uint16)
//   [10-11]: TickMs (uint16)
//   [12]:    PinLeft (uint8)
//   [13]:    PinDown (uint8)
//   [14]:    PinUp (uint8)
//   [15]:    PinRight (uint8)
//   [16]:    I2CAddress (uint8)
//   [17]:    MaxPages (uint8)
//   [18]:    InitialMode (uint8)
//   [19]:    Reserved (uint8)
type DeviceConfig struct {
	Version     uint16 // Config format version
	Flags       uint16 // Feature flags
	Width       uint16 // Panel width in pixels
	Height      uint16 // Panel height in pixels
	DebounceMs  uint16 // Button debounce window
	TickMs      uint16 // Delay between input handling and rendering
	PinLeft     uint8  // GPIO numbers
	PinDown     uint8
	PinUp       uint8
	PinRight    uint8
	I2CAddress  uint8 // SSD1306 address
	MaxPages    uint8 // Text buffer capacity in pages
	InitialMode uint8 // Index into the mode menu
	Reserved    uint8 // Padding
}

// Errors
var (
	ErrInvalidSize = errors.New("invalid config size")
)

// Default returns the factory settings: a 128x64 panel at 0x3C, buttons on
// GP10 (left), GP11 (down), GP12 (up) and GP13 (right) with pull-downs.
func Default() DeviceConfig {
	return DeviceConfig{
		Version:    CurrentVersion,
		Width:      128,
		Height:     64,
		DebounceMs: 250,
		TickMs:     100,
		PinLeft:    10,
		PinDown:    11,
		PinUp:      12,
		PinRight:   13,
		I2CAddress: 0x3C,
		MaxPages:   8,
	}
}

// Validate reports settings the firmware cannot run with.
func (d *DeviceConfig) Validate() error {
	invalid := func(msg string) error {
		return &errcode.E{C: errcode.InvalidConfig, Op: "config.Validate", Msg: msg}
	}
	switch {
	case d.Width < 8:
		return invalid("panel narrower than one character")
	case d.Height < 16:
		return invalid("panel too short for a text line and the status bar")
	case d.DebounceMs == 0:
		return invalid("zero debounce window")
	case d.TickMs == 0:
		return invalid("zero tick delay")
	case d.MaxPages == 0:
		return invalid("zero text pages")
	}

	pins := d.Pins()
	for i := range pins {
		for j := i + 1; j < len(pins); j++ {
			if pins[i] == pins[j] {
				return invalid("two buttons share a pin")
			}
		}
	}
	return nil
}

// Pins returns the button pins in left, right, up, down order.
func (d *DeviceConfig) Pins() [4]uint8 {
	return [4]uint8{d.PinLeft, d.PinRight, d.PinUp, d.PinDown}
}

// Pull returns the input bias for the buttons.
func (d *DeviceConfig) Pull() button.Pull {
	if d.Flags&FlagPullUp != 0 {
		return button.PullUp
	}
	return button.PullDown
}

// Debounce returns the debounce window.
func (d *DeviceConfig) Debounce() time.Duration {
	return time.Duration(d.DebounceMs) * time.Millisecond
}

// TickDelay returns the loop delay.
func (d *DeviceConfig) TickDelay() time.Duration {
	return time.Duration(d.TickMs) * time.Millisecond
}

// MarshalBinary implements encoding.BinaryMarshaler for DeviceConfig.
func (d *DeviceConfig) MarshalBinary() ([]byte, error) {
	buf := make([]byte, Size)
	binary.LittleEndian.PutUint16(buf[0:], d.Version)
	binary.LittleEndian.PutUint16(buf[2:], d.Flags)
	binary.LittleEndian.PutUint16(buf[4:], d.Width)
	binary.LittleEndian.PutUint16(buf[6:], d.Height)
	binary.LittleEndian.PutUint16(buf[8:], d.DebounceMs)
	binary.LittleEndian.PutUint16(buf[10:], d.TickMs)
	buf[12] = d.PinLeft
	buf[13] = d.PinDown
	buf[14] = d.PinUp
	buf[15] = d.PinRight
	buf[16] = d.I2CAddress
	buf[17] = d.MaxPages
	buf[18] = d.InitialMode
	buf[19] = d.Reserved
	return buf, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler for DeviceConfig.
func (d *DeviceConfig) UnmarshalBinary(data []byte) error {
	if len(data) < Size {
		return ErrInvalidSize
	}

	d.Version = binary.LittleEndian.Uint16(data[0:])
	d.Flags = binary.LittleEndian.Uint16(data[2:])
	d.Width = binary.LittleEndian.Uint16(data[4:])
	d.Height = binary.LittleEndian.Uint16(data[6:])
	d.DebounceMs = binary.LittleEndian.Uint16(data[8:])
	d.TickMs = binary.LittleEndian.Uint16(data[10:])
	d.PinLeft = data[12]
	d.PinDown = data[13]
	d.PinUp = data[14]
	d.PinRight = data[15]
	d.I2CAddress = data[16]
	d.MaxPages = data[17]
	d.InitialMode = data[18]
	d.Reserved = data[19]
	return nil
}
