// Package errcode defines the stable error codes shared by the firmware
// packages. Configuration problems are fatal at boot; everything else is
// reported to the caller as-is.
package errcode

import "errors"

// Code is a stable error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK             Code = "ok"
	InvalidParams  Code = "invalid_params"
	InvalidMode    Code = "invalid_mode"
	IncompleteMode Code = "incomplete_mode"
	UnknownPin     Code = "unknown_pin"
	PinInUse       Code = "pin_in_use"
	PinConfig      Code = "pin_config"
	NotFound       Code = "not_found"
	InvalidConfig  Code = "invalid_config"

	Error Code = "error" // generic fallback
)

// E wraps a Code with the failing operation and an optional cause.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Is lets errors.Is(err, errcode.PinInUse) match a wrapped *E.
func (e *E) Is(target error) bool {
	c, ok := target.(Code)
	return ok && c == e.C
}

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	type coder interface{ Code() Code }
	var x coder
	if errors.As(err, &x) {
		return x.Code()
	}
	var c Code
	if errors.As(err, &c) {
		return c
	}
	return Error
}

// IsConfig reports whether err is a configuration error: a bad pin, a bad
// mode table or a bad device record. These stop the boot sequence.
func IsConfig(err error) bool {
	switch Of(err) {
	case InvalidParams, InvalidMode, IncompleteMode, UnknownPin, PinInUse, PinConfig, InvalidConfig:
		return true
	}
	return false
}
