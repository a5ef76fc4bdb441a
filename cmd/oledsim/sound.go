//go:build !rp2040

package main

import (
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const (
	clickRate = beep.SampleRate(44100)
	clickFreq = 2000
	clickLen  = 15 * time.Millisecond
)

// newClicker opens the speaker and returns a function playing a short
// tone.
func newClicker() (func(), error) {
	if err := speaker.Init(clickRate, clickRate.N(time.Second/10)); err != nil {
		return nil, err
	}
	return func() {
		sine, err := generators.SineTone(clickRate, clickFreq)
		if err != nil {
			return
		}
		speaker.Play(beep.Take(clickRate.N(clickLen), sine))
	}, nil
}
