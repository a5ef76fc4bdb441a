//go:build !rp2040

// Command oledsim runs the pager in a terminal. The panel is drawn with
// half-block characters and the arrow keys are the four buttons.
//
//	arrows      left, right, up, down
//	m           left+right (mode menu)
//	c           up+down (clear text)
//	q, Esc      quit
package main

import (
	"bufio"
	"errors"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/gdamore/tcell/v2"

	"github.com/tuffrabit/tinygo-oledpager/pkg/button"
	"github.com/tuffrabit/tinygo-oledpager/pkg/config"
	"github.com/tuffrabit/tinygo-oledpager/pkg/display"
	"github.com/tuffrabit/tinygo-oledpager/pkg/layout"
	"github.com/tuffrabit/tinygo-oledpager/pkg/textbuf"
	"github.com/tuffrabit/tinygo-oledpager/pkg/ui"
	"github.com/tuffrabit/tinygo-oledpager/serial"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "oledsim:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Default()
	width := flag.Int("width", int(cfg.Width), "panel width in pixels")
	height := flag.Int("height", int(cfg.Height), "panel height in pixels")
	debounce := flag.Duration("debounce", cfg.Debounce(), "button debounce window")
	tick := flag.Duration("tick", cfg.TickDelay(), "delay between input handling and rendering")
	pages := flag.Int("pages", int(cfg.MaxPages), "text buffer capacity in pages")
	mode := flag.String("mode", "", "initial display mode")
	feed := flag.String("feed", "", "file streamed through the serial console")
	sound := flag.Bool("sound", false, "click on every accepted press")
	logPath := flag.String("log", "", "log file")
	flag.Parse()

	cfg.Width = uint16(*width)
	cfg.Height = uint16(*height)
	cfg.DebounceMs = uint16(debounce.Milliseconds())
	cfg.TickMs = uint16(tick.Milliseconds())
	cfg.MaxPages = uint8(*pages)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, closeLog, err := openLog(*logPath)
	if err != nil {
		return err
	}
	defer closeLog()

	geo, err := layout.New(int(cfg.Width), int(cfg.Height))
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	var click func()
	if *sound {
		if click, err = newClicker(); err != nil {
			// Non-fatal, the simulator runs without sound
			logger.Warn("audio unavailable", "err", err)
		}
	}

	board := button.NewFakeBoard(28)
	pins := cfg.Pins()
	var inputs [4]ui.Input
	var fakes [4]*button.FakePin
	for i, id := range pins {
		b, err := button.New(board, int(id), cfg.Pull(), cfg.Debounce())
		if err != nil {
			return err
		}
		defer b.Close()
		fakes[i], _ = board.Pin(int(id))
		inputs[i] = clickInput{Input: b, click: click}
	}

	fb := display.NewFramebuffer(geo.Width(), geo.Height(), &termSink{screen: screen})
	store := textbuf.New(geo.LineLength(), geo.Lines(), int(cfg.MaxPages))

	m, err := ui.New(ui.Config{
		Surface:   fb,
		Geometry:  geo,
		Store:     store,
		Inputs:    ui.Inputs{Left: inputs[0], Right: inputs[1], Up: inputs[2], Down: inputs[3]},
		Initial:   ui.Mode(*mode),
		TickDelay: cfg.TickDelay(),
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *feed != "" {
		f, err := os.Open(*feed)
		if err != nil {
			return err
		}
		defer f.Close()
		console := serial.NewConsole(bufio.NewReader(f), logWriter{logger}, store, m, logger)
		go console.Handle(ctx)
	}

	done := make(chan error, 1)
	go func() {
		done <- m.Run(ctx)
		screen.PostEvent(tcell.NewEventInterrupt(nil))
	}()

	keys := keyPins{left: fakes[0], right: fakes[1], up: fakes[2], down: fakes[3]}
	for {
		switch ev := screen.PollEvent().(type) {
		case *tcell.EventResize:
			screen.Sync()
		case *tcell.EventKey:
			if !keys.handle(ev) {
				cancel()
			}
		case *tcell.EventInterrupt:
			err := <-done
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		case nil:
			return nil
		}
	}
}

func openLog(path string) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.DiscardHandler), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, func() { f.Close() }, nil
}

// logWriter sends console replies to the log.
type logWriter struct{ log *slog.Logger }

func (w logWriter) Write(p []byte) (int, error) {
	w.log.Info("console reply", "text", string(trimNewline(p)))
	return len(p), nil
}

func trimNewline(p []byte) []byte {
	if n := len(p); n > 0 && p[n-1] == '\n' {
		return p[:n-1]
	}
	return p
}

// clickInput plays a click whenever the wrapped input reports a press.
type clickInput struct {
	ui.Input
	click func()
}

func (c clickInput) Poll() bool {
	pressed := c.Input.Poll()
	if pressed && c.click != nil {
		c.click()
	}
	return pressed
}
