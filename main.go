//go:build rp2040

package main

import (
	"context"
	"io"
	"log/slog"
	"machine"
	"time"

	"github.com/tuffrabit/tinygo-oledpager/pkg/button"
	"github.com/tuffrabit/tinygo-oledpager/pkg/config"
	"github.com/tuffrabit/tinygo-oledpager/pkg/display"
	"github.com/tuffrabit/tinygo-oledpager/pkg/layout"
	"github.com/tuffrabit/tinygo-oledpager/pkg/storage"
	"github.com/tuffrabit/tinygo-oledpager/pkg/textbuf"
	"github.com/tuffrabit/tinygo-oledpager/pkg/ui"
	"github.com/tuffrabit/tinygo-oledpager/serial"
)

const (
	// I2C configuration
	sclPin = machine.GPIO1
	sdaPin = machine.GPIO0

	uartBaud = 115200
)

// MAIN THREAD DUTIES
//
// Boot: config from flash, panel, buttons, text store, console. Then the
// display loop runs on the main goroutine forever.

func main() {
	logger := slog.New(slog.NewTextHandler(machine.Serial, nil))

	if err := run(logger); err != nil {
		logger.Error("boot failed", "err", err)
	}

	// Park without entering the poll loop
	select {}
}

func run(logger *slog.Logger) error {
	ctx := context.Background()

	cfg := loadConfig(logger)

	geo, err := layout.New(int(cfg.Width), int(cfg.Height))
	if err != nil {
		return err
	}

	i2c := machine.I2C0
	if err := i2c.Configure(machine.I2CConfig{
		Frequency: 400000, // 400kHz fast mode
		SCL:       sclPin,
		SDA:       sdaPin,
	}); err != nil {
		return err
	}

	// Small delay for bus stabilization
	time.Sleep(10 * time.Millisecond)

	panel := display.NewPanel(i2c, uint16(cfg.I2CAddress), int16(cfg.Width), int16(cfg.Height))
	fb := display.NewFramebuffer(geo.Width(), geo.Height(), panel)

	board := button.NewMachineBoard()
	var inputs [4]ui.Input
	for i, id := range cfg.Pins() {
		b, err := button.New(board, int(id), cfg.Pull(), cfg.Debounce())
		if err != nil {
			return err
		}
		inputs[i] = b
	}

	store := textbuf.New(geo.LineLength(), geo.Lines(), int(cfg.MaxPages))

	modes := ui.DefaultModes()
	var initial ui.Mode
	if int(cfg.InitialMode) < len(modes) {
		initial = modes[cfg.InitialMode].Name
	}

	m, err := ui.New(ui.Config{
		Surface:   fb,
		Geometry:  geo,
		Store:     store,
		Inputs:    ui.Inputs{Left: inputs[0], Right: inputs[1], Up: inputs[2], Down: inputs[3]},
		Modes:     modes,
		Initial:   initial,
		TickDelay: cfg.TickDelay(),
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	var in io.ByteReader = machine.Serial
	var out io.Writer = machine.Serial
	if cfg.Flags&config.FlagUARTConsole != 0 {
		src, err := serial.NewUARTSource(ctx, uartBaud, machine.UART0_TX_PIN, machine.UART0_RX_PIN)
		if err != nil {
			return err
		}
		in, out = src, src
	}
	console := serial.NewConsole(in, out, store, m, logger)
	go console.Handle(ctx)

	return m.Run(ctx)
}

// loadConfig reads the device record from flash, falling back to the
// defaults when flash is unusable.
func loadConfig(logger *slog.Logger) config.DeviceConfig {
	mgr, err := storage.New(machine.Flash, true, logger)
	if err != nil {
		logger.Warn("flash storage unavailable, using defaults", "err", err)
		return config.Default()
	}
	defer mgr.Close()

	cfg := mgr.LoadOrDefault()
	logger.Info("config loaded", "width", cfg.Width, "height", cfg.Height, "pins", cfg.Pins())
	return cfg
}
