//go:build rp2040

package display

import (
	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/ssd1306"
)

// Panel is an SSD1306 OLED on an I2C bus.
type Panel struct {
	device *ssd1306.Device
	width  int16
	height int16
}

// NewPanel configures the SSD1306 at address on bus and clears it.
func NewPanel(bus drivers.I2C, address uint16, width, height int16) *Panel {
	dev := ssd1306.NewI2C(bus)
	dev.Configure(ssd1306.Config{
		Address: address,
		Width:   width,
		Height:  height,
	})
	dev.ClearDisplay()

	return &Panel{
		device: dev,
		width:  width,
		height: height,
	}
}

// Flush sends fb to the panel. The framebuffer already uses the
// controller's page layout, so it is handed over as-is.
func (p *Panel) Flush(fb *Framebuffer) error {
	if err := p.device.SetBuffer(fb.Buffer()); err != nil {
		return err
	}
	return p.device.Display()
}
