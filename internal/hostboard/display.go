package hostboard

import (
	"fmt"
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"

	"cloudpico-climate/internal/display"
)

var face = basicfont.Face7x13

// OLED is an SSD1306 128×64 panel. Drawing goes to an in-memory frame that
// Flush sends to the panel.
type OLED struct {
	bus     i2c.Bus
	dev     *ssd1306.Dev
	frame   *image1bit.VerticalLSB
	console *display.Console
}

func NewOLED(bus i2c.Bus) *OLED {
	o := &OLED{bus: bus}
	o.frame = image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))
	o.console = display.NewConsole(o)
	return o
}

func (o *OLED) Configure() error {
	dev, err := ssd1306.NewI2C(o.bus, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("ssd1306: %w", err)
	}
	o.dev = dev
	o.frame = image1bit.NewVerticalLSB(dev.Bounds())
	return nil
}

func (o *OLED) ClearBuffer() {
	clear(o.frame.Pix)
}

func (o *OLED) SetCursor(x, y int16) { o.console.SetCursor(x, y) }
func (o *OLED) Print(s string)       { o.console.Print(s) }

func (o *OLED) FillRect(x, y, w, h int16, on bool) {
	display.FillRect(o, x, y, w, h, on)
}

func (o *OLED) SetPixel(x, y int16, on bool) {
	o.frame.SetBit(int(x), int(y), image1bit.Bit(on))
}

func (o *OLED) DrawText(x, y int16, s string) int16 {
	d := font.Drawer{
		Dst:  o.frame,
		Src:  &image.Uniform{C: image1bit.On},
		Face: face,
		Dot:  fixed.P(int(x), int(y)+face.Ascent),
	}
	d.DrawString(s)
	return int16(font.MeasureString(face, s).Round())
}

func (o *OLED) LineHeight() int16 {
	return int16(face.Height)
}

func (o *OLED) Flush() error {
	if o.dev == nil {
		return errNotConfigured
	}
	return o.dev.Draw(o.frame.Bounds(), o.frame, image.Point{})
}

func (o *OLED) Halt() error {
	if o.dev == nil {
		return nil
	}
	return o.dev.Halt()
}
