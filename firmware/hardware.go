//go:build tinygo

package main

import (
	"errors"
	"image/color"
	"machine"
	"time"

	"tinygo.org/x/drivers/dht"
	"tinygo.org/x/drivers/ssd1306"
	"tinygo.org/x/drivers/tone"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"

	"cloudpico-climate/internal/display"
)

var errDisplayMissing = errors.New("ssd1306 did not acknowledge")

// usbSerial is the USB CDC port.
type usbSerial struct {
	port machine.Serialer
}

func (s usbSerial) Configure(baud uint32) error {
	return s.port.Configure(machine.UARTConfig{BaudRate: baud})
}

func (s usbSerial) Buffered() int               { return s.port.Buffered() }
func (s usbSerial) ReadByte() (byte, error)     { return s.port.ReadByte() }
func (s usbSerial) Write(p []byte) (int, error) { return s.port.Write(p) }

// dhtSensor reads a DHT11 on a single data pin. The driver caches one
// measurement for two seconds, so temperature and humidity of the same
// iteration come from one bus transaction.
type dhtSensor struct {
	dev dht.Device
}

func newDHTSensor(pin machine.Pin) *dhtSensor {
	return &dhtSensor{dev: dht.New(pin, dht.DHT11)}
}

func (s *dhtSensor) Configure() error {
	s.dev.Configure(dht.UpdatePolicy{UpdateTime: 2 * time.Second, UpdateAutomatically: true})
	return nil
}

func (s *dhtSensor) ReadTemperature() (float32, error) {
	return s.dev.TemperatureFloat(dht.C)
}

func (s *dhtSensor) ReadHumidity() (float32, error) {
	return s.dev.HumidityFloat()
}

// oled is an SSD1306 on I2C0 with a text cursor.
type oled struct {
	bus     *machine.I2C
	dev     ssd1306.Device
	console *display.Console
}

var white = color.RGBA{R: 255, G: 255, B: 255, A: 255}

func newOLED(bus *machine.I2C) *oled {
	o := &oled{bus: bus, dev: ssd1306.NewI2C(bus)}
	o.console = display.NewConsole(o)
	return o
}

func (o *oled) Configure() error {
	err := o.bus.Configure(machine.I2CConfig{
		SDA:       pinDisplaySDA,
		SCL:       pinDisplaySCL,
		Frequency: 400 * machine.KHz,
	})
	if err != nil {
		return err
	}
	// Display-on command; a missing panel NAKs the address.
	if err := o.bus.Tx(displayAddress, []byte{0x00, 0xAF}, nil); err != nil {
		return errors.Join(errDisplayMissing, err)
	}
	o.dev.Configure(ssd1306.Config{
		Width:   displayWidth,
		Height:  displayHeight,
		Address: displayAddress,
	})
	return nil
}

func (o *oled) ClearBuffer()         { o.dev.ClearBuffer() }
func (o *oled) SetCursor(x, y int16) { o.console.SetCursor(x, y) }
func (o *oled) Print(s string)       { o.console.Print(s) }
func (o *oled) Flush() error         { return o.dev.Display() }

func (o *oled) FillRect(x, y, w, h int16, on bool) {
	display.FillRect(o, x, y, w, h, on)
}

func (o *oled) SetPixel(x, y int16, on bool) {
	c := color.RGBA{}
	if on {
		c = white
	}
	o.dev.SetPixel(x, y, c)
}

const (
	glyphAscent = 10
	lineHeight  = 16
)

func (o *oled) DrawText(x, y int16, s string) int16 {
	tinyfont.WriteLine(&o.dev, &proggy.TinySZ8pt7b, x, y+glyphAscent, s, white)
	_, advance := tinyfont.LineWidth(&proggy.TinySZ8pt7b, s)
	return int16(advance)
}

func (o *oled) LineHeight() int16 { return lineHeight }

type outputPin struct {
	pin machine.Pin
}

func (p outputPin) ConfigureOutput() {
	p.pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
}

func (p outputPin) Set(high bool) { p.pin.Set(high) }

// pwmBuzzer drives a passive buzzer from a PWM slice; the tone keeps
// sounding until Stop.
type pwmBuzzer struct {
	pwm     tone.PWM
	pin     machine.Pin
	speaker *tone.Speaker
}

func (b *pwmBuzzer) ConfigureOutput() {
	speaker, err := tone.New(b.pwm, b.pin)
	if err != nil {
		// Leave the buzzer silent; the indicators still work.
		return
	}
	b.speaker = &speaker
}

func (b *pwmBuzzer) Tone(hz int) {
	if b.speaker == nil || hz <= 0 {
		return
	}
	b.speaker.SetPeriod(uint64(time.Second) / uint64(hz))
}

func (b *pwmBuzzer) Stop() {
	if b.speaker == nil {
		return
	}
	b.speaker.Stop()
}
