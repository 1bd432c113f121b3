package hostboard

import (
	"fmt"
	"log/slog"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
)

// LookupPin resolves a pin name such as "GPIO17".
func LookupPin(name string) (gpio.PinIO, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("gpio pin %q not found", name)
	}
	return p, nil
}

// OutputPin is an indicator line. Write failures are logged; the loop has
// no way to act on them.
type OutputPin struct {
	pin    gpio.PinIO
	logger *slog.Logger
}

func NewOutputPin(pin gpio.PinIO, logger *slog.Logger) *OutputPin {
	return &OutputPin{pin: pin, logger: logger}
}

func (p *OutputPin) ConfigureOutput() {
	p.Set(false)
}

func (p *OutputPin) Set(high bool) {
	if err := p.pin.Out(gpio.Level(high)); err != nil {
		p.logger.Warn("gpio write failed", "pin", p.pin.Name(), "high", high, "error", err)
	}
}

// Buzzer drives a passive buzzer with a 50% duty square wave.
type Buzzer struct {
	pin    gpio.PinIO
	logger *slog.Logger
}

func NewBuzzer(pin gpio.PinIO, logger *slog.Logger) *Buzzer {
	return &Buzzer{pin: pin, logger: logger}
}

func (b *Buzzer) ConfigureOutput() {
	b.Stop()
}

func (b *Buzzer) Tone(hz int) {
	if hz <= 0 {
		b.Stop()
		return
	}
	if err := b.pin.PWM(gpio.DutyHalf, physic.Frequency(hz)*physic.Hertz); err != nil {
		b.logger.Warn("buzzer pwm failed", "pin", b.pin.Name(), "hz", hz, "error", err)
	}
}

func (b *Buzzer) Stop() {
	if err := b.pin.Out(gpio.Low); err != nil {
		b.logger.Warn("buzzer stop failed", "pin", b.pin.Name(), "error", err)
	}
}
