package hostboard

import (
	"errors"
	"fmt"
	"log/slog"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"cloudpico-climate/internal/config"
	"cloudpico-climate/internal/monitor"
)

// Board is the set of devices wired to a Linux single board computer.
type Board struct {
	bus     i2c.BusCloser
	Sensor  *BME280
	Display *OLED
	Hot     *OutputPin
	Normal  *OutputPin
	Cold    *OutputPin
	Buzzer  *Buzzer
}

// Open initializes the periph host drivers and resolves the bus and pins
// named in cfg. Devices are probed later, by their Configure methods.
func Open(cfg config.Config, logger *slog.Logger) (*Board, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}

	bus, err := i2creg.Open(cfg.I2CBus)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", cfg.I2CBus, err)
	}

	pins := make(map[string]*OutputPin, 3)
	for _, name := range []string{cfg.GPIOHot, cfg.GPIONormal, cfg.GPIOCold} {
		p, err := LookupPin(name)
		if err != nil {
			_ = bus.Close()
			return nil, err
		}
		pins[name] = NewOutputPin(p, logger)
	}
	buzzerPin, err := LookupPin(cfg.GPIOBuzzer)
	if err != nil {
		_ = bus.Close()
		return nil, err
	}

	logger.Info("board opened",
		"i2c_bus", bus.String(),
		"bme280_address", fmt.Sprintf("%#x", cfg.BME280Address),
		"gpio_hot", cfg.GPIOHot,
		"gpio_normal", cfg.GPIONormal,
		"gpio_cold", cfg.GPIOCold,
		"gpio_buzzer", cfg.GPIOBuzzer,
	)

	return &Board{
		bus:     bus,
		Sensor:  NewBME280(bus, cfg.BME280Address),
		Display: NewOLED(bus),
		Hot:     pins[cfg.GPIOHot],
		Normal:  pins[cfg.GPIONormal],
		Cold:    pins[cfg.GPIOCold],
		Buzzer:  NewBuzzer(buzzerPin, logger),
	}, nil
}

// Hardware wires the board into the monitor loop with serial as the
// command channel.
func (b *Board) Hardware(serial monitor.Serial) monitor.Hardware {
	return monitor.Hardware{
		Serial:  serial,
		Sensor:  b.Sensor,
		Display: b.Display,
		Indicators: monitor.Indicators{
			Hot:    b.Hot,
			Normal: b.Normal,
			Cold:   b.Cold,
		},
		Buzzer: b.Buzzer,
	}
}

// Close drives every output low, halts the devices and releases the bus.
func (b *Board) Close() error {
	for _, p := range []*OutputPin{b.Hot, b.Normal, b.Cold} {
		p.Set(false)
	}
	b.Buzzer.Stop()
	return errors.Join(b.Display.Halt(), b.Sensor.Halt(), b.bus.Close())
}
