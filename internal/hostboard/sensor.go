// Package hostboard implements the monitor hardware on a Linux board
// through periph.io: a BME280 probe and an SSD1306 panel on I²C, GPIO
// indicator lines and a PWM buzzer.
package hostboard

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/bmxx80"
)

var errNotConfigured = errors.New("device not configured")

// BME280 reads temperature and humidity from a Bosch BME280.
type BME280 struct {
	bus  i2c.Bus
	addr uint16
	dev  *bmxx80.Dev
}

func NewBME280(bus i2c.Bus, addr uint16) *BME280 {
	return &BME280{bus: bus, addr: addr}
}

func (s *BME280) Configure() error {
	dev, err := bmxx80.NewI2C(s.bus, s.addr, &bmxx80.DefaultOpts)
	if err != nil {
		return fmt.Errorf("bmxx80 at %#x: %w", s.addr, err)
	}
	s.dev = dev
	return nil
}

func (s *BME280) ReadTemperature() (float32, error) {
	env, err := s.sense()
	if err != nil {
		return 0, err
	}
	return float32(env.Temperature.Celsius()), nil
}

func (s *BME280) ReadHumidity() (float32, error) {
	env, err := s.sense()
	if err != nil {
		return 0, err
	}
	// env.Humidity is fixed point in units of 0.00001 %rH.
	return float32(float64(env.Humidity) / float64(physic.PercentRH)), nil
}

func (s *BME280) sense() (physic.Env, error) {
	var env physic.Env
	if s.dev == nil {
		return env, errNotConfigured
	}
	if err := s.dev.Sense(&env); err != nil {
		return env, fmt.Errorf("sense: %w", err)
	}
	return env, nil
}

func (s *BME280) Halt() error {
	if s.dev == nil {
		return nil
	}
	return s.dev.Halt()
}
