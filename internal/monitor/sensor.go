package monitor

import "cloudpico-climate/internal/climate"

// ReadSensor samples temperature then humidity. A failed read marks only the
// affected field invalid; nothing is retried.
func ReadSensor(s Sensor) climate.Reading {
	var r climate.Reading
	if t, err := s.ReadTemperature(); err == nil {
		r.Temperature = climate.Valid(t)
	}
	if h, err := s.ReadHumidity(); err == nil {
		r.Humidity = climate.Valid(h)
	}
	return r
}
