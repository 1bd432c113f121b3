// Package climate holds the temperature/humidity value types and the
// threshold rules shared by the device loop and the host tools.
package climate

import "strconv"

// Measure is a single sampled value. A failed hardware read yields a
// Measure with Valid == false; its Value is meaningless.
type Measure struct {
	Value float32
	Valid bool
}

// Valid wraps a successfully read value.
func Valid(v float32) Measure {
	return Measure{Value: v, Valid: true}
}

// Invalid is the no-reading marker.
func Invalid() Measure {
	return Measure{}
}

func (m Measure) String() string {
	if !m.Valid {
		return "invalid"
	}
	return strconv.FormatFloat(float64(m.Value), 'f', 2, 32)
}

// Reading is one sampled pair of temperature (°C) and relative humidity (%).
type Reading struct {
	Temperature Measure
	Humidity    Measure
}

// NewReading builds a reading where both fields are valid.
func NewReading(tempC, humPct float32) Reading {
	return Reading{
		Temperature: Valid(tempC),
		Humidity:    Valid(humPct),
	}
}

// Valid reports whether both fields hold a value.
func (r Reading) Valid() bool {
	return r.Temperature.Valid && r.Humidity.Valid
}

func (r Reading) String() string {
	return "T=" + r.Temperature.String() + " H=" + r.Humidity.String()
}
