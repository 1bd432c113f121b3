// Package protocol implements the line-oriented serial exchange between a
// host and the monitor: the host sends "GET\n" and the device answers with
// either "ERROR" or "<temperature> <humidity>", CRLF terminated.
package protocol

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"cloudpico-climate/internal/climate"
)

const (
	Command    = "GET"
	ErrorReply = "ERROR"
	LineEnding = "\r\n"
	BaudRate   = 9600
)

var (
	// ErrNoResponse means the device sent an empty line or nothing at all.
	ErrNoResponse = errors.New("device did not respond")
	// ErrSensorFault means the device answered ERROR.
	ErrSensorFault = errors.New("device reported a sensor read error")
	// ErrMalformed means the reply could not be parsed.
	ErrMalformed = errors.New("malformed device response")
)

// IsCommand reports whether an incoming line is the read command. Surrounding
// whitespace is ignored, case is not.
func IsCommand(line string) bool {
	return strings.TrimSpace(line) == Command
}

// FormatValue renders a value with two decimals, the way the device prints
// floats.
func FormatValue(v float32) string {
	return strconv.FormatFloat(float64(v), 'f', 2, 32)
}

// FormatResponse renders the reply body for r, without the line ending.
func FormatResponse(r climate.Reading) string {
	if !r.Valid() {
		return ErrorReply
	}
	return FormatValue(r.Temperature.Value) + " " + FormatValue(r.Humidity.Value)
}

// ParseResponse decodes one reply line.
func ParseResponse(line string) (climate.Reading, error) {
	line = strings.TrimSpace(line)
	switch line {
	case "":
		return climate.Reading{}, ErrNoResponse
	case ErrorReply:
		return climate.Reading{}, ErrSensorFault
	}

	fields := strings.Fields(line)
	if len(fields) != 2 {
		return climate.Reading{}, fmt.Errorf("%w: %q: want 2 fields, got %d", ErrMalformed, line, len(fields))
	}
	temp, err := parseValue(fields[0])
	if err != nil {
		return climate.Reading{}, fmt.Errorf("%w: temperature %q: %w", ErrMalformed, fields[0], err)
	}
	hum, err := parseValue(fields[1])
	if err != nil {
		return climate.Reading{}, fmt.Errorf("%w: humidity %q: %w", ErrMalformed, fields[1], err)
	}
	return climate.NewReading(temp, hum), nil
}

var errNotFinite = errors.New("not a finite number")

func parseValue(s string) (float32, error) {
	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNotFinite
	}
	return float32(v), nil
}
