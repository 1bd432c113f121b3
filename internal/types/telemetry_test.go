package types

import (
	"strings"
	"testing"
	"time"
)

func TestNewAlert(t *testing.T) {
	reading := Telemetry{
		StationID:   "home",
		Timestamp:   time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC),
		Temperature: 28.4,
		Humidity:    33,
	}

	high := NewAlert(AlertHigh, reading)
	if high.Kind != AlertHigh || high.StationID != "home" || !high.Timestamp.Equal(reading.Timestamp) {
		t.Errorf("alert = %+v", high)
	}
	if !strings.Contains(high.Message, "high temperature (28.40°C)") || !strings.Contains(high.Message, "low humidity (33.00%)") {
		t.Errorf("high message = %q", high.Message)
	}

	low := NewAlert(AlertLow, reading)
	if !strings.HasPrefix(low.Message, "low temperature") {
		t.Errorf("low message = %q", low.Message)
	}
}
