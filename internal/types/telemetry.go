package types

import (
	"fmt"
	"time"
)

// Telemetry is one stored reading as it travels over MQTT and HTTP.
type Telemetry struct {
	StationID   string    `json:"station_id"`
	Timestamp   time.Time `json:"timestamp"`
	Temperature float64   `json:"temperature_c"`
	Humidity    float64   `json:"humidity_pct"`
}

type AlertKind string

const (
	// AlertHigh fires on high temperature or low humidity.
	AlertHigh AlertKind = "high"
	// AlertLow fires on low temperature or high humidity.
	AlertLow AlertKind = "low"
)

type Alert struct {
	StationID   string    `json:"station_id"`
	Timestamp   time.Time `json:"timestamp"`
	Kind        AlertKind `json:"kind"`
	Temperature float64   `json:"temperature_c"`
	Humidity    float64   `json:"humidity_pct"`
	Message     string    `json:"message"`
}

// NewAlert builds an alert for t with the operator message for kind.
func NewAlert(kind AlertKind, t Telemetry) Alert {
	var msg string
	switch kind {
	case AlertHigh:
		msg = fmt.Sprintf("high temperature (%.2f°C) or low humidity (%.2f%%)", t.Temperature, t.Humidity)
	case AlertLow:
		msg = fmt.Sprintf("low temperature (%.2f°C) or high humidity (%.2f%%)", t.Temperature, t.Humidity)
	}
	return Alert{
		StationID:   t.StationID,
		Timestamp:   t.Timestamp,
		Kind:        kind,
		Temperature: t.Temperature,
		Humidity:    t.Humidity,
		Message:     msg,
	}
}

// Stats aggregates the readings of one station over a window.
type Stats struct {
	StationID      string    `json:"station_id"`
	From           time.Time `json:"from"`
	To             time.Time `json:"to"`
	Count          int       `json:"count"`
	AvgTemperature float64   `json:"avg_temperature_c"`
	MinTemperature float64   `json:"min_temperature_c"`
	MaxTemperature float64   `json:"max_temperature_c"`
	AvgHumidity    float64   `json:"avg_humidity_pct"`
	MinHumidity    float64   `json:"min_humidity_pct"`
	MaxHumidity    float64   `json:"max_humidity_pct"`
}
