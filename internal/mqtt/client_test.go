package mqtt

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"cloudpico-climate/internal/config"
	"cloudpico-climate/internal/types"
)

func testConfig() config.Config {
	return config.Config{
		MQTTBroker:   "127.0.0.1",
		MQTTPort:     1, // nothing listens here
		MQTTClientID: "test",
	}
}

func TestTopics(t *testing.T) {
	if got := TelemetryTopic("home"); got != "stations/home/telemetry" {
		t.Errorf("TelemetryTopic = %q", got)
	}
	if got := AlertTopic("+"); got != "stations/+/alerts" {
		t.Errorf("AlertTopic = %q", got)
	}
}

func TestPublish_NotConnected(t *testing.T) {
	c := NewClient(testConfig(), slog.New(slog.DiscardHandler))

	if err := c.PublishTelemetry(types.Telemetry{StationID: "home"}); !errors.Is(err, ErrNotConnected) {
		t.Errorf("PublishTelemetry error = %v, want ErrNotConnected", err)
	}
	if err := c.PublishAlert(types.Alert{StationID: "home"}); !errors.Is(err, ErrNotConnected) {
		t.Errorf("PublishAlert error = %v, want ErrNotConnected", err)
	}
	if err := c.SubscribeTelemetry("+", func(types.Telemetry) {}); !errors.Is(err, ErrNotConnected) {
		t.Errorf("SubscribeTelemetry error = %v, want ErrNotConnected", err)
	}
}

func TestConnect_RespectsContext(t *testing.T) {
	c := NewClient(testConfig(), slog.New(slog.DiscardHandler))
	defer c.Disconnect()

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	if err := c.Connect(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Connect error = %v, want context.DeadlineExceeded", err)
	}
}

func TestConnect_AfterDisconnect(t *testing.T) {
	c := NewClient(testConfig(), slog.New(slog.DiscardHandler))
	c.Disconnect()
	c.Disconnect()

	if err := c.Connect(context.Background()); !errors.Is(err, ErrStopped) {
		t.Errorf("Connect error = %v, want ErrStopped", err)
	}
}

func TestDecodeTelemetry(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr bool
	}{
		{"valid", `{"station_id":"home","timestamp":"2025-02-01T12:00:00Z","temperature_c":21.5,"humidity_pct":40}`, false},
		{"not json", `22.50 45.00`, true},
		{"missing station", `{"timestamp":"2025-02-01T12:00:00Z","humidity_pct":40}`, true},
		{"missing timestamp", `{"station_id":"home","humidity_pct":40}`, true},
		{"humidity out of range", `{"station_id":"home","timestamp":"2025-02-01T12:00:00Z","humidity_pct":140}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeTelemetry([]byte(tt.payload))
			if (err != nil) != tt.wantErr {
				t.Fatalf("decodeTelemetry() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && (got.StationID != "home" || got.Temperature != 21.5) {
				t.Errorf("decodeTelemetry() = %+v", got)
			}
		})
	}
}
