// Package collector polls the monitor over serial, keeps the history and
// raises alerts when a reading leaves the comfort band.
package collector

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"cloudpico-climate/internal/climate"
	"cloudpico-climate/internal/protocol"
	"cloudpico-climate/internal/types"
)

type Requester interface {
	Request(ctx context.Context) (climate.Reading, error)
}

type Store interface {
	InsertReading(ctx context.Context, t types.Telemetry) error
	InsertAlert(ctx context.Context, a types.Alert) error
}

type Publisher interface {
	PublishTelemetry(t types.Telemetry) error
	PublishAlert(a types.Alert) error
}

// AlertThresholds is the host comfort band. It is narrower on the hot side
// than the device indicators.
var AlertThresholds = climate.Thresholds{
	ColdBelow:  18,
	HumidAbove: 70,
	HotAbove:   27,
	DryBelow:   35,
}

type Options struct {
	StationID  string
	Interval   time.Duration
	Thresholds climate.Thresholds
	// Now defaults to time.Now.
	Now func() time.Time
}

type Service struct {
	device    Requester
	store     Store
	publisher Publisher
	opts      Options
	logger    *slog.Logger
}

// New builds a collector. publisher may be nil when no broker is
// configured.
func New(device Requester, store Store, publisher Publisher, opts Options, logger *slog.Logger) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		device:    device,
		store:     store,
		publisher: publisher,
		opts:      opts,
		logger:    logger.With("station_id", opts.StationID),
	}
}

// Run polls once immediately and then every Interval until ctx is done.
func (s *Service) Run(ctx context.Context) error {
	s.logger.Info("collector started", "interval", s.opts.Interval)

	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()

	for {
		s.PollOnce(ctx)

		select {
		case <-ctx.Done():
			s.logger.Info("collector stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// PollOnce requests one reading and handles it. Empty, ERROR and malformed
// replies are skipped. It returns the stored reading and the alerts raised,
// or ok == false when the poll produced nothing.
func (s *Service) PollOnce(ctx context.Context) (t types.Telemetry, alerts []types.Alert, ok bool) {
	r, err := s.device.Request(ctx)
	switch {
	case err == nil:
	case errors.Is(err, protocol.ErrNoResponse):
		s.logger.Warn("device did not respond")
		return t, nil, false
	case errors.Is(err, protocol.ErrSensorFault):
		s.logger.Warn("device reported a sensor fault")
		return t, nil, false
	case errors.Is(err, protocol.ErrMalformed):
		s.logger.Warn("malformed reply", "error", err)
		return t, nil, false
	case ctx.Err() != nil:
		return t, nil, false
	default:
		s.logger.Error("request failed", "error", err)
		return t, nil, false
	}

	t = types.Telemetry{
		StationID:   s.opts.StationID,
		Timestamp:   s.opts.Now().UTC(),
		Temperature: float64(r.Temperature.Value),
		Humidity:    float64(r.Humidity.Value),
	}
	s.logger.Debug("reading received", "temperature_c", t.Temperature, "humidity_pct", t.Humidity)

	if err := s.store.InsertReading(ctx, t); err != nil {
		s.logger.Error("failed to store reading", "error", err)
	}
	s.publish("telemetry", func() error { return s.publisher.PublishTelemetry(t) })

	alerts = Alerts(s.opts.Thresholds, r, t)
	for _, a := range alerts {
		s.logger.Warn("alert", "kind", a.Kind, "message", a.Message)
		if err := s.store.InsertAlert(ctx, a); err != nil {
			s.logger.Error("failed to store alert", "kind", a.Kind, "error", err)
		}
		s.publish("alert", func() error { return s.publisher.PublishAlert(a) })
	}
	return t, alerts, true
}

func (s *Service) publish(what string, fn func() error) {
	if s.publisher == nil {
		return
	}
	if err := fn(); err != nil {
		s.logger.Warn("publish failed", "what", what, "error", err)
	}
}

// Alerts evaluates both rules independently; one reading may raise both.
func Alerts(th climate.Thresholds, r climate.Reading, t types.Telemetry) []types.Alert {
	var out []types.Alert
	if th.IsHot(r) {
		out = append(out, types.NewAlert(types.AlertHigh, t))
	}
	if th.IsCold(r) {
		out = append(out, types.NewAlert(types.AlertLow, t))
	}
	return out
}
