// Package monitor runs the sensor control loop: read the probe, answer at
// most one serial command, draw the screen, drive the indicators and play
// the alarm melody when it is too hot or too dry.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cloudpico-climate/internal/climate"
	"cloudpico-climate/internal/protocol"
)

// ErrDisplayInit is returned by Start after the display failed to come up
// and the halt function returned.
var ErrDisplayInit = errors.New("display initialization failed")

// DisplayInitMessage is written to the serial line when the display cannot
// be initialized.
const DisplayInitMessage = "Помилка ініціалізації дисплея!"

type Config struct {
	PollInterval  time.Duration
	SplashDelay   time.Duration
	NoteDuration  time.Duration
	SerialTimeout time.Duration
	BaudRate      uint32
	Melody        []int
	Thresholds    climate.Thresholds
}

func DefaultConfig() Config {
	return Config{
		PollInterval:  2 * time.Second,
		SplashDelay:   2 * time.Second,
		NoteDuration:  300 * time.Millisecond,
		SerialTimeout: time.Second,
		BaudRate:      protocol.BaudRate,
		Melody:        Melody(),
		Thresholds:    climate.DefaultThresholds,
	}
}

type Option func(*Monitor)

func WithLogger(l *slog.Logger) Option {
	return func(m *Monitor) { m.logger = l }
}

// WithSleep replaces time.Sleep for every delay the loop takes.
func WithSleep(sleep func(time.Duration)) Option {
	return func(m *Monitor) { m.sleep = sleep }
}

// WithHalt replaces the endless stop used after a display failure.
func WithHalt(halt func()) Option {
	return func(m *Monitor) { m.halt = halt }
}

type Monitor struct {
	cfg    Config
	hw     Hardware
	logger *slog.Logger
	sleep  func(time.Duration)
	halt   func()
}

func New(cfg Config, hw Hardware, opts ...Option) *Monitor {
	m := &Monitor{
		cfg:    cfg,
		hw:     hw,
		logger: slog.Default(),
		sleep:  time.Sleep,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.halt == nil {
		m.halt = m.haltForever
	}
	return m
}

// Start runs the one-time initialization. On a display failure it reports
// the error on the serial line and calls the halt function, which by default
// never returns.
func (m *Monitor) Start() error {
	if err := m.hw.Serial.Configure(m.cfg.BaudRate); err != nil {
		return fmt.Errorf("serial configure: %w", err)
	}

	if err := m.hw.Sensor.Configure(); err != nil {
		// Reads will fail and surface as invalid readings.
		m.logger.Warn("sensor configure failed", "error", err)
	}

	if err := m.hw.Display.Configure(); err != nil {
		m.logger.Error("display configure failed", "error", err)
		m.writeLine(DisplayInitMessage)
		m.halt()
		return fmt.Errorf("%w: %w", ErrDisplayInit, err)
	}

	m.hw.Display.ClearBuffer()
	m.hw.Display.SetCursor(5, 5)
	m.hw.Display.Print("Begin\n")
	if err := m.hw.Display.Flush(); err != nil {
		m.logger.Warn("display flush failed", "error", err)
	}
	m.sleep(m.cfg.SplashDelay)

	m.hw.Indicators.Hot.ConfigureOutput()
	m.hw.Indicators.Normal.ConfigureOutput()
	m.hw.Indicators.Cold.ConfigureOutput()
	m.hw.Buzzer.ConfigureOutput()

	m.logger.Info("monitor started",
		"poll_interval", m.cfg.PollInterval,
		"baud", m.cfg.BaudRate,
	)
	return nil
}

// Step runs one iteration without the trailing poll delay.
func (m *Monitor) Step() (climate.Reading, climate.OutputState) {
	reading := ReadSensor(m.hw.Sensor)
	m.serveCommand(reading)

	RenderDisplay(m.hw.Display, reading)

	state := m.cfg.Thresholds.Evaluate(reading)
	DriveIndicators(m.hw.Indicators, state)
	if state == climate.Hot {
		m.PlayAlarm()
	}

	if err := m.hw.Display.Flush(); err != nil {
		m.logger.Warn("display flush failed", "error", err)
	}

	m.logger.Debug("iteration", "reading", reading.String(), "state", state.String())
	return reading, state
}

// Run loops until ctx is done. Cancellation is checked between iterations
// only; an iteration in progress always completes.
func (m *Monitor) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		m.Step()
		m.sleep(m.cfg.PollInterval)
	}
}

func (m *Monitor) haltForever() {
	for {
		m.sleep(time.Second)
	}
}

func (m *Monitor) writeLine(s string) {
	if _, err := m.hw.Serial.Write([]byte(s + protocol.LineEnding)); err != nil {
		m.logger.Warn("serial write failed", "error", err)
	}
}
