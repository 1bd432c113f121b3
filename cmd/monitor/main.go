// Command monitor runs the climate monitor loop on a Linux board: BME280
// and SSD1306 on I²C, GPIO indicators and buzzer, GET commands on a tty.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloudpico-climate/internal/config"
	"cloudpico-climate/internal/hostboard"
	"cloudpico-climate/internal/logging"
	"cloudpico-climate/internal/monitor"
	"cloudpico-climate/internal/serialport"
)

var version = "dev"
var appName = "climate-monitor"

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg, version, appName)
	slog.SetDefault(logger)

	slog.Info("starting",
		"app", appName,
		"version", version,
		"env", cfg.AppEnv,
		"log_level", cfg.LogLevel.String(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run failed", "err", err)
		os.Exit(1)
	}

	slog.Info("shutting down")
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	port, name, err := serialport.OpenOrDetect(cfg.SerialPort, cfg.SerialBaud, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := port.Close(); err != nil {
			logger.Error("serial close", "port", name, "error", err)
		}
	}()

	board, err := hostboard.Open(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := board.Close(); err != nil {
			logger.Error("board close", "error", err)
		}
	}()

	// Delays end early on shutdown so a playing melody does not hold it up.
	sleep := func(d time.Duration) {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
		case <-t.C:
		}
	}

	mcfg := monitor.DefaultConfig()
	mcfg.BaudRate = uint32(cfg.SerialBaud)

	m := monitor.New(mcfg, board.Hardware(serialport.NewLineSerial(port)),
		monitor.WithLogger(logger),
		monitor.WithSleep(sleep),
		monitor.WithHalt(func() { <-ctx.Done() }),
	)
	if err := m.Start(); err != nil {
		return err
	}
	return m.Run(ctx)
}
