// Package app wires the collector service: serial device, sqlite history,
// MQTT publishing and the HTTP API.
package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"cloudpico-climate/internal/collector"
	"cloudpico-climate/internal/config"
	"cloudpico-climate/internal/db"
	"cloudpico-climate/internal/httpapi"
	"cloudpico-climate/internal/migrate"
	"cloudpico-climate/internal/mqtt"
	"cloudpico-climate/internal/serialport"
	"cloudpico-climate/internal/store"
)

func Run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	logger.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"sqlitePath", cfg.SQLitePath,
		"serialPort", cfg.SerialPort,
		"serialBaud", cfg.SerialBaud,
		"stationID", cfg.StationID,
		"pollInterval", cfg.PollInterval,
		"mqttBroker", cfg.MQTTBroker,
		"mqttPort", cfg.MQTTPort,
	)

	dbConn, err := db.Open(cfg.SQLitePath, cfg.LogLevel <= slog.LevelDebug, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(dbConn); err != nil {
			logger.Error("db close", "error", err)
		}
	}()

	if _, err := migrate.Run(ctx, dbConn, logger); err != nil {
		return err
	}
	history := store.New(dbConn, logger)

	port, name, err := serialport.OpenOrDetect(cfg.SerialPort, cfg.SerialBaud, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := port.Close(); err != nil {
			logger.Error("serial close", "port", name, "error", err)
		}
	}()

	mqttClient := mqtt.NewClient(cfg, logger)
	defer mqttClient.Disconnect()

	// Do not block startup on the broker; the client keeps retrying and the
	// collector only logs failed publishes.
	connectCtx, connectCancel := context.WithTimeout(ctx, 5*time.Second)
	if err := mqttClient.Connect(connectCtx); err != nil {
		logger.Warn("mqtt connection failed (continuing, will retry)", "error", err)
	}
	connectCancel()

	svc := collector.New(
		serialport.NewClient(port, cfg.ResponseDelay),
		history,
		mqttClient,
		collector.Options{
			StationID:  cfg.StationID,
			Interval:   cfg.PollInterval,
			Thresholds: cfg.AlertThresholds(),
		},
		logger,
	)

	api := httpapi.NewAPI(history, dbConn, logger)
	srv := httpapi.NewServer(cfg.HTTPAddr, api.NewMux(), logger)

	errCh := make(chan error, 2)
	go func() {
		logger.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()
	go func() {
		errCh <- svc.Run(ctx)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, context.Canceled) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return ctx.Err()
}
