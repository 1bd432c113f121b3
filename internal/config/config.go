package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"cloudpico-climate/internal/climate"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level

	// SerialPort is a device path such as /dev/ttyACM0. Empty means
	// auto-detect the first USB serial port.
	SerialPort    string
	SerialBaud    int
	ResponseDelay time.Duration

	StationID    string
	PollInterval time.Duration

	MQTTBroker   string
	MQTTPort     int
	MQTTClientID string

	SQLitePath string
	HTTPAddr   string

	// Host-side alert bounds; see collector.
	AlertHotAbove   float64
	AlertDryBelow   float64
	AlertColdBelow  float64
	AlertHumidAbove float64

	// Linux board wiring for cmd/monitor.
	I2CBus        string
	BME280Address uint16
	GPIOHot       string
	GPIONormal    string
	GPIOCold      string
	GPIOBuzzer    string
}

// AlertThresholds is the host alert band built from the ALERT_* values.
func (c Config) AlertThresholds() climate.Thresholds {
	return climate.Thresholds{
		ColdBelow:  float32(c.AlertColdBelow),
		HumidAbove: float32(c.AlertHumidAbove),
		HotAbove:   float32(c.AlertHotAbove),
		DryBelow:   float32(c.AlertDryBelow),
	}
}

func LoadFromEnv() (Config, error) {
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	level, err := parseLogLevel(envOr("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, err
	}

	serialBaud, err := envInt("SERIAL_BAUD", 9600)
	if err != nil {
		return Config{}, err
	}
	if serialBaud <= 0 {
		return Config{}, fmt.Errorf("SERIAL_BAUD must be positive, got %d", serialBaud)
	}

	responseDelay, err := envDuration("RESPONSE_DELAY", "2s")
	if err != nil {
		return Config{}, err
	}

	pollInterval, err := envDuration("POLL_INTERVAL", "10s")
	if err != nil {
		return Config{}, err
	}
	if pollInterval <= 0 {
		return Config{}, fmt.Errorf("POLL_INTERVAL must be positive, got %v", pollInterval)
	}

	mqttPort, err := envInt("MQTT_PORT", 1883)
	if err != nil {
		return Config{}, err
	}

	hot, err := envFloat("ALERT_HOT_ABOVE", 27)
	if err != nil {
		return Config{}, err
	}
	dry, err := envFloat("ALERT_DRY_BELOW", 35)
	if err != nil {
		return Config{}, err
	}
	cold, err := envFloat("ALERT_COLD_BELOW", 18)
	if err != nil {
		return Config{}, err
	}
	humid, err := envFloat("ALERT_HUMID_ABOVE", 70)
	if err != nil {
		return Config{}, err
	}

	bme280AddressStr := envOr("BME280_ADDRESS", "0x76")
	bme280Address, err := strconv.ParseUint(bme280AddressStr, 0, 16)
	if err != nil {
		return Config{}, fmt.Errorf("invalid BME280_ADDRESS %q: %w", bme280AddressStr, err)
	}

	return Config{
		AppEnv:          appEnv,
		LogLevel:        level,
		SerialPort:      strings.TrimSpace(os.Getenv("SERIAL_PORT")),
		SerialBaud:      serialBaud,
		ResponseDelay:   responseDelay,
		StationID:       envOr("STATION_ID", "home"),
		PollInterval:    pollInterval,
		MQTTBroker:      envOr("MQTT_BROKER", "localhost"),
		MQTTPort:        mqttPort,
		MQTTClientID:    envOr("MQTT_CLIENT_ID", "cloudpico-collector"),
		SQLitePath:      envOr("SQLITE_PATH", "data/climate.db"),
		HTTPAddr:        envOr("HTTP_ADDR", ":8080"),
		AlertHotAbove:   hot,
		AlertDryBelow:   dry,
		AlertColdBelow:  cold,
		AlertHumidAbove: humid,
		I2CBus:          strings.TrimSpace(os.Getenv("I2C_BUS")),
		BME280Address:   uint16(bme280Address),
		GPIOHot:         envOr("GPIO_HOT", "GPIO12"),
		GPIONormal:      envOr("GPIO_NORMAL", "GPIO11"),
		GPIOCold:        envOr("GPIO_COLD", "GPIO10"),
		GPIOBuzzer:      envOr("GPIO_BUZZER", "GPIO18"),
	}, nil
}

func envOr(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envInt(key string, def int) (int, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return v, nil
}

func envFloat(key string, def float64) (float64, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return v, nil
}

func envDuration(key, def string) (time.Duration, error) {
	s := envOr(key, def)
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return d, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
