// Package mqtt publishes readings and alerts to an MQTT broker and lets
// tools subscribe to them.
package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"cloudpico-climate/internal/config"
	"cloudpico-climate/internal/types"
)

var (
	ErrNotConnected = errors.New("mqtt client not connected")
	ErrStopped      = errors.New("client stopped")
)

const (
	qos              = 1
	publishTimeout   = 5 * time.Second
	subscribeTimeout = 5 * time.Second
	quiesceMillis    = 250
)

func TelemetryTopic(stationID string) string { return fmt.Sprintf("stations/%s/telemetry", stationID) }
func AlertTopic(stationID string) string     { return fmt.Sprintf("stations/%s/alerts", stationID) }

// Client wraps a paho client that reconnects on its own. Publishing while
// the broker is away fails fast with ErrNotConnected.
type Client struct {
	client mqtt.Client
	logger *slog.Logger
	broker string

	online atomic.Bool
	stop   context.Context
	halt   context.CancelFunc
}

func NewClient(cfg config.Config, logger *slog.Logger) *Client {
	c := &Client{
		logger: logger,
		broker: fmt.Sprintf("tcp://%s:%d", cfg.MQTTBroker, cfg.MQTTPort),
	}
	c.stop, c.halt = context.WithCancel(context.Background())
	c.client = mqtt.NewClient(c.options(cfg.MQTTClientID))
	return c
}

func (c *Client) options(clientID string) *mqtt.ClientOptions {
	return mqtt.NewClientOptions().
		AddBroker(c.broker).
		SetClientID(clientID).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetMaxReconnectInterval(time.Minute).
		SetKeepAlive(30 * time.Second).
		SetPingTimeout(10 * time.Second).
		SetOnConnectHandler(func(mqtt.Client) {
			c.online.Store(true)
			c.logger.Info("mqtt connected", "broker", c.broker)
		}).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			c.online.Store(false)
			c.logger.Warn("mqtt connection lost", "broker", c.broker, "error", err)
		})
}

// Connect waits for the first successful connection. With connect retry on,
// paho keeps trying in the background, so giving up here only stops the
// wait.
func (c *Client) Connect(ctx context.Context) error {
	if c.stop.Err() != nil {
		return ErrStopped
	}
	if c.IsConnected() {
		return nil
	}

	token := c.client.Connect()
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("mqtt connect %s: %w", c.broker, err)
		}
		// paho runs the on-connect handler in its own goroutine.
		c.online.Store(true)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.stop.Done():
		return ErrStopped
	}
}

func (c *Client) PublishTelemetry(t types.Telemetry) error {
	if t.Timestamp.IsZero() {
		t.Timestamp = time.Now()
	}
	return c.publish(TelemetryTopic(t.StationID), false, t)
}

// PublishAlert publishes retained, so a subscriber that connects later
// still sees the last alert of each station.
func (c *Client) PublishAlert(a types.Alert) error {
	return c.publish(AlertTopic(a.StationID), true, a)
}

func (c *Client) publish(topic string, retained bool, v any) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", topic, err)
	}

	token := c.client.Publish(topic, qos, retained, data)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish timeout for topic %s", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}

	c.logger.Debug("published", "topic", topic, "size", len(data))
	return nil
}

// SubscribeTelemetry delivers every valid telemetry message for stationID
// ("+" for all stations) to handler.
func (c *Client) SubscribeTelemetry(stationID string, handler func(types.Telemetry)) error {
	return c.subscribe(TelemetryTopic(stationID), func(topic string, payload []byte) {
		t, err := decodeTelemetry(payload)
		if err != nil {
			c.logger.Warn("invalid telemetry message", "topic", topic, "error", err)
			return
		}
		handler(t)
	})
}

// SubscribeAlerts delivers alerts for stationID ("+" for all stations).
func (c *Client) SubscribeAlerts(stationID string, handler func(types.Alert)) error {
	return c.subscribe(AlertTopic(stationID), func(topic string, payload []byte) {
		var a types.Alert
		if err := json.Unmarshal(payload, &a); err != nil {
			c.logger.Warn("invalid alert message", "topic", topic, "error", err)
			return
		}
		handler(a)
	})
}

func (c *Client) subscribe(topic string, handle func(topic string, payload []byte)) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Subscribe(topic, qos, func(_ mqtt.Client, msg mqtt.Message) {
		c.logger.Debug("received mqtt message", "topic", msg.Topic(), "size", len(msg.Payload()))
		handle(msg.Topic(), msg.Payload())
	})
	if !token.WaitTimeout(subscribeTimeout) {
		return fmt.Errorf("subscribe timeout for topic %s", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribe to %s: %w", topic, err)
	}

	c.logger.Info("subscribed to mqtt topic", "topic", topic)
	return nil
}

func decodeTelemetry(payload []byte) (types.Telemetry, error) {
	var t types.Telemetry
	if err := json.Unmarshal(payload, &t); err != nil {
		return t, fmt.Errorf("decode: %w", err)
	}
	if t.StationID == "" {
		return t, errors.New("station_id is required")
	}
	if t.Timestamp.IsZero() {
		return t, errors.New("timestamp is required")
	}
	if t.Humidity < 0 || t.Humidity > 100 {
		return t, fmt.Errorf("humidity_pct out of range: %.2f (must be 0-100)", t.Humidity)
	}
	return t, nil
}

func (c *Client) IsConnected() bool {
	return c.online.Load() && c.client.IsConnected()
}

// Disconnect is idempotent. After it, Connect returns ErrStopped.
func (c *Client) Disconnect() {
	if c.stop.Err() != nil {
		return
	}
	c.halt()
	c.client.Disconnect(quiesceMillis)
	c.online.Store(false)
	c.logger.Info("mqtt disconnected", "broker", c.broker)
}
