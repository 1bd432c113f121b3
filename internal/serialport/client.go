package serialport

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"cloudpico-climate/internal/climate"
	"cloudpico-climate/internal/protocol"
)

const (
	defaultReadTimeout = 3 * time.Second
	readPollTimeout    = 100 * time.Millisecond
)

// Client requests readings from the monitor. The device answers GET only
// once per loop iteration, so the client waits ResponseDelay before reading.
type Client struct {
	port          Port
	responseDelay time.Duration
	readTimeout   time.Duration

	mu sync.Mutex
}

func NewClient(port Port, responseDelay time.Duration) *Client {
	return &Client{
		port:          port,
		responseDelay: responseDelay,
		readTimeout:   defaultReadTimeout,
	}
}

// Request sends GET and decodes the reply. Errors from protocol.ParseResponse
// (ErrNoResponse, ErrSensorFault, ErrMalformed) are returned as is.
func (c *Client) Request(ctx context.Context) (climate.Reading, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.port.ResetInputBuffer(); err != nil {
		return climate.Reading{}, fmt.Errorf("reset input: %w", err)
	}
	if _, err := io.WriteString(c.port, protocol.Command+"\n"); err != nil {
		return climate.Reading{}, fmt.Errorf("write command: %w", err)
	}

	timer := time.NewTimer(c.responseDelay)
	select {
	case <-ctx.Done():
		timer.Stop()
		return climate.Reading{}, ctx.Err()
	case <-timer.C:
	}

	line, err := c.readLine(ctx)
	if err != nil {
		return climate.Reading{}, err
	}
	return protocol.ParseResponse(line)
}

// readLine returns the bytes before the first '\n', or whatever arrived
// before readTimeout elapsed.
func (c *Client) readLine(ctx context.Context) (string, error) {
	if err := c.port.SetReadTimeout(readPollTimeout); err != nil {
		return "", fmt.Errorf("set read timeout: %w", err)
	}

	deadline := time.Now().Add(c.readTimeout)
	var line []byte
	buf := make([]byte, 64)
	for time.Now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		n, err := c.port.Read(buf)
		if err != nil {
			return "", fmt.Errorf("read: %w", err)
		}
		for _, b := range buf[:n] {
			if b == '\n' {
				return string(line), nil
			}
			line = append(line, b)
		}
	}
	return string(line), nil
}

func (c *Client) Close() error {
	return c.port.Close()
}
