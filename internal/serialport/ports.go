// Package serialport talks to the monitor over a host serial port: it finds
// USB ports, opens them without resetting the board, and runs the GET
// request/reply exchange.
package serialport

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// ErrNoPorts is returned when no USB serial port is present.
var ErrNoPorts = errors.New("no USB serial ports found")

// Port is the subset of serial.Port used here.
type Port interface {
	io.ReadWriteCloser
	SetMode(mode *serial.Mode) error
	SetReadTimeout(t time.Duration) error
	ResetInputBuffer() error
}

// PortInfo describes one USB serial port.
type PortInfo struct {
	Name         string `json:"name"`
	VID          string `json:"vid"`
	PID          string `json:"pid"`
	SerialNumber string `json:"serial_number,omitempty"`
	Product      string `json:"product,omitempty"`
}

func (p PortInfo) String() string {
	s := p.Name
	if p.VID != "" || p.PID != "" {
		s += fmt.Sprintf(" [%s:%s]", p.VID, p.PID)
	}
	if p.Product != "" {
		s += " " + p.Product
	}
	return s
}

// ListUSB returns the serial ports backed by a USB device.
func ListUSB() ([]PortInfo, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("enumerate serial ports: %w", err)
	}
	var out []PortInfo
	for _, d := range details {
		if !d.IsUSB {
			continue
		}
		out = append(out, PortInfo{
			Name:         d.Name,
			VID:          d.VID,
			PID:          d.PID,
			SerialNumber: d.SerialNumber,
			Product:      d.Product,
		})
	}
	return out, nil
}

// Open opens name at baud. DTR and RTS are dropped right away so the
// board's auto-reset circuit is not triggered.
func Open(name string, baud int) (Port, error) {
	port, err := serial.Open(name, &serial.Mode{
		BaudRate: baud,
		InitialStatusBits: &serial.ModemOutputBits{
			DTR: false,
			RTS: false,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	return port, nil
}

// Detect opens the first USB serial port that accepts a connection and
// returns it with its name.
func Detect(baud int, logger *slog.Logger) (Port, string, error) {
	return detect(ListUSB, Open, baud, logger)
}

func detect(
	list func() ([]PortInfo, error),
	open func(name string, baud int) (Port, error),
	baud int,
	logger *slog.Logger,
) (Port, string, error) {
	ports, err := list()
	if err != nil {
		return nil, "", err
	}
	if len(ports) == 0 {
		return nil, "", ErrNoPorts
	}

	var errs []error
	for _, p := range ports {
		port, err := open(p.Name, baud)
		if err != nil {
			logger.Debug("serial: port rejected", "port", p.Name, "error", err)
			errs = append(errs, err)
			continue
		}
		logger.Info("serial: port connected", "port", p.Name, "baud", baud)
		return port, p.Name, nil
	}
	return nil, "", fmt.Errorf("no USB serial port could be opened: %w", errors.Join(errs...))
}

// OpenOrDetect opens name, or the first usable USB port when name is empty.
func OpenOrDetect(name string, baud int, logger *slog.Logger) (Port, string, error) {
	if name == "" {
		return Detect(baud, logger)
	}
	port, err := Open(name, baud)
	return port, name, err
}
