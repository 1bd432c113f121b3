package serialport

import (
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"
)

// LineSerial exposes a host port the way the monitor loop expects a
// microcontroller UART: a byte count of pending input and single byte reads.
type LineSerial struct {
	port Port
	buf  []byte
	tmp  [64]byte
}

func NewLineSerial(port Port) *LineSerial {
	return &LineSerial{port: port}
}

func (s *LineSerial) Configure(baud uint32) error {
	if err := s.port.SetMode(&serial.Mode{BaudRate: int(baud)}); err != nil {
		return fmt.Errorf("set baud %d: %w", baud, err)
	}
	// Reads only drain what is already there.
	if err := s.port.SetReadTimeout(time.Millisecond); err != nil {
		return fmt.Errorf("set read timeout: %w", err)
	}
	return nil
}

func (s *LineSerial) Buffered() int {
	if len(s.buf) == 0 {
		s.fill()
	}
	return len(s.buf)
}

func (s *LineSerial) ReadByte() (byte, error) {
	if len(s.buf) == 0 {
		s.fill()
	}
	if len(s.buf) == 0 {
		return 0, io.EOF
	}
	c := s.buf[0]
	s.buf = s.buf[1:]
	return c, nil
}

func (s *LineSerial) Write(p []byte) (int, error) {
	return s.port.Write(p)
}

func (s *LineSerial) fill() {
	n, err := s.port.Read(s.tmp[:])
	if err != nil || n == 0 {
		return
	}
	s.buf = append(s.buf, s.tmp[:n]...)
}
