package monitor

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// events is a shared, ordered log of everything the fakes were asked to do.
type events struct {
	log []string
}

func (e *events) add(format string, args ...any) {
	e.log = append(e.log, fmt.Sprintf(format, args...))
}

func (e *events) count(prefix string) int {
	n := 0
	for _, s := range e.log {
		if len(s) >= len(prefix) && s[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

var errNoData = errors.New("no data")

type fakeSensor struct {
	ev        *events
	temp, hum float32
	tempErr   error
	humErr    error
}

func (s *fakeSensor) Configure() error { s.ev.add("sensor.configure"); return nil }

func (s *fakeSensor) ReadTemperature() (float32, error) {
	s.ev.add("sensor.temperature")
	return s.temp, s.tempErr
}

func (s *fakeSensor) ReadHumidity() (float32, error) {
	s.ev.add("sensor.humidity")
	return s.hum, s.humErr
}

type fakeDisplay struct {
	ev         *events
	configErr  error
	text       string
	flushCount int
}

func (d *fakeDisplay) Configure() error {
	d.ev.add("display.configure")
	return d.configErr
}

func (d *fakeDisplay) ClearBuffer() {
	d.ev.add("display.clear")
	d.text = ""
}

func (d *fakeDisplay) SetCursor(x, y int16) { d.ev.add("display.cursor %d,%d", x, y) }

func (d *fakeDisplay) Print(s string) {
	d.ev.add("display.print %q", s)
	d.text += s
}

func (d *fakeDisplay) FillRect(x, y, w, h int16, on bool) {
	d.ev.add("display.fill %d,%d,%d,%d,%v", x, y, w, h, on)
}

func (d *fakeDisplay) Flush() error {
	d.ev.add("display.flush")
	d.flushCount++
	return nil
}

type fakePin struct {
	ev         *events
	name       string
	configured bool
	high       bool
}

func (p *fakePin) ConfigureOutput() {
	p.ev.add("pin.configure %s", p.name)
	p.configured = true
}

func (p *fakePin) Set(high bool) {
	p.ev.add("pin.set %s %v", p.name, high)
	p.high = high
}

type fakeBuzzer struct {
	ev         *events
	configured bool
	tones      []int
	playing    bool
}

func (b *fakeBuzzer) ConfigureOutput() {
	b.ev.add("buzzer.configure")
	b.configured = true
}

func (b *fakeBuzzer) Tone(hz int) {
	b.ev.add("buzzer.tone %d", hz)
	b.tones = append(b.tones, hz)
	b.playing = true
}

func (b *fakeBuzzer) Stop() {
	b.ev.add("buzzer.stop")
	b.playing = false
}

type fakeSerial struct {
	ev   *events
	baud uint32
	in   bytes.Buffer
	out  bytes.Buffer
}

func (s *fakeSerial) Configure(baud uint32) error {
	s.ev.add("serial.configure %d", baud)
	s.baud = baud
	return nil
}

func (s *fakeSerial) Buffered() int { return s.in.Len() }

func (s *fakeSerial) ReadByte() (byte, error) {
	c, err := s.in.ReadByte()
	if err != nil {
		return 0, errNoData
	}
	return c, nil
}

func (s *fakeSerial) Write(p []byte) (int, error) {
	s.ev.add("serial.write %q", p)
	return s.out.Write(p)
}

type sleeps struct {
	ev    *events
	total time.Duration
	calls []time.Duration
}

func (s *sleeps) sleep(d time.Duration) {
	if d >= 100*time.Millisecond {
		s.ev.add("sleep %s", d)
	}
	s.calls = append(s.calls, d)
	s.total += d
}

type rig struct {
	ev      *events
	serial  *fakeSerial
	sensor  *fakeSensor
	display *fakeDisplay
	hot     *fakePin
	normal  *fakePin
	cold    *fakePin
	buzzer  *fakeBuzzer
	sleeps  *sleeps
	halted  bool
	monitor *Monitor
}

func newRig(temp, hum float32) *rig {
	ev := &events{}
	r := &rig{
		ev:      ev,
		serial:  &fakeSerial{ev: ev},
		sensor:  &fakeSensor{ev: ev, temp: temp, hum: hum},
		display: &fakeDisplay{ev: ev},
		hot:     &fakePin{ev: ev, name: "A"},
		normal:  &fakePin{ev: ev, name: "B"},
		cold:    &fakePin{ev: ev, name: "C"},
		buzzer:  &fakeBuzzer{ev: ev},
		sleeps:  &sleeps{ev: ev},
	}
	hw := Hardware{
		Serial:  r.serial,
		Sensor:  r.sensor,
		Display: r.display,
		Indicators: Indicators{
			Hot:    r.hot,
			Normal: r.normal,
			Cold:   r.cold,
		},
		Buzzer: r.buzzer,
	}
	r.monitor = New(DefaultConfig(), hw,
		WithLogger(slog.New(slog.DiscardHandler)),
		WithSleep(r.sleeps.sleep),
		WithHalt(func() { r.halted = true }),
	)
	return r
}

func (r *rig) pins() (a, b, c bool) {
	return r.hot.high, r.normal.high, r.cold.high
}
