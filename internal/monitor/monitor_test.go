package monitor

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"cloudpico-climate/internal/climate"
)

func TestStart_Sequence(t *testing.T) {
	r := newRig(22, 45)

	if err := r.monitor.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	want := []string{
		"serial.configure 9600",
		"sensor.configure",
		"display.configure",
		"display.clear",
		"display.cursor 5,5",
		`display.print "Begin\n"`,
		"display.flush",
		"sleep 2s",
		"pin.configure A",
		"pin.configure B",
		"pin.configure C",
		"buzzer.configure",
	}
	if !slices.Equal(r.ev.log, want) {
		t.Errorf("events:\n got %q\nwant %q", r.ev.log, want)
	}
	if r.halted {
		t.Error("halted after a successful start")
	}
}

func TestStart_DisplayFailureHalts(t *testing.T) {
	r := newRig(22, 45)
	r.display.configErr = errors.New("no ack at 0x3c")

	err := r.monitor.Start()
	if !errors.Is(err, ErrDisplayInit) {
		t.Fatalf("Start() error = %v, want ErrDisplayInit", err)
	}
	if !r.halted {
		t.Fatal("halt was not called")
	}
	if got, want := r.serial.out.String(), DisplayInitMessage+"\r\n"; got != want {
		t.Errorf("serial output = %q, want %q", got, want)
	}
	if n := r.ev.count("pin."); n != 0 {
		t.Errorf("pin events = %d, want 0", n)
	}
	if n := r.ev.count("buzzer."); n != 0 {
		t.Errorf("buzzer events = %d, want 0", n)
	}
	if n := r.ev.count("sensor.temperature") + r.ev.count("sensor.humidity"); n != 0 {
		t.Errorf("sensor reads = %d, want 0", n)
	}
	if r.display.flushCount != 0 {
		t.Errorf("display flushed %d times, want 0", r.display.flushCount)
	}
}

func TestStep_OutputStates(t *testing.T) {
	tests := []struct {
		name      string
		temp, hum float32
		want      climate.OutputState
		a, b, c   bool
	}{
		{name: "normal", temp: 22.5, hum: 45, want: climate.Normal, b: true},
		{name: "cold", temp: 15, hum: 45, want: climate.Cold, c: true},
		{name: "humid", temp: 22, hum: 75, want: climate.Cold, c: true},
		{name: "hot", temp: 31, hum: 45, want: climate.Hot, a: true},
		{name: "dry", temp: 22, hum: 30, want: climate.Hot, a: true},
		{name: "cold and dry", temp: 10, hum: 30, want: climate.Cold, c: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRig(tt.temp, tt.hum)
			_, state := r.monitor.Step()
			if state != tt.want {
				t.Fatalf("state = %v, want %v", state, tt.want)
			}
			a, b, c := r.pins()
			if a != tt.a || b != tt.b || c != tt.c {
				t.Errorf("pins A,B,C = %v,%v,%v, want %v,%v,%v", a, b, c, tt.a, tt.b, tt.c)
			}
			if tt.want != climate.Hot && len(r.buzzer.tones) != 0 {
				t.Errorf("tones = %v, want none", r.buzzer.tones)
			}
		})
	}
}

func TestStep_InvalidReadingIsNormal(t *testing.T) {
	tests := []struct {
		name            string
		tempErr, humErr error
		hum             float32
	}{
		{name: "both fail", tempErr: errNoData, humErr: errNoData},
		{name: "temperature fails with humid air", tempErr: errNoData, hum: 90},
		{name: "humidity fails", humErr: errNoData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRig(40, tt.hum)
			r.sensor.tempErr = tt.tempErr
			r.sensor.humErr = tt.humErr

			reading, state := r.monitor.Step()
			if reading.Valid() {
				t.Fatal("reading is valid, want invalid")
			}
			if state != climate.Normal {
				t.Errorf("state = %v, want normal", state)
			}
			if a, b, c := r.pins(); a || !b || c {
				t.Errorf("pins A,B,C = %v,%v,%v, want false,true,false", a, b, c)
			}
			if r.display.text != "Eror!\n" {
				t.Errorf("display text = %q, want %q", r.display.text, "Eror!\n")
			}
		})
	}
}

func TestStep_HotPlaysMelody(t *testing.T) {
	r := newRig(35, 50)

	r.monitor.Step()

	want := []int{1000, 500, 1000, 500, 1000, 500, 500, 1000, 500, 1000, 1500, 500, 1000, 500, 1000, 500, 1000}
	if !slices.Equal(r.buzzer.tones, want) {
		t.Fatalf("tones = %v, want %v", r.buzzer.tones, want)
	}
	if r.buzzer.playing {
		t.Error("buzzer still sounding after the melody")
	}
	if r.sleeps.total != 17*300*time.Millisecond {
		t.Errorf("blocked for %v, want 5.1s", r.sleeps.total)
	}
	for i, d := range r.sleeps.calls {
		if d != 300*time.Millisecond {
			t.Errorf("sleep %d = %v, want 300ms", i, d)
		}
	}

	// The frame reaches the panel only after the melody.
	flushAt := slices.Index(r.ev.log, "display.flush")
	lastStop := -1
	for i, e := range r.ev.log {
		if e == "buzzer.stop" {
			lastStop = i
		}
	}
	if flushAt < lastStop {
		t.Errorf("display flushed at event %d, before the melody ended at %d", flushAt, lastStop)
	}
}

func TestStep_RendersReading(t *testing.T) {
	r := newRig(22.5, 45)

	r.monitor.Step()

	want := "Temp:\n22.50 C\nHumidity: 45.00 %\n"
	if r.display.text != want {
		t.Errorf("display text = %q, want %q", r.display.text, want)
	}
	if !slices.Contains(r.ev.log, "display.fill 5,16,118,48,false") {
		t.Errorf("readout region was not cleared: %q", r.ev.log)
	}
	if !slices.Contains(r.ev.log, "display.cursor 5,0") {
		t.Errorf("cursor not positioned: %q", r.ev.log)
	}
	if r.display.flushCount != 1 {
		t.Errorf("flushes = %d, want 1", r.display.flushCount)
	}
}

func TestStep_ErrorAfterSuccessClearsScreen(t *testing.T) {
	r := newRig(22.5, 45)
	r.monitor.Step()

	r.sensor.tempErr = errNoData
	r.monitor.Step()

	if r.display.text != "Eror!\n" {
		t.Errorf("display text = %q, want only the error line", r.display.text)
	}
}

func TestStep_SerialCommands(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		tempErr error
		want    string
	}{
		{name: "get", input: "GET\n", want: "22.50 45.00\r\n"},
		{name: "get with whitespace", input: "  GET \r\n", want: "22.50 45.00\r\n"},
		{name: "get without newline", input: "GET", want: "22.50 45.00\r\n"},
		{name: "get with sensor error", input: "GET\n", tempErr: errNoData, want: "ERROR\r\n"},
		{name: "lowercase", input: "get\n", want: ""},
		{name: "ping", input: "PING\n", want: ""},
		{name: "no input", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRig(22.5, 45)
			r.sensor.tempErr = tt.tempErr
			r.serial.in.WriteString(tt.input)

			r.monitor.Step()

			if got := r.serial.out.String(); got != tt.want {
				t.Errorf("serial output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStep_OneCommandPerIteration(t *testing.T) {
	r := newRig(22.5, 45)
	r.serial.in.WriteString("GET\nGET\n")

	r.monitor.Step()
	if got := r.serial.out.String(); got != "22.50 45.00\r\n" {
		t.Fatalf("first iteration output = %q", got)
	}
	if r.serial.Buffered() != len("GET\n") {
		t.Fatalf("buffered = %d, want the second command still pending", r.serial.Buffered())
	}

	r.monitor.Step()
	if got := r.serial.out.String(); got != "22.50 45.00\r\n22.50 45.00\r\n" {
		t.Errorf("second iteration output = %q", got)
	}
}

func TestRun_StopsBetweenIterations(t *testing.T) {
	r := newRig(22.5, 45)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	polls := 0
	r.monitor.sleep = func(d time.Duration) {
		if d == r.monitor.cfg.PollInterval {
			polls++
			if polls == 3 {
				cancel()
			}
		}
	}

	err := r.monitor.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if n := r.ev.count("sensor.temperature"); n != 3 {
		t.Errorf("iterations = %d, want 3", n)
	}
	if r.display.flushCount != 3 {
		t.Errorf("flushes = %d, want 3", r.display.flushCount)
	}
}

func TestMelody_ReturnsCopy(t *testing.T) {
	m := Melody()
	if len(m) != 17 {
		t.Fatalf("len = %d, want 17", len(m))
	}
	m[0] = 1
	if Melody()[0] != 1000 {
		t.Error("Melody() exposes the shared tune")
	}
}
