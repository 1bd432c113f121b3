package monitor

import "io"

// Sensor is a temperature/humidity probe.
type Sensor interface {
	Configure() error
	ReadTemperature() (float32, error)
	ReadHumidity() (float32, error)
}

// Display is a small monochrome screen with a text cursor. Drawing calls
// only touch the frame buffer; Flush pushes it to the panel.
type Display interface {
	Configure() error
	ClearBuffer()
	SetCursor(x, y int16)
	Print(s string)
	FillRect(x, y, w, h int16, on bool)
	Flush() error
}

// OutputPin is a digital output line.
type OutputPin interface {
	ConfigureOutput()
	Set(high bool)
}

// Buzzer generates a square-wave tone until stopped.
type Buzzer interface {
	ConfigureOutput()
	Tone(hz int)
	Stop()
}

// Serial is the command channel to the host.
type Serial interface {
	io.Writer
	Configure(baud uint32) error
	Buffered() int
	ReadByte() (byte, error)
}

// Indicators are the three status lines. Exactly one is high after each
// iteration.
type Indicators struct {
	Hot    OutputPin // pin A
	Normal OutputPin // pin B
	Cold   OutputPin // pin C
}

// Hardware is everything the loop touches.
type Hardware struct {
	Serial     Serial
	Sensor     Sensor
	Display    Display
	Indicators Indicators
	Buzzer     Buzzer
}
