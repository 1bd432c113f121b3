package monitor

import (
	"cloudpico-climate/internal/climate"
	"cloudpico-climate/internal/protocol"
)

const (
	screenWidth  = 128
	screenHeight = 64

	readoutTop = 16
)

// RenderDisplay draws one frame into the display buffer. It does not flush.
//
// The whole buffer is cleared first, so switching from a good reading to an
// error never leaves old digits behind.
func RenderDisplay(d Display, r climate.Reading) {
	d.ClearBuffer()
	d.SetCursor(5, 0)

	if !r.Valid() {
		d.Print("Eror!\n")
		return
	}

	d.FillRect(5, readoutTop, screenWidth-10, screenHeight-readoutTop, false)
	d.Print("Temp:\n")
	d.Print(protocol.FormatValue(r.Temperature.Value))
	d.Print(" C\n")
	d.Print("Humidity: ")
	d.Print(protocol.FormatValue(r.Humidity.Value))
	d.Print(" %\n")
}
