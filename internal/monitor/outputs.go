package monitor

import "cloudpico-climate/internal/climate"

var melody = [...]int{
	1000, 500, 1000, 500, 1000, 500,
	500, 1000, 500, 1000, 1500, 500,
	1000, 500, 1000, 500, 1000,
}

// Melody returns a copy of the alarm tune, in Hz.
func Melody() []int {
	out := make([]int, len(melody))
	copy(out, melody[:])
	return out
}

// DriveIndicators raises the line for state and lowers the other two.
func DriveIndicators(ind Indicators, state climate.OutputState) {
	switch state {
	case climate.Cold:
		ind.Cold.Set(true)
		ind.Hot.Set(false)
		ind.Normal.Set(false)
	case climate.Hot:
		ind.Hot.Set(true)
		ind.Normal.Set(false)
		ind.Cold.Set(false)
	default:
		ind.Normal.Set(true)
		ind.Cold.Set(false)
		ind.Hot.Set(false)
	}
}

// PlayAlarm plays the whole melody, blocking for len(melody)*NoteDuration.
func (m *Monitor) PlayAlarm() {
	m.logger.Info("alarm", "notes", len(m.cfg.Melody))
	for _, hz := range m.cfg.Melody {
		m.hw.Buzzer.Tone(hz)
		m.sleep(m.cfg.NoteDuration)
		m.hw.Buzzer.Stop()
	}
}
