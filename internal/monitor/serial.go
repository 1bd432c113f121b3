package monitor

import (
	"strings"
	"time"

	"cloudpico-climate/internal/climate"
	"cloudpico-climate/internal/protocol"
)

const serialPollStep = time.Millisecond

// serveCommand handles at most one pending command line.
func (m *Monitor) serveCommand(r climate.Reading) {
	if m.hw.Serial.Buffered() == 0 {
		return
	}
	line := m.readLine()
	if !protocol.IsCommand(line) {
		m.logger.Debug("serial: ignoring line", "line", line)
		return
	}
	m.writeLine(protocol.FormatResponse(r))
}

// readLine reads up to '\n' or until no byte has arrived for SerialTimeout.
// The newline is not included.
func (m *Monitor) readLine() string {
	var sb strings.Builder
	var idle time.Duration
	for idle < m.cfg.SerialTimeout {
		if m.hw.Serial.Buffered() == 0 {
			m.sleep(serialPollStep)
			idle += serialPollStep
			continue
		}
		c, err := m.hw.Serial.ReadByte()
		if err != nil {
			m.sleep(serialPollStep)
			idle += serialPollStep
			continue
		}
		if c == '\n' {
			break
		}
		sb.WriteByte(c)
		idle = 0
	}
	return sb.String()
}
