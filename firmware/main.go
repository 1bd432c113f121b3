//go:build tinygo

// Command firmware is the Pico build of the climate monitor: DHT11 probe,
// SSD1306 screen, three indicator LEDs and a buzzer.
package main

import (
	"context"
	"log/slog"
	"machine"
	"time"

	"cloudpico-climate/internal/monitor"
)

func main() {
	hw := monitor.Hardware{
		Serial:  usbSerial{port: machine.Serial},
		Sensor:  newDHTSensor(pinDHT),
		Display: newOLED(machine.I2C0),
		Indicators: monitor.Indicators{
			Hot:    outputPin{pin: pinHot},
			Normal: outputPin{pin: pinNormal},
			Cold:   outputPin{pin: pinCold},
		},
		Buzzer: &pwmBuzzer{pwm: machine.PWM4, pin: pinBuzzer},
	}

	// The serial line carries the GET protocol, so nothing is logged.
	m := monitor.New(monitor.DefaultConfig(), hw,
		monitor.WithLogger(slog.New(slog.DiscardHandler)),
	)
	if err := m.Start(); err != nil {
		// Start only returns when the serial port itself could not be
		// configured; there is nowhere to report it.
		for {
			time.Sleep(time.Second)
		}
	}
	_ = m.Run(context.Background())
}
