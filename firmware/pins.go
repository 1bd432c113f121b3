//go:build tinygo

package main

import "machine"

// Raspberry Pi Pico wiring.
const (
	pinHot    = machine.GP12 // A
	pinNormal = machine.GP11 // B
	pinCold   = machine.GP10 // C
	pinBuzzer = machine.GP8
	pinDHT    = machine.GP13

	pinDisplaySDA = machine.GP4
	pinDisplaySCL = machine.GP5

	displayAddress = 0x3C
	displayWidth   = 128
	displayHeight  = 64
)
