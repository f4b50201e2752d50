// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package mem defines the memory layout shared between the Secure monitor
// and the Non-Secure gateway firmware.
package mem

const (
	// Secure Monitor
	SecureStart = 0x90000000
	SecureSize  = 0x05f00000 // 95MB

	// Main OS, the last page is excluded from the runtime heap and holds
	// the event generator registers.
	NonSecureStart = 0x80000000
	NonSecureSize  = 0x10000000 - EventGeneratorSize // 256MB - 4KB
)

const (
	// Event generator registers, populated by the Secure monitor
	EventGeneratorStart = NonSecureStart + NonSecureSize
	EventGeneratorSize  = 0x1000

	// Event generator interrupt (SGI raised by the Secure monitor)
	EventGeneratorIRQ = 7
)

// Peripherals lists the peripherals requested for Non-Secure access at boot.
var Peripherals = []uint32{
	0x02184000, // USB OTG1
	0x020c9000, // USB PHY1
	0x021e8000, // UART2
}
