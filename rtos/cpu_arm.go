// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago && arm

package rtos

import (
	"runtime"

	"github.com/usbarmory/tamago/arm"
)

// CPU implements Kernel on a single ARM core running tamago.
//
// Interrupt-disabled sections mask IRQs on the core, goroutines are only
// switched at scheduling points which Non-Secure Callable veneers never
// reach, the scheduler lock pins the calling goroutine to the runtime thread.
type CPU struct {
	// ARM is the processor instance
	ARM *arm.CPU

	// IRQ lock nesting, only modified with IRQs masked
	depth int
}

// LockIRQ implements Kernel.
func (c *CPU) LockIRQ() (key uint32) {
	c.ARM.DisableInterrupts(false)
	c.depth++

	if c.depth == 1 {
		key = 1
	}

	return
}

// UnlockIRQ implements Kernel.
func (c *CPU) UnlockIRQ(key uint32) {
	c.depth--

	if key != 0 {
		c.ARM.EnableInterrupts(false)
	}
}

// LockScheduler implements Kernel.
func (c *CPU) LockScheduler() {
	runtime.LockOSThread()
}

// UnlockScheduler implements Kernel.
func (c *CPU) UnlockScheduler() {
	runtime.UnlockOSThread()
}

// InISR implements Kernel.
func (c *CPU) InISR() bool {
	return false
}

// Interrupt runs an interrupt handler, serviced with IRQs masked, with the
// interrupt context view of the kernel.
func (c *CPU) Interrupt(isr func(k Kernel)) {
	isr(&cpuISR{c})
}

type cpuISR struct {
	*CPU
}

// IRQs are already masked while servicing an interrupt.
func (c *cpuISR) LockIRQ() (key uint32) {
	return 0
}

func (c *cpuISR) UnlockIRQ(key uint32) {}

func (c *cpuISR) InISR() bool {
	return true
}
