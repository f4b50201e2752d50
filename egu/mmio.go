// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package egu

import (
	"sync/atomic"
	"unsafe"

	"github.com/usbarmory/tamago/bits"
)

// EGU registers
const (
	TASKS_TRIGGER     = 0x000
	SUBSCRIBE_TRIGGER = 0x080
	EVENTS_TRIGGERED  = 0x100
	PUBLISH_TRIGGERED = 0x180

	INTEN    = 0x300
	INTENSET = 0x304
	INTENCLR = 0x308

	// SUBSCRIBE/PUBLISH fields
	DPPI_CHIDX = 0
	DPPI_EN    = 31
)

// MMIO represents a memory mapped event generator instance.
type MMIO struct {
	// Base register
	Base uintptr
}

func (hw *MMIO) reg(off int) *uint32 {
	return (*uint32)(unsafe.Pointer(hw.Base + uintptr(off)))
}

func (hw *MMIO) write(off int, val uint32) {
	atomic.StoreUint32(hw.reg(off), val)
}

func (hw *MMIO) read(off int) uint32 {
	return atomic.LoadUint32(hw.reg(off))
}

// Bind implements EventGenerator.
func (hw *MMIO) Bind(channel int, task int, event int) {
	var sub, pub uint32

	bits.SetN(&sub, DPPI_CHIDX, 0xff, uint32(channel))
	bits.Set(&sub, DPPI_EN)

	bits.SetN(&pub, DPPI_CHIDX, 0xff, uint32(channel))
	bits.Set(&pub, DPPI_EN)

	hw.write(SUBSCRIBE_TRIGGER+4*task, sub)
	hw.write(PUBLISH_TRIGGERED+4*event, pub)
}

// EnableInterrupts implements EventGenerator.
func (hw *MMIO) EnableInterrupts(mask uint32) {
	hw.write(INTENSET, mask)
}

// DisableInterrupts implements EventGenerator.
func (hw *MMIO) DisableInterrupts(mask uint32) {
	hw.write(INTENCLR, mask)
}

// Pending implements EventGenerator.
func (hw *MMIO) Pending(event int) bool {
	val := hw.read(EVENTS_TRIGGERED + 4*event)
	return bits.Get(&val, 0, 1) != 0
}

// Clear implements EventGenerator.
func (hw *MMIO) Clear(event int) {
	hw.write(EVENTS_TRIGGERED+4*event, 0)
}

// Trigger implements EventGenerator.
func (hw *MMIO) Trigger(task int) {
	hw.write(TASKS_TRIGGER+4*task, 1)
}

// Enabled returns the interrupt enable register.
func (hw *MMIO) Enabled() uint32 {
	return hw.read(INTEN)
}
