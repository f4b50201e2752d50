// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package rtos

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Host implements Kernel on top of the Go runtime.
//
// Interrupt-disabled sections are serialized by a mutex and the scheduler lock
// pins the calling goroutine to its thread. Critical sections must not nest.
//
// A Host is always in thread context, interrupt handlers run through
// Interrupt and receive the interrupt context view of the kernel.
type Host struct {
	irq   sync.Mutex
	sched atomic.Int32
}

// LockIRQ implements Kernel.
func (h *Host) LockIRQ() (key uint32) {
	h.irq.Lock()
	return 1
}

// UnlockIRQ implements Kernel.
func (h *Host) UnlockIRQ(key uint32) {
	if key != 0 {
		h.irq.Unlock()
	}
}

// LockScheduler implements Kernel.
func (h *Host) LockScheduler() {
	runtime.LockOSThread()
	h.sched.Add(1)
}

// UnlockScheduler implements Kernel.
func (h *Host) UnlockScheduler() {
	h.sched.Add(-1)
	runtime.UnlockOSThread()
}

// InISR implements Kernel.
func (h *Host) InISR() bool {
	return false
}

// Interrupt runs an interrupt handler with the interrupt context view of the
// kernel.
func (h *Host) Interrupt(isr func(k Kernel)) {
	isr(ISR(h))
}

// SchedLocks returns the number of scheduler locks currently held.
func (h *Host) SchedLocks() int {
	return int(h.sched.Load())
}
