// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package rtos provides the kernel primitives consumed by the Secure service
// gateway: short interrupt-disabled critical sections, scheduler locking,
// interrupt context detection and binary signalling semaphores.
package rtos

// Kernel represents the Non-Secure kernel primitives.
type Kernel interface {
	// LockIRQ disables interrupts and returns a key which restores the
	// previous state.
	LockIRQ() (key uint32)
	// UnlockIRQ restores the interrupt state saved by LockIRQ.
	UnlockIRQ(key uint32)

	// LockScheduler prevents the current thread from being switched out,
	// leaving interrupts enabled.
	LockScheduler()
	// UnlockScheduler re-enables thread switching.
	UnlockScheduler()

	// InISR reports whether the caller is running in interrupt context.
	InISR() bool
}

// IRQGuard disables interrupts and returns the function which restores them,
// meant to be deferred.
func IRQGuard(k Kernel) (restore func()) {
	key := k.LockIRQ()

	return func() {
		k.UnlockIRQ(key)
	}
}

// ISR returns the interrupt context view of a kernel, handed to interrupt
// service routines so that primitives invoked through it know they cannot be
// rescheduled.
func ISR(k Kernel) Kernel {
	if k.InISR() {
		return k
	}

	return isrKernel{k}
}

type isrKernel struct {
	Kernel
}

func (isrKernel) InISR() bool {
	return true
}

// SchedGuard locks the scheduler, unless called in interrupt context, and
// returns the function which unlocks it, meant to be deferred.
func SchedGuard(k Kernel) (unlock func()) {
	if k.InISR() {
		return func() {}
	}

	k.LockScheduler()

	return k.UnlockScheduler
}
