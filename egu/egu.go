// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package egu implements support for event generator peripherals, providing
// software triggerable task/event pairs which share a single interrupt line
// and are used as cross-domain completion signals.
package egu

// Channels is the number of task/event pairs of an event generator instance.
const Channels = 16

// EventGenerator represents an event generator peripheral.
type EventGenerator interface {
	// Bind connects a task and an event to an interconnect channel, so
	// that the other security domain can trigger the task and observe
	// the event.
	Bind(channel int, task int, event int)
	// EnableInterrupts enables the interrupt sources in mask (bit n for
	// event n).
	EnableInterrupts(mask uint32)
	// DisableInterrupts disables the interrupt sources in mask.
	DisableInterrupts(mask uint32)
	// Pending reports whether an event is set.
	Pending(event int) bool
	// Clear clears an event.
	Clear(event int)
	// Trigger triggers a task, setting its matching event.
	Trigger(task int)
}

// Mask returns the interrupt mask for events [0, n).
func Mask(n int) (mask uint32) {
	if n >= 32 {
		return ^uint32(0)
	}

	return uint32(1)<<n - 1
}
