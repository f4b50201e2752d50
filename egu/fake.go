// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package egu

import (
	"sync"
)

// Fake implements EventGenerator in software, triggering a task sets its
// event and, if the event interrupt is enabled, runs the interrupt handler on
// the triggering goroutine.
type Fake struct {
	sync.Mutex

	// Handler is the shared interrupt handler
	Handler func()

	events  uint32
	enabled uint32
	binds   map[int]int
}

// Bind implements EventGenerator.
func (f *Fake) Bind(channel int, task int, event int) {
	f.Lock()
	defer f.Unlock()

	if f.binds == nil {
		f.binds = make(map[int]int)
	}

	f.binds[task] = channel
}

// Bound returns the interconnect channel bound to a task.
func (f *Fake) Bound(task int) (channel int, ok bool) {
	f.Lock()
	defer f.Unlock()

	channel, ok = f.binds[task]
	return
}

// EnableInterrupts implements EventGenerator.
func (f *Fake) EnableInterrupts(mask uint32) {
	f.Lock()
	defer f.Unlock()

	f.enabled |= mask
}

// DisableInterrupts implements EventGenerator.
func (f *Fake) DisableInterrupts(mask uint32) {
	f.Lock()
	defer f.Unlock()

	f.enabled &^= mask
}

// Enabled returns the enabled interrupt sources.
func (f *Fake) Enabled() uint32 {
	f.Lock()
	defer f.Unlock()

	return f.enabled
}

// Pending implements EventGenerator.
func (f *Fake) Pending(event int) bool {
	f.Lock()
	defer f.Unlock()

	return f.events&(1<<event) != 0
}

// Clear implements EventGenerator.
func (f *Fake) Clear(event int) {
	f.Lock()
	defer f.Unlock()

	f.events &^= 1 << event
}

// Set sets events without raising the interrupt, as if they fired while
// interrupts were masked.
func (f *Fake) Set(events uint32) {
	f.Lock()
	defer f.Unlock()

	f.events |= events
}

// Trigger implements EventGenerator.
func (f *Fake) Trigger(task int) {
	f.Lock()
	f.events |= 1 << task
	fire := f.enabled&(1<<task) != 0 && f.Handler != nil
	handler := f.Handler
	f.Unlock()

	if fire {
		handler()
	}
}
