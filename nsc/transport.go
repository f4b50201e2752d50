// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package nsc

import (
	"github.com/usbarmory/GoTEE-nsgate/rtos"
)

// PutRequest results
const (
	// request queued, a response will be signalled on the request channel
	Queued = 0
	// request handled synchronously, no response will follow
	Handled = 1
)

// Transport represents the two Non-Secure Callable entry points exposed by
// Secure firmware.
//
// PutRequest enqueues a request and returns Queued, Handled or a negative
// errno. GetResponse fetches the response for a request, populating params in
// place, and returns 0 or a negative errno.
//
// The parameter slice is a fixed-layout structure whose size must match what
// Secure firmware expects for the request API.
type Transport interface {
	PutRequest(req Request, params []byte) int32
	GetResponse(req Request, params []byte) int32
}

// Critical wraps a Transport so that every invocation runs with thread
// rescheduling suppressed.
//
// The Secure and Non-Secure domains have separate stack pointers which the
// core swaps on every domain transition, the Non-Secure kernel has no
// visibility of the Secure one. A context switch while a thread is logically
// inside a Non-Secure Callable function would swap out the thread stack while
// Secure execution is still bound to it, its eventual return then unwinds
// into a corrupted stack.
//
// Interrupts are left enabled, from interrupt context no thread switch can
// occur and the scheduler is not touched.
type Critical struct {
	Transport Transport
	Kernel    rtos.Kernel
}

// PutRequest invokes the enqueue entry point with the scheduler locked.
func (c *Critical) PutRequest(req Request, params []byte) int32 {
	defer rtos.SchedGuard(c.Kernel)()
	return c.Transport.PutRequest(req, params)
}

// GetResponse invokes the fetch entry point with the scheduler locked.
func (c *Critical) GetResponse(req Request, params []byte) int32 {
	defer rtos.SchedGuard(c.Kernel)()
	return c.Transport.GetResponse(req, params)
}
