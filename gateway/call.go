// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package gateway

import (
	"log"

	"github.com/usbarmory/GoTEE-nsgate/nsc"
	"github.com/usbarmory/GoTEE-nsgate/rtos"
)

// Context represents the execution context in which gateway requests are
// performed, it binds the kernel view used for locking to the gateway.
type Context struct {
	g      *Gateway
	kernel rtos.Kernel

	// scheduler locked transport
	transport nsc.Transport
}

func newContext(g *Gateway, k rtos.Kernel) *Context {
	return &Context{
		g:      g,
		kernel: k,
		transport: &nsc.Critical{
			Transport: g.raw,
			Kernel:    k,
		},
	}
}

// Context returns the context for requests performed with the argument
// kernel view, interrupt service routines must use the view they are handed
// (see rtos.ISR).
func (g *Gateway) Context(k rtos.Kernel) *Context {
	return newContext(g, k)
}

// Call performs a blocking Secure service request in thread context, the
// parameter structure is handed over by reference and holds the response on
// return.
//
// A negative Secure result is returned as an nsc.Errno error, ErrNoChannel is
// returned when all channels are in use.
func (g *Gateway) Call(service nsc.Service, api nsc.API, params nsc.Params) (res int32, err error) {
	return g.thread.Call(service, api, params)
}

// RequestPendSV requests Secure firmware to pend the Non-Secure PendSV
// exception from thread context.
func (g *Gateway) RequestPendSV() (err error) {
	return g.thread.RequestPendSV()
}

// Call performs a blocking Secure service request, see Gateway.Call.
//
// In interrupt context it must not be invoked for requests which Secure
// firmware queues, as the wait for completion would never end.
func (c *Context) Call(service nsc.Service, api nsc.API, params nsc.Params) (res int32, err error) {
	g := c.g

	if res, ok := c.intercept(service, api, params); ok {
		return nsc.Result(res)
	}

	ch, err := c.reserve()

	if err != nil {
		return
	}

	defer c.free(ch)

	var buf []byte

	if params != nil {
		buf = params.Bytes()
	}

	sem := &g.sems[ch]
	req := nsc.NewRequest(ch, service, api)

	// discard completions signalled for earlier owners of this channel
	sem.Take(rtos.NoWait)

	switch res = c.transport.PutRequest(req, buf); res {
	case nsc.Queued:
	case nsc.Handled:
		return 0, nil
	default:
		return nsc.Result(res)
	}

	sem.Take(rtos.Forever)
	g.calls[ch].Add(1)

	return nsc.Result(c.transport.GetResponse(req, buf))
}

// RequestPendSV requests Secure firmware to pend the Non-Secure PendSV
// exception, it is safe to call in interrupt context.
func (c *Context) RequestPendSV() (err error) {
	defer rtos.IRQGuard(c.kernel)()

	req := nsc.NewRequest(0, nsc.Kernel, nsc.KernelPendSV)

	if _, err = nsc.Result(c.g.raw.PutRequest(req, nil)); err != nil {
		log.Printf("NS gateway PendSV request error, %v", err)
	}

	return
}

// intercept handles services which are implemented on the Non-Secure side
// and never cross the trust boundary.
func (c *Context) intercept(service nsc.Service, api nsc.API, params nsc.Params) (res int32, ok bool) {
	switch {
	case service == nsc.At && api == nsc.AtSubscribeUrcs:
		return c.subscribeUrcs(params), true
	}

	return
}

func (c *Context) subscribeUrcs(params nsc.Params) int32 {
	p, ok := params.(*nsc.SubscribeUrcsParameters)

	if !ok || p == nil {
		return int32(ErrSubscribed)
	}

	defer rtos.IRQGuard(c.kernel)()

	if c.g.urc.Load() != nil {
		return int32(ErrSubscribed)
	}

	if p.Callback != nil {
		cb := p.Callback
		c.g.urc.Store(&cb)
	}

	return 0
}
