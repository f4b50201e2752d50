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

// PumpThread is the asynchronous message pump thread name.
const PumpThread = "secure_service"

// RegisterAsyncCallback registers the AT URC callback, only a single callback
// can ever be registered, further registrations return ErrSubscribed.
func (g *Gateway) RegisterAsyncCallback(cb nsc.UrcCallback) (err error) {
	_, err = g.Call(nsc.At, nsc.AtSubscribeUrcs, &nsc.SubscribeUrcsParameters{Callback: cb})
	return
}

func (g *Gateway) callback() nsc.UrcCallback {
	if cb := g.urc.Load(); cb != nil {
		return *cb
	}

	return nil
}

// Start launches the asynchronous message pump thread, it has no effect if
// already started.
func (g *Gateway) Start() {
	if !g.started.CompareAndSwap(false, true) {
		return
	}

	rtos.Go(PumpThread, g.Pump)
}

// Pump drains and dispatches asynchronous messages each time the
// asynchronous channel is signalled, it never returns.
func (g *Gateway) Pump() {
	for {
		g.Drain()
		g.sems[g.async].Take(rtos.Forever)
	}
}

// Drain fetches and dispatches asynchronous messages until Secure firmware
// reports none available, the number of dispatched messages is returned.
func (g *Gateway) Drain() (n int) {
	var msg nsc.AsyncParameters

	buf := make([]byte, nsc.AsyncParametersSize)
	req := nsc.AsyncRequest(g.async)

	for g.thread.transport.GetResponse(req, buf) == 0 {
		if err := msg.Unmarshal(buf); err != nil {
			log.Printf("NS gateway invalid async message, %v", err)
			continue
		}

		n++
		g.messages.Add(1)
		g.dispatch(&msg)
	}

	return
}

func (g *Gateway) dispatch(msg *nsc.AsyncParameters) {
	switch msg.Event {
	case nsc.AsyncAtUrc:
		if cb := g.callback(); cb != nil {
			cb(msg.Text())
		}
	default:
		log.Printf("NS gateway dropped async event %d", msg.Event)
	}
}
