// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package gateway

import (
	"github.com/usbarmory/tamago/bits"

	"github.com/usbarmory/GoTEE-nsgate/rtos"
)

// Reserve atomically claims the lowest numbered free bidirectional channel,
// ErrNoChannel is returned if none is available.
func (g *Gateway) Reserve() (ch uint8, err error) {
	return g.thread.reserve()
}

// Free releases a channel, freeing an out of range or already free channel
// has no effect.
func (g *Gateway) Free(ch uint8) {
	g.thread.free(ch)
}

func (c *Context) reserve() (ch uint8, err error) {
	g := c.g

	defer rtos.IRQGuard(c.kernel)()

	for i := 0; i < g.channels; i++ {
		if bits.Get(&g.reserved, i, 1) != 0 {
			continue
		}

		bits.Set(&g.reserved, i)

		return uint8(i), nil
	}

	return 0, ErrNoChannel
}

func (c *Context) free(ch uint8) {
	if int(ch) >= c.g.channels {
		return
	}

	defer rtos.IRQGuard(c.kernel)()
	bits.Clear(&c.g.reserved, int(ch))
}

// Reserved returns the channel reservation bitmap.
func (g *Gateway) Reserved() (mask uint32) {
	defer rtos.IRQGuard(g.kernel)()
	return g.reserved
}

// HandleInterrupt services the event generator shared interrupt, every
// pending channel event, including the asynchronous one, is cleared and its
// waiter signalled.
//
// It must be called in interrupt context.
func (g *Gateway) HandleInterrupt() {
	for ch := 0; ch <= g.channels; ch++ {
		if !g.events.Pending(ch) {
			continue
		}

		g.events.Clear(ch)
		g.sems[ch].Give()
	}
}
