// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package gateway implements the Non-Secure Secure service call multiplexer.
//
// Requests are multiplexed on a fixed number of bidirectional channels, each
// correlated with an event generator task/event pair which Secure firmware
// triggers on completion, plus one asynchronous channel on which Secure
// firmware signals unsolicited messages drained by a dedicated pump thread.
//
// A Gateway owns all multiplexer state and is meant to be instantiated once
// per process, at startup, and never torn down.
package gateway

import (
	"errors"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/usbarmory/GoTEE-nsgate/egu"
	"github.com/usbarmory/GoTEE-nsgate/nsc"
	"github.com/usbarmory/GoTEE-nsgate/rtos"
)

const (
	// DefaultChannels is the default number of bidirectional channels.
	DefaultChannels = 4
	// MaxChannels is the maximum number of bidirectional channels, one
	// event generator pair is reserved to the asynchronous channel.
	MaxChannels = egu.Channels - 1
)

var (
	// ErrNoChannel is returned when all bidirectional channels are in
	// use, the call can be retried.
	ErrNoChannel = nsc.Errno(-nsc.EBUSY)
	// ErrSubscribed is returned when the URC subscription slot is taken
	// or the subscription parameters are malformed.
	ErrSubscribed = nsc.Errno(-nsc.ENOMEM)
)

// Config represents the gateway configuration.
type Config struct {
	// Channels is the number of bidirectional channels
	Channels int
	// Kernel provides the kernel primitives (default rtos.Host)
	Kernel rtos.Kernel
	// Transport is the raw Non-Secure Callable transport
	Transport nsc.Transport
	// Events is the completion signalling event generator
	Events egu.EventGenerator
}

// Gateway represents a Secure service call multiplexer instance.
type Gateway struct {
	kernel rtos.Kernel
	events egu.EventGenerator

	// raw transport, used only with interrupts disabled or through a
	// Context
	raw nsc.Transport
	// thread context
	thread *Context

	channels int
	async    uint8

	// channel reservation bitmap, guarded by the kernel IRQ lock
	reserved uint32

	// one signal per bidirectional channel plus the async one
	sems []rtos.Semaphore

	urc atomic.Pointer[nsc.UrcCallback]

	calls    []atomic.Uint64
	messages atomic.Uint64
	started  atomic.Bool
}

// New configures the event generator and returns a gateway instance.
func New(conf Config) (g *Gateway, err error) {
	if conf.Channels == 0 {
		conf.Channels = DefaultChannels
	}

	if conf.Channels < 0 || conf.Channels > MaxChannels {
		return nil, fmt.Errorf("invalid channel count %d (max %d)", conf.Channels, MaxChannels)
	}

	if conf.Transport == nil {
		return nil, errors.New("missing transport")
	}

	if conf.Events == nil {
		return nil, errors.New("missing event generator")
	}

	if conf.Kernel == nil {
		conf.Kernel = &rtos.Host{}
	}

	g = &Gateway{
		kernel:   conf.Kernel,
		events:   conf.Events,
		raw:      conf.Transport,
		channels: conf.Channels,
		async:    uint8(conf.Channels),
		sems:     make([]rtos.Semaphore, conf.Channels+1),
		calls:    make([]atomic.Uint64, conf.Channels),
	}

	g.thread = newContext(g, conf.Kernel)

	for ch := 0; ch <= conf.Channels; ch++ {
		g.setupChannel(ch)
	}

	g.events.EnableInterrupts(egu.Mask(conf.Channels + 1))

	log.Printf("NS gateway initialized channels:%d async:%d", g.channels, g.async)

	return
}

func (g *Gateway) setupChannel(ch int) {
	g.sems[ch].Init(0, 1)
	g.events.Bind(ch, ch, ch)
}

// Channels returns the number of bidirectional channels.
func (g *Gateway) Channels() int {
	return g.channels
}

// AsyncChannel returns the asynchronous channel identifier.
func (g *Gateway) AsyncChannel() uint8 {
	return g.async
}

// Stats represents gateway counters.
type Stats struct {
	// Reserved is the channel reservation bitmap
	Reserved uint32
	// Calls is the number of completed responses per channel
	Calls []uint64
	// Messages is the number of received asynchronous messages
	Messages uint64
	// Subscribed reports whether a URC callback is registered
	Subscribed bool
}

// Stats returns a snapshot of the gateway counters.
func (g *Gateway) Stats() (s Stats) {
	s.Reserved = g.Reserved()
	s.Calls = make([]uint64, g.channels)

	for i := range g.calls {
		s.Calls[i] = g.calls[i].Load()
	}

	s.Messages = g.messages.Load()
	s.Subscribed = g.callback() != nil

	return
}
