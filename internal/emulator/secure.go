// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package emulator implements a software Secure firmware, serving Non-Secure
// Callable requests and signalling completions on an event generator, for use
// on hosts without TrustZone.
package emulator

import (
	"sync"
	"time"

	"github.com/usbarmory/GoTEE-nsgate/egu"
	"github.com/usbarmory/GoTEE-nsgate/nsc"
)

// Handler serves a request, updating params in place with the response, and
// returns the request result.
type Handler func(req nsc.Request, params []byte) int32

type route struct {
	service nsc.Service
	api     nsc.API
}

type service struct {
	handler Handler
	sync    bool
}

type job struct {
	req    nsc.Request
	params []byte
	res    int32
	done   bool
}

// Secure represents an emulated Secure firmware instance.
type Secure struct {
	sync.Mutex

	// Events is the event generator on which completions are signalled
	Events egu.EventGenerator
	// Async is the asynchronous channel
	Async uint8
	// Latency is the delay before a queued request completes
	Latency time.Duration

	services map[route]service
	pending  map[uint8]*job
	messages [][]byte

	requests []nsc.Request
	gets     int
}

// NewSecure returns an emulated Secure firmware instance serving the argument
// number of bidirectional channels.
func NewSecure(events egu.EventGenerator, channels int) *Secure {
	return &Secure{
		Events:   events,
		Async:    uint8(channels),
		services: make(map[route]service),
		pending:  make(map[uint8]*job),
	}
}

// Handle registers a handler completing requests asynchronously, the
// completion is signalled after Latency.
func (s *Secure) Handle(svc nsc.Service, api nsc.API, h Handler) {
	s.Lock()
	defer s.Unlock()

	s.services[route{svc, api}] = service{handler: h}
}

// HandleSync registers a handler serving requests within PutRequest, no
// response follows.
func (s *Secure) HandleSync(svc nsc.Service, api nsc.API, h Handler) {
	s.Lock()
	defer s.Unlock()

	s.services[route{svc, api}] = service{handler: h, sync: true}
}

// PutRequest implements nsc.Transport.
func (s *Secure) PutRequest(req nsc.Request, params []byte) int32 {
	s.Lock()
	defer s.Unlock()

	s.requests = append(s.requests, req)
	ch := req.Channel()

	if ch >= s.Async {
		return int32(nsc.ErrInvalid)
	}

	svc, ok := s.services[route{req.Service(), req.API()}]

	if !ok {
		return int32(nsc.ErrInvalid)
	}

	if svc.sync {
		if res := svc.handler(req, params); res < 0 {
			return res
		}

		return nsc.Handled
	}

	if s.pending[ch] != nil {
		return int32(nsc.ErrTimeout)
	}

	j := &job{
		req:    req,
		params: append([]byte(nil), params...),
	}

	s.pending[ch] = j

	go s.complete(j, svc.handler)

	return nsc.Queued
}

func (s *Secure) complete(j *job, h Handler) {
	if s.Latency > 0 {
		time.Sleep(s.Latency)
	}

	res := h(j.req, j.params)

	s.Lock()
	j.res = res
	j.done = true
	s.Unlock()

	s.Events.Trigger(int(j.req.Channel()))
}

// GetResponse implements nsc.Transport.
func (s *Secure) GetResponse(req nsc.Request, params []byte) int32 {
	s.Lock()
	defer s.Unlock()

	s.gets++
	ch := req.Channel()

	if ch == s.Async {
		if len(s.messages) == 0 {
			return int32(nsc.ErrNoEntry)
		}

		copy(params, s.messages[0])
		s.messages = s.messages[1:]

		return 0
	}

	j := s.pending[ch]

	switch {
	case j == nil || !j.done:
		return int32(nsc.ErrNoEntry)
	case j.req != req:
		return int32(nsc.ErrInvalid)
	}

	delete(s.pending, ch)
	copy(params, j.params)

	return j.res
}

// Post queues an asynchronous message without signalling it.
func (s *Secure) Post(event nsc.AsyncEvent, text string) {
	msg := &nsc.AsyncParameters{Event: event}
	msg.SetText(text)

	s.Lock()
	defer s.Unlock()

	s.messages = append(s.messages, msg.Bytes())
}

// Signal signals the asynchronous channel.
func (s *Secure) Signal() {
	s.Events.Trigger(int(s.Async))
}

// Urc queues and signals an AT URC.
func (s *Secure) Urc(text string) {
	s.Post(nsc.AsyncAtUrc, text)
	s.Signal()
}

// Requests returns all requests received so far.
func (s *Secure) Requests() []nsc.Request {
	s.Lock()
	defer s.Unlock()

	return append([]nsc.Request(nil), s.requests...)
}

// Gets returns the number of GetResponse invocations.
func (s *Secure) Gets() int {
	s.Lock()
	defer s.Unlock()

	return s.gets
}

// Queued returns the number of undelivered asynchronous messages.
func (s *Secure) Queued() int {
	s.Lock()
	defer s.Unlock()

	return len(s.messages)
}
