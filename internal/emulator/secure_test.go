// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package emulator

import (
	"testing"
	"time"

	"github.com/usbarmory/GoTEE-nsgate/egu"
	"github.com/usbarmory/GoTEE-nsgate/nsc"
)

func TestSecure(t *testing.T) {
	done := make(chan struct{}, 1)

	events := &egu.Fake{Handler: func() { done <- struct{}{} }}
	events.EnableInterrupts(egu.Mask(3))

	s := NewSecure(events, 2)
	s.Latency = 100 * time.Millisecond

	s.Handle(nsc.App, nsc.AppAddKey, func(_ nsc.Request, params []byte) int32 {
		params[0]++
		return 3
	})

	req := nsc.NewRequest(1, nsc.App, nsc.AppAddKey)
	params := []byte{41}

	if res := s.PutRequest(req, params); res != nsc.Queued {
		t.Fatalf("PutRequest() = %d", res)
	}

	if res := s.PutRequest(req, params); res != int32(nsc.ErrTimeout) {
		t.Errorf("PutRequest() on busy channel = %d", res)
	}

	if res := s.GetResponse(req, params); res != int32(nsc.ErrNoEntry) {
		t.Errorf("GetResponse() before completion = %d", res)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("completion not signalled")
	}

	if !events.Pending(1) {
		t.Error("completion event not set")
	}

	if res := s.GetResponse(nsc.NewRequest(1, nsc.Net, 0), params); res != int32(nsc.ErrInvalid) {
		t.Errorf("GetResponse() with foreign request = %d", res)
	}

	if res := s.GetResponse(req, params); res != 3 || params[0] != 42 {
		t.Errorf("GetResponse() = %d, params %v", res, params)
	}

	if res := s.PutRequest(nsc.NewRequest(2, nsc.App, nsc.AppAddKey), params); res != int32(nsc.ErrInvalid) {
		t.Errorf("PutRequest() on async channel = %d", res)
	}
}

func TestSecureAsync(t *testing.T) {
	s := NewSecure(&egu.Fake{}, 1)
	buf := make([]byte, nsc.AsyncParametersSize)
	req := nsc.AsyncRequest(1)

	if res := s.GetResponse(req, buf); res != int32(nsc.ErrNoEntry) {
		t.Errorf("GetResponse() on empty queue = %d", res)
	}

	s.Urc("+CSCON: 0")

	if s.Queued() != 1 {
		t.Fatalf("Queued() = %d", s.Queued())
	}

	if res := s.GetResponse(req, buf); res != 0 {
		t.Fatalf("GetResponse() = %d", res)
	}

	var msg nsc.AsyncParameters

	if err := msg.Unmarshal(buf); err != nil {
		t.Fatal(err)
	}

	if msg.Event != nsc.AsyncAtUrc || msg.Text() != "+CSCON: 0" {
		t.Errorf("message %d %q", msg.Event, msg.Text())
	}
}
