// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package nsc

import (
	"errors"
	"testing"

	"github.com/usbarmory/GoTEE-nsgate/rtos"
)

func TestRequestEncoding(t *testing.T) {
	for _, tc := range []struct {
		ch   uint8
		svc  Service
		api  API
		word uint32
	}{
		{0, Kernel, KernelPendSV, 0x00000000},
		{1, At, AtSubscribeUrcs, 0x01010001},
		{4, Net, NetFcntl, 0x0403000f},
		{0xff, Service(0xff), API(0xffff), 0xffffffff},
	} {
		req := NewRequest(tc.ch, tc.svc, tc.api)

		if uint32(req) != tc.word {
			t.Errorf("NewRequest(%d, %d, %d) = %#08x, want %#08x", tc.ch, tc.svc, tc.api, uint32(req), tc.word)
		}

		if req.Channel() != tc.ch || req.Service() != tc.svc || req.API() != tc.api {
			t.Errorf("%#08x decoded as %v", tc.word, req)
		}
	}
}

func TestRequestRoundTrip(t *testing.T) {
	apis := map[Service][]API{
		Kernel: {KernelPendSV, KernelPeripheralAccess, KernelMarkImageValid, KernelErrno, KernelReset},
		At:     {AtRunCommand, AtSubscribeUrcs},
		App:    {AppAddKey},
	}

	for api := NetSocket; api <= NetFcntl; api++ {
		apis[Net] = append(apis[Net], api)
	}

	// every bidirectional and asynchronous channel
	for ch := 0; ch < 16; ch++ {
		for svc, list := range apis {
			for _, api := range list {
				req := NewRequest(uint8(ch), svc, api)

				if req.Channel() != uint8(ch) || req.Service() != svc || req.API() != api {
					t.Errorf("NewRequest(%d, %d, %d) decoded as %v", ch, svc, api, req)
				}
			}
		}
	}

	// sampled sweep of the full field ranges
	for ch := 0; ch <= 0xff; ch += 0x0f {
		for svc := 0; svc <= 0xff; svc += 0x11 {
			for api := 0; api <= 0xffff; api += 0x0fff {
				req := NewRequest(uint8(ch), Service(svc), API(api))

				if want := uint32(ch)<<24 | uint32(svc)<<16 | uint32(api); uint32(req) != want {
					t.Errorf("NewRequest(%d, %d, %d) = %#08x, want %#08x", ch, svc, api, uint32(req), want)
				}

				if int(req.Channel()) != ch || int(req.Service()) != svc || int(req.API()) != api {
					t.Errorf("%#08x decoded as %v", uint32(req), req)
				}
			}
		}
	}
}

func TestParseService(t *testing.T) {
	for in, want := range map[string]Service{
		"kernel": Kernel,
		"at":     At,
		"net":    Net,
		"2":      App,
		"0x10":   Service(0x10),
	} {
		if got, err := ParseService(in); err != nil || got != want {
			t.Errorf("ParseService(%q) = %v, %v, want %v", in, got, err, want)
		}
	}

	if _, err := ParseService("modem"); err == nil {
		t.Error("expected error on unknown service")
	}
}

func TestResult(t *testing.T) {
	if res, err := Result(5); res != 5 || err != nil {
		t.Errorf("Result(5) = %d, %v", res, err)
	}

	res, err := Result(-EAGAIN)

	if res != -EAGAIN || !errors.Is(err, ErrRetry) {
		t.Errorf("Result(-EAGAIN) = %d, %v", res, err)
	}

	if err.Error() != "not ready, try again" {
		t.Errorf("unexpected message %q", err)
	}

	if msg := Errno(-99).Error(); msg != "secure service error -99" {
		t.Errorf("unexpected message %q", msg)
	}
}

func TestAsyncParameters(t *testing.T) {
	msg := &AsyncParameters{Event: AsyncAtUrc}
	msg.SetText("+CEREG: 5,\"0A0B\"")

	buf := msg.Bytes()

	if len(buf) != AsyncParametersSize {
		t.Fatalf("encoded size %d, want %d", len(buf), AsyncParametersSize)
	}

	var got AsyncParameters

	if err := got.Unmarshal(buf); err != nil {
		t.Fatal(err)
	}

	if got.Event != AsyncAtUrc || got.Text() != "+CEREG: 5,\"0A0B\"" {
		t.Errorf("decoded %d %q", got.Event, got.Text())
	}

	if err := got.Unmarshal(buf[:8]); !errors.Is(err, ErrInvalid) {
		t.Errorf("short buffer: %v", err)
	}

	long := make([]byte, 2*AsyncBufferSize)

	for i := range long {
		long[i] = 'x'
	}

	msg.SetText(string(long))

	if n := len(msg.Text()); n != AsyncBufferSize-1 {
		t.Errorf("truncated text length %d", n)
	}
}

type countingKernel struct {
	isr    bool
	locks  int
	depth  int
	during []int
}

func (k *countingKernel) LockIRQ() uint32  { return 0 }
func (k *countingKernel) UnlockIRQ(uint32) {}
func (k *countingKernel) LockScheduler()   { k.locks++; k.depth++ }
func (k *countingKernel) UnlockScheduler() { k.depth-- }
func (k *countingKernel) InISR() bool      { return k.isr }

type probeTransport struct {
	k *countingKernel
}

func (p *probeTransport) PutRequest(req Request, params []byte) int32 {
	p.k.during = append(p.k.during, p.k.depth)
	return Queued
}

func (p *probeTransport) GetResponse(req Request, params []byte) int32 {
	p.k.during = append(p.k.during, p.k.depth)
	return 0
}

var _ rtos.Kernel = &countingKernel{}

func TestCritical(t *testing.T) {
	k := &countingKernel{}
	c := &Critical{Transport: &probeTransport{k}, Kernel: k}

	c.PutRequest(0, nil)
	c.GetResponse(0, nil)

	if k.locks != 2 || k.depth != 0 {
		t.Errorf("locks:%d depth:%d", k.locks, k.depth)
	}

	k.isr = true
	c.PutRequest(0, nil)

	if k.locks != 2 {
		t.Errorf("scheduler locked in interrupt context")
	}

	want := []int{1, 1, 0}

	for i := range want {
		if k.during[i] != want[i] {
			t.Errorf("transport call %d ran with lock depth %d, want %d", i, k.during[i], want[i])
		}
	}
}
