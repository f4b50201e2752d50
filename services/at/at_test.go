// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package at_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/usbarmory/GoTEE-nsgate/gateway"
	"github.com/usbarmory/GoTEE-nsgate/internal/emulator"
	"github.com/usbarmory/GoTEE-nsgate/nsc"
	"github.com/usbarmory/GoTEE-nsgate/services/at"
)

func newGateway(t *testing.T) (*gateway.Gateway, *emulator.Board) {
	t.Helper()

	b := emulator.NewBoard(2)

	g, err := gateway.New(gateway.Config{
		Channels:  2,
		Kernel:    b.Kernel,
		Transport: b.Secure,
		Events:    b.Events,
	})

	if err != nil {
		t.Fatal(err)
	}

	b.Attach(g.HandleInterrupt)

	return g, b
}

func TestRunCommandParameters(t *testing.T) {
	p := at.NewRunCommandParameters("AT+CFUN?", 8)

	q, err := at.ParseRunCommandParameters(p.Bytes())

	if err != nil {
		t.Fatal(err)
	}

	if q.Command() != "AT+CFUN?" || q.MaxLength() != 8 {
		t.Errorf("parsed %q/%d", q.Command(), q.MaxLength())
	}

	q.SetResponse("+CFUN: 1 OK", at.Cme, -at.CmeNotAllowed)

	if p.Response() != "+CFUN: " || p.Result() != at.Cme || p.ErrorValue() != -at.CmeNotAllowed {
		t.Errorf("response %q result %v error %d", p.Response(), p.Result(), p.ErrorValue())
	}

	if _, err := at.ParseRunCommandParameters(p.Bytes()[:12]); !errors.Is(err, nsc.ErrInvalid) {
		t.Errorf("short parameters: %v", err)
	}

	if _, err := at.ParseRunCommandParameters(p.Bytes()[:len(p.Bytes())-1]); !errors.Is(err, nsc.ErrInvalid) {
		t.Errorf("inconsistent parameters: %v", err)
	}
}

func TestRun(t *testing.T) {
	g, b := newGateway(t)

	b.Device.Modem = func(cmd string) (string, at.Result, int32) {
		switch cmd {
		case "AT+CGSN":
			return "352656100000000", at.Success, 0
		case "AT#XFOTA=busy":
			return "", at.Cme, at.CmePhoneIsBusy
		}

		return "ERROR", at.Cms, -500
	}

	resp, err := at.Run(g, "AT+CGSN", 0)

	if err != nil || resp != "352656100000000" {
		t.Errorf("Run() = %q, %v", resp, err)
	}

	_, err = at.Run(g, "AT#XFOTA=busy", 0)

	if !errors.Is(err, at.ErrPhoneIsBusy) {
		t.Errorf("Run() = %v, want %v", err, at.ErrPhoneIsBusy)
	}

	resp, err = at.Run(g, "AT+CMGS", 0)

	var modemErr *at.Error

	if !errors.As(err, &modemErr) || modemErr.Result != at.Cms || modemErr.Value != 500 || resp != "ERROR" {
		t.Errorf("Run() = %q, %v", resp, err)
	}

	if errors.Is(err, at.ErrPhoneIsBusy) || !errors.Is(err, &at.Error{Result: at.Cms}) {
		t.Errorf("unexpected error matching for %v", err)
	}
}

func TestNotifier(t *testing.T) {
	g, b := newGateway(t)

	var mu sync.Mutex
	var got [2][]string

	n := &at.Notifier{}
	n.Register(nil)

	for i := range got {
		i := i

		n.Register(func(urc string) {
			mu.Lock()
			defer mu.Unlock()

			got[i] = append(got[i], urc)
		})
	}

	if err := n.Subscribe(g); err != nil {
		t.Fatal(err)
	}

	if err := n.Subscribe(g); !errors.Is(err, gateway.ErrSubscribed) {
		t.Errorf("second subscription: %v", err)
	}

	g.Start()

	want := []string{"+CEREG: 2", "+CEREG: 5"}

	for _, urc := range want {
		b.Secure.Urc(urc)
	}

	deadline := time.Now().Add(5 * time.Second)

	for {
		mu.Lock()
		done := len(got[0]) == len(want) && len(got[1]) == len(want)
		mu.Unlock()

		if done {
			break
		}

		if time.Now().After(deadline) {
			t.Fatal("URCs not distributed")
		}

		time.Sleep(time.Millisecond)
	}

	for i := range got {
		if diff := cmp.Diff(want, got[i]); diff != "" {
			t.Errorf("handler %d URCs mismatch (-want +got):\n%s", i, diff)
		}
	}

	if !at.IsUrc(want[0], "+CEREG") || at.IsUrc(want[0], "+CE") {
		t.Error("unexpected URC prefix matching")
	}
}

func TestNotifierRegisterFromHandler(t *testing.T) {
	var late []string

	n := &at.Notifier{}

	n.Register(func(urc string) {
		if urc == "#XFOTA: 1,0" {
			n.Register(func(urc string) { late = append(late, urc) })
		}
	})

	done := make(chan struct{})

	go func() {
		defer close(done)

		n.Notify("#XFOTA: 1,0")
		n.Notify("#XFOTA: 2,50")
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Notify deadlocked on registration")
	}

	if diff := cmp.Diff([]string{"#XFOTA: 2,50"}, late); diff != "" {
		t.Errorf("late handler URCs mismatch (-want +got):\n%s", diff)
	}
}
