// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package fota_test

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/usbarmory/GoTEE-nsgate/gateway"
	"github.com/usbarmory/GoTEE-nsgate/internal/emulator"
	"github.com/usbarmory/GoTEE-nsgate/nsc"
	"github.com/usbarmory/GoTEE-nsgate/services/at"
	"github.com/usbarmory/GoTEE-nsgate/services/fota"
)

type recorder struct {
	sync.Mutex
	events []fota.Event
}

func (r *recorder) record(ev fota.Event) {
	r.Lock()
	defer r.Unlock()

	r.events = append(r.events, ev)
}

func setup(t *testing.T, modem emulator.Modem) (*fota.Download, *at.Notifier, *recorder, *emulator.Board) {
	t.Helper()

	b := emulator.NewBoard(1)
	b.Device.Modem = modem

	g, err := gateway.New(gateway.Config{
		Channels:  1,
		Kernel:    b.Kernel,
		Transport: b.Secure,
		Events:    b.Events,
	})

	if err != nil {
		t.Fatal(err)
	}

	b.Attach(g.HandleInterrupt)

	n := &at.Notifier{}
	r := &recorder{}

	d, err := fota.New(g, n, r.record)

	if err != nil {
		t.Fatal(err)
	}

	return d, n, r, b
}

func TestParseUrc(t *testing.T) {
	for _, tc := range []struct {
		urc      string
		id       uint32
		progress uint32
		ok       bool
	}{
		{"DFU: 2,45", 2, 45, true},
		{"DFU: 3", 3, 0, true},
		{"DFU: 0x2, 7", 2, 7, true},
		{"DFU: 2,abc", 2, 0, true},
		{"DFU: abc", 0, 0, false},
		{"+CEREG: 1", 0, 0, false},
		{"DFU:", 0, 0, false},
	} {
		id, progress, ok := fota.ParseUrc(tc.urc)

		if id != tc.id || progress != tc.progress || ok != tc.ok {
			t.Errorf("ParseUrc(%q) = %d, %d, %v", tc.urc, id, progress, ok)
		}
	}
}

func TestNew(t *testing.T) {
	if _, err := fota.New(nil, &at.Notifier{}, nil); !errors.Is(err, nsc.ErrInvalid) {
		t.Errorf("New() = %v, want %v", err, nsc.ErrInvalid)
	}
}

func TestDownload(t *testing.T) {
	var commands []string

	d, n, r, _ := setup(t, func(cmd string) (string, at.Result, int32) {
		commands = append(commands, cmd)
		return "OK", at.Success, 0
	})

	// ignored until started
	n.Notify("DFU: 2,10")

	if err := d.Start("fota.example.com", "mfw_1.3.1.bin"); err != nil {
		t.Fatal(err)
	}

	if !d.Started() {
		t.Fatal("download not started")
	}

	if err := d.Start("fota.example.com", "mfw_1.3.1.bin"); !errors.Is(err, fota.ErrStarted) {
		t.Errorf("second Start() = %v, want %v", err, fota.ErrStarted)
	}

	n.Notify("DFU: 1")
	n.Notify("+CEREG: 5")
	n.Notify("DFU: 2,4096")
	n.Notify("DFU: 3")
	n.Notify("DFU: 2,8192")

	if d.Started() {
		t.Error("download still started after completion")
	}

	want := []fota.Event{
		{ID: fota.EventProgress, Progress: 4096},
		{ID: fota.EventFinished},
	}

	if diff := cmp.Diff(want, r.events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]string{"AT#XFOTA=fota.example.com,mfw_1.3.1.bin"}, commands); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}
}

func TestDownloadRejected(t *testing.T) {
	d, n, r, _ := setup(t, emulator.DefaultModem)

	if err := d.Start("host", "file"); err != nil {
		t.Fatal(err)
	}

	n.Notify("DFU: 9")

	if d.Started() {
		t.Error("download still started after error")
	}

	if diff := cmp.Diff([]fota.Event{{ID: fota.EventError}}, r.events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestStartErrors(t *testing.T) {
	busy := func(string) (string, at.Result, int32) { return "", at.Cme, at.CmePhoneIsBusy }
	denied := func(string) (string, at.Result, int32) { return "", at.Cme, at.CmeNotAllowed }

	d, _, _, _ := setup(t, busy)

	if err := d.Start("host", "file"); !errors.Is(err, fota.ErrStarted) {
		t.Errorf("busy Start() = %v, want %v", err, fota.ErrStarted)
	}

	if err := d.Start("host", strings.Repeat("x", at.DefaultResponseLength)); !errors.Is(err, fota.ErrTooLong) {
		t.Errorf("long Start() = %v, want %v", err, fota.ErrTooLong)
	}

	d, _, _, _ = setup(t, denied)

	if err := d.Start("host", "file"); !errors.Is(err, fota.ErrRejected) {
		t.Errorf("denied Start() = %v, want %v", err, fota.ErrRejected)
	}

	if d.Started() {
		t.Error("failed download marked as started")
	}
}
