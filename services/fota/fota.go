// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package fota implements modem firmware over-the-air download control,
// through the AT#XFOTA command and the "DFU:" URCs reporting its progress.
package fota

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/usbarmory/GoTEE-nsgate/nsc"
	"github.com/usbarmory/GoTEE-nsgate/services/at"
)

const urcPrefix = "DFU"

var (
	// ErrStarted is returned when a download is already in progress.
	ErrStarted = nsc.Errno(-nsc.EALREADY)
	// ErrRejected is returned when the modem refuses the download.
	ErrRejected = nsc.Errno(-nsc.ENOEXEC)
	// ErrTooLong is returned when the download command does not fit the
	// AT command buffer.
	ErrTooLong = nsc.Errno(-nsc.ENOBUFS)
)

// DFU URC identifiers
const (
	DFURejected = 0
	DFUApplied  = 1
	DFUProgress = 2
	DFUPending  = 3
)

// EventID represents a download event kind.
type EventID int

// Download events
const (
	EventError EventID = iota
	EventProgress
	EventFinished
)

func (id EventID) String() string {
	switch id {
	case EventError:
		return "error"
	case EventProgress:
		return "progress"
	case EventFinished:
		return "finished"
	}

	return "unknown"
}

// Event represents a download event.
type Event struct {
	ID EventID
	// Progress is the download offset, for EventProgress
	Progress uint32
}

// Download represents the modem firmware download state.
type Download struct {
	sync.Mutex

	caller   nsc.Caller
	callback func(Event)
	started  bool
}

// New returns a download instance reporting events to the argument callback,
// the instance registers itself on the URC notifier.
func New(c nsc.Caller, n *at.Notifier, callback func(Event)) (d *Download, err error) {
	if callback == nil {
		return nil, nsc.ErrInvalid
	}

	d = &Download{
		caller:   c,
		callback: callback,
	}

	n.Register(d.HandleUrc)

	return
}

// Started reports whether a download is in progress.
func (d *Download) Started() bool {
	d.Lock()
	defer d.Unlock()

	return d.started
}

// Start requests the modem to download its firmware from host/file.
func (d *Download) Start(host string, file string) (err error) {
	d.Lock()
	defer d.Unlock()

	if d.started {
		return ErrStarted
	}

	cmd := fmt.Sprintf("AT#XFOTA=%s,%s", host, file)

	if len(cmd) >= at.DefaultResponseLength {
		return ErrTooLong
	}

	_, err = at.Run(d.caller, cmd, at.DefaultResponseLength)

	var modemErr *at.Error

	switch {
	case errors.Is(err, at.ErrPhoneIsBusy):
		return ErrStarted
	case errors.As(err, &modemErr):
		return ErrRejected
	case err != nil:
		return
	}

	d.started = true

	return
}

// ParseUrc parses a "DFU: <id>[,<progress>]" URC.
func ParseUrc(urc string) (id uint32, progress uint32, ok bool) {
	if !at.IsUrc(urc, urcPrefix) {
		return
	}

	fields := strings.SplitN(strings.TrimSpace(urc[len(urcPrefix)+1:]), ",", 2)

	val, err := strconv.ParseUint(strings.TrimSpace(fields[0]), 0, 32)

	if err != nil {
		return
	}

	if len(fields) > 1 {
		if p, err := strconv.ParseUint(strings.TrimSpace(fields[1]), 0, 32); err == nil {
			progress = uint32(p)
		}
	}

	return uint32(val), progress, true
}

// HandleUrc processes DFU URCs while a download is in progress.
func (d *Download) HandleUrc(urc string) {
	id, progress, ok := ParseUrc(urc)

	if !ok {
		return
	}

	d.Lock()

	if !d.started {
		d.Unlock()
		return
	}

	var ev Event

	switch id {
	case DFUApplied:
		d.Unlock()
		return
	case DFUProgress:
		ev = Event{ID: EventProgress, Progress: progress}
	case DFUPending:
		d.started = false
		ev = Event{ID: EventFinished}
	default:
		d.started = false
		ev = Event{ID: EventError}
	}

	d.Unlock()

	d.callback(ev)
}
