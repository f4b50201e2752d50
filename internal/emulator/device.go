// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package emulator

import (
	"encoding/binary"
	"log"
	"strings"
	"sync"

	"github.com/usbarmory/GoTEE-nsgate/egu"
	"github.com/usbarmory/GoTEE-nsgate/nsc"
	"github.com/usbarmory/GoTEE-nsgate/rtos"
	"github.com/usbarmory/GoTEE-nsgate/services/at"
)

// Modem serves AT commands.
type Modem func(cmd string) (resp string, res at.Result, val int32)

// DefaultModem accepts any AT command.
func DefaultModem(cmd string) (resp string, res at.Result, val int32) {
	if !strings.HasPrefix(strings.ToUpper(cmd), "AT") {
		return "ERROR", at.Cme, at.CmeNotSupported
	}

	return "OK", at.Success, 0
}

// Device represents the state of the Secure services of an emulated board.
type Device struct {
	sync.Mutex

	// Modem serves AT RunCommand requests
	Modem Modem
	// Errno is returned by the kernel Errno service
	Errno int32
	// Denied lists peripherals for which access is refused
	Denied map[uint32]bool
	// Log is the Secure firmware logger
	Log *log.Logger

	PendSV      int
	Peripherals []uint32
	Valid       bool
	Resets      []uint32
}

// Board represents an emulated board, pairing Secure firmware with the event
// generator and kernel seen by Non-Secure code.
type Board struct {
	Kernel *rtos.Host
	Events *egu.Fake
	Secure *Secure
	Device *Device
}

// NewBoard returns an emulated board serving the argument number of
// bidirectional channels with the default Secure services.
func NewBoard(channels int) (b *Board) {
	b = &Board{
		Kernel: &rtos.Host{},
		Events: &egu.Fake{},
		Device: &Device{
			Modem:  DefaultModem,
			Denied: make(map[uint32]bool),
			Log:    log.Default(),
		},
	}

	b.Secure = NewSecure(b.Events, channels)
	b.Device.register(b.Secure)

	return
}

// Attach connects the event generator interrupt line to the argument
// interrupt service routine.
func (b *Board) Attach(isr func()) {
	b.Events.Lock()
	defer b.Events.Unlock()

	b.Events.Handler = func() {
		b.Kernel.Interrupt(func(rtos.Kernel) {
			isr()
		})
	}
}

func (d *Device) register(s *Secure) {
	s.HandleSync(nsc.Kernel, nsc.KernelPendSV, d.pendSV)
	s.Handle(nsc.Kernel, nsc.KernelPeripheralAccess, d.peripheralAccess)
	s.Handle(nsc.Kernel, nsc.KernelMarkImageValid, d.markImageValid)
	s.Handle(nsc.Kernel, nsc.KernelErrno, d.errno)
	s.Handle(nsc.Kernel, nsc.KernelReset, d.reset)
	s.Handle(nsc.At, nsc.AtRunCommand, d.runCommand)
}

func (d *Device) pendSV(_ nsc.Request, _ []byte) int32 {
	d.Lock()
	defer d.Unlock()

	d.PendSV++

	return 0
}

func (d *Device) peripheralAccess(_ nsc.Request, params []byte) int32 {
	if len(params) != 4 {
		return int32(nsc.ErrInvalid)
	}

	base := binary.LittleEndian.Uint32(params)

	d.Lock()
	defer d.Unlock()

	if d.Denied[base] {
		d.Log.Printf("SM denied access to %#08x", base)
		return int32(nsc.ErrInvalid)
	}

	d.Peripherals = append(d.Peripherals, base)

	return 0
}

func (d *Device) markImageValid(_ nsc.Request, _ []byte) int32 {
	d.Lock()
	defer d.Unlock()

	d.Valid = true

	return 0
}

func (d *Device) errno(_ nsc.Request, params []byte) int32 {
	if len(params) != 4 {
		return int32(nsc.ErrInvalid)
	}

	d.Lock()
	defer d.Unlock()

	binary.LittleEndian.PutUint32(params, uint32(d.Errno))

	return 0
}

func (d *Device) reset(_ nsc.Request, params []byte) int32 {
	if len(params) != 4 {
		return int32(nsc.ErrInvalid)
	}

	flags := binary.LittleEndian.Uint32(params)

	d.Lock()
	defer d.Unlock()

	d.Log.Printf("SM emulated reset flags:%#x", flags)

	d.Resets = append(d.Resets, flags)

	return 0
}

func (d *Device) runCommand(_ nsc.Request, params []byte) int32 {
	p, err := at.ParseRunCommandParameters(params)

	if err != nil {
		return int32(nsc.ErrInvalid)
	}

	d.Lock()
	modem := d.Modem
	d.Unlock()

	resp, res, val := modem(p.Command())
	p.SetResponse(resp, res, val)

	return 0
}
