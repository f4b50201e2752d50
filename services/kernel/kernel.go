// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package kernel implements the Non-Secure consumers of the Secure kernel
// services.
package kernel

import (
	"encoding/binary"
	"fmt"

	"github.com/usbarmory/GoTEE-nsgate/nsc"
)

// ResetSkipLaunch requests Secure firmware not to launch the Non-Secure
// application after the reset.
const ResetSkipLaunch = 1 << 0

func word(val uint32) nsc.Buffer {
	buf := make(nsc.Buffer, 4)
	binary.LittleEndian.PutUint32(buf, val)
	return buf
}

// PendSV requests the Non-Secure PendSV exception to be pended, from thread
// context.
func PendSV(c nsc.Caller) (err error) {
	_, err = c.Call(nsc.Kernel, nsc.KernelPendSV, nil)
	return
}

// PeripheralAccess requests Non-Secure access to the peripheral at the
// argument base address.
func PeripheralAccess(c nsc.Caller, base uint32) (err error) {
	_, err = c.Call(nsc.Kernel, nsc.KernelPeripheralAccess, word(base))
	return
}

// RequestPeripherals requests Non-Secure access to a list of peripherals,
// stopping at the first failure.
func RequestPeripherals(c nsc.Caller, bases []uint32) (err error) {
	for _, base := range bases {
		if err = PeripheralAccess(c, base); err != nil {
			return fmt.Errorf("peripheral %#08x access denied, %w", base, err)
		}
	}

	return
}

// MarkImageValid requests the running Non-Secure image to be marked as valid,
// confirming an update.
func MarkImageValid(c nsc.Caller) (err error) {
	_, err = c.Call(nsc.Kernel, nsc.KernelMarkImageValid, nil)
	return
}

// Errno returns the latest Secure errno value, as set by failed socket
// operations.
func Errno(c nsc.Caller) (errno int32, err error) {
	params := word(0)

	if _, err = c.Call(nsc.Kernel, nsc.KernelErrno, params); err != nil {
		return
	}

	return int32(binary.LittleEndian.Uint32(params)), nil
}

// Reset requests a system reset, on success it does not return on hardware.
func Reset(c nsc.Caller, flags uint32) (err error) {
	_, err = c.Call(nsc.Kernel, nsc.KernelReset, word(flags))
	return
}
