// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago && arm

package main

import (
	"github.com/usbarmory/GoTEE/syscall"
)

const (
	SYS_WRITE = syscall.SYS_WRITE
	SYS_EXIT  = syscall.SYS_EXIT

	// Non-Secure Callable veneers
	SYS_NSC_PUT = 0x100
	SYS_NSC_GET = 0x101
)

// defined in api_arm.s
func printSecure(byte)
func exit()
func smc(op uint32, req uint32, params uintptr, size uint32) (res int32)
