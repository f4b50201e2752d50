// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago && arm

package main

import (
	"runtime"
	"unsafe"

	"github.com/usbarmory/GoTEE-nsgate/nsc"
)

// veneer implements nsc.Transport through Secure monitor calls.
type veneer struct{}

func (v *veneer) call(op uint32, req nsc.Request, params []byte) (res int32) {
	var ptr uintptr

	if len(params) > 0 {
		ptr = uintptr(unsafe.Pointer(&params[0]))
	}

	res = smc(op, uint32(req), ptr, uint32(len(params)))
	runtime.KeepAlive(params)

	return
}

func (v *veneer) PutRequest(req nsc.Request, params []byte) int32 {
	return v.call(SYS_NSC_PUT, req, params)
}

func (v *veneer) GetResponse(req nsc.Request, params []byte) int32 {
	return v.call(SYS_NSC_GET, req, params)
}
