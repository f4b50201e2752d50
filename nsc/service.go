// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package nsc

import (
	"strconv"
)

// Service selects a Secure firmware functional domain.
type Service uint8

// Secure services
const (
	Kernel Service = 0
	At     Service = 1
	App    Service = 2
	Net    Service = 3
)

var serviceNames = map[Service]string{
	Kernel: "kernel",
	At:     "at",
	App:    "app",
	Net:    "net",
}

func (s Service) String() string {
	if name, ok := serviceNames[s]; ok {
		return name
	}

	return strconv.Itoa(int(s))
}

// ParseService returns the service matching a name or a number.
func ParseService(s string) (Service, error) {
	for svc, name := range serviceNames {
		if name == s {
			return svc, nil
		}
	}

	n, err := strconv.ParseUint(s, 0, 8)

	if err != nil {
		return 0, err
	}

	return Service(n), nil
}

// API selects an operation within a service.
type API uint16

// Kernel service APIs
const (
	// trigger the Non-Secure kernel context switcher
	KernelPendSV API = 0
	// request Non-Secure access to a peripheral
	KernelPeripheralAccess API = 1
	// mark the Non-Secure image as valid
	KernelMarkImageValid API = 2
	// get the current Secure errno value
	KernelErrno API = 3
	// reset
	KernelReset API = 4
)

// AT service APIs
const (
	AtRunCommand    API = 0
	AtSubscribeUrcs API = 1
)

// Application service APIs
const (
	AppAddKey API = 0
)

// Networking service APIs
const (
	NetSocket API = iota
	NetClose
	NetAccept
	NetBind
	NetListen
	NetConnect
	NetPoll
	NetSetSockOpt
	NetGetSockOpt
	NetRecv
	NetRecvFrom
	NetSend
	NetSendTo
	NetGetAddrInfo
	NetFreeAddrInfo
	NetFcntl
)

// AsyncEvent identifies the kind of an asynchronous Secure to Non-Secure
// message.
type AsyncEvent uint32

// Asynchronous events
const (
	AsyncAtUrc AsyncEvent = 0
)

// AsyncBufferSize is the size of the asynchronous message payload.
const AsyncBufferSize = 1024

// AsyncParametersSize is the size of the asynchronous message envelope.
const AsyncParametersSize = 4 + AsyncBufferSize
