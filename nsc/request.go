// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package nsc implements the Non-Secure side of the Secure service call
// contract: request word encoding, service and API numbering, wire result
// codes and the Non-Secure Callable transport primitives.
//
// The request word layout and the parameter structure layouts are shared with
// the Secure firmware and must never change independently of it.
package nsc

import (
	"fmt"
)

// Request word layout
const (
	ChannelShift = 24
	ChannelMask  = 0xff

	ServiceShift = 16
	ServiceMask  = 0xff

	APIShift = 0
	APIMask  = 0xffff
)

// MaxChannel is the highest channel identifier which fits the request word.
const MaxChannel = ChannelMask

// Request represents a packed Secure service request word, identifying the
// channel which correlates the response together with the service and API
// which handle it.
type Request uint32

// NewRequest packs a channel, service and API into a request word.
func NewRequest(channel uint8, service Service, api API) Request {
	return Request(uint32(channel)<<ChannelShift |
		(uint32(service)&ServiceMask)<<ServiceShift |
		(uint32(api)&APIMask)<<APIShift)
}

// Channel returns the request channel.
func (r Request) Channel() uint8 {
	return uint8((uint32(r) >> ChannelShift) & ChannelMask)
}

// Service returns the request service.
func (r Request) Service() Service {
	return Service((uint32(r) >> ServiceShift) & ServiceMask)
}

// API returns the request service API.
func (r Request) API() API {
	return API((uint32(r) >> APIShift) & APIMask)
}

func (r Request) String() string {
	return fmt.Sprintf("ch:%d svc:%s api:%d", r.Channel(), r.Service(), r.API())
}
