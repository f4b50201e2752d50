// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package nsc

// Params represents a fixed-layout parameter structure, passed by reference
// across the trust boundary and populated in place with the response.
type Params interface {
	Bytes() []byte
}

// Buffer represents a raw parameter structure.
type Buffer []byte

// Bytes implements Params.
func (b Buffer) Bytes() []byte {
	return b
}

// UrcCallback is invoked with the text of each AT unsolicited result code.
type UrcCallback func(urc string)

// SubscribeUrcsParameters represents the AT URC subscription parameters, it
// never crosses the trust boundary as the subscription is held by the
// Non-Secure side.
type SubscribeUrcsParameters struct {
	Callback UrcCallback
}

// Bytes implements Params.
func (p *SubscribeUrcsParameters) Bytes() []byte {
	return nil
}
