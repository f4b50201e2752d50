// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package nsc

import (
	"bytes"
	"encoding/binary"
)

// AsyncParameters represents the asynchronous message envelope written by
// Secure firmware on the async channel.
type AsyncParameters struct {
	// Event is the message kind
	Event AsyncEvent
	// Buffer holds the event payload
	Buffer [AsyncBufferSize]byte
}

// AsyncRequest returns the synthetic request word used to drain asynchronous
// messages from a channel.
func AsyncRequest(channel uint8) Request {
	return NewRequest(channel, 0, 0)
}

// Unmarshal decodes the envelope from its wire representation.
func (p *AsyncParameters) Unmarshal(buf []byte) error {
	if len(buf) < AsyncParametersSize {
		return ErrInvalid
	}

	return binary.Read(bytes.NewReader(buf), binary.LittleEndian, p)
}

// Bytes returns the envelope wire representation.
func (p *AsyncParameters) Bytes() []byte {
	buf := new(bytes.Buffer)
	buf.Grow(AsyncParametersSize)

	binary.Write(buf, binary.LittleEndian, p)

	return buf.Bytes()
}

// SetText stores a NUL terminated string payload, truncated to fit.
func (p *AsyncParameters) SetText(s string) {
	p.Buffer = [AsyncBufferSize]byte{}
	copy(p.Buffer[:AsyncBufferSize-1], s)
}

// Text returns the payload up to its NUL terminator.
func (p *AsyncParameters) Text() string {
	if i := bytes.IndexByte(p.Buffer[:], 0); i >= 0 {
		return string(p.Buffer[:i])
	}

	return string(p.Buffer[:])
}
