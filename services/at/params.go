// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package at

import (
	"bytes"
	"encoding/binary"

	"github.com/usbarmory/GoTEE-nsgate/nsc"
)

// RunCommand parameter layout, the command text is followed by the response
// area.
const (
	offCommandLength  = 0
	offMaxLength      = 4
	offResponseLength = 8
	offResult         = 12
	offError          = 16

	headerSize = 20
)

// RunCommandParameters represents the AT RunCommand parameter structure.
type RunCommandParameters struct {
	buf []byte
}

// NewRunCommandParameters returns the parameters for running a command with a
// response area of maxLength bytes, NUL terminator included.
func NewRunCommandParameters(command string, maxLength int) *RunCommandParameters {
	buf := make([]byte, headerSize+len(command)+maxLength)

	binary.LittleEndian.PutUint32(buf[offCommandLength:], uint32(len(command)))
	binary.LittleEndian.PutUint32(buf[offMaxLength:], uint32(maxLength))
	copy(buf[headerSize:], command)

	return &RunCommandParameters{buf: buf}
}

// ParseRunCommandParameters returns a view of a RunCommand parameter
// structure received on the other side of the trust boundary.
func ParseRunCommandParameters(buf []byte) (p *RunCommandParameters, err error) {
	if len(buf) < headerSize {
		return nil, nsc.ErrInvalid
	}

	p = &RunCommandParameters{buf: buf}

	if headerSize+p.commandLength()+p.MaxLength() != len(buf) {
		return nil, nsc.ErrInvalid
	}

	return
}

func (p *RunCommandParameters) u32(off int) uint32 {
	return binary.LittleEndian.Uint32(p.buf[off:])
}

func (p *RunCommandParameters) commandLength() int {
	return int(p.u32(offCommandLength))
}

func (p *RunCommandParameters) response() []byte {
	return p.buf[headerSize+p.commandLength():]
}

// Bytes implements nsc.Params.
func (p *RunCommandParameters) Bytes() []byte {
	return p.buf
}

// Command returns the command text.
func (p *RunCommandParameters) Command() string {
	return string(p.buf[headerSize : headerSize+p.commandLength()])
}

// MaxLength returns the response area size.
func (p *RunCommandParameters) MaxLength() int {
	return int(p.u32(offMaxLength))
}

// SetResponse stores the command outcome, the response text is truncated to
// the response area and NUL terminated.
func (p *RunCommandParameters) SetResponse(text string, res Result, val int32) {
	resp := p.response()

	for i := range resp {
		resp[i] = 0
	}

	n := 0

	if len(resp) > 0 {
		n = copy(resp[:len(resp)-1], text)
	}

	binary.LittleEndian.PutUint32(p.buf[offResponseLength:], uint32(n))
	binary.LittleEndian.PutUint32(p.buf[offResult:], uint32(res))
	binary.LittleEndian.PutUint32(p.buf[offError:], uint32(val))
}

// Response returns the response text.
func (p *RunCommandParameters) Response() string {
	resp := p.response()
	n := int(p.u32(offResponseLength))

	if n > len(resp) {
		n = len(resp)
	}

	if i := bytes.IndexByte(resp[:n], 0); i >= 0 {
		n = i
	}

	return string(resp[:n])
}

// Result returns the command result kind.
func (p *RunCommandParameters) Result() Result {
	return Result(p.u32(offResult))
}

// ErrorValue returns the CME, CMS or extended CME error value.
func (p *RunCommandParameters) ErrorValue() int32 {
	return int32(p.u32(offError))
}
