// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package util

import (
	"bytes"
	"io"
	"os"
	"sync"

	"golang.org/x/term"
)

const outputLimit = 1024
const flushChr = 0x0a // \n

// Output buffers the console output of a security domain, flushing it line by
// line to the attached terminal, in the domain color, or to standard output.
type Output struct {
	sync.Mutex

	// Secure selects the Secure World color
	Secure bool

	term *term.Terminal
	buf  bytes.Buffer
}

// SetTerm attaches a terminal, nil detaches it.
func (o *Output) SetTerm(t *term.Terminal) {
	o.Lock()
	defer o.Unlock()

	o.term = t
}

func (o *Output) flush() {
	defer o.buf.Reset()

	if o.term == nil {
		os.Stdout.Write(o.buf.Bytes())
		return
	}

	color := o.term.Escape.Red

	if o.Secure {
		color = o.term.Escape.Green
	}

	o.term.Write(color)
	o.term.Write(o.buf.Bytes())
	o.term.Write(o.term.Escape.Reset)
}

// WriteByte buffers a single output character.
func (o *Output) WriteByte(c byte) error {
	o.Lock()
	defer o.Unlock()

	o.buf.WriteByte(c)

	if c == flushChr || o.buf.Len() > outputLimit {
		o.flush()
	}

	return nil
}

// Write implements io.Writer.
func (o *Output) Write(p []byte) (n int, err error) {
	for _, c := range p {
		o.WriteByte(c)
	}

	return len(p), nil
}

var _ io.ByteWriter = &Output{}
