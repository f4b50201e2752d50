// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package util

import (
	"bytes"
	"encoding/binary"
	"io"
	"strings"
	"testing"

	"golang.org/x/term"
)

func TestPtySize(t *testing.T) {
	payload := make([]byte, 4)
	binary.BigEndian.PutUint32(payload, 5)
	payload = append(payload, "xterm"...)
	payload = binary.BigEndian.AppendUint32(payload, 80)
	payload = binary.BigEndian.AppendUint32(payload, 24)

	if w, h, ok := ptySize(payload); !ok || w != 80 || h != 24 {
		t.Errorf("ptySize() = %d, %d, %v", w, h, ok)
	}

	if _, _, ok := ptySize(payload[:10]); ok {
		t.Error("truncated pty-req accepted")
	}

	if w, h, ok := windowSize(payload[9:]); !ok || w != 80 || h != 24 {
		t.Errorf("windowSize() = %d, %d, %v", w, h, ok)
	}
}

type pipe struct {
	io.Reader
	io.Writer
}

func TestOutput(t *testing.T) {
	var buf bytes.Buffer

	tt := term.NewTerminal(pipe{strings.NewReader(""), &buf}, "")

	o := &Output{Secure: true}
	o.SetTerm(tt)

	io.WriteString(o, "SM ready")

	if buf.Len() != 0 {
		t.Fatalf("partial line flushed: %q", buf.String())
	}

	o.WriteByte('\n')

	out := buf.String()

	if !strings.HasPrefix(out, string(tt.Escape.Green)) || !strings.Contains(out, "SM ready") {
		t.Errorf("unexpected output %q", out)
	}
}
