// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package at implements the Non-Secure consumer of the Secure AT interface
// services, running modem AT commands and distributing unsolicited result
// codes (URCs).
package at

import (
	"fmt"
	"strings"

	"github.com/usbarmory/GoTEE-nsgate/nsc"
)

// DefaultResponseLength is the default response area size, NUL terminator
// included.
const DefaultResponseLength = 256 + 1

// CME error values
const (
	CmePhoneFailure = 0
	CmeNotAllowed   = 3
	CmeNotSupported = 4
	CmePhoneIsBusy  = 258
)

// Result represents the outcome kind of an AT command.
type Result uint32

// AT command results
const (
	Success Result = iota
	Cme
	Cms
	ExtendedCme
)

func (r Result) String() string {
	switch r {
	case Success:
		return "OK"
	case Cme:
		return "CME ERROR"
	case Cms:
		return "CMS ERROR"
	case ExtendedCme:
		return "EXTENDED CME ERROR"
	}

	return fmt.Sprintf("result %d", uint32(r))
}

// Error represents an AT command failure reported by the modem.
type Error struct {
	Result Result
	Value  int32
}

func (e *Error) Error() string {
	return fmt.Sprintf("+%s: %d", e.Result, e.Value)
}

// Is reports whether the modem error matches target, a zero target Value
// matches any value of the same result kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	if !ok {
		return false
	}

	return t.Result == e.Result && (t.Value == 0 || t.Value == e.Value)
}

// ErrPhoneIsBusy is returned when the modem refuses a command as another one
// is in progress.
var ErrPhoneIsBusy = &Error{Result: Cme, Value: CmePhoneIsBusy}

// Run runs an AT command, returning its response text. A modem failure is
// returned as *Error with the response text still available.
func Run(c nsc.Caller, command string, maxLength int) (resp string, err error) {
	if maxLength <= 0 {
		maxLength = DefaultResponseLength
	}

	params := NewRunCommandParameters(command, maxLength)

	if _, err = c.Call(nsc.At, nsc.AtRunCommand, params); err != nil {
		return
	}

	resp = params.Response()

	if res := params.Result(); res != Success {
		val := params.ErrorValue()

		if val < 0 {
			val = -val
		}

		err = &Error{Result: res, Value: val}
	}

	return
}

// IsUrc reports whether a line starts with the argument URC prefix
// (e.g. "+CEREG").
func IsUrc(line string, prefix string) bool {
	return strings.HasPrefix(line, prefix+":")
}
