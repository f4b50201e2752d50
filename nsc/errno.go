// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package nsc

import (
	"fmt"
)

// Error numbers shared with Secure firmware (minimal libc numbering).
const (
	ENOENT    = 2
	ENOEXEC   = 8
	EAGAIN    = 11
	ENOMEM    = 12
	EBUSY     = 16
	EINVAL    = 22
	ENODATA   = 86
	ENOBUFS   = 105
	ETIMEDOUT = 116
	EALREADY  = 120
)

// Errno represents a negative result reported across the trust boundary,
// carried verbatim.
type Errno int32

// Sentinel errors for the results with a meaning to the Non-Secure side.
const (
	// ErrRetry is returned while Secure firmware is not yet ready.
	ErrRetry = Errno(-EAGAIN)
	// ErrTimeout is returned when a request could not be queued in time.
	ErrTimeout = Errno(-ETIMEDOUT)
	// ErrNoEntry is returned when no response or message is available.
	ErrNoEntry = Errno(-ENOENT)
	// ErrInvalid is returned on malformed requests.
	ErrInvalid = Errno(-EINVAL)
	// ErrNoMemory is returned when a resource is exhausted.
	ErrNoMemory = Errno(-ENOMEM)
	// ErrBusy is returned when a resource is in use.
	ErrBusy = Errno(-EBUSY)
)

var errnoNames = map[Errno]string{
	-ENOENT:    "no entry",
	-ENOEXEC:   "exec format error",
	-EAGAIN:    "not ready, try again",
	-ENOMEM:    "out of resources",
	-EBUSY:     "busy",
	-EINVAL:    "invalid argument",
	-ENODATA:   "no data",
	-ENOBUFS:   "no buffer space",
	-ETIMEDOUT: "timed out",
	-EALREADY:  "already in progress",
}

func (e Errno) Error() string {
	if name, ok := errnoNames[e]; ok {
		return name
	}

	return fmt.Sprintf("secure service error %d", int32(e))
}

// Result converts a raw wire result into a value and an error, negative
// results are returned as Errno.
func Result(res int32) (int32, error) {
	if res < 0 {
		return res, Errno(res)
	}

	return res, nil
}
