// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package rtos

import (
	"errors"
	"time"
)

// Take timeouts
const (
	Forever time.Duration = -1
	NoWait  time.Duration = 0
)

var (
	// ErrBusy is returned by a NoWait Take on an unavailable semaphore.
	ErrBusy = errors.New("semaphore unavailable")
	// ErrTimeout is returned when a bounded Take expires.
	ErrTimeout = errors.New("semaphore timeout")
)

// Semaphore represents a counting semaphore with a fixed limit, typically
// one, used to signal events from interrupt context to a waiting thread.
//
// Give never blocks and may be called from interrupt context, signals in
// excess of the limit are discarded.
type Semaphore struct {
	c chan struct{}
}

// NewSemaphore returns a semaphore with an initial count and a limit.
func NewSemaphore(count int, limit int) *Semaphore {
	s := &Semaphore{}
	s.Init(count, limit)

	return s
}

// Init (re)initializes the semaphore count and limit.
func (s *Semaphore) Init(count int, limit int) {
	if limit < 1 {
		limit = 1
	}

	s.c = make(chan struct{}, limit)

	for i := 0; i < count && i < limit; i++ {
		s.c <- struct{}{}
	}
}

// Give increments the semaphore count, unless already at its limit.
func (s *Semaphore) Give() {
	select {
	case s.c <- struct{}{}:
	default:
	}
}

// Take decrements the semaphore count, waiting up to the given timeout for
// it to become available (Forever waits indefinitely, NoWait returns
// immediately).
func (s *Semaphore) Take(timeout time.Duration) (err error) {
	switch {
	case timeout == NoWait:
		select {
		case <-s.c:
			return
		default:
			return ErrBusy
		}
	case timeout < 0:
		<-s.c
		return
	}

	t := time.NewTimer(timeout)
	defer t.Stop()

	select {
	case <-s.c:
	case <-t.C:
		err = ErrTimeout
	}

	return
}

// Count returns the current semaphore count.
func (s *Semaphore) Count() int {
	return len(s.c)
}
