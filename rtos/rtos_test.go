// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package rtos

import (
	"errors"
	"testing"
	"time"
)

func TestSemaphoreBinary(t *testing.T) {
	s := NewSemaphore(0, 1)

	if err := s.Take(NoWait); !errors.Is(err, ErrBusy) {
		t.Errorf("Take(NoWait) = %v, want %v", err, ErrBusy)
	}

	s.Give()
	s.Give()

	if c := s.Count(); c != 1 {
		t.Errorf("Count() = %d after two gives, want 1", c)
	}

	if err := s.Take(NoWait); err != nil {
		t.Error(err)
	}

	if err := s.Take(10 * time.Millisecond); !errors.Is(err, ErrTimeout) {
		t.Errorf("Take(10ms) = %v, want %v", err, ErrTimeout)
	}
}

func TestSemaphoreWake(t *testing.T) {
	s := NewSemaphore(0, 1)
	done := make(chan error)

	go func() {
		done <- s.Take(Forever)
	}()

	time.Sleep(10 * time.Millisecond)
	s.Give()

	select {
	case err := <-done:
		if err != nil {
			t.Error(err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("waiter not woken")
	}
}

func TestGuards(t *testing.T) {
	h := &Host{}

	unlock := SchedGuard(h)

	if h.SchedLocks() != 1 {
		t.Errorf("SchedLocks() = %d", h.SchedLocks())
	}

	unlock()

	h.Interrupt(func(k Kernel) {
		if !k.InISR() {
			t.Error("not in interrupt context")
		}

		if h.InISR() {
			t.Error("interrupt context leaked to thread view")
		}

		SchedGuard(k)()
	})

	if h.SchedLocks() != 0 || h.InISR() {
		t.Errorf("SchedLocks() = %d InISR() = %v", h.SchedLocks(), h.InISR())
	}

	if k := ISR(h); ISR(k) != k {
		t.Error("interrupt context view wrapped twice")
	}

	restore := IRQGuard(h)

	if h.irq.TryLock() {
		t.Error("interrupts not locked")
	}

	restore()

	if !h.irq.TryLock() {
		t.Error("interrupts not restored")
	}
}

func TestGo(t *testing.T) {
	done := make(chan struct{})

	Go("test", func() {
		close(done)
	})

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("thread not started")
	}
}

func TestInterruptIsolation(t *testing.T) {
	h := &Host{}

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)

		h.Interrupt(func(Kernel) {
			close(entered)
			<-release
		})
	}()

	<-entered

	// a thread running while a handler is serviced elsewhere
	unlock := SchedGuard(h)

	if h.SchedLocks() != 1 {
		t.Errorf("SchedLocks() = %d during interrupt, want 1", h.SchedLocks())
	}

	unlock()
	close(release)
	<-done
}
