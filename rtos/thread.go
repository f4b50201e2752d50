// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package rtos

import (
	"log"
	"runtime"
)

// Go starts fn as a dedicated thread, a goroutine locked to its own OS thread
// for its whole lifetime, so that it is never multiplexed with application
// goroutines.
func Go(name string, fn func()) {
	started := make(chan struct{})

	go func() {
		runtime.LockOSThread()
		close(started)

		log.Printf("NS thread %s started", name)
		fn()
		log.Printf("NS thread %s exited", name)
	}()

	<-started
}
