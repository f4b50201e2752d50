// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package at

import (
	"sync"

	"github.com/usbarmory/GoTEE-nsgate/nsc"
)

// Subscriber represents the owner of the single URC subscription slot.
type Subscriber interface {
	RegisterAsyncCallback(cb nsc.UrcCallback) error
}

// Notifier distributes URCs to any number of handlers, it holds the single
// Secure URC subscription on their behalf.
type Notifier struct {
	sync.Mutex
	handlers []func(urc string)
}

// Subscribe registers the notifier as URC subscriber.
func (n *Notifier) Subscribe(s Subscriber) error {
	return s.RegisterAsyncCallback(n.Notify)
}

// Register adds a URC handler, nil handlers are ignored.
func (n *Notifier) Register(handler func(urc string)) {
	if handler == nil {
		return
	}

	n.Lock()
	defer n.Unlock()

	n.handlers = append(n.handlers, handler)
}

// Notify invokes all registered handlers with the argument URC, handlers may
// register further handlers which are invoked from the next URC on.
func (n *Notifier) Notify(urc string) {
	n.Lock()
	handlers := append([]func(urc string){}, n.handlers...)
	n.Unlock()

	for _, handler := range handlers {
		handler(urc)
	}
}
