// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package nsc

// Caller represents a Secure service call dispatcher.
type Caller interface {
	Call(service Service, api API, params Params) (res int32, err error)
}
