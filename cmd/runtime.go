// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package cmd

import (
	"bytes"
	"fmt"
	"regexp"
	"runtime"
	"runtime/debug"
	"runtime/pprof"

	"golang.org/x/term"
)

func init() {
	Add(Cmd{
		Name:    "stack",
		Args:    1,
		Pattern: regexp.MustCompile(`^stack( all)?$`),
		Syntax:  "(all)?",
		Help:    "stack trace of current (or all) goroutines",
		Fn:      stackCmd,
	})

	Add(Cmd{
		Name: "runtime",
		Help: "runtime information",
		Fn:   runtimeCmd,
	})
}

func stackCmd(_ *term.Terminal, arg []string) (string, error) {
	if len(arg[0]) == 0 {
		return string(debug.Stack()), nil
	}

	buf := new(bytes.Buffer)
	pprof.Lookup("goroutine").WriteTo(buf, 1)

	return buf.String(), nil
}

func runtimeCmd(_ *term.Terminal, _ []string) (string, error) {
	var m runtime.MemStats

	runtime.ReadMemStats(&m)

	return fmt.Sprintf("%s/%s (%s) goroutines:%d heap:%d/%d",
		runtime.GOOS, runtime.GOARCH, runtime.Version(),
		runtime.NumGoroutine(), m.HeapAlloc, m.HeapSys), nil
}
