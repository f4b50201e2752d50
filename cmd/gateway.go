// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package cmd

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/buildkite/shellwords"
	"golang.org/x/term"

	"github.com/usbarmory/tamago/bits"

	"github.com/usbarmory/GoTEE-nsgate/gateway"
	"github.com/usbarmory/GoTEE-nsgate/nsc"
	"github.com/usbarmory/GoTEE-nsgate/services/at"
	"github.com/usbarmory/GoTEE-nsgate/services/fota"
	"github.com/usbarmory/GoTEE-nsgate/services/kernel"
)

const urcHistory = 16

var (
	gw       *gateway.Gateway
	download *fota.Download

	urcs struct {
		sync.Mutex
		lines []string
	}
)

func init() {
	Add(Cmd{
		Name: "channels",
		Help: "channel reservations and counters",
		Fn:   channelsCmd,
	})

	Add(Cmd{
		Name:    "call",
		Args:    1,
		Pattern: regexp.MustCompile(`^call (.+)$`),
		Syntax:  "<service> <api> (hex params)?",
		Help:    "raw Secure service call",
		Fn:      callCmd,
	})

	Add(Cmd{
		Name:    "at",
		Args:    1,
		Pattern: regexp.MustCompile(`^at (.+)$`),
		Syntax:  "<command>",
		Help:    "run modem AT command",
		Fn:      atCmd,
	})

	Add(Cmd{
		Name: "urc",
		Help: "recent unsolicited result codes",
		Fn:   urcCmd,
	})

	Add(Cmd{
		Name: "errno",
		Help: "latest Secure errno value",
		Fn:   errnoCmd,
	})

	Add(Cmd{
		Name: "valid",
		Help: "mark running image as valid",
		Fn:   validCmd,
	})

	Add(Cmd{
		Name: "pendsv",
		Help: "request PendSV",
		Fn:   pendsvCmd,
	})

	Add(Cmd{
		Name:    "reset",
		Args:    1,
		Pattern: regexp.MustCompile(`^reset( skip)?$`),
		Syntax:  "(skip)?",
		Help:    "reset, optionally skipping application launch",
		Fn:      resetCmd,
	})

	Add(Cmd{
		Name:    "fota",
		Args:    2,
		Pattern: regexp.MustCompile(`^fota (\S+) (\S+)$`),
		Syntax:  "<host> <file>",
		Help:    "start modem firmware download",
		Fn:      fotaCmd,
	})
}

// Attach binds the gateway commands to a gateway instance, recording URCs
// distributed by the notifier. The download instance is optional.
func Attach(g *gateway.Gateway, n *at.Notifier, d *fota.Download) {
	gw = g
	download = d

	n.Register(func(urc string) {
		urcs.Lock()
		defer urcs.Unlock()

		urcs.lines = append(urcs.lines, urc)

		if len(urcs.lines) > urcHistory {
			urcs.lines = urcs.lines[len(urcs.lines)-urcHistory:]
		}
	})
}

var errDetached = errors.New("no gateway attached")

func caller() (nsc.Caller, error) {
	if gw == nil {
		return nil, errDetached
	}

	return gw, nil
}

func channelsCmd(_ *term.Terminal, _ []string) (string, error) {
	if gw == nil {
		return "", errDetached
	}

	var buf bytes.Buffer

	s := gw.Stats()
	t := tabwriter.NewWriter(&buf, 8, 8, 1, ' ', 0)

	fmt.Fprintf(t, "ch\tstate\tcalls\n")

	for ch, calls := range s.Calls {
		state := "free"

		if bits.Get(&s.Reserved, ch, 1) != 0 {
			state = "reserved"
		}

		fmt.Fprintf(t, "%d\t%s\t%d\n", ch, state, calls)
	}

	fmt.Fprintf(t, "%d\tasync\t%d\n", gw.AsyncChannel(), s.Messages)
	t.Flush()

	fmt.Fprintf(&buf, "urc subscriber: %v", s.Subscribed)

	return buf.String(), nil
}

func callCmd(_ *term.Terminal, arg []string) (res string, err error) {
	c, err := caller()

	if err != nil {
		return
	}

	args, err := shellwords.Split(arg[0])

	if err != nil {
		return
	}

	if len(args) < 2 || len(args) > 3 {
		return "", errors.New("invalid arguments")
	}

	svc, err := nsc.ParseService(args[0])

	if err != nil {
		return "", fmt.Errorf("invalid service, %v", err)
	}

	api, err := strconv.ParseUint(args[1], 0, 16)

	if err != nil {
		return "", fmt.Errorf("invalid api, %v", err)
	}

	var params nsc.Buffer

	if len(args) == 3 {
		if params, err = hex.DecodeString(strings.TrimPrefix(args[2], "0x")); err != nil {
			return "", fmt.Errorf("invalid params, %v", err)
		}
	}

	r, err := c.Call(svc, nsc.API(api), params)

	if err != nil {
		return
	}

	res = fmt.Sprintf("result: %d", r)

	if len(params) > 0 {
		res += "\n" + hex.Dump(params)
	}

	return
}

func atCmd(_ *term.Terminal, arg []string) (res string, err error) {
	c, err := caller()

	if err != nil {
		return
	}

	res, err = at.Run(c, arg[0], at.DefaultResponseLength)

	var modemErr *at.Error

	if errors.As(err, &modemErr) {
		return fmt.Sprintf("%s\n%v", res, modemErr), nil
	}

	return
}

func urcCmd(_ *term.Terminal, _ []string) (string, error) {
	urcs.Lock()
	defer urcs.Unlock()

	return strings.Join(urcs.lines, "\n"), nil
}

func errnoCmd(_ *term.Terminal, _ []string) (string, error) {
	c, err := caller()

	if err != nil {
		return "", err
	}

	errno, err := kernel.Errno(c)

	if err != nil {
		return "", err
	}

	return fmt.Sprintf("errno: %d (%v)", errno, nsc.Errno(-errno)), nil
}

func validCmd(_ *term.Terminal, _ []string) (string, error) {
	c, err := caller()

	if err != nil {
		return "", err
	}

	return "", kernel.MarkImageValid(c)
}

func pendsvCmd(_ *term.Terminal, _ []string) (string, error) {
	if gw == nil {
		return "", errDetached
	}

	return "", gw.RequestPendSV()
}

func resetCmd(_ *term.Terminal, arg []string) (string, error) {
	var flags uint32

	c, err := caller()

	if err != nil {
		return "", err
	}

	if len(arg[0]) > 0 {
		flags |= kernel.ResetSkipLaunch
	}

	return "", kernel.Reset(c, flags)
}

func fotaCmd(_ *term.Terminal, arg []string) (string, error) {
	if download == nil {
		return "", errors.New("download unavailable")
	}

	if err := download.Start(arg[0], arg[1]); err != nil {
		return "", err
	}

	return "download started", nil
}
