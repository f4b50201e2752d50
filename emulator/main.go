// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// The emulator command runs the secure service gateway on a host, against
// emulated Secure firmware, exposing the diagnostic console over SSH.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/usbarmory/GoTEE-nsgate/cmd"
	"github.com/usbarmory/GoTEE-nsgate/gateway"
	"github.com/usbarmory/GoTEE-nsgate/internal/emulator"
	"github.com/usbarmory/GoTEE-nsgate/mem"
	"github.com/usbarmory/GoTEE-nsgate/services/at"
	"github.com/usbarmory/GoTEE-nsgate/services/fota"
	"github.com/usbarmory/GoTEE-nsgate/services/kernel"
	"github.com/usbarmory/GoTEE-nsgate/util"
)

var (
	listen   = flag.String("listen", "127.0.0.1:2222", "SSH console address")
	channels = flag.Int("channels", gateway.DefaultChannels, "bidirectional channels")
	latency  = flag.Duration("latency", time.Millisecond, "emulated Secure response latency")
	urcEvery = flag.Duration("urc", 0, "emulated network registration URC interval (0 disables)")
)

// urcs periodically emits network registration URCs.
func urcs(ctx context.Context, s *emulator.Secure, every time.Duration) error {
	t := time.NewTicker(every)
	defer t.Stop()

	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			s.Urc(fmt.Sprintf("+CEREG: %d", 1+4*(i%2)))
		}
	}
}

// modem serves AT commands, emulating a firmware download for AT#XFOTA.
func modem(s *emulator.Secure) emulator.Modem {
	return func(cmd string) (string, at.Result, int32) {
		if strings.HasPrefix(cmd, "AT#XFOTA=") {
			go func() {
				for _, urc := range []string{"DFU: 2,0", "DFU: 2,65536", "DFU: 3"} {
					time.Sleep(100 * time.Millisecond)
					s.Urc(urc)
				}
			}()
		}

		return emulator.DefaultModem(cmd)
	}
}

func main() {
	flag.Parse()

	log.SetFlags(log.Ltime)

	secureOutput := &util.Output{Secure: true}

	board := emulator.NewBoard(*channels)
	board.Secure.Latency = *latency
	board.Device.Log = log.New(secureOutput, "", log.Ltime)
	board.Device.Modem = modem(board.Secure)

	g, err := gateway.New(gateway.Config{
		Channels:  *channels,
		Kernel:    board.Kernel,
		Transport: board.Secure,
		Events:    board.Events,
	})

	if err != nil {
		log.Fatalf("NS gateway initialization error, %v", err)
	}

	board.Attach(g.HandleInterrupt)

	if err = kernel.RequestPeripherals(g, mem.Peripherals); err != nil {
		log.Fatalf("NS %v", err)
	}

	notifier := &at.Notifier{}

	if err = notifier.Subscribe(g); err != nil {
		log.Fatalf("NS URC subscription error, %v", err)
	}

	download, err := fota.New(g, notifier, func(ev fota.Event) {
		log.Printf("NS modem firmware download %s (%d)", ev.ID, ev.Progress)
	})

	if err != nil {
		log.Fatal(err)
	}

	cmd.Attach(g, notifier, download)
	g.Start()

	listener, err := net.Listen("tcp", *listen)

	if err != nil {
		log.Fatalf("NS could not initialize SSH listener, %v", err)
	}

	console := &util.Console{
		Banner:   fmt.Sprintf("%s/%s (%s) • secure service gateway (emulated)", runtime.GOOS, runtime.GOARCH, runtime.Version()),
		Help:     cmd.Help,
		Handler:  cmd.Handle,
		Listener: listener,
		Attach:   secureOutput.SetTerm,
	}

	if err = console.Start(); err != nil {
		log.Fatalf("NS could not initialize SSH server, %v", err)
	}

	if err = kernel.MarkImageValid(g); err != nil {
		log.Printf("NS could not mark image as valid, %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	eg, ctx := errgroup.WithContext(ctx)

	if *urcEvery > 0 {
		eg.Go(func() error {
			return urcs(ctx, board.Secure, *urcEvery)
		})
	}

	eg.Go(func() error {
		<-ctx.Done()
		return listener.Close()
	})

	if err = eg.Wait(); err != nil {
		log.Printf("NS %v", err)
	}

	log.Printf("NS says goodbye")
}
