// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago && arm

package main

import (
	"fmt"
	"log"
	"os"
	"runtime"
	_ "unsafe"

	"github.com/usbarmory/imx-usbnet"
	"github.com/usbarmory/tamago/arm"
	usbarmory "github.com/usbarmory/tamago/board/usbarmory/mk2"
	"github.com/usbarmory/tamago/soc/nxp/imx6ul"

	"github.com/usbarmory/GoTEE-nsgate/cmd"
	"github.com/usbarmory/GoTEE-nsgate/egu"
	"github.com/usbarmory/GoTEE-nsgate/gateway"
	"github.com/usbarmory/GoTEE-nsgate/mem"
	"github.com/usbarmory/GoTEE-nsgate/rtos"
	"github.com/usbarmory/GoTEE-nsgate/services/at"
	"github.com/usbarmory/GoTEE-nsgate/services/fota"
	"github.com/usbarmory/GoTEE-nsgate/services/kernel"
	"github.com/usbarmory/GoTEE-nsgate/util"
)

const (
	sshPort = 22
	IP      = "10.0.0.1"
	MAC     = "1a:55:89:a2:69:41"
	hostMAC = "1a:55:89:a2:69:42"
)

//go:linkname ramStart runtime.ramStart
var ramStart uint32 = mem.NonSecureStart

//go:linkname ramSize runtime.ramSize
var ramSize uint32 = mem.NonSecureSize

//go:linkname hwinit runtime.hwinit
func hwinit() {
	imx6ul.Init()
}

//go:linkname printk runtime.printk
func printk(c byte) {
	printSecure(c)
}

func init() {
	log.SetFlags(log.Ltime)
	log.SetOutput(os.Stdout)

	if imx6ul.Native {
		imx6ul.SetARMFreq(900)
	}
}

func startInterruptHandler(k *rtos.CPU, g *gateway.Gateway) {
	imx6ul.GIC.EnableInterrupt(mem.EventGeneratorIRQ, false)

	isr := func() {
		switch irq := imx6ul.GIC.GetInterrupt(false); irq {
		case mem.EventGeneratorIRQ:
			k.Interrupt(func(rtos.Kernel) {
				g.HandleInterrupt()
			})
		default:
			log.Printf("NS unexpected IRQ %d", irq)
		}
	}

	arm.ServiceInterrupts(isr)
}

func startGateway() (g *gateway.Gateway, err error) {
	k := &rtos.CPU{ARM: imx6ul.ARM}

	g, err = gateway.New(gateway.Config{
		Kernel:    k,
		Transport: &veneer{},
		Events:    &egu.MMIO{Base: mem.EventGeneratorStart},
	})

	if err != nil {
		return
	}

	go startInterruptHandler(k, g)

	if err = kernel.RequestPeripherals(g, mem.Peripherals); err != nil {
		return
	}

	notifier := &at.Notifier{}

	if err = notifier.Subscribe(g); err != nil {
		return
	}

	download, err := fota.New(g, notifier, func(ev fota.Event) {
		log.Printf("NS modem firmware download %s (%d)", ev.ID, ev.Progress)
	})

	if err != nil {
		return
	}

	cmd.Attach(g, notifier, download)
	g.Start()

	return
}

func main() {
	banner := fmt.Sprintf("%s/%s (%s) • secure service gateway (Non-secure)", runtime.GOOS, runtime.GOARCH, runtime.Version())
	log.Print(banner)

	g, err := startGateway()

	if err != nil {
		log.Printf("NS gateway initialization error, %v", err)
		// yield back to secure monitor
		exit()
	}

	iface, err := usbnet.Init(IP, MAC, hostMAC, 1)

	if err != nil {
		log.Fatalf("NS could not initialize USB networking, %v", err)
	}

	iface.EnableICMP()

	listener, err := iface.ListenerTCP4(sshPort)

	if err != nil {
		log.Fatalf("NS could not initialize SSH listener, %v", err)
	}

	console := &util.Console{
		Banner:   banner,
		Help:     cmd.Help,
		Handler:  cmd.Handle,
		Listener: listener,
	}

	if err = console.Start(); err != nil {
		log.Fatalf("NS could not initialize SSH server, %v", err)
	}

	if err = kernel.MarkImageValid(g); err != nil {
		log.Printf("NS could not mark image as valid, %v", err)
	}

	usbarmory.USB1.Init()
	usbarmory.USB1.DeviceMode()
	usbarmory.USB1.Reset()

	// never returns
	usbarmory.USB1.Start(iface.NIC.Device)
}
