// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package util

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"net"

	"golang.org/x/crypto/ssh"
	"golang.org/x/term"
)

// Console represents an SSH console instance.
type Console struct {
	// Banner is the login welcome banner
	Banner string
	// Help returns the `help` command output
	Help func(term *term.Terminal) string
	// Handler is the terminal command handler
	Handler func(term *term.Terminal, line string) error
	// Listener is the console network listener
	Listener net.Listener
	// Attach is invoked on every new session terminal
	Attach func(term *term.Terminal)
}

// ptySize parses a pty-req payload (p10, 6.2. Requesting a Pseudo-Terminal,
// RFC4254).
func ptySize(payload []byte) (w int, h int, ok bool) {
	if len(payload) < 4 {
		return
	}

	termVariableSize := int(binary.BigEndian.Uint32(payload))

	if len(payload) < 4+termVariableSize+8 {
		return
	}

	w = int(binary.BigEndian.Uint32(payload[4+termVariableSize:]))
	h = int(binary.BigEndian.Uint32(payload[4+termVariableSize+4:]))

	return w, h, true
}

// windowSize parses a window-change payload (p10, 6.7. Window Dimension
// Change Message, RFC4254).
func windowSize(payload []byte) (w int, h int, ok bool) {
	if len(payload) < 8 {
		return
	}

	w = int(binary.BigEndian.Uint32(payload))
	h = int(binary.BigEndian.Uint32(payload[4:]))

	return w, h, true
}

func (c *Console) session(t *term.Terminal) {
	fmt.Fprintf(t, "%s\n", c.Banner)

	if c.Help != nil {
		fmt.Fprintf(t, "%s\n", string(t.Escape.Cyan)+c.Help(t)+string(t.Escape.Reset))
	}

	for {
		line, err := t.ReadLine()

		if err == io.EOF {
			break
		}

		if err != nil {
			log.Printf("NS readline error, %v", err)
			continue
		}

		if err = c.Handler(t, line); err == io.EOF {
			break
		}

		if err != nil {
			fmt.Fprintf(t, "error: %v\n", err)
		}
	}

	log.Printf("NS closing ssh connection")
}

func (c *Console) handleChannel(newChannel ssh.NewChannel) {
	if t := newChannel.ChannelType(); t != "session" {
		_ = newChannel.Reject(ssh.UnknownChannelType, fmt.Sprintf("unknown channel type: %s", t))
		return
	}

	conn, requests, err := newChannel.Accept()

	if err != nil {
		log.Printf("NS error accepting channel, %v", err)
		return
	}

	t := term.NewTerminal(conn, "")
	t.SetPrompt(string(t.Escape.Red) + "> " + string(t.Escape.Reset))

	if c.Attach != nil {
		c.Attach(t)
	}

	go func() {
		defer conn.Close()
		c.session(t)
	}()

	go func() {
		for req := range requests {
			switch req.Type {
			case "shell":
				// do not accept payload commands
				if len(req.Payload) == 0 {
					_ = req.Reply(true, nil)
				}
			case "pty-req":
				w, h, ok := ptySize(req.Payload)

				if !ok {
					log.Printf("NS malformed pty-req request")
					continue
				}

				_ = t.SetSize(w, h)
				_ = req.Reply(true, nil)
			case "window-change":
				w, h, ok := windowSize(req.Payload)

				if !ok {
					log.Printf("NS malformed window-change request")
					continue
				}

				_ = t.SetSize(w, h)
			}
		}
	}()
}

func (c *Console) handleChannels(chans <-chan ssh.NewChannel) {
	for newChannel := range chans {
		go c.handleChannel(newChannel)
	}
}

func (c *Console) listen(srv *ssh.ServerConfig) {
	for {
		conn, err := c.Listener.Accept()

		if err != nil {
			log.Printf("NS error accepting connection, %v", err)

			if ne, ok := err.(net.Error); ok && !ne.Timeout() {
				return
			}

			continue
		}

		sshConn, chans, reqs, err := ssh.NewServerConn(conn, srv)

		if err != nil {
			log.Printf("NS error accepting handshake, %v", err)
			continue
		}

		log.Printf("NS new ssh connection from %s (%s)", sshConn.RemoteAddr(), sshConn.ClientVersion())

		go ssh.DiscardRequests(reqs)
		go c.handleChannels(chans)
	}
}

// Start instantiates an SSH console on the console listener.
func (c *Console) Start() (err error) {
	srv := &ssh.ServerConfig{
		NoClientAuth: true,
	}

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)

	if err != nil {
		return fmt.Errorf("private key generation error, %v", err)
	}

	signer, err := ssh.NewSignerFromKey(key)

	if err != nil {
		return fmt.Errorf("key conversion error, %v", err)
	}

	log.Printf("NS starting ssh server (%s)", ssh.FingerprintSHA256(signer.PublicKey()))

	srv.AddHostKey(signer)

	go c.listen(srv)

	return
}
