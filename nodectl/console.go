package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/abiosoft/ishell"
	"github.com/golang/glog"

	"github.com/itohio/sensornode/pkg/command"
	"github.com/itohio/sensornode/pkg/config"
	"github.com/itohio/sensornode/pkg/link"
)

const unconnectedPrompt = "[none] > "

var errNotConnected = errors.New("not connected")

// printer is the part of ishell used to show node output.
type printer interface {
	Printf(format string, a ...interface{})
	SetPrompt(prompt string)
}

// console talks to a node over a serial link.
type console struct {
	cfg config.SerialConfig
	out printer

	// dial opens the transport for a port; replaced in tests.
	dial func(port string) link.Transport

	mu     sync.Mutex
	link   link.Transport
	cancel context.CancelFunc
	done   chan struct{}
}

func newConsole(cfg config.SerialConfig, out printer) *console {
	c := &console{cfg: cfg, out: out}
	c.dial = func(port string) link.Transport {
		return link.NewSerial(port, cfg.BaudRate)
	}
	out.SetPrompt(unconnectedPrompt)
	return c
}

func (c *console) connect(port string) error {
	c.disconnect()

	t := c.dial(port)
	if err := t.Connect(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	c.mu.Lock()
	c.link, c.cancel, c.done = t, cancel, done
	c.mu.Unlock()

	go c.readLoop(ctx, t, done)
	c.out.SetPrompt(fmt.Sprintf("%s > ", port))
	return nil
}

func (c *console) disconnect() {
	c.mu.Lock()
	t, cancel, done := c.link, c.cancel, c.done
	c.link, c.cancel, c.done = nil, nil, nil
	c.mu.Unlock()

	if t == nil {
		return
	}
	cancel()
	if err := t.Close(); err != nil {
		glog.Warningf("close failed: %v", err)
	}
	<-done
	c.out.SetPrompt(unconnectedPrompt)
}

// readLoop prints everything the node sends until ctx is done or the link
// closes.
func (c *console) readLoop(ctx context.Context, t link.Receiver, done chan struct{}) {
	defer close(done)

	bufSize := c.cfg.BufferSize
	if bufSize <= 0 {
		bufSize = link.DefaultBufferSize
	}
	buf := make([]byte, bufSize)

	for ctx.Err() == nil {
		n, err := t.Receive(buf, c.cfg.ReadTimeout)
		if err != nil {
			if errors.Is(err, link.ErrNotConnected) {
				return
			}
			glog.Warningf("receive failed: %v", err)
			continue
		}
		if n > 0 {
			c.out.Printf("%s", buf[:n])
		}
	}
}

func (c *console) send(u command.Update) error {
	return c.sendText(u.String())
}

func (c *console) sendText(text string) error {
	c.mu.Lock()
	t := c.link
	c.mu.Unlock()

	if t == nil {
		return errNotConnected
	}
	return t.Send([]byte(text))
}

// activeUpdate builds an active: request from a 0/1 pattern.
func activeUpdate(args []string) (command.Update, error) {
	if len(args) < 1 {
		return command.Update{}, errors.New("BITS required")
	}
	bits := args[0]
	if bits == "" || strings.Trim(bits, "01") != "" {
		return command.Update{}, fmt.Errorf("invalid BITS %q: only 0 and 1 allowed", bits)
	}
	active, width := command.ParseBits(bits)
	return command.Update{Active: active, HasActive: true, ActiveWidth: width}, nil
}

// freqUpdate builds a freq: request from an interval in milliseconds.
func freqUpdate(args []string) (command.Update, error) {
	if len(args) < 1 {
		return command.Update{}, errors.New("MS required")
	}
	ms, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return command.Update{}, fmt.Errorf("invalid MS: %w", err)
	}
	return command.Update{Interval: ms, HasInterval: true}, nil
}

func (c *console) register(shell *ishell.Shell) {
	shell.AddCmd(&ishell.Cmd{
		Name:    "ports",
		Aliases: []string{"l"},
		Help:    "list serial ports",
		Func: func(ctx *ishell.Context) {
			ports, err := link.Ports()
			if err != nil {
				ctx.Err(err)
				return
			}
			if len(ports) == 0 {
				ctx.Println("No serial ports found")
				return
			}
			for _, p := range ports {
				ctx.Println(p.Name)
			}
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "[PORT]",
		Func: func(ctx *ishell.Context) {
			port := c.cfg.Port
			if len(ctx.Args) > 0 {
				port = ctx.Args[0]
			}
			if err := c.connect(port); err != nil {
				ctx.Err(err)
			}
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "",
		Func: func(ctx *ishell.Context) {
			c.disconnect()
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name:    "active",
		Aliases: []string{"a"},
		Help:    "BITS (MSB first, last bit is sensor 0)",
		Func:    c.updateFunc(activeUpdate),
	})

	shell.AddCmd(&ishell.Cmd{
		Name:    "freq",
		Aliases: []string{"f"},
		Help:    "MS poll interval",
		Func:    c.updateFunc(freqUpdate),
	})

	shell.AddCmd(&ishell.Cmd{
		Name:    "check",
		Aliases: []string{"r"},
		Help:    "request one report",
		Func: c.updateFunc(func([]string) (command.Update, error) {
			return command.Update{Check: true}, nil
		}),
	})

	shell.AddCmd(&ishell.Cmd{
		Name:    "send",
		Aliases: []string{"s"},
		Help:    "TEXT sent as is",
		Func: func(ctx *ishell.Context) {
			if err := c.sendText(strings.Join(ctx.Args, " ")); err != nil {
				ctx.Err(err)
			}
		},
	})
}

func (c *console) updateFunc(build func([]string) (command.Update, error)) func(*ishell.Context) {
	return func(ctx *ishell.Context) {
		u, err := build(ctx.Args)
		if err != nil {
			ctx.Err(err)
			return
		}
		if err := c.send(u); err != nil {
			ctx.Err(err)
		}
	}
}
