package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/golang/glog"

	"github.com/itohio/sensornode/pkg/config"
	"github.com/itohio/sensornode/pkg/hal"
	"github.com/itohio/sensornode/pkg/hal/sim"
	"github.com/itohio/sensornode/pkg/link"
	"github.com/itohio/sensornode/pkg/metrics"
	"github.com/itohio/sensornode/pkg/node"
	"github.com/itohio/sensornode/pkg/runner"
)

func main() {
	var (
		portFlag   = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		configFlag = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag   = flag.Bool("mock", false, "Simulate the hardware and talk over stdin/stdout")
	)
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		glog.Exitf("Failed to load configuration: %v", err)
	}
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}

	hw, err := openHardware(cfg, *mockFlag)
	if err != nil {
		glog.Exitf("Failed to open hardware: %v", err)
	}
	transport, stdio, err := openTransport(cfg, *mockFlag)
	if err != nil {
		glog.Exitf("Failed to configure link: %v", err)
	}

	ctx, stop := runner.WithSignals(context.Background())
	err = run(ctx, cfg, hw, transport, stdio)
	stop()

	if err != nil {
		glog.Errorf("stopped: %v", err)
		glog.Flush()
		os.Exit(1)
	}
	glog.Flush()
}

// run connects the link and runs the node until ctx is done or a task
// fails. The link is closed before run returns.
func run(ctx context.Context, cfg *config.Config, hw node.Hardware, transport link.Transport, stdio *link.Mock) error {
	if err := transport.Connect(); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer transport.Close()

	m := metrics.New(nil)
	g := runner.New(ctx).Go("node", node.New(cfg, hw, transport, m))
	if cfg.Metrics.Addr != "" {
		g.Go("metrics", &metrics.Server{Addr: cfg.Metrics.Addr, Metrics: m})
	}
	if stdio != nil {
		g.Go("stdio", runner.TaskFunc(func(ctx context.Context) error {
			return pumpStdio(ctx, stdio)
		}))
	}
	return g.Wait()
}

// openTransport returns the serial link, or in mock mode an in-memory link
// that is also returned as stdio. MQTT mirroring wraps either.
func openTransport(cfg *config.Config, mock bool) (link.Transport, *link.Mock, error) {
	var transport link.Transport
	var stdio *link.Mock
	if mock {
		stdio = link.NewMock(0)
		transport = stdio
	} else {
		transport = link.NewSerial(cfg.Serial.Port, cfg.Serial.BaudRate)
	}

	if cfg.MQTT.URL != "" {
		mirror, err := link.NewMirror(transport, cfg.MQTT.URL, node.ID(), cfg.MQTT.QoS)
		if err != nil {
			return nil, nil, err
		}
		transport = mirror
	}
	return transport, stdio, nil
}

func openHardware(cfg *config.Config, mock bool) (node.Hardware, error) {
	if mock {
		board := sim.New(&cfg.Mock, node.Thermistor(cfg.Thermistor))
		return node.Hardware{
			Presence: board.Presence(),
			TriggerA: board.TriggerA(),
			TriggerB: board.TriggerB(),
			ADC:      board.ADC(),
		}, nil
	}

	presence, err := hal.OpenInput(cfg.Pins.Presence)
	if err != nil {
		return node.Hardware{}, err
	}
	triggerA, err := hal.OpenInput(cfg.Pins.TriggerA)
	if err != nil {
		return node.Hardware{}, err
	}
	triggerB, err := hal.OpenInput(cfg.Pins.TriggerB)
	if err != nil {
		return node.Hardware{}, err
	}

	return node.Hardware{
		Presence: presence,
		TriggerA: triggerA,
		TriggerB: triggerB,
		ADC:      hal.IIOChannel{Path: cfg.Pins.ADC},
	}, nil
}

// pumpStdio feeds stdin lines to the mock link and prints what the node sends.
func pumpStdio(ctx context.Context, mock *link.Mock) error {
	go func() {
		for msg := range mock.Output() {
			fmt.Fprint(os.Stdout, string(msg))
		}
	}()

	lines := make(chan []byte)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- append([]byte(nil), scanner.Bytes()...)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				// stdin closed, keep the node running until stopped
				<-ctx.Done()
				return ctx.Err()
			}
			if !mock.Inject(line) {
				glog.Warning("input queue full, message dropped")
			}
		}
	}
}
