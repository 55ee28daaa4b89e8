package main

import (
	"flag"

	"github.com/abiosoft/ishell"
	"github.com/golang/glog"

	"github.com/itohio/sensornode/pkg/config"
)

func main() {
	var (
		portFlag   = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		configFlag = flag.String("config", "config.yaml", "Configuration file path")
	)
	flag.Parse()
	defer glog.Flush()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		glog.Fatalf("Failed to load configuration: %v", err)
	}
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}

	shell := ishell.New()
	c := newConsole(cfg.Serial, shell)
	c.register(shell)
	defer c.disconnect()

	if args := flag.Args(); len(args) > 0 {
		if err := c.connect(cfg.Serial.Port); err != nil {
			glog.Fatalf("connect %q failed: %v", cfg.Serial.Port, err)
		}
		if err := shell.Process(args...); err != nil {
			glog.Fatal(err)
		}
		return
	}
	shell.Run()
}
