package main

import (
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/lab47/scsiq/cli"
)

func main() {
	level := hclog.Info

	if os.Getenv("SCSIQ_DEBUG") != "" {
		level = hclog.Trace
	}

	log := hclog.New(&hclog.LoggerOptions{
		Name:  "scsiq",
		Level: level,
		Color: hclog.AutoColor,

		ColorHeaderAndFields: true,
	})

	c, err := cli.NewCLI(log, os.Args[1:])
	if err != nil {
		log.Error("error creating CLI", "error", err)
		os.Exit(1)
		return
	}

	code, err := c.Run()
	if err != nil {
		log.Error("error running CLI", "error", err)
		os.Exit(1)
	}

	os.Exit(code)
}
