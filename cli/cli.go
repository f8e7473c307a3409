package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/hashicorp/go-hclog"
	"github.com/lab47/cleo"
	"github.com/lab47/scsiq"
	"github.com/lab47/scsiq/pkg/sgio"
	"github.com/mitchellh/cli"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type CLI struct {
	log hclog.Logger

	lc *cli.CLI
}

type Global struct {
	Config string `short:"c" long:"config" description:"configuration file"`
	Device string `short:"d" long:"device" description:"device node to query"`
	Debug  bool   `short:"D" long:"debug" description:"enable debug mode"`
}

func NewCLI(log hclog.Logger, args []string) (*CLI, error) {
	c := &CLI{
		log: log,
		lc:  cli.NewCLI("scsiq", "alpha"),
	}

	c.lc.Args = args

	err := c.setupCommands()
	if err != nil {
		return nil, err
	}

	return c, nil
}

func (c *CLI) Run() (int, error) {
	return c.lc.Run()
}

func (c *CLI) setupCommands() error {
	c.lc.Commands = map[string]cli.CommandFactory{
		"streams": func() (cli.Command, error) {
			return cleo.Infer("streams", "report the device's open streams", c.streams), nil
		},
		"inquiry": func() (cli.Command, error) {
			return cleo.Infer("inquiry", "identify the device", c.inquiry), nil
		},
		"capacity": func() (cli.Command, error) {
			return cleo.Infer("capacity", "report the device's capacity", c.capacity), nil
		},
		"luns": func() (cli.Command, error) {
			return cleo.Infer("luns", "report the device's logical units", c.luns), nil
		},
		"ready": func() (cli.Command, error) {
			return cleo.Infer("ready", "check whether the device is ready", c.ready), nil
		},
		"replay": func() (cli.Command, error) {
			return cleo.Infer("replay", "decode a captured trace offline", c.replay), nil
		},
	}

	return nil
}

// applyGlobal handles the options every command shares.
func (c *CLI) applyGlobal(g Global) {
	if g.Debug {
		c.log.SetLevel(hclog.Trace)
	}
}

// serveMetrics blocks serving the metrics endpoint; run it in a
// goroutine. A bad address must not fail silently.
func (c *CLI) serveMetrics(addr string) {
	if err := http.ListenAndServe(addr, nil); err != nil {
		c.log.Error("error serving metrics", "error", err, "addr", addr)
	}
}

// openDevice builds a scsiq.Device from the global options, returning a
// cleanup func to run when the command is done with it.
func (c *CLI) openDevice(g Global) (*scsiq.Device, func(), error) {
	c.applyGlobal(g)

	var cfg scsiq.Config

	if g.Config != "" {
		loaded, err := scsiq.LoadConfig(g.Config)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "loading configuration")
		}

		cfg = *loaded
	}

	path := g.Device
	if path == "" {
		path = cfg.Device
	}

	if path == "" {
		return nil, nil, errors.New("no device given (use -d or the config file)")
	}

	if cfg.MetricsAddr != "" {
		http.Handle("/metrics", promhttp.Handler())
		go c.serveMetrics(cfg.MetricsAddr)
	}

	tr, err := sgio.Open(c.log, path)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() { tr.Close() }

	opts := []scsiq.Option{scsiq.WithLogger(c.log)}

	if cfg.TracePath != "" {
		tracer, err := scsiq.NewTracer(c.log, cfg.TracePath)
		if err != nil {
			tr.Close()
			return nil, nil, err
		}

		opts = append(opts, scsiq.WithTracer(tracer))
		cleanup = func() {
			tr.Close()

			if err := tracer.Close(); err != nil {
				c.log.Error("error closing trace", "error", err)
			}
		}
	}

	return scsiq.NewDevice(tr, opts...), cleanup, nil
}

func (c *CLI) streams(ctx context.Context, opts struct {
	Global
	Start int `short:"s" long:"start" description:"first stream identifier to report"`
	Count int `short:"n" long:"count" description:"how many descriptors to request"`
}) error {
	dev, cleanup, err := c.openDevice(opts.Global)
	if err != nil {
		return err
	}

	defer cleanup()

	if opts.Count == 0 {
		opts.Count = 64
	}

	st, err := dev.GetStreamStatus().
		StartingStreamIdentifier(uint16(opts.Start)).
		DescriptorLength(uint32(opts.Count)).
		Issue()
	if err != nil {
		return err
	}

	fmt.Printf("open streams: %d (reported %d descriptors)\n",
		st.NumberOfOpenStreams, st.TotalDescriptorLength)

	tr := tabwriter.NewWriter(os.Stdout, 2, 2, 1, ' ', 0)
	defer tr.Flush()

	fmt.Fprintf(tr, "STREAM\n")

	for _, id := range st.StreamIdentifiers {
		fmt.Fprintf(tr, "%d\n", id)
	}

	return nil
}

func (c *CLI) inquiry(ctx context.Context, opts struct {
	Global
}) error {
	dev, cleanup, err := c.openDevice(opts.Global)
	if err != nil {
		return err
	}

	defer cleanup()

	inq, err := dev.Inquiry().Issue()
	if err != nil {
		return err
	}

	fmt.Printf("%s %s (rev %s), device type %#x\n",
		inq.Vendor, inq.Product, inq.Revision, inq.PeripheralDeviceType)

	return nil
}

func (c *CLI) capacity(ctx context.Context, opts struct {
	Global
}) error {
	dev, cleanup, err := c.openDevice(opts.Global)
	if err != nil {
		return err
	}

	defer cleanup()

	capacity, err := dev.ReadCapacity16().Issue()
	if err != nil {
		return err
	}

	fmt.Printf("%s (%d blocks of %d bytes)\n",
		niceSize(capacity.SizeBytes()), capacity.LastLBA+1, capacity.BlockLength)

	return nil
}

func (c *CLI) luns(ctx context.Context, opts struct {
	Global
	Max int `short:"n" long:"max" description:"how many entries to request"`
}) error {
	dev, cleanup, err := c.openDevice(opts.Global)
	if err != nil {
		return err
	}

	defer cleanup()

	if opts.Max == 0 {
		opts.Max = 16
	}

	list, err := dev.ReportLuns().MaxEntries(uint32(opts.Max)).Issue()
	if err != nil {
		return err
	}

	tr := tabwriter.NewWriter(os.Stdout, 2, 2, 1, ' ', 0)
	defer tr.Flush()

	fmt.Fprintf(tr, "LUN\n")

	for _, lun := range list.Luns {
		fmt.Fprintf(tr, "%#016x\n", lun)
	}

	return nil
}

func (c *CLI) ready(ctx context.Context, opts struct {
	Global
}) error {
	dev, cleanup, err := c.openDevice(opts.Global)
	if err != nil {
		return err
	}

	defer cleanup()

	err = dev.TestUnitReady().Issue()

	var se *scsiq.SenseError

	switch {
	case err == nil:
		fmt.Println(color.GreenString("READY"))
	case errors.As(err, &se):
		fmt.Printf("%s: %s\n", color.RedString("NOT READY"), se)
	default:
		return err
	}

	return nil
}

func (c *CLI) replay(ctx context.Context, opts struct {
	Global
	Trace string `short:"t" long:"trace" description:"capture file to replay" required:"true"`
	Count int    `short:"n" long:"count" description:"how many descriptors to request"`
}) error {
	c.applyGlobal(opts.Global)

	rt, err := scsiq.OpenReplay(c.log, opts.Trace)
	if err != nil {
		return err
	}

	if opts.Count == 0 {
		opts.Count = 64
	}

	dev := scsiq.NewDevice(rt, scsiq.WithLogger(c.log))

	for rt.Remaining() > 0 {
		st, err := dev.GetStreamStatus().
			DescriptorLength(uint32(opts.Count)).
			Issue()
		if err != nil {
			c.log.Error("error decoding recorded transaction", "error", err)
			continue
		}

		fmt.Printf("open streams: %d, identifiers: %v\n",
			st.NumberOfOpenStreams, st.StreamIdentifiers)
	}

	return nil
}

const (
	kilo = 1000
	mega = kilo * 1000
	giga = mega * 1000
	tera = giga * 1000
)

func niceSize(sz uint64) string {
	cases := []struct {
		f float64
		s string
	}{
		{tera, "TB"},
		{giga, "GB"},
		{mega, "MB"},
		{kilo, "KB"},
	}

	x := float64(sz)

	for _, c := range cases {
		sub := x / c.f
		if sub >= 1.0 {
			return fmt.Sprintf("%.3f%s", sub, c.s)
		}
	}

	return fmt.Sprintf("%db", sz)
}
