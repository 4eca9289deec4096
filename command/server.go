// File: command/server.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package command

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/mitchellh/cli"

	"github.com/momentics/hioload-framebench/control"
	"github.com/momentics/hioload-framebench/server"
)

// NewServer returns the "server" command.
func NewServer(ui cli.Ui) *serverCmd {
	c := &serverCmd{UI: ui, baseContext: shutdownContext}
	c.init()
	return c
}

type serverCmd struct {
	UI    cli.Ui
	flags *flag.FlagSet
	help  string

	common        commonFlags
	flagProducers int
	flagPin       bool
	flagQueueCap  int

	// baseContext supplies the run context; tests replace it.
	baseContext func() (context.Context, context.CancelFunc)
}

func (c *serverCmd) init() {
	c.flags = flag.NewFlagSet("", flag.ContinueOnError)
	c.common.register(c.flags)
	c.flags.IntVar(&c.flagProducers, "producers", 0,
		"Number of frame producers. Zero uses every CPU the process may run on.")
	c.flags.BoolVar(&c.flagPin, "pin-producers", false,
		"Pin each producer to its own CPU.")
	c.flags.IntVar(&c.flagQueueCap, "queue-capacity", 0,
		"Frame queue bound. Zero uses the frame rate rounded to an integer.")
	c.help = usage(serverHelp, c.flags)
}

func (c *serverCmd) Run(args []string) int {
	if err := c.flags.Parse(args); err != nil {
		return 1
	}
	file, set, err := c.common.load(c.flags)
	if err != nil {
		c.UI.Error(fmt.Sprintf("Error loading configuration: %s", err))
		return 1
	}

	endpoint, width, height, fps, err := frameArgs(c.flags.Args())
	if err != nil {
		c.UI.Error(err.Error())
		c.UI.Error("")
		c.UI.Error(c.Help())
		return 1
	}

	cfg := server.DefaultConfig()
	cfg.Endpoint = endpoint
	cfg.Width, cfg.Height, cfg.FPS = width, height, fps
	cfg.Producers = file.Producers
	cfg.PinProducers = file.PinProducers
	cfg.QueueCapacity = file.QueueCapacity
	if set["producers"] {
		cfg.Producers = c.flagProducers
	}
	if set["pin-producers"] {
		cfg.PinProducers = c.flagPin
	}
	if set["queue-capacity"] {
		cfg.QueueCapacity = c.flagQueueCap
	}

	logger, err := newLogger(appName, file, c.UI)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	tel, err := control.InitTelemetry(control.TelemetryConfig{
		MetricsPrefix:           appName,
		PrometheusAddr:          file.MetricsAddr,
		PrometheusRetentionTime: file.PrometheusRetention,
	}, logger.Named("telemetry"))
	if err != nil {
		c.UI.Error(fmt.Sprintf("Error initializing telemetry: %s", err))
		return 1
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		tel.Shutdown(ctx)
	}()

	probes := control.NewDebugProbes()
	control.RegisterPlatformProbes(probes)

	srv, err := server.NewServer(cfg, server.WithLogger(logger), server.WithProbes(probes))
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	ctx, cancel := c.baseContext()
	defer cancel()
	go probes.Report(ctx, logger.Named("stats"), file.StatsInterval)

	if err := srv.Run(ctx); err != nil {
		c.UI.Error(fmt.Sprintf("Server failed: %s", err))
		return 1
	}
	return 0
}

func (c *serverCmd) Synopsis() string {
	return serverSynopsis
}

func (c *serverCmd) Help() string {
	return c.help
}

const serverSynopsis = "Stream synthetic frames to every connected client"
const serverHelp = `
Usage: framebench server [options] <endpoint> <width> <height> <fps>

  Listens on the endpoint and streams random frames of width*height bytes
  to each connected client at fps frames per second. Frames come from a
  shared bounded queue filled by one producer per CPU; each frame reaches
  exactly one client.

  Endpoints:

      unix:/run/framebench.sock
      tcp:127.0.0.1:9000
      vsock:any:5000
      vsock:any:00001388-facb-11e6-bd58-64006a7986d3

  Example:

      $ framebench server unix:/tmp/bench.sock 1920 1080 60
`
