// File: command/client.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package command

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/mitchellh/cli"

	"github.com/momentics/hioload-framebench/client"
	"github.com/momentics/hioload-framebench/control"
)

// NewClient returns the "client" command.
func NewClient(ui cli.Ui) *clientCmd {
	c := &clientCmd{UI: ui, baseContext: shutdownContext}
	c.init()
	return c
}

type clientCmd struct {
	UI    cli.Ui
	flags *flag.FlagSet
	help  string

	common         commonFlags
	flagReportTime time.Duration

	baseContext func() (context.Context, context.CancelFunc)
}

func (c *clientCmd) init() {
	c.flags = flag.NewFlagSet("", flag.ContinueOnError)
	c.common.register(c.flags)
	c.flags.DurationVar(&c.flagReportTime, "report-interval", time.Second,
		"How often to print the running average.")
	c.help = usage(clientHelp, c.flags)
}

func (c *clientCmd) Run(args []string) int {
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

	cfg := client.DefaultConfig()
	cfg.Endpoint = endpoint
	cfg.Width, cfg.Height, cfg.FPS = width, height, fps
	cfg.ReportInterval = file.ReportInterval
	if set["report-interval"] || cfg.ReportInterval == 0 {
		cfg.ReportInterval = c.flagReportTime
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

	mon, err := client.Dial(cfg,
		client.WithLogger(logger.Named("client")),
		client.WithReporter(func(r client.Report) { c.UI.Output(r.String()) }))
	if err != nil {
		c.UI.Error(fmt.Sprintf("Error connecting: %s", err))
		return 1
	}

	ctx, cancel := c.baseContext()
	defer cancel()

	probes := control.NewDebugProbes()
	probes.RegisterProbe("frames.received", func() any { return mon.Frames() })
	probes.RegisterProbe("bytes.received", func() any { return mon.BytesRead() })
	go probes.Report(ctx, logger.Named("stats"), file.StatsInterval)

	if err := mon.Run(ctx); err != nil {
		c.UI.Error(fmt.Sprintf("Client failed: %s", err))
		return 1
	}
	return 0
}

func (c *clientCmd) Synopsis() string {
	return clientSynopsis
}

func (c *clientCmd) Help() string {
	return c.help
}

const clientSynopsis = "Receive frames and report the average inter-frame interval"
const clientHelp = `
Usage: framebench client [options] <endpoint> <width> <height> <fps>

  Connects to a framebench server, reads whole frames of width*height bytes
  and prints the lifetime average time between frames once per second.
  The first interval includes connection setup. A read failure ends the
  client with a non-zero exit status.

  Example:

      $ framebench client unix:/tmp/bench.sock 1920 1080 60
      average: 16.71ms
`
