// File: command/flags.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package command

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/momentics/hioload-framebench/config"
)

// commonFlags are accepted by every long-running command.
type commonFlags struct {
	configPath    string
	logLevel      string
	logJSON       bool
	metricsAddr   string
	statsInterval time.Duration
}

func (f *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.configPath, "config", "",
		"Path to a YAML settings file. Flags override values from the file.")
	fs.StringVar(&f.logLevel, "log-level", "",
		"Log level: trace, debug, info, warn or error.")
	fs.BoolVar(&f.logJSON, "log-json", false,
		"Emit logs as JSON.")
	fs.StringVar(&f.metricsAddr, "metrics-addr", "",
		"Serve Prometheus metrics on this address, for example 127.0.0.1:9102.")
	fs.DurationVar(&f.statsInterval, "stats-interval", 0,
		"Log runtime probes at this interval. Zero disables.")
}

// load reads the settings file and lays explicitly set flags over it.
func (f *commonFlags) load(fs *flag.FlagSet) (*config.File, map[string]bool, error) {
	file, err := config.Load(f.configPath)
	if err != nil {
		return nil, nil, err
	}
	set := setFlags(fs)
	if set["log-level"] {
		file.LogLevel = f.logLevel
	}
	if set["log-json"] {
		file.LogJSON = f.logJSON
	}
	if set["metrics-addr"] {
		file.MetricsAddr = f.metricsAddr
	}
	if set["stats-interval"] {
		file.StatsInterval = f.statsInterval
	}
	return file, set, file.Validate()
}

func setFlags(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	return set
}

// uiLogWriter sends log lines to the UI error stream so they never mix
// with report output.
func uiLogWriter(ui cli.Ui) io.Writer {
	return &cli.UiWriter{Ui: &errorOnlyUi{ui}}
}

type errorOnlyUi struct{ cli.Ui }

func (u *errorOnlyUi) Info(s string) { u.Ui.Error(s) }

func newLogger(name string, file *config.File, ui cli.Ui) (hclog.Logger, error) {
	return config.NewLogger(name, file, uiLogWriter(ui))
}

// usage appends the flag defaults to a command help text.
func usage(txt string, fs *flag.FlagSet) string {
	if fs == nil {
		return strings.TrimSpace(txt)
	}
	var b bytes.Buffer
	b.WriteString(strings.TrimSpace(txt))
	b.WriteString("\n\nOptions:\n")
	fs.VisitAll(func(fl *flag.Flag) {
		fmt.Fprintf(&b, "\n  -%s", fl.Name)
		if name, _ := flag.UnquoteUsage(fl); name != "" {
			fmt.Fprintf(&b, "=<%s>", name)
		}
		if fl.DefValue != "" && fl.DefValue != "false" && fl.DefValue != "0" && fl.DefValue != "0s" {
			fmt.Fprintf(&b, " (default %s)", fl.DefValue)
		}
		_, text := flag.UnquoteUsage(fl)
		fmt.Fprintf(&b, "\n     %s\n", text)
	})
	return strings.TrimRight(b.String(), "\n")
}
