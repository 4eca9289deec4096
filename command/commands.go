// File: command/commands.go
// Package command implements the framebench command line: the server and
// client roles and the service directory helpers.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/mitchellh/cli"
)

const appName = "framebench"

// Commands returns the command table.
func Commands(ui cli.Ui) map[string]cli.CommandFactory {
	return map[string]cli.CommandFactory{
		"server": func() (cli.Command, error) { return NewServer(ui), nil },
		"client": func() (cli.Command, error) { return NewClient(ui), nil },

		"service":          func() (cli.Command, error) { return NewService(), nil },
		"service register": func() (cli.Command, error) { return NewServiceRegister(ui), nil },
		"service list":     func() (cli.Command, error) { return NewServiceList(ui), nil },
		"service delete":   func() (cli.Command, error) { return NewServiceDelete(ui), nil },
		"service rename":   func() (cli.Command, error) { return NewServiceRename(ui), nil },
		"service id":       func() (cli.Command, error) { return NewServiceID(ui), nil },
	}
}

// Run dispatches args and returns the process exit code. An unknown
// command prints help to helpW and fails.
func Run(args []string, ui cli.Ui, helpW io.Writer) int {
	c := &cli.CLI{
		Name:       appName,
		Args:       args,
		Commands:   Commands(ui),
		HelpFunc:   cli.BasicHelpFunc(appName),
		HelpWriter: helpW,
	}
	code, err := c.Run()
	if err != nil {
		ui.Error(fmt.Sprintf("Error executing CLI: %v", err))
		return 1
	}
	return code
}

// shutdownContext is cancelled on SIGINT or SIGTERM.
func shutdownContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// frameArgs parses the shared <endpoint> <width> <height> <fps> positionals.
func frameArgs(args []string) (endpoint string, width, height int, fps float64, err error) {
	if len(args) != 4 {
		return "", 0, 0, 0, fmt.Errorf("expected 4 arguments <endpoint> <width> <height> <fps>, got %d", len(args))
	}
	endpoint = args[0]
	if width, err = strconv.Atoi(args[1]); err != nil {
		return "", 0, 0, 0, fmt.Errorf("invalid width %q: %w", args[1], err)
	}
	if height, err = strconv.Atoi(args[2]); err != nil {
		return "", 0, 0, 0, fmt.Errorf("invalid height %q: %w", args[2], err)
	}
	if fps, err = strconv.ParseFloat(args[3], 64); err != nil {
		return "", 0, 0, 0, fmt.Errorf("invalid fps %q: %w", args[3], err)
	}
	return endpoint, width, height, fps, nil
}
