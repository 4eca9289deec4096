// File: cmd/framebench/main.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// framebench streams synthetic frames over a byte-stream transport and
// measures how regularly they arrive.

package main

import (
	"os"

	"github.com/mitchellh/cli"

	"github.com/momentics/hioload-framebench/command"
)

func main() {
	ui := &cli.BasicUi{Writer: os.Stdout, ErrorWriter: os.Stderr}
	os.Exit(command.Run(os.Args[1:], ui, os.Stderr))
}
