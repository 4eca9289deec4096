// File: config/logging.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/hashicorp/go-hclog"
)

var allowedLogLevels = []string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR"}

// ValidateLogLevel reports whether level names an hclog level.
func ValidateLogLevel(level string) bool {
	if level == "" {
		return true
	}
	for _, l := range allowedLogLevels {
		if strings.EqualFold(l, level) {
			return true
		}
	}
	return false
}

// NewLogger builds the root logger for a command.
func NewLogger(name string, f *File, w io.Writer) (hclog.Logger, error) {
	if !ValidateLogLevel(f.LogLevel) {
		return nil, fmt.Errorf("invalid log level %q, valid levels are %v", f.LogLevel, allowedLogLevels)
	}
	level := hclog.Info
	if f.LogLevel != "" {
		level = hclog.LevelFromString(f.LogLevel)
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Level:      level,
		JSONFormat: f.LogJSON,
		Output:     w,
	}), nil
}
