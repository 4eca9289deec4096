// File: client/options.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package client

import (
	"fmt"
	"io"

	"github.com/hashicorp/go-hclog"
)

// MonitorOption customizes a Monitor.
type MonitorOption func(*Monitor)

// WithLogger sets the monitor logger.
func WithLogger(l hclog.Logger) MonitorOption {
	return func(m *Monitor) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithReporter replaces the report sink. The default prints each report
// to stdout.
func WithReporter(fn func(Report)) MonitorOption {
	return func(m *Monitor) {
		if fn != nil {
			m.report = fn
		}
	}
}

// WithOutput prints reports to w, one line each.
func WithOutput(w io.Writer) MonitorOption {
	return WithReporter(func(r Report) {
		fmt.Fprintln(w, r.String())
	})
}
