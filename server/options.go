// File: server/options.go
// Package server defines functional options for the Server.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"github.com/hashicorp/go-hclog"

	"github.com/momentics/hioload-framebench/api"
	"github.com/momentics/hioload-framebench/control"
)

// ServerOption customizes server initialization.
type ServerOption func(*Server)

// WithLogger sets the root logger; the server derives named sub-loggers.
func WithLogger(l hclog.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithProbes registers the server's runtime probes on dp.
func WithProbes(dp *control.DebugProbes) ServerOption {
	return func(s *Server) {
		s.probes = dp
	}
}

// WithListener serves on an already bound listener instead of
// Config.Endpoint. Run takes ownership and closes it.
func WithListener(ln api.Listener) ServerOption {
	return func(s *Server) {
		s.listener = ln
	}
}
