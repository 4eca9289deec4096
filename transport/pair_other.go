//go:build !linux
// +build !linux

// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

package transport

import (
	"net"

	"github.com/momentics/hioload-framebench/api"
)

// Pair returns two connected in-memory streams.
func Pair() (api.Conn, api.Conn, error) {
	a, b := net.Pipe()
	return NewNetConn(a), NewNetConn(b), nil
}
