//go:build !linux
// +build !linux

// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

package transport

import "github.com/momentics/hioload-framebench/api"

func listenVsock(cid, port uint32) (api.Listener, error) {
	return nil, api.ErrNotSupported
}

func dialVsock(cid, port uint32) (api.Conn, error) {
	return nil, api.ErrNotSupported
}
