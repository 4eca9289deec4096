//go:build linux
// +build linux

// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

package transport

import (
	"fmt"
	"net"
	"os"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-framebench/api"
)

// Pair returns two connected local stream sockets (socketpair(2)).
func Pair() (api.Conn, api.Conn, error) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, nil, os.NewSyscallError("socketpair", err)
	}
	a, err := fileConn(fds[0], "pair-0")
	if err != nil {
		unix.Close(fds[1])
		return nil, nil, err
	}
	b, err := fileConn(fds[1], "pair-1")
	if err != nil {
		a.Close()
		return nil, nil, err
	}
	return NewNetConn(a), NewNetConn(b), nil
}

// fileConn hands fd to the net package; net.FileConn dups it, so the
// original is closed here.
func fileConn(fd int, name string) (net.Conn, error) {
	f := os.NewFile(uintptr(fd), name)
	defer f.Close()
	c, err := net.FileConn(f)
	if err != nil {
		return nil, fmt.Errorf("transport: %s: %w", name, err)
	}
	return c, nil
}
