//go:build linux
// +build linux

// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// AF_VSOCK sockets on Linux. File descriptors are non-blocking and wrapped in
// *os.File so reads, writes and accepts park on the runtime netpoller and a
// Close from another goroutine unblocks them.

package transport

import (
	"errors"
	"fmt"
	"net"
	"os"
	"sync/atomic"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-framebench/api"
)

type vsockAddr struct {
	cid  uint32
	port uint32
}

func (a vsockAddr) Network() string { return string(Vsock) }
func (a vsockAddr) String() string  { return fmt.Sprintf("%d:%d", a.cid, a.port) }

type vsockListener struct {
	file   *os.File
	addr   vsockAddr
	closed atomic.Bool
}

func listenVsock(cid, port uint32) (api.Listener, error) {
	fd, err := unix.Socket(unix.AF_VSOCK, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, os.NewSyscallError("socket", err)
	}
	if err := unix.Bind(fd, &unix.SockaddrVM{CID: cid, Port: port}); err != nil {
		unix.Close(fd)
		return nil, os.NewSyscallError("bind", err)
	}
	if err := unix.Listen(fd, unix.SOMAXCONN); err != nil {
		unix.Close(fd)
		return nil, os.NewSyscallError("listen", err)
	}

	addr := vsockAddr{cid: cid, port: port}
	if sa, err := unix.Getsockname(fd); err == nil {
		if vm, ok := sa.(*unix.SockaddrVM); ok {
			addr = vsockAddr{cid: vm.CID, port: vm.Port}
		}
	}
	return &vsockListener{file: os.NewFile(uintptr(fd), "vsock-listener"), addr: addr}, nil
}

func (l *vsockListener) Accept() (api.Conn, error) {
	if l.closed.Load() {
		return nil, api.ErrTransportClosed
	}
	rc, err := l.file.SyscallConn()
	if err != nil {
		return nil, err
	}

	var (
		nfd   int
		sa    unix.Sockaddr
		opErr error
	)
	err = rc.Read(func(fd uintptr) bool {
		nfd, sa, opErr = unix.Accept4(int(fd), unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
		return opErr != unix.EAGAIN
	})
	if err != nil {
		// a concurrent Close surfaces as a poller error, not os.ErrClosed
		if l.closed.Load() || errors.Is(err, os.ErrClosed) {
			return nil, api.ErrTransportClosed
		}
		return nil, err
	}
	if opErr != nil {
		return nil, os.NewSyscallError("accept4", opErr)
	}

	remote := vsockAddr{}
	if vm, ok := sa.(*unix.SockaddrVM); ok {
		remote = vsockAddr{cid: vm.CID, port: vm.Port}
	}
	return &vsockConn{File: os.NewFile(uintptr(nfd), "vsock"), remote: remote}, nil
}

func (l *vsockListener) Close() error {
	l.closed.Store(true)
	return l.file.Close()
}

func (l *vsockListener) Addr() net.Addr { return l.addr }

type vsockConn struct {
	*os.File
	remote vsockAddr
}

func (c *vsockConn) RemoteAddr() net.Addr { return c.remote }

func dialVsock(cid, port uint32) (api.Conn, error) {
	fd, err := unix.Socket(unix.AF_VSOCK, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, os.NewSyscallError("socket", err)
	}
	err = unix.Connect(fd, &unix.SockaddrVM{CID: cid, Port: port})
	if err != nil && err != unix.EINPROGRESS {
		unix.Close(fd)
		return nil, os.NewSyscallError("connect", err)
	}

	f := os.NewFile(uintptr(fd), "vsock")
	if err == unix.EINPROGRESS {
		if err := awaitConnect(f); err != nil {
			f.Close()
			return nil, err
		}
	}
	return &vsockConn{File: f, remote: vsockAddr{cid: cid, port: port}}, nil
}

// awaitConnect waits for writability, then reads SO_ERROR for the outcome.
func awaitConnect(f *os.File) error {
	rc, err := f.SyscallConn()
	if err != nil {
		return err
	}
	var opErr error
	err = rc.Write(func(fd uintptr) bool {
		if _, perr := unix.Getpeername(int(fd)); perr == nil {
			return true
		}
		soErr, gerr := unix.GetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_ERROR)
		switch {
		case gerr != nil:
			opErr = os.NewSyscallError("getsockopt", gerr)
			return true
		case soErr != 0:
			opErr = os.NewSyscallError("connect", unix.Errno(soErr))
			return true
		}
		return false
	})
	if err != nil {
		return err
	}
	return opErr
}
