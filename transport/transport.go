// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

package transport

import (
	"fmt"
	"io"
	"net"

	"github.com/momentics/hioload-framebench/api"
)

// Listen binds ep and returns a listener. Failure here is a setup failure.
func Listen(ep Endpoint) (api.Listener, error) {
	switch ep.Network {
	case Unix, TCP:
		ln, err := net.Listen(string(ep.Network), ep.Address)
		if err != nil {
			return nil, fmt.Errorf("transport: listen %s: %w", ep, err)
		}
		return &netListener{ln: ln}, nil
	case Vsock:
		ln, err := listenVsock(ep.CID, ep.Port)
		if err != nil {
			return nil, fmt.Errorf("transport: listen %s: %w", ep, err)
		}
		return ln, nil
	default:
		return nil, fmt.Errorf("%w: network %q", api.ErrInvalidEndpoint, ep.Network)
	}
}

// Dial connects to ep.
func Dial(ep Endpoint) (api.Conn, error) {
	switch ep.Network {
	case Unix, TCP:
		c, err := net.Dial(string(ep.Network), ep.Address)
		if err != nil {
			return nil, fmt.Errorf("transport: dial %s: %w", ep, err)
		}
		return NewNetConn(c), nil
	case Vsock:
		c, err := dialVsock(ep.CID, ep.Port)
		if err != nil {
			return nil, fmt.Errorf("transport: dial %s: %w", ep, err)
		}
		return NewNetConn(c), nil
	default:
		return nil, fmt.Errorf("%w: network %q", api.ErrInvalidEndpoint, ep.Network)
	}
}

// WriteFull writes buf as one unit. Anything less than the whole buffer is a
// failed write.
func WriteFull(w io.Writer, buf []byte) error {
	n, err := w.Write(buf)
	if err != nil {
		return err
	}
	if n != len(buf) {
		return io.ErrShortWrite
	}
	return nil
}

// ReadFull fills buf or fails; a short read surfaces as io.ErrUnexpectedEOF.
func ReadFull(r io.Reader, buf []byte) error {
	_, err := io.ReadFull(r, buf)
	return err
}
