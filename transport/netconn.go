// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package transport

import (
	"errors"
	"net"
	"sync/atomic"

	"github.com/momentics/hioload-framebench/api"
)

// NetConn decorates an api.Conn with byte counters.
type NetConn struct {
	api.Conn
	read    atomic.Uint64
	written atomic.Uint64
}

// NewNetConn initializes a new NetConn.
func NewNetConn(conn api.Conn) *NetConn {
	return &NetConn{Conn: conn}
}

// Read counts bytes delivered to the caller.
func (n *NetConn) Read(buf []byte) (int, error) {
	c, err := n.Conn.Read(buf)
	n.read.Add(uint64(c))
	return c, err
}

// Write counts bytes accepted by the socket.
func (n *NetConn) Write(buf []byte) (int, error) {
	c, err := n.Conn.Write(buf)
	n.written.Add(uint64(c))
	return c, err
}

// BytesRead returns the total read so far.
func (n *NetConn) BytesRead() uint64 { return n.read.Load() }

// BytesWritten returns the total written so far.
func (n *NetConn) BytesWritten() uint64 { return n.written.Load() }

// netListener adapts net.Listener to api.Listener.
type netListener struct {
	ln net.Listener
}

func (l *netListener) Accept() (api.Conn, error) {
	c, err := l.ln.Accept()
	if err != nil {
		if errors.Is(err, net.ErrClosed) {
			return nil, api.ErrTransportClosed
		}
		return nil, err
	}
	return NewNetConn(c), nil
}

func (l *netListener) Close() error   { return l.ln.Close() }
func (l *netListener) Addr() net.Addr { return l.ln.Addr() }
