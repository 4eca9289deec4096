// File: api/transport.go
// Author: momentics <momentics@gmail.com>
//
// Defines the byte-stream transport abstraction (Conn, Listener) the benchmark
// core runs over. Endpoints are opaque to the core; the transport package maps
// them onto local sockets, TCP or hypervisor sockets.

package api

import (
	"io"
	"net"
)

// Conn is a connected, ordered, reliable, bidirectional byte stream.
type Conn interface {
	// Read reads into a preallocated buffer
	io.Reader

	// Write writes the whole buffer or returns an error
	io.Writer

	// Close shuts down the connection and unblocks pending I/O
	Close() error

	// RemoteAddr identifies the peer for logging
	RemoteAddr() net.Addr
}

// Listener accepts inbound Conns on a bound endpoint.
type Listener interface {
	// Accept blocks until a peer connects
	Accept() (Conn, error)

	// Close stops listening; a blocked Accept returns an error
	Close() error

	// Addr returns the bound local address
	Addr() net.Addr
}
