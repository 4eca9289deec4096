// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake implementations for testing and development.
// Provides predictable, controllable behavior for the transport interfaces.

package fake

import (
	"io"
	"net"
	"sync"

	"github.com/momentics/hioload-framebench/api"
)

// Addr is a fixed net.Addr for fake peers.
type Addr string

func (a Addr) Network() string { return "fake" }
func (a Addr) String() string  { return string(a) }

// Conn is a fake implementation of api.Conn. Writes are recorded; reads
// come from data queued with AddRecvData.
type Conn struct {
	mu         sync.Mutex
	cond       *sync.Cond
	addr       Addr
	sent       [][]byte
	recv       []byte
	closed     bool
	failAfter  int // successful writes before sendError applies (-1 = never)
	sendError  error
	shortWrite bool
	closeCount int
	written    chan struct{}
}

// NewConn creates a fake connection with the given peer name.
func NewConn(peer string) *Conn {
	c := &Conn{
		addr:      Addr(peer),
		failAfter: -1,
		written:   make(chan struct{}, 1024),
	}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// Write implements io.Writer.
func (c *Conn) Write(buf []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return 0, api.ErrTransportClosed
	}
	if c.failAfter == 0 {
		if c.shortWrite {
			return len(buf) / 2, nil
		}
		return 0, c.sendError
	}
	if c.failAfter > 0 {
		c.failAfter--
	}

	bufCopy := make([]byte, len(buf))
	copy(bufCopy, buf)
	c.sent = append(c.sent, bufCopy)
	select {
	case c.written <- struct{}{}:
	default:
	}
	return len(buf), nil
}

// Read implements io.Reader. It blocks until data is queued or the
// connection is closed.
func (c *Conn) Read(buf []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for len(c.recv) == 0 && !c.closed {
		c.cond.Wait()
	}
	if len(c.recv) == 0 {
		return 0, io.EOF
	}
	n := copy(buf, c.recv)
	c.recv = c.recv[n:]
	return n, nil
}

// Close implements api.Conn.Close.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeCount++
	c.closed = true
	c.cond.Broadcast()
	return nil
}

// RemoteAddr implements api.Conn.RemoteAddr.
func (c *Conn) RemoteAddr() net.Addr {
	return c.addr
}

// FailWritesAfter makes every write after the first n fail with err.
func (c *Conn) FailWritesAfter(n int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failAfter = n
	c.sendError = err
}

// ShortWritesAfter makes every write after the first n accept only half
// of the buffer without reporting an error.
func (c *Conn) ShortWritesAfter(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failAfter = n
	c.shortWrite = true
}

// AddRecvData queues data for Read.
func (c *Conn) AddRecvData(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recv = append(c.recv, data...)
	c.cond.Broadcast()
}

// GetSentData returns all buffers written so far.
func (c *Conn) GetSentData() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	sent := make([][]byte, len(c.sent))
	copy(sent, c.sent)
	return sent
}

// Written signals once per successful write, best effort.
func (c *Conn) Written() <-chan struct{} {
	return c.written
}

// Closed reports whether Close was called.
func (c *Conn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Listener is a fake api.Listener fed through Inject.
type Listener struct {
	conns     chan api.Conn
	done      chan struct{}
	closeOnce sync.Once
	acceptErr error
}

// NewListener creates an empty fake listener.
func NewListener() *Listener {
	return &Listener{
		conns: make(chan api.Conn, 16),
		done:  make(chan struct{}),
	}
}

// Inject hands c to the next Accept.
func (l *Listener) Inject(c api.Conn) {
	l.conns <- c
}

// FailAccept makes Accept return err once pending conns are drained.
func (l *Listener) FailAccept(err error) {
	l.acceptErr = err
	l.closeOnce.Do(func() { close(l.done) })
}

// Accept implements api.Listener.
func (l *Listener) Accept() (api.Conn, error) {
	select {
	case c := <-l.conns:
		return c, nil
	case <-l.done:
		if l.acceptErr != nil {
			return nil, l.acceptErr
		}
		return nil, api.ErrTransportClosed
	}
}

// Close implements api.Listener.
func (l *Listener) Close() error {
	l.closeOnce.Do(func() { close(l.done) })
	return nil
}

// Addr implements api.Listener.
func (l *Listener) Addr() net.Addr {
	return Addr("fake-listener")
}
