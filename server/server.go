// File: server/server.go
// Package server implements the frame streaming server: a producer pool
// filling a shared bounded queue, an accept loop, and one paced delivery
// goroutine per connection.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/armon/go-metrics"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/momentics/hioload-framebench/api"
	"github.com/momentics/hioload-framebench/control"
	"github.com/momentics/hioload-framebench/core/frame"
	"github.com/momentics/hioload-framebench/transport"
)

var ErrAlreadyRunning = errors.New("server already running")

// Server streams frames to every accepted connection.
type Server struct {
	cfg      *Config
	logger   hclog.Logger
	probes   *control.DebugProbes
	listener api.Listener

	queue *frame.Queue
	pool  *frame.ProducerPool

	running atomic.Bool
	ready   chan struct{}
	addr    net.Addr

	connMu sync.Mutex
	conns  map[api.Conn]struct{}

	active      atomic.Int64
	bytesDone   atomic.Uint64 // written to connections already untracked
	accepted    atomic.Uint64
	delivered   atomic.Uint64
	disconnects atomic.Uint64
}

// NewServer validates cfg and builds the queue and producer pool. Nothing
// is bound until Run.
func NewServer(cfg *Config, opts ...ServerOption) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	s := &Server{
		cfg:    cfg,
		logger: hclog.NewNullLogger(),
		ready:  make(chan struct{}),
		conns:  make(map[api.Conn]struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	if s.listener != nil && cfg.Endpoint == "" {
		cfg.Endpoint = s.listener.Addr().String()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("server: invalid config: %w", err)
	}

	q, err := frame.NewQueue(cfg.FPS, cfg.QueueCapacity)
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	s.queue = q
	s.pool = frame.NewProducerPool(frame.ProducerConfig{
		Width:     cfg.Width,
		Height:    cfg.Height,
		Producers: cfg.Producers,
		Pin:       cfg.PinProducers,
	}, q, frame.WithLogger(s.logger.Named("producer")))

	if s.probes != nil {
		s.registerProbes(s.probes)
	}
	return s, nil
}

func (s *Server) registerProbes(dp *control.DebugProbes) {
	dp.RegisterProbe("queue.depth", func() any { return s.queue.Len() })
	dp.RegisterProbe("producers.blocked", func() any { return s.pool.Blocked() })
	dp.RegisterProbe("producers.running", func() any { return s.pool.Running() })
	dp.RegisterProbe("frames.produced", func() any { return s.pool.Produced() })
	dp.RegisterProbe("frames.delivered", func() any { return s.Delivered() })
	dp.RegisterProbe("connections.active", func() any { return s.ActiveConnections() })
	dp.RegisterProbe("connections.dropped", func() any { return s.Disconnects() })
	dp.RegisterProbe("bytes.written", func() any { return s.BytesWritten() })
}

// Run binds the endpoint, starts the producers and serves until ctx is
// cancelled or Accept fails. Setup and accept failures are returned;
// cancellation is a clean stop and returns nil once every goroutine the
// server started has exited.
func (s *Server) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	ln := s.listener
	if ln == nil {
		ep, err := transport.ParseEndpoint(s.cfg.Endpoint)
		if err == nil {
			ln, err = transport.Listen(ep)
		}
		if err != nil {
			s.running.Store(false)
			return err
		}
	}
	s.addr = ln.Addr()
	close(s.ready)

	logger := s.logger.Named("server")
	logger.Info("listening",
		"endpoint", s.addr.String(),
		"frame_bytes", s.cfg.FrameSize(),
		"fps", s.cfg.FPS,
		"queue_capacity", s.queue.Cap())

	var deliveries sync.WaitGroup
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.pool.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		ln.Close()
		s.queue.Close()
		s.closeConns()
		return nil
	})
	g.Go(func() error {
		return s.acceptLoop(gctx, ln, &deliveries, logger)
	})

	err := g.Wait()
	deliveries.Wait()
	logger.Info("stopped",
		"accepted", s.accepted.Load(),
		"delivered", s.Delivered(),
		"dropped", s.Disconnects(),
		"error", err)
	return err
}

// acceptLoop hands each connection to its own delivery goroutine and goes
// straight back to Accept.
func (s *Server) acceptLoop(ctx context.Context, ln api.Listener, wg *sync.WaitGroup, logger hclog.Logger) error {
	for {
		c, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("server: accept: %w", err)
		}
		if !s.trackConn(c) {
			c.Close()
			return nil
		}
		s.accepted.Add(1)
		logger.Info("new client", "peer", peerName(c))

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer s.untrackConn(c)
			s.deliver(c)
		}()
	}
}

// trackConn records c so shutdown can unblock its writes. It refuses new
// connections once shutdown has started.
func (s *Server) trackConn(c api.Conn) bool {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	if s.conns == nil {
		return false
	}
	s.conns[c] = struct{}{}
	n := s.active.Add(1)
	metrics.SetGauge([]string{"connections", "active"}, float32(n))
	return true
}

func (s *Server) untrackConn(c api.Conn) {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	if bc, ok := c.(byteCounter); ok {
		s.bytesDone.Add(bc.BytesWritten())
	}
	if s.conns != nil {
		delete(s.conns, c)
	}
	n := s.active.Add(-1)
	metrics.SetGauge([]string{"connections", "active"}, float32(n))
}

func (s *Server) closeConns() {
	s.connMu.Lock()
	conns := s.conns
	s.conns = nil
	s.connMu.Unlock()
	for c := range conns {
		c.Close()
	}
}

// Ready is closed once the listener is bound.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the bound address, or nil before Ready.
func (s *Server) Addr() net.Addr {
	select {
	case <-s.ready:
		return s.addr
	default:
		return nil
	}
}

// Queue exposes the shared frame queue.
func (s *Server) Queue() *frame.Queue {
	return s.queue
}

// Producers exposes the producer pool.
func (s *Server) Producers() *frame.ProducerPool {
	return s.pool
}

// ActiveConnections returns the number of connections being served.
func (s *Server) ActiveConnections() int64 {
	return s.active.Load()
}

// Delivered returns the total frames written across all connections.
func (s *Server) Delivered() uint64 {
	return s.delivered.Load()
}

// byteCounter is implemented by transport.NetConn.
type byteCounter interface {
	BytesWritten() uint64
}

// BytesWritten returns the bytes accepted by connection sockets so far.
// Connections without counters are not included.
func (s *Server) BytesWritten() uint64 {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	total := s.bytesDone.Load()
	for c := range s.conns {
		if bc, ok := c.(byteCounter); ok {
			total += bc.BytesWritten()
		}
	}
	return total
}

// Disconnects returns how many connections ended on a write failure.
func (s *Server) Disconnects() uint64 {
	return s.disconnects.Load()
}

func peerName(c api.Conn) string {
	if a := c.RemoteAddr(); a != nil && a.String() != "" {
		return a.String()
	}
	return "unknown"
}
