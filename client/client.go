// File: client/client.go
// Package client implements the receiving side of the benchmark: it reads
// whole frames from one connection and reports the lifetime average gap
// between consecutive frames.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package client

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/armon/go-metrics"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/momentics/hioload-framebench/api"
	"github.com/momentics/hioload-framebench/core/concurrency"
	"github.com/momentics/hioload-framebench/core/frame"
	"github.com/momentics/hioload-framebench/transport"
)

// Config holds client-side configuration.
type Config struct {
	Endpoint       string
	Width          int
	Height         int
	FPS            float64 // expected server rate; informational
	ReportInterval time.Duration
}

// DefaultConfig returns a one-second reporting client without an endpoint.
func DefaultConfig() *Config {
	return &Config{
		Width:          64,
		Height:         64,
		FPS:            30,
		ReportInterval: time.Second,
	}
}

// FrameSize returns the frame length in bytes.
func (c *Config) FrameSize() int {
	return c.Width * c.Height
}

// Validate rejects unusable configurations.
func (c *Config) Validate() error {
	var errs []error
	if c.Endpoint == "" {
		errs = append(errs, errors.New("endpoint is required"))
	}
	if _, err := frame.CheckSize(c.Width, c.Height); err != nil {
		errs = append(errs, err)
	}
	if _, err := concurrency.NewRateScheduler(c.FPS); err != nil {
		errs = append(errs, fmt.Errorf("fps %v: %w", c.FPS, err))
	}
	if c.ReportInterval <= 0 {
		errs = append(errs, fmt.Errorf("report interval must be positive, got %s", c.ReportInterval))
	}
	return errors.Join(errs...)
}

// Report is one periodic reading of the monitor.
type Report struct {
	Average time.Duration
	OK      bool // false until the first frame arrived
	Frames  uint64
}

// String renders the report line printed by the client.
func (r Report) String() string {
	if !r.OK {
		return "average: none"
	}
	return "average: " + r.Average.String()
}

// Monitor measures frame inter-arrival time on one connection.
type Monitor struct {
	cfg       *Config
	conn      api.Conn
	connected time.Time
	avg       RunningAverage
	frames    atomic.Uint64
	logger    hclog.Logger
	report    func(Report)
}

// Dial connects to cfg.Endpoint. Connection failure is a setup failure.
func Dial(cfg *Config, opts ...MonitorOption) (*Monitor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("client: invalid config: %w", err)
	}
	ep, err := transport.ParseEndpoint(cfg.Endpoint)
	if err != nil {
		return nil, err
	}
	conn, err := transport.Dial(ep)
	if err != nil {
		return nil, err
	}
	return NewMonitor(conn, cfg, opts...)
}

// NewMonitor wraps an established connection. The first measured interval
// starts now.
func NewMonitor(conn api.Conn, cfg *Config, opts ...MonitorOption) (*Monitor, error) {
	if _, err := frame.CheckSize(cfg.Width, cfg.Height); err != nil {
		conn.Close()
		return nil, fmt.Errorf("client: invalid config: %w", err)
	}
	if cfg.ReportInterval <= 0 {
		conn.Close()
		return nil, fmt.Errorf("client: invalid config: report interval %s", cfg.ReportInterval)
	}
	m := &Monitor{
		cfg:       cfg,
		conn:      conn,
		connected: time.Now(),
		logger:    hclog.NewNullLogger(),
		report: func(r Report) {
			fmt.Fprintln(os.Stdout, r.String())
		},
	}
	for _, o := range opts {
		o(m)
	}
	m.logger.Info("connected", "peer", conn.RemoteAddr(), "frame_bytes", cfg.FrameSize())
	return m, nil
}

// Run reads frames and reports until ctx is cancelled (nil) or a read
// fails (the error). The connection is closed on return.
func (m *Monitor) Run(ctx context.Context) error {
	defer m.conn.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gctx.Done()
		m.conn.Close()
		return nil
	})
	g.Go(func() error {
		err := m.readLoop()
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("client: read: %w", err)
	})
	g.Go(func() error {
		m.reportLoop(gctx)
		return nil
	})

	err := g.Wait()
	m.logger.Debug("monitor stopped", "frames", m.Frames(), "error", err)
	return err
}

func (m *Monitor) readLoop() error {
	buf := make([]byte, m.cfg.FrameSize())
	last := m.connected
	for {
		if err := transport.ReadFull(m.conn, buf); err != nil {
			return err
		}
		now := time.Now()
		m.avg.Update(now.Sub(last))
		metrics.MeasureSince([]string{"client", "frame_interval"}, last)
		last = now
		m.frames.Add(1)
	}
}

func (m *Monitor) reportLoop(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.ReportInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.report(m.Snapshot())
		}
	}
}

// Snapshot returns the current reading.
func (m *Monitor) Snapshot() Report {
	avg, ok := m.avg.Get()
	return Report{Average: avg, OK: ok, Frames: m.Frames()}
}

// Average returns the lifetime average inter-frame interval.
func (m *Monitor) Average() (time.Duration, bool) {
	return m.avg.Get()
}

// BytesRead returns the bytes received on the connection, or 0 when the
// connection does not count them.
func (m *Monitor) BytesRead() uint64 {
	if bc, ok := m.conn.(interface{ BytesRead() uint64 }); ok {
		return bc.BytesRead()
	}
	return 0
}

// Frames returns the number of complete frames received.
func (m *Monitor) Frames() uint64 {
	return m.frames.Load()
}
