// File: core/frame/producer.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// ProducerPool runs one frame producer per usable CPU. Producers never skip or
// coalesce frames; a full queue parks them until a delivery loop pops.

package frame

import (
	"context"
	"errors"
	"io"
	"sync/atomic"

	"github.com/armon/go-metrics"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/momentics/hioload-framebench/affinity"
	"github.com/momentics/hioload-framebench/core/concurrency"
)

// ProducerConfig describes the frames to manufacture.
type ProducerConfig struct {
	Width     int  // frame width in bytes
	Height    int  // frame height in rows
	Producers int  // producer goroutines (0 = available parallelism)
	Pin       bool // pin producer i to the i-th usable CPU
}

// Size returns the frame length in bytes.
func (c ProducerConfig) Size() int {
	return c.Width * c.Height
}

// ProducerOption customizes a ProducerPool.
type ProducerOption func(*ProducerPool)

// WithLogger sets the pool logger.
func WithLogger(l hclog.Logger) ProducerOption {
	return func(p *ProducerPool) {
		if l != nil {
			p.logger = l
		}
	}
}

// ProducerPool fills a Queue with random frames until the queue closes.
type ProducerPool struct {
	cfg    ProducerConfig
	queue  *Queue
	logger hclog.Logger

	produced atomic.Uint64
	running  atomic.Int32
}

// NewProducerPool binds a pool to its output queue.
func NewProducerPool(cfg ProducerConfig, q *Queue, opts ...ProducerOption) *ProducerPool {
	p := &ProducerPool{
		cfg:    cfg,
		queue:  q,
		logger: hclog.NewNullLogger(),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Workers returns the number of producers Run starts.
func (p *ProducerPool) Workers() int {
	if p.cfg.Producers > 0 {
		return p.cfg.Producers
	}
	return affinity.AvailableParallelism()
}

// Produced returns the number of frames pushed so far.
func (p *ProducerPool) Produced() uint64 {
	return p.produced.Load()
}

// Running returns the number of live producer goroutines.
func (p *ProducerPool) Running() int {
	return int(p.running.Load())
}

// Blocked returns how many producers are parked on a full queue.
func (p *ProducerPool) Blocked() int {
	return p.queue.BlockedPushers()
}

// Run starts the producers and blocks until all of them exit. A closed queue
// or a cancelled ctx is a normal stop and yields nil. Producers parked on a
// full queue only notice ctx after the queue is closed.
func (p *ProducerPool) Run(ctx context.Context) error {
	n := p.Workers()
	size := p.cfg.Size()
	p.logger.Info("starting producers", "producers", n, "frame_bytes", size, "queue_capacity", p.queue.Cap())

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		rng, err := NewGenerator()
		if err != nil {
			p.queue.Close()
			_ = g.Wait()
			return err
		}
		id := i
		g.Go(func() error {
			return p.produce(ctx, id, size, rng)
		})
	}

	err := g.Wait()
	if errors.Is(err, concurrency.ErrQueueClosed) || errors.Is(err, context.Canceled) {
		err = nil
	}
	p.logger.Debug("producers stopped", "produced", p.Produced(), "error", err)
	return err
}

func (p *ProducerPool) produce(ctx context.Context, id, size int, rng io.Reader) error {
	p.running.Add(1)
	defer p.running.Add(-1)

	logger := p.logger.With("producer", id)
	if p.cfg.Pin {
		if cpu, err := affinity.PinCurrent(id); err != nil {
			logger.Warn("cpu pinning unavailable", "error", err)
		} else {
			logger.Debug("pinned", "cpu", cpu)
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		f, err := Generate(rng, size)
		if err != nil {
			return err
		}
		if err := p.queue.Push(f); err != nil {
			return err
		}
		p.produced.Add(1)
		metrics.IncrCounter([]string{"producer", "frames"}, 1)
	}
}
