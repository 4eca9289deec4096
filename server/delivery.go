// File: server/delivery.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Paced delivery: one frame per scheduler tick, whole frame or nothing.

package server

import (
	"errors"

	"github.com/armon/go-metrics"

	"github.com/momentics/hioload-framebench/api"
	"github.com/momentics/hioload-framebench/core/concurrency"
	"github.com/momentics/hioload-framebench/transport"
)

// deliver streams frames to c at the configured rate until a write fails
// or the queue closes. A frame popped before a failed write is lost.
func (s *Server) deliver(c api.Conn) {
	defer c.Close()
	logger := s.logger.Named("delivery").With("conn", peerName(c))

	sched, err := concurrency.NewRateScheduler(s.cfg.FPS)
	if err != nil {
		logger.Error("cannot pace connection", "error", err)
		return
	}

	var sent uint64
	stats := sched.Run(func() concurrency.Action {
		f, err := s.queue.Pop()
		if err != nil {
			return concurrency.Stop
		}
		if err := transport.WriteFull(c, f); err != nil {
			if !errors.Is(err, api.ErrTransportClosed) {
				logger.Info("client disconnected", "error", err, "frames", sent)
			}
			s.disconnects.Add(1)
			metrics.IncrCounter([]string{"delivery", "disconnects"}, 1)
			return concurrency.Stop
		}
		sent++
		s.delivered.Add(1)
		metrics.IncrCounter([]string{"delivery", "frames"}, 1)
		metrics.SetGauge([]string{"queue", "depth"}, float32(s.queue.Len()))
		return concurrency.Continue
	})

	if stats.Overruns > 0 {
		metrics.IncrCounter([]string{"delivery", "overruns"}, float32(stats.Overruns))
	}
	logger.Debug("delivery finished", "frames", sent, "ticks", stats.Ticks, "overruns", stats.Overruns)
}
