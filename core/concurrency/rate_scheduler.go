// File: core/concurrency/rate_scheduler.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Self-correcting fixed-interval driver. The deadline advances by one period
// per tick regardless of how long the tick took; a missed deadline resets to
// now instead of firing catch-up ticks.

package concurrency

import (
	"math"
	"time"
)

// Action tells the scheduler whether to keep ticking.
type Action int

const (
	Continue Action = iota
	Stop
)

// SchedulerStats summarises one Run.
type SchedulerStats struct {
	Ticks    uint64 // callback invocations, including the one that returned Stop
	Overruns uint64 // ticks whose deadline had already passed
}

// RateScheduler invokes a callback at a target frequency.
type RateScheduler struct {
	period time.Duration

	now   func() time.Time
	sleep func(time.Duration)
}

// NewRateScheduler builds a scheduler ticking frequency times per second.
func NewRateScheduler(frequency float64) (*RateScheduler, error) {
	if frequency <= 0 || math.IsNaN(frequency) || math.IsInf(frequency, 0) {
		return nil, ErrInvalidRate
	}
	period := time.Duration(float64(time.Second) / frequency)
	if period <= 0 {
		return nil, ErrInvalidRate
	}
	return &RateScheduler{
		period: period,
		now:    time.Now,
		sleep:  time.Sleep,
	}, nil
}

// Period returns the interval between deadlines.
func (r *RateScheduler) Period() time.Duration {
	return r.period
}

// Run calls tick until it returns Stop. There is no other way out.
func (r *RateScheduler) Run(tick func() Action) SchedulerStats {
	var stats SchedulerStats
	next := r.now()
	for {
		stats.Ticks++
		if tick() == Stop {
			return stats
		}

		next = next.Add(r.period)
		if wait := next.Sub(r.now()); wait > 0 {
			r.sleep(wait)
		} else {
			stats.Overruns++
			next = r.now()
		}
	}
}

// RunEvery is shorthand for NewRateScheduler(frequency).Run(tick).
func RunEvery(frequency float64, tick func() Action) (SchedulerStats, error) {
	s, err := NewRateScheduler(frequency)
	if err != nil {
		return SchedulerStats{}, err
	}
	return s.Run(tick), nil
}
