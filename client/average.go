// File: client/average.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package client

import (
	"sync"
	"time"
)

// RunningAverage is a lifetime mean of durations. It never decays.
type RunningAverage struct {
	mu    sync.Mutex
	count uint64
	total time.Duration
}

// Update folds d into the average.
func (a *RunningAverage) Update(d time.Duration) {
	a.mu.Lock()
	a.count++
	a.total += d
	a.mu.Unlock()
}

// Get returns total/count. ok is false until the first Update.
func (a *RunningAverage) Get() (avg time.Duration, ok bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.count == 0 {
		return 0, false
	}
	return a.total / time.Duration(a.count), true
}

// Count returns the number of samples.
func (a *RunningAverage) Count() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.count
}
