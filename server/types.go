// File: server/types.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"errors"
	"fmt"

	"github.com/momentics/hioload-framebench/core/concurrency"
	"github.com/momentics/hioload-framebench/core/frame"
)

// Config holds all server-side configuration parameters.
type Config struct {
	Endpoint      string  // transport endpoint, see transport.ParseEndpoint
	Width         int     // frame width in bytes
	Height        int     // frame height in rows
	FPS           float64 // target frames per second per connection
	Producers     int     // producer goroutines (0 = usable CPUs)
	PinProducers  bool    // pin each producer to its own CPU
	QueueCapacity int     // frame queue bound (0 = round(FPS))
}

// DefaultConfig returns sensible defaults. Endpoint has no default.
func DefaultConfig() *Config {
	return &Config{
		Width:  64,
		Height: 64,
		FPS:    30,
	}
}

// FrameSize returns the frame length in bytes.
func (c *Config) FrameSize() int {
	return c.Width * c.Height
}

// Validate rejects configurations the server cannot run with.
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
	if c.Producers < 0 {
		errs = append(errs, fmt.Errorf("producers must not be negative, got %d", c.Producers))
	}
	if c.QueueCapacity < 0 {
		errs = append(errs, fmt.Errorf("queue capacity must not be negative, got %d", c.QueueCapacity))
	}
	return errors.Join(errs...)
}
