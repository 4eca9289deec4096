// File: core/frame/frame.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package frame

import (
	crand "crypto/rand"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"

	"github.com/momentics/hioload-framebench/core/concurrency"
)

// Frame is one fixed-size opaque payload. It is owned by whoever popped it
// and must not be modified after production.
type Frame []byte

// Queue is the bounded hand-off between producers and delivery loops.
type Queue = concurrency.BlockingQueue[Frame]

// MaxSize bounds a single frame at 1 GiB.
const MaxSize = 1 << 30

// ErrInvalidSize rejects frame dimensions that cannot be allocated.
var ErrInvalidSize = errors.New("frame: invalid size")

// CheckSize returns width*height. Non-positive dimensions, products that
// overflow int and products above MaxSize are rejected.
func CheckSize(width, height int) (int, error) {
	if width <= 0 || height <= 0 {
		return 0, fmt.Errorf("%w: dimensions must be positive, got %dx%d", ErrInvalidSize, width, height)
	}
	if width > MaxSize/height {
		return 0, fmt.Errorf("%w: %dx%d exceeds %d bytes", ErrInvalidSize, width, height, MaxSize)
	}
	return width * height, nil
}

// QueueCapacity sizes the queue to roughly one second of frames at fps.
func QueueCapacity(fps float64) int {
	c := int(math.Round(fps))
	if c < 1 {
		c = 1
	}
	return c
}

// NewQueue builds a frame queue. capacity <= 0 selects QueueCapacity(fps).
func NewQueue(fps float64, capacity int) (*Queue, error) {
	if capacity <= 0 {
		capacity = QueueCapacity(fps)
	}
	return concurrency.NewBlockingQueue[Frame](capacity)
}

// Generate allocates a frame of size bytes and fills it from src.
func Generate(src io.Reader, size int) (Frame, error) {
	f := make(Frame, size)
	if _, err := io.ReadFull(src, f); err != nil {
		return nil, fmt.Errorf("frame: fill %d bytes: %w", size, err)
	}
	return f, nil
}

// NewGenerator returns a ChaCha8 stream seeded from the system entropy
// source. Each producer owns one, so no generator state is shared.
func NewGenerator() (*rand.ChaCha8, error) {
	var seed [32]byte
	if _, err := crand.Read(seed[:]); err != nil {
		return nil, fmt.Errorf("frame: seed generator: %w", err)
	}
	return rand.NewChaCha8(seed), nil
}
