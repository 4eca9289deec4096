// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Error definitions for concurrency module.

package concurrency

import "errors"

var (
	// ErrQueueClosed is returned by Push on a closed queue and by Pop once a
	// closed queue has been drained.
	ErrQueueClosed = errors.New("queue is closed")

	// ErrInvalidCapacity indicates a queue was requested with capacity < 1
	ErrInvalidCapacity = errors.New("invalid queue capacity")

	// ErrInvalidRate indicates a non-positive or non-finite tick frequency
	ErrInvalidRate = errors.New("invalid tick rate")
)
