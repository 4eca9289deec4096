// Package frame
// Author: momentics <momentics@gmail.com>
//
// Synthetic frame production for the benchmark server. A Frame is an opaque
// width*height block of pseudo-random bytes; nothing downstream inspects it.
// ProducerPool keeps a shared bounded Queue full, one producer per usable CPU,
// and the queue's backpressure is the only throttle on production.
package frame
