//go:build !linux
// +build !linux

// File: affinity/affinity_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub implementation for unsupported platforms.
// Returns error to indicate unavailability.

package affinity

// usableCPUs is a stub; AvailableParallelism falls back to runtime.NumCPU.
func usableCPUs() ([]int, error) {
	return nil, ErrNotSupported
}

// setAffinityPlatform is a stub for platforms where CPU affinity is not supported.
func setAffinityPlatform(cpuID int) error {
	return ErrNotSupported
}
