// File: affinity/affinity.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral API for CPU affinity. Platform-specific implementations are located
// in separate files (affinity_linux.go, affinity_stub.go) guarded by build tags.

package affinity

import (
	"errors"
	"runtime"
)

// ErrNotSupported is returned where thread pinning is unavailable.
var ErrNotSupported = errors.New("affinity: not supported on this platform")

// AvailableParallelism returns how many CPUs this process may run on.
// It honours the scheduler affinity mask where the platform exposes one, so a
// process started under taskset or a cgroup cpuset sees its real budget.
func AvailableParallelism() int {
	if cpus, err := usableCPUs(); err == nil && len(cpus) > 0 {
		return len(cpus)
	}
	return runtime.NumCPU()
}

// UsableCPUs lists the logical CPU ids in the process affinity mask.
func UsableCPUs() ([]int, error) {
	return usableCPUs()
}

// Seams for tests.
var (
	lockOSThread   = runtime.LockOSThread
	unlockOSThread = runtime.UnlockOSThread
	setAffinity    = setAffinityPlatform
)

// PinCurrent locks the calling goroutine to its OS thread and pins that thread
// to the idx-th usable CPU (modulo the CPU count), returning the CPU id.
// On success the lock is never released: when the goroutine exits the runtime
// discards the thread, so the narrowed mask cannot leak to unrelated goroutines.
// On failure the thread is unlocked again.
func PinCurrent(idx int) (int, error) {
	cpus, err := usableCPUs()
	if err != nil {
		return -1, err
	}
	if len(cpus) == 0 {
		return -1, ErrNotSupported
	}
	cpu := cpus[idx%len(cpus)]
	lockOSThread()
	if err := setAffinity(cpu); err != nil {
		unlockOSThread()
		return -1, err
	}
	return cpu, nil
}
