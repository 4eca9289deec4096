package affinity

import (
	"errors"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailableParallelism(t *testing.T) {
	n := AvailableParallelism()
	assert.GreaterOrEqual(t, n, 1)
	assert.LessOrEqual(t, n, runtime.NumCPU())
}

func TestPinCurrent(t *testing.T) {
	if runtime.GOOS != "linux" {
		_, err := PinCurrent(0)
		require.Error(t, err)
		return
	}
	cpus, err := UsableCPUs()
	require.NoError(t, err)
	require.NotEmpty(t, cpus)

	type result struct {
		cpu int
		err error
	}
	done := make(chan result, 1)
	go func() {
		cpu, err := PinCurrent(len(cpus) + 1)
		done <- result{cpu, err}
	}()
	r := <-done
	require.NoError(t, r.err)
	assert.Equal(t, cpus[(len(cpus)+1)%len(cpus)], r.cpu)
}

func TestPinCurrent_FailureReleasesThread(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("cpu list unavailable")
	}
	var locks, unlocks int
	origLock, origUnlock, origSet := lockOSThread, unlockOSThread, setAffinity
	defer func() { lockOSThread, unlockOSThread, setAffinity = origLock, origUnlock, origSet }()

	lockOSThread = func() { locks++ }
	unlockOSThread = func() { unlocks++ }
	denied := errors.New("sched_setaffinity: operation not permitted")
	setAffinity = func(int) error { return denied }

	cpu, err := PinCurrent(0)
	assert.ErrorIs(t, err, denied)
	assert.Equal(t, -1, cpu)
	assert.Equal(t, 1, locks)
	assert.Equal(t, 1, unlocks)
}
