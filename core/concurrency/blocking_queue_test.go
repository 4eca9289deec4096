package concurrency

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestBlockingQueue_InvalidCapacity(t *testing.T) {
	_, err := NewBlockingQueue[int](0)
	require.ErrorIs(t, err, ErrInvalidCapacity)
}

func TestBlockingQueue_PushBlocksWhenFull(t *testing.T) {
	q, err := NewBlockingQueue[int](3)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		require.NoError(t, q.Push(i))
	}

	done := make(chan error, 1)
	go func() { done <- q.Push(3) }()

	require.Eventually(t, func() bool { return q.BlockedPushers() == 1 }, time.Second, time.Millisecond)
	select {
	case <-done:
		t.Fatal("push on a full queue returned before a pop")
	case <-time.After(50 * time.Millisecond):
	}
	assert.Equal(t, 3, q.Len())

	v, err := q.Pop()
	require.NoError(t, err)
	assert.Equal(t, 0, v)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("push did not resume after pop")
	}
	assert.Equal(t, 3, q.Len())
	assert.Zero(t, q.BlockedPushers())
}

func TestBlockingQueue_PopBlocksWhenEmpty(t *testing.T) {
	q, err := NewBlockingQueue[string](2)
	require.NoError(t, err)

	got := make(chan string, 1)
	go func() {
		v, err := q.Pop()
		if err == nil {
			got <- v
		}
	}()

	select {
	case <-got:
		t.Fatal("pop on an empty queue returned")
	case <-time.After(30 * time.Millisecond):
	}
	require.NoError(t, q.Push("frame"))
	select {
	case v := <-got:
		assert.Equal(t, "frame", v)
	case <-time.After(time.Second):
		t.Fatal("pop did not resume after push")
	}
}

func TestBlockingQueue_CloseWakesWaiters(t *testing.T) {
	q, err := NewBlockingQueue[int](1)
	require.NoError(t, err)
	require.NoError(t, q.Push(7))

	pushErr := make(chan error, 1)
	go func() { pushErr <- q.Push(8) }()
	require.Eventually(t, func() bool { return q.BlockedPushers() == 1 }, time.Second, time.Millisecond)

	q.Close()
	q.Close()

	select {
	case err := <-pushErr:
		assert.ErrorIs(t, err, ErrQueueClosed)
	case <-time.After(time.Second):
		t.Fatal("close did not wake the parked pusher")
	}

	// buffered item still drains
	v, err := q.Pop()
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	_, err = q.Pop()
	assert.ErrorIs(t, err, ErrQueueClosed)
	assert.ErrorIs(t, q.Push(9), ErrQueueClosed)
	assert.True(t, q.Stats().IsClosed)
}

func TestBlockingQueue_SlowConsumerNeverExceedsCapacity(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		capacity := rapid.IntRange(1, 8).Draw(rt, "capacity")
		items := rapid.IntRange(capacity, 4*capacity).Draw(rt, "items")

		q, err := NewBlockingQueue[int](capacity)
		require.NoError(rt, err)

		go func() {
			for i := 0; i < items; i++ {
				if q.Push(i) != nil {
					return
				}
			}
		}()

		for i := 0; i < items; i++ {
			time.Sleep(100 * time.Microsecond)
			if n := q.Len(); n > capacity {
				rt.Fatalf("queue holds %d items, capacity %d", n, capacity)
			}
			v, err := q.Pop()
			require.NoError(rt, err)
			require.Equal(rt, i, v, "single producer order")
		}
		q.Close()
	})
}

// Each pushed item must be popped exactly once across all consumers.
func TestBlockingQueue_MPMC(t *testing.T) {
	q, err := NewBlockingQueue[*int](64)
	require.NoError(t, err)

	producers := 8
	consumers := 8
	itemsPerProducer := 2000
	total := producers * itemsPerProducer

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(pid int) {
			defer wg.Done()
			for i := 0; i < itemsPerProducer; i++ {
				v := pid*itemsPerProducer + i
				if err := q.Push(&v); err != nil {
					t.Errorf("push: %v", err)
					return
				}
			}
		}(p)
	}

	var (
		mu       sync.Mutex
		seen     = make(map[*int]struct{}, total)
		values   = make(map[int]struct{}, total)
		received atomic.Int64
	)
	var cwg sync.WaitGroup
	for c := 0; c < consumers; c++ {
		cwg.Add(1)
		go func() {
			defer cwg.Done()
			for {
				v, err := q.Pop()
				if errors.Is(err, ErrQueueClosed) {
					return
				}
				mu.Lock()
				if _, dup := seen[v]; dup {
					t.Errorf("item %d delivered twice", *v)
				}
				seen[v] = struct{}{}
				values[*v] = struct{}{}
				mu.Unlock()
				received.Add(1)
			}
		}()
	}

	wg.Wait()
	require.Eventually(t, func() bool { return received.Load() == int64(total) }, 5*time.Second, time.Millisecond)
	q.Close()
	cwg.Wait()

	assert.Len(t, values, total)
	st := q.Stats()
	assert.Equal(t, uint64(total), st.Pushed)
	assert.Equal(t, uint64(total), st.Popped)
}
