package concurrency

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) sleep(d time.Duration)   { c.t = c.t.Add(d) }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newFakeScheduler(t *testing.T, frequency float64) (*RateScheduler, *fakeClock) {
	t.Helper()
	s, err := NewRateScheduler(frequency)
	require.NoError(t, err)
	clk := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	s.now = clk.now
	s.sleep = clk.sleep
	return s, clk
}

func TestNewRateScheduler_InvalidRate(t *testing.T) {
	for _, f := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := NewRateScheduler(f)
		assert.ErrorIs(t, err, ErrInvalidRate, "frequency %v", f)
	}
}

func TestRateScheduler_FixedPeriod(t *testing.T) {
	s, clk := newFakeScheduler(t, 10)
	start := clk.t
	var ticks []time.Time

	stats := s.Run(func() Action {
		ticks = append(ticks, clk.t)
		clk.advance(3 * time.Millisecond) // work shorter than a period
		if len(ticks) == 50 {
			return Stop
		}
		return Continue
	})

	require.Len(t, ticks, 50)
	assert.Equal(t, uint64(50), stats.Ticks)
	assert.Zero(t, stats.Overruns)
	for i, at := range ticks {
		assert.Equal(t, start.Add(time.Duration(i)*100*time.Millisecond), at, "tick %d", i)
	}
}

func TestRateScheduler_OverrunResetsInsteadOfBursting(t *testing.T) {
	s, clk := newFakeScheduler(t, 10)
	start := clk.t
	var ticks []time.Time

	stats := s.Run(func() Action {
		ticks = append(ticks, clk.t)
		if len(ticks) == 3 {
			clk.advance(250 * time.Millisecond)
		}
		if len(ticks) == 6 {
			return Stop
		}
		return Continue
	})

	require.Len(t, ticks, 6)
	assert.Equal(t, uint64(1), stats.Overruns)
	assert.Equal(t, start, ticks[0])
	assert.Equal(t, start.Add(100*time.Millisecond), ticks[1])
	assert.Equal(t, start.Add(200*time.Millisecond), ticks[2])
	// tick 3 finished at +450ms; the next one runs immediately, not earlier
	assert.Equal(t, start.Add(450*time.Millisecond), ticks[3])
	// and cadence resumes from there with no catch-up
	assert.Equal(t, start.Add(550*time.Millisecond), ticks[4])
	assert.Equal(t, start.Add(650*time.Millisecond), ticks[5])
}

func TestRateScheduler_StopOnFirstTick(t *testing.T) {
	s, clk := newFakeScheduler(t, 1000)
	before := clk.t
	stats := s.Run(func() Action { return Stop })
	assert.Equal(t, uint64(1), stats.Ticks)
	assert.Equal(t, before, clk.t, "no sleep after Stop")
}

func TestRunEvery_LongRunRate(t *testing.T) {
	if testing.Short() {
		t.Skip("wall-clock test")
	}
	const frequency = 100.0
	window := time.Second
	start := time.Now()

	stats, err := RunEvery(frequency, func() Action {
		if time.Since(start) >= window {
			return Stop
		}
		return Continue
	})
	require.NoError(t, err)

	expected := frequency * window.Seconds()
	assert.InDelta(t, expected, float64(stats.Ticks), expected*0.15)
}
