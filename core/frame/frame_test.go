package frame

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueCapacity(t *testing.T) {
	cases := []struct {
		fps  float64
		want int
	}{
		{30, 30},
		{29.5, 30},
		{29.49, 29},
		{0.2, 1},
		{0, 1},
		{240, 240},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, QueueCapacity(tc.fps), "fps %v", tc.fps)
	}
}

func TestNewQueue_ExplicitCapacity(t *testing.T) {
	q, err := NewQueue(60, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, q.Cap())

	q, err = NewQueue(60, 0)
	require.NoError(t, err)
	assert.Equal(t, 60, q.Cap())
}

func TestGenerate(t *testing.T) {
	rng, err := NewGenerator()
	require.NoError(t, err)

	a, err := Generate(rng, 64*64)
	require.NoError(t, err)
	b, err := Generate(rng, 64*64)
	require.NoError(t, err)

	assert.Len(t, a, 4096)
	assert.Len(t, b, 4096)
	assert.False(t, bytes.Equal(a, b), "consecutive frames from one stream should differ")
	assert.False(t, bytes.Equal(a, make([]byte, 4096)), "frame left zeroed")
}

func TestGenerate_ShortSource(t *testing.T) {
	_, err := Generate(bytes.NewReader([]byte{1, 2, 3}), 10)
	assert.Error(t, err)
}

func TestNewGenerator_Independent(t *testing.T) {
	g1, err := NewGenerator()
	require.NoError(t, err)
	g2, err := NewGenerator()
	require.NoError(t, err)

	a, _ := Generate(g1, 256)
	b, _ := Generate(g2, 256)
	assert.False(t, bytes.Equal(a, b), "generators share a seed")
}

func TestCheckSize(t *testing.T) {
	n, err := CheckSize(1920, 1080)
	require.NoError(t, err)
	assert.Equal(t, 1920*1080, n)

	n, err = CheckSize(1<<15, 1<<15)
	require.NoError(t, err)
	assert.Equal(t, MaxSize, n)

	for _, dims := range [][2]int{{0, 1}, {1, -1}, {3 << 61, 2}, {1 << 62, 4}, {MaxSize, 2}} {
		_, err := CheckSize(dims[0], dims[1])
		assert.ErrorIs(t, err, ErrInvalidSize, "%dx%d", dims[0], dims[1])
	}
}
