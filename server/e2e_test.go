// File: server/e2e_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// End-to-end runs of server and client over a local socket.

package server_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/momentics/hioload-framebench/client"
	"github.com/momentics/hioload-framebench/server"
)

func runServer(t *testing.T, cfg *server.Config) (*server.Server, func()) {
	t.Helper()
	s, err := server.NewServer(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case <-s.Ready():
	case err := <-done:
		cancel()
		t.Fatalf("server failed to start: %v", err)
	}
	return s, func() {
		cancel()
		require.NoError(t, <-done)
	}
}

type reportLog struct {
	mu      sync.Mutex
	reports []client.Report
}

func (l *reportLog) add(r client.Report) {
	l.mu.Lock()
	l.reports = append(l.reports, r)
	l.mu.Unlock()
}

func (l *reportLog) snapshot() []client.Report {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]client.Report(nil), l.reports...)
}

func clientConfig(endpoint string) *client.Config {
	cfg := client.DefaultConfig()
	cfg.Endpoint = endpoint
	cfg.Width = 64
	cfg.Height = 64
	cfg.FPS = 30
	return cfg
}

func TestEndToEnd_SingleClientReportsEverySecond(t *testing.T) {
	if testing.Short() {
		t.Skip("runs for five seconds")
	}
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	endpoint := "unix:" + filepath.Join(t.TempDir(), "bench.sock")
	cfg := server.DefaultConfig()
	cfg.Endpoint = endpoint
	_, stop := runServer(t, cfg)
	defer stop()

	var log reportLog
	m, err := client.Dial(clientConfig(endpoint), client.WithReporter(log.add))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second+200*time.Millisecond)
	defer cancel()
	require.NoError(t, m.Run(ctx))

	reports := log.snapshot()
	require.GreaterOrEqual(t, len(reports), 4)
	for i, r := range reports {
		require.True(t, r.OK, "report %d has no average", i)
		assert.Greater(t, r.Average, time.Duration(0), "report %d", i)
		assert.Less(t, r.Average, time.Second, "report %d", i)
	}
}

func TestEndToEnd_DroppedClientDoesNotStopOthers(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	endpoint := "unix:" + filepath.Join(t.TempDir(), "bench.sock")
	cfg := server.DefaultConfig()
	cfg.Endpoint = endpoint
	s, stop := runServer(t, cfg)
	defer stop()

	quiet := client.WithReporter(func(client.Report) {})
	first, err := client.Dial(clientConfig(endpoint), quiet)
	require.NoError(t, err)
	second, err := client.Dial(clientConfig(endpoint), quiet)
	require.NoError(t, err)

	ctx1, cancel1 := context.WithCancel(context.Background())
	ctx2, cancel2 := context.WithCancel(context.Background())
	done1 := make(chan error, 1)
	done2 := make(chan error, 1)
	go func() { done1 <- first.Run(ctx1) }()
	go func() { done2 <- second.Run(ctx2) }()

	require.Eventually(t, func() bool {
		return first.Frames() > 5 && second.Frames() > 5
	}, 5*time.Second, 10*time.Millisecond)

	cancel1()
	require.NoError(t, <-done1)

	require.Eventually(t, func() bool {
		return s.Disconnects() == 1 && s.ActiveConnections() == 1
	}, 5*time.Second, 10*time.Millisecond)

	before := second.Frames()
	time.Sleep(time.Second)
	after := second.Frames()
	assert.GreaterOrEqual(t, after-before, uint64(15), "second client stalled after first dropped")

	cancel2()
	require.NoError(t, <-done2)
}
