//go:build linux
// +build linux

package transport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-framebench/api"
)

const vsockPortAny = 0xFFFFFFFF

// Needs the vsock_loopback module; skipped where AF_VSOCK is unavailable.
func TestVsockLoopback(t *testing.T) {
	ln, err := listenVsock(CIDAny, vsockPortAny)
	if err != nil {
		t.Skipf("vsock unavailable: %v", err)
	}
	defer ln.Close()

	port := ln.Addr().(vsockAddr).port
	accepted := make(chan api.Conn, 1)
	go func() {
		c, err := ln.Accept()
		if err == nil {
			accepted <- c
		}
	}()

	client, err := dialVsock(CIDLocal, port)
	if err != nil {
		t.Skipf("vsock loopback unavailable: %v", err)
	}
	defer client.Close()

	var server api.Conn
	select {
	case server = <-accepted:
	case <-time.After(2 * time.Second):
		t.Fatal("vsock accept timed out")
	}
	defer server.Close()

	go func() { _ = WriteFull(server, []byte("frame")) }()
	buf := make([]byte, 5)
	require.NoError(t, ReadFull(client, buf))
	assert.Equal(t, "frame", string(buf))
}

func TestVsockAccept_AfterClose(t *testing.T) {
	ln, err := listenVsock(CIDAny, vsockPortAny)
	if err != nil {
		t.Skipf("vsock unavailable: %v", err)
	}
	errc := make(chan error, 1)
	go func() {
		_, err := ln.Accept()
		errc <- err
	}()
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, ln.Close())
	select {
	case err := <-errc:
		assert.ErrorIs(t, err, api.ErrTransportClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("Accept still blocked after Close")
	}
}
