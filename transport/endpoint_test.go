package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-framebench/api"
)

func TestParseEndpoint(t *testing.T) {
	cases := []struct {
		in   string
		want Endpoint
	}{
		{"/tmp/bench.sock", Endpoint{Network: Unix, Address: "/tmp/bench.sock"}},
		{"bench.sock", Endpoint{Network: Unix, Address: "bench.sock"}},
		{"unix:/run/x.sock", Endpoint{Network: Unix, Address: "/run/x.sock"}},
		{"tcp:127.0.0.1:9000", Endpoint{Network: TCP, Address: "127.0.0.1:9000"}},
		{"tcp:[::1]:0", Endpoint{Network: TCP, Address: "[::1]:0"}},
		{"vsock:3:5000", Endpoint{Network: Vsock, CID: 3, Port: 5000}},
		{"vsock:host:22", Endpoint{Network: Vsock, CID: CIDHost, Port: 22}},
		{"vsock:ANY:22", Endpoint{Network: Vsock, CID: CIDAny, Port: 22}},
		{"vsock:local:00001388-facb-11e6-bd58-64006a7986d3", Endpoint{Network: Vsock, CID: CIDLocal, Port: 5000}},
		{"./relative:odd.sock", Endpoint{Network: Unix, Address: "./relative:odd.sock"}},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseEndpoint(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseEndpoint_Invalid(t *testing.T) {
	for _, in := range []string{
		"",
		"unix:",
		"tcp:nohostport",
		"vsock:3",
		"vsock::5000",
		"vsock:abc:5000",
		"vsock:2:not-a-port",
		"vsock:2:3049197c-facb-11e6-bd58-64006a7986d4",
	} {
		_, err := ParseEndpoint(in)
		assert.ErrorIs(t, err, api.ErrInvalidEndpoint, "input %q", in)
	}
}

func TestEndpoint_StringRoundTrip(t *testing.T) {
	for _, in := range []string{"unix:/tmp/a.sock", "tcp:127.0.0.1:80", "vsock:2:5000"} {
		ep, err := ParseEndpoint(in)
		require.NoError(t, err)
		assert.Equal(t, in, ep.String())
	}
}
