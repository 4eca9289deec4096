// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

package transport

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/momentics/hioload-framebench/api"
	"github.com/momentics/hioload-framebench/serviceid"
)

// Network names a transport family.
type Network string

const (
	Unix  Network = "unix"
	TCP   Network = "tcp"
	Vsock Network = "vsock"
)

// Well-known vsock context ids.
const (
	CIDHypervisor uint32 = 0
	CIDLocal      uint32 = 1
	CIDHost       uint32 = 2
	CIDAny        uint32 = 0xFFFFFFFF
)

var cidNames = map[string]uint32{
	"hypervisor": CIDHypervisor,
	"local":      CIDLocal,
	"host":       CIDHost,
	"any":        CIDAny,
}

// Endpoint is a parsed transport address. Address is used by unix and tcp,
// CID/Port by vsock.
type Endpoint struct {
	Network Network
	Address string
	CID     uint32
	Port    uint32
}

// String renders the endpoint in the syntax ParseEndpoint accepts.
func (e Endpoint) String() string {
	switch e.Network {
	case Vsock:
		return fmt.Sprintf("vsock:%d:%d", e.CID, e.Port)
	case TCP:
		return "tcp:" + e.Address
	default:
		return "unix:" + e.Address
	}
}

// ParseEndpoint understands
//
//	unix:/run/bench.sock   local socket (also any string without a known scheme)
//	tcp:127.0.0.1:9000     TCP
//	vsock:2:5000           hypervisor socket, CID 2 port 5000
//	vsock:any:00001388-facb-11e6-bd58-64006a7986d3
//
// A vsock port may be written as a template service id, which is decoded to
// its port; opaque service ids are rejected because vsock cannot route them.
func ParseEndpoint(s string) (Endpoint, error) {
	if s == "" {
		return Endpoint{}, fmt.Errorf("%w: empty", api.ErrInvalidEndpoint)
	}
	scheme, rest, found := strings.Cut(s, ":")
	if !found {
		return Endpoint{Network: Unix, Address: s}, nil
	}
	switch Network(scheme) {
	case Unix:
		if rest == "" {
			return Endpoint{}, fmt.Errorf("%w: %q has no path", api.ErrInvalidEndpoint, s)
		}
		return Endpoint{Network: Unix, Address: rest}, nil
	case TCP:
		if _, _, err := net.SplitHostPort(rest); err != nil {
			return Endpoint{}, fmt.Errorf("%w: %q: %v", api.ErrInvalidEndpoint, s, err)
		}
		return Endpoint{Network: TCP, Address: rest}, nil
	case Vsock:
		return parseVsock(s, rest)
	default:
		return Endpoint{Network: Unix, Address: s}, nil
	}
}

func parseVsock(full, rest string) (Endpoint, error) {
	cidStr, portStr, found := strings.Cut(rest, ":")
	if !found || cidStr == "" || portStr == "" {
		return Endpoint{}, fmt.Errorf("%w: %q, want vsock:<cid>:<port>", api.ErrInvalidEndpoint, full)
	}

	cid, ok := cidNames[strings.ToLower(cidStr)]
	if !ok {
		v, err := strconv.ParseUint(cidStr, 10, 32)
		if err != nil {
			return Endpoint{}, fmt.Errorf("%w: %q: bad cid: %v", api.ErrInvalidEndpoint, full, err)
		}
		cid = uint32(v)
	}

	addr, err := serviceid.Parse(portStr)
	if err != nil {
		return Endpoint{}, fmt.Errorf("%w: %q: %v", api.ErrInvalidEndpoint, full, err)
	}
	if !addr.IsPort {
		return Endpoint{}, fmt.Errorf("%w: service id %s does not encode a vsock port", api.ErrInvalidEndpoint, addr.ID)
	}
	return Endpoint{Network: Vsock, CID: cid, Port: addr.Port}, nil
}
