// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package transport binds benchmark endpoints to concrete byte-stream sockets:
// filesystem-path local sockets, TCP for loopback runs, and AF_VSOCK
// hypervisor sockets addressed by (CID, port). Everything above this package
// sees only api.Conn and api.Listener.
package transport
