// Package registry
// Author: momentics <momentics@gmail.com>
//
// Host-side service directory: a persistent map from 128-bit service
// identifier to a human-readable element name, stored in a bbolt file.
// Hypervisor socket services are announced here before guests connect.
// An optional directory-wide RWMutex serialises writers against readers.
package registry
