// File: serviceid/serviceid.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package serviceid maps plain vsock port numbers onto 128-bit hypervisor
// service identifiers and back. A port p is encoded by writing it big-endian
// into the first 32-bit field (the GUID Data1 word) of a fixed template; the
// remaining 96 bits identify the identifier as "really a port". Identifiers
// that do not match the template are opaque and pass through unchanged.
package serviceid

import (
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// Template is the well-known vsock service-id template; its first four bytes
// are replaced by the port.
var Template = uuid.UUID{
	0x00, 0x00, 0x00, 0x00,
	0xfa, 0xcb,
	0x11, 0xe6,
	0xbd, 0x58,
	0x64, 0x00, 0x6a, 0x79, 0x86, 0xd3,
}

const portBytes = 4

// FromPort builds the service identifier standing in for port.
func FromPort(port uint32) uuid.UUID {
	id := Template
	binary.BigEndian.PutUint32(id[:portBytes], port)
	return id
}

// IsPort reports whether id matches the template outside the port field.
func IsPort(id uuid.UUID) bool {
	return [16 - portBytes]byte(id[portBytes:]) == [16 - portBytes]byte(Template[portBytes:])
}

// Addr is a decoded service identifier: either a port or an opaque id.
type Addr struct {
	ID     uuid.UUID
	Port   uint32
	IsPort bool
}

// String renders ports as decimal and opaque ids in canonical form.
func (a Addr) String() string {
	if a.IsPort {
		return strconv.FormatUint(uint64(a.Port), 10)
	}
	return a.ID.String()
}

// Decode classifies id. For template identifiers Port holds the embedded
// port; otherwise ID is id unchanged.
func Decode(id uuid.UUID) Addr {
	if !IsPort(id) {
		return Addr{ID: id}
	}
	return Addr{
		ID:     id,
		Port:   binary.BigEndian.Uint32(id[:portBytes]),
		IsPort: true,
	}
}

// Parse accepts either a decimal port or a textual identifier.
func Parse(s string) (Addr, error) {
	if p, err := strconv.ParseUint(s, 10, 32); err == nil {
		return Addr{ID: FromPort(uint32(p)), Port: uint32(p), IsPort: true}, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return Addr{}, fmt.Errorf("serviceid: %q is neither a port nor a service id: %w", s, err)
	}
	return Decode(id), nil
}
