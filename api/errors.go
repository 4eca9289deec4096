// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types shared by the transport layer and its callers.

package api

import "errors"

// Common errors used across the library.
var (
	ErrTransportClosed = errors.New("transport is closed")
	ErrInvalidEndpoint = errors.New("invalid endpoint")
	ErrNotSupported    = errors.New("operation not supported")
)
