package api_test

import (
	"errors"
	"testing"

	"github.com/momentics/hioload-framebench/api"
	"github.com/momentics/hioload-framebench/fake"
	"github.com/momentics/hioload-framebench/transport"
)

func TestTransportInterfaceCompliance(t *testing.T) {
	var _ api.Conn = (*fake.Conn)(nil)
	var _ api.Listener = (*fake.Listener)(nil)
	var _ api.Conn = (*transport.NetConn)(nil)
}

func TestErrorsAreDistinct(t *testing.T) {
	errs := []error{api.ErrTransportClosed, api.ErrInvalidEndpoint, api.ErrNotSupported}
	for i, a := range errs {
		for j, b := range errs {
			if (i == j) != errors.Is(a, b) {
				t.Fatalf("errors.Is(%v, %v) = %v", a, b, errors.Is(a, b))
			}
		}
	}
}
