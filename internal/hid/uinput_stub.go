//go:build !linux

package hid

import (
	"errors"

	"github.com/sweeney/arrow-keys/internal/keys"
)

// UinputTransport is not available on non-Linux platforms.
type UinputTransport struct{}

// NewUinputTransport returns an error on non-Linux platforms.
func NewUinputTransport(name string, vendor, product uint16, codes ...keys.Code) (*UinputTransport, error) {
	return nil, errors.New("hid: uinput not supported on this platform (requires Linux)")
}

// IsConnected always reports false.
func (t *UinputTransport) IsConnected() bool { return false }

// OnConnectionChange is a no-op.
func (t *UinputTransport) OnConnectionChange(h ConnectionHandler) {}

// Send always fails.
func (t *UinputTransport) Send(report keys.Report) error { return ErrNotConnected }

// Close is a no-op.
func (t *UinputTransport) Close() error { return nil }
