//go:build !linux

package hid

import (
	"errors"

	"github.com/sweeney/arrow-keys/internal/keys"
)

// BLEConfig configures the HID-over-GATT peripheral.
type BLEConfig struct {
	LocalName    string
	Manufacturer string
	VendorID     uint16
	ProductID    uint16
	Version      uint16
	BatteryLevel uint8
}

// BLETransport is not available on non-Linux platforms.
type BLETransport struct{}

// NewBLETransport returns an error on non-Linux platforms.
func NewBLETransport(cfg BLEConfig) (*BLETransport, error) {
	return nil, errors.New("hid: BLE peripheral not supported on this platform (requires Linux)")
}

// IsConnected always reports false.
func (t *BLETransport) IsConnected() bool { return false }

// OnConnectionChange is a no-op.
func (t *BLETransport) OnConnectionChange(h ConnectionHandler) {}

// Send always fails.
func (t *BLETransport) Send(report keys.Report) error { return ErrNotConnected }

// Close is a no-op.
func (t *BLETransport) Close() error { return nil }
