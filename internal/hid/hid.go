// Package hid delivers key reports to a host over a HID transport.
// The BLE transport implements HID-over-GATT, the uinput transport feeds a
// local virtual keyboard, and the fake transport records reports for tests.
package hid

import (
	"errors"

	"github.com/sweeney/arrow-keys/internal/keys"
)

// ErrNotConnected is returned by Send when no host is attached.
var ErrNotConnected = errors.New("hid: no host connected")

// Link reports whether a host is attached and able to receive reports.
type Link interface {
	IsConnected() bool
}

// Sink accepts keyboard reports for delivery to the host.
type Sink interface {
	// Send transmits the report. Callers treat failures as transport-owned.
	Send(report keys.Report) error
}

// Transport is a Link and a Sink backed by a real or fake device.
type Transport interface {
	Link
	Sink

	// OnConnectionChange registers h to be told when a host attaches or detaches.
	OnConnectionChange(h ConnectionHandler)

	// Close stops the transport and releases its resources.
	Close() error
}

// ConnectionHandler is notified when the host attaches or detaches.
type ConnectionHandler func(connected bool)
