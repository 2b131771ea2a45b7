package hid

import (
	"sync"

	"github.com/sweeney/arrow-keys/internal/keys"
)

// FakeTransport records sent reports for test assertions.
// Safe for use from the poller goroutine and the test goroutine.
type FakeTransport struct {
	mu sync.Mutex

	// Reports contains every report handed to Send while connected.
	Reports []keys.Report

	// Payloads contains the encoded keyboard input reports.
	Payloads [][]byte

	// Calls counts every Send call, including rejected ones.
	Calls int

	// SendError, if set, will be returned by Send after recording the call.
	SendError error

	// Closed tracks if Close was called.
	Closed bool

	connected bool
	handler   ConnectionHandler
}

// NewFakeTransport creates a FakeTransport with the given connection state.
func NewFakeTransport(connected bool) *FakeTransport {
	return &FakeTransport{connected: connected}
}

// Send records the report. It mirrors the real transports: a disconnected
// fake returns ErrNotConnected and records nothing.
func (f *FakeTransport) Send(report keys.Report) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Calls++
	if !f.connected {
		return ErrNotConnected
	}
	if f.SendError != nil {
		return f.SendError
	}

	f.Reports = append(f.Reports, report)
	f.Payloads = append(f.Payloads, EncodeKeyboard(report))
	return nil
}

// IsConnected reports the scripted connection state.
func (f *FakeTransport) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

// SetConnected changes the connection state and notifies the handler on change.
func (f *FakeTransport) SetConnected(connected bool) {
	f.mu.Lock()
	changed := f.connected != connected
	f.connected = connected
	h := f.handler
	f.mu.Unlock()

	if changed && h != nil {
		h(connected)
	}
}

// OnConnectionChange registers h for connection changes.
func (f *FakeTransport) OnConnectionChange(h ConnectionHandler) {
	f.mu.Lock()
	f.handler = h
	f.mu.Unlock()
}

// Sent returns a copy of the recorded reports.
func (f *FakeTransport) Sent() []keys.Report {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]keys.Report, len(f.Reports))
	copy(out, f.Reports)
	return out
}

// CallCount returns the number of Send calls so far.
func (f *FakeTransport) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls
}

// Close marks the transport as closed.
func (f *FakeTransport) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}

// Reset clears recorded reports.
func (f *FakeTransport) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Reports = nil
	f.Payloads = nil
	f.Calls = 0
	f.SendError = nil
	f.Closed = false
}
