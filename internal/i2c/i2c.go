// Package i2c provides the two bus transaction helpers used by the display
// driver, plus a periph-backed bus for Linux hosts.
package i2c

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

// Bus performs one combined write/read transaction with a 7-bit device address.
// periph.io/x/conn/v3/i2c.Bus satisfies it.
type Bus interface {
	Tx(addr uint16, w, r []byte) error
}

// BusCloser is a Bus that owns an OS handle.
type BusCloser interface {
	Bus
	Close() error
}

// Op names the failed transaction direction.
type Op string

const (
	OpSend    Op = "send"
	OpReceive Op = "receive"
)

// Error is returned when a bus transaction fails.
type Error struct {
	Op   Op
	Addr uint16
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("i2c %s 0x%02X: %v", e.Op, e.Addr, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Send writes data to the device at addr as a single transaction.
func Send(bus Bus, addr uint16, data []byte) error {
	if err := bus.Tx(addr, data, nil); err != nil {
		return fail(OpSend, addr, err)
	}
	return nil
}

// Receive fills data from the device at addr as a single transaction.
func Receive(bus Bus, addr uint16, data []byte) error {
	if err := bus.Tx(addr, nil, data); err != nil {
		return fail(OpReceive, addr, err)
	}
	return nil
}

func fail(op Op, addr uint16, err error) error {
	e := &Error{Op: op, Addr: addr, Err: err}
	log.WithFields(log.Fields{"op": op, "addr": fmt.Sprintf("0x%02X", addr)}).Printf("i2c: %v", err)
	return e
}
