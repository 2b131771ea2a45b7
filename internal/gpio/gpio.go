// Package gpio reads the two arrow buttons. Both are wired to ground with the
// line's internal pull-up, so an unpressed button reads high.
//
// RealReader talks to the Linux GPIO character device; FakeReader replays a
// script for tests.
package gpio

import "errors"

// Reader reads the two button lines.
type Reader interface {
	// Read returns (aPressed, bPressed). Values are logical: a line pulled
	// low by its button reads true. Nothing is cached between calls.
	Read() (bool, bool, error)

	Close() error
}

// Line A reports the left arrow, line B the right arrow.
const (
	DefaultChip = "gpiochip0"
	DefaultPinA = 18
	DefaultPinB = 15
)

// ErrUnsupported is returned by RealReader on platforms without gpiocdev.
var ErrUnsupported = errors.New("gpio: character device requires linux")
