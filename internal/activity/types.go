// Package activity derives key press/release events from the stream of key
// reports. It is telemetry only and never influences what the host receives.
// This package has NO external dependencies (no GPIO, Bluetooth, MQTT, or time.Sleep).
// Time is always injectable via time.Time parameters.
package activity

import (
	"time"

	"github.com/sweeney/arrow-keys/internal/keys"
)

// EventType represents a key transition.
type EventType string

const (
	EventKeyDown EventType = "KEY_DOWN"
	EventKeyUp   EventType = "KEY_UP"
)

// Event represents a key transition to be published.
type Event struct {
	Timestamp time.Time
	Type      EventType
	Code      keys.Code
	// Held is the full set of keys pressed after this transition.
	Held []keys.Code
}

// Input represents one report handed to the sink.
type Input struct {
	Report keys.Report
	Time   time.Time
}

// EventCounts tracks transitions since startup.
type EventCounts struct {
	Down int
	Up   int
	// Presses counts KEY_DOWN per key name.
	Presses map[string]int
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    EventCounts
}
