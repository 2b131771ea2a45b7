// Package mqtt publishes key activity and lifecycle telemetry, with a fake for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/arrow-keys/internal/activity"
	"github.com/sweeney/arrow-keys/internal/keys"
)

// Topic is the MQTT topic for key events.
const Topic = "input/arrow-keys/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "input/arrow-keys/system"

// Key events are at-most-once; lifecycle events are at-least-once.
const (
	qosKey    byte = 0
	qosSystem byte = 1
)

// System event names.
const (
	EventStartup          = "STARTUP"
	EventShutdown         = "SHUTDOWN"
	EventHeartbeat        = "HEARTBEAT"
	EventPeerConnected    = "PEER_CONNECTED"
	EventPeerDisconnected = "PEER_DISCONNECTED"
	EventReconnected      = "RECONNECTED"
	EventOffline          = "OFFLINE"
)

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a key event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event activity.Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event.
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // one of the Event* constants
	Reason     string // e.g. "SIGTERM" for SHUTDOWN, peer address for PEER_*
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload for a key event.
type Payload struct {
	Key KeyPayload `json:"key"`
}

// KeyPayload contains the key event details.
type KeyPayload struct {
	Timestamp string   `json:"timestamp"`
	Event     string   `json:"event"`
	Code      string   `json:"code"`
	Usage     uint8    `json:"usage"`
	Held      []string `json:"held"`
}

// FormatPayload creates the JSON payload for a key event.
func FormatPayload(event activity.Event) ([]byte, error) {
	payload := Payload{
		Key: KeyPayload{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339Nano),
			Event:     string(event.Type),
			Code:      event.Code.String(),
			Usage:     uint8(event.Code),
			Held:      codeNames(event.Held),
		},
	}
	return json.Marshal(payload)
}

func codeNames(codes []keys.Code) []string {
	names := make([]string, len(codes))
	for i, c := range codes {
		names[i] = c.String()
	}
	return names
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED, PEER_*) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp,omitempty"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	inner := SystemPayloadInner{
		Event:  event.Event,
		Reason: event.Reason,
	}
	if !event.Timestamp.IsZero() {
		inner.Timestamp = event.Timestamp.UTC().Format(time.RFC3339)
	}
	return json.Marshal(SystemPayload{System: inner})
}

// WillPayload is the retained last-will message the broker publishes if the
// client vanishes without a clean disconnect. It has no timestamp: it is
// registered at connect time, not sent.
func WillPayload() []byte {
	data, _ := FormatSystemPayload(SystemEvent{Event: EventOffline, Reason: "CONNECTION_LOST"})
	return data
}
