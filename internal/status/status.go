// Package status provides a thread-safe status tracker for the arrow-keys daemon.
// It is read by the HTTP handlers and by the MQTT STARTUP/SHUTDOWN/HEARTBEAT events.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/arrow-keys/internal/activity"
	"github.com/sweeney/arrow-keys/internal/keys"
	"github.com/sweeney/arrow-keys/internal/poller"
)

// NetworkInfo contains network state as reported by pi-helper.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	DeviceName     string
	Transport      string
	PinA           int
	PinB           int
	CodeA          keys.Code
	CodeB          keys.Code
	PollMs         int64
	StartupDelayMs int64
	HeartbeatMs    int64
	Broker         string
	HTTPAddr       string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type and safe to use after the lock is released.
type Snapshot struct {
	InstanceID    string
	PollerState   poller.State
	PeerConnected bool
	Keys          keys.Report
	Counts        activity.EventCounts
	Stats         poller.Stats
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time, instance ID and config.
func NewTracker(startTime time.Time, instanceID string, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			InstanceID:  instanceID,
			PollerState: poller.StateIdle,
			StartTime:   startTime,
			Config:      cfg,
		},
	}
}

// UpdateKeys records the report last handed to the sink and the running counts.
func (t *Tracker) UpdateKeys(report keys.Report, counts activity.EventCounts) {
	t.mu.Lock()
	t.snap.Keys = report
	t.snap.Counts = counts
	t.mu.Unlock()
}

// UpdatePoller records the poll loop state and counters.
func (t *Tracker) UpdatePoller(state poller.State, stats poller.Stats) {
	t.mu.Lock()
	t.snap.PollerState = state
	t.snap.Stats = stats
	t.mu.Unlock()
}

// SetPeerConnected sets whether a host is connected. A disconnect clears the held keys.
func (t *Tracker) SetPeerConnected(connected bool) {
	t.mu.Lock()
	t.snap.PeerConnected = connected
	if !connected {
		t.snap.Keys = keys.Report{}
	}
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	s.Counts.Presses = copyPresses(t.snap.Counts.Presses)
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}

func copyPresses(m map[string]int) map[string]int {
	if m == nil {
		return nil
	}
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
