package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	InstanceID    string       `json:"instance_id"`
	State         string       `json:"state"`
	PeerConnected bool         `json:"peer_connected"`
	Keys          []string     `json:"keys"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        CountsJSON   `json:"event_counts"`
	Poller        PollerJSON   `json:"poller"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of key event counts.
type CountsJSON struct {
	Down    int            `json:"key_down"`
	Up      int            `json:"key_up"`
	Presses map[string]int `json:"presses"`
}

// PollerJSON is the JSON representation of poll loop counters.
type PollerJSON struct {
	Ticks      uint64 `json:"ticks"`
	Reports    uint64 `json:"reports"`
	Skipped    uint64 `json:"skipped"`
	ReadErrors uint64 `json:"read_errors"`
	SendErrors uint64 `json:"send_errors"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	DeviceName     string `json:"device_name"`
	Transport      string `json:"transport"`
	PinA           int    `json:"pin_a"`
	PinB           int    `json:"pin_b"`
	KeyA           string `json:"key_a"`
	KeyB           string `json:"key_b"`
	PollMs         int64  `json:"poll_ms"`
	StartupDelayMs int64  `json:"startup_delay_ms"`
	HeartbeatMs    int64  `json:"heartbeat_ms"`
	Broker         string `json:"broker"`
	HTTPAddr       string `json:"http_addr"`
}

func buildInner(snap Snapshot) StatusInner {
	state := string(snap.PollerState)
	if state == "" {
		state = "UNKNOWN"
	}

	held := make([]string, 0, snap.Keys.Count())
	for _, c := range snap.Keys.Codes() {
		held = append(held, c.String())
	}

	presses := snap.Counts.Presses
	if presses == nil {
		presses = map[string]int{}
	}

	inner := StatusInner{
		InstanceID:    snap.InstanceID,
		State:         state,
		PeerConnected: snap.PeerConnected,
		Keys:          held,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Down:    snap.Counts.Down,
			Up:      snap.Counts.Up,
			Presses: presses,
		},
		Poller: PollerJSON{
			Ticks:      snap.Stats.Ticks,
			Reports:    snap.Stats.Reports,
			Skipped:    snap.Stats.Skipped,
			ReadErrors: snap.Stats.ReadErrors,
			SendErrors: snap.Stats.SendErrors,
		},
		Config: ConfigJSON{
			DeviceName:     snap.Config.DeviceName,
			Transport:      snap.Config.Transport,
			PinA:           snap.Config.PinA,
			PinB:           snap.Config.PinB,
			KeyA:           snap.Config.CodeA.String(),
			KeyB:           snap.Config.CodeB.String(),
			PollMs:         snap.Config.PollMs,
			StartupDelayMs: snap.Config.StartupDelayMs,
			HeartbeatMs:    snap.Config.HeartbeatMs,
			Broker:         snap.Config.Broker,
			HTTPAddr:       snap.Config.HTTPAddr,
		},
	}

	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
