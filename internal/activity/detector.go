package activity

import (
	"time"

	"github.com/sweeney/arrow-keys/internal/keys"
)

// Detector tracks the last report and detects key transitions.
type Detector struct {
	current       keys.Report
	startTime     time.Time
	eventCounts   EventCounts
	lastHeartbeat time.Time
}

// NewDetector creates a detector with all keys released.
// The startTime is used for calculating uptime in heartbeat events.
func NewDetector(startTime time.Time) *Detector {
	return &Detector{
		startTime:     startTime,
		lastHeartbeat: startTime,
		eventCounts:   EventCounts{Presses: make(map[string]int)},
	}
}

// Process takes a new report and returns the transitions it implies.
// Releases come first, in the previous report's order; presses follow in
// scan order. An unchanged report yields no events.
func (d *Detector) Process(input Input) []Event {
	prev := d.current
	next := input.Report
	d.current = next

	if prev.Equal(next) {
		return nil
	}

	held := next.Codes()
	var events []Event

	for _, c := range prev.Codes() {
		if !next.Contains(c) {
			events = append(events, Event{
				Timestamp: input.Time,
				Type:      EventKeyUp,
				Code:      c,
				Held:      held,
			})
			d.eventCounts.Up++
		}
	}

	for _, c := range held {
		if !prev.Contains(c) {
			events = append(events, Event{
				Timestamp: input.Time,
				Type:      EventKeyDown,
				Code:      c,
				Held:      held,
			})
			d.eventCounts.Down++
			d.eventCounts.Presses[c.String()]++
		}
	}

	return events
}

// Reset forgets held keys without emitting events. Used when the host
// disconnects: it has released everything on its side.
func (d *Detector) Reset() {
	d.current = keys.Report{}
}

// Current returns the last processed report.
func (d *Detector) Current() keys.Report {
	return d.current
}

// EventCountsSnapshot returns a copy of the counts safe to hand to other goroutines.
func (d *Detector) EventCountsSnapshot() EventCounts {
	out := EventCounts{
		Down:    d.eventCounts.Down,
		Up:      d.eventCounts.Up,
		Presses: make(map[string]int, len(d.eventCounts.Presses)),
	}
	for k, v := range d.eventCounts.Presses {
		out.Presses[k] = v
	}
	return out
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since the
// last heartbeat (or startup). Returns nil if the interval has not elapsed,
// or if interval is <= 0 (disabled).
func (d *Detector) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}

	if now.Sub(d.lastHeartbeat) < interval {
		return nil
	}

	d.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(d.startTime),
		Counts:    d.EventCountsSnapshot(),
	}
}
