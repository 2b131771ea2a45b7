// Package poller samples the two button lines on a fixed tick and hands one
// key report per tick to the HID sink while a host is connected.
package poller

import (
	"context"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sweeney/arrow-keys/internal/gpio"
	"github.com/sweeney/arrow-keys/internal/hid"
	"github.com/sweeney/arrow-keys/internal/keys"
)

// State is the poll loop's lifecycle state.
type State string

const (
	StateIdle    State = "IDLE"
	StatePolling State = "POLLING"
)

// Config holds the poll timing and the code reported for each line.
type Config struct {
	// StartupDelay elapses once before the first sample.
	StartupDelay time.Duration
	// Period is the fixed tick interval.
	Period time.Duration
	CodeA  keys.Code
	CodeB  keys.Code
}

// DefaultConfig returns a 1 s startup delay, 20 ms ticks and left/right arrows.
func DefaultConfig() Config {
	return Config{
		StartupDelay: 1000 * time.Millisecond,
		Period:       20 * time.Millisecond,
		CodeA:        keys.CodeLeftArrow,
		CodeB:        keys.CodeRightArrow,
	}
}

// Observer is told about every report handed to the sink.
// It is called on the poll goroutine and must not block.
type Observer interface {
	Observe(report keys.Report, at time.Time)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(report keys.Report, at time.Time)

// Observe calls f.
func (f ObserverFunc) Observe(report keys.Report, at time.Time) { f(report, at) }

// Stats counts tick outcomes since construction.
type Stats struct {
	Ticks      uint64 // every tick, connected or not
	Reports    uint64 // sink calls
	Skipped    uint64 // ticks skipped because no host was connected
	ReadErrors uint64
	SendErrors uint64
}

// Poller turns button levels into key reports.
type Poller struct {
	reader   gpio.Reader
	link     hid.Link
	sink     hid.Sink
	cfg      Config
	observer Observer

	state atomic.Value // State

	ticks      atomic.Uint64
	reports    atomic.Uint64
	skipped    atomic.Uint64
	readErrors atomic.Uint64
	sendErrors atomic.Uint64
}

// New creates a Poller in the IDLE state. link is only ever read.
func New(reader gpio.Reader, link hid.Link, sink hid.Sink, cfg Config) *Poller {
	p := &Poller{
		reader: reader,
		link:   link,
		sink:   sink,
		cfg:    cfg,
	}
	p.state.Store(StateIdle)
	return p
}

// SetObserver installs o. Must be called before Run.
func (p *Poller) SetObserver(o Observer) {
	p.observer = o
}

// State returns the current lifecycle state.
func (p *Poller) State() State {
	return p.state.Load().(State)
}

// Stats returns a snapshot of the tick counters.
func (p *Poller) Stats() Stats {
	return Stats{
		Ticks:      p.ticks.Load(),
		Reports:    p.reports.Load(),
		Skipped:    p.skipped.Load(),
		ReadErrors: p.readErrors.Load(),
		SendErrors: p.sendErrors.Load(),
	}
}

// Tick performs one poll iteration. It returns the report handed to the sink
// and true, or false if nothing was sent.
//
// While disconnected the lines are not read at all. While connected the
// report is always sent, including the empty "all keys up" report.
// A failing sink does not change what happens on later ticks.
func (p *Poller) Tick(now time.Time) (keys.Report, bool) {
	p.ticks.Add(1)

	if !p.link.IsConnected() {
		p.skipped.Add(1)
		return keys.Report{}, false
	}

	a, b, err := p.reader.Read()
	if err != nil {
		p.readErrors.Add(1)
		log.Printf("gpio read error: %v", err)
		return keys.Report{}, false
	}

	report := keys.Build(a, b, p.cfg.CodeA, p.cfg.CodeB)

	p.reports.Add(1)
	if err := p.sink.Send(report); err != nil {
		p.sendErrors.Add(1)
		log.Debugf("report %s not delivered: %v", report, err)
	}

	if p.observer != nil {
		p.observer.Observe(report, now)
	}
	return report, true
}

// Run waits out the startup delay, then ticks at the configured period until
// ctx is cancelled. It returns nil on cancellation.
func (p *Poller) Run(ctx context.Context, clk Clock) error {
	select {
	case <-ctx.Done():
		return nil
	case <-clk.After(p.cfg.StartupDelay):
	}

	p.state.Store(StatePolling)
	log.Printf("polling started: period=%v codes=%s/%s", p.cfg.Period, p.cfg.CodeA, p.cfg.CodeB)

	ticker := clk.NewTicker(p.cfg.Period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C():
			p.Tick(now)
		}
	}
}
