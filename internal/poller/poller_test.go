package poller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sweeney/arrow-keys/internal/gpio"
	"github.com/sweeney/arrow-keys/internal/hid"
	"github.com/sweeney/arrow-keys/internal/keys"
)

var start = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func newTestPoller(samples []gpio.Sample, connected bool) (*Poller, *gpio.FakeReader, *hid.FakeTransport) {
	reader := gpio.NewFakeReader(samples)
	transport := hid.NewFakeTransport(connected)
	return New(reader, transport, transport, DefaultConfig()), reader, transport
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.StartupDelay != time.Second {
		t.Errorf("StartupDelay: got %v, want 1s", cfg.StartupDelay)
	}
	if cfg.Period != 20*time.Millisecond {
		t.Errorf("Period: got %v, want 20ms", cfg.Period)
	}
	if cfg.CodeA != keys.CodeLeftArrow || cfg.CodeB != keys.CodeRightArrow {
		t.Errorf("codes: got %s/%s", cfg.CodeA, cfg.CodeB)
	}
}

func TestTickScenarios(t *testing.T) {
	tests := []struct {
		name   string
		sample gpio.Sample
		want   []keys.Code
	}{
		{"A pressed", gpio.Sample{A: true}, []keys.Code{keys.CodeLeftArrow}},
		{"B pressed", gpio.Sample{B: true}, []keys.Code{keys.CodeRightArrow}},
		{"both pressed", gpio.Sample{A: true, B: true}, []keys.Code{keys.CodeLeftArrow, keys.CodeRightArrow}},
		{"both released", gpio.Sample{}, []keys.Code{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _, tr := newTestPoller([]gpio.Sample{tt.sample}, true)

			report, sent := p.Tick(start)
			if !sent {
				t.Fatal("expected report to be sent while connected")
			}

			if len(tr.Reports) != 1 {
				t.Fatalf("expected 1 sink call, got %d", len(tr.Reports))
			}
			if !tr.Reports[0].Equal(report) {
				t.Errorf("sink got %s, Tick returned %s", tr.Reports[0], report)
			}

			got := report.Codes()
			if report.Count() != len(tt.want) {
				t.Fatalf("count: got %d, want %d", report.Count(), len(tt.want))
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("code %d: got %s, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestTickReleasedStateIsSent(t *testing.T) {
	p, _, tr := newTestPoller([]gpio.Sample{{A: true}, {}}, true)

	p.Tick(start)
	p.Tick(start.Add(20 * time.Millisecond))

	if len(tr.Reports) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(tr.Reports))
	}
	if tr.Reports[1].Count() != 0 {
		t.Errorf("expected explicit all-up report, got %s", tr.Reports[1])
	}
	if tr.Payloads[1][2] != 0 {
		t.Errorf("expected empty key slot on wire, got % X", tr.Payloads[1])
	}
}

func TestTickDisconnectedSkipsSampling(t *testing.T) {
	samples := []gpio.Sample{{A: true, B: true}, {A: true}, {B: true}, {}}
	for _, s := range samples {
		p, reader, tr := newTestPoller([]gpio.Sample{s}, false)

		_, sent := p.Tick(start)
		if sent {
			t.Errorf("sample %+v: report sent while disconnected", s)
		}
		if tr.CallCount() != 0 {
			t.Errorf("sample %+v: sink called %d times while disconnected", s, tr.CallCount())
		}
		if reader.Reads != 0 {
			t.Errorf("sample %+v: lines read %d times while disconnected", s, reader.Reads)
		}
		if st := p.Stats(); st.Skipped != 1 || st.Ticks != 1 {
			t.Errorf("stats: got %+v", st)
		}
	}
}

func TestTickFollowsConnectionChanges(t *testing.T) {
	p, _, tr := newTestPoller([]gpio.Sample{{A: true}}, false)

	p.Tick(start)
	tr.SetConnected(true)
	p.Tick(start.Add(20 * time.Millisecond))
	p.Tick(start.Add(40 * time.Millisecond))
	tr.SetConnected(false)
	p.Tick(start.Add(60 * time.Millisecond))

	if len(tr.Reports) != 2 {
		t.Errorf("expected 2 reports (connected ticks only), got %d", len(tr.Reports))
	}
	st := p.Stats()
	if st.Ticks != 4 || st.Skipped != 2 || st.Reports != 2 {
		t.Errorf("stats: got %+v", st)
	}
}

func TestTickIdempotent(t *testing.T) {
	p, _, tr := newTestPoller([]gpio.Sample{{A: true, B: true}}, true)

	for i := 0; i < 500; i++ {
		p.Tick(start.Add(time.Duration(i) * 20 * time.Millisecond))
	}

	if len(tr.Reports) != 500 {
		t.Fatalf("expected 500 reports, got %d", len(tr.Reports))
	}
	first := tr.Reports[0]
	for i, r := range tr.Reports {
		if !r.Equal(first) {
			t.Fatalf("report %d drifted: got %s, want %s", i, r, first)
		}
	}
}

func TestTickSendErrorIgnored(t *testing.T) {
	p, _, tr := newTestPoller([]gpio.Sample{{A: true}}, true)
	tr.SendError = errors.New("link congested")

	_, sent := p.Tick(start)
	if !sent {
		t.Error("a failing sink should not change the tick outcome")
	}

	tr.SendError = nil
	p.Tick(start.Add(20 * time.Millisecond))

	if len(tr.Reports) != 1 {
		t.Errorf("expected the next tick to send normally, got %d reports", len(tr.Reports))
	}
	if tr.CallCount() != 2 {
		t.Errorf("expected one sink call per connected tick, got %d", tr.CallCount())
	}
	if st := p.Stats(); st.SendErrors != 1 {
		t.Errorf("SendErrors: got %d, want 1", st.SendErrors)
	}
}

func TestTickReadErrorSkipsReport(t *testing.T) {
	p, reader, tr := newTestPoller([]gpio.Sample{{A: true}}, true)
	reader.ReadError = errors.New("line gone")

	if _, sent := p.Tick(start); sent {
		t.Error("expected no report on read failure")
	}
	if tr.CallCount() != 0 {
		t.Errorf("sink called %d times", tr.CallCount())
	}
	if st := p.Stats(); st.ReadErrors != 1 {
		t.Errorf("ReadErrors: got %d, want 1", st.ReadErrors)
	}
}

func TestTickCustomCodes(t *testing.T) {
	reader := gpio.NewFakeReader([]gpio.Sample{{A: true, B: true}})
	tr := hid.NewFakeTransport(true)
	cfg := DefaultConfig()
	cfg.CodeA = keys.CodePageUp
	cfg.CodeB = keys.CodePageDown
	p := New(reader, tr, tr, cfg)

	report, _ := p.Tick(start)
	got := report.Codes()
	if got[0] != keys.CodePageUp || got[1] != keys.CodePageDown {
		t.Errorf("got %v", got)
	}
}

func TestObserverSeesSentReports(t *testing.T) {
	p, _, tr := newTestPoller([]gpio.Sample{{A: true}, {}}, true)

	var seen []keys.Report
	var times []time.Time
	p.SetObserver(ObserverFunc(func(r keys.Report, at time.Time) {
		seen = append(seen, r)
		times = append(times, at)
	}))

	p.Tick(start)
	tr.SetConnected(false)
	p.Tick(start.Add(20 * time.Millisecond))

	if len(seen) != 1 {
		t.Fatalf("expected 1 observation, got %d", len(seen))
	}
	if !times[0].Equal(start) {
		t.Errorf("observed time: got %v, want %v", times[0], start)
	}
}

// runPoller starts Run on a fake clock and returns a stop function that
// cancels the loop and waits for it to exit.
func runPoller(t *testing.T, p *Poller, clk *fakeClock) func() {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- p.Run(ctx, clk)
	}()
	<-clk.registered // startup delay timer
	return func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Run returned error: %v", err)
		}
	}
}

func TestRunTiming(t *testing.T) {
	p, _, tr := newTestPoller([]gpio.Sample{{A: true}}, true)
	clk := newFakeClock(start)

	var mu sync.Mutex
	var times []time.Time
	p.SetObserver(ObserverFunc(func(r keys.Report, at time.Time) {
		mu.Lock()
		times = append(times, at)
		mu.Unlock()
	}))

	stop := runPoller(t, p, clk)

	if p.State() != StateIdle {
		t.Errorf("state before startup delay: got %s, want IDLE", p.State())
	}

	clk.Advance(999 * time.Millisecond)
	if tr.CallCount() != 0 {
		t.Errorf("report sent before startup delay elapsed")
	}

	clk.Advance(1 * time.Millisecond)
	<-clk.registered // ticker
	if p.State() != StatePolling {
		t.Errorf("state after startup delay: got %s, want POLLING", p.State())
	}

	clk.Advance(200 * time.Millisecond)
	stop()

	mu.Lock()
	defer mu.Unlock()
	if len(times) != 10 {
		t.Fatalf("expected 10 ticks in 200ms, got %d", len(times))
	}
	first := times[0].Sub(start)
	if first < time.Second {
		t.Errorf("first report at %v, want >= 1s", first)
	}
	if first != 1020*time.Millisecond {
		t.Errorf("first report at %v, want 1.02s", first)
	}
	for i := 1; i < len(times); i++ {
		if gap := times[i].Sub(times[i-1]); gap != 20*time.Millisecond {
			t.Errorf("gap %d: got %v, want 20ms", i, gap)
		}
	}
}

func TestRunDisconnectedSendsNothing(t *testing.T) {
	p, reader, tr := newTestPoller([]gpio.Sample{{A: true, B: true}}, false)
	clk := newFakeClock(start)

	stop := runPoller(t, p, clk)
	clk.Advance(time.Second)
	<-clk.registered
	clk.Advance(time.Second)
	stop()

	if tr.CallCount() != 0 {
		t.Errorf("sink called %d times while disconnected", tr.CallCount())
	}
	if reader.Reads != 0 {
		t.Errorf("lines read %d times while disconnected", reader.Reads)
	}
	if st := p.Stats(); st.Ticks != 50 || st.Skipped != 50 {
		t.Errorf("stats: got %+v, want 50 skipped ticks", st)
	}
}

func TestRunCancelDuringStartupDelay(t *testing.T) {
	p, _, tr := newTestPoller([]gpio.Sample{{A: true}}, true)
	clk := newFakeClock(start)

	stop := runPoller(t, p, clk)
	clk.Advance(500 * time.Millisecond)
	stop()

	if p.State() != StateIdle {
		t.Errorf("state: got %s, want IDLE", p.State())
	}
	if tr.CallCount() != 0 {
		t.Errorf("sink called %d times", tr.CallCount())
	}
}
