package poller

import (
	"sync"
	"time"
)

// fakeClock is a manually advanced Clock. Timer deliveries block until the
// poll loop receives them, so once Advance returns every tick up to the new
// time has been taken by the loop.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer

	// registered receives one value per After/NewTicker call.
	registered chan struct{}
}

type fakeTimer struct {
	at     time.Time
	period time.Duration
	ch     chan time.Time
	stop   chan struct{}
	done   bool
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start, registered: make(chan struct{}, 16)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	t := c.add(d, 0)
	return t.ch
}

func (c *fakeClock) NewTicker(d time.Duration) Ticker {
	return &fakeTicker{clock: c, timer: c.add(d, d)}
}

func (c *fakeClock) add(d, period time.Duration) *fakeTimer {
	c.mu.Lock()
	t := &fakeTimer{
		at:     c.now.Add(d),
		period: period,
		ch:     make(chan time.Time),
		stop:   make(chan struct{}),
	}
	c.timers = append(c.timers, t)
	c.mu.Unlock()
	c.registered <- struct{}{}
	return t
}

// Advance moves time forward by d, delivering every due tick in order.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	end := c.now.Add(d)
	for {
		var next *fakeTimer
		for _, t := range c.timers {
			if t.done || t.at.After(end) {
				continue
			}
			if next == nil || t.at.Before(next.at) {
				next = t
			}
		}
		if next == nil {
			break
		}
		c.now = next.at
		at := next.at
		if next.period > 0 {
			next.at = next.at.Add(next.period)
		} else {
			next.done = true
		}
		c.mu.Unlock()
		select {
		case next.ch <- at:
		case <-next.stop:
		}
		c.mu.Lock()
	}
	c.now = end
	c.mu.Unlock()
}

type fakeTicker struct {
	clock *fakeClock
	timer *fakeTimer
	once  sync.Once
}

func (t *fakeTicker) C() <-chan time.Time { return t.timer.ch }

func (t *fakeTicker) Stop() {
	t.once.Do(func() {
		t.clock.mu.Lock()
		t.timer.done = true
		t.clock.mu.Unlock()
		close(t.timer.stop)
	})
}
