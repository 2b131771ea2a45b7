package main

import (
	"errors"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/sweeney/arrow-keys/internal/config"
	"github.com/sweeney/arrow-keys/internal/i2c"
)

func runDemo(t *testing.T, bus *i2c.FakeBus, d config.DisplayConfig, ticks int) error {
	t.Helper()
	tick := make(chan time.Time)
	sig := make(chan os.Signal)
	errCh := make(chan error, 1)

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	n := 0
	now := func() time.Time {
		n++
		return start.Add(time.Duration(n) * time.Second)
	}

	go func() { errCh <- run(bus, d, now, tick, sig) }()
	for i := 0; i < ticks; i++ {
		select {
		case tick <- time.Time{}:
		case err := <-errCh:
			return err
		}
	}
	select {
	case sig <- syscall.SIGTERM:
	case err := <-errCh:
		return err
	}
	return <-errCh
}

// dataWrites counts frame data transfers (control byte 0x40).
func dataWrites(bus *i2c.FakeBus) int {
	n := 0
	for _, w := range bus.Writes() {
		if w[0] == 0x40 {
			n++
		}
	}
	return n
}

func TestRunDrawsAndPowersOff(t *testing.T) {
	bus := &i2c.FakeBus{}
	d := config.Default().Display

	if err := runDemo(t, bus, d, 2); err != nil {
		t.Fatalf("run: %v", err)
	}

	// 8 pages each for: init clear, first draw, two ticks, final clear
	if got := dataWrites(bus); got != 8*5 {
		t.Errorf("data writes: got %d, want %d", got, 8*5)
	}

	w := bus.Writes()
	last := w[len(w)-1]
	if len(last) != 2 || last[0] != 0x00 || last[1] != 0xAE {
		t.Errorf("last write should power the panel off, got % X", last)
	}
	if bus.Txs[0].Addr != d.Address {
		t.Errorf("address: got 0x%02X", bus.Txs[0].Addr)
	}
}

func TestRunInitFailure(t *testing.T) {
	bus := &i2c.FakeBus{Err: errors.New("nack")}

	err := runDemo(t, bus, config.Default().Display, 0)
	var ie *i2c.Error
	if !errors.As(err, &ie) {
		t.Fatalf("expected *i2c.Error, got %v", err)
	}
}

func TestRunRejectsBadSize(t *testing.T) {
	d := config.Default().Display
	d.Width = 64
	if err := runDemo(t, &i2c.FakeBus{}, d, 0); err == nil {
		t.Fatal("expected error for unsupported size")
	}
}

func TestRunWithQRCode128x32(t *testing.T) {
	bus := &i2c.FakeBus{}
	d := config.Default().Display
	d.Height = 32
	d.QRText = "http://10.0.0.2/"

	if err := runDemo(t, bus, d, 1); err != nil {
		t.Fatalf("run: %v", err)
	}
	// 4 pages each for: init clear, first draw, one tick, final clear
	if got := dataWrites(bus); got != 4*4 {
		t.Errorf("data writes: got %d, want %d", got, 4*4)
	}
}
