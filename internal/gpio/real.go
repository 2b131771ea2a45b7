//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealReader reads buttons from actual hardware using the Linux GPIO character device.
type RealReader struct {
	chip  *gpiocdev.Chip
	aLine *gpiocdev.Line
	bLine *gpiocdev.Line
}

// NewRealReader requests both lines as pulled-up, active-low inputs on chipName.
func NewRealReader(chipName string, pinA, pinB int) (*RealReader, error) {
	if pinA == pinB {
		return nil, fmt.Errorf("pins A and B must differ (both %d)", pinA)
	}

	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chipName, err)
	}

	// The kernel inverts active-low lines, so Value() == 1 means pressed.
	aLine, err := chip.RequestLine(pinA, gpiocdev.AsInput, gpiocdev.WithPullUp, gpiocdev.AsActiveLow,
		gpiocdev.WithConsumer("arrow-keys"))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request A pin %d: %w", pinA, err)
	}

	bLine, err := chip.RequestLine(pinB, gpiocdev.AsInput, gpiocdev.WithPullUp, gpiocdev.AsActiveLow,
		gpiocdev.WithConsumer("arrow-keys"))
	if err != nil {
		aLine.Close()
		chip.Close()
		return nil, fmt.Errorf("request B pin %d: %w", pinB, err)
	}

	return &RealReader{
		chip:  chip,
		aLine: aLine,
		bLine: bLine,
	}, nil
}

// Read returns the logical states of A and B. Never cached across calls.
func (r *RealReader) Read() (bool, bool, error) {
	aVal, err := r.aLine.Value()
	if err != nil {
		return false, false, fmt.Errorf("read A pin: %w", err)
	}

	bVal, err := r.bLine.Value()
	if err != nil {
		return false, false, fmt.Errorf("read B pin: %w", err)
	}

	return aVal == 1, bVal == 1, nil
}

// Close releases GPIO resources.
// Lines are left as pulled-up inputs so an idle button never floats.
func (r *RealReader) Close() error {
	var errs []error

	for name, line := range map[string]*gpiocdev.Line{"A": r.aLine, "B": r.bLine} {
		if line == nil {
			continue
		}
		if err := line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullUp); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure %s pin: %w", name, err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s pin: %w", name, err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
