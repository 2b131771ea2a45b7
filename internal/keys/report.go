package keys

import "strings"

// MaxKeys is the number of monitored input lines and therefore the report capacity.
const MaxKeys = 2

// Report is the instantaneous set of pressed keys for one tick.
// Slots at or beyond Count are unused; Count bounds validity, not a sentinel.
type Report struct {
	// Modifiers is the HID modifier bitmap. Always zero for button input.
	Modifiers uint8

	codes [MaxKeys]Code
	count int
}

// Add appends code in scan order. It reports false if the report is full
// or code is CodeNone.
func (r *Report) Add(code Code) bool {
	if code == CodeNone || r.count == MaxKeys {
		return false
	}
	r.codes[r.count] = code
	r.count++
	return true
}

// Count returns the number of active codes.
func (r Report) Count() int {
	return r.count
}

// Codes returns the active codes in scan order. The slice is a copy.
func (r Report) Codes() []Code {
	out := make([]Code, r.count)
	copy(out, r.codes[:r.count])
	return out
}

// Contains reports whether code is active in r.
func (r Report) Contains(code Code) bool {
	for i := 0; i < r.count; i++ {
		if r.codes[i] == code {
			return true
		}
	}
	return false
}

// Equal compares modifiers and the active codes in order.
func (r Report) Equal(o Report) bool {
	if r.Modifiers != o.Modifiers || r.count != o.count {
		return false
	}
	for i := 0; i < r.count; i++ {
		if r.codes[i] != o.codes[i] {
			return false
		}
	}
	return true
}

// String renders the report as "[LEFT_ARROW RIGHT_ARROW]".
func (r Report) String() string {
	parts := make([]string, r.count)
	for i := 0; i < r.count; i++ {
		parts[i] = r.codes[i].String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Build assembles a report from the two line states.
// Line A is always scanned before line B so simultaneous presses have a fixed order.
func Build(a, b bool, codeA, codeB Code) Report {
	var r Report
	if a {
		r.Add(codeA)
	}
	if b {
		r.Add(codeB)
	}
	return r
}
