package gpio

import "errors"

// Sample is one scripted reading in logical form (true = pressed).
type Sample struct {
	A bool
	B bool
}

// Common samples.
var (
	Released  = Sample{}
	LeftOnly  = Sample{A: true}
	RightOnly = Sample{B: true}
	Both      = Sample{A: true, B: true}
)

// Hold repeats s for n ticks, for building scripts like
// Script(Hold(Released, 3), Hold(LeftOnly, 5)).
func Hold(s Sample, n int) []Sample {
	out := make([]Sample, n)
	for i := range out {
		out[i] = s
	}
	return out
}

// Script concatenates sample runs.
func Script(runs ...[]Sample) []Sample {
	var out []Sample
	for _, r := range runs {
		out = append(out, r...)
	}
	return out
}

var errClosed = errors.New("gpio: reader closed")

// FakeReader replays Samples one per Read and then keeps returning the last.
type FakeReader struct {
	Samples []Sample

	// ReadError, if set, fails every Read.
	ReadError error

	// Reads counts calls to Read, including failed ones.
	Reads int

	Closed bool

	index int
}

// NewFakeReader creates a FakeReader with the given samples.
func NewFakeReader(samples []Sample) *FakeReader {
	return &FakeReader{Samples: samples}
}

// Read returns the next scripted sample. A closed reader fails like a
// released line request would.
func (f *FakeReader) Read() (bool, bool, error) {
	f.Reads++

	switch {
	case f.Closed:
		return false, false, errClosed
	case f.ReadError != nil:
		return false, false, f.ReadError
	case len(f.Samples) == 0:
		return false, false, errors.New("gpio: no samples scripted")
	}

	s := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	return s.A, s.B, nil
}

func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}

// Reset rewinds the script and clears counters.
func (f *FakeReader) Reset() {
	f.index = 0
	f.Reads = 0
	f.Closed = false
}
