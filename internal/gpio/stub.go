//go:build !linux

package gpio

// RealReader needs the Linux GPIO character device; elsewhere it cannot be built.
type RealReader struct{}

// NewRealReader always fails with ErrUnsupported.
func NewRealReader(chipName string, pinA, pinB int) (*RealReader, error) {
	return nil, ErrUnsupported
}

func (r *RealReader) Read() (bool, bool, error) {
	return false, false, ErrUnsupported
}

func (r *RealReader) Close() error {
	return nil
}
