package tjson

import (
	"errors"
	"io"
)

// ErrSink is returned by FuncSink when its callback reports failure.
var ErrSink = errors.New("tjson: sink failed")

// FuncSource adapts a byte callback to io.ByteReader. The callback returns a
// byte in [0,255], or a negative value at end of stream or on error. It is
// called at most once per byte the reader needs.
type FuncSource func() int

// ReadByte implements io.ByteReader.
func (f FuncSource) ReadByte() (byte, error) {
	c := f()
	if c < 0 {
		return 0, io.EOF
	}
	return byte(c), nil
}

// FuncSink adapts a write callback to io.Writer. The callback returns the
// number of bytes it accepted, or a negative value on error. Short writes are
// reported with a nil error; Writer keeps calling until every byte is taken.
type FuncSink func(p []byte) int

// Write implements io.Writer.
func (f FuncSink) Write(p []byte) (int, error) {
	n := f(p)
	if n < 0 {
		return 0, ErrSink
	}
	if n > len(p) {
		n = len(p)
	}
	return n, nil
}

// BytesSource reads from an in-memory slice.
type BytesSource struct {
	data []byte
	off  int
}

// NewBytesSource returns a source over data.
func NewBytesSource(data []byte) *BytesSource {
	return &BytesSource{data: data}
}

// ReadByte implements io.ByteReader.
func (s *BytesSource) ReadByte() (byte, error) {
	if s.off >= len(s.data) {
		return 0, io.EOF
	}
	c := s.data[s.off]
	s.off++
	return c, nil
}

// Offset returns the number of bytes consumed so far.
func (s *BytesSource) Offset() int {
	return s.off
}

// Reset points the source at data.
func (s *BytesSource) Reset(data []byte) {
	s.data = data
	s.off = 0
}
