package coffkit

import (
	"fmt"
	"io"
)

// Sink is an output that can report its write position and overwrite bytes
// it has already written.
type Sink interface {
	io.Writer
	// Offset returns the number of bytes written so far.
	Offset() int64
	// PatchAt overwrites len(p) bytes at off. The range must lie within
	// bytes already written.
	PatchAt(p []byte, off int64) error
}

// SeekSink adapts an io.WriteSeeker. Offsets are relative to the seeker's
// position when the sink was created.
type SeekSink struct {
	w    io.WriteSeeker
	base int64
	pos  int64
	size int64
}

// NewSeekSink creates a sink at the current position of w.
func NewSeekSink(w io.WriteSeeker) (*SeekSink, error) {
	base, err := w.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}
	return &SeekSink{w: w, base: base}, nil
}

func (s *SeekSink) Write(p []byte) (int, error) {
	n, err := s.w.Write(p)
	s.pos += int64(n)
	if s.pos > s.size {
		s.size = s.pos
	}
	return n, err
}

// Offset returns the current position relative to the creation position.
func (s *SeekSink) Offset() int64 {
	return s.pos
}

// PatchAt seeks to off, writes p and seeks back to the end of the written
// data.
func (s *SeekSink) PatchAt(p []byte, off int64) error {
	if off < 0 || off+int64(len(p)) > s.size {
		return fmt.Errorf("patch [%d,%d) outside %d written bytes", off, off+int64(len(p)), s.size)
	}
	if _, err := s.w.Seek(s.base+off, io.SeekStart); err != nil {
		return err
	}
	if _, err := s.w.Write(p); err != nil {
		return err
	}
	_, err := s.w.Seek(s.base+s.pos, io.SeekStart)
	return err
}

// StagingBuffer is an in-memory sink. Once encoding is done its contents can
// be streamed to any io.Writer.
type StagingBuffer struct {
	data []byte
}

// NewStagingBuffer creates a staging buffer with the given initial capacity.
func NewStagingBuffer(capacity int) *StagingBuffer {
	return &StagingBuffer{data: make([]byte, 0, capacity)}
}

func (b *StagingBuffer) Write(p []byte) (int, error) {
	b.data = append(b.data, p...)
	return len(p), nil
}

// Offset returns the number of buffered bytes.
func (b *StagingBuffer) Offset() int64 {
	return int64(len(b.data))
}

// PatchAt overwrites buffered bytes at off.
func (b *StagingBuffer) PatchAt(p []byte, off int64) error {
	if off < 0 || off+int64(len(p)) > int64(len(b.data)) {
		return fmt.Errorf("patch [%d,%d) outside %d buffered bytes", off, off+int64(len(p)), len(b.data))
	}
	copy(b.data[off:], p)
	return nil
}

// Bytes returns the buffered data. The slice aliases the buffer.
func (b *StagingBuffer) Bytes() []byte {
	return b.data
}

// Len returns the number of buffered bytes.
func (b *StagingBuffer) Len() int {
	return len(b.data)
}

// WriteTo streams the buffered data to w.
func (b *StagingBuffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(b.data)
	return int64(n), err
}
