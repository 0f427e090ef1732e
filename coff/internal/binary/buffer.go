package binary

import (
	"bytes"
	"strconv"

	"github.com/wippyai/coffkit/errors"
)

// MaxWidth is the widest integer AppendUint and AppendInt accept.
const MaxWidth = 8

// Buffer is a growable, append-only byte sequence with width-checked
// little-endian integer appends.
type Buffer struct {
	data []byte
}

// NewBuffer creates a Buffer with the given initial capacity.
func NewBuffer(capacity int) *Buffer {
	return &Buffer{data: make([]byte, 0, capacity)}
}

// Len returns the number of bytes in the buffer.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Bytes returns the buffer contents. The slice aliases the buffer until the
// next mutation.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// At returns the byte at index i.
func (b *Buffer) At(i int) byte {
	return b.data[i]
}

// Reset empties the buffer, keeping its capacity.
func (b *Buffer) Reset() {
	b.data = b.data[:0]
}

// AppendByte appends a single byte.
func (b *Buffer) AppendByte(v byte) {
	b.data = append(b.data, v)
}

// Append appends raw bytes.
func (b *Buffer) Append(p []byte) {
	b.data = append(b.data, p...)
}

// AppendZeros appends n zero bytes.
func (b *Buffer) AppendZeros(n int) {
	for i := 0; i < n; i++ {
		b.data = append(b.data, 0)
	}
}

// AppendUint appends v as a width-byte little-endian unsigned integer.
// It fails without appending anything when v needs more than width bytes.
func (b *Buffer) AppendUint(v uint64, width int) error {
	if err := checkWidth(width); err != nil {
		return err
	}

	var tmp [MaxWidth]byte
	rest := v
	for i := 0; i < width; i++ {
		tmp[i] = byte(rest)
		rest >>= 8
	}
	if rest != 0 {
		return errors.Overflow(errors.PhaseConstruct, nil, v, widthName("u", width))
	}

	b.data = append(b.data, tmp[:width]...)
	return nil
}

// AppendInt appends v as a width-byte little-endian two's complement integer.
// The final byte carries the sign: v fits only if the bits shifted out past
// it are a pure sign extension and the final byte's top bit agrees with the
// sign of v.
func (b *Buffer) AppendInt(v int64, width int) error {
	if err := checkWidth(width); err != nil {
		return err
	}

	var tmp [MaxWidth]byte
	rest := v
	for i := 0; i < width-1; i++ {
		tmp[i] = byte(rest)
		rest >>= 8
	}
	last := byte(rest)
	tmp[width-1] = last
	rest >>= 8

	negative := v < 0
	signBit := last&0x80 != 0
	if (rest != 0 && rest != -1) || negative != signBit {
		return errors.Overflow(errors.PhaseConstruct, nil, v, widthName("s", width))
	}

	b.data = append(b.data, tmp[:width]...)
	return nil
}

// PutU16 overwrites two bytes at pos with v in little-endian order.
func (b *Buffer) PutU16(pos int, v uint16) error {
	if pos < 0 || pos+2 > len(b.data) {
		return errors.OutOfBounds(errors.PhaseConstruct, nil, pos, len(b.data))
	}
	b.data[pos] = byte(v)
	b.data[pos+1] = byte(v >> 8)
	return nil
}

// PutU32 overwrites four bytes at pos with v in little-endian order.
func (b *Buffer) PutU32(pos int, v uint32) error {
	if pos < 0 || pos+4 > len(b.data) {
		return errors.OutOfBounds(errors.PhaseConstruct, nil, pos, len(b.data))
	}
	for i := 0; i < 4; i++ {
		b.data[pos+i] = byte(v >> (8 * i))
	}
	return nil
}

// Slice returns a copy of n bytes starting at pos.
func (b *Buffer) Slice(pos, n int) ([]byte, error) {
	if pos < 0 || pos > len(b.data) {
		return nil, errors.OutOfBounds(errors.PhaseConstruct, []string{"position"}, pos, len(b.data))
	}
	if n < 0 || pos+n > len(b.data) {
		return nil, errors.OutOfBounds(errors.PhaseConstruct, []string{"length"}, pos+n, len(b.data))
	}
	out := make([]byte, n)
	copy(out, b.data[pos:pos+n])
	return out, nil
}

// Remove deletes n bytes starting at pos.
func (b *Buffer) Remove(pos, n int) error {
	if pos < 0 || pos > len(b.data) {
		return errors.OutOfBounds(errors.PhaseConstruct, []string{"position"}, pos, len(b.data))
	}
	if n < 0 || pos+n > len(b.data) {
		return errors.OutOfBounds(errors.PhaseConstruct, []string{"length"}, pos+n, len(b.data))
	}
	b.data = append(b.data[:pos], b.data[pos+n:]...)
	return nil
}

// Insert inserts p at pos, shifting the following bytes right.
func (b *Buffer) Insert(pos int, p []byte) error {
	if pos < 0 || pos > len(b.data) {
		return errors.OutOfBounds(errors.PhaseConstruct, []string{"position"}, pos, len(b.data))
	}
	if len(p) == 0 {
		return nil
	}
	grown := make([]byte, 0, len(b.data)+len(p))
	grown = append(grown, b.data[:pos]...)
	grown = append(grown, p...)
	grown = append(grown, b.data[pos:]...)
	b.data = grown
	return nil
}

// IndexByte returns the index of the first v at or after start, or -1.
func (b *Buffer) IndexByte(v byte, start int) int {
	if start < 0 || start >= len(b.data) {
		return -1
	}
	i := bytes.IndexByte(b.data[start:], v)
	if i < 0 {
		return -1
	}
	return start + i
}

func checkWidth(width int) error {
	if width <= 0 || width > MaxWidth {
		return errors.New(errors.PhaseConstruct, errors.KindInvalidInput).
			Value(width).
			Detail("integer width %d outside 1..%d", width, MaxWidth).
			Build()
	}
	return nil
}

func widthName(prefix string, width int) string {
	return prefix + strconv.Itoa(8*width)
}
