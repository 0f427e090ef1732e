package coff

import (
	"encoding/binary"
	"fmt"
	"io"
	"unicode/utf8"

	bin "github.com/wippyai/coffkit/coff/internal/binary"
	"github.com/wippyai/coffkit/errors"
)

// StringTable holds names longer than eight bytes as a blob of
// NUL-terminated entries. Offsets handed out are blob positions plus
// StringTableBias. Identical text added twice is stored twice.
type StringTable struct {
	blob bin.Buffer
}

// NewStringTable returns an empty string table.
func NewStringTable() *StringTable {
	return &StringTable{}
}

// Len returns the blob size, excluding the length prefix.
func (t *StringTable) Len() int {
	return t.blob.Len()
}

// Reset discards all entries.
func (t *StringTable) Reset() {
	t.blob.Reset()
}

// Add returns an inline name for text of up to eight UTF-8 bytes. Longer
// text is appended to the table and an offset name is returned.
func (t *StringTable) Add(text string) (Name, error) {
	if err := checkUTF8(text); err != nil {
		return Name{}, err
	}
	if len(text) <= NameFieldSize {
		return ShortName([]byte(text))
	}
	off, err := t.addLong(text)
	if err != nil {
		return Name{}, err
	}
	return OffsetName(off)
}

// AddLong appends text to the table regardless of its length and returns
// its offset.
func (t *StringTable) AddLong(text string) (uint32, error) {
	if err := checkUTF8(text); err != nil {
		return 0, err
	}
	return t.addLong(text)
}

func (t *StringTable) addLong(text string) (uint32, error) {
	off := uint64(t.blob.Len()) + StringTableBias
	if off > MaxNameOffset {
		return 0, errors.Overflow(errors.PhaseConstruct, []string{"string table"}, off, "name offset")
	}
	t.blob.Append([]byte(text))
	t.blob.AppendByte(0)
	return uint32(off), nil
}

func checkUTF8(text string) error {
	if utf8.ValidString(text) {
		return nil
	}
	return errors.New(errors.PhaseConstruct, errors.KindInvalidInput).
		Path("string table").
		Value(text).
		Detail("name is not valid UTF-8").
		Build()
}

// Lookup returns the entry starting at offset.
func (t *StringTable) Lookup(offset uint32) (string, error) {
	if offset < StringTableBias {
		return "", errors.New(errors.PhaseDecode, errors.KindOutOfBounds).
			Path("string table").
			Value(offset).
			Detail("offset %d falls in the length prefix", offset).
			Build()
	}
	start := int(offset - StringTableBias)
	if start >= t.blob.Len() {
		return "", errors.OutOfBounds(errors.PhaseDecode, []string{"string table"}, start, t.blob.Len())
	}
	// an unterminated final entry runs to the end of the blob
	end := t.blob.IndexByte(0, start)
	if end < 0 {
		end = t.blob.Len()
	}
	raw, err := t.blob.Slice(start, end-start)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(raw) {
		return "", errors.InvalidData(errors.PhaseDecode, []string{"string table"},
			fmt.Sprintf("entry at offset %d is not valid UTF-8", offset))
	}
	return string(raw), nil
}

// Resolve returns the text of n, consulting the table for offset names.
func (t *StringTable) Resolve(n Name) (string, error) {
	switch n.Mode() {
	case NameShort:
		return n.String(), nil
	case NameOffset:
		return t.Lookup(n.Offset())
	}
	return "", errors.InvalidInput(errors.PhaseDecode, "uninitialized name")
}

// WriteTo writes the little-endian blob length followed by the blob.
func (t *StringTable) WriteTo(w io.Writer) (int64, error) {
	var prefix [4]byte
	binary.LittleEndian.PutUint32(prefix[:], uint32(t.blob.Len()))
	n, err := w.Write(prefix[:])
	if err != nil {
		return int64(n), err
	}
	m, err := w.Write(t.blob.Bytes())
	return int64(n + m), err
}

// ReadStringTable reads a serialized string table: a little-endian length
// followed by that many bytes.
func ReadStringTable(r io.Reader) (*StringTable, error) {
	var prefix [4]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return nil, errors.New(errors.PhaseDecode, errors.KindOutOfBounds).
			Path("string table", "length").
			Cause(err).
			Detail("truncated length prefix").
			Build()
	}
	size := binary.LittleEndian.Uint32(prefix[:])
	t := NewStringTable()
	if size == 0 {
		return t, nil
	}
	// the prefix is untrusted, so the blob grows with what is actually read
	data, err := io.ReadAll(io.LimitReader(r, int64(size)))
	if err != nil {
		return nil, errors.New(errors.PhaseDecode, errors.KindOutOfBounds).
			Path("string table", "blob").
			Value(size).
			Cause(err).
			Detail("reading blob of %d bytes", size).
			Build()
	}
	if uint32(len(data)) < size {
		return nil, errors.New(errors.PhaseDecode, errors.KindOutOfBounds).
			Path("string table", "blob").
			Value(size).
			Cause(io.ErrUnexpectedEOF).
			Detail("truncated blob of %d bytes, have %d", size, len(data)).
			Build()
	}
	t.blob.Append(data)
	return t, nil
}

// Entries returns every entry in blob order with its offset.
func (t *StringTable) Entries() []StringEntry {
	var out []StringEntry
	data := t.blob.Bytes()
	start := 0
	for start < len(data) {
		end := t.blob.IndexByte(0, start)
		if end < 0 {
			end = len(data)
		}
		out = append(out, StringEntry{
			Offset: uint32(start + StringTableBias),
			Text:   string(data[start:end]),
		})
		start = end + 1
	}
	return out
}

// StringEntry is one string table entry.
type StringEntry struct {
	Text   string
	Offset uint32
}
