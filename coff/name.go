package coff

import (
	"bytes"
	"encoding/binary"
	"strconv"

	"github.com/wippyai/coffkit/errors"
)

// NameMode tells how a Name is stored.
type NameMode uint8

const (
	// NameShort is a name stored inline in the 8-byte field.
	NameShort NameMode = iota + 1
	// NameOffset is a name stored in the string table.
	NameOffset
)

func (m NameMode) String() string {
	switch m {
	case NameShort:
		return "short"
	case NameOffset:
		return "offset"
	}
	return "invalid"
}

// Name is the logical content of an 8-byte name field: either the inline
// bytes or an offset into the string table. The zero value is not valid;
// use ShortName or OffsetName.
type Name struct {
	short  [NameFieldSize]byte
	offset uint32
	mode   NameMode
}

// ShortName returns an inline name. b is NUL-padded to eight bytes.
func ShortName(b []byte) (Name, error) {
	if len(b) > NameFieldSize {
		return Name{}, errors.New(errors.PhaseConstruct, errors.KindInvalidInput).
			Path("name").
			Field("short name").
			Value(len(b)).
			Detail("%d bytes exceeds %d", len(b), NameFieldSize).
			Build()
	}
	n := Name{mode: NameShort}
	copy(n.short[:], b)
	return n, nil
}

// OffsetName returns a name that refers to a string table offset.
func OffsetName(offset uint32) (Name, error) {
	if offset > MaxNameOffset {
		return Name{}, errors.New(errors.PhaseConstruct, errors.KindInvalidInput).
			Path("name").
			Field("string table offset").
			Value(offset).
			Detail("offset %d exceeds %d", offset, MaxNameOffset).
			Build()
	}
	return Name{mode: NameOffset, offset: offset}, nil
}

// Mode reports how the name is stored.
func (n Name) Mode() NameMode {
	return n.mode
}

// IsShort reports whether the name is stored inline.
func (n Name) IsShort() bool {
	return n.mode == NameShort
}

// Offset returns the string table offset of an offset name, or 0.
func (n Name) Offset() uint32 {
	return n.offset
}

// Short returns the 8-byte inline field of a short name.
func (n Name) Short() [NameFieldSize]byte {
	return n.short
}

// String returns the inline text up to its first NUL, or "/offset" for a
// string table name.
func (n Name) String() string {
	switch n.mode {
	case NameShort:
		return string(trimNUL(n.short[:]))
	case NameOffset:
		return "/" + strconv.FormatUint(uint64(n.offset), 10)
	}
	return ""
}

// NameFromSymbolField decodes the name field of a symbol record. Four
// leading zero bytes mark a little-endian string table offset in the
// remaining four.
func NameFromSymbolField(f [NameFieldSize]byte) (Name, error) {
	if f[0] == 0 && f[1] == 0 && f[2] == 0 && f[3] == 0 {
		return OffsetName(binary.LittleEndian.Uint32(f[4:]))
	}
	return Name{mode: NameShort, short: f}, nil
}

// NameFromSectionField decodes the name field of a section header. A field
// reading "/" followed by a decimal number refers to the string table;
// anything else is an inline name.
func NameFromSectionField(f [NameFieldSize]byte) Name {
	text := trimNUL(f[:])
	if len(text) > 1 && text[0] == '/' {
		if v, err := strconv.ParseUint(string(text[1:]), 10, 32); err == nil {
			if n, err := OffsetName(uint32(v)); err == nil {
				return n
			}
		}
	}
	return Name{mode: NameShort, short: f}
}

// SymbolField encodes n for a symbol record.
func (n Name) SymbolField() [NameFieldSize]byte {
	var f [NameFieldSize]byte
	switch n.mode {
	case NameShort:
		f = n.short
	case NameOffset:
		binary.LittleEndian.PutUint32(f[4:], n.offset)
	}
	return f
}

// SectionField encodes n for a section header.
func (n Name) SectionField() ([NameFieldSize]byte, error) {
	var f [NameFieldSize]byte
	switch n.mode {
	case NameShort:
		f = n.short
	case NameOffset:
		text := "/" + strconv.FormatUint(uint64(n.offset), 10)
		if len(text) > NameFieldSize {
			return f, errors.Overflow(errors.PhaseEncode, []string{"section name"}, n.offset, "8-byte name field")
		}
		copy(f[:], text)
	default:
		return f, errors.InvalidInput(errors.PhaseEncode, "uninitialized name")
	}
	return f, nil
}

func trimNUL(b []byte) []byte {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return b[:i]
	}
	return b
}
