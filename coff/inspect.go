package coff

import (
	"bytes"
	"fmt"

	bin "github.com/wippyai/coffkit/coff/internal/binary"
	"github.com/wippyai/coffkit/errors"
)

// Image is the record-level view of an encoded object file. Auxiliary
// records are kept as raw bytes.
type Image struct {
	Strings     *StringTable
	Sections    []SectionHeader
	Relocations [][]RawRelocation
	Symbols     []SymbolEntry
	Header      FileHeader
}

// SymbolEntry is a symbol record with the raw auxiliary records that follow
// it. Index is the record's symbol table slot.
type SymbolEntry struct {
	Aux    [][AuxRecordSize]byte
	Record SymbolRecord
	Index  uint32
}

// Inspect walks data with the decode primitives: file header, section
// directory, relocations, symbol table and string table. It does not
// validate anything beyond record bounds.
func Inspect(data []byte) (*Image, error) {
	r := bin.NewReader(data)
	img := &Image{}

	raw, err := r.ReadBytes(FileHeaderSize)
	if err != nil {
		return nil, r.WrapError("file header", err)
	}
	h, err := ParseFileHeader(raw)
	if err != nil {
		return nil, err
	}
	img.Header = *h
	if err := r.Seek(r.Position() + int(h.SizeOfOptionalHeader)); err != nil {
		return nil, r.WrapError("optional header", err)
	}

	img.Sections = make([]SectionHeader, 0, h.NumberOfSections)
	for i := 0; i < int(h.NumberOfSections); i++ {
		raw, err := r.ReadBytes(SectionHeaderSize)
		if err != nil {
			return nil, r.WrapError(fmt.Sprintf("section header %d", i), err)
		}
		sh, err := ParseSectionHeader(raw)
		if err != nil {
			return nil, err
		}
		img.Sections = append(img.Sections, *sh)
	}

	img.Relocations = make([][]RawRelocation, len(img.Sections))
	for i, sh := range img.Sections {
		if sh.NumberOfRelocations == 0 {
			continue
		}
		if err := r.Seek(int(sh.PointerToRelocations)); err != nil {
			return nil, r.WrapError(fmt.Sprintf("relocations of section %d", i), err)
		}
		relocs := make([]RawRelocation, 0, sh.NumberOfRelocations)
		for j := 0; j < int(sh.NumberOfRelocations); j++ {
			raw, err := r.ReadBytes(RelocationSize)
			if err != nil {
				return nil, r.WrapError(fmt.Sprintf("relocation %d of section %d", j, i), err)
			}
			rel, err := ParseRelocation(raw)
			if err != nil {
				return nil, err
			}
			relocs = append(relocs, rel)
		}
		img.Relocations[i] = relocs
	}

	if h.PointerToSymbolTable == 0 && h.NumberOfSymbols == 0 {
		img.Strings = NewStringTable()
		return img, nil
	}
	if err := r.Seek(int(h.PointerToSymbolTable)); err != nil {
		return nil, r.WrapError("symbol table", err)
	}
	for slot := uint32(0); slot < h.NumberOfSymbols; {
		raw, err := r.ReadBytes(SymbolRecordSize)
		if err != nil {
			return nil, r.WrapError(fmt.Sprintf("symbol %d", slot), err)
		}
		rec, err := ParseSymbolRecord(raw)
		if err != nil {
			return nil, err
		}
		entry := SymbolEntry{Index: slot, Record: *rec}
		for k := 0; k < int(rec.NumberOfAuxSymbols); k++ {
			raw, err := r.ReadBytes(AuxRecordSize)
			if err != nil {
				return nil, r.WrapError(fmt.Sprintf("aux %d of symbol %d", k, slot), err)
			}
			var aux [AuxRecordSize]byte
			copy(aux[:], raw)
			entry.Aux = append(entry.Aux, aux)
		}
		img.Symbols = append(img.Symbols, entry)
		slot += 1 + uint32(rec.NumberOfAuxSymbols)
	}

	start := r.Position()
	size, err := r.ReadU32()
	if err != nil {
		return nil, r.WrapError("string table length", err)
	}
	if int64(size) > int64(r.Remaining()) {
		return nil, r.WrapError("string table", errors.ShortRead([]string{"string table", "blob"}, int(size), r.Remaining()))
	}
	strs, err := ReadStringTable(bytes.NewReader(data[start:]))
	if err != nil {
		return nil, r.WrapError("string table", err)
	}
	img.Strings = strs
	return img, nil
}

// SectionData returns the raw data of section i.
func (img *Image) SectionData(data []byte, i int) ([]byte, error) {
	if i < 0 || i >= len(img.Sections) {
		return nil, fmt.Errorf("section %d out of range", i)
	}
	sh := img.Sections[i]
	r := bin.NewReader(data)
	if err := r.Seek(int(sh.PointerToRawData)); err != nil {
		return nil, r.WrapError("section data", err)
	}
	raw, err := r.ReadBytes(int(sh.SizeOfRawData))
	if err != nil {
		return nil, r.WrapError("section data", err)
	}
	return raw, nil
}
