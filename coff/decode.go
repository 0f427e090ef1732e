package coff

import (
	bin "github.com/wippyai/coffkit/coff/internal/binary"
	"github.com/wippyai/coffkit/errors"
)

// ParseFileHeader decodes the file header at the start of data.
func ParseFileHeader(data []byte) (*FileHeader, error) {
	r, err := recordReader(data, FileHeaderSize, "file header")
	if err != nil {
		return nil, err
	}
	var h FileHeader
	m, _ := r.ReadU16()
	h.Machine = MachineType(m)
	h.NumberOfSections, _ = r.ReadU16()
	h.TimeDateStamp, _ = r.ReadU32()
	h.PointerToSymbolTable, _ = r.ReadU32()
	h.NumberOfSymbols, _ = r.ReadU32()
	h.SizeOfOptionalHeader, _ = r.ReadU16()
	c, _ := r.ReadU16()
	h.Characteristics = FileFlags(c)
	return &h, nil
}

// ParseSectionHeader decodes a section header at the start of data.
func ParseSectionHeader(data []byte) (*SectionHeader, error) {
	r, err := recordReader(data, SectionHeaderSize, "section header")
	if err != nil {
		return nil, err
	}
	var h SectionHeader
	h.Name, _ = r.ReadField8()
	h.VirtualSize, _ = r.ReadU32()
	h.VirtualAddress, _ = r.ReadU32()
	h.SizeOfRawData, _ = r.ReadU32()
	h.PointerToRawData, _ = r.ReadU32()
	h.PointerToRelocations, _ = r.ReadU32()
	h.PointerToLineNumbers, _ = r.ReadU32()
	h.NumberOfRelocations, _ = r.ReadU16()
	h.NumberOfLineNumbers, _ = r.ReadU16()
	c, _ := r.ReadU32()
	h.Characteristics = SectionFlags(c)
	return &h, nil
}

// ParseSymbolRecord decodes the primary record of a symbol table entry.
func ParseSymbolRecord(data []byte) (*SymbolRecord, error) {
	r, err := recordReader(data, SymbolRecordSize, "symbol record")
	if err != nil {
		return nil, err
	}
	var s SymbolRecord
	s.Name, _ = r.ReadField8()
	s.Value, _ = r.ReadU32()
	s.SectionNumber, _ = r.ReadI16()
	base, _ := r.ReadByte()
	complexType, _ := r.ReadByte()
	s.Type = SymbolType{Base: BaseType(base), Complex: ComplexType(complexType)}
	class, _ := r.ReadByte()
	s.StorageClass = StorageClass(class)
	s.NumberOfAuxSymbols, _ = r.ReadByte()
	return &s, nil
}

// ParseRelocation decodes a relocation record.
func ParseRelocation(data []byte) (RawRelocation, error) {
	r, err := recordReader(data, RelocationSize, "relocation")
	if err != nil {
		return RawRelocation{}, err
	}
	var rel RawRelocation
	rel.VirtualAddress, _ = r.ReadU32()
	rel.SymbolIndex, _ = r.ReadU32()
	t, _ := r.ReadU16()
	rel.Type = RelocationType(t)
	return rel, nil
}

// SymbolName decodes the name of s, consulting t for long names.
func (s *SymbolRecord) SymbolName(t *StringTable) (string, error) {
	n, err := NameFromSymbolField(s.Name)
	if err != nil {
		return "", err
	}
	return t.Resolve(n)
}

// SectionName decodes the name of h, consulting t for long names.
func (h *SectionHeader) SectionName(t *StringTable) (string, error) {
	return t.Resolve(NameFromSectionField(h.Name))
}

// recordReader checks that data holds a full record of size bytes, so the
// fixed-width reads that follow cannot fail.
func recordReader(data []byte, size int, record string) (*bin.Reader, error) {
	if len(data) < size {
		return nil, errors.ShortRead([]string{record}, size, len(data))
	}
	return bin.NewReader(data[:size]), nil
}
