package coff

import (
	bin "github.com/wippyai/coffkit/coff/internal/binary"
)

// FileHeader is the 20-byte record at the start of an object file.
type FileHeader struct {
	Machine              MachineType
	NumberOfSections     uint16
	TimeDateStamp        uint32
	PointerToSymbolTable uint32
	NumberOfSymbols      uint32
	SizeOfOptionalHeader uint16
	Characteristics      FileFlags
}

// PointerToSymbolTable is patched once the section bodies are written.
const fileHeaderSymbolTableOffset = 8

func (h *FileHeader) appendTo(b *bin.Buffer) {
	putU16(b, uint16(h.Machine))
	putU16(b, h.NumberOfSections)
	putU32(b, h.TimeDateStamp)
	putU32(b, h.PointerToSymbolTable)
	putU32(b, h.NumberOfSymbols)
	putU16(b, h.SizeOfOptionalHeader)
	putU16(b, uint16(h.Characteristics))
}

// MarshalBinary returns the 20-byte encoding of h.
func (h *FileHeader) MarshalBinary() ([]byte, error) {
	b := bin.NewBuffer(FileHeaderSize)
	h.appendTo(b)
	return b.Bytes(), nil
}

// SectionHeader is the 40-byte section directory entry.
type SectionHeader struct {
	Name                 [NameFieldSize]byte
	VirtualSize          uint32
	VirtualAddress       uint32
	SizeOfRawData        uint32
	PointerToRawData     uint32
	PointerToRelocations uint32
	PointerToLineNumbers uint32
	NumberOfRelocations  uint16
	NumberOfLineNumbers  uint16
	Characteristics      SectionFlags
}

// Offsets of the patched pointer fields within a SectionHeader.
const (
	sectionRawDataOffset     = 20
	sectionRelocsOffset      = 24
	sectionLineNumbersOffset = 28
)

func (h *SectionHeader) appendTo(b *bin.Buffer) {
	b.Append(h.Name[:])
	putU32(b, h.VirtualSize)
	putU32(b, h.VirtualAddress)
	putU32(b, h.SizeOfRawData)
	putU32(b, h.PointerToRawData)
	putU32(b, h.PointerToRelocations)
	putU32(b, h.PointerToLineNumbers)
	putU16(b, h.NumberOfRelocations)
	putU16(b, h.NumberOfLineNumbers)
	putU32(b, uint32(h.Characteristics))
}

// MarshalBinary returns the 40-byte encoding of h.
func (h *SectionHeader) MarshalBinary() ([]byte, error) {
	b := bin.NewBuffer(SectionHeaderSize)
	h.appendTo(b)
	return b.Bytes(), nil
}

// SymbolRecord is the 18-byte primary record of a symbol table entry.
// SectionNumber is 1-based; 0 means undefined, negative values are the
// special absolute and debug numbers.
type SymbolRecord struct {
	Name               [NameFieldSize]byte
	Value              uint32
	SectionNumber      int16
	Type               SymbolType
	StorageClass       StorageClass
	NumberOfAuxSymbols uint8
}

func (r *SymbolRecord) appendTo(b *bin.Buffer) {
	b.Append(r.Name[:])
	putU32(b, r.Value)
	putU16(b, uint16(r.SectionNumber))
	b.AppendByte(byte(r.Type.Base))
	b.AppendByte(byte(r.Type.Complex))
	b.AppendByte(byte(r.StorageClass))
	b.AppendByte(r.NumberOfAuxSymbols)
}

// MarshalBinary returns the 18-byte encoding of r.
func (r *SymbolRecord) MarshalBinary() ([]byte, error) {
	b := bin.NewBuffer(SymbolRecordSize)
	r.appendTo(b)
	return b.Bytes(), nil
}

func (r *RawRelocation) appendTo(b *bin.Buffer) {
	putU32(b, r.VirtualAddress)
	putU32(b, r.SymbolIndex)
	putU16(b, uint16(r.Type))
}

// MarshalBinary returns the 10-byte encoding of r.
func (r *RawRelocation) MarshalBinary() ([]byte, error) {
	b := bin.NewBuffer(RelocationSize)
	r.appendTo(b)
	return b.Bytes(), nil
}

// Fixed-width values cannot overflow their own width.
func putU16(b *bin.Buffer, v uint16) { _ = b.AppendUint(uint64(v), 2) }
func putU32(b *bin.Buffer, v uint32) { _ = b.AppendUint(uint64(v), 4) }
