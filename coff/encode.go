package coff

import (
	"encoding/binary"
	"io"
	"math"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/wippyai/coffkit"
	bin "github.com/wippyai/coffkit/coff/internal/binary"
	"github.com/wippyai/coffkit/errors"
)

// Encode writes f to sink as a COFF object file. Header fields that depend
// on later data are written as placeholders and patched through the sink.
// Errors from the sink are returned unchanged; after any error the sink
// holds a partial file.
func Encode(sink coffkit.Sink, f *ObjectFile) error {
	if sink == nil {
		return errors.NilPointer(errors.PhaseEncode, nil, "sink")
	}
	if f == nil {
		return errors.NilPointer(errors.PhaseEncode, nil, "object file")
	}
	e := &encoder{
		sink:   sink,
		file:   f,
		base:   sink.Offset(),
		strtab: NewStringTable(),
		buf:    bin.NewBuffer(SectionHeaderSize),
		log:    Logger(),
	}
	return e.encode()
}

// Bytes encodes f into memory.
func (f *ObjectFile) Bytes() ([]byte, error) {
	stage := coffkit.NewStagingBuffer(FileHeaderSize)
	if err := Encode(stage, f); err != nil {
		return nil, err
	}
	return stage.Bytes(), nil
}

// WriteTo encodes f in memory and then streams it to w, which need not
// support seeking.
func (f *ObjectFile) WriteTo(w io.Writer) (int64, error) {
	stage := coffkit.NewStagingBuffer(FileHeaderSize)
	if err := Encode(stage, f); err != nil {
		return 0, err
	}
	return stage.WriteTo(w)
}

// WriteFile creates or truncates path and encodes f into it.
func WriteFile(path string, f *ObjectFile) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()
	sink, err := coffkit.NewSeekSink(out)
	if err != nil {
		return err
	}
	return Encode(sink, f)
}

type sectionRefs struct {
	rawData     int64
	relocs      int64
	lineNumbers int64
}

type encoder struct {
	sink   coffkit.Sink
	file   *ObjectFile
	strtab *StringTable
	buf    *bin.Buffer
	log    *zap.Logger
	slots  map[*Symbol]uint32
	base   int64
}

func (e *encoder) encode() error {
	f := e.file
	e.log.Debug("encoding object file",
		zap.Stringer("machine", f.machine),
		zap.Int("sections", len(f.sections)),
		zap.Int("symbols", len(f.symbols)))

	if err := e.assignSlots(); err != nil {
		return err
	}

	symtabRef, err := e.writeFileHeader()
	if err != nil {
		return err
	}

	refs := make([]sectionRefs, len(f.sections))
	for i, s := range f.sections {
		if refs[i], err = e.writeSectionHeader(i, s); err != nil {
			return err
		}
	}

	for i, s := range f.sections {
		if err := e.writeSectionBody(i, s, refs[i]); err != nil {
			return err
		}
	}

	if err := e.patchPosition(symtabRef, "PointerToSymbolTable"); err != nil {
		return err
	}
	for i, sym := range f.symbols {
		if err := e.writeSymbol(i, sym); err != nil {
			return err
		}
	}

	if _, err := e.strtab.WriteTo(e.sink); err != nil {
		return err
	}

	e.log.Debug("encoded object file",
		zap.Int64("size", e.sink.Offset()-e.base),
		zap.Int("string_table", e.strtab.Len()))
	return nil
}

// assignSlots maps every symbol to its zero-based symbol table slot. Each
// auxiliary record takes a slot right after its symbol.
func (e *encoder) assignSlots() error {
	e.slots = make(map[*Symbol]uint32, len(e.file.symbols))
	var slot uint64
	for i, sym := range e.file.symbols {
		if slot > math.MaxUint32 {
			return errors.Overflow(errors.PhaseEncode, symbolPath(i, sym), slot, "symbol index")
		}
		if _, dup := e.slots[sym]; !dup {
			e.slots[sym] = uint32(slot)
		}
		slot += 1 + uint64(len(sym.aux))
	}
	return nil
}

func (e *encoder) writeFileHeader() (int64, error) {
	f := e.file
	count, err := narrowU16(len(f.sections), []string{"file header"}, "NumberOfSections")
	if err != nil {
		return 0, err
	}
	total := uint64(f.SymbolCount())
	if total > math.MaxUint32 {
		return 0, errors.Overflow(errors.PhaseEncode, []string{"file header"}, total, "NumberOfSymbols")
	}

	h := FileHeader{
		Machine:          f.machine,
		NumberOfSections: count,
		NumberOfSymbols:  uint32(total),
		Characteristics:  f.characteristics,
	}
	ref := e.sink.Offset() + fileHeaderSymbolTableOffset
	e.buf.Reset()
	h.appendTo(e.buf)
	return ref, e.flush()
}

func (e *encoder) writeSectionHeader(i int, s *Section) (sectionRefs, error) {
	path := sectionPath(i, s)

	name, err := e.strtab.Add(s.name)
	if err != nil {
		return sectionRefs{}, err
	}
	field, err := name.SectionField()
	if err != nil {
		return sectionRefs{}, err
	}
	size, err := narrowU32(int64(len(s.data)), path, "SizeOfRawData")
	if err != nil {
		return sectionRefs{}, err
	}
	nrelocs, err := narrowU16(len(s.relocs), path, "NumberOfRelocations")
	if err != nil {
		return sectionRefs{}, err
	}

	h := SectionHeader{
		Name:                field,
		VirtualSize:         size,
		VirtualAddress:      s.virtualAddress,
		SizeOfRawData:       size,
		NumberOfRelocations: nrelocs,
		NumberOfLineNumbers: uint16(s.NumberOfLineNumbers()),
		Characteristics:     s.characteristics,
	}
	start := e.sink.Offset()
	refs := sectionRefs{
		rawData:     start + sectionRawDataOffset,
		relocs:      start + sectionRelocsOffset,
		lineNumbers: start + sectionLineNumbersOffset,
	}
	e.buf.Reset()
	h.appendTo(e.buf)
	return refs, e.flush()
}

func (e *encoder) writeSectionBody(i int, s *Section, refs sectionRefs) error {
	path := sectionPath(i, s)

	if err := e.patchPosition(refs.rawData, "PointerToRawData"); err != nil {
		return err
	}
	if _, err := e.sink.Write(s.data); err != nil {
		return err
	}

	if err := e.patchPosition(refs.relocs, "PointerToRelocations"); err != nil {
		return err
	}
	e.buf.Reset()
	for j, r := range s.relocs {
		slot, ok := e.slots[r.Symbol]
		if !ok {
			return errors.Invariant(append(path, "relocation "+strconv.Itoa(j)),
				"relocation references a symbol outside the object file")
		}
		raw := RawRelocation{
			VirtualAddress: r.VirtualAddress,
			SymbolIndex:    slot,
			Type:           r.Type,
		}
		raw.appendTo(e.buf)
	}
	if err := e.flush(); err != nil {
		return err
	}

	if err := e.patchPosition(refs.lineNumbers, "PointerToLineNumbers"); err != nil {
		return err
	}
	e.buf.Reset()
	e.buf.AppendZeros(LineNumberBlockSize)
	if err := e.flush(); err != nil {
		return err
	}

	e.log.Debug("wrote section",
		zap.String("name", s.name),
		zap.Int("size", len(s.data)),
		zap.Int("relocations", len(s.relocs)))
	return nil
}

func (e *encoder) writeSymbol(i int, sym *Symbol) error {
	path := symbolPath(i, sym)

	var number uint16
	if sym.section != nil {
		idx := e.file.SectionIndex(sym.section)
		if idx == 0 {
			return errors.Invariant(path, "owning section "+strconv.Quote(sym.section.name)+" is not in the object file")
		}
		n, err := narrowU16(idx, path, "SectionNumber")
		if err != nil {
			return err
		}
		number = n
	}
	naux, err := narrowU8(len(sym.aux), path, "NumberOfAuxSymbols")
	if err != nil {
		return err
	}
	name, err := e.strtab.Add(sym.name)
	if err != nil {
		return err
	}

	rec := SymbolRecord{
		Name:               name.SymbolField(),
		Value:              sym.value,
		SectionNumber:      int16(number),
		Type:               sym.typ,
		StorageClass:       sym.class,
		NumberOfAuxSymbols: naux,
	}
	e.buf.Reset()
	rec.appendTo(e.buf)
	for j, aux := range sym.aux {
		if err := e.appendAux(append(path, "aux "+strconv.Itoa(j)), aux); err != nil {
			return err
		}
	}
	return e.flush()
}

func (e *encoder) appendAux(path []string, aux AuxRecord) error {
	switch a := aux.(type) {
	case *SectionDefinition:
		if a == nil || a.target == nil {
			return errors.NilPointer(errors.PhaseEncode, path, "section definition target")
		}
		length, err := narrowU32(int64(len(a.target.data)), path, "Length")
		if err != nil {
			return err
		}
		nrelocs, err := narrowU16(len(a.target.relocs), path, "NumberOfRelocations")
		if err != nil {
			return err
		}
		putU32(e.buf, length)
		putU16(e.buf, nrelocs)
		putU16(e.buf, uint16(a.target.NumberOfLineNumbers()))
		putU32(e.buf, 0) // checksum
		putU16(e.buf, a.number)
		e.buf.AppendZeros(4)
	case FileName:
		e.buf.Append(a.field[:])
	default:
		return errors.Unsupported(errors.PhaseEncode, "auxiliary record type")
	}
	return nil
}

// patchPosition overwrites the u32 at ref with the current file position.
func (e *encoder) patchPosition(ref int64, field string) error {
	pos, err := narrowU32(e.sink.Offset()-e.base, nil, field)
	if err != nil {
		return err
	}
	var p [4]byte
	binary.LittleEndian.PutUint32(p[:], pos)
	return e.sink.PatchAt(p[:], ref)
}

func (e *encoder) flush() error {
	if e.buf.Len() == 0 {
		return nil
	}
	_, err := e.sink.Write(e.buf.Bytes())
	return err
}

func narrowU8(v int, path []string, field string) (uint8, error) {
	if v < 0 || v > math.MaxUint8 {
		return 0, errors.Overflow(errors.PhaseEncode, path, v, field)
	}
	return uint8(v), nil
}

func narrowU16(v int, path []string, field string) (uint16, error) {
	if v < 0 || v > math.MaxUint16 {
		return 0, errors.Overflow(errors.PhaseEncode, path, v, field)
	}
	return uint16(v), nil
}

func narrowU32(v int64, path []string, field string) (uint32, error) {
	if v < 0 || v > math.MaxUint32 {
		return 0, errors.Overflow(errors.PhaseEncode, path, v, field)
	}
	return uint32(v), nil
}

func sectionPath(i int, s *Section) []string {
	return []string{"section " + strconv.Itoa(i) + " " + strconv.Quote(s.name)}
}

func symbolPath(i int, s *Symbol) []string {
	return []string{"symbol " + strconv.Itoa(i) + " " + strconv.Quote(s.name)}
}
