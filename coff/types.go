package coff

import (
	"strconv"

	"github.com/wippyai/coffkit/errors"
)

// Relocation asks the linker to patch a reference at VirtualAddress within
// its section once Symbol's final address is known.
type Relocation struct {
	Symbol         *Symbol
	VirtualAddress uint32
	Type           RelocationType
}

// RawRelocation is a decoded relocation record. SymbolIndex is the
// zero-based symbol table slot.
type RawRelocation struct {
	VirtualAddress uint32
	SymbolIndex    uint32
	Type           RelocationType
}

// SectionSpec describes a section to construct.
type SectionSpec struct {
	Name            string
	Data            []byte
	VirtualAddress  uint32
	Characteristics SectionFlags
}

// Section is a named region of raw data with its relocations. A Section is
// immutable once constructed by NewSection or once its Builder is built.
type Section struct {
	name            string
	data            []byte
	relocs          []Relocation
	builder         *Builder
	virtualAddress  uint32
	characteristics SectionFlags
}

// NewSection creates a section from spec and relocs. Both the data and the
// relocation list are copied.
func NewSection(spec SectionSpec, relocs ...Relocation) (*Section, error) {
	for i, r := range relocs {
		if r.Symbol == nil {
			return nil, errors.NilPointer(errors.PhaseConstruct,
				[]string{"section " + spec.Name, "relocation " + strconv.Itoa(i)}, "symbol")
		}
	}
	s := newSection(spec)
	s.relocs = append([]Relocation(nil), relocs...)
	return s, nil
}

func newSection(spec SectionSpec) *Section {
	return &Section{
		name:            spec.Name,
		data:            append([]byte(nil), spec.Data...),
		virtualAddress:  spec.VirtualAddress,
		characteristics: spec.Characteristics,
	}
}

// Name returns the section name.
func (s *Section) Name() string { return s.name }

// VirtualAddress returns the section's virtual address.
func (s *Section) VirtualAddress() uint32 { return s.virtualAddress }

// VirtualSize returns the length of the raw data.
func (s *Section) VirtualSize() int { return len(s.data) }

// Characteristics returns the section flags.
func (s *Section) Characteristics() SectionFlags { return s.characteristics }

// Data returns a copy of the raw data.
func (s *Section) Data() []byte { return append([]byte(nil), s.data...) }

// Relocations returns a copy of the relocation list.
func (s *Section) Relocations() []Relocation {
	return append([]Relocation(nil), s.relocs...)
}

// NumberOfRelocations returns the relocation count.
func (s *Section) NumberOfRelocations() int { return len(s.relocs) }

// NumberOfLineNumbers is always 0; line-number records are not generated.
func (s *Section) NumberOfLineNumbers() int { return 0 }

// SymbolSpec describes a symbol to construct. Section is nil for undefined
// and absolute symbols.
type SymbolSpec struct {
	Section *Section
	Name    string
	Aux     []AuxRecord
	Value   uint32
	Type    SymbolType
	Class   StorageClass
}

// Symbol is a named location or external reference.
type Symbol struct {
	section *Section
	name    string
	aux     []AuxRecord
	value   uint32
	typ     SymbolType
	class   StorageClass
}

// NewSymbol creates a symbol from spec. It fails when spec carries more
// auxiliary records than fit the one-byte count field.
func NewSymbol(spec SymbolSpec) (*Symbol, error) {
	if len(spec.Aux) > MaxAuxRecords {
		return nil, errors.New(errors.PhaseConstruct, errors.KindOverflow).
			Path("symbol " + spec.Name).
			Field("NumberOfAuxSymbols").
			Value(len(spec.Aux)).
			Detail("%d auxiliary records exceed %d", len(spec.Aux), MaxAuxRecords).
			Build()
	}
	for i, a := range spec.Aux {
		if a == nil {
			return nil, errors.NilPointer(errors.PhaseConstruct,
				[]string{"symbol " + spec.Name, "aux " + strconv.Itoa(i)}, "auxiliary record")
		}
	}
	return &Symbol{
		section: spec.Section,
		name:    spec.Name,
		aux:     append([]AuxRecord(nil), spec.Aux...),
		value:   spec.Value,
		typ:     spec.Type,
		class:   spec.Class,
	}, nil
}

// Name returns the symbol name.
func (s *Symbol) Name() string { return s.name }

// Value returns the symbol value, usually an offset into its section.
func (s *Symbol) Value() uint32 { return s.value }

// Section returns the owning section, or nil.
func (s *Symbol) Section() *Section { return s.section }

// Type returns the symbol type.
func (s *Symbol) Type() SymbolType { return s.typ }

// StorageClass returns the symbol's storage class.
func (s *Symbol) StorageClass() StorageClass { return s.class }

// Aux returns a copy of the auxiliary records.
func (s *Symbol) Aux() []AuxRecord { return append([]AuxRecord(nil), s.aux...) }

// NumberOfAuxSymbols returns the auxiliary record count.
func (s *Symbol) NumberOfAuxSymbols() int { return len(s.aux) }

// ObjectFile is the top of the object model.
type ObjectFile struct {
	sections        []*Section
	symbols         []*Symbol
	machine         MachineType
	characteristics FileFlags
}

// NewObjectFile creates an object file. Owning sections of symbols are
// checked against sections when the file is encoded, not here.
func NewObjectFile(machine MachineType, characteristics FileFlags, sections []*Section, symbols []*Symbol) (*ObjectFile, error) {
	for i, s := range sections {
		if s == nil {
			return nil, errors.NilPointer(errors.PhaseConstruct, []string{"section " + strconv.Itoa(i)}, "section")
		}
	}
	for i, s := range symbols {
		if s == nil {
			return nil, errors.NilPointer(errors.PhaseConstruct, []string{"symbol " + strconv.Itoa(i)}, "symbol")
		}
	}
	return &ObjectFile{
		sections:        append([]*Section(nil), sections...),
		symbols:         append([]*Symbol(nil), symbols...),
		machine:         machine,
		characteristics: characteristics,
	}, nil
}

// FromCode wraps code in a single executable "code" section of an I386
// object with no symbols.
func FromCode(code []byte) *ObjectFile {
	text := newSection(SectionSpec{
		Name:            "code",
		Data:            code,
		Characteristics: SectionMemExecute | SectionMemRead | SectionCntCode,
	})
	return &ObjectFile{
		sections: []*Section{text},
		machine:  MachineI386,
	}
}

// Machine returns the target machine.
func (f *ObjectFile) Machine() MachineType { return f.machine }

// Characteristics returns the file flags.
func (f *ObjectFile) Characteristics() FileFlags { return f.characteristics }

// Sections returns a copy of the section list.
func (f *ObjectFile) Sections() []*Section { return append([]*Section(nil), f.sections...) }

// Symbols returns a copy of the symbol list.
func (f *ObjectFile) Symbols() []*Symbol { return append([]*Symbol(nil), f.symbols...) }

// SectionIndex returns the 1-based position of s in the file, or 0 when s
// does not belong to it.
func (f *ObjectFile) SectionIndex(s *Section) int {
	for i, e := range f.sections {
		if e == s {
			return i + 1
		}
	}
	return 0
}

// SymbolCount returns the number of symbol table slots: every symbol plus
// its auxiliary records.
func (f *ObjectFile) SymbolCount() int {
	n := len(f.symbols)
	for _, s := range f.symbols {
		n += len(s.aux)
	}
	return n
}

// Builder assembles an ObjectFile whose sections and symbols refer to each
// other. Sections it creates accept relocations until Build is called.
type Builder struct {
	sections        []*Section
	symbols         []*Symbol
	machine         MachineType
	characteristics FileFlags
	sealed          bool
}

// NewBuilder creates a builder for the given machine and file flags.
func NewBuilder(machine MachineType, characteristics FileFlags) *Builder {
	return &Builder{machine: machine, characteristics: characteristics}
}

// AddSection creates a section owned by the builder and appends it to the
// file's section list.
func (b *Builder) AddSection(spec SectionSpec) (*Section, error) {
	if err := b.checkOpen("AddSection"); err != nil {
		return nil, err
	}
	s := newSection(spec)
	s.builder = b
	b.sections = append(b.sections, s)
	return s, nil
}

// AddSymbol creates a symbol and appends it to the file's symbol list.
func (b *Builder) AddSymbol(spec SymbolSpec) (*Symbol, error) {
	if err := b.checkOpen("AddSymbol"); err != nil {
		return nil, err
	}
	sym, err := NewSymbol(spec)
	if err != nil {
		return nil, err
	}
	b.symbols = append(b.symbols, sym)
	return sym, nil
}

// AddRelocation appends r to a section created by this builder.
func (b *Builder) AddRelocation(s *Section, r Relocation) error {
	if err := b.checkOpen("AddRelocation"); err != nil {
		return err
	}
	if s == nil {
		return errors.NilPointer(errors.PhaseConstruct, []string{"relocation"}, "section")
	}
	if s.builder != b {
		return errors.InvalidInput(errors.PhaseConstruct,
			"section "+s.name+" was not created by this builder")
	}
	if r.Symbol == nil {
		return errors.NilPointer(errors.PhaseConstruct, []string{"section " + s.name, "relocation"}, "symbol")
	}
	s.relocs = append(s.relocs, r)
	return nil
}

// Build seals the builder and returns the object file. Sections created by
// the builder no longer accept relocations afterwards.
func (b *Builder) Build() (*ObjectFile, error) {
	if err := b.checkOpen("Build"); err != nil {
		return nil, err
	}
	b.sealed = true
	for _, s := range b.sections {
		s.builder = nil
	}
	return &ObjectFile{
		sections:        b.sections,
		symbols:         b.symbols,
		machine:         b.machine,
		characteristics: b.characteristics,
	}, nil
}

func (b *Builder) checkOpen(op string) error {
	if b.sealed {
		return errors.InvalidInput(errors.PhaseConstruct, op+" after Build")
	}
	return nil
}
