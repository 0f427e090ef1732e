package coff

import (
	"github.com/wippyai/coffkit/errors"
)

// CodeSymbol is a label in a buffer of machine code.
type CodeSymbol struct {
	Name string
	// Offset is the label's position in the code.
	Offset uint32
	// External symbols are defined in another object.
	External bool
	// Public symbols are visible to other objects.
	Public bool
}

// CodeRelocation is a reference from the code to a CodeSymbol.
type CodeRelocation struct {
	Symbol string
	Offset uint32
	// Bits is the operand width; only 32 is supported. 0 means 32.
	Bits int
	// Relative references are PC-relative.
	Relative bool
}

type codeConfig struct {
	sourceFile string
}

// CodeOption configures NewCodeObject.
type CodeOption func(*codeConfig)

// WithSourceFile sets the name recorded in the .file symbol.
func WithSourceFile(name string) CodeOption {
	return func(c *codeConfig) {
		c.sourceFile = name
	}
}

// NewCodeObject lays out code the way gcc does for a single translation
// unit: .text, .data and .bss sections, a .file symbol, one static symbol
// per section carrying its section definition, then the code symbols.
// Relocations are attached to .text in symbol order.
func NewCodeObject(machine MachineType, code []byte, symbols []CodeSymbol, relocs []CodeRelocation, opts ...CodeOption) (*ObjectFile, error) {
	cfg := codeConfig{sourceFile: "fake"}
	for _, opt := range opts {
		opt(&cfg)
	}

	var align SectionFlags
	switch machine {
	case MachineAMD64:
		align = SectionAlign16Bytes
	case MachineI386:
		align = SectionAlign4Bytes
	default:
		return nil, errors.Unsupported(errors.PhaseConstruct, "code objects for machine "+machine.String())
	}

	b := NewBuilder(machine, 0)
	text, _ := b.AddSection(SectionSpec{
		Name:            ".text",
		Data:            code,
		Characteristics: SectionMemExecute | SectionMemRead | SectionCntCode | align,
	})
	data, _ := b.AddSection(SectionSpec{
		Name:            ".data",
		Characteristics: SectionMemRead | SectionMemWrite | SectionCntInitializedData | align,
	})
	bss, _ := b.AddSection(SectionSpec{
		Name:            ".bss",
		Characteristics: SectionMemRead | SectionMemWrite | SectionCntUninitializedData | align,
	})

	fileAux, err := FileNameRecords(cfg.sourceFile)
	if err != nil {
		return nil, err
	}
	if _, err := b.AddSymbol(SymbolSpec{
		Name:    ".file",
		Section: text,
		Class:   ClassFile,
		Aux:     fileAux,
	}); err != nil {
		return nil, err
	}

	for i, s := range []*Section{text, data, bss} {
		def, err := NewSectionDefinition(s, uint16(i+1))
		if err != nil {
			return nil, err
		}
		if _, err := b.AddSymbol(SymbolSpec{
			Name:    s.Name(),
			Section: s,
			Class:   ClassStatic,
			Aux:     []AuxRecord{def},
		}); err != nil {
			return nil, err
		}
	}

	known := make(map[string]bool, len(symbols))
	for _, cs := range symbols {
		known[cs.Name] = true
	}
	for _, r := range relocs {
		if !known[r.Symbol] {
			return nil, errors.NotFound(errors.PhaseConstruct, "relocation symbol", r.Symbol)
		}
	}

	for _, cs := range symbols {
		spec := SymbolSpec{
			Name:  cs.Name,
			Value: cs.Offset,
			Class: ClassStatic,
		}
		if cs.External || cs.Public {
			spec.Class = ClassExternal
		}
		if !cs.External {
			spec.Section = text
		}
		sym, err := b.AddSymbol(spec)
		if err != nil {
			return nil, err
		}

		for _, r := range relocs {
			if r.Symbol != cs.Name {
				continue
			}
			typ, err := codeRelocationType(machine, r)
			if err != nil {
				return nil, err
			}
			if err := b.AddRelocation(text, Relocation{
				Symbol:         sym,
				VirtualAddress: r.Offset,
				Type:           typ,
			}); err != nil {
				return nil, err
			}
		}
	}

	return b.Build()
}

func codeRelocationType(machine MachineType, r CodeRelocation) (RelocationType, error) {
	if r.Bits != 0 && r.Bits != 32 {
		return 0, errors.New(errors.PhaseConstruct, errors.KindUnsupported).
			Path("relocation " + r.Symbol).
			Value(r.Bits).
			Detail("%d-bit relocations are not supported", r.Bits).
			Build()
	}
	if machine == MachineAMD64 {
		if r.Relative {
			return RelAMD64Rel32, nil
		}
		return RelAMD64Addr32, nil
	}
	if r.Relative {
		return RelI386Rel32, nil
	}
	return RelI386Dir32, nil
}
