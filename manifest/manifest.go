package manifest

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/coffkit/coff"
	"github.com/wippyai/coffkit/errors"
)

// Manifest is the YAML description of an object file.
type Manifest struct {
	Machine         string    `yaml:"machine"`
	Characteristics []string  `yaml:"characteristics,omitempty"`
	Sections        []Section `yaml:"sections,omitempty"`
	Symbols         []Symbol  `yaml:"symbols,omitempty"`
}

// Section describes one section. Data is hex, whitespace ignored; DataFile
// names a file relative to the manifest's directory. At most one is set.
type Section struct {
	Name            string       `yaml:"name"`
	Data            string       `yaml:"data,omitempty"`
	DataFile        string       `yaml:"data_file,omitempty"`
	Characteristics []string     `yaml:"characteristics,omitempty"`
	Relocations     []Relocation `yaml:"relocations,omitempty"`
	VirtualAddress  uint32       `yaml:"virtual_address,omitempty"`
}

// Relocation refers to a symbol by name. Type is a relocation name for the
// manifest's machine or a number.
type Relocation struct {
	Symbol string `yaml:"symbol"`
	Type   string `yaml:"type"`
	Offset uint32 `yaml:"offset"`
}

// Symbol describes one symbol. Section is empty for undefined and absolute
// symbols.
type Symbol struct {
	Name         string `yaml:"name"`
	Section      string `yaml:"section,omitempty"`
	StorageClass string `yaml:"storage_class,omitempty"`
	Type         *Type  `yaml:"type,omitempty"`
	Aux          []Aux  `yaml:"aux,omitempty"`
	Value        uint32 `yaml:"value,omitempty"`
}

// Type is a symbol type by name or number.
type Type struct {
	Base    string `yaml:"base,omitempty"`
	Complex string `yaml:"complex,omitempty"`
}

// Aux is one auxiliary entry. Exactly one field is set. A file name longer
// than one record expands to several.
type Aux struct {
	SectionDefinition *SectionDefinition `yaml:"section_definition,omitempty"`
	FileName          *string            `yaml:"file_name,omitempty"`
}

// SectionDefinition refers to a section by name. Number defaults to the
// section's 1-based index.
type SectionDefinition struct {
	Section string  `yaml:"section"`
	Number  *uint16 `yaml:"number,omitempty"`
}

type loader struct {
	readFile func(string) ([]byte, error)
	baseDir  string
}

// Option configures Load.
type Option func(*loader)

// WithBaseDir sets the directory data_file paths are relative to.
func WithBaseDir(dir string) Option {
	return func(l *loader) {
		l.baseDir = dir
	}
}

// WithReadFile replaces os.ReadFile for data_file lookups.
func WithReadFile(fn func(string) ([]byte, error)) Option {
	return func(l *loader) {
		l.readFile = fn
	}
}

// Parse decodes a manifest document. Unknown keys are rejected.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		if err == io.EOF {
			return nil, errors.Load("empty manifest", nil)
		}
		return nil, errors.Load("parse manifest", err)
	}
	return &m, nil
}

// Load parses a manifest and builds the object file it describes.
func Load(data []byte, opts ...Option) (*coff.ObjectFile, error) {
	m, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return m.Build(opts...)
}

// LoadFile loads a manifest from path. data_file entries are resolved
// against the manifest's directory.
func LoadFile(path string, opts ...Option) (*coff.ObjectFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Load("read manifest", err)
	}
	opts = append([]Option{WithBaseDir(filepath.Dir(path))}, opts...)
	return Load(data, opts...)
}

// Build resolves names in m and assembles the object file. Sections are
// created first, then symbols, then relocations, so any relocation may refer
// to any symbol. When names repeat, references resolve to the first.
func (m *Manifest) Build(opts ...Option) (*coff.ObjectFile, error) {
	l := &loader{readFile: os.ReadFile}
	for _, opt := range opts {
		opt(l)
	}

	machine, err := coff.ParseMachine(m.Machine)
	if err != nil {
		return nil, invalid([]string{"machine"}, err)
	}
	var fileFlags coff.FileFlags
	for _, name := range m.Characteristics {
		f, err := coff.ParseFileFlag(name)
		if err != nil {
			return nil, invalid([]string{"characteristics"}, err)
		}
		fileFlags |= f
	}

	b := coff.NewBuilder(machine, fileFlags)
	sections := make(map[string]*coff.Section, len(m.Sections))
	index := make(map[string]int, len(m.Sections))
	built := make([]*coff.Section, len(m.Sections))
	for i, s := range m.Sections {
		path := []string{"sections", s.Name}
		spec, err := l.sectionSpec(path, s)
		if err != nil {
			return nil, err
		}
		sec, err := b.AddSection(spec)
		if err != nil {
			return nil, err
		}
		built[i] = sec
		if _, dup := sections[s.Name]; !dup {
			sections[s.Name] = sec
			index[s.Name] = i + 1
		}
	}

	symbols := make(map[string]*coff.Symbol, len(m.Symbols))
	for _, s := range m.Symbols {
		path := []string{"symbols", s.Name}
		spec, err := symbolSpec(path, s, sections, index)
		if err != nil {
			return nil, err
		}
		sym, err := b.AddSymbol(spec)
		if err != nil {
			return nil, err
		}
		if _, dup := symbols[s.Name]; !dup {
			symbols[s.Name] = sym
		}
	}

	for i, s := range m.Sections {
		for j, r := range s.Relocations {
			path := []string{"sections", s.Name, fmt.Sprintf("relocations[%d]", j)}
			sym, ok := symbols[r.Symbol]
			if !ok {
				return nil, notFound(path, "symbol", r.Symbol)
			}
			typ, err := coff.ParseRelocationType(machine, r.Type)
			if err != nil {
				return nil, invalid(path, err)
			}
			if err := b.AddRelocation(built[i], coff.Relocation{
				Symbol:         sym,
				VirtualAddress: r.Offset,
				Type:           typ,
			}); err != nil {
				return nil, err
			}
		}
	}

	f, err := b.Build()
	if err != nil {
		return nil, err
	}
	Logger().Debug("built object file from manifest",
		zap.Stringer("machine", machine),
		zap.Int("sections", len(m.Sections)),
		zap.Int("symbols", len(m.Symbols)))
	return f, nil
}

func (l *loader) sectionSpec(path []string, s Section) (coff.SectionSpec, error) {
	spec := coff.SectionSpec{Name: s.Name, VirtualAddress: s.VirtualAddress}
	for _, name := range s.Characteristics {
		f, err := coff.ParseSectionFlag(name)
		if err != nil {
			return spec, invalid(append(path, "characteristics"), err)
		}
		spec.Characteristics |= f
	}

	switch {
	case s.Data != "" && s.DataFile != "":
		return spec, errors.New(errors.PhaseLoad, errors.KindInvalidData).
			Path(path...).
			Detail("data and data_file are mutually exclusive").
			Build()
	case s.Data != "":
		raw, err := hex.DecodeString(strings.Join(strings.Fields(s.Data), ""))
		if err != nil {
			return spec, invalid(append(path, "data"), err)
		}
		spec.Data = raw
	case s.DataFile != "":
		p := s.DataFile
		if !filepath.IsAbs(p) && l.baseDir != "" {
			p = filepath.Join(l.baseDir, p)
		}
		raw, err := l.readFile(p)
		if err != nil {
			return spec, errors.New(errors.PhaseLoad, errors.KindNotFound).
				Path(append(path, "data_file")...).
				Value(p).
				Cause(err).
				Build()
		}
		spec.Data = raw
	}
	return spec, nil
}

func symbolSpec(path []string, s Symbol, sections map[string]*coff.Section, index map[string]int) (coff.SymbolSpec, error) {
	spec := coff.SymbolSpec{Name: s.Name, Value: s.Value}
	if s.Section != "" {
		sec, ok := sections[s.Section]
		if !ok {
			return spec, notFound(path, "section", s.Section)
		}
		spec.Section = sec
	}
	if s.StorageClass != "" {
		c, err := coff.ParseStorageClass(s.StorageClass)
		if err != nil {
			return spec, invalid(append(path, "storage_class"), err)
		}
		spec.Class = c
	}
	if s.Type != nil {
		if s.Type.Base != "" {
			v, err := coff.ParseBaseType(s.Type.Base)
			if err != nil {
				return spec, invalid(append(path, "type"), err)
			}
			spec.Type.Base = v
		}
		if s.Type.Complex != "" {
			v, err := coff.ParseComplexType(s.Type.Complex)
			if err != nil {
				return spec, invalid(append(path, "type"), err)
			}
			spec.Type.Complex = v
		}
	}

	for i, a := range s.Aux {
		apath := append(path, fmt.Sprintf("aux[%d]", i))
		switch {
		case a.SectionDefinition != nil && a.FileName != nil:
			return spec, errors.New(errors.PhaseLoad, errors.KindInvalidData).
				Path(apath...).
				Detail("aux entry sets both section_definition and file_name").
				Build()
		case a.SectionDefinition != nil:
			name := a.SectionDefinition.Section
			sec, ok := sections[name]
			if !ok {
				return spec, notFound(apath, "section", name)
			}
			number := uint16(index[name])
			if a.SectionDefinition.Number != nil {
				number = *a.SectionDefinition.Number
			}
			def, err := coff.NewSectionDefinition(sec, number)
			if err != nil {
				return spec, err
			}
			spec.Aux = append(spec.Aux, def)
		case a.FileName != nil:
			recs, err := coff.FileNameRecords(*a.FileName)
			if err != nil {
				return spec, err
			}
			spec.Aux = append(spec.Aux, recs...)
		default:
			return spec, errors.New(errors.PhaseLoad, errors.KindInvalidData).
				Path(apath...).
				Detail("empty aux entry").
				Build()
		}
	}
	return spec, nil
}

func invalid(path []string, cause error) error {
	return errors.New(errors.PhaseLoad, errors.KindInvalidData).
		Path(path...).
		Cause(cause).
		Build()
}

func notFound(path []string, what, name string) error {
	return errors.New(errors.PhaseLoad, errors.KindNotFound).
		Path(path...).
		Value(name).
		Detail("%s %q not found", what, name).
		Build()
}
