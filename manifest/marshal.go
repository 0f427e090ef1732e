package manifest

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/coffkit/coff"
)

// FromObject describes f as a manifest. References are written by name, so
// a file whose symbols or sections share names may not load back into the
// same graph.
func FromObject(f *coff.ObjectFile) *Manifest {
	m := &Manifest{
		Machine:         machineName(f.Machine()),
		Characteristics: fileFlagNames(f.Characteristics()),
	}
	for _, s := range f.Sections() {
		ms := Section{
			Name:            s.Name(),
			VirtualAddress:  s.VirtualAddress(),
			Characteristics: sectionFlagNames(s.Characteristics()),
		}
		if data := s.Data(); len(data) > 0 {
			ms.Data = hex.EncodeToString(data)
		}
		for _, r := range s.Relocations() {
			ms.Relocations = append(ms.Relocations, Relocation{
				Symbol: r.Symbol.Name(),
				Type:   r.Type.Name(f.Machine()),
				Offset: r.VirtualAddress,
			})
		}
		m.Sections = append(m.Sections, ms)
	}
	for _, s := range f.Symbols() {
		ms := Symbol{
			Name:         s.Name(),
			StorageClass: storageClassName(s.StorageClass()),
			Value:        s.Value(),
		}
		if sec := s.Section(); sec != nil {
			ms.Section = sec.Name()
		}
		if t := s.Type(); t != (coff.SymbolType{}) {
			ms.Type = &Type{Base: t.Base.String(), Complex: t.Complex.String()}
		}
		for _, a := range s.Aux() {
			switch a := a.(type) {
			case *coff.SectionDefinition:
				number := a.Number()
				ms.Aux = append(ms.Aux, Aux{SectionDefinition: &SectionDefinition{
					Section: a.Target().Name(),
					Number:  &number,
				}})
			case coff.FileName:
				name := a.String()
				ms.Aux = append(ms.Aux, Aux{FileName: &name})
			}
		}
		m.Symbols = append(m.Symbols, ms)
	}
	return m
}

// Marshal encodes m as YAML.
func (m *Manifest) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func machineName(m coff.MachineType) string {
	if _, err := coff.ParseMachine(m.String()); err == nil {
		return m.String()
	}
	return fmt.Sprintf("0x%04x", uint16(m))
}

func storageClassName(c coff.StorageClass) string {
	if _, err := coff.ParseStorageClass(c.String()); err == nil {
		return c.String()
	}
	return strconv.Itoa(int(c))
}

// sectionFlagNames lists the named flags of f plus any remaining bits as
// one hex value.
func sectionFlagNames(f coff.SectionFlags) []string {
	names := f.Names()
	var covered coff.SectionFlags
	for _, n := range names {
		v, _ := coff.ParseSectionFlag(n)
		covered |= v
	}
	if rest := f &^ covered; rest != 0 {
		names = append(names, fmt.Sprintf("0x%08x", uint32(rest)))
	}
	return names
}

func fileFlagNames(f coff.FileFlags) []string {
	names := f.Names()
	var covered coff.FileFlags
	for _, n := range names {
		v, _ := coff.ParseFileFlag(n)
		covered |= v
	}
	if rest := f &^ covered; rest != 0 {
		names = append(names, fmt.Sprintf("0x%04x", uint16(rest)))
	}
	return names
}
