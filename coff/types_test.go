package coff_test

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/wippyai/coffkit/coff"
	"github.com/wippyai/coffkit/errors"
)

func TestSectionCopiesInput(t *testing.T) {
	data := []byte{1, 2, 3}
	s, err := coff.NewSection(coff.SectionSpec{Name: ".data", Data: data})
	if err != nil {
		t.Fatalf("NewSection: %v", err)
	}
	data[0] = 9
	if s.Data()[0] != 1 {
		t.Error("section shares the caller's data slice")
	}
	out := s.Data()
	out[1] = 9
	if s.Data()[1] != 2 {
		t.Error("Data returns the section's own slice")
	}
	if s.VirtualSize() != 3 {
		t.Errorf("VirtualSize: got %d, want 3", s.VirtualSize())
	}
	if s.NumberOfLineNumbers() != 0 {
		t.Errorf("NumberOfLineNumbers: got %d, want 0", s.NumberOfLineNumbers())
	}
}

func TestNewSectionNilRelocationSymbol(t *testing.T) {
	_, err := coff.NewSection(coff.SectionSpec{Name: ".text"}, coff.Relocation{})
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseConstruct, Kind: errors.KindNilPointer}) {
		t.Errorf("got %v, want construct nil_pointer", err)
	}
}

func TestObjectFileSectionIndex(t *testing.T) {
	a, _ := coff.NewSection(coff.SectionSpec{Name: "a"})
	b, _ := coff.NewSection(coff.SectionSpec{Name: "b"})
	other, _ := coff.NewSection(coff.SectionSpec{Name: "b"})
	f, err := coff.NewObjectFile(coff.MachineI386, 0, []*coff.Section{a, b}, nil)
	if err != nil {
		t.Fatalf("NewObjectFile: %v", err)
	}

	tests := []struct {
		s    *coff.Section
		want int
	}{
		{a, 1},
		{b, 2},
		{other, 0},
		{nil, 0},
	}
	for _, tt := range tests {
		if got := f.SectionIndex(tt.s); got != tt.want {
			t.Errorf("SectionIndex: got %d, want %d", got, tt.want)
		}
	}

	secs := f.Sections()
	secs[0] = other
	if f.SectionIndex(a) != 1 {
		t.Error("Sections returns the file's own slice")
	}

	if _, err := coff.NewObjectFile(coff.MachineI386, 0, []*coff.Section{nil}, nil); err == nil {
		t.Error("nil section: expected error")
	}
}

func TestBuilderSeals(t *testing.T) {
	b := coff.NewBuilder(coff.MachineAMD64, coff.FileLineNumsStripped)
	text, err := b.AddSection(coff.SectionSpec{Name: ".text", Data: []byte{0xc3}})
	if err != nil {
		t.Fatalf("AddSection: %v", err)
	}
	fn, err := b.AddSymbol(coff.SymbolSpec{Name: "fn", Section: text, Class: coff.ClassExternal})
	if err != nil {
		t.Fatalf("AddSymbol: %v", err)
	}
	if err := b.AddRelocation(text, coff.Relocation{Symbol: fn}); err != nil {
		t.Fatalf("AddRelocation: %v", err)
	}

	f, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if f.Characteristics() != coff.FileLineNumsStripped || f.Machine() != coff.MachineAMD64 {
		t.Errorf("header fields: got %v %v", f.Machine(), f.Characteristics())
	}
	if len(f.Sections()) != 1 || len(f.Symbols()) != 1 {
		t.Errorf("counts: got %d sections, %d symbols", len(f.Sections()), len(f.Symbols()))
	}

	sealed := &errors.Error{Phase: errors.PhaseConstruct, Kind: errors.KindInvalidInput}
	if err := b.AddRelocation(text, coff.Relocation{Symbol: fn}); !stderrors.Is(err, sealed) {
		t.Errorf("AddRelocation after Build: got %v", err)
	}
	if _, err := b.AddSection(coff.SectionSpec{Name: ".data"}); !stderrors.Is(err, sealed) {
		t.Errorf("AddSection after Build: got %v", err)
	}
	if _, err := b.AddSymbol(coff.SymbolSpec{Name: "late"}); !stderrors.Is(err, sealed) {
		t.Errorf("AddSymbol after Build: got %v", err)
	}
	if _, err := b.Build(); !stderrors.Is(err, sealed) {
		t.Errorf("second Build: got %v", err)
	}
	if text.NumberOfRelocations() != 1 {
		t.Errorf("relocations after sealing: got %d, want 1", text.NumberOfRelocations())
	}
}

func TestBuilderRejectsForeignSection(t *testing.T) {
	b := coff.NewBuilder(coff.MachineI386, 0)
	sym, _ := b.AddSymbol(coff.SymbolSpec{Name: "s"})
	foreign, _ := coff.NewSection(coff.SectionSpec{Name: ".text"})
	if err := b.AddRelocation(foreign, coff.Relocation{Symbol: sym}); err == nil {
		t.Error("foreign section: expected error")
	}
	other := coff.NewBuilder(coff.MachineI386, 0)
	theirs, _ := other.AddSection(coff.SectionSpec{Name: ".text"})
	if err := b.AddRelocation(theirs, coff.Relocation{Symbol: sym}); err == nil {
		t.Error("section of another builder: expected error")
	}
	mine, _ := b.AddSection(coff.SectionSpec{Name: ".text"})
	if err := b.AddRelocation(mine, coff.Relocation{}); err == nil {
		t.Error("nil symbol: expected error")
	}
}

func TestFromCode(t *testing.T) {
	f := coff.FromCode([]byte{0x90, 0xc3})
	if f.Machine() != coff.MachineI386 {
		t.Errorf("Machine: got %v, want i386", f.Machine())
	}
	secs := f.Sections()
	if len(secs) != 1 {
		t.Fatalf("sections: got %d, want 1", len(secs))
	}
	if secs[0].Name() != "code" {
		t.Errorf("Name: got %q, want code", secs[0].Name())
	}
	want := coff.SectionMemExecute | coff.SectionMemRead | coff.SectionCntCode
	if secs[0].Characteristics() != want {
		t.Errorf("Characteristics: got %v, want %v", secs[0].Characteristics().Names(), want.Names())
	}
	if len(f.Symbols()) != 0 {
		t.Errorf("symbols: got %d, want 0", len(f.Symbols()))
	}
}

func TestFileNameAux(t *testing.T) {
	if _, err := coff.NewFileNameAux(strings.Repeat("x", 19)); err == nil {
		t.Error("19-byte name: expected error")
	}
	f, err := coff.NewFileNameAux(strings.Repeat("x", 18))
	if err != nil {
		t.Fatalf("18-byte name: %v", err)
	}
	if f.String() != strings.Repeat("x", 18) {
		t.Errorf("String: got %q", f.String())
	}

	tests := []struct {
		name  string
		count int
	}{
		{"", 1},
		{"a.c", 1},
		{strings.Repeat("y", 18), 1},
		{strings.Repeat("y", 19), 2},
		{strings.Repeat("y", 40), 3},
	}
	for _, tt := range tests {
		recs, err := coff.FileNameRecords(tt.name)
		if err != nil {
			t.Fatalf("FileNameRecords(%d bytes): %v", len(tt.name), err)
		}
		if len(recs) != tt.count {
			t.Errorf("FileNameRecords(%d bytes): got %d records, want %d", len(tt.name), len(recs), tt.count)
		}
		var joined strings.Builder
		for _, r := range recs {
			joined.WriteString(r.(coff.FileName).String())
		}
		if joined.String() != tt.name {
			t.Errorf("FileNameRecords(%d bytes): joined %q", len(tt.name), joined.String())
		}
	}
}

func TestSectionDefinitionNilTarget(t *testing.T) {
	if _, err := coff.NewSectionDefinition(nil, 1); err == nil {
		t.Error("nil target: expected error")
	}
}
