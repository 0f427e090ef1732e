package coff_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wippyai/coffkit/coff"
)

func TestParseMachine(t *testing.T) {
	tests := []struct {
		in      string
		want    coff.MachineType
		wantErr bool
	}{
		{"amd64", coff.MachineAMD64, false},
		{"x64", coff.MachineAMD64, false},
		{"X86_64", coff.MachineAMD64, false},
		{"i386", coff.MachineI386, false},
		{"x86", coff.MachineI386, false},
		{"aarch64", coff.MachineARM64, false},
		{"0x1c4", coff.MachineARMNT, false},
		{"vax", 0, true},
	}
	for _, tt := range tests {
		got, err := coff.ParseMachine(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseMachine(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseMachine(%q): got %v, %v, want %v", tt.in, got, err, tt.want)
		}
	}
	if s := coff.MachineType(0x1234).String(); s != "machine(0x1234)" {
		t.Errorf("unknown machine String: got %q", s)
	}
}

func TestRelocationNamesPerMachine(t *testing.T) {
	// code 0x0004 means different things on each machine
	tests := []struct {
		machine coff.MachineType
		want    string
	}{
		{coff.MachineI386, "0x0004"},
		{coff.MachineAMD64, "rel32"},
		{coff.MachineARMNT, "branch11"},
		{coff.MachineThumb, "branch11"},
		{coff.MachineARM64, "pagebase_rel21"},
	}
	for _, tt := range tests {
		if got := coff.RelocationType(4).Name(tt.machine); got != tt.want {
			t.Errorf("Name(%v): got %q, want %q", tt.machine, got, tt.want)
		}
	}

	typ, err := coff.ParseRelocationType(coff.MachineI386, "DIR32")
	if err != nil || typ != coff.RelI386Dir32 {
		t.Errorf("ParseRelocationType(i386, DIR32): got %v, %v", typ, err)
	}
	typ, err = coff.ParseRelocationType(coff.MachineAMD64, "addr32")
	if err != nil || typ != coff.RelAMD64Addr32 {
		t.Errorf("ParseRelocationType(amd64, addr32): got %v, %v", typ, err)
	}
	if _, err := coff.ParseRelocationType(coff.MachineAMD64, "dir32"); err == nil {
		t.Error("ParseRelocationType(amd64, dir32): expected error")
	}
}

func TestSectionFlagNames(t *testing.T) {
	f := coff.SectionCntCode | coff.SectionMemExecute | coff.SectionMemRead | coff.SectionAlign16Bytes
	want := []string{"cnt_code", "mem_execute", "mem_read", "align_16"}
	if diff := cmp.Diff(want, f.Names()); diff != "" {
		t.Errorf("Names mismatch (-want +got):\n%s", diff)
	}

	var parsed coff.SectionFlags
	for _, name := range want {
		v, err := coff.ParseSectionFlag(name)
		if err != nil {
			t.Fatalf("ParseSectionFlag(%q): %v", name, err)
		}
		parsed |= v
	}
	if parsed != f {
		t.Errorf("parsed flags: got 0x%08x, want 0x%08x", uint32(parsed), uint32(f))
	}
	if _, err := coff.ParseSectionFlag("align_3"); err == nil {
		t.Error("align_3: expected error")
	}
}

func TestAlignFlag(t *testing.T) {
	tests := []struct {
		n    uint32
		want coff.SectionFlags
	}{
		{1, coff.SectionAlign1Bytes},
		{4, coff.SectionAlign4Bytes},
		{16, coff.SectionAlign16Bytes},
		{8192, coff.SectionAlign8192Bytes},
		{3, 0},
		{16384, 0},
	}
	for _, tt := range tests {
		if got := coff.AlignFlag(tt.n); got != tt.want {
			t.Errorf("AlignFlag(%d): got 0x%x, want 0x%x", tt.n, uint32(got), uint32(tt.want))
		}
		if tt.want != 0 && tt.want.Alignment() != tt.n {
			t.Errorf("Alignment of AlignFlag(%d): got %d", tt.n, tt.want.Alignment())
		}
	}
}

func TestFileFlagNames(t *testing.T) {
	f := coff.File32BitMachine | coff.FileLineNumsStripped
	want := []string{"32bit_machine", "line_nums_stripped"}
	if diff := cmp.Diff(want, f.Names()); diff != "" {
		t.Errorf("Names mismatch (-want +got):\n%s", diff)
	}
	v, err := coff.ParseFileFlag("dll")
	if err != nil || v != coff.FileDLL {
		t.Errorf("ParseFileFlag(dll): got %v, %v", v, err)
	}
}

func TestSymbolTypeString(t *testing.T) {
	if s := coff.FunctionType.String(); s != "null/function" {
		t.Errorf("FunctionType: got %q", s)
	}
	st, err := coff.ParseStorageClass("external")
	if err != nil || st != coff.ClassExternal {
		t.Errorf("ParseStorageClass(external): got %v, %v", st, err)
	}
	b, err := coff.ParseBaseType("dword")
	if err != nil || b != coff.TypeDWord {
		t.Errorf("ParseBaseType(dword): got %v, %v", b, err)
	}
	c, err := coff.ParseComplexType("pointer")
	if err != nil || c != coff.ComplexPointer {
		t.Errorf("ParseComplexType(pointer): got %v, %v", c, err)
	}
}
