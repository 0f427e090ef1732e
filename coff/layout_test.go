package coff_test

import (
	"testing"

	"github.com/wippyai/coffkit/coff"
)

func TestNewCodeObjectLayout(t *testing.T) {
	tests := []struct {
		machine coff.MachineType
		align   uint32
		rel     coff.RelocationType
		abs     coff.RelocationType
	}{
		{coff.MachineAMD64, 16, coff.RelAMD64Rel32, coff.RelAMD64Addr32},
		{coff.MachineI386, 4, coff.RelI386Rel32, coff.RelI386Dir32},
	}

	for _, tt := range tests {
		t.Run(tt.machine.String(), func(t *testing.T) {
			f, err := coff.NewCodeObject(tt.machine, make([]byte, 12),
				[]coff.CodeSymbol{
					{Name: "main", Offset: 0, Public: true},
					{Name: "helper", Offset: 8},
					{Name: "ext", External: true},
				},
				[]coff.CodeRelocation{
					{Symbol: "ext", Offset: 1, Relative: true},
					{Symbol: "helper", Offset: 4, Bits: 32},
				})
			if err != nil {
				t.Fatalf("NewCodeObject: %v", err)
			}

			secs := f.Sections()
			if len(secs) != 3 {
				t.Fatalf("sections: got %d, want 3", len(secs))
			}
			for i, name := range []string{".text", ".data", ".bss"} {
				if secs[i].Name() != name {
					t.Errorf("section %d: got %q, want %q", i, secs[i].Name(), name)
				}
				if a := secs[i].Characteristics().Alignment(); a != tt.align {
					t.Errorf("%s alignment: got %d, want %d", name, a, tt.align)
				}
			}
			if secs[0].Characteristics()&coff.SectionCntCode == 0 {
				t.Error(".text lacks cnt_code")
			}
			if secs[2].Characteristics()&coff.SectionCntUninitializedData == 0 {
				t.Error(".bss lacks cnt_uninitialized_data")
			}

			syms := f.Symbols()
			if len(syms) != 7 {
				t.Fatalf("symbols: got %d, want 7", len(syms))
			}
			if syms[0].Name() != ".file" || syms[0].StorageClass() != coff.ClassFile {
				t.Errorf(".file symbol: got %q %v", syms[0].Name(), syms[0].StorageClass())
			}
			if fn := syms[0].Aux()[0].(coff.FileName).String(); fn != "fake" {
				t.Errorf(".file aux: got %q, want fake", fn)
			}
			for i := 1; i <= 3; i++ {
				def, ok := syms[i].Aux()[0].(*coff.SectionDefinition)
				if !ok {
					t.Fatalf("symbol %d: aux is %T", i, syms[i].Aux()[0])
				}
				if def.Target() != secs[i-1] || int(def.Number()) != i {
					t.Errorf("symbol %d: section definition for %q number %d", i, def.Target().Name(), def.Number())
				}
			}

			main, helper, ext := syms[4], syms[5], syms[6]
			if main.StorageClass() != coff.ClassExternal || main.Section() != secs[0] {
				t.Errorf("main: got %v in %v", main.StorageClass(), main.Section())
			}
			if helper.StorageClass() != coff.ClassStatic || helper.Value() != 8 {
				t.Errorf("helper: got %v value %d", helper.StorageClass(), helper.Value())
			}
			if ext.StorageClass() != coff.ClassExternal || ext.Section() != nil {
				t.Errorf("ext: got %v in %v", ext.StorageClass(), ext.Section())
			}

			relocs := secs[0].Relocations()
			if len(relocs) != 2 {
				t.Fatalf("relocations: got %d, want 2", len(relocs))
			}
			// attached in symbol order: helper before ext
			if relocs[0].Symbol != helper || relocs[0].Type != tt.abs || relocs[0].VirtualAddress != 4 {
				t.Errorf("relocation 0: got %s at %d", relocs[0].Type.Name(tt.machine), relocs[0].VirtualAddress)
			}
			if relocs[1].Symbol != ext || relocs[1].Type != tt.rel || relocs[1].VirtualAddress != 1 {
				t.Errorf("relocation 1: got %s at %d", relocs[1].Type.Name(tt.machine), relocs[1].VirtualAddress)
			}
		})
	}
}

func TestNewCodeObjectErrors(t *testing.T) {
	if _, err := coff.NewCodeObject(coff.MachineARM64, nil, nil, nil); err == nil {
		t.Error("arm64: expected error")
	}
	if _, err := coff.NewCodeObject(coff.MachineAMD64, nil, nil,
		[]coff.CodeRelocation{{Symbol: "missing"}}); err == nil {
		t.Error("unknown relocation symbol: expected error")
	}
	if _, err := coff.NewCodeObject(coff.MachineAMD64, nil,
		[]coff.CodeSymbol{{Name: "s"}},
		[]coff.CodeRelocation{{Symbol: "s", Bits: 64}}); err == nil {
		t.Error("64-bit relocation: expected error")
	}
}

func TestNewCodeObjectSourceFile(t *testing.T) {
	long := "src/very/long/path/to/module.asm"
	f, err := coff.NewCodeObject(coff.MachineI386, nil, nil, nil, coff.WithSourceFile(long))
	if err != nil {
		t.Fatalf("NewCodeObject: %v", err)
	}
	file := f.Symbols()[0]
	if file.NumberOfAuxSymbols() != 2 {
		t.Errorf("aux records: got %d, want 2", file.NumberOfAuxSymbols())
	}
	if _, err := f.Bytes(); err != nil {
		t.Errorf("encode: %v", err)
	}
}
