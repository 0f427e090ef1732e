// Package coff builds and encodes Microsoft COFF object files.
//
// # Main Types
//
//   - ObjectFile: machine, flags, sections and symbols
//   - Section: raw data plus relocations
//   - Symbol: named location with optional auxiliary records
//   - Builder: assembles files whose sections and symbols refer to each other
//   - StringTable: overflow storage for names longer than eight bytes
//
// # Thread Safety
//
// ObjectFile, Section and Symbol are immutable once built. Encode keeps all
// scratch state per call, so distinct files may be encoded concurrently.
// StringTable and Builder are NOT safe for concurrent use.
//
// # Layout
//
//	file header          20 bytes
//	section headers      40 bytes each
//	per section          raw data, relocations (10 bytes each), 8 zero bytes
//	symbol table         18 bytes per symbol and per auxiliary record
//	string table         u32 length, then NUL-terminated names
//
// # Example
//
//	b := coff.NewBuilder(coff.MachineAMD64, 0)
//	text, _ := b.AddSection(coff.SectionSpec{Name: ".text", Data: code,
//	    Characteristics: coff.SectionCntCode | coff.SectionMemExecute | coff.SectionMemRead})
//	main, _ := b.AddSymbol(coff.SymbolSpec{Name: "main", Section: text,
//	    Type: coff.FunctionType, Class: coff.ClassExternal})
//	b.AddRelocation(text, coff.Relocation{VirtualAddress: 1, Symbol: main, Type: coff.RelAMD64Rel32})
//	obj, _ := b.Build()
//	data, _ := obj.Bytes()
package coff
