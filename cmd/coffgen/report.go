package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/wippyai/coffkit/coff"
)

// report is the tabular view of a decoded object file shared by the dump
// printer and the inspector.
type report struct {
	path     string
	header   [][]string
	sections grid
	relocs   grid
	symbols  grid
	strings  grid
}

type grid struct {
	title   string
	columns []string
	rows    [][]string
}

func loadReport(path string) (*report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return newReport(path, data)
}

func newReport(path string, data []byte) (*report, error) {
	img, err := coff.Inspect(data)
	if err != nil {
		return nil, fmt.Errorf("inspect %s: %w", path, err)
	}
	h := img.Header
	rep := &report{path: path}

	rep.header = [][]string{
		{"Machine", h.Machine.String()},
		{"Size", humanize.IBytes(uint64(len(data)))},
		{"Sections", strconv.Itoa(int(h.NumberOfSections))},
		{"Symbols", humanize.Comma(int64(h.NumberOfSymbols))},
		{"Symbol table", fmt.Sprintf("0x%08x", h.PointerToSymbolTable)},
		{"Characteristics", joinFlags(h.Characteristics.Names())},
	}

	rep.sections = grid{
		title:   "Sections",
		columns: []string{"#", "Name", "Raw size", "Raw data", "Relocs", "Line nums", "Flags"},
	}
	secNames := make([]string, len(img.Sections))
	for i := range img.Sections {
		sh := &img.Sections[i]
		name, err := sh.SectionName(img.Strings)
		if err != nil {
			name = fmt.Sprintf("<%v>", err)
		}
		secNames[i] = name
		rep.sections.rows = append(rep.sections.rows, []string{
			strconv.Itoa(i + 1),
			name,
			humanize.IBytes(uint64(sh.SizeOfRawData)),
			fmt.Sprintf("0x%08x", sh.PointerToRawData),
			strconv.Itoa(int(sh.NumberOfRelocations)),
			fmt.Sprintf("0x%08x", sh.PointerToLineNumbers),
			joinFlags(sh.Characteristics.Names()),
		})
	}

	rep.symbols = grid{
		title:   "Symbols",
		columns: []string{"Slot", "Name", "Value", "Section", "Type", "Class", "Aux"},
	}
	symNames := make(map[uint32]string, len(img.Symbols))
	for _, e := range img.Symbols {
		name, err := e.Record.SymbolName(img.Strings)
		if err != nil {
			name = fmt.Sprintf("<%v>", err)
		}
		symNames[e.Index] = name
		rep.symbols.rows = append(rep.symbols.rows, []string{
			strconv.FormatUint(uint64(e.Index), 10),
			name,
			fmt.Sprintf("0x%08x", e.Record.Value),
			sectionLabel(e.Record.SectionNumber, secNames),
			e.Record.Type.String(),
			e.Record.StorageClass.String(),
			strconv.Itoa(int(e.Record.NumberOfAuxSymbols)),
		})
	}

	rep.relocs = grid{
		title:   "Relocations",
		columns: []string{"Section", "Offset", "Type", "Slot", "Symbol"},
	}
	for i, relocs := range img.Relocations {
		for _, r := range relocs {
			sym, ok := symNames[r.SymbolIndex]
			if !ok {
				sym = "?"
			}
			rep.relocs.rows = append(rep.relocs.rows, []string{
				secNames[i],
				fmt.Sprintf("0x%08x", r.VirtualAddress),
				r.Type.Name(h.Machine),
				strconv.FormatUint(uint64(r.SymbolIndex), 10),
				sym,
			})
		}
	}

	rep.strings = grid{
		title:   "String table",
		columns: []string{"Offset", "Text"},
	}
	for _, s := range img.Strings.Entries() {
		rep.strings.rows = append(rep.strings.rows, []string{
			strconv.FormatUint(uint64(s.Offset), 10),
			s.Text,
		})
	}
	return rep, nil
}

func (r *report) tables() []grid {
	return []grid{r.sections, r.symbols, r.relocs, r.strings}
}

// sectionLabel names a symbol's section number. 0, -1 and -2 are the
// undefined, absolute and debug pseudo-sections.
func sectionLabel(n int16, names []string) string {
	switch {
	case n == 0:
		return "UNDEF"
	case n == -1:
		return "ABS"
	case n == -2:
		return "DEBUG"
	case n > 0 && int(n) <= len(names):
		return fmt.Sprintf("%d %s", n, names[n-1])
	}
	return strconv.Itoa(int(n))
}

func joinFlags(names []string) string {
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, " ")
}
