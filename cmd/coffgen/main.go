package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/xyproto/env/v2"
	"go.uber.org/zap"

	"github.com/wippyai/coffkit/coff"
	"github.com/wippyai/coffkit/manifest"
)

func main() {
	var (
		syms   symbolFlags
		relocs relocationFlags
	)
	var (
		manifestFile = flag.String("manifest", "", "Path to a YAML object manifest")
		codeFile     = flag.String("code", "", "Path to raw machine code to wrap in .text")
		machine      = flag.String("machine", env.Str("COFFGEN_MACHINE", "amd64"), "Target machine for -code (amd64, i386)")
		source       = flag.String("source", "", "Source file name recorded in the .file symbol")
		output       = flag.String("o", env.Str("COFFGEN_OUTPUT", "a.obj"), "Output object file")
		emit         = flag.Bool("emit-manifest", false, "Print the built object as a YAML manifest instead of writing it")
		dumpFile     = flag.String("dump", "", "Print the records of an object file")
		interactive  = flag.Bool("i", false, "Interactive mode with TUI (with -dump)")
		verbose      = flag.Bool("v", env.Bool("COFFGEN_VERBOSE"), "Verbose logging")
	)
	flag.Var(&syms, "sym", "Code symbol name[:offset][:public|:external] (repeatable, with -code)")
	flag.Var(&relocs, "reloc", "Relocation symbol:offset[:rel] (repeatable, with -code)")
	flag.Parse()

	log := newLogger(*verbose)
	defer log.Sync()
	coff.SetLogger(log)
	manifest.SetLogger(log)

	var err error
	switch {
	case *dumpFile != "" && *interactive:
		err = runInteractive(*dumpFile)
	case *dumpFile != "":
		err = runDump(os.Stdout, *dumpFile, useColor(os.Stdout))
	case *manifestFile != "" || *codeFile != "":
		err = runBuild(buildOptions{
			manifest: *manifestFile,
			code:     *codeFile,
			machine:  *machine,
			source:   *source,
			output:   *output,
			emit:     *emit,
			symbols:  syms,
			relocs:   relocs,
		})
	default:
		fmt.Fprintln(os.Stderr, "Usage: coffgen -manifest <obj.yaml> [-o out.obj]")
		fmt.Fprintln(os.Stderr, "       coffgen -code <code.bin> [-machine amd64] [-sym main:0:public] [-reloc puts:1:rel] [-o out.obj]")
		fmt.Fprintln(os.Stderr, "       coffgen -dump <file.obj> [-i]")
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) *zap.Logger {
	var (
		log *zap.Logger
		err error
	)
	if verbose {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return log
}

type buildOptions struct {
	manifest string
	code     string
	machine  string
	source   string
	output   string
	symbols  []coff.CodeSymbol
	relocs   []coff.CodeRelocation
	emit     bool
}

func runBuild(opts buildOptions) error {
	f, err := buildObject(opts)
	if err != nil {
		return err
	}

	if opts.emit {
		doc, err := manifest.FromObject(f).Marshal()
		if err != nil {
			return fmt.Errorf("marshal manifest: %w", err)
		}
		_, err = os.Stdout.Write(doc)
		return err
	}

	if err := coff.WriteFile(opts.output, f); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	info, err := os.Stat(opts.output)
	if err != nil {
		return err
	}
	fmt.Printf("Wrote %s: %s, %s, %d sections, %d symbols\n",
		opts.output, f.Machine(), humanize.IBytes(uint64(info.Size())),
		len(f.Sections()), f.SymbolCount())
	return nil
}

func buildObject(opts buildOptions) (*coff.ObjectFile, error) {
	if opts.manifest != "" {
		if opts.code != "" {
			return nil, fmt.Errorf("-manifest and -code are mutually exclusive")
		}
		f, err := manifest.LoadFile(opts.manifest)
		if err != nil {
			return nil, fmt.Errorf("load manifest: %w", err)
		}
		return f, nil
	}

	machine, err := coff.ParseMachine(opts.machine)
	if err != nil {
		return nil, err
	}
	code, err := os.ReadFile(opts.code)
	if err != nil {
		return nil, fmt.Errorf("read code: %w", err)
	}
	var codeOpts []coff.CodeOption
	if opts.source != "" {
		codeOpts = append(codeOpts, coff.WithSourceFile(opts.source))
	}
	f, err := coff.NewCodeObject(machine, code, opts.symbols, opts.relocs, codeOpts...)
	if err != nil {
		return nil, fmt.Errorf("lay out code: %w", err)
	}
	return f, nil
}

// symbolFlags collects -sym values of the form name[:offset][:public|:external].
type symbolFlags []coff.CodeSymbol

func (s *symbolFlags) String() string {
	var names []string
	for _, sym := range *s {
		names = append(names, sym.Name)
	}
	return strings.Join(names, ",")
}

func (s *symbolFlags) Set(v string) error {
	parts := strings.Split(v, ":")
	if parts[0] == "" {
		return fmt.Errorf("symbol %q has no name", v)
	}
	sym := coff.CodeSymbol{Name: parts[0]}
	for _, p := range parts[1:] {
		switch p {
		case "":
		case "public":
			sym.Public = true
		case "external":
			sym.External = true
		default:
			off, err := strconv.ParseUint(p, 0, 32)
			if err != nil {
				return fmt.Errorf("symbol %q: invalid offset %q", v, p)
			}
			sym.Offset = uint32(off)
		}
	}
	*s = append(*s, sym)
	return nil
}

// relocationFlags collects -reloc values of the form symbol:offset[:rel].
type relocationFlags []coff.CodeRelocation

func (r *relocationFlags) String() string {
	var out []string
	for _, rel := range *r {
		out = append(out, rel.Symbol+":"+strconv.FormatUint(uint64(rel.Offset), 10))
	}
	return strings.Join(out, ",")
}

func (r *relocationFlags) Set(v string) error {
	parts := strings.Split(v, ":")
	if len(parts) < 2 || len(parts) > 3 || parts[0] == "" {
		return fmt.Errorf("relocation %q: want symbol:offset[:rel]", v)
	}
	off, err := strconv.ParseUint(parts[1], 0, 32)
	if err != nil {
		return fmt.Errorf("relocation %q: invalid offset %q", v, parts[1])
	}
	rel := coff.CodeRelocation{Symbol: parts[0], Offset: uint32(off)}
	if len(parts) == 3 {
		switch parts[2] {
		case "rel":
			rel.Relative = true
		case "abs":
		default:
			return fmt.Errorf("relocation %q: mode must be rel or abs", v)
		}
	}
	*r = append(*r, rel)
	return nil
}
