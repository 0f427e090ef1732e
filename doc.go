// Package coffkit encodes native object code into Microsoft COFF object
// files that link with standard toolchains.
//
// # Architecture Overview
//
//	coffkit/             Root package with the Sink capability and adapters
//	├── coff/            Object model, name codec, string table, encoder, decode primitives
//	├── manifest/        YAML object descriptions loaded into the object model
//	├── errors/          Structured error types
//	└── cmd/coffgen/     Command line tool: build, dump and inspect objects
//
// # Quick Start
//
// Wrap a buffer of machine code and write it out:
//
//	obj, err := coff.NewCodeObject(coff.MachineAMD64, code,
//	    []coff.CodeSymbol{{Name: "main", Offset: 0, Public: true}}, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := coff.WriteFile("main.obj", obj); err != nil {
//	    log.Fatal(err)
//	}
//
// # Sinks
//
// The encoder reserves header fields whose values are only known later and
// patches them once the data has been written. It therefore writes to a
// Sink, which adds position reporting and overwrite-at-offset to io.Writer.
// SeekSink adapts an io.WriteSeeker such as *os.File; StagingBuffer holds
// the whole file in memory for targets that cannot seek.
//
// # Thread Safety
//
// Object model values are immutable once built and may be encoded from
// several goroutines at once. Sinks are not safe for concurrent use.
package coffkit
