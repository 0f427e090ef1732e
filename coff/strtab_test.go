package coff_test

import (
	"bytes"
	"encoding/binary"
	stderrors "errors"
	"runtime"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wippyai/coffkit/coff"
	"github.com/wippyai/coffkit/errors"
)

func TestStringTableShortNames(t *testing.T) {
	st := coff.NewStringTable()
	for _, text := range []string{"a", ".text", "exactly8"} {
		n, err := st.Add(text)
		if err != nil {
			t.Fatalf("Add(%q): %v", text, err)
		}
		if !n.IsShort() {
			t.Errorf("Add(%q): got %v name, want short", text, n.Mode())
		}
	}
	if st.Len() != 0 {
		t.Errorf("Len: got %d, want 0", st.Len())
	}
}

func TestStringTableLongNames(t *testing.T) {
	st := coff.NewStringTable()
	names := []string{"this_name_is_longer_than_eight_bytes", "ninechars", "ünïcödé_name"}

	var offsets []uint32
	for _, text := range names {
		before := st.Len()
		n, err := st.Add(text)
		if err != nil {
			t.Fatalf("Add(%q): %v", text, err)
		}
		if n.Mode() != coff.NameOffset {
			t.Fatalf("Add(%q): got %v name, want offset", text, n.Mode())
		}
		if n.Offset() != uint32(before)+coff.StringTableBias {
			t.Errorf("Add(%q): offset %d, want %d", text, n.Offset(), before+coff.StringTableBias)
		}
		if st.Len() != before+len(text)+1 {
			t.Errorf("Add(%q): blob grew to %d, want %d", text, st.Len(), before+len(text)+1)
		}
		offsets = append(offsets, n.Offset())
	}

	for i, off := range offsets {
		got, err := st.Lookup(off)
		if err != nil {
			t.Fatalf("Lookup(%d): %v", off, err)
		}
		if got != names[i] {
			t.Errorf("Lookup(%d): got %q, want %q", off, got, names[i])
		}
	}
}

func TestStringTableNoDedup(t *testing.T) {
	st := coff.NewStringTable()
	a, _ := st.Add("duplicate_name")
	b, _ := st.Add("duplicate_name")
	if a.Offset() == b.Offset() {
		t.Errorf("identical names share offset %d", a.Offset())
	}
	if st.Len() != 2*len("duplicate_name\x00") {
		t.Errorf("Len: got %d, want %d", st.Len(), 2*len("duplicate_name\x00"))
	}
}

func TestStringTableLookupErrors(t *testing.T) {
	st := coff.NewStringTable()
	st.Add("a_long_symbol_name")

	for _, off := range []uint32{0, 1, 3, 100} {
		if _, err := st.Lookup(off); err == nil {
			t.Errorf("Lookup(%d): expected error", off)
		}
	}

	// An offset into the middle of an entry yields its tail.
	got, err := st.Lookup(6)
	if err != nil {
		t.Fatalf("Lookup(6): %v", err)
	}
	if got != "long_symbol_name" {
		t.Errorf("Lookup(6): got %q", got)
	}
}

func TestStringTableWriteTo(t *testing.T) {
	st := coff.NewStringTable()
	st.Add("first_long_name")
	st.Add("second_long_name")

	var buf bytes.Buffer
	n, err := st.WriteTo(&buf)
	if err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if n != int64(buf.Len()) {
		t.Errorf("WriteTo: returned %d, wrote %d", n, buf.Len())
	}
	size := binary.LittleEndian.Uint32(buf.Bytes()[:4])
	if int(size) != st.Len() {
		t.Errorf("length prefix: got %d, want %d", size, st.Len())
	}
	if want := "first_long_name\x00second_long_name\x00"; buf.String()[4:] != want {
		t.Errorf("blob: got %q, want %q", buf.String()[4:], want)
	}

	back, err := coff.ReadStringTable(&buf)
	if err != nil {
		t.Fatalf("ReadStringTable: %v", err)
	}
	want := []coff.StringEntry{
		{Text: "first_long_name", Offset: 4},
		{Text: "second_long_name", Offset: 20},
	}
	if diff := cmp.Diff(want, back.Entries()); diff != "" {
		t.Errorf("Entries mismatch (-want +got):\n%s", diff)
	}
}

func TestStringTableEmptyWriteTo(t *testing.T) {
	var buf bytes.Buffer
	if _, err := coff.NewStringTable().WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), []byte{0, 0, 0, 0}) {
		t.Errorf("got %v, want four zero bytes", buf.Bytes())
	}
}

func TestReadStringTableTruncated(t *testing.T) {
	if _, err := coff.ReadStringTable(strings.NewReader("\x01")); err == nil {
		t.Error("short prefix: expected error")
	}
	if _, err := coff.ReadStringTable(strings.NewReader("\x10\x00\x00\x00abc")); err == nil {
		t.Error("short blob: expected error")
	}
}

func TestStringTableResolve(t *testing.T) {
	st := coff.NewStringTable()
	short, _ := st.Add("main")
	long, _ := st.Add("a_much_longer_function_name")
	for _, tt := range []struct {
		name coff.Name
		want string
	}{
		{short, "main"},
		{long, "a_much_longer_function_name"},
	} {
		got, err := st.Resolve(tt.name)
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if got != tt.want {
			t.Errorf("Resolve: got %q, want %q", got, tt.want)
		}
	}

	off, err := st.AddLong("tiny")
	if err != nil {
		t.Fatalf("AddLong: %v", err)
	}
	if got, _ := st.Lookup(off); got != "tiny" {
		t.Errorf("AddLong lookup: got %q, want tiny", got)
	}
}

// allocatedDuring reports the bytes allocated while fn runs.
func allocatedDuring(fn func()) uint64 {
	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	fn()
	runtime.ReadMemStats(&after)
	return after.TotalAlloc - before.TotalAlloc
}

func TestReadStringTableOversizedPrefix(t *testing.T) {
	outOfBounds := &errors.Error{Phase: errors.PhaseDecode, Kind: errors.KindOutOfBounds}

	for _, prefix := range []uint32{0x7ffffff0, 0xffffffff} {
		raw := binary.LittleEndian.AppendUint32(nil, prefix)
		raw = append(raw, "short\x00"...)

		var err error
		n := allocatedDuring(func() {
			_, err = coff.ReadStringTable(bytes.NewReader(raw))
		})
		if !stderrors.Is(err, outOfBounds) {
			t.Errorf("prefix 0x%08x: got %v, want [decode] out_of_bounds", prefix, err)
		}
		if n > 1<<20 {
			t.Errorf("prefix 0x%08x: allocated %d bytes", prefix, n)
		}
	}
}

func TestStringTableLookupUnterminated(t *testing.T) {
	st, err := coff.ReadStringTable(strings.NewReader("\x0e\x00\x00\x00first\x00trailing"))
	if err != nil {
		t.Fatalf("ReadStringTable: %v", err)
	}
	got, err := st.Lookup(10)
	if err != nil {
		t.Fatalf("Lookup(10): %v", err)
	}
	if got != "trailing" {
		t.Errorf("Lookup(10): got %q, want %q", got, "trailing")
	}
}

func TestStringTableRejectsInvalidUTF8(t *testing.T) {
	invalid := &errors.Error{Phase: errors.PhaseConstruct, Kind: errors.KindInvalidInput}

	for _, name := range []string{"\xff", "bad\xfe", "a_long_name_\xc3"} {
		st := coff.NewStringTable()
		if _, err := st.Add(name); !stderrors.Is(err, invalid) {
			t.Errorf("Add(%q): got %v, want [construct] invalid_input", name, err)
		}
		if st.Len() != 0 {
			t.Errorf("Add(%q): blob grew to %d bytes", name, st.Len())
		}
	}
}
