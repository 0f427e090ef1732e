package coff

import (
	"unicode/utf8"

	"github.com/wippyai/coffkit/errors"
)

// AuxRecord is an 18-byte auxiliary symbol record. The set of
// implementations is closed: *SectionDefinition and FileName.
type AuxRecord interface {
	auxRecord()
}

// SectionDefinition is the auxiliary record of a section symbol. Length and
// counts are taken from Target when the file is encoded; the checksum is
// always written as 0.
type SectionDefinition struct {
	target *Section
	number uint16
}

// NewSectionDefinition creates a section definition record for target.
// number is the 1-based section index written into the record.
func NewSectionDefinition(target *Section, number uint16) (*SectionDefinition, error) {
	if target == nil {
		return nil, errors.NilPointer(errors.PhaseConstruct, []string{"section definition"}, "target section")
	}
	return &SectionDefinition{target: target, number: number}, nil
}

// Target returns the section the record describes.
func (d *SectionDefinition) Target() *Section { return d.target }

// Number returns the section index stored in the record.
func (d *SectionDefinition) Number() uint16 { return d.number }

func (*SectionDefinition) auxRecord() {}

// FileName is the auxiliary record of a .file symbol: up to 18 bytes of
// UTF-8, NUL-padded.
type FileName struct {
	field [AuxRecordSize]byte
	n     int
}

// NewFileNameAux creates a file name record. Names longer than 18 bytes
// need several records; see FileNameRecords.
func NewFileNameAux(name string) (FileName, error) {
	if len(name) > AuxRecordSize {
		return FileName{}, errors.New(errors.PhaseConstruct, errors.KindInvalidInput).
			Path("file name").
			Value(name).
			Detail("%d bytes exceed one %d-byte record", len(name), AuxRecordSize).
			Build()
	}
	if !utf8.ValidString(name) {
		return FileName{}, errors.New(errors.PhaseConstruct, errors.KindInvalidInput).
			Path("file name").
			Value(name).
			Detail("file name is not valid UTF-8").
			Build()
	}
	f := FileName{n: len(name)}
	copy(f.field[:], name)
	return f, nil
}

// FileNameRecords splits name into as many consecutive file name records as
// it needs. An empty name yields one empty record.
func FileNameRecords(name string) ([]AuxRecord, error) {
	if !utf8.ValidString(name) {
		return nil, errors.New(errors.PhaseConstruct, errors.KindInvalidInput).
			Path("file name").
			Value(name).
			Detail("file name is not valid UTF-8").
			Build()
	}
	raw := []byte(name)
	count := (len(raw) + AuxRecordSize - 1) / AuxRecordSize
	if count == 0 {
		count = 1
	}
	if count > MaxAuxRecords {
		return nil, errors.Overflow(errors.PhaseConstruct, []string{"file name"}, count, "NumberOfAuxSymbols")
	}
	out := make([]AuxRecord, 0, count)
	for i := 0; i < count; i++ {
		end := min((i+1)*AuxRecordSize, len(raw))
		var f FileName
		f.n = copy(f.field[:], raw[i*AuxRecordSize:end])
		out = append(out, f)
	}
	return out, nil
}

// Bytes returns the 18-byte record.
func (f FileName) Bytes() [AuxRecordSize]byte { return f.field }

// String returns the name fragment without padding.
func (f FileName) String() string { return string(f.field[:f.n]) }

func (FileName) auxRecord() {}
