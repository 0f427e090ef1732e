package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseEncode,
				Kind:   KindOverflow,
				Path:   []string{"section", ".text", "relocations"},
				Field:  "u16",
				Detail: "too many relocations",
			},
			contains: []string{"[encode]", "overflow", "section..text.relocations", "field u16", "too many relocations"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseDecode,
				Kind:  KindOutOfBounds,
			},
			contains: []string{"[decode]", "out_of_bounds"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseLoad,
				Kind:   KindInvalidData,
				Detail: "bad manifest",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[load]", "invalid_data", "bad manifest", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseEncode,
		Kind:  KindInvalidData,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is did not reach cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseEncode,
		Kind:  KindOverflow,
		Path:  []string{"foo"},
	}

	if !err.Is(&Error{Phase: PhaseEncode, Kind: KindOverflow}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseDecode, Kind: KindOverflow}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseEncode, Kind: KindInvariant}) {
		t.Error("Is should not match different kind")
	}

	target := &Error{Phase: PhaseEncode, Kind: KindOverflow}
	if !errors.Is(err, target) {
		t.Error("errors.Is should match")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseConstruct, KindInvalidInput).
		Path("name").
		Field("short name").
		Value(9).
		Cause(cause).
		Detail("%d bytes exceeds %d", 9, 8).
		Build()

	if err.Phase != PhaseConstruct {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseConstruct)
	}
	if err.Kind != KindInvalidInput {
		t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidInput)
	}
	if len(err.Path) != 1 || err.Path[0] != "name" {
		t.Errorf("Path = %v, want [name]", err.Path)
	}
	if err.Field != "short name" {
		t.Errorf("Field = %v, want 'short name'", err.Field)
	}
	if err.Value != 9 {
		t.Errorf("Value = %v, want 9", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "9 bytes exceeds 8" {
		t.Errorf("Detail = %v, want '9 bytes exceeds 8'", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("Overflow", func(t *testing.T) {
		err := Overflow(PhaseEncode, []string{"val"}, 300, "u8")
		if err.Kind != KindOverflow {
			t.Errorf("Kind = %v, want %v", err.Kind, KindOverflow)
		}
		if err.Value != 300 {
			t.Errorf("Value = %v, want 300", err.Value)
		}
		if err.Field != "u8" {
			t.Errorf("Field = %v, want u8", err.Field)
		}
	})

	t.Run("OutOfBounds", func(t *testing.T) {
		err := OutOfBounds(PhaseDecode, []string{"strtab"}, 10, 5)
		if err.Kind != KindOutOfBounds {
			t.Errorf("Kind = %v, want %v", err.Kind, KindOutOfBounds)
		}
		if err.Value != 10 {
			t.Errorf("Value = %v, want 10", err.Value)
		}
	})

	t.Run("ShortRead", func(t *testing.T) {
		err := ShortRead([]string{"file header"}, 20, 3)
		if err.Phase != PhaseDecode || err.Kind != KindOutOfBounds {
			t.Errorf("got [%v] %v", err.Phase, err.Kind)
		}
		if !strings.Contains(err.Detail, "20") {
			t.Errorf("Detail = %v, should contain wanted size", err.Detail)
		}
	})

	t.Run("Invariant", func(t *testing.T) {
		err := Invariant([]string{"symbol", "foo"}, "section not in file")
		if err.Phase != PhaseEncode || err.Kind != KindInvariant {
			t.Errorf("got [%v] %v", err.Phase, err.Kind)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		err := NotFound(PhaseLoad, "section", ".data")
		if err.Kind != KindNotFound {
			t.Errorf("Kind = %v, want %v", err.Kind, KindNotFound)
		}
		if !strings.Contains(err.Error(), `section ".data" not found`) {
			t.Errorf("Error() = %q", err.Error())
		}
	})

	t.Run("NilPointer", func(t *testing.T) {
		err := NilPointer(PhaseConstruct, []string{"relocation"}, "symbol")
		if err.Kind != KindNilPointer {
			t.Errorf("Kind = %v, want %v", err.Kind, KindNilPointer)
		}
	})

	t.Run("Unsupported", func(t *testing.T) {
		err := Unsupported(PhaseConstruct, "16-bit relocations")
		if err.Kind != KindUnsupported {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUnsupported)
		}
	})

	t.Run("Load", func(t *testing.T) {
		cause := errors.New("yaml: line 3")
		err := Load("parse manifest", cause)
		if err.Phase != PhaseLoad {
			t.Errorf("Phase = %v, want %v", err.Phase, PhaseLoad)
		}
		if !errors.Is(err, cause) {
			t.Error("Load should wrap its cause")
		}
	})
}
