package errors

import (
	"errors"
	"go/token"
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
				Pos:    token.Position{Filename: "types.go", Line: 12, Column: 6},
				Phase:  PhaseStatic,
				Kind:   KindUnsupportedShape,
				Type:   "Packet",
				Path:   []string{"header", "options"},
				GoType: "[]uint8",
				Detail: "variable length",
			},
			contains: []string{"types.go:12:6", "[static]", "unsupported_shape", "Packet.header.options", "[]uint8", "variable length"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseStatic,
				Kind:  KindDegenerateShape,
			},
			contains: []string{"[static]", "degenerate_shape"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseDynamic,
				Kind:   KindDependency,
				Type:   "Outer",
				Detail: "member type failed generation",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[dynamic]", "dependency", "Outer", "caused by", "underlying error"},
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

func TestError_NoPosition(t *testing.T) {
	err := &Error{Phase: PhaseLoad, Kind: KindNotFound, Detail: "gone"}
	if got := err.Error(); got != "[load] not_found: gone" {
		t.Errorf("Error() = %q", got)
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseEmit,
		Kind:  KindFormat,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}

	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseStatic,
		Kind:  KindUnsupportedShape,
		Path:  []string{"foo"},
	}

	if !err.Is(&Error{Phase: PhaseStatic, Kind: KindUnsupportedShape}) {
		t.Error("Is should match same phase and kind")
	}

	if err.Is(&Error{Phase: PhaseDynamic, Kind: KindUnsupportedShape}) {
		t.Error("Is should not match different phase")
	}

	if err.Is(&Error{Phase: PhaseStatic, Kind: KindDegenerateShape}) {
		t.Error("Is should not match different kind")
	}

	target := &Error{Phase: PhaseStatic, Kind: KindUnsupportedShape}
	if !errors.Is(err, target) {
		t.Error("errors.Is should match")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	pos := token.Position{Filename: "a.go", Line: 3, Column: 1}
	err := New(PhaseStatic, KindUnsupportedShape).
		Pos(pos).
		Type("Abc").
		Path("d").
		GoType("[]uint16").
		Cause(cause).
		Detail("member %s is %s", "d", "variable").
		Build()

	if err.Phase != PhaseStatic {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseStatic)
	}
	if err.Kind != KindUnsupportedShape {
		t.Errorf("Kind = %v, want %v", err.Kind, KindUnsupportedShape)
	}
	if err.Pos != pos {
		t.Errorf("Pos = %v, want %v", err.Pos, pos)
	}
	if err.Type != "Abc" {
		t.Errorf("Type = %v, want Abc", err.Type)
	}
	if len(err.Path) != 1 || err.Path[0] != "d" {
		t.Errorf("Path = %v, want [d]", err.Path)
	}
	if err.GoType != "[]uint16" {
		t.Errorf("GoType = %v, want '[]uint16'", err.GoType)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "member d is variable" {
		t.Errorf("Detail = %v, want 'member d is variable'", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	pos := token.Position{Filename: "shape.go", Line: 1, Column: 6}

	t.Run("SumType static", func(t *testing.T) {
		err := SumType(PhaseStatic, pos, "Shape", "interface")
		if err.Kind != KindUnsupportedShape {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUnsupportedShape)
		}
		if !strings.Contains(err.Detail, "SizeOfNoPadding does not work for interface") {
			t.Errorf("Detail = %q", err.Detail)
		}
	})

	t.Run("SumType dynamic", func(t *testing.T) {
		err := SumType(PhaseDynamic, pos, "Color", "enum-like uint8")
		if !strings.Contains(err.Detail, "SizeOfNoPaddingAny") {
			t.Errorf("Detail = %q, should name the dynamic operation", err.Detail)
		}
	})

	t.Run("Degenerate", func(t *testing.T) {
		err := Degenerate(PhaseStatic, pos, "Marker")
		if err.Kind != KindDegenerateShape {
			t.Errorf("Kind = %v, want %v", err.Kind, KindDegenerateShape)
		}
	})

	t.Run("VariableLength", func(t *testing.T) {
		err := VariableLength(pos, "Abc", []string{"d"}, "[]uint16")
		if err.Phase != PhaseStatic || err.Kind != KindUnsupportedShape {
			t.Errorf("got %s/%s", err.Phase, err.Kind)
		}
	})

	t.Run("Dependency", func(t *testing.T) {
		cause := Degenerate(PhaseStatic, pos, "Inner")
		err := Dependency(PhaseDynamic, pos, "Outer", []string{"inner"}, cause)
		if !errors.Is(err, &Error{Phase: PhaseStatic, Kind: KindDegenerateShape}) {
			t.Error("dependency error should unwrap to its cause")
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		err := NotFound(PhaseLoad, "type", "Missing")
		if !strings.Contains(err.Error(), `type "Missing" not found`) {
			t.Errorf("Error() = %q", err.Error())
		}
	})
}

func TestDiagnostics(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		var d Diagnostics
		if d.Err() != nil {
			t.Error("empty diagnostics should not be an error")
		}
	})

	t.Run("sorted by position", func(t *testing.T) {
		var d Diagnostics
		d.Add(Degenerate(PhaseStatic, token.Position{Filename: "b.go", Line: 1, Column: 1}, "B"))
		d.Add(Degenerate(PhaseStatic, token.Position{Filename: "a.go", Line: 9, Column: 1}, "A9"))
		d.Add(Degenerate(PhaseStatic, token.Position{Filename: "a.go", Line: 2, Column: 1}, "A2"))

		msg := d.Err().Error()
		if !strings.HasPrefix(msg, "3 error(s):") {
			t.Errorf("message = %q", msg)
		}
		a2 := strings.Index(msg, "A2")
		a9 := strings.Index(msg, "A9")
		b := strings.Index(msg, " B:")
		if !(a2 < a9 && a9 < b) {
			t.Errorf("diagnostics not in position order: %q", msg)
		}
	})

	t.Run("flattens nested", func(t *testing.T) {
		var inner, outer Diagnostics
		inner.Add(NotFound(PhaseLoad, "type", "X"))
		inner.Add(NotFound(PhaseLoad, "type", "Y"))
		outer.Add(&inner)
		outer.Add(nil)
		if len(outer.Errors) != 2 {
			t.Errorf("expected 2 errors, got %d", len(outer.Errors))
		}
	})

	t.Run("errors.Is through diagnostics", func(t *testing.T) {
		var d Diagnostics
		d.Add(SumType(PhaseStatic, token.Position{}, "S", "interface"))
		if !errors.Is(d.Err(), &Error{Phase: PhaseStatic, Kind: KindUnsupportedShape}) {
			t.Error("errors.Is should see through Diagnostics")
		}
	})

	t.Run("foreign error wrapped", func(t *testing.T) {
		var d Diagnostics
		plain := errors.New("plain")
		d.Add(plain)
		if !errors.Is(d.Err(), plain) {
			t.Error("plain error should remain reachable")
		}
	})
}
