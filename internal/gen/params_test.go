package gen

import (
	"go/types"
	"testing"
)

func TestTypeParams(t *testing.T) {
	pkg := load(t, `package p

type number interface{ ~int | ~float64 }

type Plain struct{ a int }

type One[T any] struct{ a T }

type Two[K comparable, V number] struct {
	k K
	v V
}
`)

	tests := []struct {
		typ      string
		generic  bool
		receiver string
		decl     string
	}{
		{"Plain", false, "Plain", ""},
		{"One", true, "One[T]", "[T any]"},
		{"Two", true, "Two[K, V]", "[K comparable, V number]"},
	}

	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			named := lookup(t, pkg, tt.typ).Type().(*types.Named)
			tp := paramsOf(named, newImportSet(pkg.Types).qualifier)
			if tp.Generic() != tt.generic {
				t.Errorf("Generic() = %v, want %v", tp.Generic(), tt.generic)
			}
			if got := tp.Receiver(tt.typ); got != tt.receiver {
				t.Errorf("Receiver() = %q, want %q", got, tt.receiver)
			}
			if got := tp.Decl(); got != tt.decl {
				t.Errorf("Decl() = %q, want %q", got, tt.decl)
			}
		})
	}

	if tp := paramsOf(nil, nil); tp.Generic() {
		t.Error("paramsOf(nil) is generic")
	}
}
