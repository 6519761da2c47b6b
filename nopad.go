package nopad

import (
	"unsafe"

	"golang.org/x/exp/constraints"
)

// SizeOf is implemented by types with a static no-padding size.
// The receiver is never read; the zero value answers for the type.
type SizeOf interface {
	SizeOfNoPadding() uintptr
}

// SizeOfAny is implemented by values that report their own no-padding size,
// including the live contents of variable-length members.
type SizeOfAny interface {
	SizeOfNoPaddingAny() uintptr
}

// Primitive is every type whose no-padding size is its platform size.
type Primitive interface {
	constraints.Integer | constraints.Float | constraints.Complex | ~bool
}

// Static returns the static no-padding size of T without an instance.
func Static[T SizeOf]() uintptr {
	var zero T
	return zero.SizeOfNoPadding()
}

// Of returns the size of a primitive value.
func Of[T Primitive](v T) uintptr {
	return unsafe.Sizeof(v)
}

// Slice returns the summed size of a slice of primitives.
func Slice[T Primitive](s []T) uintptr {
	var zero T
	return uintptr(len(s)) * unsafe.Sizeof(zero)
}

// SliceAny returns the summed contract size of every element of s.
// Elements may differ in size, so this is never len(s) times one element.
func SliceAny[T SizeOfAny](s []T) uintptr {
	var size uintptr
	for i := range s {
		size += s[i].SizeOfNoPaddingAny()
	}
	return size
}

// String returns the number of bytes held by s.
func String[T ~string](s T) uintptr {
	return uintptr(len(s))
}
