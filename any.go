package nopad

import (
	"reflect"
)

var sizeOfAnyType = reflect.TypeFor[SizeOfAny]()

// Any returns the no-padding size of v.
//
// Values implementing SizeOfAny answer for themselves. Everything else is
// walked with reflect using the rules the generator applies: primitives,
// pointers, funcs, chans and interfaces count their platform size, strings
// count their bytes, slices, arrays and maps sum their elements, and structs
// sum their fields with padding removed.
func Any(v any) uintptr {
	if v == nil {
		return 0
	}
	if s, ok := v.(SizeOfAny); ok && hasContract(reflect.TypeOf(v)) {
		return s.SizeOfNoPaddingAny()
	}
	return valueSize(reflect.ValueOf(v))
}

func valueSize(v reflect.Value) uintptr {
	if hasContract(v.Type()) && v.CanInterface() {
		return v.Interface().(SizeOfAny).SizeOfNoPaddingAny()
	}

	switch v.Kind() {
	case reflect.String:
		return uintptr(v.Len())

	case reflect.Slice:
		if isFlat(v.Type().Elem()) {
			return uintptr(v.Len()) * v.Type().Elem().Size()
		}
		var size uintptr
		for i := 0; i < v.Len(); i++ {
			size += valueSize(v.Index(i))
		}
		return size

	case reflect.Array:
		if isFlat(v.Type().Elem()) {
			return v.Type().Size()
		}
		var size uintptr
		for i := 0; i < v.Len(); i++ {
			size += valueSize(v.Index(i))
		}
		return size

	case reflect.Map:
		var size uintptr
		iter := v.MapRange()
		for iter.Next() {
			size += valueSize(iter.Key()) + valueSize(iter.Value())
		}
		return size

	case reflect.Struct:
		var size uintptr
		for i := 0; i < v.NumField(); i++ {
			size += valueSize(v.Field(i))
		}
		return size

	default:
		return v.Type().Size()
	}
}

// TypeOf returns the static no-padding size of t: the sum of its leaf
// members' platform sizes. Strings, slices and maps count their header.
func TypeOf(t reflect.Type) uintptr {
	switch t.Kind() {
	case reflect.Array:
		if t.Len() == 0 {
			return 0
		}
		return uintptr(t.Len()) * TypeOf(t.Elem())

	case reflect.Struct:
		var size uintptr
		for i := 0; i < t.NumField(); i++ {
			size += TypeOf(t.Field(i).Type)
		}
		return size

	default:
		return t.Size()
	}
}

// StaticOf returns TypeOf for T. Generated code uses it for type-parameter
// members, whose fields are unknown until instantiation.
func StaticOf[T any]() uintptr {
	return TypeOf(reflect.TypeFor[T]())
}

// isFlat reports whether values of t have no padding and no variable-length
// contents, so their no-padding size is their platform size.
func isFlat(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.UnsafePointer, reflect.Func, reflect.Chan, reflect.Interface:
		return true
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return !hasContract(t)
	case reflect.Array:
		return !hasContract(t) && isFlat(t.Elem())
	default:
		return false
	}
}

// hasContract reports whether values of t answer for their own size.
// Pointers and interfaces are handles and always count as one header.
func hasContract(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface:
		return false
	case reflect.Struct:
		if promotesContract(t) {
			return false
		}
	}
	return t.Implements(sizeOfAnyType)
}

// promotesContract reports whether an embedded field of the struct t carries
// SizeOfNoPaddingAny. A promoted method reports only the embedded value, so
// such structs are walked field by field.
func promotesContract(t reflect.Type) bool {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous && f.Type.Implements(sizeOfAnyType) {
			return true
		}
	}
	return false
}
