// Package nopad reports the padding-free size of Go values.
//
// The no-padding size of a struct is the sum of its members' sizes with
// every alignment gap removed. It is what the value would occupy if it were
// serialized field by field, and it is always less than or equal to what
// unsafe.Sizeof reports.
//
// # Two strategies
//
// Sizes are attached to struct types by the nopadgen generator:
//
//	//go:generate nopadgen
//
//	//nopad:static
//	type Abc struct {
//	    a uint8
//	    b uint32
//	    c uint8
//	}
//
//	unsafe.Sizeof(Abc{})      // 12
//	nopad.Static[Abc]()       // 6
//
// The static strategy synthesizes a sibling struct whose members are byte
// arrays of the original members' sizes; byte arrays have alignment 1, so the
// sibling's platform size is the padding-free size and it is a compile-time
// constant. Static sizes are only defined for fixed-size members.
//
// The dynamic strategy generates a SizeOfNoPaddingAny method summing the
// contract-reported size of every member of a live value:
//
//	//nopad:dynamic
//	type Abc2 struct {
//	    a uint8
//	    b uint32
//	    c uint8
//	    d []uint16
//	    e Abc3
//	}
//
//	//nopad:dynamic
//	type Abc3 struct {
//	    v [4]uint32
//	    w uint16
//	}
//
// With three elements in d, Abc2's dynamic size is 1+4+1+3*2+(16+2) = 30.
//
// # Contract
//
// SizeOfAny is the contract every generated type implements. Primitive
// values, slices and strings have baseline implementations (Of, Slice,
// SliceAny, String) that generated code calls directly. Any is the reflective
// fallback used for members whose type cannot be proven to carry the contract
// at generation time.
//
// Sum types (interfaces, enum-like named integers) have no no-padding size;
// the generator rejects them.
package nopad
