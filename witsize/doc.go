// Package witsize computes no-padding sizes of WIT records and tuples.
//
// Sizes follow the Canonical ABI memory layout: primitives are naturally
// aligned, strings and lists are a (ptr, len) pair of u32, and records place
// each field at the next multiple of its alignment. The no-padding size is
// the sum of field sizes with every gap removed, recursing into nested
// records and tuples.
//
// Only records and tuples can be asked for a size. Variants, enums, options
// and results are sum types and are rejected, although they may appear as
// fields, where they count their full Canonical ABI size.
package witsize
