// Package layout computes platform struct layouts for go/types structs.
//
// Sizes, alignments and field offsets come from a types.Sizes for the
// target platform, so the numbers match what unsafe.Sizeof reports in a
// program built for that target. Alongside the padded layout the calculator
// reports the no-padding size and the padding inserted after every field.
//
// # Layout Rules
//
//   - Fields are laid out in declaration order, each at the next offset
//     aligned to its own alignment.
//   - The struct size is the end of the last field rounded up to the
//     largest field alignment.
//   - A trailing zero-size field is padded so that its address stays
//     inside the object (gc behavior).
//   - No-padding size sums leaf members recursively: nested structs and
//     arrays of structs contribute their own no-padding size.
//
// # Usage
//
//	calc := layout.NewCalculator(types.SizesFor("gc", "amd64"))
//	info := calc.Struct(st)
//	// info.Size, info.Align, info.NoPadding, info.Fields
package layout
