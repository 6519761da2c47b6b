// Package gen generates no-padding size methods for Go struct types.
//
// A type opts in with a directive in its doc comment:
//
//	//nopad:static
//	//nopad:dynamic
//
// or by name through Config.Types. For every requested type the generator
// emits code into a single file per package:
//
//	Static   sibling struct _TSizeOfNoPadding whose members are byte arrays,
//	         plus SizeOfNoPadding() returning its size (a constant)
//	Dynamic  SizeOfNoPaddingAny() summing every member's contract size
//
// Generic types get the same methods with the receiver carrying the full
// type parameter list; their static size is a sum of unsafe.Sizeof terms
// because array lengths cannot depend on type parameters.
//
// # Pipeline
//
//	Load (go/packages) → requests → Enumerate → static/dynamic emit
//	    → dependency fixpoint → go/format
//
// Every problem found is collected into one errors.Diagnostics; a package
// with diagnostics produces no output at all.
//
// # Determinism
//
// Requests are processed in source order and all names are derived from the
// declaration, so the same package always yields the same bytes.
package gen
