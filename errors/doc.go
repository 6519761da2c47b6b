// Package errors provides structured error types for nopad.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the source position, the type declaration being processed,
// the member path inside it, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseStatic, errors.KindUnsupportedShape).
//		Pos(pos).
//		Type("Packet").
//		Path("payload").
//		GoType("[]byte").
//		Detail("static size is undefined for variable-length members").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.SumType(errors.PhaseDynamic, pos, "Shape", "interface")
//	err := errors.Degenerate(errors.PhaseStatic, pos, "Marker")
//
// Every diagnostic for one package is collected into a Diagnostics value,
// which is what the generator returns to the build.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
