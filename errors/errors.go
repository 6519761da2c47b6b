package errors

import (
	"fmt"
	"go/token"
	"sort"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseLoad    Phase = "load"    // package loading and type checking
	PhaseStatic  Phase = "static"  // sibling layout synthesis
	PhaseDynamic Phase = "dynamic" // size contract generation
	PhaseEmit    Phase = "emit"    // output formatting and writing
	PhaseWIT     Phase = "wit"     // WIT record sizing
)

// Kind categorizes the error
type Kind string

const (
	KindUnsupportedShape    Kind = "unsupported_shape"
	KindDegenerateShape     Kind = "degenerate_shape"
	KindMalformedAnnotation Kind = "malformed_annotation"
	KindDependency          Kind = "dependency"
	KindNotFound            Kind = "not_found"
	KindInvalidInput        Kind = "invalid_input"
	KindFormat              Kind = "format"
)

// Error is the structured error type used throughout nopad
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Type   string
	GoType string
	Detail string
	Path   []string
	Pos    token.Position
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	if e.Pos.IsValid() {
		b.WriteString(e.Pos.String())
		b.WriteString(": ")
	}

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Type != "" || len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.location(), "."))
	}

	if e.GoType != "" {
		b.WriteString(": Go type ")
		b.WriteString(e.GoType)
	}

	if e.Detail != "" {
		if e.GoType != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

func (e *Error) location() []string {
	if e.Type == "" {
		return e.Path
	}
	return append([]string{e.Type}, e.Path...)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Pos sets the source position of the declaration or member
func (b *Builder) Pos(pos token.Position) *Builder {
	b.err.Pos = pos
	return b
}

// Type sets the name of the type declaration
func (b *Builder) Type(name string) *Builder {
	b.err.Type = name
	return b
}

// Path sets the member path inside the declaration
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// SumType creates the error reported when a sum type is asked for a size.
// shape describes the declaration ("interface", "enum-like uint8").
func SumType(phase Phase, pos token.Position, typeName, shape string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupportedShape,
		Pos:    pos,
		Type:   typeName,
		Detail: fmt.Sprintf("SizeOfNoPadding%s does not work for %s types", operation(phase), shape),
	}
}

func operation(phase Phase) string {
	if phase == PhaseDynamic {
		return "Any"
	}
	return ""
}

// Degenerate creates the error reported for a declaration without data members
func Degenerate(phase Phase, pos token.Position, typeName string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindDegenerateShape,
		Pos:    pos,
		Type:   typeName,
		Detail: "declaration has no data-bearing members",
	}
}

// VariableLength creates the error reported when the static strategy meets a
// member whose size depends on live data
func VariableLength(pos token.Position, typeName string, path []string, goType string) *Error {
	return &Error{
		Phase:  PhaseStatic,
		Kind:   KindUnsupportedShape,
		Pos:    pos,
		Type:   typeName,
		Path:   path,
		GoType: goType,
		Detail: "static size is undefined for variable-length members",
	}
}

// Dependency creates the error reported when a member's type was itself rejected
func Dependency(phase Phase, pos token.Position, typeName string, path []string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindDependency,
		Pos:    pos,
		Type:   typeName,
		Path:   path,
		Detail: "member type failed generation",
		Cause:  cause,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Diagnostics is every error reported while generating one package.
// It halts the build as a whole; no partial output is written.
type Diagnostics struct {
	Errors []*Error
}

// Add appends err, flattening nested Diagnostics
func (d *Diagnostics) Add(err error) {
	switch e := err.(type) {
	case nil:
	case *Diagnostics:
		d.Errors = append(d.Errors, e.Errors...)
	case *Error:
		d.Errors = append(d.Errors, e)
	default:
		d.Errors = append(d.Errors, Wrap(PhaseLoad, KindInvalidInput, err, ""))
	}
}

// Err returns d when it holds at least one error, nil otherwise
func (d *Diagnostics) Err() error {
	if len(d.Errors) == 0 {
		return nil
	}
	return d
}

func (d *Diagnostics) Error() string {
	if len(d.Errors) == 0 {
		return "no diagnostics"
	}

	sorted := make([]*Error, len(d.Errors))
	copy(sorted, d.Errors)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Pos, sorted[j].Pos
		if a.Filename != b.Filename {
			return a.Filename < b.Filename
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})

	var b strings.Builder
	fmt.Fprintf(&b, "%d error(s):", len(sorted))
	for _, e := range sorted {
		b.WriteString("\n  ")
		b.WriteString(e.Error())
	}
	return b.String()
}

// Unwrap exposes the individual errors to errors.Is/As
func (d *Diagnostics) Unwrap() []error {
	errs := make([]error, len(d.Errors))
	for i, e := range d.Errors {
		errs[i] = e
	}
	return errs
}
