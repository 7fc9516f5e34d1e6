package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseLabel    Phase = "label"    // label tree access and edits
	PhaseProfile  Phase = "profile"  // registry lookup and configuration
	PhaseBuild    Phase = "build"    // decomposition tree construction
	PhaseCompress Phase = "compress" // decomposition tree folding
	PhaseStream   Phase = "stream"   // byte conversion
	PhaseObject   Phase = "object"   // object-layer edits
	PhaseMigrate  Phase = "migrate"  // label version migration
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidArgument    Kind = "invalid_argument"
	KindMissingKeyword     Kind = "missing_keyword"
	KindUnsupported        Kind = "unsupported"
	KindStructuralMismatch Kind = "structural_mismatch"
	KindUnknownDataType    Kind = "unknown_data_type"
	KindAllocation         Kind = "allocation"
	KindNotFound           Kind = "not_found"

	// Conversion issue kinds. These are accumulated during streaming rather
	// than returned as failures.
	KindOverflow      Kind = "overflow"
	KindSignLoss      Kind = "sign_loss"
	KindPrecisionLoss Kind = "precision_loss"
	KindInvalidData   Kind = "invalid_data"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value    any
	Cause    error
	Phase    Phase
	Kind     Kind
	DataType string
	Keyword  string
	Detail   string
	Path     []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.DataType != "" || e.Keyword != "" {
		b.WriteString(": ")
		if e.DataType != "" && e.Keyword != "" {
			b.WriteString("keyword ")
			b.WriteString(e.Keyword)
			b.WriteString(", data type ")
			b.WriteString(e.DataType)
		} else if e.Keyword != "" {
			b.WriteString("keyword ")
			b.WriteString(e.Keyword)
		} else {
			b.WriteString("data type ")
			b.WriteString(e.DataType)
		}
	}

	if e.Detail != "" {
		if e.DataType != "" || e.Keyword != "" {
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

// KindOf returns the Kind of the first *Error in err's chain, or "" if there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given Kind regardless of phase.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
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

// Path sets the object path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// DataType sets the PDS data type name
func (b *Builder) DataType(t string) *Builder {
	b.err.DataType = t
	return b
}

// Keyword sets the label keyword involved
func (b *Builder) Keyword(k string) *Builder {
	b.err.Keyword = k
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
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

// InvalidArgument creates an invalid argument error
func InvalidArgument(phase Phase, detail string, args ...any) *Error {
	return New(phase, KindInvalidArgument).Detail(detail, args...).Build()
}

// MissingKeyword creates a missing required keyword error
func MissingKeyword(phase Phase, path []string, keyword string) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindMissingKeyword,
		Path:    path,
		Keyword: keyword,
		Detail:  "required keyword not found",
	}
}

// Unsupported creates an unsupported construct error
func Unsupported(phase Phase, path []string, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Path:   path,
		Detail: what,
	}
}

// StructuralMismatch creates an error for layouts that disagree with declared sizes
func StructuralMismatch(phase Phase, path []string, what string, declared, actual int64) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindStructuralMismatch,
		Path:   path,
		Detail: fmt.Sprintf("%s: declared %d, derived %d", what, declared, actual),
		Value:  actual,
	}
}

// UnknownDataType creates an error for type/width pairs absent from the active registry
func UnknownDataType(phase Phase, path []string, dataType string, width int) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindUnknownDataType,
		Path:     path,
		DataType: dataType,
		Detail:   fmt.Sprintf("unsupported width %d", width),
		Value:    width,
	}
}

// AllocationFailed creates an allocation failure error
func AllocationFailed(phase Phase, size int64, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAllocation,
		Detail: fmt.Sprintf("failed to allocate %d bytes", size),
		Cause:  cause,
		Value:  size,
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

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
