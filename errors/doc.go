// Package errors provides structured error types for the pdscore module.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: object path, keyword, data type, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseBuild, errors.KindMissingKeyword).
//		Path("TABLE", "TIME").
//		Keyword("START_BYTE").
//		Detail("column has no start byte").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.UnknownDataType(errors.PhaseBuild, path, "VAX_REAL", 12)
//	err := errors.StructuralMismatch(errors.PhaseBuild, path, "ROW_BYTES", 16, 12)
//
// Range and precision problems found while converting do not fail a
// conversion. They are aggregated into Issue values and returned together as
// an *IssuesError after the conversion completes.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
