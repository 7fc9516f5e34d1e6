package errors

import (
	"fmt"
	"strings"
)

// Issue is one aggregated range or precision problem found while converting.
// Every leaf and kind pair is reported once with the number of occurrences.
type Issue struct {
	First    any    // first offending value
	Kind     Kind   // overflow, sign_loss, precision_loss, invalid_data
	Field    string // dotted path of the leaf descriptor
	DataType string // destination data type
	Count    int64
}

func (i Issue) String() string {
	return fmt.Sprintf("%s %s (%s): %d value(s), first %v", i.Field, i.Kind, i.DataType, i.Count, i.First)
}

// IssuesError carries the non-fatal problems of a conversion that otherwise completed.
type IssuesError struct {
	Issues []Issue
}

func (e *IssuesError) Error() string {
	if len(e.Issues) == 0 {
		return "[stream] no conversion issues"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d conversion issue(s):", len(e.Issues))
	for _, is := range e.Issues {
		b.WriteString("\n  - ")
		b.WriteString(is.String())
	}
	return b.String()
}

// Is reports whether target matches this error type
func (e *IssuesError) Is(target error) bool {
	_, ok := target.(*IssuesError)
	return ok
}

// Total returns the number of offending values across all issues.
func (e *IssuesError) Total() int64 {
	var n int64
	for _, is := range e.Issues {
		n += is.Count
	}
	return n
}
