package dataset

import (
	"fmt"
	"strings"
)

// SchemaError reports a column or nested path that is absent or has an
// unexpected shape. It is never recoverable in-process.
type SchemaError struct {
	// Path is the column name or dotted JSON path at fault.
	Path string

	// Reason describes what was expected.
	Reason string

	Err error
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("schema error at %q: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("schema error at %q: %s", e.Path, e.Reason)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *SchemaError) Unwrap() error {
	return e.Err
}

// missingColumnsError builds a SchemaError naming every missing column.
func missingColumnsError(missing []string) *SchemaError {
	return &SchemaError{
		Path:   strings.Join(missing, ","),
		Reason: fmt.Sprintf("%d expected column(s) not present", len(missing)),
	}
}
