// pkg/normalizer/errors.go
package normalizer

import (
	"fmt"
	"strings"
)

// SchemaError indicates a rule set references columns the source table does
// not have. It is fatal for that table only; other tables keep normalizing.
type SchemaError struct {
	Table   string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("table %s: missing required columns: %s",
		e.Table, strings.Join(e.Missing, ", "))
}

// CoercionError describes a single cell that could not be converted to an
// integer measure. It is never returned from Normalize; it travels inside a
// Discard so per-cell failures stay counted but isolated.
type CoercionError struct {
	Value  string
	Reason string
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("cannot coerce %q to measure: %s", e.Value, e.Reason)
}

// Discard records one emitted-record candidate dropped because its cell
// failed coercion. Row is the index into the raw table's row sequence.
type Discard struct {
	Row    int
	Column string
	Err    *CoercionError
}

func (d Discard) String() string {
	return fmt.Sprintf("row %d column %s: %s", d.Row, d.Column, d.Err.Error())
}
