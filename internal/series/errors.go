package series

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSchemaMismatch is matched by every *SchemaMismatchError via errors.Is.
var ErrSchemaMismatch = errors.New("schema mismatch")

// SchemaMismatchError reports that a source lacks a column the extraction needs.
// Columns holds the header actually observed so upstream format drift is visible.
type SchemaMismatchError struct {
	Source  string
	Intent  Intent
	Hint    string
	Columns []string
}

func (e *SchemaMismatchError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "schema mismatch in %s: no %s column", e.Source, e.Intent)
	if e.Hint != "" {
		fmt.Fprintf(&b, " (hint %q)", e.Hint)
	}
	if len(e.Columns) == 0 {
		b.WriteString("; found no columns")
	} else {
		fmt.Fprintf(&b, "; found columns: %s", strings.Join(e.Columns, ", "))
	}
	return b.String()
}

func (e *SchemaMismatchError) Is(target error) bool {
	return target == ErrSchemaMismatch
}
