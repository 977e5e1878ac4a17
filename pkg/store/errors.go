package store

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound reports a missing record or entity table.
var ErrNotFound = errors.New("store: record not found")

// IntegrityError is the write-time counterpart of the pre-save uniqueness
// check: a commit that would violate a declared constraint. Validation
// narrows the window for these but cannot close it, so callers handling
// writes must still expect one.
type IntegrityError struct {
	Entity     string
	Constraint string
	Fields     []string
	PK         string
}

func (e *IntegrityError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "store: %s violates %s constraint", e.Entity, e.Constraint)
	if len(e.Fields) > 0 {
		fmt.Fprintf(&sb, " on (%s)", strings.Join(e.Fields, ", "))
	}
	return sb.String()
}

// IsUniqueViolation reports whether err is an integrity error raised by a
// uniqueness constraint. Use this helper from call sites instead of
// re-implementing the unwrap logic.
func IsUniqueViolation(err error) bool {
	var integrityErr *IntegrityError
	if errors.As(err, &integrityErr) {
		return integrityErr.Constraint == "unique"
	}
	return false
}
