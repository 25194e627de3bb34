package shop

import (
	"errors"
	"fmt"
)

// ErrMissingIdentifier marks an upstream record that lacks the id or handle
// every canonical entity needs. It is a defect in the upstream data and is
// never defaulted away.
var ErrMissingIdentifier = errors.New("upstream record is missing its identifier")

// MissingIdentifier wraps ErrMissingIdentifier with the kind of record and the
// absent field so callers can log something useful.
func MissingIdentifier(kind, field string) error {
	return fmt.Errorf("%s %s: %w", kind, field, ErrMissingIdentifier)
}
