package features

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrMissingFeature = errors.New("missing feature")
	ErrOutOfDomain    = errors.New("feature out of domain")
)

// MissingFeatureError reports a required field absent from the raw input.
type MissingFeatureError struct {
	Field string
}

func (e *MissingFeatureError) Error() string {
	return fmt.Sprintf("missing feature %q", e.Field)
}

// Unwrap exposes the sentinel kind.
func (e *MissingFeatureError) Unwrap() error { return ErrMissingFeature }

// DomainError reports a value that is present but not acceptable for its field.
type DomainError struct {
	Field  string
	Value  any
	Reason string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("feature %q: %s (got %v)", e.Field, e.Reason, e.Value)
}

// Unwrap exposes the sentinel kind.
func (e *DomainError) Unwrap() error { return ErrOutOfDomain }
