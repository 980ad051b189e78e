package prediction

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrPredictionInvocation = errors.New("prediction invocation failed")
	ErrUnknownClassIndex    = errors.New("unknown class index")
)

// InvocationError reports a failed classifier call. No partial result exists.
type InvocationError struct {
	Cause error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("%v: %v", ErrPredictionInvocation, e.Cause)
}

// Is reports ErrPredictionInvocation as the kind of every InvocationError.
func (e *InvocationError) Is(target error) bool { return target == ErrPredictionInvocation }

// Unwrap returns the underlying cause.
func (e *InvocationError) Unwrap() error { return e.Cause }

// UnknownClassIndexError reports an argmax index outside the class index map,
// which means the artifact and the code disagree on the class count.
type UnknownClassIndexError struct {
	Index int
}

func (e *UnknownClassIndexError) Error() string {
	return fmt.Sprintf("%v: %d", ErrUnknownClassIndex, e.Index)
}

// Unwrap exposes the sentinel kind.
func (e *UnknownClassIndexError) Unwrap() error { return ErrUnknownClassIndex }
