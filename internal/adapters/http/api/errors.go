package api

import (
	"errors"
	"fmt"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest       = errors.New("bad request")
	ErrPayloadTooLarge  = errors.New("payload too large")
	ErrMethodNotAllowed = errors.New("method not allowed")
	ErrUnavailable      = errors.New("request abandoned")
	ErrInternal         = errors.New("internal error")
)

// Error carries the handler operation and the error kind alongside the cause.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Kind != nil:
		return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Kind != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	default:
		return e.Op
	}
}

// Unwrap exposes both the kind and the cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// Wrap annotates err with op.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// WrapKind annotates err with op and kind.
func WrapKind(op string, kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// NewKind returns an error of kind with no further cause.
func NewKind(op string, kind error) error {
	return &Error{Op: op, Kind: kind}
}
