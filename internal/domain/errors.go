package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Match with errors.Is.
var (
	ErrInvalidRequest         = errors.New("invalid request")
	ErrModelUnavailable       = errors.New("model unavailable")
	ErrInferenceFailed        = errors.New("inference failed")
	ErrRecursionLimitExceeded = errors.New("recursion limit exceeded")
)

// Error carries an error kind, the operation that failed and the cause.
type Error struct {
	Kind error
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func InvalidRequest(op, format string, args ...any) error {
	return newError(ErrInvalidRequest, op, fmt.Errorf(format, args...))
}

func ModelUnavailable(op string, err error) error {
	return newError(ErrModelUnavailable, op, err)
}

func InferenceFailed(op string, err error) error {
	return newError(ErrInferenceFailed, op, err)
}

func RecursionLimit(op string, depth int) error {
	return newError(ErrRecursionLimitExceeded, op, fmt.Errorf("depth %d", depth))
}

// KindOf returns the error kind of err, or nil if err carries none.
func KindOf(err error) error {
	for _, kind := range []error{ErrInvalidRequest, ErrModelUnavailable, ErrInferenceFailed, ErrRecursionLimitExceeded} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
