package align

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an alignment failure.
type ErrorKind int

const (
	// InvalidInput: point-set length mismatch, fewer than 3 points, non-finite
	// coordinates or unusable weights.
	InvalidInput ErrorKind = iota + 1
	// DegenerateConfiguration: the centered cross-covariance has rank < 2, so
	// the rotation is not determined (coincident or colinear landmarks).
	DegenerateConfiguration
	// NumericalFailure: the decomposition did not converge or produced
	// non-finite values.
	NumericalFailure
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidInput:
		return "invalid input"
	case DegenerateConfiguration:
		return "degenerate configuration"
	case NumericalFailure:
		return "numerical failure"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Sentinels for errors.Is. An *AlignmentError matches the sentinel of its kind.
var (
	ErrInvalidInput            = &AlignmentError{Kind: InvalidInput}
	ErrDegenerateConfiguration = &AlignmentError{Kind: DegenerateConfiguration}
	ErrNumericalFailure        = &AlignmentError{Kind: NumericalFailure}
)

// AlignmentError is the error returned by every failing operation in this
// package.
type AlignmentError struct {
	Kind    ErrorKind
	Message string
	Err     error // underlying cause, if any
}

func (e *AlignmentError) Error() string {
	msg := "align: " + e.Kind.String()
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *AlignmentError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *AlignmentError of the same kind.
func (e *AlignmentError) Is(target error) bool {
	t, ok := target.(*AlignmentError)
	return ok && t.Kind == e.Kind
}

// KindOf returns the kind of the first *AlignmentError in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var ae *AlignmentError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return 0
}

func invalidInput(format string, args ...any) error {
	return &AlignmentError{Kind: InvalidInput, Message: fmt.Sprintf(format, args...)}
}

func degenerate(format string, args ...any) error {
	return &AlignmentError{Kind: DegenerateConfiguration, Message: fmt.Sprintf(format, args...)}
}

func numericalFailure(cause error, format string, args ...any) error {
	return &AlignmentError{Kind: NumericalFailure, Message: fmt.Sprintf(format, args...), Err: cause}
}
