package align

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestAlignmentErrorIs(t *testing.T) {
	err := fmt.Errorf("mesh %q: %w", "a.obj", degenerate("colinear"))
	if !errors.Is(err, ErrDegenerateConfiguration) {
		t.Error("wrapped degenerate error does not match its sentinel")
	}
	if errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrNumericalFailure) {
		t.Error("degenerate error matches another kind")
	}
	if got := KindOf(err); got != DegenerateConfiguration {
		t.Errorf("KindOf = %v", got)
	}
	if got := KindOf(errors.New("plain")); got != 0 {
		t.Errorf("KindOf(plain) = %v, want 0", got)
	}
}

func TestAlignmentErrorCause(t *testing.T) {
	err := numericalFailure(errSVDFailed, "H=%d", 7)
	if !errors.Is(err, errSVDFailed) {
		t.Error("cause is not reachable through Unwrap")
	}
	msg := err.Error()
	for _, want := range []string{"numerical failure", "H=7", errSVDFailed.Error()} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}
}

func TestErrorKindString(t *testing.T) {
	tests := []struct {
		k    ErrorKind
		want string
	}{
		{InvalidInput, "invalid input"},
		{DegenerateConfiguration, "degenerate configuration"},
		{NumericalFailure, "numerical failure"},
		{ErrorKind(42), "ErrorKind(42)"},
	}
	for _, tt := range tests {
		if got := tt.k.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", int(tt.k), got, tt.want)
		}
	}
}
