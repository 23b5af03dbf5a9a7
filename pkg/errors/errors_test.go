package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	plain := New(ErrCodeInvalidInput, "bad node %q", "x")
	if got, want := plain.Error(), `INVALID_INPUT: bad node "x"`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	cause := stderrors.New("disk full")
	wrapped := Wrap(ErrCodeInternal, cause, "writing layout")
	if got, want := wrapped.Error(), "INTERNAL_ERROR: writing layout: disk full"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !stderrors.Is(wrapped, cause) {
		t.Error("wrapped error should unwrap to its cause")
	}
}

func TestIsAndGetCode(t *testing.T) {
	err := New(ErrCodeFileNotFound, "no such file")
	deep := fmt.Errorf("outer: %w", err)

	if !Is(deep, ErrCodeFileNotFound) {
		t.Error("Is should find the code through wrapping")
	}
	if Is(deep, ErrCodeInternal) {
		t.Error("Is matched the wrong code")
	}
	if got := GetCode(deep); got != ErrCodeFileNotFound {
		t.Errorf("GetCode = %q, want %q", got, ErrCodeFileNotFound)
	}
	if got := GetCode(stderrors.New("plain")); got != "" {
		t.Errorf("GetCode(plain) = %q, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeInvalidGraph, "edge references unknown node")); got != "edge references unknown node" {
		t.Errorf("UserMessage = %q", got)
	}
	if got := UserMessage(stderrors.New("raw")); got != "raw" {
		t.Errorf("UserMessage(plain) = %q", got)
	}
}
