package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf_WrappedError(t *testing.T) {
	err := fmt.Errorf("clock in: %w", NotFound("Student not found"))
	if got := KindOf(err); got != KindNotFound {
		t.Fatalf("expected not_found, got %s", got)
	}
	if got := Message(err, "Server error"); got != "Student not found" {
		t.Fatalf("unexpected message: %s", got)
	}
}

func TestKindOf_Unclassified(t *testing.T) {
	err := errors.New("connection refused")
	if got := KindOf(err); got != KindInternal {
		t.Fatalf("expected internal, got %s", got)
	}
	if got := Message(err, "Server error"); got != "Server error" {
		t.Fatalf("unexpected message: %s", got)
	}
}

func TestInternal_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := Internal("MENTOR_KEY not configured", cause)
	if !errors.Is(err, cause) {
		t.Fatal("expected internal error to wrap its cause")
	}
	if err.Error() != "MENTOR_KEY not configured: boom" {
		t.Fatalf("unexpected error text: %s", err.Error())
	}
}
