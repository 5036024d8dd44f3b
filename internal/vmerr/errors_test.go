package vmerr

import (
	"errors"
	"strings"
	"testing"
)

func TestNewFormatsMessage(t *testing.T) {
	err := New(InvalidDivision, "register %d holds %s", 3, "null")
	if err.Kind != InvalidDivision {
		t.Fatalf("Kind = %v, want InvalidDivision", err.Kind)
	}
	if !strings.Contains(err.Error(), "register 3 holds null") {
		t.Fatalf("Error() = %q, want it to contain the formatted message", err.Error())
	}
}

func TestWrapPreservesCauseForUnwrap(t *testing.T) {
	cause := errors.New("division trapped")
	err := Wrap(ArithmeticError, cause, "builtin %s failed", "pow")

	if !Is(err, ArithmeticError) {
		t.Fatal("Is(err, ArithmeticError) = false")
	}
	if !strings.Contains(errors.Unwrap(err).Error(), "division trapped") {
		t.Fatalf("Unwrap() = %v, want it to surface the cause", errors.Unwrap(err))
	}
}

func TestIsReturnsFalseForOtherKindsAndPlainErrors(t *testing.T) {
	err := New(InvalidDivision, "")
	if Is(err, InvalidModulo) {
		t.Fatal("Is(err, InvalidModulo) = true, want false")
	}
	if Is(errors.New("plain"), InvalidDivision) {
		t.Fatal("Is(plain error, InvalidDivision) = true, want false")
	}
}

func TestEntryPointNotFoundErrorListsAvailableNames(t *testing.T) {
	err := EntryPointNotFoundError("allow", []string{"deny", "main"})
	if err.Kind != EntryPointNotFound {
		t.Fatalf("Kind = %v, want EntryPointNotFound", err.Kind)
	}
	if !strings.Contains(err.Error(), "allow") || !strings.Contains(err.Error(), "deny") {
		t.Fatalf("Error() = %q, want it to mention the missing name and the available ones", err.Error())
	}
}

func TestInternalSnapshotEmbedsLabelAndState(t *testing.T) {
	type state struct{ PC uint32 }
	err := InternalSnapshot("dispatch loop", state{PC: 42})
	if err.Kind != Internal {
		t.Fatalf("Kind = %v, want Internal", err.Kind)
	}
	if !strings.Contains(err.Error(), "dispatch loop") {
		t.Fatalf("Error() = %q, want it to contain the label", err.Error())
	}
}
