// Package vmerr defines the engine's stable error taxonomy: a closed
// set of Kind values the dispatcher raises, each carrying whatever
// structured detail the caller needs without parsing a message string.
package vmerr

import (
	"fmt"

	"github.com/kr/pretty"
	"github.com/pkg/errors"
)

// Kind is one of the stable, documented error cases. Kind values are
// part of the engine's contract with its host; message text is not.
type Kind string

const (
	InstructionLimitExceeded    Kind = "InstructionLimitExceeded"
	LiteralIndexOutOfBounds     Kind = "LiteralIndexOutOfBounds"
	RegisterNotObject           Kind = "RegisterNotObject"
	RegisterNotArray            Kind = "RegisterNotArray"
	RegisterNotSet              Kind = "RegisterNotSet"
	ObjectCreateInvalidTemplate Kind = "ObjectCreateInvalidTemplate"
	RuleIndexOutOfBounds        Kind = "RuleIndexOutOfBounds"
	RuleInfoMissing             Kind = "RuleInfoMissing"

	// One Kind per parameter-block variant (§6), so a host can switch
	// on which block was malformed instead of pattern-matching the
	// message text.
	InvalidArrayCreateParams   Kind = "InvalidArrayCreateParams"
	InvalidSetCreateParams     Kind = "InvalidSetCreateParams"
	InvalidObjectCreateParams  Kind = "InvalidObjectCreateParams"
	InvalidChainedIndexParams  Kind = "InvalidChainedIndexParams"
	InvalidVirtualLookupParams Kind = "InvalidVirtualLookupParams"
	InvalidComprehensionParams Kind = "InvalidComprehensionParams"
	InvalidLoopParams          Kind = "InvalidLoopParams"
	InvalidBuiltinCallParams   Kind = "InvalidBuiltinCallParams"
	InvalidFunctionCallParams  Kind = "InvalidFunctionCallParams"

	InvalidRuleIndex        Kind = "InvalidRuleIndex"
	InvalidRuleTreeEntry    Kind = "InvalidRuleTreeEntry"
	BuiltinArgumentMismatch Kind = "BuiltinArgumentMismatch"
	BuiltinNotResolved      Kind = "BuiltinNotResolved"
	InvalidAddition         Kind = "InvalidAddition"
	InvalidSubtraction      Kind = "InvalidSubtraction"
	InvalidMultiplication   Kind = "InvalidMultiplication"
	InvalidDivision         Kind = "InvalidDivision"
	InvalidModulo           Kind = "InvalidModulo"
	ModuloOnFloat           Kind = "ModuloOnFloat"
	InvalidIteration        Kind = "InvalidIteration"
	AssertionFailed         Kind = "AssertionFailed"
	RuleDataConflict        Kind = "RuleDataConflict"
	ArithmeticError         Kind = "ArithmeticError"
	InvalidEntryPointIndex  Kind = "InvalidEntryPointIndex"
	EntryPointNotFound      Kind = "EntryPointNotFound"
	Internal                Kind = "Internal"
)

// Error is the concrete type every error the engine returns satisfies.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New builds a bare Kind error.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a Kind to an underlying cause, keeping the cause
// reachable via errors.Unwrap/errors.Is for callers that care, while
// the top-level message stays the single stable line the taxonomy
// promises.
func Wrap(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), cause: errors.WithStack(cause)}
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// InternalSnapshot renders a pretty-printed dump of arbitrary VM state
// (for example the engine's Stats counters) for an Internal error, so a
// bug report carries enough to reproduce without a debugger attached.
func InternalSnapshot(label string, state interface{}) *Error {
	return &Error{
		Kind:    Internal,
		Message: fmt.Sprintf("%s\n%s", label, pretty.Sprint(state)),
	}
}

// EntryPointNotFoundError carries the full available-names list the
// spec requires in the EntryPointNotFound case.
func EntryPointNotFoundError(name string, available []string) *Error {
	return &Error{
		Kind:    EntryPointNotFound,
		Message: fmt.Sprintf("entry point %q not found; available: %v", name, available),
	}
}

// InstructionLimitError carries the configured limit.
func InstructionLimitError(limit int) *Error {
	return &Error{Kind: InstructionLimitExceeded, Message: fmt.Sprintf("limit: %d", limit)}
}
