// Package builtins implements the reference builtin table described in
// §4.9.1: a small, pure stand-in for the out-of-scope policy-language
// builtin library, just enough to exercise BuiltinCall end to end in
// tests and the command-line front end.
package builtins

import (
	"strings"

	"rvmcore/internal/program"
	"rvmcore/internal/value"
	"rvmcore/internal/vmerr"
)

// entry pairs a builtin's static arity with its implementation, the
// same shape program.BuiltinInfo/program.BuiltinFunc split into one
// record for table construction.
type entry struct {
	arity int
	fn    program.BuiltinFunc
}

// Table builds the reference builtin registry, keyed by name.
func Table() map[string]entry {
	t := map[string]entry{}
	registerStringFuncs(t)
	registerMathFuncs(t)
	registerCryptoFuncs(t)
	return t
}

// Resolve builds a program's BuiltinInfoTable/ResolvedBuiltins pair
// from a list of names, in order, looking each one up in Table. A name
// absent from the reference table still gets an info entry (so arity
// errors still surface correctly) but no resolved function, which
// BuiltinCall reports as BuiltinNotResolved.
func Resolve(names []string) ([]program.BuiltinInfo, []program.BuiltinFunc) {
	tbl := Table()
	infos := make([]program.BuiltinInfo, len(names))
	fns := make([]program.BuiltinFunc, len(names))
	for i, name := range names {
		e, ok := tbl[name]
		if !ok {
			infos[i] = program.BuiltinInfo{Name: name, Arity: -1}
			continue
		}
		infos[i] = program.BuiltinInfo{Name: name, Arity: e.arity}
		fns[i] = e.fn
	}
	return infos, fns
}

func registerGlobal(t map[string]entry, name string, arity int, fn program.BuiltinFunc) {
	t[name] = entry{arity: arity, fn: fn}
}

func wantString(args []value.Value, i int) (string, error) {
	if !args[i].IsString() {
		return "", vmerr.New(vmerr.BuiltinArgumentMismatch, "argument %d must be a string", i)
	}
	return args[i].AsString(), nil
}

func wantNumber(args []value.Value, i int) (value.Value, error) {
	if !args[i].IsNumber() {
		return value.Undefined(), vmerr.New(vmerr.BuiltinArgumentMismatch, "argument %d must be a number", i)
	}
	return args[i], nil
}

// stringFunc is a small factory for unary pure string transforms.
func stringFunc(fn func(string) string) program.BuiltinFunc {
	return func(args []value.Value) (value.Value, error) {
		s, err := wantString(args, 0)
		if err != nil {
			return value.Undefined(), err
		}
		return value.String(fn(s)), nil
	}
}

func registerStringFuncs(t map[string]entry) {
	registerGlobal(t, "upper", 1, stringFunc(strings.ToUpper))
	registerGlobal(t, "lower", 1, stringFunc(strings.ToLower))
	registerGlobal(t, "trim", 1, stringFunc(strings.TrimSpace))

	registerGlobal(t, "contains", 2, func(args []value.Value) (value.Value, error) {
		s, err := wantString(args, 0)
		if err != nil {
			return value.Undefined(), err
		}
		sub, err := wantString(args, 1)
		if err != nil {
			return value.Undefined(), err
		}
		return value.Bool(strings.Contains(s, sub)), nil
	})

	registerGlobal(t, "concat", 2, func(args []value.Value) (value.Value, error) {
		a, err := wantString(args, 0)
		if err != nil {
			return value.Undefined(), err
		}
		b, err := wantString(args, 1)
		if err != nil {
			return value.Undefined(), err
		}
		return value.String(a + b), nil
	})
}
