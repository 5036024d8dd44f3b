package engine

import (
	"rvmcore/internal/value"
	"rvmcore/internal/vmerr"
)

// execBuiltinCall implements BuiltinCall (§4.9): arity-check the
// arguments against the static BuiltinInfo entry (an entry with Arity
// -1, a name with no known implementation, has no arity to check and
// is reported as BuiltinNotResolved), then invoke the resolved
// function. Any Undefined argument makes the call itself
// Undefined without invoking the builtin, matching the rest of the
// dispatcher's propagation policy.
func (e *Engine) execBuiltinCall(paramsIdx int) (value.Value, error) {
	if paramsIdx < 0 || paramsIdx >= len(e.prog.BuiltinCallBlocks) {
		return value.Undefined(), vmerr.New(vmerr.InvalidBuiltinCallParams, "builtin-call params index %d out of bounds", paramsIdx)
	}
	params := e.prog.BuiltinCallBlocks[paramsIdx]

	if int(params.Builtin) >= len(e.prog.BuiltinInfoTable) {
		return value.Undefined(), vmerr.New(vmerr.BuiltinNotResolved, "builtin index %d has no info entry", params.Builtin)
	}
	info := e.prog.BuiltinInfoTable[params.Builtin]
	if info.Arity >= 0 && len(params.ArgRegs) != info.Arity {
		return value.Undefined(), vmerr.New(vmerr.BuiltinArgumentMismatch, "builtin %q expects %d arguments, got %d", info.Name, info.Arity, len(params.ArgRegs))
	}
	if int(params.Builtin) >= len(e.prog.ResolvedBuiltins) || e.prog.ResolvedBuiltins[params.Builtin] == nil {
		return value.Undefined(), vmerr.New(vmerr.BuiltinNotResolved, "builtin %q is not resolved", info.Name)
	}

	args := make([]value.Value, len(params.ArgRegs))
	for i, r := range params.ArgRegs {
		v := e.registers[r]
		if v.IsUndefined() {
			return value.Undefined(), nil
		}
		args[i] = v.Share()
	}

	result, err := e.prog.ResolvedBuiltins[params.Builtin](args)
	if err != nil {
		return value.Undefined(), vmerr.Wrap(vmerr.ArithmeticError, err, "builtin %q failed", info.Name)
	}
	return result, nil
}

// execFunctionCall implements the FunctionCall instruction (§4.7):
// gather argument values, drive the rule-call machinery in its
// non-memoising mode (arguments make caching unsound), and return the
// computed value directly. The dispatcher writes it to the
// instruction's A register, as for every other value-producing opcode;
// params.Dest is only recorded on the call frame.
func (e *Engine) execFunctionCall(paramsIdx int) (value.Value, error) {
	if paramsIdx < 0 || paramsIdx >= len(e.prog.FunctionCallBlocks) {
		return value.Undefined(), vmerr.New(vmerr.InvalidFunctionCallParams, "function-call params index %d out of bounds", paramsIdx)
	}
	params := e.prog.FunctionCallBlocks[paramsIdx]

	args := make([]value.Value, len(params.ArgRegs))
	for i, r := range params.ArgRegs {
		v := e.registers[r]
		if v.IsUndefined() {
			return value.Undefined(), nil
		}
		args[i] = v.Share()
	}

	return e.executeCallRule(params.Dest, params.RuleIdx, args)
}
