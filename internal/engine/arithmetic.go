package engine

import (
	"rvmcore/internal/bytecode"
	"rvmcore/internal/value"
	"rvmcore/internal/vmerr"
)

// execArith implements §4.2's binary arithmetic. The returned pc is
// only meaningful when stop is nil and err is nil: either the
// instruction's ordinary fall-through (pc+1, passed in as
// fallthroughPC) or, when an Undefined operand routed through the
// condition handler, whatever pc that redirect selected.
func (e *Engine) execArith(op bytecode.OpCode, instr bytecode.Instruction, pc, fallthroughPC uint32) (*segmentOutcome, uint32, error) {
	a, b := e.registers[instr.B()], e.registers[instr.C()]
	if a.IsUndefined() || b.IsUndefined() {
		return e.handleCondition(pc)
	}
	if !a.IsNumber() || !b.IsNumber() {
		return nil, 0, invalidOpKind(op)
	}

	switch op {
	case bytecode.OpAdd:
		e.registers[instr.A()] = value.Add(a, b)
	case bytecode.OpSub:
		e.registers[instr.A()] = value.Sub(a, b)
	case bytecode.OpMul:
		e.registers[instr.A()] = value.Mul(a, b)
	case bytecode.OpDiv:
		res, ok := value.Div(a, b)
		if !ok {
			e.registers[instr.A()] = value.Undefined()
			return nil, fallthroughPC, nil
		}
		e.registers[instr.A()] = res
	case bytecode.OpMod:
		if !a.IsInteger() || !b.IsInteger() {
			return nil, 0, vmerr.New(vmerr.ModuloOnFloat, "modulo requires integer operands")
		}
		res, ok := value.Mod(a, b)
		if !ok {
			e.registers[instr.A()] = value.Undefined()
			return nil, fallthroughPC, nil
		}
		e.registers[instr.A()] = res
	}
	return nil, fallthroughPC, nil
}

func invalidOpKind(op bytecode.OpCode) error {
	switch op {
	case bytecode.OpAdd:
		return vmerr.New(vmerr.InvalidAddition, "both operands must be numbers")
	case bytecode.OpSub:
		return vmerr.New(vmerr.InvalidSubtraction, "both operands must be numbers")
	case bytecode.OpMul:
		return vmerr.New(vmerr.InvalidMultiplication, "both operands must be numbers")
	case bytecode.OpDiv:
		return vmerr.New(vmerr.InvalidDivision, "both operands must be numbers")
	default:
		return vmerr.New(vmerr.InvalidModulo, "both operands must be numbers")
	}
}

// execCompare implements §4.2's comparisons over the total order.
func (e *Engine) execCompare(op bytecode.OpCode, instr bytecode.Instruction, pc, fallthroughPC uint32) (*segmentOutcome, uint32, error) {
	a, b := e.registers[instr.B()], e.registers[instr.C()]
	if a.IsUndefined() || b.IsUndefined() {
		return e.handleCondition(pc)
	}
	c := value.Compare(a, b)
	var result bool
	switch op {
	case bytecode.OpEq:
		result = c == 0
	case bytecode.OpNe:
		result = c != 0
	case bytecode.OpLt:
		result = c < 0
	case bytecode.OpLe:
		result = c <= 0
	case bytecode.OpGt:
		result = c > 0
	case bytecode.OpGe:
		result = c >= 0
	}
	e.registers[instr.A()] = value.Bool(result)
	return nil, fallthroughPC, nil
}
