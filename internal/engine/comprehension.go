package engine

import (
	"rvmcore/internal/bytecode"
	"rvmcore/internal/program"
	"rvmcore/internal/value"
	"rvmcore/internal/vmerr"
)

// execComprehensionBegin implements ComprehensionBegin (§4.6): it
// seeds the collection register with the mode-appropriate empty
// container and pushes a frame; control simply falls through to the
// comprehension body afterward; comprehensions never jump.
func (e *Engine) execComprehensionBegin(instr bytecode.Instruction) error {
	idx := int(instr.Bx())
	if idx < 0 || idx >= len(e.prog.ComprehensionBeginBlocks) {
		return vmerr.New(vmerr.InvalidComprehensionParams, "comprehension-begin params index %d out of bounds", idx)
	}
	params := e.prog.ComprehensionBeginBlocks[idx]
	switch params.Mode {
	case program.ComprehensionArray:
		e.registers[params.CollReg] = value.EmptyArray()
	case program.ComprehensionSet:
		e.registers[params.CollReg] = value.EmptySet()
	case program.ComprehensionObject:
		e.registers[params.CollReg] = value.EmptyObject()
	}
	e.comprehensionStack = append(e.comprehensionStack, &comprehensionFrame{
		mode:    params.Mode,
		collReg: params.CollReg,
		endPC:   params.EndPC,
	})
	return nil
}

// execComprehensionYield implements ComprehensionYield (§4.6): sets
// and arrays take only a value register; objects require both a key
// and a value register.
func (e *Engine) execComprehensionYield(instr bytecode.Instruction) error {
	if len(e.comprehensionStack) == 0 {
		return vmerr.New(vmerr.InvalidIteration, "ComprehensionYield with empty comprehension stack")
	}
	cf := e.comprehensionStack[len(e.comprehensionStack)-1]
	coll := e.registers[cf.collReg]

	switch cf.mode {
	case program.ComprehensionArray:
		e.registers[cf.collReg] = value.ArrayPush(coll, e.registers[instr.A()].Share())
	case program.ComprehensionSet:
		e.registers[cf.collReg] = value.SetAdd(coll, e.registers[instr.A()].Share())
	case program.ComprehensionObject:
		if instr.B() == instr.A() {
			return vmerr.New(vmerr.InvalidIteration, "object comprehension yield missing key register")
		}
		e.registers[cf.collReg] = value.ObjectSet(coll, e.registers[instr.B()].Share(), e.registers[instr.A()].Share())
	}
	return nil
}

// execComprehensionEnd implements ComprehensionEnd (§4.6).
func (e *Engine) execComprehensionEnd() error {
	if len(e.comprehensionStack) == 0 {
		return vmerr.New(vmerr.InvalidIteration, "ComprehensionEnd with empty comprehension stack")
	}
	e.comprehensionStack = e.comprehensionStack[:len(e.comprehensionStack)-1]
	return nil
}
