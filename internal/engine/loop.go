package engine

import (
	"rvmcore/internal/bytecode"
	"rvmcore/internal/program"
	"rvmcore/internal/value"
	"rvmcore/internal/vmerr"
)

// vacuousResult implements §4.5's empty-collection policy: Any is
// false, Every is true, ForEach is false, all over an empty or
// non-iterable collection.
func vacuousResult(mode program.LoopMode) value.Value {
	return value.Bool(mode == program.LoopEvery)
}

// execLoopStart implements LoopStart (§4.5). It returns the pc the
// dispatcher should continue at: either past loop_end (empty
// collection) or at body_start (loop entered).
func (e *Engine) execLoopStart(instr bytecode.Instruction, pc uint32) (uint32, error) {
	idx := int(instr.Bx())
	if idx < 0 || idx >= len(e.prog.LoopBlocks) {
		return 0, vmerr.New(vmerr.InvalidLoopParams, "loop params index %d out of bounds", idx)
	}
	params := e.prog.LoopBlocks[idx]
	coll := e.registers[params.Collection]

	it, ok := newIterator(coll)
	if !ok {
		e.registers[params.ResultReg] = vacuousResult(params.Mode)
		return params.LoopEnd, nil
	}

	lf := &loopFrame{
		mode:       params.Mode,
		iter:       it,
		keyReg:     params.KeyReg,
		hasKeyReg:  params.HasKeyReg,
		valueReg:   params.ValueReg,
		resultReg:  params.ResultReg,
		bodyStart:  params.BodyStart,
		loopNextPC: params.LoopNextPC,
		loopEnd:    params.LoopEnd,
	}
	e.populateIterationRegisters(lf)
	e.loopStack = append(e.loopStack, lf)
	return lf.bodyStart, nil
}

// populateIterationRegisters implements the key/value register policy
// from §4.5: for sets and objects, write the key only when the key and
// value registers differ; otherwise write only the value.
func (e *Engine) populateIterationRegisters(lf *loopFrame) {
	key, val := lf.iter.current()
	if lf.hasKeyReg && lf.keyReg != lf.valueReg {
		e.registers[lf.keyReg] = key
	}
	e.registers[lf.valueReg] = val
}

// execLoopNext implements LoopNext (§4.5).
func (e *Engine) execLoopNext(pc uint32) (uint32, error) {
	if len(e.loopStack) == 0 {
		return 0, vmerr.New(vmerr.InvalidIteration, "LoopNext with empty loop stack")
	}
	lf := e.loopStack[len(e.loopStack)-1]
	e.loopStack = e.loopStack[:len(e.loopStack)-1]

	lf.total++
	if !lf.failed {
		lf.successes++
	}
	lf.failed = false

	switch {
	case lf.mode == program.LoopAny && lf.successes > 0:
		e.registers[lf.resultReg] = value.Bool(true)
		return lf.loopEnd, nil
	case lf.mode == program.LoopEvery && lf.successes < lf.total:
		e.registers[lf.resultReg] = value.Bool(false)
		return lf.loopEnd, nil
	}

	if lf.iter.advance() {
		e.populateIterationRegisters(lf)
		e.loopStack = append(e.loopStack, lf)
		return lf.bodyStart, nil
	}

	var result bool
	switch lf.mode {
	case program.LoopAny:
		result = lf.successes > 0
	case program.LoopEvery:
		result = lf.successes == lf.total
	case program.LoopForEach:
		result = lf.successes > 0
	}
	e.registers[lf.resultReg] = value.Bool(result)
	return lf.loopEnd, nil
}
