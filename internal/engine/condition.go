package engine

import (
	"rvmcore/internal/program"
	"rvmcore/internal/value"
)

// handleCondition is the central failure funnel (§4.4). It is invoked
// whenever an AssertCondition/AssertNotUndefined fails, or whenever an
// arithmetic/comparison instruction sees an Undefined operand (the
// instruction calls the condition handler with false).
//
// This dispatcher sets pc explicitly rather than post-incrementing
// after a jump, so the targets below land directly on the intended
// instruction rather than one before it; see DESIGN.md's entry for
// `arithmetic.go`, `condition.go` for why a -1 jump bias does not
// apply here.
//
// A non-nil stop means the loop stack was empty: this is rule-body
// level failure, reported up through runSegment's bodyFailed outcome
// for the rule-call engine (or the top-level caller) to interpret. A
// nil stop means the failure was absorbed into the innermost loop and
// pc should continue at the returned address.
func (e *Engine) handleCondition(pc uint32) (*segmentOutcome, uint32, error) {
	if len(e.loopStack) == 0 {
		return &segmentOutcome{bodyFailed: true}, 0, nil
	}
	lf := e.loopStack[len(e.loopStack)-1]
	switch lf.mode {
	case program.LoopAny:
		lf.failed = true
		return nil, lf.loopNextPC, nil
	case program.LoopEvery:
		e.loopStack = e.loopStack[:len(e.loopStack)-1]
		e.registers[lf.resultReg] = value.Bool(false)
		return nil, lf.loopEnd, nil
	default: // LoopForEach and comprehension-driving loops
		lf.failed = true
		return nil, lf.loopNextPC, nil
	}
}
