package engine

import (
	"rvmcore/internal/program"
	"rvmcore/internal/value"
	"rvmcore/internal/vmerr"
)

// executeCallRule implements §4.7. args is nil for a plain CallRule
// (memoising, no arguments); a non-nil (possibly empty) slice marks a
// function-rule invocation, which is never cached since arguments
// invalidate memoisation.
func (e *Engine) executeCallRule(dest uint8, ruleIdx uint32, args []value.Value) (value.Value, error) {
	if int(ruleIdx) >= len(e.prog.RuleInfos) {
		return value.Undefined(), vmerr.New(vmerr.RuleIndexOutOfBounds, "rule index %d out of bounds", ruleIdx)
	}
	info := e.prog.RuleInfos[ruleIdx]
	isFunctionCall := args != nil

	if isFunctionCall && uint8(len(args)) != info.Arity {
		return value.Undefined(), vmerr.New(vmerr.InvalidFunctionCallParams,
			"rule %q declares arity %d, called with %d arguments", info.Name, info.Arity, len(args))
	}

	if !isFunctionCall {
		if e.ruleCache[ruleIdx].computed {
			return e.ruleCache[ruleIdx].value.Share(), nil
		}
	}

	// Window switch (§4.7 step 2). Register ResultReg is the
	// return/accumulator slot; arguments occupy the registers
	// immediately after it.
	window := e.acquireWindow(info.NumRegisters)
	resultReg := info.ResultReg
	retainN := resultReg + 1
	for i, a := range args {
		window[int(resultReg)+1+i] = a
		retainN = resultReg + 2 + uint8(i)
	}

	e.registerStack = append(e.registerStack, e.registers)
	e.registers = window

	e.loopStackStack = append(e.loopStackStack, e.loopStack)
	e.loopStack = nil
	e.comprehensionStackStack = append(e.comprehensionStackStack, e.comprehensionStack)
	e.comprehensionStack = nil

	e.callRuleStack = append(e.callRuleStack, &callFrame{
		ruleIndex:  ruleIdx,
		dest:       dest,
		retainN:    retainN,
		isFunction: isFunctionCall,
	})

	result, err := e.runDefinitions(&info, retainN)

	// Restore (§4.7 step 5).
	e.callRuleStack = e.callRuleStack[:len(e.callRuleStack)-1]
	e.releaseWindow(e.registers)
	e.registers = e.registerStack[len(e.registerStack)-1]
	e.registerStack = e.registerStack[:len(e.registerStack)-1]
	e.loopStack = e.loopStackStack[len(e.loopStackStack)-1]
	e.loopStackStack = e.loopStackStack[:len(e.loopStackStack)-1]
	e.comprehensionStack = e.comprehensionStackStack[len(e.comprehensionStackStack)-1]
	e.comprehensionStackStack = e.comprehensionStackStack[:len(e.comprehensionStackStack)-1]

	if err != nil {
		return value.Undefined(), err
	}

	if !isFunctionCall {
		e.ruleCache[ruleIdx] = ruleCacheEntry{computed: true, value: result}
	}
	return result, nil
}

// runDefinitions drives the definition/body loop of §4.7 step 3-4. It
// runs entirely inside the freshly switched-in register window that
// executeCallRule just installed.
func (e *Engine) runDefinitions(info *program.RuleInfo, retainN uint8) (value.Value, error) {
	var firstResult value.Value
	haveResult := false
	inconsistent := false
	accumulating := info.Kind != program.RuleComplete && !info.IsFunction

definitions:
	for _, def := range info.Definitions {
		destructuringOK := true
		if def.HasDestructuring {
			e.resetWindow(retainN)
			outcome, err := e.runSegment(def.Destructuring)
			if err != nil {
				return value.Undefined(), err
			}
			if outcome.bodyFailed {
				destructuringOK = false
			}
		}
		if !destructuringOK {
			continue
		}

		for _, bodyAddr := range def.Bodies {
			if !def.HasDestructuring {
				e.resetWindow(retainN)
			}
			outcome, err := e.runSegment(bodyAddr)
			if err != nil {
				return value.Undefined(), err
			}
			if outcome.bodyFailed {
				continue
			}

			result := e.registers[info.ResultReg]
			if !accumulating {
				if haveResult {
					if !value.Equal(result, firstResult) {
						inconsistent = true
						break definitions
					}
				} else {
					firstResult = result
					haveResult = true
				}
				continue
			}
			haveResult = true
		}
	}

	switch {
	case inconsistent:
		return value.Undefined(), nil
	case haveResult:
		if accumulating {
			return e.registers[info.ResultReg], nil
		}
		return firstResult, nil
	default:
		switch info.Kind {
		case program.RulePartialSet:
			return value.EmptySet(), nil
		case program.RulePartialObject:
			return value.EmptyObject(), nil
		default:
			if info.DefaultLiteral >= 0 {
				return e.literal(info.DefaultLiteral)
			}
			return value.Undefined(), nil
		}
	}
}

// resetWindow clears every register above the retained prefix back to
// Undefined, per §4.7 step 3: arguments, the return/accumulator
// register, stay put across bodies within one rule call; everything
// else is scratch and must not leak between body attempts.
func (e *Engine) resetWindow(retainN uint8) {
	for i := int(retainN); i < len(e.registers); i++ {
		e.registers[i] = value.Undefined()
	}
}

// execRuleInit implements RuleInit: on the first body of the first
// definition, the accumulator register starts as an empty set or
// object depending on the active rule's kind.
func (e *Engine) execRuleInit(instrA interface{ A() uint8 }) {
	if len(e.callRuleStack) == 0 {
		return
	}
	// The accumulator starts Undefined in a fresh window and is retained
	// across bodies, so only the first body to reach RuleInit seeds it.
	if !e.registers[instrA.A()].IsUndefined() {
		return
	}
	cf := e.callRuleStack[len(e.callRuleStack)-1]
	info := e.prog.RuleInfos[cf.ruleIndex]
	switch info.Kind {
	case program.RulePartialSet:
		e.registers[instrA.A()] = value.EmptySet()
	case program.RulePartialObject:
		e.registers[instrA.A()] = value.EmptyObject()
	}
}
