package engine

import (
	"fmt"

	"rvmcore/internal/bytecode"
	"rvmcore/internal/value"
	"rvmcore/internal/vmerr"
)

// segmentOutcome is how runSegment reports why it stopped. Exactly one
// of the four stop reasons is set on a nil-error return.
type segmentOutcome struct {
	terminal             bool
	haltValue            value.Value
	ruleReturn           bool
	destructuringSuccess bool
	bodyFailed           bool
}

// runSegment is the dispatcher's fetch-decode loop (§4.1). It is
// called both for the outermost execution and, recursively in effect,
// for every rule-definition body and destructuring prelude the
// rule-call engine runs — each such call starts fresh at a given pc
// and returns control on a Halt/Return (terminal), a RuleReturn or
// DestructuringSuccess (the nested body-driver's own terminals), or a
// body-level condition failure (soft failure with an empty loop
// stack). Any other error unwinds all the way to the caller of
// Execute.
func (e *Engine) runSegment(pc uint32) (segmentOutcome, error) {
	for {
		if int(pc) >= len(e.prog.Instructions) {
			return segmentOutcome{}, vmerr.InternalSnapshot(fmt.Sprintf("pc %d out of range", pc), e.Stats())
		}
		if e.executedInstructions >= e.maxInstructions {
			return segmentOutcome{}, vmerr.InstructionLimitError(e.maxInstructions)
		}
		e.executedInstructions++

		if e.DebugHook != nil {
			e.DebugHook(pc, e.CallDepth())
		}

		instr := e.prog.Instructions[pc]
		op := instr.OpCode()
		nextPC := pc + 1

		switch op {
		case bytecode.OpHalt:
			return segmentOutcome{terminal: true, haltValue: e.registers[0]}, nil

		case bytecode.OpReturn:
			return segmentOutcome{terminal: true, haltValue: e.registers[instr.A()]}, nil

		case bytecode.OpRuleReturn:
			return segmentOutcome{ruleReturn: true}, nil

		case bytecode.OpDestructuringSuccess:
			return segmentOutcome{destructuringSuccess: true}, nil

		case bytecode.OpLoad:
			lit, err := e.literal(int(instr.Bx()))
			if err != nil {
				return segmentOutcome{}, err
			}
			e.registers[instr.A()] = lit

		case bytecode.OpLoadTrue:
			e.registers[instr.A()] = value.Bool(true)
		case bytecode.OpLoadFalse:
			e.registers[instr.A()] = value.Bool(false)
		case bytecode.OpLoadNull:
			e.registers[instr.A()] = value.Null()
		case bytecode.OpLoadBool:
			e.registers[instr.A()] = value.Bool(instr.B() != 0)
		case bytecode.OpLoadData:
			e.registers[instr.A()] = e.data.Share()
		case bytecode.OpLoadInput:
			e.registers[instr.A()] = e.input.Share()

		case bytecode.OpMove:
			e.registers[instr.A()] = e.registers[instr.B()].Share()

		case bytecode.OpAdd, bytecode.OpSub, bytecode.OpMul, bytecode.OpDiv, bytecode.OpMod:
			stop, newPC, err := e.execArith(op, instr, pc, nextPC)
			if err != nil {
				return segmentOutcome{}, err
			}
			if stop != nil {
				return *stop, nil
			}
			nextPC = newPC

		case bytecode.OpEq, bytecode.OpNe, bytecode.OpLt, bytecode.OpLe, bytecode.OpGt, bytecode.OpGe:
			stop, newPC, err := e.execCompare(op, instr, pc, nextPC)
			if err != nil {
				return segmentOutcome{}, err
			}
			if stop != nil {
				return *stop, nil
			}
			nextPC = newPC

		case bytecode.OpAnd:
			a, b := e.registers[instr.B()], e.registers[instr.C()]
			e.registers[instr.A()] = value.Bool(a.Truthy() && b.Truthy())
		case bytecode.OpOr:
			a, b := e.registers[instr.B()], e.registers[instr.C()]
			e.registers[instr.A()] = value.Bool(a.Truthy() || b.Truthy())
		case bytecode.OpNot:
			e.registers[instr.A()] = value.Bool(!e.registers[instr.B()].Truthy())

		case bytecode.OpArrayNew:
			e.registers[instr.A()] = value.EmptyArray()
		case bytecode.OpSetNew:
			e.registers[instr.A()] = value.EmptySet()
		case bytecode.OpArrayPush:
			e.registers[instr.A()] = value.ArrayPush(e.registers[instr.A()], e.registers[instr.B()].Share())
		case bytecode.OpSetAdd:
			e.registers[instr.A()] = value.SetAdd(e.registers[instr.A()], e.registers[instr.B()].Share())

		case bytecode.OpObjectSet:
			obj := e.registers[instr.A()]
			if obj.Kind() != value.KindObject {
				return segmentOutcome{}, vmerr.New(vmerr.RegisterNotObject, "register %d is not an object", instr.A())
			}
			e.registers[instr.A()] = value.ObjectSet(obj, e.registers[instr.B()].Share(), e.registers[instr.C()].Share())

		case bytecode.OpObjectCreate:
			v, err := e.execObjectCreate(int(instr.Bx()))
			if err != nil {
				return segmentOutcome{}, err
			}
			e.registers[instr.A()] = v

		case bytecode.OpArrayCreate:
			v, err := e.execArrayCreate(int(instr.Bx()))
			if err != nil {
				return segmentOutcome{}, err
			}
			e.registers[instr.A()] = v

		case bytecode.OpSetCreate:
			v, err := e.execSetCreate(int(instr.Bx()))
			if err != nil {
				return segmentOutcome{}, err
			}
			e.registers[instr.A()] = v

		case bytecode.OpIndex:
			e.registers[instr.A()] = value.Index(e.registers[instr.B()], e.registers[instr.C()])

		case bytecode.OpIndexLiteral:
			lit, err := e.literal(int(instr.C()))
			if err != nil {
				return segmentOutcome{}, err
			}
			e.registers[instr.A()] = value.Index(e.registers[instr.B()], lit)

		case bytecode.OpChainedIndex:
			v, err := e.execChainedIndex(int(instr.Bx()))
			if err != nil {
				return segmentOutcome{}, err
			}
			e.registers[instr.A()] = v

		case bytecode.OpContains:
			e.registers[instr.A()] = value.Bool(value.Contains(e.registers[instr.B()], e.registers[instr.C()]))

		case bytecode.OpCount:
			n, ok := value.Count(e.registers[instr.B()])
			if !ok {
				e.registers[instr.A()] = value.Undefined()
			} else {
				e.registers[instr.A()] = value.Int(int64(n))
			}

		case bytecode.OpAssertCondition:
			ok := e.registers[instr.A()].Truthy()
			if !ok {
				stop, newPC, err := e.handleCondition(pc)
				if err != nil {
					return segmentOutcome{}, err
				}
				if stop != nil {
					return *stop, nil
				}
				nextPC = newPC
			}

		case bytecode.OpAssertNotUndefined:
			if e.registers[instr.A()].IsUndefined() {
				stop, newPC, err := e.handleCondition(pc)
				if err != nil {
					return segmentOutcome{}, err
				}
				if stop != nil {
					return *stop, nil
				}
				nextPC = newPC
			}

		case bytecode.OpLoopStart:
			newPC, err := e.execLoopStart(instr, pc)
			if err != nil {
				return segmentOutcome{}, err
			}
			nextPC = newPC

		case bytecode.OpLoopNext:
			newPC, err := e.execLoopNext(pc)
			if err != nil {
				return segmentOutcome{}, err
			}
			nextPC = newPC

		case bytecode.OpComprehensionBegin:
			if err := e.execComprehensionBegin(instr); err != nil {
				return segmentOutcome{}, err
			}
		case bytecode.OpComprehensionYield:
			if err := e.execComprehensionYield(instr); err != nil {
				return segmentOutcome{}, err
			}
		case bytecode.OpComprehensionEnd:
			if err := e.execComprehensionEnd(); err != nil {
				return segmentOutcome{}, err
			}

		case bytecode.OpCallRule:
			v, err := e.executeCallRule(instr.A(), uint32(instr.Bx()), nil)
			if err != nil {
				return segmentOutcome{}, err
			}
			e.registers[instr.A()] = v

		case bytecode.OpFunctionCall:
			v, err := e.execFunctionCall(int(instr.Bx()))
			if err != nil {
				return segmentOutcome{}, err
			}
			e.registers[instr.A()] = v

		case bytecode.OpBuiltinCall:
			v, err := e.execBuiltinCall(int(instr.Bx()))
			if err != nil {
				return segmentOutcome{}, err
			}
			e.registers[instr.A()] = v

		case bytecode.OpRuleInit:
			e.execRuleInit(instr)

		case bytecode.OpVirtualDataDocumentLookup:
			v, err := e.execVirtualLookup(int(instr.Bx()))
			if err != nil {
				return segmentOutcome{}, err
			}
			e.registers[instr.A()] = v

		default:
			return segmentOutcome{}, vmerr.New(vmerr.Internal, "unknown opcode %d at pc %d", op, pc)
		}

		pc = nextPC
	}
}

func (e *Engine) literal(idx int) (value.Value, error) {
	if idx < 0 || idx >= len(e.prog.Literals) {
		return value.Undefined(), vmerr.New(vmerr.LiteralIndexOutOfBounds, "literal index %d out of bounds", idx)
	}
	return e.prog.Literals[idx], nil
}

// dispatch runs the outermost segment and folds its stop reason into
// the final (value, error) Execute returns. A bodyFailed stop at the
// very top (no enclosing CallRule to catch it) means the entry point's
// own body failed its own assertions, which is itself reported as
// AssertionFailed, matching §7 policy 2: this is not "soft failure"
// once there is no rule-definition driver left to interpret it as a
// fallback to Undefined.
func (e *Engine) dispatch() (value.Value, error) {
	outcome, err := e.runSegment(e.pc)
	if err != nil {
		return value.Undefined(), err
	}
	switch {
	case outcome.terminal:
		return outcome.haltValue, nil
	case outcome.bodyFailed:
		return value.Undefined(), vmerr.New(vmerr.AssertionFailed, "entry point body failed its assertions")
	default:
		return value.Undefined(), vmerr.New(vmerr.Internal, "entry point segment ended without a terminal instruction")
	}
}
