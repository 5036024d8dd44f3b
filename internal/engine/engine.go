// Package engine implements the register-based dispatcher: the fetch-
// decode loop, its instruction set, the rule-call and virtual-lookup
// engines, and the iteration/comprehension engines layered on top of
// it.
package engine

import (
	"rvmcore/internal/program"
	"rvmcore/internal/value"
	"rvmcore/internal/vmerr"
)

const defaultMaxInstructions = 25000

// ruleCacheEntry backs §3's per-execution rule_cache: sticky within
// one execution, cleared on reset.
type ruleCacheEntry struct {
	computed bool
	value    value.Value
}

// Engine is one VM instance. It is not reentrant: exactly one
// dispatch may be in progress at a time, per §5.
type Engine struct {
	prog *program.Program

	data  value.Value
	input value.Value

	maxInstructions   int
	baseRegisterCount uint8

	executedInstructions int
	pc                   uint32
	registers            []value.Value
	registerStack        [][]value.Value
	windowPool           [][]value.Value

	loopStack          []*loopFrame
	comprehensionStack []*comprehensionFrame
	callRuleStack      []*callFrame

	// loopStackStack/comprehensionStackStack save the outer rule's
	// iteration context across a nested CallRule, per §4.7 step 2:
	// "swap and save the loop and comprehension stacks (each rule has
	// isolated iteration context)".
	loopStackStack          [][]*loopFrame
	comprehensionStackStack [][]*comprehensionFrame

	ruleCache []ruleCacheEntry
	evaluated *evalCache
	cacheHits int

	// DebugHook, when set, is called before every instruction the
	// dispatcher fetches. The dispatcher ignores its return value; a
	// hook that pauses execution blocks inside the call itself (e.g. on
	// a channel receive) before returning. Nil by default, the case in
	// every build that doesn't wire internal/debugserver.
	DebugHook func(pc uint32, callDepth int) bool
}

// CallDepth reports how many CallRule/FunctionCall frames are
// currently active, for a debug hook's step-over/step-out bookkeeping.
func (e *Engine) CallDepth() int { return len(e.callRuleStack) }

// Stats is a snapshot of one execution's bookkeeping counters, exposed
// for internal/diagnostics rather than for control flow.
type Stats struct {
	ExecutedInstructions int
	PC                   uint32
	CallDepth            int
	CacheHits            int
}

// Stats reports the engine's current execution counters.
func (e *Engine) Stats() Stats {
	return Stats{
		ExecutedInstructions: e.executedInstructions,
		PC:                   e.pc,
		CallDepth:            e.CallDepth(),
		CacheHits:            e.cacheHits,
	}
}

// New constructs an Engine bound to an immutable, shared program.
func New(prog *program.Program) *Engine {
	e := &Engine{
		prog:              prog,
		maxInstructions:   defaultMaxInstructions,
		baseRegisterCount: prog.DispatchWindowSize,
		data:              value.EmptyObject(),
		input:             value.EmptyObject(),
	}
	return e
}

// SetData installs the root data document. It fails with
// RuleDataConflict if data collides with a rule's defined path; this
// engine treats "collides" as "a rule tree leaf exists at exactly the
// path being set and data supplies a non-object at an interior node of
// that path", which is the shape that would make virtual lookup
// ambiguous between rule-computed and literal data.
func (e *Engine) SetData(v value.Value) error {
	if conflict := ruleDataConflict(e.prog.RuleTree, v); conflict {
		return vmerr.New(vmerr.RuleDataConflict, "data conflicts with a defined rule path")
	}
	e.data = v
	return nil
}

func ruleDataConflict(ruleTree, data value.Value) bool {
	if ruleTree.Kind() != value.KindObject || data.Kind() != value.KindObject {
		return false
	}
	for _, e := range value.ObjectEntries(ruleTree) {
		sub := value.ObjectGet(data, e.Key)
		if sub.IsUndefined() {
			continue
		}
		if e.Val.Kind() == value.KindNumber {
			// a rule leaf: data may supply sibling keys but not itself
			// shadow the rule's own path with a non-object value used
			// as though it were further nested data.
			continue
		}
		if sub.Kind() != value.KindObject {
			return true
		}
		if ruleDataConflict(e.Val, sub) {
			return true
		}
	}
	return false
}

// SetInput installs the per-evaluation input document.
func (e *Engine) SetInput(v value.Value) { e.input = v }

// SetMaxInstructions overrides the instruction budget (default 25000).
func (e *Engine) SetMaxInstructions(n int) { e.maxInstructions = n }

// SetBaseRegisterCount overrides the window size used for the
// top-level entry-point call; n is clamped to a minimum of 1.
func (e *Engine) SetBaseRegisterCount(n uint8) {
	if n < 1 {
		n = 1
	}
	e.baseRegisterCount = n
}

// resetExecutionState clears all per-execution state and returns
// register windows to the pool, per §7: "execution leaves the VM in a
// usable state for subsequent executions".
func (e *Engine) resetExecutionState() {
	for _, w := range e.registerStack {
		e.windowPool = append(e.windowPool, w)
	}
	if e.registers != nil {
		e.windowPool = append(e.windowPool, e.registers)
	}
	e.registers = nil
	e.registerStack = nil
	e.loopStack = nil
	e.comprehensionStack = nil
	e.callRuleStack = nil
	e.loopStackStack = nil
	e.comprehensionStackStack = nil
	e.executedInstructions = 0
	e.pc = 0
	e.cacheHits = 0
	e.ruleCache = make([]ruleCacheEntry, len(e.prog.RuleInfos))
	e.evaluated = newEvalCache()
}

func (e *Engine) acquireWindow(size uint8) []value.Value {
	for i := len(e.windowPool) - 1; i >= 0; i-- {
		if cap(e.windowPool[i]) >= int(size) {
			w := e.windowPool[i][:size]
			e.windowPool = append(e.windowPool[:i], e.windowPool[i+1:]...)
			for j := range w {
				w[j] = value.Undefined()
			}
			return w
		}
	}
	w := make([]value.Value, size)
	for j := range w {
		w[j] = value.Undefined()
	}
	return w
}

func (e *Engine) releaseWindow(w []value.Value) {
	e.windowPool = append(e.windowPool, w)
}

// Execute runs the program's entry point named "main" (conventionally
// the program's default/root entry point); if the program declares no
// such entry point, it falls back to entry point index 0.
func (e *Engine) Execute() (value.Value, error) {
	idx := e.prog.EntryPointIndex("main")
	if idx < 0 {
		idx = 0
	}
	return e.ExecuteEntryPointByIndex(idx)
}

// ExecuteEntryPointByIndex runs the entry point at i.
func (e *Engine) ExecuteEntryPointByIndex(i int) (value.Value, error) {
	if i < 0 || i >= len(e.prog.EntryPointAddrs) {
		return value.Undefined(), vmerr.New(vmerr.InvalidEntryPointIndex, "index %d out of range [0,%d)", i, len(e.prog.EntryPointAddrs))
	}
	return e.run(e.prog.EntryPointAddrs[i])
}

// ExecuteEntryPointByName runs the named entry point.
func (e *Engine) ExecuteEntryPointByName(name string) (value.Value, error) {
	idx := e.prog.EntryPointIndex(name)
	if idx < 0 {
		return value.Undefined(), vmerr.EntryPointNotFoundError(name, e.prog.EntryPointNames)
	}
	return e.ExecuteEntryPointByIndex(idx)
}

func (e *Engine) run(entryAddr uint32) (value.Value, error) {
	e.resetExecutionState()
	e.registers = e.acquireWindow(e.baseRegisterCount)
	e.pc = entryAddr
	result, err := e.dispatch()
	if err != nil {
		return value.Undefined(), err
	}
	return result, nil
}
