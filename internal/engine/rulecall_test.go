package engine

import (
	"testing"

	"rvmcore/internal/bytecode"
	"rvmcore/internal/program"
	"rvmcore/internal/value"
)

func TestCallRuleCompleteSingleBody(t *testing.T) {
	b := program.NewBuilder()
	lit := b.AddLiteral(value.Int(42))

	bodyAddr := b.Here()
	b.Emit(bytecode.ABx(bytecode.OpLoad, 0, uint16(lit)))
	b.Emit(bytecode.ABC(bytecode.OpRuleReturn, 0, 0, 0))

	mainAddr := b.Here()
	b.Emit(bytecode.ABx(bytecode.OpCallRule, 0, 0))
	b.Emit(bytecode.ABC(bytecode.OpHalt, 0, 0, 0))
	b.AddEntryPoint("main", mainAddr)

	b.AddRule(program.RuleInfo{
		Name:           "r",
		NumRegisters:   2,
		Definitions:    []program.Definition{{Bodies: []uint32{bodyAddr}}},
		Kind:           program.RuleComplete,
		DefaultLiteral: -1,
	})

	eng := New(b.Build())
	result, err := eng.Execute()
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.AsNumber().Cmp(value.Int(42).AsNumber()) != 0 {
		t.Fatalf("got %v, want 42", result)
	}
}

func TestCallRuleCompleteNoBodyFallsBackToDefault(t *testing.T) {
	b := program.NewBuilder()
	falseLit := b.AddLiteral(value.Bool(false))
	defaultLit := b.AddLiteral(value.String("default"))

	bodyAddr := b.Here()
	b.Emit(bytecode.ABx(bytecode.OpLoad, 1, uint16(falseLit)))
	b.Emit(bytecode.ABC(bytecode.OpAssertCondition, 1, 0, 0))
	b.Emit(bytecode.ABC(bytecode.OpRuleReturn, 0, 0, 0))

	mainAddr := b.Here()
	b.Emit(bytecode.ABx(bytecode.OpCallRule, 0, 0))
	b.Emit(bytecode.ABC(bytecode.OpHalt, 0, 0, 0))
	b.AddEntryPoint("main", mainAddr)

	b.AddRule(program.RuleInfo{
		Name:           "r",
		NumRegisters:   2,
		Definitions:    []program.Definition{{Bodies: []uint32{bodyAddr}}},
		Kind:           program.RuleComplete,
		DefaultLiteral: defaultLit,
	})

	eng := New(b.Build())
	result, err := eng.Execute()
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.AsString() != "default" {
		t.Fatalf("got %v, want default literal", result)
	}
}

// TestCallRuleCompleteTwoSuccessfulBodiesDistinctValuesIsUndefined
// exercises the per-body (not just per-definition) consistency check:
// a single definition with two bodies that both succeed, returning
// different values, must yield Undefined rather than the first body's
// value.
func TestCallRuleCompleteTwoSuccessfulBodiesDistinctValuesIsUndefined(t *testing.T) {
	b := program.NewBuilder()
	litOne := b.AddLiteral(value.Int(1))
	litTwo := b.AddLiteral(value.Int(2))

	body1 := b.Here()
	b.Emit(bytecode.ABx(bytecode.OpLoad, 0, uint16(litOne)))
	b.Emit(bytecode.ABC(bytecode.OpRuleReturn, 0, 0, 0))

	body2 := b.Here()
	b.Emit(bytecode.ABx(bytecode.OpLoad, 0, uint16(litTwo)))
	b.Emit(bytecode.ABC(bytecode.OpRuleReturn, 0, 0, 0))

	mainAddr := b.Here()
	b.Emit(bytecode.ABx(bytecode.OpCallRule, 0, 0))
	b.Emit(bytecode.ABC(bytecode.OpHalt, 0, 0, 0))
	b.AddEntryPoint("main", mainAddr)

	b.AddRule(program.RuleInfo{
		Name:           "r",
		NumRegisters:   1,
		Definitions:    []program.Definition{{Bodies: []uint32{body1, body2}}},
		Kind:           program.RuleComplete,
		DefaultLiteral: -1,
	})

	eng := New(b.Build())
	result, err := eng.Execute()
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !result.IsUndefined() {
		t.Fatalf("got %v, want Undefined (bodies disagree)", result)
	}
}

// TestCallRuleCompleteTwoSuccessfulBodiesMatchingValuesSucceeds checks
// the companion case: two bodies of the same definition that both
// succeed with the *same* value is consistent, not a conflict.
func TestCallRuleCompleteTwoSuccessfulBodiesMatchingValuesSucceeds(t *testing.T) {
	b := program.NewBuilder()
	lit := b.AddLiteral(value.Int(9))

	body1 := b.Here()
	b.Emit(bytecode.ABx(bytecode.OpLoad, 0, uint16(lit)))
	b.Emit(bytecode.ABC(bytecode.OpRuleReturn, 0, 0, 0))

	body2 := b.Here()
	b.Emit(bytecode.ABx(bytecode.OpLoad, 0, uint16(lit)))
	b.Emit(bytecode.ABC(bytecode.OpRuleReturn, 0, 0, 0))

	mainAddr := b.Here()
	b.Emit(bytecode.ABx(bytecode.OpCallRule, 0, 0))
	b.Emit(bytecode.ABC(bytecode.OpHalt, 0, 0, 0))
	b.AddEntryPoint("main", mainAddr)

	b.AddRule(program.RuleInfo{
		Name:           "r",
		NumRegisters:   1,
		Definitions:    []program.Definition{{Bodies: []uint32{body1, body2}}},
		Kind:           program.RuleComplete,
		DefaultLiteral: -1,
	})

	eng := New(b.Build())
	result, err := eng.Execute()
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.AsNumber().Cmp(value.Int(9).AsNumber()) != 0 {
		t.Fatalf("got %v, want 9", result)
	}
}

func TestCallRuleIsMemoizedAcrossCalls(t *testing.T) {
	b := program.NewBuilder()
	lit := b.AddLiteral(value.Int(1))

	bodyAddr := b.Here()
	b.Emit(bytecode.ABx(bytecode.OpLoad, 0, uint16(lit)))
	b.Emit(bytecode.ABC(bytecode.OpRuleReturn, 0, 0, 0))

	mainAddr := b.Here()
	b.Emit(bytecode.ABx(bytecode.OpCallRule, 1, 0))
	b.Emit(bytecode.ABx(bytecode.OpCallRule, 2, 0))
	b.Emit(bytecode.ABC(bytecode.OpAdd, 0, 1, 2))
	b.Emit(bytecode.ABC(bytecode.OpHalt, 0, 0, 0))
	b.AddEntryPoint("main", mainAddr)

	b.AddRule(program.RuleInfo{
		Name:           "r",
		NumRegisters:   1,
		Definitions:    []program.Definition{{Bodies: []uint32{bodyAddr}}},
		Kind:           program.RuleComplete,
		DefaultLiteral: -1,
	})

	eng := New(b.Build())
	result, err := eng.Execute()
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.AsNumber().Cmp(value.Int(2).AsNumber()) != 0 {
		t.Fatalf("got %v, want 2", result)
	}
	// The rule has no arguments, so both CallRule sites hit ruleCache on
	// the second lookup rather than re-running the body: only the first
	// call's two body instructions (Load, RuleReturn) plus the four
	// top-level instructions should have executed.
	if got := eng.Stats().ExecutedInstructions; got != 6 {
		t.Fatalf("executed instructions = %d, want 6 (body ran once, cached on the second CallRule)", got)
	}
}
