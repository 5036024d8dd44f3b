package engine

import (
	"testing"

	"rvmcore/internal/bytecode"
	"rvmcore/internal/program"
	"rvmcore/internal/value"
)

// TestFunctionCallPassesArgumentsThroughRegisterWindow exercises the
// retainN argument path in executeCallRule: a one-argument function
// rule doubles its argument, read back from register 1 of the callee's
// freshly switched-in window.
func TestFunctionCallPassesArgumentsThroughRegisterWindow(t *testing.T) {
	b := program.NewBuilder()
	two := b.AddLiteral(value.Int(2))

	bodyAddr := b.Here()
	b.Emit(bytecode.ABx(bytecode.OpLoad, 2, uint16(two)))
	b.Emit(bytecode.ABC(bytecode.OpMul, 0, 1, 2))
	b.Emit(bytecode.ABC(bytecode.OpRuleReturn, 0, 0, 0))

	callIdx := b.AddFunctionCallParams(program.FunctionCallParams{Dest: 1, RuleIdx: 0, ArgRegs: []uint8{1}})

	lit5 := b.AddLiteral(value.Int(5))
	mainAddr := b.Here()
	b.Emit(bytecode.ABx(bytecode.OpLoad, 1, uint16(lit5)))
	b.Emit(bytecode.ABx(bytecode.OpFunctionCall, 1, callIdx))
	b.Emit(bytecode.ABC(bytecode.OpReturn, 1, 0, 0))
	b.AddEntryPoint("main", mainAddr)

	b.AddRule(program.RuleInfo{
		Name:           "double",
		NumRegisters:   3,
		Definitions:    []program.Definition{{Bodies: []uint32{bodyAddr}}},
		Kind:           program.RuleComplete,
		DefaultLiteral: -1,
		IsFunction:     true,
		Arity:          1,
	})

	eng := New(b.Build())
	result, err := eng.Execute()
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.AsNumber().Cmp(value.Int(10).AsNumber()) != 0 {
		t.Fatalf("got %v, want 10", result)
	}
}

// TestFunctionCallArityMismatchIsRejected exercises RuleInfo.Arity:
// calling a declared one-argument function rule with zero arguments
// must fail rather than silently running with an empty argument list.
func TestFunctionCallArityMismatchIsRejected(t *testing.T) {
	b := program.NewBuilder()

	bodyAddr := b.Here()
	b.Emit(bytecode.ABC(bytecode.OpRuleReturn, 0, 0, 0))

	callIdx := b.AddFunctionCallParams(program.FunctionCallParams{Dest: 0, RuleIdx: 0, ArgRegs: nil})
	b.Emit(bytecode.ABx(bytecode.OpFunctionCall, 0, callIdx))
	b.Emit(bytecode.ABC(bytecode.OpHalt, 0, 0, 0))
	b.AddEntryPoint("main", 0)

	b.AddRule(program.RuleInfo{
		Name:           "double",
		NumRegisters:   2,
		Definitions:    []program.Definition{{Bodies: []uint32{bodyAddr}}},
		Kind:           program.RuleComplete,
		DefaultLiteral: -1,
		IsFunction:     true,
		Arity:          1,
	})

	eng := New(b.Build())
	if _, err := eng.Execute(); err == nil {
		t.Fatal("expected an arity-mismatch error, got nil")
	}
}

// TestNestedCallRuleSavesAndRestoresLoopStack exercises the nested-call
// save/restore of loopStackStack: the outer rule iterates an array and,
// for each element, calls an inner rule from inside the active loop
// body. The outer loop must keep iterating correctly once the inner
// CallRule returns and its own (empty) loop stack is popped back off.
func TestNestedCallRuleSavesAndRestoresLoopStack(t *testing.T) {
	b := program.NewBuilder()
	innerLit := b.AddLiteral(value.Int(10))

	innerBody := b.Here()
	b.Emit(bytecode.ABx(bytecode.OpLoad, 0, uint16(innerLit)))
	b.Emit(bytecode.ABC(bytecode.OpRuleReturn, 0, 0, 0))

	zero := b.AddLiteral(value.Int(0))
	arr := b.AddLiteral(value.Array([]value.Value{value.Int(1), value.Int(2), value.Int(3)}))

	outerLoopIdx := b.AddLoopParams(program.LoopParams{
		Mode:       program.LoopForEach,
		Collection: 1,
		ValueReg:   2,
		ResultReg:  3,
		BodyStart:  3,
		LoopNextPC: 5,
		LoopEnd:    6,
	})

	b.Emit(bytecode.ABx(bytecode.OpLoad, 0, uint16(zero)))      // pc 0
	b.Emit(bytecode.ABx(bytecode.OpLoad, 1, uint16(arr)))       // pc 1
	b.Emit(bytecode.ABx(bytecode.OpLoopStart, 0, outerLoopIdx)) // pc 2
	b.Emit(bytecode.ABx(bytecode.OpCallRule, 4, 0))             // pc 3: bodyStart, nested call into an unrelated dest register
	b.Emit(bytecode.ABC(bytecode.OpAdd, 0, 0, 2))               // pc 4: accumulate the loop value
	b.Emit(bytecode.ABC(bytecode.OpLoopNext, 0, 0, 0))          // pc 5: loopNextPC
	b.Emit(bytecode.ABC(bytecode.OpHalt, 0, 0, 0))              // pc 6: loopEnd
	b.AddEntryPoint("main", 0)

	b.AddRule(program.RuleInfo{
		Name:           "inner",
		NumRegisters:   1,
		Definitions:    []program.Definition{{Bodies: []uint32{innerBody}}},
		Kind:           program.RuleComplete,
		DefaultLiteral: -1,
	})

	eng := New(b.Build())
	result, err := eng.Execute()
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.AsNumber().Cmp(value.Int(6).AsNumber()) != 0 {
		t.Fatalf("got %v, want 6 (1+2+3, unaffected by the nested call)", result)
	}
}
