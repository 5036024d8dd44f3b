package engine

import (
	"testing"

	"rvmcore/internal/bytecode"
	"rvmcore/internal/program"
	"rvmcore/internal/value"
)

func TestExecuteLoadAddHalt(t *testing.T) {
	b := program.NewBuilder()
	litA := b.AddLiteral(value.Int(2))
	litB := b.AddLiteral(value.Int(3))

	b.Emit(bytecode.ABx(bytecode.OpLoad, 1, uint16(litA)))
	b.Emit(bytecode.ABx(bytecode.OpLoad, 2, uint16(litB)))
	b.Emit(bytecode.ABC(bytecode.OpAdd, 0, 1, 2))
	b.Emit(bytecode.ABC(bytecode.OpHalt, 0, 0, 0))
	b.AddEntryPoint("main", 0)

	eng := New(b.Build())
	result, err := eng.Execute()
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !result.IsNumber() || result.AsNumber().Cmp(value.Int(5).AsNumber()) != 0 {
		t.Fatalf("got %v, want 5", result)
	}
}

func TestExecuteDivisionByZeroIsUndefined(t *testing.T) {
	b := program.NewBuilder()
	litA := b.AddLiteral(value.Int(1))
	litB := b.AddLiteral(value.Int(0))

	b.Emit(bytecode.ABx(bytecode.OpLoad, 1, uint16(litA)))
	b.Emit(bytecode.ABx(bytecode.OpLoad, 2, uint16(litB)))
	b.Emit(bytecode.ABC(bytecode.OpDiv, 0, 1, 2))
	b.Emit(bytecode.ABC(bytecode.OpHalt, 0, 0, 0))
	b.AddEntryPoint("main", 0)

	eng := New(b.Build())
	result, err := eng.Execute()
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !result.IsUndefined() {
		t.Fatalf("got %v, want Undefined", result)
	}
}

func TestExecuteInstructionBudget(t *testing.T) {
	b := program.NewBuilder()
	for i := 0; i < 20; i++ {
		b.Emit(bytecode.ABC(bytecode.OpMove, 0, 0, 0))
	}
	b.Emit(bytecode.ABC(bytecode.OpHalt, 0, 0, 0))
	b.AddEntryPoint("main", 0)

	eng := New(b.Build())
	eng.SetMaxInstructions(5)
	if _, err := eng.Execute(); err == nil {
		t.Fatal("expected InstructionLimitExceeded, got nil")
	}
}

func TestExecuteEntryPointByName(t *testing.T) {
	b := program.NewBuilder()
	lit := b.AddLiteral(value.String("hello"))
	b.Emit(bytecode.ABx(bytecode.OpLoad, 0, uint16(lit)))
	b.Emit(bytecode.ABC(bytecode.OpHalt, 0, 0, 0))
	b.AddEntryPoint("main", 0)

	eng := New(b.Build())
	result, err := eng.ExecuteEntryPointByName("main")
	if err != nil {
		t.Fatalf("ExecuteEntryPointByName: %v", err)
	}
	if result.AsString() != "hello" {
		t.Fatalf("got %q, want %q", result.AsString(), "hello")
	}

	if _, err := eng.ExecuteEntryPointByName("missing"); err == nil {
		t.Fatal("expected EntryPointNotFound, got nil")
	}
}

// TestExecuteIsDeterministicAndLeavesNoResidue runs the same program
// twice on one Engine instance: the results must match, and the second
// run's bookkeeping counters must look exactly like a fresh run's, not
// like a continuation of the first.
func TestExecuteIsDeterministicAndLeavesNoResidue(t *testing.T) {
	b := program.NewBuilder()
	litA := b.AddLiteral(value.Int(7))
	litB := b.AddLiteral(value.Int(9))

	b.Emit(bytecode.ABx(bytecode.OpLoad, 1, uint16(litA)))
	b.Emit(bytecode.ABx(bytecode.OpLoad, 2, uint16(litB)))
	b.Emit(bytecode.ABC(bytecode.OpAdd, 0, 1, 2))
	b.Emit(bytecode.ABC(bytecode.OpHalt, 0, 0, 0))
	b.AddEntryPoint("main", 0)

	eng := New(b.Build())

	first, err := eng.Execute()
	if err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	firstStats := eng.Stats()

	second, err := eng.Execute()
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	secondStats := eng.Stats()

	if !value.Equal(first, second) {
		t.Fatalf("results differ: %v vs %v", first, second)
	}
	if firstStats.ExecutedInstructions != secondStats.ExecutedInstructions {
		t.Fatalf("executed instructions differ: %d vs %d, want equal (no residue across runs)",
			firstStats.ExecutedInstructions, secondStats.ExecutedInstructions)
	}
	if secondStats.CallDepth != 0 {
		t.Fatalf("CallDepth after completed run = %d, want 0", secondStats.CallDepth)
	}
}
