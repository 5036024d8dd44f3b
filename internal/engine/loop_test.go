package engine

import (
	"testing"

	"rvmcore/internal/bytecode"
	"rvmcore/internal/program"
	"rvmcore/internal/value"
)

func TestLoopForEachAccumulatesOverArray(t *testing.T) {
	b := program.NewBuilder()
	zero := b.AddLiteral(value.Int(0))
	arr := b.AddLiteral(value.Array([]value.Value{value.Int(1), value.Int(2), value.Int(3)}))

	loopIdx := b.AddLoopParams(program.LoopParams{
		Mode:       program.LoopForEach,
		Collection: 1,
		ValueReg:   2,
		ResultReg:  3,
		BodyStart:  3,
		LoopNextPC: 4,
		LoopEnd:    5,
	})

	b.Emit(bytecode.ABx(bytecode.OpLoad, 0, uint16(zero))) // pc 0
	b.Emit(bytecode.ABx(bytecode.OpLoad, 1, uint16(arr)))  // pc 1
	b.Emit(bytecode.ABx(bytecode.OpLoopStart, 0, loopIdx)) // pc 2
	b.Emit(bytecode.ABC(bytecode.OpAdd, 0, 0, 2))          // pc 3: bodyStart
	b.Emit(bytecode.ABC(bytecode.OpLoopNext, 0, 0, 0))     // pc 4: loopNextPC
	b.Emit(bytecode.ABC(bytecode.OpHalt, 0, 0, 0))         // pc 5: loopEnd
	b.AddEntryPoint("main", 0)

	eng := New(b.Build())
	result, err := eng.Execute()
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.AsNumber().Cmp(value.Int(6).AsNumber()) != 0 {
		t.Fatalf("got %v, want 6", result)
	}
}

func TestLoopAnyOverEmptyCollectionIsVacuouslyFalse(t *testing.T) {
	b := program.NewBuilder()
	empty := b.AddLiteral(value.EmptyArray())

	loopIdx := b.AddLoopParams(program.LoopParams{
		Mode:       program.LoopAny,
		Collection: 0,
		ValueReg:   1,
		ResultReg:  2,
		BodyStart:  2,
		LoopNextPC: 3,
		LoopEnd:    4,
	})

	b.Emit(bytecode.ABx(bytecode.OpLoad, 0, uint16(empty))) // pc 0
	b.Emit(bytecode.ABx(bytecode.OpLoopStart, 0, loopIdx))  // pc 1
	b.Emit(bytecode.ABC(bytecode.OpLoopNext, 0, 0, 0))      // pc 2 (unreached: collection is empty)
	b.Emit(bytecode.ABC(bytecode.OpLoopNext, 0, 0, 0))      // pc 3 (unreached)
	b.Emit(bytecode.ABC(bytecode.OpMove, 0, 2, 0))          // pc 4: loopEnd, move result into r0
	b.Emit(bytecode.ABC(bytecode.OpHalt, 0, 0, 0))          // pc 5
	b.AddEntryPoint("main", 0)

	eng := New(b.Build())
	result, err := eng.Execute()
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.AsBool() != false || !result.IsBool() {
		t.Fatalf("got %v, want false", result)
	}
}
