package program

import (
	"bytes"
	"encoding/gob"
	"testing"

	"rvmcore/internal/bytecode"
	"rvmcore/internal/value"
)

func TestGobRoundTripDropsResolvedBuiltins(t *testing.T) {
	b := NewBuilder()
	lit := b.AddLiteral(value.Int(7))
	b.Emit(bytecode.ABx(bytecode.OpLoad, 0, uint16(lit)))
	b.Emit(bytecode.ABC(bytecode.OpHalt, 0, 0, 0))
	b.AddEntryPoint("main", 0)
	b.AddBuiltinInfo(BuiltinInfo{Name: "upper", Arity: 1}, func(args []value.Value) (value.Value, error) {
		return args[0], nil
	})
	prog := b.Build()

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(prog); err != nil {
		t.Fatalf("encode: %v", err)
	}

	var decoded Program
	if err := gob.NewDecoder(&buf).Decode(&decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if len(decoded.Instructions) != len(prog.Instructions) {
		t.Fatalf("instructions: got %d, want %d", len(decoded.Instructions), len(prog.Instructions))
	}
	if len(decoded.Literals) != 1 || decoded.Literals[0].AsNumber().Cmp(value.Int(7).AsNumber()) != 0 {
		t.Fatalf("literals did not survive the round trip: %v", decoded.Literals)
	}
	if decoded.EntryPointIndex("main") != 0 {
		t.Fatalf("entry point did not survive the round trip")
	}
	if len(decoded.BuiltinInfoTable) != 1 || decoded.BuiltinInfoTable[0].Name != "upper" {
		t.Fatalf("BuiltinInfoTable did not survive the round trip: %v", decoded.BuiltinInfoTable)
	}
	if decoded.ResolvedBuiltins != nil {
		t.Fatalf("ResolvedBuiltins should not survive a gob round trip, got %v", decoded.ResolvedBuiltins)
	}
}
