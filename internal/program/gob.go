package program

import (
	"bytes"
	"encoding/gob"

	"rvmcore/internal/bytecode"
	"rvmcore/internal/value"
)

// programAlias mirrors Program's field set minus ResolvedBuiltins: a
// BuiltinFunc is a closure and has no gob representation, and even a
// nil slice of a func-typed element defeats gob's reflection-based
// codec construction, so the field cannot appear in the type gob
// walks at all. A decoded Program always starts with ResolvedBuiltins
// unset; the host re-resolves BuiltinInfoTable's names against
// whatever builtin table it wires up (see package builtins), matching
// BuiltinInfo's doc comment: ResolvedBuiltins is filled in at load
// time, not shipped with the program.
type programAlias struct {
	Instructions []bytecode.Instruction
	Literals     []value.Value

	RuleInfos []RuleInfo

	ObjectCreateBlocks       []ObjectCreateParams
	ArrayCreateBlocks        []ArrayCreateParams
	SetCreateBlocks          []SetCreateParams
	ChainedIndexBlocks       []ChainedIndexParams
	VirtualLookupBlocks      []VirtualLookupParams
	LoopBlocks               []LoopParams
	ComprehensionBeginBlocks []ComprehensionBeginParams
	BuiltinCallBlocks        []BuiltinCallParams
	FunctionCallBlocks       []FunctionCallParams

	RuleTree value.Value

	EntryPointNames []string
	EntryPointAddrs []uint32

	BuiltinInfoTable []BuiltinInfo

	DispatchWindowSize uint8
}

// GobEncode/GobDecode let a *Program be serialized directly (the
// command-line front end gob-encodes/decodes one to load a compiled
// program) while dropping the one field that cannot survive the round
// trip.
func (p *Program) GobEncode() ([]byte, error) {
	a := programAlias{
		Instructions:             p.Instructions,
		Literals:                 p.Literals,
		RuleInfos:                p.RuleInfos,
		ObjectCreateBlocks:       p.ObjectCreateBlocks,
		ArrayCreateBlocks:        p.ArrayCreateBlocks,
		SetCreateBlocks:          p.SetCreateBlocks,
		ChainedIndexBlocks:       p.ChainedIndexBlocks,
		VirtualLookupBlocks:      p.VirtualLookupBlocks,
		LoopBlocks:               p.LoopBlocks,
		ComprehensionBeginBlocks: p.ComprehensionBeginBlocks,
		BuiltinCallBlocks:        p.BuiltinCallBlocks,
		FunctionCallBlocks:       p.FunctionCallBlocks,
		RuleTree:                 p.RuleTree,
		EntryPointNames:          p.EntryPointNames,
		EntryPointAddrs:          p.EntryPointAddrs,
		BuiltinInfoTable:         p.BuiltinInfoTable,
		DispatchWindowSize:       p.DispatchWindowSize,
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&a); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (p *Program) GobDecode(data []byte) error {
	var a programAlias
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&a); err != nil {
		return err
	}
	*p = Program{
		Instructions:             a.Instructions,
		Literals:                 a.Literals,
		RuleInfos:                a.RuleInfos,
		ObjectCreateBlocks:       a.ObjectCreateBlocks,
		ArrayCreateBlocks:        a.ArrayCreateBlocks,
		SetCreateBlocks:          a.SetCreateBlocks,
		ChainedIndexBlocks:       a.ChainedIndexBlocks,
		VirtualLookupBlocks:      a.VirtualLookupBlocks,
		LoopBlocks:               a.LoopBlocks,
		ComprehensionBeginBlocks: a.ComprehensionBeginBlocks,
		BuiltinCallBlocks:        a.BuiltinCallBlocks,
		FunctionCallBlocks:       a.FunctionCallBlocks,
		RuleTree:                 a.RuleTree,
		EntryPointNames:          a.EntryPointNames,
		EntryPointAddrs:          a.EntryPointAddrs,
		BuiltinInfoTable:         a.BuiltinInfoTable,
		DispatchWindowSize:       a.DispatchWindowSize,
	}
	return nil
}
