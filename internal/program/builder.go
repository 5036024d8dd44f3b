package program

import (
	"rvmcore/internal/bytecode"
	"rvmcore/internal/value"
)

// Builder assembles a Program by hand. It exists for tests; a real
// deployment's compiler builds Program values directly.
type Builder struct {
	p Program
}

func NewBuilder() *Builder {
	return &Builder{p: Program{DispatchWindowSize: 8}}
}

func (b *Builder) Emit(i bytecode.Instruction) uint32 {
	b.p.Instructions = append(b.p.Instructions, i)
	return uint32(len(b.p.Instructions) - 1)
}

func (b *Builder) Here() uint32 { return uint32(len(b.p.Instructions)) }

func (b *Builder) AddLiteral(v value.Value) int {
	b.p.Literals = append(b.p.Literals, v)
	return len(b.p.Literals) - 1
}

func (b *Builder) AddRule(info RuleInfo) uint32 {
	b.p.RuleInfos = append(b.p.RuleInfos, info)
	return uint32(len(b.p.RuleInfos) - 1)
}

func (b *Builder) AddLoopParams(lp LoopParams) uint16 {
	b.p.LoopBlocks = append(b.p.LoopBlocks, lp)
	return uint16(len(b.p.LoopBlocks) - 1)
}

func (b *Builder) AddComprehensionParams(cp ComprehensionBeginParams) uint16 {
	b.p.ComprehensionBeginBlocks = append(b.p.ComprehensionBeginBlocks, cp)
	return uint16(len(b.p.ComprehensionBeginBlocks) - 1)
}

func (b *Builder) AddObjectCreateParams(op ObjectCreateParams) uint16 {
	b.p.ObjectCreateBlocks = append(b.p.ObjectCreateBlocks, op)
	return uint16(len(b.p.ObjectCreateBlocks) - 1)
}

func (b *Builder) AddArrayCreateParams(ap ArrayCreateParams) uint16 {
	b.p.ArrayCreateBlocks = append(b.p.ArrayCreateBlocks, ap)
	return uint16(len(b.p.ArrayCreateBlocks) - 1)
}

func (b *Builder) AddSetCreateParams(sp SetCreateParams) uint16 {
	b.p.SetCreateBlocks = append(b.p.SetCreateBlocks, sp)
	return uint16(len(b.p.SetCreateBlocks) - 1)
}

func (b *Builder) AddChainedIndexParams(cp ChainedIndexParams) uint16 {
	b.p.ChainedIndexBlocks = append(b.p.ChainedIndexBlocks, cp)
	return uint16(len(b.p.ChainedIndexBlocks) - 1)
}

func (b *Builder) AddVirtualLookupParams(vp VirtualLookupParams) uint16 {
	b.p.VirtualLookupBlocks = append(b.p.VirtualLookupBlocks, vp)
	return uint16(len(b.p.VirtualLookupBlocks) - 1)
}

func (b *Builder) AddBuiltinCallParams(bp BuiltinCallParams) uint16 {
	b.p.BuiltinCallBlocks = append(b.p.BuiltinCallBlocks, bp)
	return uint16(len(b.p.BuiltinCallBlocks) - 1)
}

func (b *Builder) AddFunctionCallParams(fp FunctionCallParams) uint16 {
	b.p.FunctionCallBlocks = append(b.p.FunctionCallBlocks, fp)
	return uint16(len(b.p.FunctionCallBlocks) - 1)
}

func (b *Builder) AddBuiltinInfo(info BuiltinInfo, fn BuiltinFunc) uint16 {
	b.p.BuiltinInfoTable = append(b.p.BuiltinInfoTable, info)
	b.p.ResolvedBuiltins = append(b.p.ResolvedBuiltins, fn)
	return uint16(len(b.p.BuiltinInfoTable) - 1)
}

func (b *Builder) AddEntryPoint(name string, addr uint32) {
	b.p.EntryPointNames = append(b.p.EntryPointNames, name)
	b.p.EntryPointAddrs = append(b.p.EntryPointAddrs, addr)
}

func (b *Builder) SetRuleTree(v value.Value) { b.p.RuleTree = v }

func (b *Builder) SetDispatchWindowSize(n uint8) { b.p.DispatchWindowSize = n }

func (b *Builder) Build() *Program {
	if b.p.RuleTree.IsUndefined() {
		b.p.RuleTree = value.EmptyObject()
	}
	p := b.p
	return &p
}
