// Package bytecode defines the instruction encoding and opcode set the
// dispatcher executes: a 32-bit word packing an opcode and up to three
// 8-bit register operands, or an opcode, one 8-bit operand and one
// 16-bit operand (a literal index, a parameter-block index, or a
// branch target).
package bytecode

// OpCode identifies an instruction.
type OpCode uint8

const (
	OpLoad OpCode = iota
	OpLoadTrue
	OpLoadFalse
	OpLoadNull
	OpLoadBool
	OpLoadData
	OpLoadInput
	OpMove

	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod

	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe

	OpAnd
	OpOr
	OpNot

	OpBuiltinCall
	OpFunctionCall
	OpReturn

	OpCallRule
	OpRuleInit
	OpDestructuringSuccess
	OpRuleReturn

	OpObjectSet
	OpObjectCreate
	OpIndex
	OpIndexLiteral
	OpChainedIndex

	OpArrayNew
	OpArrayPush
	OpArrayCreate

	OpSetNew
	OpSetAdd
	OpSetCreate

	OpContains
	OpCount

	OpAssertCondition
	OpAssertNotUndefined

	OpLoopStart
	OpLoopNext

	OpHalt

	OpVirtualDataDocumentLookup

	OpComprehensionBegin
	OpComprehensionYield
	OpComprehensionEnd

	opCodeCount
)

var opNames = [opCodeCount]string{
	OpLoad:                      "Load",
	OpLoadTrue:                  "LoadTrue",
	OpLoadFalse:                 "LoadFalse",
	OpLoadNull:                  "LoadNull",
	OpLoadBool:                  "LoadBool",
	OpLoadData:                  "LoadData",
	OpLoadInput:                 "LoadInput",
	OpMove:                      "Move",
	OpAdd:                       "Add",
	OpSub:                       "Sub",
	OpMul:                       "Mul",
	OpDiv:                       "Div",
	OpMod:                       "Mod",
	OpEq:                        "Eq",
	OpNe:                        "Ne",
	OpLt:                        "Lt",
	OpLe:                        "Le",
	OpGt:                        "Gt",
	OpGe:                        "Ge",
	OpAnd:                       "And",
	OpOr:                        "Or",
	OpNot:                       "Not",
	OpBuiltinCall:               "BuiltinCall",
	OpFunctionCall:              "FunctionCall",
	OpReturn:                    "Return",
	OpCallRule:                  "CallRule",
	OpRuleInit:                  "RuleInit",
	OpDestructuringSuccess:      "DestructuringSuccess",
	OpRuleReturn:                "RuleReturn",
	OpObjectSet:                 "ObjectSet",
	OpObjectCreate:              "ObjectCreate",
	OpIndex:                     "Index",
	OpIndexLiteral:              "IndexLiteral",
	OpChainedIndex:              "ChainedIndex",
	OpArrayNew:                  "ArrayNew",
	OpArrayPush:                 "ArrayPush",
	OpArrayCreate:               "ArrayCreate",
	OpSetNew:                    "SetNew",
	OpSetAdd:                    "SetAdd",
	OpSetCreate:                 "SetCreate",
	OpContains:                  "Contains",
	OpCount:                     "Count",
	OpAssertCondition:           "AssertCondition",
	OpAssertNotUndefined:        "AssertNotUndefined",
	OpLoopStart:                 "LoopStart",
	OpLoopNext:                  "LoopNext",
	OpHalt:                      "Halt",
	OpVirtualDataDocumentLookup: "VirtualDataDocumentLookup",
	OpComprehensionBegin:        "ComprehensionBegin",
	OpComprehensionYield:        "ComprehensionYield",
	OpComprehensionEnd:          "ComprehensionEnd",
}

func (op OpCode) String() string {
	if int(op) < len(opNames) && opNames[op] != "" {
		return opNames[op]
	}
	return "Unknown"
}

// Instruction packing follows a classic register-VM iABC/iABx layout:
// byte 0 is the opcode, byte 1 is operand A, and bytes 2-3 are either
// two independent 8-bit operands (B, C) or one combined 16-bit operand
// (Bx) — a literal index, a parameter-block index, or a branch target.
const (
	posOp = 0
	posA  = 8
	posB  = 16
	posC  = 24

	maskByte = 0xFF
	maskBx   = 0xFFFF
)

// Instruction is one fetched-decoded unit of code.
type Instruction uint32

// ABC packs an opcode and three register operands.
func ABC(op OpCode, a, b, c uint8) Instruction {
	return Instruction(uint32(op)<<posOp | uint32(a)<<posA | uint32(b)<<posB | uint32(c)<<posC)
}

// ABx packs an opcode, one register operand and one 16-bit operand.
func ABx(op OpCode, a uint8, bx uint16) Instruction {
	return Instruction(uint32(op)<<posOp | uint32(a)<<posA | uint32(bx)<<posB)
}

func (i Instruction) OpCode() OpCode { return OpCode((uint32(i) >> posOp) & maskByte) }
func (i Instruction) A() uint8       { return uint8((uint32(i) >> posA) & maskByte) }
func (i Instruction) B() uint8       { return uint8((uint32(i) >> posB) & maskByte) }
func (i Instruction) C() uint8       { return uint8((uint32(i) >> posC) & maskByte) }
func (i Instruction) Bx() uint16     { return uint16((uint32(i) >> posB) & maskBx) }
