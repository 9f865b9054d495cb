package dat

import "fmt"

// ---------------------------------------------------------------------------
// Opcode definitions
// ---------------------------------------------------------------------------

// Opcode represents a single bytecode instruction.
type Opcode byte

// Binary operators
const (
	OpAdd          Opcode = 0  // a + b
	OpSub          Opcode = 1  // a - b
	OpMul          Opcode = 2  // a * b
	OpDiv          Opcode = 3  // a / b
	OpMod          Opcode = 4  // a % b
	OpBitOr        Opcode = 5  // a | b
	OpBitAnd       Opcode = 6  // a & b
	OpLess         Opcode = 7  // a < b
	OpGreater      Opcode = 8  // a > b
	OpAssignInt    Opcode = 9  // a = b
	OpLogOr        Opcode = 11 // a || b
	OpLogAnd       Opcode = 12 // a && b
	OpShiftLeft    Opcode = 13 // a << b
	OpShiftRight   Opcode = 14 // a >> b
	OpLessEqual    Opcode = 15 // a <= b
	OpEqual        Opcode = 16 // a == b
	OpNotEqual     Opcode = 17 // a != b
	OpGreaterEqual Opcode = 18 // a >= b
	OpAssignAdd    Opcode = 19 // a += b
	OpAssignSub    Opcode = 20 // a -= b
	OpAssignMul    Opcode = 21 // a *= b
	OpAssignDiv    Opcode = 22 // a /= b
)

// Unary operators
const (
	OpPlus       Opcode = 30 // +a
	OpMinus      Opcode = 31 // -a
	OpNot        Opcode = 32 // !a
	OpComplement Opcode = 33 // ~a
)

// Control and data tokens
const (
	OpRet             Opcode = 60
	OpCall            Opcode = 61 // address
	OpCallExternal    Opcode = 62 // symbol
	OpPushInt         Opcode = 64 // literal
	OpPushVar         Opcode = 65 // symbol
	OpPushInstance    Opcode = 67 // symbol
	OpAssignString    Opcode = 70
	OpAssignStringRef Opcode = 71
	OpAssignFunc      Opcode = 72
	OpAssignFloat     Opcode = 73
	OpAssignInstance  Opcode = 74
	OpJump            Opcode = 75  // address
	OpJumpIf          Opcode = 76  // address
	OpSetInstance     Opcode = 80  // symbol
	OpPushArrayVar    Opcode = 245 // symbol + element byte
)

// ---------------------------------------------------------------------------
// Opcode metadata
// ---------------------------------------------------------------------------

// OperandKind tells which operand variant an opcode carries.
type OperandKind uint8

const (
	OperandNone OperandKind = iota
	OperandLiteral
	OperandAddress
	OperandSymbol
	OperandSymbolIndex
)

// OpcodeInfo holds metadata about an opcode.
type OpcodeInfo struct {
	Name    string
	Operand OperandKind
}

var opcodeTable = map[Opcode]OpcodeInfo{
	OpAdd:          {"ADD", OperandNone},
	OpSub:          {"SUB", OperandNone},
	OpMul:          {"MUL", OperandNone},
	OpDiv:          {"DIV", OperandNone},
	OpMod:          {"MOD", OperandNone},
	OpBitOr:        {"BIT_OR", OperandNone},
	OpBitAnd:       {"BIT_AND", OperandNone},
	OpLess:         {"LESS", OperandNone},
	OpGreater:      {"GREATER", OperandNone},
	OpAssignInt:    {"ASSIGN_INT", OperandNone},
	OpLogOr:        {"LOG_OR", OperandNone},
	OpLogAnd:       {"LOG_AND", OperandNone},
	OpShiftLeft:    {"SHIFT_LEFT", OperandNone},
	OpShiftRight:   {"SHIFT_RIGHT", OperandNone},
	OpLessEqual:    {"LESS_EQUAL", OperandNone},
	OpEqual:        {"EQUAL", OperandNone},
	OpNotEqual:     {"NOT_EQUAL", OperandNone},
	OpGreaterEqual: {"GREATER_EQUAL", OperandNone},
	OpAssignAdd:    {"ASSIGN_ADD", OperandNone},
	OpAssignSub:    {"ASSIGN_SUB", OperandNone},
	OpAssignMul:    {"ASSIGN_MUL", OperandNone},
	OpAssignDiv:    {"ASSIGN_DIV", OperandNone},

	OpPlus:       {"PLUS", OperandNone},
	OpMinus:      {"MINUS", OperandNone},
	OpNot:        {"NOT", OperandNone},
	OpComplement: {"COMPLEMENT", OperandNone},

	OpRet:             {"RET", OperandNone},
	OpCall:            {"CALL", OperandAddress},
	OpCallExternal:    {"CALL_EXTERNAL", OperandSymbol},
	OpPushInt:         {"PUSH_INT", OperandLiteral},
	OpPushVar:         {"PUSH_VAR", OperandSymbol},
	OpPushInstance:    {"PUSH_INSTANCE", OperandSymbol},
	OpAssignString:    {"ASSIGN_STRING", OperandNone},
	OpAssignStringRef: {"ASSIGN_STRING_REF", OperandNone},
	OpAssignFunc:      {"ASSIGN_FUNC", OperandNone},
	OpAssignFloat:     {"ASSIGN_FLOAT", OperandNone},
	OpAssignInstance:  {"ASSIGN_INSTANCE", OperandNone},
	OpJump:            {"JUMP", OperandAddress},
	OpJumpIf:          {"JUMP_IF", OperandAddress},
	OpSetInstance:     {"SET_INSTANCE", OperandSymbol},
	OpPushArrayVar:    {"PUSH_ARRAY_VAR", OperandSymbolIndex},
}

// Info returns metadata for the opcode.
func (op Opcode) Info() (OpcodeInfo, bool) {
	info, ok := opcodeTable[op]
	return info, ok
}

// Operand returns the operand variant carried by op.
func (op Opcode) Operand() OperandKind {
	return opcodeTable[op].Operand
}

// OperandBytes returns the number of operand bytes following the opcode.
func (op Opcode) OperandBytes() int {
	switch op.Operand() {
	case OperandLiteral, OperandAddress, OperandSymbol:
		return 4
	case OperandSymbolIndex:
		return 5
	}
	return 0
}

func (op Opcode) String() string {
	if info, ok := opcodeTable[op]; ok {
		return info.Name
	}
	return fmt.Sprintf("UNKNOWN_%d", byte(op))
}
