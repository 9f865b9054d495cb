package dat

// ---------------------------------------------------------------------------
// Instruction: a decoded bytecode instruction
// ---------------------------------------------------------------------------

// Instruction is one decoded instruction and its encoded size.
type Instruction struct {
	Op Opcode

	// Value holds the operand: the literal for PUSH_INT, the target address
	// for CALL, JUMP and JUMP_IF, or the symbol index for symbol operands.
	Value int32

	// Index is the element index of PUSH_ARRAY_VAR.
	Index uint8

	Size int
}

// Address returns the operand as a code address.
func (in Instruction) Address() uint32 { return uint32(in.Value) }

// Symbol returns the operand as a symbol index.
func (in Instruction) Symbol() int { return int(uint32(in.Value)) }

// ---------------------------------------------------------------------------
// InstructionTable: byte offset -> instruction
// ---------------------------------------------------------------------------

// InstructionTable resolves any byte offset of the code segment to the
// instruction occupying it.
type InstructionTable struct {
	code  []Instruction
	owner []int32 // per byte: index into code

	// Declared is the code size stated by the image header.
	Declared uint32
}

// Append registers in at the end of the table and returns its offset.
func (t *InstructionTable) Append(in Instruction) uint32 {
	pc := uint32(len(t.owner))
	t.code = append(t.code, in)
	idx := int32(len(t.code) - 1)
	for range in.Size {
		t.owner = append(t.owner, idx)
	}
	return pc
}

// At returns the instruction covering byte offset pc. Offsets outside the
// code segment yield a RET.
func (t *InstructionTable) At(pc uint32) Instruction {
	if t == nil || int(pc) >= len(t.owner) {
		return Instruction{Op: OpRet}
	}
	return t.code[t.owner[pc]]
}

// Size returns the code size in bytes.
func (t *InstructionTable) Size() int { return len(t.owner) }

// Len returns the number of instructions.
func (t *InstructionTable) Len() int { return len(t.code) }
