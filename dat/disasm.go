package dat

import (
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Disassembly
// ---------------------------------------------------------------------------

// DisassembleInstruction renders one instruction located at pc.
func (f *File) DisassembleInstruction(pc uint32, in Instruction) string {
	switch in.Op.Operand() {
	case OperandLiteral:
		return fmt.Sprintf("%06d  %-18s %d", pc, in.Op, in.Value)
	case OperandAddress:
		target := in.Address()
		if in.Op == OpCall {
			if i := f.FunctionIndexByAddress(target); i != NotFound {
				return fmt.Sprintf("%06d  %-18s %06d (%s)", pc, in.Op, target, f.symbols[i].Name)
			}
		}
		return fmt.Sprintf("%06d  %-18s %06d", pc, in.Op, target)
	case OperandSymbol:
		return fmt.Sprintf("%06d  %-18s %s", pc, in.Op, f.symbolName(in.Symbol()))
	case OperandSymbolIndex:
		return fmt.Sprintf("%06d  %-18s %s[%d]", pc, in.Op, f.symbolName(in.Symbol()), in.Index)
	}
	return fmt.Sprintf("%06d  %s", pc, in.Op)
}

// Disassemble lists the code of callable symbol index from its entry
// address up to and including the first RET.
func (f *File) Disassemble(index int) string {
	if index < 0 || index >= len(f.symbols) {
		return ""
	}
	s := f.symbols[index]
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s @%06d\n", s.Type(), s.Name, s.Address)
	if s.Has(FlagExternal) {
		sb.WriteString("        external\n")
		return sb.String()
	}

	pc := s.Address
	for int(pc) < f.code.Size() {
		in := f.code.At(pc)
		sb.WriteString(f.DisassembleInstruction(pc, in))
		sb.WriteByte('\n')
		if in.Op == OpRet || in.Size == 0 {
			break
		}
		pc += uint32(in.Size)
	}
	return sb.String()
}

func (f *File) symbolName(i int) string {
	if i < 0 || i >= len(f.symbols) {
		return fmt.Sprintf("#%d", i)
	}
	if name := f.symbols[i].Name; name != "" {
		return name
	}
	return fmt.Sprintf("#%d", i)
}
