package vm

import (
	"github.com/chazu/daedalus/dat"
)

// ---------------------------------------------------------------------------
// Interpreter loop
// ---------------------------------------------------------------------------

// eval runs code from pc until RET. Calls recurse into eval.
func (m *VM) eval(pc uint32) {
	code := m.file.Code()
	for {
		in := code.At(pc)
		pc += uint32(in.Size)

		switch in.Op {
		// --- Binary operators ---
		case dat.OpAdd:
			m.binary(func(l, r int32) int32 { return l + r })
		case dat.OpSub:
			m.binary(func(l, r int32) int32 { return l - r })
		case dat.OpMul:
			m.binary(func(l, r int32) int32 { return l * r })
		case dat.OpDiv:
			r, l := m.operands()
			if r == 0 {
				m.terminate(BadMath)
			}
			m.pushInt(l / r)
		case dat.OpMod:
			r, l := m.operands()
			if r == 0 {
				m.terminate(BadMath)
			}
			m.pushInt(l % r)
		case dat.OpBitOr:
			m.binary(func(l, r int32) int32 { return l | r })
		case dat.OpBitAnd:
			m.binary(func(l, r int32) int32 { return l & r })
		case dat.OpShiftLeft:
			m.binary(func(l, r int32) int32 { return l << (uint32(r) & 31) })
		case dat.OpShiftRight:
			m.binary(func(l, r int32) int32 { return l >> (uint32(r) & 31) })
		case dat.OpLess:
			m.compare(func(l, r int32) bool { return l < r })
		case dat.OpGreater:
			m.compare(func(l, r int32) bool { return l > r })
		case dat.OpLessEqual:
			m.compare(func(l, r int32) bool { return l <= r })
		case dat.OpGreaterEqual:
			m.compare(func(l, r int32) bool { return l >= r })
		case dat.OpEqual:
			m.compare(func(l, r int32) bool { return l == r })
		case dat.OpNotEqual:
			m.compare(func(l, r int32) bool { return l != r })
		case dat.OpLogOr:
			m.compare(func(l, r int32) bool { return l != 0 || r != 0 })
		case dat.OpLogAnd:
			m.compare(func(l, r int32) bool { return l != 0 && r != 0 })

		// --- Unary operators ---
		case dat.OpPlus:
			m.pushInt(m.popInt())
		case dat.OpMinus:
			m.pushInt(-m.popInt())
		case dat.OpNot:
			m.pushInt(boolInt(m.popInt() == 0))
		case dat.OpComplement:
			m.pushInt(^m.popInt())

		// --- Assignment ---
		case dat.OpAssignInt, dat.OpAssignFunc:
			dst := m.popRef()
			dst.SetInt(m.popInt())
		case dat.OpAssignAdd:
			dst := m.popRef()
			dst.SetInt(dst.Int() + m.popInt())
		case dat.OpAssignSub:
			dst := m.popRef()
			dst.SetInt(dst.Int() - m.popInt())
		case dat.OpAssignMul:
			dst := m.popRef()
			dst.SetInt(dst.Int() * m.popInt())
		case dat.OpAssignDiv:
			dst := m.popRef()
			v := m.popInt()
			if v == 0 {
				m.terminate(BadMath)
			}
			dst.SetInt(dst.Int() / v)
		case dat.OpAssignFloat:
			dst := m.popRef()
			dst.SetFloat(m.popFloat())
		case dat.OpAssignString:
			dst := m.popRef()
			dst.SetString(m.popString())
		case dat.OpAssignStringRef:
			log.Errorf("%s not implemented", in.Op)
		case dat.OpAssignInstance:
			dst := m.popRef()
			src := m.popRef()
			if dst.Valid() && src.Valid() {
				d := dst.Symbol()
				d.Instance.Assign(m.arena, src.Symbol().Instance)
			}

		// --- Control flow ---
		case dat.OpRet:
			return
		case dat.OpCall:
			m.callAddress(in.Address())
		case dat.OpCallExternal:
			m.callExternal(in.Symbol())
		case dat.OpJump:
			pc = in.Address()
		case dat.OpJumpIf:
			if m.popInt() == 0 {
				pc = in.Address()
			}

		// --- Data ---
		case dat.OpPushInt:
			m.pushInt(in.Value)
		case dat.OpPushVar:
			m.pushVar(in.Symbol(), 0)
		case dat.OpPushArrayVar:
			m.pushVar(in.Symbol(), int(in.Index))
		case dat.OpPushInstance:
			// The symbol index itself, not a reference.
			m.pushInt(in.Value)
		case dat.OpSetInstance:
			m.setCurrentInstance(in.Symbol())

		default:
			log.Warningf("unknown opcode %d at %d", byte(in.Op), pc-uint32(in.Size))
		}
	}
}

// operands pops the right operand, then the left one.
func (m *VM) operands() (r, l int32) {
	r = m.popInt()
	l = m.popInt()
	return r, l
}

func (m *VM) binary(op func(l, r int32) int32) {
	r, l := m.operands()
	m.pushInt(op(l, r))
}

func (m *VM) compare(op func(l, r int32) bool) {
	r, l := m.operands()
	m.pushInt(boolInt(op(l, r)))
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// ---------------------------------------------------------------------------
// Calls
// ---------------------------------------------------------------------------

// callAddress runs the internal registered at addr, or the script code
// there.
func (m *VM) callAddress(addr uint32) {
	defer m.reportProgress()
	saved := m.saveInstance()
	defer m.restoreInstance(saved)
	m.numCalls++

	f, stub := m.enterFrame(m.file.FunctionIndexByAddress(addr), addr)
	if stub {
		return
	}
	defer m.exitFrame(f)

	if fn := m.internals[addr]; fn != nil {
		fn(m)
		return
	}
	m.eval(addr)
}

// callExternal runs the function registered for the external symbol index,
// or the unsatisfied-call hook.
func (m *VM) callExternal(index int) {
	defer m.reportProgress()
	saved := m.saveInstance()
	defer m.restoreInstance(saved)
	m.numCalls++

	var addr uint32
	if index >= 0 && index < m.file.Len() {
		addr = m.file.SymbolByIndex(index).Address
	}
	f, stub := m.enterFrame(index, addr)
	if stub {
		return
	}
	defer m.exitFrame(f)
	m.runExternal(index, f.Name)
}

func (m *VM) runExternal(index int, name string) {
	if index >= 0 && index < len(m.externals) && m.externals[index] != nil {
		m.externals[index](m)
		return
	}
	if m.unsatisfied != nil {
		m.unsatisfied(m)
		return
	}
	log.Warningf("unsatisfied external %s", name)
}

func (m *VM) reportProgress() {
	if m.progress != nil {
		m.progress(m.numCalls)
	}
}
