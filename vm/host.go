package vm

import (
	"github.com/chazu/daedalus/dat"
)

// ---------------------------------------------------------------------------
// Host stack API
// ---------------------------------------------------------------------------

// Natives take their arguments from the operand stack in reverse order and
// push their result. Pops never fail: past the current frame's arguments
// they yield zero values.

// PushInt pushes an int.
func (m *VM) PushInt(v int32) { m.pushInt(v) }

// PushFloat pushes a float.
func (m *VM) PushFloat(v float32) { m.pushFloat(v) }

// PushString pushes a string.
func (m *VM) PushString(s string) { m.pushString(s) }

// PushVar pushes a reference to element elem of symbol index, bound to the
// current instance.
func (m *VM) PushVar(index, elem int) { m.pushVar(index, elem) }

// PushVarByName pushes a reference to the named symbol.
func (m *VM) PushVarByName(name string) {
	i := m.file.SymbolIndexByName(name)
	if i == dat.NotFound {
		log.Warningf("push %s: symbol not found", name)
	}
	m.pushVar(i, 0)
}

// SetReturnVar returns a reference to symbol index from a native.
func (m *VM) SetReturnVar(index int) { m.pushVar(index, 0) }

// PopInt pops an int, reading through variable references.
func (m *VM) PopInt() int32 { return m.popInt() }

// PopUint pops an int and reinterprets it as unsigned.
func (m *VM) PopUint() uint32 { return uint32(m.popInt()) }

// PopFloat pops a float, reading through variable references.
func (m *VM) PopFloat() float32 { return m.popFloat() }

// PopString pops a string, reading through variable references.
func (m *VM) PopString() string { return m.popString() }

// PopVar pops a variable reference and returns its symbol index and
// element. Immediates and underflow yield (dat.NotFound, 0).
func (m *VM) PopVar() (index, elem int) {
	r := m.popRef()
	if !r.Valid() {
		return dat.NotFound, 0
	}
	return r.Index()
}

// PopSymbol pops a variable reference and returns its symbol, or nil.
func (m *VM) PopSymbol() *dat.Symbol {
	return m.popRef().Symbol()
}

// PopRef pops a variable reference for reading and writing.
func (m *VM) PopRef() Ref { return m.popRef() }

// StackSize returns the number of entries on the operand stack.
func (m *VM) StackSize() int { return len(m.stack) }
