package vm

import (
	"math"

	"github.com/chazu/daedalus/dat"
)

// ---------------------------------------------------------------------------
// Operand stack entries
// ---------------------------------------------------------------------------

type entryKind uint8

const (
	kindInt entryKind = iota
	kindFloat
	kindString
	kindVar
)

// entry is an operand stack slot: an immediate value or a deferred
// variable reference. A reference captures the instance context at push
// time and is read when popped.
type entry struct {
	kind entryKind
	bits uint32 // int or float32 bits
	s    string

	sym  int
	elem int
	inst dat.Handle
}

func (m *VM) push(e entry) { m.stack = append(m.stack, e) }

func (m *VM) pushInt(v int32) {
	m.push(entry{kind: kindInt, bits: uint32(v)})
}

func (m *VM) pushFloat(v float32) {
	m.push(entry{kind: kindFloat, bits: math.Float32bits(v)})
}

func (m *VM) pushString(s string) {
	m.push(entry{kind: kindString, s: s})
}

func (m *VM) pushVar(sym, elem int) {
	m.push(entry{kind: kindVar, sym: sym, elem: elem, inst: m.instance.Handle()})
}

// pop removes the top entry. Entries at or below the current frame's guard
// belong to the caller; reaching for them yields nothing.
func (m *VM) pop() (entry, bool) {
	if len(m.stack) <= m.guard {
		return entry{}, false
	}
	e := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return e, true
}

func (m *VM) base(e entry) dat.Instance {
	return m.arena.Resolve(e.inst)
}

func (m *VM) popInt() int32 {
	e, ok := m.pop()
	if !ok {
		return 0
	}
	switch e.kind {
	case kindVar:
		return m.file.SymbolByIndex(e.sym).Int(e.elem, m.base(e))
	case kindString:
		return 0
	}
	return int32(e.bits)
}

func (m *VM) popFloat() float32 {
	e, ok := m.pop()
	if !ok {
		return 0
	}
	switch e.kind {
	case kindVar:
		return m.file.SymbolByIndex(e.sym).Float(e.elem, m.base(e))
	case kindString:
		return 0
	}
	return math.Float32frombits(e.bits)
}

func (m *VM) popString() string {
	e, ok := m.pop()
	if !ok {
		return ""
	}
	switch e.kind {
	case kindVar:
		return m.file.SymbolByIndex(e.sym).Str(e.elem, m.base(e))
	case kindString:
		return e.s
	}
	return ""
}

func (m *VM) popRef() Ref {
	e, ok := m.pop()
	if !ok || e.kind != kindVar {
		return Ref{}
	}
	return Ref{vm: m, sym: e.sym, elem: e.elem, inst: e.inst}
}

// ---------------------------------------------------------------------------
// Ref: a writable variable reference
// ---------------------------------------------------------------------------

// Ref is a popped variable reference. The zero Ref is not valid: reads
// yield zero values and writes are discarded.
type Ref struct {
	vm   *VM
	sym  int
	elem int
	inst dat.Handle
}

// Valid reports whether the ref came from a variable reference.
func (r Ref) Valid() bool { return r.vm != nil }

// Index returns the referenced symbol index and element.
func (r Ref) Index() (int, int) { return r.sym, r.elem }

// Symbol returns the referenced symbol, nil for an invalid ref.
func (r Ref) Symbol() *dat.Symbol {
	if r.vm == nil {
		return nil
	}
	return r.vm.file.SymbolByIndex(r.sym)
}

// Instance returns the instance context captured when the ref was pushed.
func (r Ref) Instance() dat.Instance {
	if r.vm == nil {
		return nil
	}
	return r.vm.arena.Resolve(r.inst)
}

func (r Ref) Int() int32 {
	if r.vm == nil {
		return 0
	}
	return r.Symbol().Int(r.elem, r.Instance())
}

func (r Ref) SetInt(v int32) {
	if r.vm != nil {
		r.Symbol().SetInt(v, r.elem, r.Instance())
	}
}

func (r Ref) Float() float32 {
	if r.vm == nil {
		return 0
	}
	return r.Symbol().Float(r.elem, r.Instance())
}

func (r Ref) SetFloat(v float32) {
	if r.vm != nil {
		r.Symbol().SetFloat(v, r.elem, r.Instance())
	}
}

func (r Ref) String() string {
	if r.vm == nil {
		return ""
	}
	return r.Symbol().Str(r.elem, r.Instance())
}

func (r Ref) SetString(v string) {
	if r.vm != nil {
		r.Symbol().SetStr(v, r.elem, r.Instance())
	}
}
