package vm

import (
	"fmt"

	"github.com/chazu/daedalus/dat"
)

// ---------------------------------------------------------------------------
// CallFrame: stack discipline for one invocation
// ---------------------------------------------------------------------------

// CallFrame is an active invocation. Frames form a list from the innermost
// call outwards.
type CallFrame struct {
	caller *CallFrame

	Name    string
	Address uint32
	Symbol  int // dat.NotFound for anonymous code

	params    int
	returns   bool
	prevGuard int
}

// Caller returns the enclosing frame, nil for the outermost one.
func (f *CallFrame) Caller() *CallFrame { return f.caller }

// Returns reports whether the callee declares a return value.
func (f *CallFrame) Returns() bool { return f.returns }

// enterFrame links a frame for the callee at index (or dat.NotFound) with
// entry address addr. A callee with no code is a stub: nothing is linked
// and the caller skips the body.
func (m *VM) enterFrame(index int, addr uint32) (f *CallFrame, stub bool) {
	f = &CallFrame{
		caller:    m.calls,
		Address:   addr,
		Symbol:    dat.NotFound,
		prevGuard: m.guard,
	}

	if index >= 0 && index < m.file.Len() {
		s := m.file.SymbolByIndex(index)
		if s.Address == 0 && !s.Has(dat.FlagExternal) {
			return nil, true
		}
		f.Name = s.Name
		f.Symbol = index
		f.params = s.Count()
		f.returns = s.Has(dat.FlagReturn)
	} else {
		f.Name = fmt.Sprintf("unknown function with address: %d", addr)
	}

	if len(m.stack) < f.params {
		log.Errorf("%s expects %d arguments, stack holds %d", f.Name, f.params, len(m.stack))
		m.terminate(InconsistentState)
	}
	m.guard = len(m.stack) - f.params
	m.calls = f
	return f, false
}

// exitFrame leaves exactly one value above the guard for returning
// callees and none otherwise, then unlinks f. It runs deferred, so it also
// applies while a termination unwinds.
func (m *VM) exitFrame(f *CallFrame) {
	expected := m.guard
	if f.returns {
		expected++
	}
	for len(m.stack) < expected {
		m.pushInt(0)
	}
	if len(m.stack) > expected {
		if f.returns {
			top := m.stack[len(m.stack)-1]
			m.stack = append(m.stack[:m.guard], top)
		} else {
			m.stack = m.stack[:m.guard]
		}
	}
	m.guard = f.prevGuard
	m.calls = f.caller
}

// ---------------------------------------------------------------------------
// Call stack introspection
// ---------------------------------------------------------------------------

// CallStack returns the names of the active functions, innermost first.
func (m *VM) CallStack() []string {
	var names []string
	for f := m.calls; f != nil; f = f.caller {
		names = append(names, f.Name)
	}
	return names
}

// CurrentCall returns the name of the innermost active function.
func (m *VM) CurrentCall() string {
	if m.calls == nil {
		return "<no function>"
	}
	return m.calls.Name
}

// CurrentFrame returns the innermost active frame, nil outside any call.
func (m *VM) CurrentFrame() *CallFrame { return m.calls }
