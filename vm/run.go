package vm

import (
	"github.com/chazu/daedalus/dat"
)

// ---------------------------------------------------------------------------
// Running functions
// ---------------------------------------------------------------------------

// RunFunction calls the function symbol index and returns its int result,
// or 0 when it declares none. A script termination is returned as a
// *ScriptError when no other call is active; otherwise it propagates to
// the outermost entry point.
func (m *VM) RunFunction(index int) (ret int32, err error) {
	if m.calls == nil {
		defer m.recoverScript(&err, len(m.stack))
	}
	return m.runFunction(index), nil
}

// RunFunctionByName calls the named function.
func (m *VM) RunFunctionByName(name string) (int32, error) {
	i := m.file.SymbolIndexByName(name)
	if i == dat.NotFound {
		log.Warningf("function %s not found", name)
	}
	return m.RunFunction(i)
}

// RunFunctionWithProgress calls the function symbol index, reporting the
// running call count to fn after every call it makes.
func (m *VM) RunFunctionWithProgress(index int, fn func(calls int)) (int32, error) {
	prev := m.progress
	m.numCalls = 0
	m.progress = fn
	defer func() { m.progress = prev }()
	return m.RunFunction(index)
}

// runFunction returns -1 for a function without code.
func (m *VM) runFunction(index int) int32 {
	if index == dat.NotFound {
		return 0
	}
	s := m.file.SymbolByIndex(index)
	f, stub := m.enterFrame(index, s.Address)
	if stub {
		return -1
	}

	func() {
		defer m.exitFrame(f)
		switch fn := m.internals[f.Address]; {
		case s.Has(dat.FlagExternal):
			m.runExternal(index, f.Name)
		case fn != nil:
			fn(m)
		default:
			m.eval(f.Address)
		}
	}()

	if f.returns {
		return m.popInt()
	}
	return 0
}
