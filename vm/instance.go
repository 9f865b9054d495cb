package vm

import (
	"github.com/chazu/daedalus/dat"
)

// ---------------------------------------------------------------------------
// Instance context
// ---------------------------------------------------------------------------

type savedInstance struct {
	ref dat.InstanceRef
	sym int
}

func (m *VM) saveInstance() savedInstance {
	return savedInstance{ref: m.instance.Clone(m.arena), sym: m.instanceSym}
}

func (m *VM) restoreInstance(s savedInstance) {
	m.instance.Assign(m.arena, s.ref)
	s.ref.Release(m.arena)
	m.instanceSym = s.sym
}

func (m *VM) setCurrentInstance(index int) {
	s := m.file.SymbolByIndex(index)
	m.instance.Assign(m.arena, s.Instance)
	m.instanceSym = index
}

// CurrentInstance returns the object in the instance register.
func (m *VM) CurrentInstance() dat.Instance {
	return m.instance.Get(m.arena)
}

// CurrentInstanceSymbol returns the symbol the register was loaded from.
func (m *VM) CurrentInstanceSymbol() int { return m.instanceSym }

// ---------------------------------------------------------------------------
// Binding native objects
// ---------------------------------------------------------------------------

// BindInstance binds obj to the instance symbol index.
func (m *VM) BindInstance(index int, obj dat.Instance, class dat.ClassTag) {
	m.file.SymbolByIndex(index).Instance.Bind(m.arena, obj, class)
}

// BindInstanceByName binds obj to the named instance symbol.
func (m *VM) BindInstanceByName(name string, obj dat.Instance, class dat.ClassTag) {
	m.file.SymbolByName(name).Instance.Bind(m.arena, obj, class)
}

// InitializeInstance binds obj to the instance symbol index and runs the
// symbol's constructor code with obj as the current instance and as self.
// The instance register and self are restored afterwards.
func (m *VM) InitializeInstance(obj dat.Instance, index int, class dat.ClassTag) (err error) {
	if m.calls == nil {
		defer m.recoverScript(&err, len(m.stack))
	}

	s := m.file.SymbolByIndex(index)
	if s.Type() != dat.TypeInstance || obj == nil {
		log.Errorf("initialize %s: not an instance symbol", s.Name)
		m.terminate(InvalidCall)
	}
	s.Instance.Bind(m.arena, obj, class)

	saved := m.saveInstance()
	defer m.restoreInstance(saved)
	m.setCurrentInstance(index)

	if m.self != dat.NotFound {
		self := m.file.SymbolByIndex(m.self)
		prev := self.Instance.Clone(m.arena)
		defer func() {
			self.Instance.Assign(m.arena, prev)
			prev.Release(m.arena)
		}()
		self.Instance.Bind(m.arena, obj, class)
	}

	obj.Header().SetSymbol(index)
	m.runFunction(index)
	return nil
}

// ClearReferences unbinds obj from the instance register and every
// symbol. Once the last binding goes, obj leaves the arena.
//
// Every active call holds a counted copy of its caller's register. When an
// external clears the object that is the current instance, those copies
// keep it alive and the register is restored to obj as each call returns.
// Clear again from the host once the script has unwound to drop it fully.
func (m *VM) ClearReferences(obj dat.Instance) {
	if obj == nil || obj.Header().UseCount() == 0 {
		return
	}
	h := m.arena.HandleOf(obj)
	if h == 0 {
		return
	}
	if m.instance.Handle() == h {
		m.instance.Release(m.arena)
	}
	for _, s := range m.file.Symbols() {
		if s.Instance.Handle() != h {
			continue
		}
		s.Instance.Release(m.arena)
		if obj.Header().UseCount() == 0 {
			return
		}
	}
}

// ClearClassReferences unbinds every object of class from the instance
// register and every symbol.
func (m *VM) ClearClassReferences(class dat.ClassTag) {
	if m.instance.InstanceOf(class) {
		m.instance.Release(m.arena)
	}
	for _, s := range m.file.Symbols() {
		if s.Instance.InstanceOf(class) {
			s.Instance.Release(m.arena)
		}
	}
}
