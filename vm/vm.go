package vm

import (
	"github.com/chazu/daedalus/dat"
)

// ---------------------------------------------------------------------------
// VM: the script stack machine
// ---------------------------------------------------------------------------

// Func is a native function callable from scripts. It takes its arguments
// from the operand stack and pushes its result, if any.
type Func func(*VM)

// VM executes the code of a loaded program. A VM is not safe for use by
// multiple goroutines; externals may re-enter it from the same goroutine.
type VM struct {
	file  *dat.File
	arena *dat.Arena

	stack []entry
	guard int // entries below belong to callers
	calls *CallFrame

	externals   []Func // by symbol index
	internals   map[uint32]Func
	unsatisfied Func

	// Current instance register.
	instance    dat.InstanceRef
	instanceSym int

	self, other, victim, item int

	numCalls int
	progress func(calls int)
}

// Option configures a VM.
type Option func(*config)

type config struct {
	globals       [4]string
	stackCapacity int
	arena         *dat.Arena
}

// WithGlobals names the conventional instance globals. Empty names are
// treated as absent.
func WithGlobals(self, other, victim, item string) Option {
	return func(c *config) { c.globals = [4]string{self, other, victim, item} }
}

// WithStackCapacity preallocates the operand stack.
func WithStackCapacity(n int) Option {
	return func(c *config) { c.stackCapacity = n }
}

// WithArena shares an instance arena between VMs.
func WithArena(a *dat.Arena) Option {
	return func(c *config) { c.arena = a }
}

// New creates a VM for file.
func New(file *dat.File, opts ...Option) *VM {
	cfg := &config{
		globals:       [4]string{"self", "other", "victim", "item"},
		stackCapacity: 1024,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.arena == nil {
		cfg.arena = dat.NewArena()
	}

	m := &VM{
		file:        file,
		arena:       cfg.arena,
		stack:       make([]entry, 0, max(cfg.stackCapacity, 0)),
		internals:   make(map[uint32]Func),
		instanceSym: dat.NotFound,
	}
	m.self = m.globalIndex(cfg.globals[0])
	m.other = m.globalIndex(cfg.globals[1])
	m.victim = m.globalIndex(cfg.globals[2])
	m.item = m.globalIndex(cfg.globals[3])
	return m
}

func (m *VM) globalIndex(name string) int {
	if name == "" {
		return dat.NotFound
	}
	return m.file.SymbolIndexByName(name)
}

// File returns the program the VM runs.
func (m *VM) File() *dat.File { return m.file }

// Arena returns the arena instance bindings resolve through.
func (m *VM) Arena() *dat.Arena { return m.arena }

// NumFunctionCalls returns the number of calls made since the last
// RunFunctionWithProgress.
func (m *VM) NumFunctionCalls() int { return m.numCalls }

// ---------------------------------------------------------------------------
// Native function registration
// ---------------------------------------------------------------------------

// RegisterExternal installs fn for the external symbol name. It reports
// false when the program has no such symbol.
func (m *VM) RegisterExternal(name string, fn Func) bool {
	i := m.file.SymbolIndexByName(name)
	if i == dat.NotFound {
		return false
	}
	if i >= len(m.externals) {
		m.externals = append(m.externals, make([]Func, i+1-len(m.externals))...)
	}
	m.externals[i] = fn
	return true
}

// UnregisterExternal removes the function installed for name.
func (m *VM) UnregisterExternal(name string) bool {
	i := m.file.SymbolIndexByName(name)
	if i == dat.NotFound || i >= len(m.externals) {
		return false
	}
	m.externals[i] = nil
	return true
}

// RegisterInternal replaces the script function name with fn.
func (m *VM) RegisterInternal(name string, fn Func) bool {
	i := m.file.SymbolIndexByName(name)
	if i == dat.NotFound {
		return false
	}
	m.RegisterInternalAt(m.file.SymbolByIndex(i).Address, fn)
	return true
}

// RegisterInternalAt runs fn instead of the code at addr.
func (m *VM) RegisterInternalAt(addr uint32, fn Func) {
	m.internals[addr] = fn
}

// OnUnsatisfiedCall installs the fallback for externals without a
// registered function.
func (m *VM) OnUnsatisfiedCall(fn Func) {
	m.unsatisfied = fn
}

// ---------------------------------------------------------------------------
// Conventional globals
// ---------------------------------------------------------------------------

func (m *VM) Self() *dat.Symbol   { return m.file.SymbolByIndex(m.self) }
func (m *VM) Other() *dat.Symbol  { return m.file.SymbolByIndex(m.other) }
func (m *VM) Victim() *dat.Symbol { return m.file.SymbolByIndex(m.victim) }
func (m *VM) Item() *dat.Symbol   { return m.file.SymbolByIndex(m.item) }
