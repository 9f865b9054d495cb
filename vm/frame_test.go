package vm

import (
	"errors"
	"slices"
	"testing"

	"github.com/chazu/daedalus/dat"
)

// ---------------------------------------------------------------------------
// Frame discipline
// ---------------------------------------------------------------------------

// addProgram declares ADD2(a, b) returning a+b and MAIN returning
// ADD2(2, 40).
func addProgram(b *dat.Builder) (add2, main int) {
	add2 = b.AddFunc("ADD2", 2, dat.TypeInt)
	pa := b.AddParam(add2, "A", dat.TypeInt)
	pb := b.AddParam(add2, "B", dat.TypeInt)
	main = b.AddFunc("MAIN", 0, dat.TypeInt)

	b.Begin(add2)
	b.EmitSymbol(dat.OpPushVar, pb)
	b.Emit(dat.OpAssignInt)
	b.EmitSymbol(dat.OpPushVar, pa)
	b.Emit(dat.OpAssignInt)
	b.EmitSymbol(dat.OpPushVar, pa)
	b.EmitSymbol(dat.OpPushVar, pb)
	b.Emit(dat.OpAdd)
	b.Emit(dat.OpRet)

	b.Begin(main)
	b.EmitPushInt(2)
	b.EmitPushInt(40)
	b.EmitCall(add2)
	b.Emit(dat.OpRet)
	return add2, main
}

func TestCallWithParameters(t *testing.T) {
	b := dat.NewBuilder()
	add2, _ := addProgram(b)
	m := build(t, b)

	if got := run(t, m, "MAIN"); got != 42 {
		t.Errorf("MAIN = %d, want 42", got)
	}

	m.PushInt(7)
	m.PushInt(8)
	ret, err := m.RunFunction(add2)
	if err != nil {
		t.Fatal(err)
	}
	if ret != 15 || m.StackSize() != 0 {
		t.Errorf("ADD2(7, 8) = %d with %d entries left", ret, m.StackSize())
	}
}

// TestRecursiveCall runs COUNT(n) = n == 0 ? 0 : COUNT(n-1) + 1. Parameters
// are globals, so the body never reads n after the recursive call.
func TestRecursiveCall(t *testing.T) {
	b := dat.NewBuilder()
	count := b.AddFunc("COUNT", 1, dat.TypeInt)
	n := b.AddParam(count, "N", dat.TypeInt)
	depth := b.AddExternal("DEPTH", 0, dat.TypeVoid)

	b.Begin(count)
	b.EmitSymbol(dat.OpPushVar, n)
	b.Emit(dat.OpAssignInt)
	base := b.NewLabel()
	b.EmitSymbol(dat.OpPushVar, n)
	b.EmitJump(dat.OpJumpIf, base)
	b.EmitSymbol(dat.OpPushVar, n)
	b.EmitPushInt(1)
	b.Emit(dat.OpSub)
	b.EmitCall(count)
	b.EmitPushInt(1)
	b.Emit(dat.OpAdd)
	b.Emit(dat.OpRet)
	b.Mark(base)
	b.EmitSymbol(dat.OpCallExternal, depth)
	b.EmitPushInt(0)
	b.Emit(dat.OpRet)
	m := build(t, b)

	frames := 0
	m.RegisterExternal("DEPTH", func(m *VM) {
		for _, name := range m.CallStack() {
			if name == "COUNT" {
				frames++
			}
		}
	})

	m.PushInt(500)
	ret, err := m.RunFunction(count)
	if err != nil {
		t.Fatal(err)
	}
	if ret != 500 {
		t.Errorf("COUNT(500) = %d, want 500", ret)
	}
	if m.StackSize() != 0 {
		t.Errorf("StackSize() = %d, want 0", m.StackSize())
	}
	if frames != 501 {
		t.Errorf("COUNT frames at the base case = %d, want 501", frames)
	}
	if len(m.CallStack()) != 0 {
		t.Errorf("call stack not unwound: %v", m.CallStack())
	}
}

func TestTooFewArgumentsIsInconsistentState(t *testing.T) {
	b := dat.NewBuilder()
	add2, _ := addProgram(b)
	m := build(t, b)

	m.PushInt(1)
	_, err := m.RunFunction(add2)
	if !errors.Is(err, ErrInconsistentState) {
		t.Fatalf("err = %v, want inconsistent state", err)
	}
	if m.StackSize() != 1 {
		t.Errorf("StackSize() = %d, want the host's entry to survive", m.StackSize())
	}
}

func TestFrameExitNormalizesStack(t *testing.T) {
	b := dat.NewBuilder()
	silent := b.AddFunc("SILENT", 0, dat.TypeInt) // declares a return, pushes nothing
	noisy := b.AddFunc("NOISY", 0, dat.TypeVoid)  // pushes without returning
	extra := b.AddFunc("EXTRA", 0, dat.TypeInt)   // pushes three, returns the top
	inspect := b.AddExternal("INSPECT", 0, dat.TypeVoid)
	main := b.AddFunc("MAIN", 0, dat.TypeVoid)

	b.Begin(silent)
	b.Emit(dat.OpRet)
	b.Begin(noisy)
	b.EmitPushInt(1)
	b.EmitPushInt(2)
	b.Emit(dat.OpRet)
	b.Begin(extra)
	b.EmitPushInt(1)
	b.EmitPushInt(2)
	b.EmitPushInt(3)
	b.Emit(dat.OpRet)

	b.Begin(main)
	b.EmitPushInt(7)
	b.EmitCall(silent)
	b.EmitSymbol(dat.OpCallExternal, inspect)
	b.EmitCall(noisy)
	b.EmitSymbol(dat.OpCallExternal, inspect)
	b.EmitCall(extra)
	b.EmitSymbol(dat.OpCallExternal, inspect)
	b.Emit(dat.OpRet)
	m := build(t, b)

	var sizes []int
	m.RegisterExternal("INSPECT", func(m *VM) {
		sizes = append(sizes, m.StackSize())
	})

	before := m.StackSize()
	run(t, m, "MAIN")
	if m.StackSize() != before {
		t.Errorf("StackSize() = %d after MAIN, want %d", m.StackSize(), before)
	}
	if want := []int{2, 2, 3}; !slices.Equal(sizes, want) {
		t.Errorf("stack sizes seen by INSPECT = %v, want %v", sizes, want)
	}

	if got := run(t, m, "SILENT"); got != 0 {
		t.Errorf("SILENT = %d, want 0", got)
	}
	if got := run(t, m, "EXTRA"); got != 3 {
		t.Errorf("EXTRA = %d, want the top value 3", got)
	}
	if m.StackSize() != before {
		t.Errorf("StackSize() = %d, want %d", m.StackSize(), before)
	}
}

func TestPopsStopAtFrameGuard(t *testing.T) {
	b := dat.NewBuilder()
	fn := b.AddFunc("F", 0, dat.TypeInt)
	b.Begin(fn)
	b.EmitPushInt(1)
	b.Emit(dat.OpAdd) // left operand comes from below the guard
	b.Emit(dat.OpRet)
	m := build(t, b)

	m.PushInt(99)
	if got := run(t, m, "F"); got != 1 {
		t.Errorf("F = %d, want 1", got)
	}
	if m.StackSize() != 1 || m.PopInt() != 99 {
		t.Error("caller's entry was consumed")
	}
	if m.PopInt() != 0 || m.PopString() != "" || m.PopFloat() != 0 {
		t.Error("underflow should yield zero values")
	}
	if i, _ := m.PopVar(); i != dat.NotFound {
		t.Errorf("PopVar() on empty stack = %d", i)
	}
}

func TestStubCallHasNoEffect(t *testing.T) {
	b := dat.NewBuilder()
	stub := b.AddFunc("STUB", 3, dat.TypeInt) // never given a body
	main := b.AddFunc("MAIN", 0, dat.TypeInt)
	b.Begin(main)
	b.EmitPushInt(1)
	b.EmitInt32(dat.OpCall, 0)
	b.Emit(dat.OpRet)
	m := build(t, b)

	if got := run(t, m, "MAIN"); got != 1 {
		t.Errorf("MAIN = %d, want 1", got)
	}
	ret, err := m.RunFunction(stub)
	if err != nil || ret != -1 {
		t.Errorf("RunFunction(STUB) = %d, %v; want -1", ret, err)
	}
	if m.StackSize() != 0 {
		t.Errorf("StackSize() = %d, want 0", m.StackSize())
	}
}

func TestCallToUnknownAddress(t *testing.T) {
	b := dat.NewBuilder()
	main := b.AddFunc("MAIN", 0, dat.TypeInt)
	inspect := b.AddExternal("INSPECT", 0, dat.TypeVoid)
	b.Begin(main)
	anon := b.NewLabel()
	b.EmitJump(dat.OpCall, anon)
	b.EmitPushInt(3)
	b.Emit(dat.OpRet)
	b.Mark(anon)
	b.EmitSymbol(dat.OpCallExternal, inspect)
	b.EmitPushInt(50) // discarded: anonymous code returns nothing
	b.Emit(dat.OpRet)
	m := build(t, b)

	var stack []string
	m.RegisterExternal("INSPECT", func(m *VM) { stack = m.CallStack() })
	if got := run(t, m, "MAIN"); got != 3 {
		t.Errorf("MAIN = %d, want 3", got)
	}
	if len(stack) != 3 || stack[0] != "INSPECT" || stack[2] != "MAIN" {
		t.Fatalf("call stack = %v", stack)
	}
	if stack[1] == "" || stack[1] == "MAIN" {
		t.Errorf("anonymous frame named %q", stack[1])
	}
}

// ---------------------------------------------------------------------------
// Externals and internals
// ---------------------------------------------------------------------------

func TestExternalDispatch(t *testing.T) {
	b := dat.NewBuilder()
	n := b.AddExternal("N", 0, dat.TypeVoid)
	u := b.AddExternal("U", 0, dat.TypeVoid)
	main := b.AddFunc("MAIN", 0, dat.TypeVoid)
	b.Begin(main)
	b.EmitSymbol(dat.OpCallExternal, n)
	b.EmitSymbol(dat.OpCallExternal, u)
	b.Emit(dat.OpRet)
	m := build(t, b)

	var calls, unsatisfied int
	var missing []string
	if !m.RegisterExternal("n", func(*VM) { calls++ }) {
		t.Fatal("RegisterExternal(n) = false")
	}
	m.OnUnsatisfiedCall(func(m *VM) {
		unsatisfied++
		missing = append(missing, m.CurrentCall())
	})
	run(t, m, "MAIN")

	if calls != 1 {
		t.Errorf("N called %d times, want 1", calls)
	}
	if unsatisfied != 1 || missing[0] != "U" {
		t.Errorf("unsatisfied calls = %v, want [U]", missing)
	}

	m.UnregisterExternal("N")
	run(t, m, "MAIN")
	if calls != 1 || unsatisfied != 3 {
		t.Errorf("after unregister: calls %d, unsatisfied %d", calls, unsatisfied)
	}
	if m.RegisterExternal("NOPE", func(*VM) {}) {
		t.Error("RegisterExternal of a missing symbol should fail")
	}
}

func TestExternalArgumentsAndReturn(t *testing.T) {
	b := dat.NewBuilder()
	inc := b.AddExternal("INC", 1, dat.TypeInt)
	main := b.AddFunc("MAIN", 0, dat.TypeInt)
	b.Begin(main)
	b.EmitPushInt(41)
	b.EmitSymbol(dat.OpCallExternal, inc)
	b.Emit(dat.OpRet)
	m := build(t, b)

	m.RegisterExternal("INC", func(m *VM) { m.PushInt(m.PopInt() + 1) })
	if got := run(t, m, "MAIN"); got != 42 {
		t.Errorf("MAIN = %d, want 42", got)
	}

	// Running an external directly dispatches to its native.
	m.PushInt(1)
	ret, err := m.RunFunction(inc)
	if err != nil || ret != 2 {
		t.Errorf("RunFunction(INC) = %d, %v", ret, err)
	}
}

func TestRegisterInternalReplacesScript(t *testing.T) {
	b := dat.NewBuilder()
	add2, _ := addProgram(b)
	m := build(t, b)

	if !m.RegisterInternal("ADD2", func(m *VM) {
		r, l := m.PopInt(), m.PopInt()
		m.PushInt(l * r)
	}) {
		t.Fatal("RegisterInternal = false")
	}
	if got := run(t, m, "MAIN"); got != 80 {
		t.Errorf("MAIN = %d, want 80", got)
	}
	m.RegisterInternalAt(m.File().SymbolByIndex(add2).Address, nil)
	if got := run(t, m, "MAIN"); got != 42 {
		t.Errorf("MAIN = %d, want 42 after removing the internal", got)
	}
}

func TestNestedTerminationAbortsWholeInvocation(t *testing.T) {
	b := dat.NewBuilder()
	boom := b.AddFunc("BOOM", 0, dat.TypeInt)
	nested := b.AddExternal("NESTED", 0, dat.TypeVoid)
	main := b.AddFunc("MAIN", 0, dat.TypeInt)
	b.Begin(boom)
	b.EmitPushInt(1)
	b.EmitPushInt(0)
	b.Emit(dat.OpDiv)
	b.Emit(dat.OpRet)
	b.Begin(main)
	b.EmitSymbol(dat.OpCallExternal, nested)
	b.EmitPushInt(5)
	b.Emit(dat.OpRet)
	m := build(t, b)

	reachedEnd := false
	m.RegisterExternal("NESTED", func(m *VM) {
		m.RunFunctionByName("BOOM")
		reachedEnd = true
	})
	_, err := m.RunFunctionByName("MAIN")
	if !errors.Is(err, ErrBadMath) {
		t.Fatalf("err = %v, want bad math", err)
	}
	if reachedEnd {
		t.Error("termination was swallowed by the nested entry point")
	}
	var se *ScriptError
	errors.As(err, &se)
	if want := []string{"BOOM", "NESTED", "MAIN"}; !slices.Equal(se.CallStack, want) {
		t.Errorf("call stack = %v, want %v", se.CallStack, want)
	}
	if m.StackSize() != 0 || m.CurrentFrame() != nil {
		t.Errorf("after abort: StackSize() = %d", m.StackSize())
	}
}

func TestRunFunctionWithProgress(t *testing.T) {
	b := dat.NewBuilder()
	leaf := b.AddFunc("LEAF", 0, dat.TypeVoid)
	ext := b.AddExternal("EXT", 0, dat.TypeVoid)
	main := b.AddFunc("INIT", 0, dat.TypeVoid)
	b.Begin(leaf)
	b.Emit(dat.OpRet)
	b.Begin(main)
	b.EmitCall(leaf)
	b.EmitCall(leaf)
	b.EmitSymbol(dat.OpCallExternal, ext)
	b.Emit(dat.OpRet)
	m := build(t, b)
	m.RegisterExternal("EXT", func(*VM) {})

	var reports []int
	if _, err := m.RunFunctionWithProgress(main, func(n int) { reports = append(reports, n) }); err != nil {
		t.Fatal(err)
	}
	if want := []int{1, 2, 3}; !slices.Equal(reports, want) {
		t.Errorf("progress = %v, want %v", reports, want)
	}
	if m.NumFunctionCalls() != 3 {
		t.Errorf("NumFunctionCalls() = %d, want 3", m.NumFunctionCalls())
	}
}

func TestCallStackOutsideCalls(t *testing.T) {
	m := build(t, dat.NewBuilder())
	if m.CurrentCall() != "<no function>" || len(m.CallStack()) != 0 {
		t.Errorf("CurrentCall() = %q, CallStack() = %v", m.CurrentCall(), m.CallStack())
	}
	if ret, err := m.RunFunctionByName("MISSING"); ret != 0 || err != nil {
		t.Errorf("RunFunctionByName(MISSING) = %d, %v", ret, err)
	}
}
