package vm

import (
	"errors"
	"strings"
)

// ---------------------------------------------------------------------------
// Script termination
// ---------------------------------------------------------------------------

// Sentinel errors matched by errors.Is against a *ScriptError.
var (
	ErrBadMath           = errors.New("bad math")
	ErrInvalidCall       = errors.New("invalid call")
	ErrInconsistentState = errors.New("inconsistent state")
)

// ErrorKind classifies a script termination.
type ErrorKind uint8

const (
	BadMath ErrorKind = iota + 1
	InvalidCall
	InconsistentState
)

// Err returns the sentinel error for the kind.
func (k ErrorKind) Err() error {
	switch k {
	case BadMath:
		return ErrBadMath
	case InvalidCall:
		return ErrInvalidCall
	case InconsistentState:
		return ErrInconsistentState
	}
	return errors.New("unknown script error")
}

func (k ErrorKind) String() string { return k.Err().Error() }

// ScriptError aborts the current top-level invocation. CallStack lists the
// active functions innermost first.
type ScriptError struct {
	Kind      ErrorKind
	CallStack []string
}

func (e *ScriptError) Error() string {
	if len(e.CallStack) == 0 {
		return "script terminated: " + e.Kind.String()
	}
	return "script terminated: " + e.Kind.String() + " in " + strings.Join(e.CallStack, " <- ")
}

func (e *ScriptError) Unwrap() error { return e.Kind.Err() }

// terminate aborts script execution. The panic unwinds every active frame
// and is turned into an error by the outermost host entry point.
func (m *VM) terminate(kind ErrorKind) {
	panic(&ScriptError{Kind: kind, CallStack: m.CallStack()})
}

// recoverScript converts a script termination into *err and drops anything
// the aborted invocation left above base. It must be deferred directly.
func (m *VM) recoverScript(err *error, base int) {
	r := recover()
	if r == nil {
		return
	}
	se, ok := r.(*ScriptError)
	if !ok {
		panic(r)
	}
	log.Errorf("%s", se)
	if len(m.stack) > base {
		m.stack = m.stack[:base]
	}
	*err = se
}
