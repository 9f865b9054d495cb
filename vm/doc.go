// Package vm executes compiled Daedalus scripts.
//
// This package contains:
//   - the operand stack with deferred variable references
//   - call frames and their stack discipline
//   - the bytecode interpreter
//   - external, internal and unsatisfied-call dispatch
//   - the instance register and native object bindings
package vm
