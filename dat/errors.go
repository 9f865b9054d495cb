package dat

import "errors"

// Errors returned while reading images and binding native members.
var (
	ErrNotStruct    = errors.New("not a struct")
	ErrNoField      = errors.New("no such field")
	ErrOutOfRange   = errors.New("element index out of range")
	ErrKindMismatch = errors.New("field kind mismatch")
	ErrUnexported   = errors.New("field not settable")
	ErrUnbound      = errors.New("member not registered")
	ErrNoInstance   = errors.New("no instance bound")
	ErrNoBody       = errors.New("function has no body")
)
