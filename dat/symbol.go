package dat

import (
	"fmt"
	"reflect"
)

// NotFound is returned by index lookups that miss.
const NotFound = -1

// NoParent marks a symbol without a parent.
const NoParent uint32 = 0xFFFFFFFF

// ---------------------------------------------------------------------------
// Symbol: a named entity of the compiled program
// ---------------------------------------------------------------------------

// Symbol is a variable, constant, function, class, prototype or instance
// declared by the script.
type Symbol struct {
	Name      string
	Props     Properties
	Parent    uint32 // NoParent when none
	Address   uint32 // code address for functions, prototypes and instances
	ClassSize uint32 // byte size for classes

	// Native binding of class members, set up by File.RegisterMember.
	MemberOffset int // -1 when unbound
	MemberExtent int

	// Instance is the runtime binding of instance-typed symbols.
	Instance InstanceRef

	ints    Values[int32]
	floats  Values[float32]
	strings Values[string]
}

func newSymbol() *Symbol {
	return &Symbol{Parent: NoParent, MemberOffset: -1}
}

func (s *Symbol) Type() SymbolType { return s.Props.Type() }
func (s *Symbol) Count() int       { return s.Props.Count() }
func (s *Symbol) Has(f Flag) bool  { return s.Props.Has(f) }
func (s *Symbol) HasParent() bool  { return s.Parent != NoParent }

// IsClassVar reports whether the symbol is a member of a script class.
func (s *Symbol) IsClassVar() bool { return s.Has(FlagClassVar) }

// IsBound reports whether the symbol is bound to a native field.
func (s *Symbol) IsBound() bool { return s.MemberOffset >= 0 }

// Ints exposes the symbol's own int storage.
func (s *Symbol) Ints() *Values[int32] { return &s.ints }

// Floats exposes the symbol's own float storage.
func (s *Symbol) Floats() *Values[float32] { return &s.floats }

// Strings exposes the symbol's own string storage.
func (s *Symbol) Strings() *Values[string] { return &s.strings }

func (s *Symbol) String() string {
	return fmt.Sprintf("%s %s[%d]", s.Type(), s.Name, s.Count())
}

// ---------------------------------------------------------------------------
// Value access
// ---------------------------------------------------------------------------

// Int reads element index. Class members read from base.
func (s *Symbol) Int(index int, base Instance) int32 {
	return get(s, &s.ints, index, base, reflect.Int32, func(v reflect.Value) int32 { return int32(v.Int()) })
}

// SetInt writes element index. Class members write to base.
func (s *Symbol) SetInt(v int32, index int, base Instance) {
	set(s, &s.ints, v, index, base, reflect.Int32, func(f reflect.Value) { f.SetInt(int64(v)) })
}

// Float reads element index. Class members read from base.
func (s *Symbol) Float(index int, base Instance) float32 {
	return get(s, &s.floats, index, base, reflect.Float32, func(v reflect.Value) float32 { return float32(v.Float()) })
}

// SetFloat writes element index. Class members write to base.
func (s *Symbol) SetFloat(v float32, index int, base Instance) {
	set(s, &s.floats, v, index, base, reflect.Float32, func(f reflect.Value) { f.SetFloat(float64(v)) })
}

// Str reads string element index. Class members read from base.
func (s *Symbol) Str(index int, base Instance) string {
	return get(s, &s.strings, index, base, reflect.String, func(v reflect.Value) string { return v.String() })
}

// SetStr writes string element index. Class members write to base.
func (s *Symbol) SetStr(v string, index int, base Instance) {
	set(s, &s.strings, v, index, base, reflect.String, func(f reflect.Value) { f.SetString(v) })
}

// SetAddress assigns a function reference. Only function-typed symbols
// accept it; the address is also written to the bound member when base is
// given.
func (s *Symbol) SetAddress(v int32, index int, base Instance) {
	if s.Type() != TypeFunc {
		panic(fmt.Sprintf("dat: SetAddress on %s symbol %q", s.Type(), s.Name))
	}
	s.Address = uint32(v)
	if base != nil && s.IsBound() {
		f, err := s.member(index, base, reflect.Int32)
		if err != nil {
			log.Errorf("function member %s: %s", s.Name, err)
			return
		}
		f.SetInt(int64(v))
	}
}

func get[T Value](s *Symbol, own *Values[T], index int, base Instance, kind reflect.Kind, conv func(reflect.Value) T) T {
	var zero T
	if s.IsClassVar() {
		f, err := s.member(index, base, kind)
		if err != nil {
			log.Errorf("class member %s: %s", s.Name, err)
			return zero
		}
		return conv(f)
	}
	if index < 0 || index >= own.Len() {
		log.Warningf("symbol %s: index %d out of range (%d)", s.Name, index, own.Len())
		return zero
	}
	return own.Get(index)
}

func set[T Value](s *Symbol, own *Values[T], v T, index int, base Instance, kind reflect.Kind, store func(reflect.Value)) {
	if s.IsClassVar() {
		f, err := s.member(index, base, kind)
		if err != nil {
			log.Errorf("class member %s: %s", s.Name, err)
			return
		}
		store(f)
		return
	}
	if index < 0 {
		log.Warningf("symbol %s: negative index %d", s.Name, index)
		return
	}
	if index >= own.Len() {
		log.Warningf("symbol %s: growing to %d elements", s.Name, index+1)
		own.Resize(index + 1)
	}
	own.Set(index, v)
}

func (s *Symbol) member(index int, base Instance, kind reflect.Kind) (reflect.Value, error) {
	switch {
	case !s.IsBound():
		return reflect.Value{}, ErrUnbound
	case base == nil:
		return reflect.Value{}, ErrNoInstance
	case index < 0 || index >= s.MemberExtent:
		return reflect.Value{}, fmt.Errorf("element %d of %d: %w", index, s.MemberExtent, ErrOutOfRange)
	}
	return memberValue(base, uintptr(s.MemberOffset), index, kind)
}
