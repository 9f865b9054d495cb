package dat

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"slices"
)

// ---------------------------------------------------------------------------
// CodeBuilder: helper for constructing code segments
// ---------------------------------------------------------------------------

// CodeBuilder constructs a code segment. Addresses are absolute byte
// offsets into the segment.
type CodeBuilder struct {
	bytes []byte
}

// Len returns the current length, which is also the next address.
func (b *CodeBuilder) Len() int { return len(b.bytes) }

// Bytes returns the constructed code.
func (b *CodeBuilder) Bytes() []byte { return b.bytes }

// Emit appends an opcode with no operands.
func (b *CodeBuilder) Emit(op Opcode) {
	b.bytes = append(b.bytes, byte(op))
}

// EmitInt32 appends an opcode with a 32-bit operand.
func (b *CodeBuilder) EmitInt32(op Opcode, operand int32) {
	b.bytes = append(b.bytes, byte(op))
	b.bytes = binary.LittleEndian.AppendUint32(b.bytes, uint32(operand))
}

// EmitPushInt appends PUSH_INT v.
func (b *CodeBuilder) EmitPushInt(v int32) { b.EmitInt32(OpPushInt, v) }

// EmitSymbol appends an opcode taking a symbol index.
func (b *CodeBuilder) EmitSymbol(op Opcode, symbol int) { b.EmitInt32(op, int32(symbol)) }

// EmitArrayVar appends PUSH_ARRAY_VAR symbol, index.
func (b *CodeBuilder) EmitArrayVar(symbol int, index uint8) {
	b.EmitInt32(OpPushArrayVar, int32(symbol))
	b.bytes = append(b.bytes, index)
}

// Label is a code address that may be bound after it is referenced.
type Label struct {
	resolved bool
	position int
	refs     []int // operand positions waiting for the address
}

// NewLabel creates an unresolved label.
func (b *CodeBuilder) NewLabel() *Label {
	return &Label{refs: make([]int, 0, 2)}
}

// Mark resolves a label to the current position.
func (b *CodeBuilder) Mark(label *Label) {
	if label.resolved {
		panic("label already resolved")
	}
	label.resolved = true
	label.position = len(b.bytes)
	for _, ref := range label.refs {
		binary.LittleEndian.PutUint32(b.bytes[ref:], uint32(label.position))
	}
	label.refs = nil
}

// EmitJump emits CALL, JUMP or JUMP_IF targeting label.
func (b *CodeBuilder) EmitJump(op Opcode, label *Label) {
	if label.resolved {
		b.EmitInt32(op, int32(label.position))
		return
	}
	b.Emit(op)
	label.refs = append(label.refs, len(b.bytes))
	b.bytes = append(b.bytes, 0, 0, 0, 0)
}

// ---------------------------------------------------------------------------
// Builder: assembles complete program images
// ---------------------------------------------------------------------------

// Builder assembles a program image in the on-disk layout. Code starts
// with a RET at address 0 so no function is mistaken for a stub.
type Builder struct {
	CodeBuilder

	version byte
	symbols []*Symbol
	labels  map[int]*Label // function symbol -> entry label
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	b := &Builder{labels: make(map[int]*Label)}
	b.Emit(OpRet)
	return b
}

// SetVersion sets the format version byte.
func (b *Builder) SetVersion(v byte) { b.version = v }

// Symbol returns symbol i for further adjustment.
func (b *Builder) Symbol(i int) *Symbol { return b.symbols[i] }

// Add appends a symbol and returns its index.
func (b *Builder) Add(name string, typ SymbolType, count int, flags Flag) int {
	s := newSymbol()
	s.Name = name
	s.Props.Elem = NewElemProps(count, typ, flags)
	if !s.IsClassVar() {
		switch typ {
		case TypeInt:
			s.ints.Resize(count)
		case TypeFloat:
			s.floats.Resize(count)
		case TypeString:
			s.strings.Resize(count)
		}
	}
	b.symbols = append(b.symbols, s)
	return len(b.symbols) - 1
}

// AddInt declares an int variable initialized with values.
func (b *Builder) AddInt(name string, flags Flag, values ...int32) int {
	i := b.Add(name, TypeInt, max(len(values), 1), flags)
	for j, v := range values {
		b.symbols[i].ints.Set(j, v)
	}
	return i
}

// AddFloat declares a float variable initialized with values.
func (b *Builder) AddFloat(name string, flags Flag, values ...float32) int {
	i := b.Add(name, TypeFloat, max(len(values), 1), flags)
	for j, v := range values {
		b.symbols[i].floats.Set(j, v)
	}
	return i
}

// AddString declares a string variable initialized with values.
func (b *Builder) AddString(name string, flags Flag, values ...string) int {
	i := b.Add(name, TypeString, max(len(values), 1), flags)
	for j, v := range values {
		b.symbols[i].strings.Set(j, v)
	}
	return i
}

// AddClass declares a class of size bytes with members members.
func (b *Builder) AddClass(name string, size uint32, members int) int {
	i := b.Add(name, TypeClass, members, 0)
	b.symbols[i].ClassSize = size
	return i
}

// AddMember declares a member of class. Member names are conventionally
// qualified, as in "C_NPC.ATTRIBUTE".
func (b *Builder) AddMember(class int, name string, typ SymbolType, count int, offset int32) int {
	i := b.Add(name, typ, count, FlagClassVar)
	b.symbols[i].Props.OffClsRet = offset
	b.symbols[i].Parent = uint32(class)
	return i
}

// AddFunc declares a script function taking params arguments. The body is
// placed with Begin.
func (b *Builder) AddFunc(name string, params int, ret SymbolType) int {
	flags := FlagConst
	if ret != TypeVoid {
		flags |= FlagReturn
	}
	i := b.Add(name, TypeFunc, params, flags)
	b.symbols[i].Props.OffClsRet = int32(ret)
	return i
}

// AddExternal declares an engine-provided function.
func (b *Builder) AddExternal(name string, params int, ret SymbolType) int {
	i := b.AddFunc(name, params, ret)
	s := b.symbols[i]
	s.Props.Elem = NewElemProps(params, TypeFunc, s.Props.Flags()|FlagExternal)
	return i
}

// AddPrototype declares a prototype of class. The body is placed with Begin.
func (b *Builder) AddPrototype(name string, class int) int {
	i := b.Add(name, TypePrototype, 0, 0)
	b.symbols[i].Parent = uint32(class)
	return i
}

// AddInstance declares an instance constant whose parent is a class or
// prototype. The body is placed with Begin.
func (b *Builder) AddInstance(name string, parent int) int {
	i := b.Add(name, TypeInstance, 0, FlagConst)
	b.symbols[i].Parent = uint32(parent)
	return i
}

// AddParam declares a parameter or local of fn. Parameters follow their
// function in declaration order.
func (b *Builder) AddParam(fn int, name string, typ SymbolType) int {
	return b.Add(b.symbols[fn].Name+"."+name, typ, 1, 0)
}

// Entry returns the entry label of callable symbol fn.
func (b *Builder) Entry(fn int) *Label {
	l, ok := b.labels[fn]
	if !ok {
		l = b.NewLabel()
		b.labels[fn] = l
	}
	return l
}

// Begin places the body of callable symbol fn at the current position.
func (b *Builder) Begin(fn int) {
	b.symbols[fn].Address = uint32(b.Len())
	b.Mark(b.Entry(fn))
}

// EmitCall emits CALL to the entry of fn.
func (b *Builder) EmitCall(fn int) { b.EmitJump(OpCall, b.Entry(fn)) }

// ---------------------------------------------------------------------------
// Encoding
// ---------------------------------------------------------------------------

// Bytes encodes the image. It fails when a called function has no body.
func (b *Builder) Bytes() ([]byte, error) {
	for fn, l := range b.labels {
		if !l.resolved {
			return nil, fmt.Errorf("function %s: %w", b.symbols[fn].Name, ErrNoBody)
		}
	}

	out := []byte{b.version}
	out = binary.LittleEndian.AppendUint32(out, uint32(len(b.symbols)))
	for _, i := range b.sortHints() {
		out = binary.LittleEndian.AppendUint32(out, uint32(i))
	}
	for _, s := range b.symbols {
		out = appendSymbol(out, s)
	}
	out = binary.LittleEndian.AppendUint32(out, uint32(b.Len()))
	out = append(out, b.CodeBuilder.Bytes()...)
	return out, nil
}

// WriteTo writes the encoded image to w.
func (b *Builder) WriteTo(w io.Writer) (int64, error) {
	data, err := b.Bytes()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// File encodes the image and decodes it again.
func (b *Builder) File() (*File, error) {
	data, err := b.Bytes()
	if err != nil {
		return nil, err
	}
	return Parse(data), nil
}

func (b *Builder) sortHints() []int {
	order := make([]int, len(b.symbols))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(x, y int) int {
		return compareNoCase(b.symbols[x].Name, b.symbols[y].Name)
	})
	return order
}

func appendSymbol(out []byte, s *Symbol) []byte {
	le := binary.LittleEndian
	if s.Name != "" {
		out = le.AppendUint32(out, 1)
		out = append(out, s.Name...)
		out = append(out, '\n')
	} else {
		out = le.AppendUint32(out, 0)
	}

	p := s.Props
	for _, w := range []uint32{uint32(p.OffClsRet), uint32(p.Elem), p.FileIndex, p.LineStart, p.LineCount, p.CharStart, p.CharCount} {
		out = le.AppendUint32(out, w)
	}

	if !s.IsClassVar() {
		n := s.Count()
		switch s.Type() {
		case TypeFloat:
			for j := 0; j < n; j++ {
				out = le.AppendUint32(out, math.Float32bits(elem(&s.floats, j)))
			}
		case TypeInt:
			for j := 0; j < n; j++ {
				out = le.AppendUint32(out, uint32(elem(&s.ints, j)))
			}
		case TypeString:
			for j := 0; j < n; j++ {
				out = append(out, elem(&s.strings, j)...)
				out = append(out, '\n')
			}
		case TypeClass:
			out = le.AppendUint32(out, s.ClassSize)
		case TypeFunc, TypePrototype, TypeInstance:
			out = le.AppendUint32(out, s.Address)
		}
	}

	return le.AppendUint32(out, s.Parent)
}

func elem[T Value](vs *Values[T], i int) T {
	if i < vs.Len() {
		return vs.Get(i)
	}
	var zero T
	return zero
}
