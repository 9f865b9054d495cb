package dat

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

// ---------------------------------------------------------------------------
// reader: tolerant little-endian cursor
// ---------------------------------------------------------------------------

// reader never fails: reads past the end yield zero bytes and mark the
// input as truncated.
type reader struct {
	data      []byte
	pos       int
	truncated bool
}

func (r *reader) eof() bool { return r.pos >= len(r.data) }

func (r *reader) u8() byte {
	if r.pos >= len(r.data) {
		r.truncated = true
		return 0
	}
	b := r.data[r.pos]
	r.pos++
	return b
}

func (r *reader) u32() uint32 {
	if len(r.data)-r.pos < 4 {
		var buf [4]byte
		copy(buf[:], r.data[r.pos:])
		r.pos = len(r.data)
		r.truncated = true
		return binary.LittleEndian.Uint32(buf[:])
	}
	v := binary.LittleEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v
}

func (r *reader) i32() int32   { return int32(r.u32()) }
func (r *reader) f32() float32 { return math.Float32frombits(r.u32()) }

// line reads bytes up to and excluding the next newline. When skipFF is set
// stray 0xFF bytes are dropped.
func (r *reader) line(skipFF bool) string {
	buf := make([]byte, 0, 16)
	for {
		if r.eof() {
			r.truncated = true
			return string(buf)
		}
		b := r.data[r.pos]
		r.pos++
		if b == '\n' {
			return string(buf)
		}
		if skipFF && b == 0xFF {
			continue
		}
		buf = append(buf, b)
	}
}

// ---------------------------------------------------------------------------
// Decoding
// ---------------------------------------------------------------------------

// ReadFile loads a compiled program image from disk.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read program image: %w", err)
	}
	return Parse(data), nil
}

// Read loads a compiled program image from r.
func Read(r io.Reader) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read program image: %w", err)
	}
	return Parse(data), nil
}

// Parse decodes a compiled program image. Malformed input never fails:
// missing bytes decode as zeros and the result reports Truncated.
func Parse(data []byte) *File {
	r := &reader{data: data}
	f := newFile()

	f.version = r.u8()
	count := r.u32()

	for i := uint32(0); i < count && !r.truncated; i++ {
		f.hints = append(f.hints, r.u32())
	}
	for i := uint32(0); i < count && !r.truncated; i++ {
		f.addDecoded(readSymbol(r))
	}
	f.sortNames()

	f.code.Declared = r.u32()
	for !r.eof() {
		f.code.Append(readInstruction(r))
	}
	if f.code.Size() != int(f.code.Declared) {
		log.Warningf("code segment is %d bytes, header declares %d", f.code.Size(), f.code.Declared)
	}

	if r.truncated {
		f.truncated = true
		log.Warningf("program image truncated after %d bytes, %d of %d symbols read", len(data), len(f.symbols), count)
	}
	return f
}

func readSymbol(r *reader) *Symbol {
	s := newSymbol()
	if named := r.u32(); named != 0 {
		s.Name = r.line(true)
	}

	s.Props = Properties{
		OffClsRet: r.i32(),
		Elem:      ElemProps(r.u32()),
		FileIndex: r.u32(),
		LineStart: r.u32(),
		LineCount: r.u32(),
		CharStart: r.u32(),
		CharCount: r.u32(),
	}

	if !s.IsClassVar() {
		n := s.Count()
		switch s.Type() {
		case TypeFloat:
			s.floats.Resize(n)
			for j := 0; j < n; j++ {
				s.floats.Set(j, r.f32())
			}
		case TypeInt:
			s.ints.Resize(n)
			for j := 0; j < n; j++ {
				s.ints.Set(j, r.i32())
			}
		case TypeString:
			s.strings.Resize(n)
			for j := 0; j < n; j++ {
				s.strings.Set(j, r.line(false))
			}
		case TypeClass:
			s.ClassSize = r.u32()
		case TypeFunc, TypePrototype, TypeInstance:
			s.Address = r.u32()
		}
	}

	s.Parent = r.u32()
	return s
}

func readInstruction(r *reader) Instruction {
	in := Instruction{Op: Opcode(r.u8()), Size: 1}
	switch in.Op.Operand() {
	case OperandLiteral, OperandAddress, OperandSymbol:
		in.Value = r.i32()
	case OperandSymbolIndex:
		in.Value = r.i32()
		in.Index = r.u8()
	}
	in.Size += in.Op.OperandBytes()
	return in
}
