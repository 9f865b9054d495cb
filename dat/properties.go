package dat

import "fmt"

// ---------------------------------------------------------------------------
// Symbol types and flags
// ---------------------------------------------------------------------------

// SymbolType is the 4-bit semantic type stored in a symbol's element word.
type SymbolType uint32

const (
	TypeVoid      SymbolType = 0
	TypeFloat     SymbolType = 1
	TypeInt       SymbolType = 2
	TypeString    SymbolType = 3
	TypeClass     SymbolType = 4
	TypeFunc      SymbolType = 5
	TypePrototype SymbolType = 6
	TypeInstance  SymbolType = 7
)

var symbolTypeNames = [...]string{
	TypeVoid:      "void",
	TypeFloat:     "float",
	TypeInt:       "int",
	TypeString:    "string",
	TypeClass:     "class",
	TypeFunc:      "func",
	TypePrototype: "prototype",
	TypeInstance:  "instance",
}

func (t SymbolType) String() string {
	if int(t) < len(symbolTypeNames) {
		return symbolTypeNames[t]
	}
	return fmt.Sprintf("type(%d)", uint32(t))
}

// Flag is the 6-bit flag set stored in a symbol's element word.
type Flag uint32

const (
	FlagConst    Flag = 1 << 0
	FlagReturn   Flag = 1 << 1
	FlagClassVar Flag = 1 << 2
	FlagExternal Flag = 1 << 3
	FlagMerged   Flag = 1 << 4
)

func (f Flag) String() string {
	names := []struct {
		f    Flag
		name string
	}{
		{FlagConst, "const"},
		{FlagReturn, "return"},
		{FlagClassVar, "classvar"},
		{FlagExternal, "external"},
		{FlagMerged, "merged"},
	}
	s := ""
	for _, n := range names {
		if f&n.f != 0 {
			if s != "" {
				s += "|"
			}
			s += n.name
		}
	}
	return s
}

// ---------------------------------------------------------------------------
// ElemProps: count:12 | type:4 | flags:6 | space:1 | reserved:9
// ---------------------------------------------------------------------------

// ElemProps is the packed element word of a symbol.
type ElemProps uint32

const (
	countBits    = 12
	typeBits     = 4
	flagBits     = 6
	spaceBits    = 1
	reservedBits = 9

	typeShift     = countBits
	flagShift     = typeShift + typeBits
	spaceShift    = flagShift + flagBits
	reservedShift = spaceShift + spaceBits
)

// MaxCount is the largest element count the packed word can hold.
const MaxCount = 1<<countBits - 1

// NewElemProps packs the element word. Values wider than their field are truncated.
func NewElemProps(count int, typ SymbolType, flags Flag) ElemProps {
	return ElemProps(uint32(count)&mask(countBits) |
		(uint32(typ)&mask(typeBits))<<typeShift |
		(uint32(flags)&mask(flagBits))<<flagShift)
}

func mask(bits uint) uint32 { return 1<<bits - 1 }

func (e ElemProps) Count() int       { return int(uint32(e) & mask(countBits)) }
func (e ElemProps) Type() SymbolType { return SymbolType(uint32(e) >> typeShift & mask(typeBits)) }
func (e ElemProps) Flags() Flag      { return Flag(uint32(e) >> flagShift & mask(flagBits)) }
func (e ElemProps) Space() uint32    { return uint32(e) >> spaceShift & mask(spaceBits) }
func (e ElemProps) Reserved() uint32 { return uint32(e) >> reservedShift & mask(reservedBits) }
func (e ElemProps) Has(f Flag) bool  { return e.Flags()&f != 0 }

// ---------------------------------------------------------------------------
// Properties: the 28-byte on-disk property block
// ---------------------------------------------------------------------------

// PropertiesSize is the encoded size of a Properties block.
const PropertiesSize = 28

// Properties is the packed property block of a symbol. Only OffClsRet and
// Elem are used at runtime; the debug words are kept so images round-trip.
type Properties struct {
	OffClsRet int32 // member offset (class var) | class size (class) | return type (func)
	Elem      ElemProps

	FileIndex uint32 // value:19
	LineStart uint32 // value:19
	LineCount uint32 // value:19
	CharStart uint32 // value:24
	CharCount uint32 // value:24
}

func (p Properties) Count() int       { return p.Elem.Count() }
func (p Properties) Type() SymbolType { return p.Elem.Type() }
func (p Properties) Flags() Flag      { return p.Elem.Flags() }
func (p Properties) Has(f Flag) bool  { return p.Elem.Has(f) }
func (p Properties) File() uint32     { return p.FileIndex & mask(19) }
func (p Properties) Line() uint32     { return p.LineStart & mask(19) }
func (p Properties) Lines() uint32    { return p.LineCount & mask(19) }
func (p Properties) Char() uint32     { return p.CharStart & mask(24) }
func (p Properties) Chars() uint32    { return p.CharCount & mask(24) }
