package dat

import (
	"fmt"
	"slices"
)

// ---------------------------------------------------------------------------
// File: the decoded symbol table and code segment
// ---------------------------------------------------------------------------

type nameEntry struct {
	name  string
	index int
}

// File is a loaded program image. Symbols keep their declaration order;
// name lookups are ASCII case-insensitive.
type File struct {
	symbols   []*Symbol
	byName    []nameEntry // sorted with compareNoCase
	byAddress map[uint32]int
	code      InstructionTable

	version   byte
	hints     []uint32
	truncated bool
}

func newFile() *File {
	return &File{byAddress: make(map[uint32]int)}
}

// Version returns the image format version byte.
func (f *File) Version() byte { return f.version }

// SortHints returns the compiler's sort table. It is not used at runtime.
func (f *File) SortHints() []uint32 { return f.hints }

// Truncated reports whether the image ended before all declared data.
func (f *File) Truncated() bool { return f.truncated }

// Len returns the number of symbols.
func (f *File) Len() int { return len(f.symbols) }

// Code returns the instruction table.
func (f *File) Code() *InstructionTable { return &f.code }

// Symbols returns the symbol slice in declaration order.
func (f *File) Symbols() []*Symbol { return f.symbols }

func (f *File) addDecoded(s *Symbol) {
	i := len(f.symbols)
	f.symbols = append(f.symbols, s)
	if s.Name != "" {
		f.byName = append(f.byName, nameEntry{s.Name, i})
	}
	if isCallable(s) {
		if _, dup := f.byAddress[s.Address]; !dup {
			f.byAddress[s.Address] = i
		}
	}
}

// isCallable reports whether s has its own code: a prototype, or a const
// function that is neither a class member nor a function-typed parameter.
func isCallable(s *Symbol) bool {
	switch s.Type() {
	case TypePrototype:
		return true
	case TypeFunc:
		return !s.IsClassVar() && s.Has(FlagConst)
	}
	return false
}

func (f *File) sortNames() {
	slices.SortStableFunc(f.byName, func(a, b nameEntry) int {
		return compareNoCase(a.name, b.name)
	})
}

// compareNoCase orders names by upper-cased bytes compared as signed chars,
// matching the order the compiler uses.
func compareNoCase(a, b string) int {
	n := max(len(a), len(b))
	for i := 0; i < n; i++ {
		ca, cb := upperAt(a, i), upperAt(b, i)
		if ca < cb {
			return -1
		}
		if ca > cb {
			return 1
		}
	}
	return 0
}

func upperAt(s string, i int) int8 {
	if i >= len(s) {
		return 0
	}
	c := s[i]
	if 'a' <= c && c <= 'z' {
		c -= 'a' - 'A'
	}
	return int8(c)
}

// ---------------------------------------------------------------------------
// Lookups
// ---------------------------------------------------------------------------

// SymbolIndexByName returns the index of the named symbol or NotFound.
func (f *File) SymbolIndexByName(name string) int {
	if name == "" {
		return NotFound
	}
	i, found := slices.BinarySearchFunc(f.byName, name, func(e nameEntry, target string) int {
		return compareNoCase(e.name, target)
	})
	if !found {
		return NotFound
	}
	return f.byName[i].index
}

// HasSymbol reports whether a symbol with the given name exists.
func (f *File) HasSymbol(name string) bool {
	return f.SymbolIndexByName(name) != NotFound
}

// SymbolByName returns the named symbol. A miss is logged and yields a
// detached placeholder.
func (f *File) SymbolByName(name string) *Symbol {
	i := f.SymbolIndexByName(name)
	if i == NotFound {
		log.Warningf("symbol %s not found", name)
		return newSymbol()
	}
	return f.symbols[i]
}

// SymbolByIndex returns symbol i. An out-of-range index is logged and
// yields a detached placeholder.
func (f *File) SymbolByIndex(i int) *Symbol {
	if i < 0 || i >= len(f.symbols) {
		log.Warningf("symbol index %d out of range (%d symbols)", i, len(f.symbols))
		return newSymbol()
	}
	return f.symbols[i]
}

// FunctionIndexByAddress returns the callable symbol whose code starts at
// addr, or NotFound.
func (f *File) FunctionIndexByAddress(addr uint32) int {
	if i, ok := f.byAddress[addr]; ok {
		return i
	}
	return NotFound
}

// IterateSymbolsOfClass calls fn for every instance constant whose class,
// directly or through one prototype, is className.
func (f *File) IterateSymbolsOfClass(className string, fn func(index int, s *Symbol)) {
	base := f.SymbolIndexByName(className)
	if base == NotFound {
		return
	}
	for i, s := range f.symbols {
		if !s.HasParent() || s.Type() != TypeInstance || !s.Has(FlagConst) {
			continue
		}
		parent := s.Parent
		if int(parent) < len(f.symbols) {
			p := f.symbols[parent]
			if p.Type() == TypePrototype && p.HasParent() {
				parent = p.Parent
			}
		}
		if int(parent) == base {
			fn(i, s)
		}
	}
}

// AddSymbol appends an empty symbol and returns its index. Added symbols
// are not reachable by name.
func (f *File) AddSymbol() int {
	f.symbols = append(f.symbols, newSymbol())
	return len(f.symbols) - 1
}

// ---------------------------------------------------------------------------
// Native member registration
// ---------------------------------------------------------------------------

// RegisterMember binds the class member name to a native field at offset
// spanning extent elements. With checkExists a missing symbol is ignored.
func (f *File) RegisterMember(name string, offset uintptr, extent int, checkExists bool) {
	if checkExists && !f.HasSymbol(name) {
		return
	}
	s := f.SymbolByName(name)
	s.MemberOffset = int(offset)
	s.MemberExtent = max(extent, 1)
}

// RegisterField binds the class member name to field of sample's struct
// type.
func (f *File) RegisterField(name string, sample any, field string, checkExists bool) error {
	offset, extent, err := FieldOffset(sample, field)
	if err != nil {
		return fmt.Errorf("register %s: %w", name, err)
	}
	f.RegisterMember(name, offset, extent, checkExists)
	return nil
}
