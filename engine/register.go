package engine

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/chazu/daedalus/dat"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("daedalus.engine")

// ErrUnknownClass is returned for instances whose class is not an engine
// class.
var ErrUnknownClass = errors.New("not an engine class")

// ---------------------------------------------------------------------------
// Class table
// ---------------------------------------------------------------------------

// Class describes an engine class.
type Class struct {
	Name string // script class name
	Tag  dat.ClassTag
	New  func() dat.Instance
}

// Classes lists the engine classes in registration order.
var Classes = []Class{
	{"C_NPC", dat.ClassNpc, func() dat.Instance { return &Npc{} }},
	{"C_MISSION", dat.ClassMission, func() dat.Instance { return &Mission{} }},
	{"C_INFO", dat.ClassInfo, func() dat.Instance { return &Info{} }},
	{"C_ITEM", dat.ClassItem, func() dat.Instance { return &Item{} }},
	{"C_ITEMREACT", dat.ClassItemReact, func() dat.Instance { return &ItemReact{} }},
	{"C_FOCUS", dat.ClassFocus, func() dat.Instance { return &Focus{} }},
	{"C_SPELL", dat.ClassSpell, func() dat.Instance { return &Spell{} }},
	{"C_SFX", dat.ClassSfx, func() dat.Instance { return NewSfx() }},
}

// Lookup returns the engine class named name, ignoring case.
func Lookup(name string) (Class, bool) {
	for _, c := range Classes {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return Class{}, false
}

// ---------------------------------------------------------------------------
// Member registration
// ---------------------------------------------------------------------------

// Register binds the members of every engine class to f. Members the
// image does not declare are skipped, since Gothic 1 and Gothic 2 scripts
// declare different subsets. It returns the number of members bound.
func Register(f *dat.File) (int, error) {
	bound := 0
	for _, c := range Classes {
		n, err := registerClass(f, c)
		if err != nil {
			return bound, err
		}
		bound += n
	}
	return bound, nil
}

func registerClass(f *dat.File, c Class) (int, error) {
	sample := c.New()
	t := reflect.TypeOf(sample).Elem()
	bound := 0
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		member, ok := field.Tag.Lookup("daedalus")
		if !ok {
			continue
		}
		name := c.Name + "." + member
		if !f.HasSymbol(name) {
			log.Debugf("%s not declared by the program", name)
			continue
		}
		if err := f.RegisterField(name, sample, field.Name, true); err != nil {
			return bound, fmt.Errorf("%s: %w", c.Name, err)
		}
		bound++
	}
	return bound, nil
}

// ---------------------------------------------------------------------------
// Instances
// ---------------------------------------------------------------------------

// ClassOf returns the engine class of the instance symbol index, looking
// through one prototype.
func ClassOf(f *dat.File, index int) (Class, error) {
	s := f.SymbolByIndex(index)
	if s.Type() != dat.TypeInstance || !s.HasParent() {
		return Class{}, fmt.Errorf("%s: %w", s.Name, ErrUnknownClass)
	}
	parent := f.SymbolByIndex(int(s.Parent))
	if parent.Type() == dat.TypePrototype && parent.HasParent() {
		parent = f.SymbolByIndex(int(parent.Parent))
	}
	c, ok := Lookup(parent.Name)
	if !ok {
		return Class{}, fmt.Errorf("%s of class %s: %w", s.Name, parent.Name, ErrUnknownClass)
	}
	return c, nil
}

// New allocates the engine object for the instance symbol index.
func New(f *dat.File, index int) (dat.Instance, dat.ClassTag, error) {
	c, err := ClassOf(f, index)
	if err != nil {
		return nil, dat.ClassNone, err
	}
	return c.New(), c.Tag, nil
}
