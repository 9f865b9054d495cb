package dat

import (
	"errors"
	"testing"
)

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

type testStats struct {
	Level int32
	Exp   int32
}

type testNpc struct {
	InstanceHeader
	ID        int32
	Name      [5]string
	Attribute [8]int32
	Fight     float32
	Stats     testStats
	OnDeath   int32
	hidden    int32
}

func npcFile(t *testing.T) (*File, map[string]int) {
	t.Helper()
	b := NewBuilder()
	c := b.AddClass("C_NPC", 0, 6)
	idx := map[string]int{
		"id":        b.AddMember(c, "C_NPC.ID", TypeInt, 1, 0),
		"name":      b.AddMember(c, "C_NPC.NAME", TypeString, 5, 0),
		"attribute": b.AddMember(c, "C_NPC.ATTRIBUTE", TypeInt, 8, 0),
		"fight":     b.AddMember(c, "C_NPC.FIGHT", TypeFloat, 1, 0),
		"level":     b.AddMember(c, "C_NPC.LEVEL", TypeInt, 1, 0),
		"ondeath":   b.AddMember(c, "C_NPC.ONDEATH", TypeFunc, 1, 0),
		"hidden":    b.AddMember(c, "C_NPC.HIDDEN", TypeInt, 1, 0),
	}
	f := buildFile(t, b)

	for name, field := range map[string]string{
		"C_NPC.ID":        "ID",
		"C_NPC.NAME":      "Name",
		"C_NPC.ATTRIBUTE": "Attribute",
		"C_NPC.FIGHT":     "Fight",
		"C_NPC.LEVEL":     "Stats.Level",
		"C_NPC.ONDEATH":   "OnDeath",
		"C_NPC.HIDDEN":    "hidden",
	} {
		if err := f.RegisterField(name, testNpc{}, field, true); err != nil {
			t.Fatalf("RegisterField(%s): %v", name, err)
		}
	}
	return f, idx
}

// ---------------------------------------------------------------------------
// Field offsets
// ---------------------------------------------------------------------------

func TestFieldOffset(t *testing.T) {
	off, extent, err := FieldOffset(&testNpc{}, "Attribute")
	if err != nil {
		t.Fatal(err)
	}
	if extent != 8 {
		t.Errorf("extent = %d, want 8", extent)
	}
	off2, _, _ := FieldOffset(testNpc{}, "Attribute")
	if off != off2 {
		t.Errorf("pointer and value samples disagree: %d vs %d", off, off2)
	}

	lvl, extent, err := FieldOffset(testNpc{}, "Stats.Exp")
	if err != nil {
		t.Fatal(err)
	}
	stats, _, _ := FieldOffset(testNpc{}, "Stats")
	if lvl != stats+4 || extent != 1 {
		t.Errorf("Stats.Exp at %d extent %d, Stats at %d", lvl, extent, stats)
	}

	if _, _, err := FieldOffset(testNpc{}, "Missing"); !errors.Is(err, ErrNoField) {
		t.Errorf("err = %v, want ErrNoField", err)
	}
	if _, _, err := FieldOffset(42, "X"); !errors.Is(err, ErrNotStruct) {
		t.Errorf("err = %v, want ErrNotStruct", err)
	}
}

// ---------------------------------------------------------------------------
// Class member access
// ---------------------------------------------------------------------------

func TestClassMemberReadWrite(t *testing.T) {
	f, idx := npcFile(t)
	npc := &testNpc{ID: 7}
	npc.Attribute[3] = 100

	id := f.SymbolByIndex(idx["id"])
	if got := id.Int(0, npc); got != 7 {
		t.Errorf("ID = %d, want 7", got)
	}
	id.SetInt(9, 0, npc)
	if npc.ID != 9 {
		t.Errorf("npc.ID = %d, want 9", npc.ID)
	}

	attr := f.SymbolByIndex(idx["attribute"])
	if got := attr.Int(3, npc); got != 100 {
		t.Errorf("ATTRIBUTE[3] = %d, want 100", got)
	}
	attr.SetInt(55, 7, npc)
	if npc.Attribute[7] != 55 {
		t.Errorf("Attribute[7] = %d, want 55", npc.Attribute[7])
	}

	name := f.SymbolByIndex(idx["name"])
	name.SetStr("Xardas", 4, npc)
	if npc.Name[4] != "Xardas" || name.Str(4, npc) != "Xardas" {
		t.Errorf("Name[4] = %q", npc.Name[4])
	}

	fight := f.SymbolByIndex(idx["fight"])
	fight.SetFloat(0.5, 0, npc)
	if npc.Fight != 0.5 {
		t.Errorf("Fight = %v, want 0.5", npc.Fight)
	}

	level := f.SymbolByIndex(idx["level"])
	level.SetInt(12, 0, npc)
	if npc.Stats.Level != 12 {
		t.Errorf("Stats.Level = %d, want 12", npc.Stats.Level)
	}
}

func TestClassMemberWithoutBaseIsZero(t *testing.T) {
	f, idx := npcFile(t)
	attr := f.SymbolByIndex(idx["attribute"])

	if got := attr.Int(2, nil); got != 0 {
		t.Errorf("read without base = %d, want 0", got)
	}
	attr.SetInt(5, 2, nil) // must not panic or grow own storage
	if attr.Ints().Len() != 0 {
		t.Errorf("write without base touched own storage: %d elements", attr.Ints().Len())
	}

	var nilNpc *testNpc
	if got := attr.Int(0, nilNpc); got != 0 {
		t.Errorf("read with typed nil base = %d, want 0", got)
	}
}

func TestClassMemberFailuresFallBack(t *testing.T) {
	f, idx := npcFile(t)
	npc := &testNpc{}

	attr := f.SymbolByIndex(idx["attribute"])
	attr.SetInt(1, 8, npc) // one past the extent
	if got := attr.Int(8, npc); got != 0 {
		t.Errorf("out-of-range member read = %d, want 0", got)
	}

	// Kind mismatch: reading an int member as float.
	if got := f.SymbolByIndex(idx["id"]).Float(0, npc); got != 0 {
		t.Errorf("mismatched kind read = %v, want 0", got)
	}

	hidden := f.SymbolByIndex(idx["hidden"])
	hidden.SetInt(3, 0, npc)
	if npc.hidden != 0 {
		t.Error("unexported field should not be writable")
	}

	unbound := newSymbol()
	unbound.Props.Elem = NewElemProps(1, TypeInt, FlagClassVar)
	if got := unbound.Int(0, npc); got != 0 {
		t.Errorf("unbound member read = %d, want 0", got)
	}
}

func TestRegisterMemberCheckExists(t *testing.T) {
	f, _ := npcFile(t)
	f.RegisterMember("C_NPC.NOPE", 4, 0, true)
	if f.HasSymbol("C_NPC.NOPE") {
		t.Error("RegisterMember must not create symbols")
	}
	f.RegisterMember("C_NPC.ID", 8, 0, true)
	if s := f.SymbolByName("C_NPC.ID"); s.MemberOffset != 8 || s.MemberExtent != 1 {
		t.Errorf("offset %d extent %d, want 8 and 1", s.MemberOffset, s.MemberExtent)
	}
}

// ---------------------------------------------------------------------------
// Own storage
// ---------------------------------------------------------------------------

func TestOwnStorageBounds(t *testing.T) {
	s := newSymbol()
	s.Props.Elem = NewElemProps(2, TypeInt, 0)
	s.ints.Resize(2)

	if got := s.Int(5, nil); got != 0 {
		t.Errorf("out-of-range read = %d, want 0", got)
	}
	if s.ints.Len() != 2 {
		t.Errorf("read grew storage to %d", s.ints.Len())
	}
	s.SetInt(4, 5, nil)
	if s.ints.Len() != 6 || s.Int(5, nil) != 4 {
		t.Errorf("write did not grow storage: len %d", s.ints.Len())
	}
}

func TestSetAddress(t *testing.T) {
	f, idx := npcFile(t)
	npc := &testNpc{}

	ondeath := f.SymbolByIndex(idx["ondeath"])
	ondeath.SetAddress(1234, 0, npc)
	if ondeath.Address != 1234 || npc.OnDeath != 1234 {
		t.Errorf("Address = %d, OnDeath = %d", ondeath.Address, npc.OnDeath)
	}

	defer func() {
		if recover() == nil {
			t.Error("SetAddress on an int symbol should panic")
		}
	}()
	f.SymbolByIndex(idx["id"]).SetAddress(1, 0, npc)
}
