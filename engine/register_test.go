package engine

import (
	"errors"
	"testing"

	"github.com/chazu/daedalus/dat"
	"github.com/chazu/daedalus/vm"
)

// gameProgram declares part of C_NPC and C_ITEM the way an older script
// set might, plus one instance of each and a class the engine does not
// know.
type gameProgram struct {
	f *dat.File

	npcID, npcName, npcAttr, npcExtra int
	itemValue, itemText               int
	diego, sword, stranger            int
}

func newGameProgram(t *testing.T) *gameProgram {
	t.Helper()
	p := &gameProgram{}
	b := dat.NewBuilder()

	npc := b.AddClass("C_NPC", 64, 4)
	p.npcID = b.AddMember(npc, "C_NPC.ID", dat.TypeInt, 1, 0)
	p.npcName = b.AddMember(npc, "C_NPC.NAME", dat.TypeString, NpcNames, 4)
	p.npcAttr = b.AddMember(npc, "C_NPC.ATTRIBUTE", dat.TypeInt, AttributeMax, 24)
	p.npcExtra = b.AddMember(npc, "C_NPC.HOMEWORLD", dat.TypeInt, 1, 56)
	item := b.AddClass("C_ITEM", 32, 2)
	p.itemValue = b.AddMember(item, "C_ITEM.VALUE", dat.TypeInt, 1, 0)
	p.itemText = b.AddMember(item, "C_ITEM.TEXT", dat.TypeString, ItemTextMax, 4)
	other := b.AddClass("C_WORLD", 4, 0)

	proto := b.AddPrototype("NPC_DEFAULT", npc)
	p.diego = b.AddInstance("PC_THIEF", proto)
	p.sword = b.AddInstance("ITMW_SWORD", item)
	p.stranger = b.AddInstance("WORLD", other)
	thief := b.AddString("THIEF_NAME", dat.FlagConst, "Diego")
	damage := b.AddString("DAMAGE_TEXT", dat.FlagConst, "Damage")

	b.Begin(proto)
	b.Emit(dat.OpRet)

	b.Begin(p.diego)
	b.EmitPushInt(5)
	b.EmitSymbol(dat.OpPushVar, p.npcID)
	b.Emit(dat.OpAssignInt)
	b.EmitPushInt(30)
	b.EmitArrayVar(p.npcAttr, AttrStrength)
	b.Emit(dat.OpAssignInt)
	b.EmitSymbol(dat.OpPushVar, thief)
	b.EmitSymbol(dat.OpPushVar, p.npcName)
	b.Emit(dat.OpAssignString)
	b.Emit(dat.OpRet)

	b.Begin(p.sword)
	b.EmitPushInt(100)
	b.EmitSymbol(dat.OpPushVar, p.itemValue)
	b.Emit(dat.OpAssignInt)
	b.EmitSymbol(dat.OpPushVar, damage)
	b.EmitArrayVar(p.itemText, 2)
	b.Emit(dat.OpAssignString)
	b.Emit(dat.OpRet)

	f, err := b.File()
	if err != nil {
		t.Fatalf("build image: %v", err)
	}
	p.f = f
	return p
}

func TestRegisterSkipsUndeclaredMembers(t *testing.T) {
	p := newGameProgram(t)

	n, err := Register(p.f)
	if err != nil {
		t.Fatal(err)
	}
	if n != 5 {
		t.Errorf("Register bound %d members, want 5", n)
	}
	for _, i := range []int{p.npcID, p.npcName, p.npcAttr, p.itemValue, p.itemText} {
		if !p.f.SymbolByIndex(i).IsBound() {
			t.Errorf("%s not bound", p.f.SymbolByIndex(i).Name)
		}
	}
	if p.f.SymbolByIndex(p.npcExtra).IsBound() {
		t.Error("member without a native field should stay unbound")
	}
	if got := p.f.SymbolByIndex(p.npcAttr).MemberExtent; got != AttributeMax {
		t.Errorf("ATTRIBUTE extent = %d, want %d", got, AttributeMax)
	}
	if p.f.HasSymbol("C_NPC.AIVAR") {
		t.Error("Register must not declare members")
	}
}

func TestInitializeEngineInstances(t *testing.T) {
	p := newGameProgram(t)
	if _, err := Register(p.f); err != nil {
		t.Fatal(err)
	}
	m := vm.New(p.f)

	obj, tag, err := New(p.f, p.diego)
	if err != nil {
		t.Fatal(err)
	}
	if tag != dat.ClassNpc {
		t.Errorf("tag = %s, want npc", tag)
	}
	if err := m.InitializeInstance(obj, p.diego, tag); err != nil {
		t.Fatal(err)
	}
	npc := obj.(*Npc)
	if npc.ID != 5 || npc.Attribute[AttrStrength] != 30 || npc.Name[0] != "Diego" {
		t.Errorf("npc = ID %d, strength %d, name %q", npc.ID, npc.Attribute[AttrStrength], npc.Name[0])
	}

	obj, tag, err = New(p.f, p.sword)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.InitializeInstance(obj, p.sword, tag); err != nil {
		t.Fatal(err)
	}
	item := obj.(*Item)
	if item.Value != 100 || item.Text[2] != "Damage" {
		t.Errorf("item = value %d, text %q", item.Value, item.Text[2])
	}
}

func TestClassOf(t *testing.T) {
	p := newGameProgram(t)

	c, err := ClassOf(p.f, p.diego)
	if err != nil || c.Name != "C_NPC" {
		t.Errorf("ClassOf(PC_THIEF) = %q, %v; want C_NPC through the prototype", c.Name, err)
	}
	if _, err := ClassOf(p.f, p.stranger); !errors.Is(err, ErrUnknownClass) {
		t.Errorf("ClassOf(WORLD) err = %v, want unknown class", err)
	}
	if _, _, err := New(p.f, p.npcID); !errors.Is(err, ErrUnknownClass) {
		t.Errorf("New on a member err = %v, want unknown class", err)
	}
}

func TestLookup(t *testing.T) {
	c, ok := Lookup("c_sfx")
	if !ok || c.Tag != dat.ClassSfx {
		t.Fatalf("Lookup(c_sfx) = %+v, %v", c, ok)
	}
	if sfx := c.New().(*Sfx); sfx.Vol != 64 {
		t.Errorf("Vol = %d, want 64", sfx.Vol)
	}
	if _, ok := Lookup("C_WORLD"); ok {
		t.Error("C_WORLD is not an engine class")
	}
}
