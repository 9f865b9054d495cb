package dat

import "testing"

// ---------------------------------------------------------------------------
// FuzzParse: the decoder must never panic on arbitrary input.
// ---------------------------------------------------------------------------

func FuzzParse(f *testing.F) {
	b := NewBuilder()
	b.AddString("S", 0, "a", "b")
	b.AddFloat("F", 0, 1)
	fn := b.AddFunc("MAIN", 0, TypeInt)
	b.Begin(fn)
	b.EmitPushInt(1)
	b.Emit(OpRet)
	seed, err := b.Bytes()
	if err != nil {
		f.Fatal(err)
	}
	f.Add(seed)
	f.Add([]byte{})
	f.Add([]byte{0, 0xFF, 0xFF, 0xFF, 0x0F})

	f.Fuzz(func(t *testing.T, data []byte) {
		file := Parse(data)
		for i := 0; i < file.Len(); i++ {
			file.Disassemble(i)
		}
		code := file.Code()
		for pc := 0; pc < code.Size(); pc++ {
			code.At(uint32(pc))
		}
	})
}
