package dat

import "testing"

// ---------------------------------------------------------------------------
// Values tests
// ---------------------------------------------------------------------------

func TestValuesInline(t *testing.T) {
	vs := NewValues[int32](1)
	vs.Set(0, 42)
	if vs.Len() != 1 || vs.Get(0) != 42 {
		t.Errorf("got len %d value %d", vs.Len(), vs.Get(0))
	}
	if vs.rest != nil {
		t.Error("single value should be stored inline")
	}
}

func TestValuesGrowKeepsElements(t *testing.T) {
	vs := NewValues[string](1)
	vs.Set(0, "a")
	vs.Resize(3)
	if vs.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", vs.Len())
	}
	if vs.Get(0) != "a" || vs.Get(1) != "" || vs.Get(2) != "" {
		t.Errorf("got %q", vs.Slice())
	}
}

func TestValuesShrinkCollapses(t *testing.T) {
	vs := NewValues[float32](4)
	vs.Set(0, 1.5)
	vs.Set(3, 9)
	vs.Resize(1)
	if vs.rest != nil {
		t.Error("shrinking to one element should collapse to inline storage")
	}
	if vs.Get(0) != 1.5 {
		t.Errorf("Get(0) = %v, want 1.5", vs.Get(0))
	}
	vs.Resize(0)
	vs.Resize(1)
	if vs.Get(0) != 0 {
		t.Errorf("Get(0) = %v after clear, want 0", vs.Get(0))
	}
}

func TestValuesAssign(t *testing.T) {
	var vs Values[int32]
	vs.Assign([]int32{4, 5, 6})
	got := vs.Slice()
	if len(got) != 3 || got[0] != 4 || got[2] != 6 {
		t.Errorf("Slice() = %v", got)
	}
	vs.Assign(nil)
	if vs.Len() != 0 {
		t.Errorf("Len() = %d, want 0", vs.Len())
	}
}
