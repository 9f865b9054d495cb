package dat

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// ---------------------------------------------------------------------------
// Native member binding
// ---------------------------------------------------------------------------

// Class-member symbols address a field of the bound native object by byte
// offset. Offsets are resolved against the Go struct layout of the object
// with reflection: the offset selects a leaf field, the element index
// selects an array element within it.

// FieldOffset returns the absolute byte offset and element extent of a field
// of sample's struct type. field may name a nested field with dots
// ("Attributes.Health"). The extent is the array length for array fields
// and 1 otherwise.
func FieldOffset(sample any, field string) (uintptr, int, error) {
	t := reflect.TypeOf(sample)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return 0, 0, fmt.Errorf("field %q: %w", field, ErrNotStruct)
	}

	var offset uintptr
	var f reflect.StructField
	for _, part := range strings.Split(field, ".") {
		if t.Kind() != reflect.Struct {
			return 0, 0, fmt.Errorf("field %q: %w", field, ErrNotStruct)
		}
		sf, ok := t.FieldByName(part)
		if !ok {
			return 0, 0, fmt.Errorf("field %q: %w", field, ErrNoField)
		}
		// FieldByName may resolve through embedded structs.
		cur := t
		for _, i := range sf.Index {
			if cur.Kind() != reflect.Struct {
				return 0, 0, fmt.Errorf("field %q: %w", field, ErrNotStruct)
			}
			step := cur.Field(i)
			offset += step.Offset
			cur = step.Type
		}
		f = sf
		t = sf.Type
	}

	extent := 1
	if f.Type.Kind() == reflect.Array {
		extent = f.Type.Len()
	}
	return offset, extent, nil
}

// memberLayout maps absolute offsets of a struct type to the index path of
// the first leaf field stored there.
type memberLayout map[uintptr][]int

var layouts sync.Map // reflect.Type -> memberLayout

func layoutOf(t reflect.Type) memberLayout {
	if l, ok := layouts.Load(t); ok {
		return l.(memberLayout)
	}
	l := make(memberLayout)
	collectLeaves(t, 0, nil, l)
	actual, _ := layouts.LoadOrStore(t, l)
	return actual.(memberLayout)
}

func collectLeaves(t reflect.Type, base uintptr, path []int, out memberLayout) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		p := append(append([]int(nil), path...), i)
		off := base + f.Offset
		if f.Type.Kind() == reflect.Struct {
			collectLeaves(f.Type, off, p, out)
			continue
		}
		if _, taken := out[off]; !taken {
			out[off] = p
		}
	}
}

// memberValue returns the settable element of base stored at offset, index.
func memberValue(base Instance, offset uintptr, index int, want reflect.Kind) (reflect.Value, error) {
	v := reflect.ValueOf(base)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return reflect.Value{}, ErrNotStruct
	}
	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, ErrNotStruct
	}
	path, ok := layoutOf(v.Type())[offset]
	if !ok {
		return reflect.Value{}, fmt.Errorf("offset %d in %s: %w", offset, v.Type(), ErrNoField)
	}
	fv := v.FieldByIndex(path)
	if fv.Kind() == reflect.Array {
		if index < 0 || index >= fv.Len() {
			return reflect.Value{}, fmt.Errorf("element %d of %s: %w", index, v.Type(), ErrOutOfRange)
		}
		fv = fv.Index(index)
	} else if index != 0 {
		return reflect.Value{}, fmt.Errorf("element %d of scalar in %s: %w", index, v.Type(), ErrOutOfRange)
	}
	if fv.Kind() != want {
		return reflect.Value{}, fmt.Errorf("offset %d in %s is %s, want %s: %w", offset, v.Type(), fv.Kind(), want, ErrKindMismatch)
	}
	if !fv.CanSet() {
		return reflect.Value{}, fmt.Errorf("offset %d in %s: %w", offset, v.Type(), ErrUnexported)
	}
	return fv, nil
}
