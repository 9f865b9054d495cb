package dat

// Value is the set of element types a symbol can store.
type Value interface {
	int32 | float32 | string
}

// Values is a compact container for a symbol's payload. A single element is
// held inline; arrays spill into a slice.
type Values[T Value] struct {
	v0   T
	rest []T // nil when len <= 1
	n    int
}

// NewValues returns a container holding n zero elements.
func NewValues[T Value](n int) Values[T] {
	var vs Values[T]
	vs.Resize(n)
	return vs
}

// Len returns the number of elements.
func (vs *Values[T]) Len() int { return vs.n }

// Get returns element i. The caller bounds-checks.
func (vs *Values[T]) Get(i int) T {
	if vs.rest != nil {
		return vs.rest[i]
	}
	return vs.v0
}

// Set stores element i. The caller bounds-checks.
func (vs *Values[T]) Set(i int, v T) {
	if vs.rest != nil {
		vs.rest[i] = v
		return
	}
	vs.v0 = v
}

// Resize changes the element count. Shrinking to one or fewer collapses to
// inline storage keeping element 0; growing zero-fills new elements.
func (vs *Values[T]) Resize(n int) {
	if n < 0 {
		n = 0
	}
	if n <= 1 {
		if vs.rest != nil && len(vs.rest) > 0 {
			vs.v0 = vs.rest[0]
		}
		vs.rest = nil
		vs.n = n
		if n == 0 {
			var zero T
			vs.v0 = zero
		}
		return
	}
	grown := make([]T, n)
	if vs.rest != nil {
		copy(grown, vs.rest)
	} else if vs.n == 1 {
		grown[0] = vs.v0
	}
	var zero T
	vs.v0 = zero
	vs.rest = grown
	vs.n = n
}

// Slice returns a copy of the elements.
func (vs *Values[T]) Slice() []T {
	out := make([]T, vs.n)
	for i := range out {
		out[i] = vs.Get(i)
	}
	return out
}

// Assign replaces the contents with a copy of src.
func (vs *Values[T]) Assign(src []T) {
	vs.rest = nil
	vs.n = 0
	vs.Resize(len(src))
	for i, v := range src {
		vs.Set(i, v)
	}
}
