// SPDX-License-Identifier: MIT
package tensor

import "fmt"

// Kind tags which of the three storage variants a Tensor uses.
type Kind int

const (
	// Owning tensors allocate and own their backing buffer; only Owning
	// supports Resize, Zero, and FillWith.
	Owning Kind = iota
	// ConstView borrows an immutable buffer whose lifetime the caller
	// guarantees exceeds the view's. Set is refused.
	ConstView
	// MutView borrows a unique writable buffer; cannot be resized.
	MutView
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case Owning:
		return "Owning"
	case ConstView:
		return "ConstView"
	case MutView:
		return "MutView"
	default:
		return "Unknown"
	}
}

// Tensor is a logical rank-len(dims) array of element type T, backed by one
// of the three storage Kinds. Elements are stored contiguously in row-major
// order; Raw returns that backing slice directly for tight inner loops.
type Tensor[T any] struct {
	dims    Dims
	strides []int
	data    []T
	kind    Kind
}

// New allocates a zero-initialized Owning tensor of the given shape.
// Complexity: O(size) time and memory.
func New[T any](dims Dims) (*Tensor[T], error) {
	if err := dims.Validate(); err != nil {
		return nil, err
	}
	return &Tensor[T]{
		dims:    dims.Clone(),
		strides: rowMajorStrides(dims),
		data:    make([]T, dims.Size()),
		kind:    Owning,
	}, nil
}

// Full allocates an Owning tensor of the given shape with every element
// set to v.
func Full[T any](dims Dims, v T) (*Tensor[T], error) {
	t, err := New[T](dims)
	if err != nil {
		return nil, err
	}
	for i := range t.data {
		t.data[i] = v
	}
	return t, nil
}

// NewConstView wraps data as a read-only, non-resizable view of shape dims.
// data is borrowed, not copied: the caller must keep it alive and must not
// mutate it through any other reference while the view is in use.
func NewConstView[T any](data []T, dims Dims) (*Tensor[T], error) {
	if err := dims.Validate(); err != nil {
		return nil, err
	}
	if len(data) != dims.Size() {
		return nil, fmt.Errorf("tensor: NewConstView: len(data)=%d dims=%s: %w", len(data), dims, ErrSizeMismatch)
	}
	return &Tensor[T]{dims: dims.Clone(), strides: rowMajorStrides(dims), data: data, kind: ConstView}, nil
}

// NewMutView wraps data as a writable, non-resizable view of shape dims.
// data is borrowed, not copied.
func NewMutView[T any](data []T, dims Dims) (*Tensor[T], error) {
	if err := dims.Validate(); err != nil {
		return nil, err
	}
	if len(data) != dims.Size() {
		return nil, fmt.Errorf("tensor: NewMutView: len(data)=%d dims=%s: %w", len(data), dims, ErrSizeMismatch)
	}
	return &Tensor[T]{dims: dims.Clone(), strides: rowMajorStrides(dims), data: data, kind: MutView}, nil
}

// Dims returns a copy of the tensor's shape.
func (t *Tensor[T]) Dims() Dims { return t.dims.Clone() }

// Dim returns the extent of dimension i.
func (t *Tensor[T]) Dim(i int) int { return t.dims[i] }

// Rank returns the tensor's rank (len(Dims)).
func (t *Tensor[T]) Rank() int { return len(t.dims) }

// Size returns the total element count.
func (t *Tensor[T]) Size() int { return len(t.data) }

// Kind reports the storage variant.
func (t *Tensor[T]) Kind() Kind { return t.kind }

// Raw returns the backing slice directly, in row-major contiguous order.
// Valid for every Kind; callers must not retain it past the tensor's
// lifetime for a view.
func (t *Tensor[T]) Raw() []T { return t.data }

func (t *Tensor[T]) flatIndex(idx []int) (int, error) {
	if len(idx) != len(t.dims) {
		return 0, fmt.Errorf("tensor: index rank %d != tensor rank %d: %w", len(idx), len(t.dims), ErrRankMismatch)
	}
	off := 0
	for i, v := range idx {
		if v < 0 || v >= t.dims[i] {
			return 0, fmt.Errorf("tensor: index[%d]=%d out of [0,%d): %w", i, v, t.dims[i], ErrOutOfRange)
		}
		off += v * t.strides[i]
	}
	return off, nil
}

// At returns the element at the given index tuple.
// Complexity: O(rank).
func (t *Tensor[T]) At(idx ...int) (T, error) {
	var zero T
	off, err := t.flatIndex(idx)
	if err != nil {
		return zero, err
	}
	return t.data[off], nil
}

// MustAt is At but panics on error; for call sites that have already
// validated idx (e.g. a bounded loop).
func (t *Tensor[T]) MustAt(idx ...int) T {
	v, err := t.At(idx...)
	if err != nil {
		panic(err)
	}
	return v
}

// Set writes v at the given index tuple. Refused with ErrWriteConstView on a
// ConstView.
// Complexity: O(rank).
func (t *Tensor[T]) Set(v T, idx ...int) error {
	if t.kind == ConstView {
		return fmt.Errorf("tensor: Set: %w", ErrWriteConstView)
	}
	off, err := t.flatIndex(idx)
	if err != nil {
		return err
	}
	t.data[off] = v
	return nil
}

// Reshape reinterprets the tensor's shape in place without moving data,
// provided the new shape has the same element count. This is legal for any
// Kind (it never resizes the backing buffer).
// Complexity: O(new rank).
func (t *Tensor[T]) Reshape(dims Dims) error {
	if err := dims.Validate(); err != nil {
		return err
	}
	if dims.Size() != len(t.data) {
		return fmt.Errorf("tensor: Reshape: new size %d != current size %d: %w", dims.Size(), len(t.data), ErrSizeMismatch)
	}
	t.dims = dims.Clone()
	t.strides = rowMajorStrides(t.dims)
	return nil
}

// Resize reallocates the tensor to a new shape, zero-filling the new
// buffer. Only legal on an Owning tensor.
// Complexity: O(new size).
func (t *Tensor[T]) Resize(dims Dims) error {
	if t.kind != Owning {
		return fmt.Errorf("tensor: Resize: %w", ErrResizeView)
	}
	if err := dims.Validate(); err != nil {
		return err
	}
	t.dims = dims.Clone()
	t.strides = rowMajorStrides(t.dims)
	t.data = make([]T, dims.Size())
	return nil
}

// Zero overwrites every element with T's zero value. Only legal on an
// Owning tensor.
func (t *Tensor[T]) Zero() error {
	if t.kind != Owning {
		return fmt.Errorf("tensor: Zero: %w", ErrResizeView)
	}
	var zero T
	for i := range t.data {
		t.data[i] = zero
	}
	return nil
}

// FillWith overwrites every element with v. Only legal on an Owning tensor.
func (t *Tensor[T]) FillWith(v T) error {
	if t.kind != Owning {
		return fmt.Errorf("tensor: FillWith: %w", ErrResizeView)
	}
	for i := range t.data {
		t.data[i] = v
	}
	return nil
}

// Clone returns an independent Owning deep copy, regardless of the
// receiver's Kind.
func (t *Tensor[T]) Clone() *Tensor[T] {
	data := make([]T, len(t.data))
	copy(data, t.data)
	return &Tensor[T]{dims: t.dims.Clone(), strides: rowMajorStrides(t.dims), data: data, kind: Owning}
}

// Index drops the outermost dimension, returning a rank-(R-1) view at
// index i along dimension 0; a rank-1 receiver yields a rank-1 view of
// length 1. The returned view is a ConstView if the receiver is a
// ConstView, otherwise a MutView sharing the receiver's backing buffer.
// Complexity: O(rank).
func (t *Tensor[T]) Index(i int) (*Tensor[T], error) {
	if t.Rank() == 0 {
		return nil, fmt.Errorf("tensor: Index: rank 0 tensor: %w", ErrRankMismatch)
	}
	if i < 0 || i >= t.dims[0] {
		return nil, fmt.Errorf("tensor: Index(%d) out of [0,%d): %w", i, t.dims[0], ErrOutOfRange)
	}
	sub := t.dims[1:].Clone()
	stride0 := t.strides[0]
	start := i * stride0
	var end int
	if sub.Rank() == 0 {
		end = start + 1
	} else {
		end = start + stride0
	}
	data := t.data[start:end]
	kind := MutView
	if t.kind == ConstView {
		kind = ConstView
	}
	if sub.Rank() == 0 {
		sub = Dims{1}
	}
	return &Tensor[T]{dims: sub, strides: rowMajorStrides(sub), data: data, kind: kind}, nil
}

// Slice restricts dimension 0 to the half-open range [lo, hi), returning a
// same-rank view sharing the receiver's backing buffer. Kind propagates the
// same way Index does.
// Complexity: O(rank).
func (t *Tensor[T]) Slice(lo, hi int) (*Tensor[T], error) {
	if t.Rank() == 0 {
		return nil, fmt.Errorf("tensor: Slice: rank 0 tensor: %w", ErrRankMismatch)
	}
	if lo < 0 || hi > t.dims[0] || lo >= hi {
		return nil, fmt.Errorf("tensor: Slice(%d,%d) out of [0,%d]: %w", lo, hi, t.dims[0], ErrOutOfRange)
	}
	dims := t.dims.Clone()
	dims[0] = hi - lo
	stride0 := t.strides[0]
	data := t.data[lo*stride0 : hi*stride0]
	kind := MutView
	if t.kind == ConstView {
		kind = ConstView
	}
	return &Tensor[T]{dims: dims, strides: rowMajorStrides(dims), data: data, kind: kind}, nil
}
