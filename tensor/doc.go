// Package tensor provides the fixed-rank multidimensional array that flows
// through every solver in nanogo: Dims describes a shape, Tensor[T] is the
// array itself in one of three storage variants (Owning, ConstView,
// MutView), and Vector/Matrix are rank-1/rank-2 convenience wrappers used by
// the line-search, solver, bundle, and program packages.
//
// Go has no const-generic array rank, so rank here is simply len(Dims),
// checked at construction and reshape time rather than at compile time.
//
// Storage variants:
//   - Owning: sole lifetime controller of its buffer; only Owning supports
//     Resize, Zero, and FillWith.
//   - ConstView: borrows an immutable buffer; Set is refused.
//   - MutView: borrows a unique writable buffer; cannot be resized.
//
// Assignment between storages follows fixed rules enforced by AssignFrom:
// owning←anything resizes then copies; mutable-view←anything requires equal
// element count and copies in place; const-view←const-view rebinds its
// pointer, any other write into a const-view is rejected.
package tensor
