// SPDX-License-Identifier: MIT
//
// expr.go implements lazy elementwise math on rank-1 and rank-2 tensors:
// add, subtract, scale, and element compare all return small deferred
// structs, and EvalInto is the single entry point that performs the
// actual arithmetic into a destination tensor.
package tensor

import "fmt"

// Expr is a deferred elementwise float64 computation over rank-1 or rank-2
// operands. Nothing is computed until EvalInto or Eval is called.
type Expr interface {
	// Shape returns the shape the expression would produce.
	Shape() Dims
	// EvalInto writes the expression's result into dst, which must already
	// have the expression's Shape (use Eval to allocate fresh instead).
	EvalInto(dst *Tensor[float64]) error
}

// Eval allocates a fresh Owning tensor and evaluates e into it.
func Eval(e Expr) (*Tensor[float64], error) {
	out, err := New[float64](e.Shape())
	if err != nil {
		return nil, err
	}
	if err := e.EvalInto(out); err != nil {
		return nil, err
	}
	return out, nil
}

type binaryExpr struct {
	a, b *Tensor[float64]
	op   func(x, y float64) float64
	name string
}

func (e binaryExpr) Shape() Dims { return e.a.Dims() }

func (e binaryExpr) EvalInto(dst *Tensor[float64]) error {
	if !e.a.dims.Equal(e.b.dims) {
		return fmt.Errorf("tensor: %s: %w", e.name, ErrShapeMismatch)
	}
	if !e.a.dims.Equal(dst.dims) {
		return fmt.Errorf("tensor: %s: %w", e.name, ErrShapeMismatch)
	}
	ad, bd, dd := e.a.data, e.b.data, dst.data
	for i := range dd {
		dd[i] = e.op(ad[i], bd[i])
	}
	return nil
}

// Add returns a lazy a+b.
func Add(a, b *Tensor[float64]) Expr {
	return binaryExpr{a: a, b: b, op: func(x, y float64) float64 { return x + y }, name: "Add"}
}

// Sub returns a lazy a-b.
func Sub(a, b *Tensor[float64]) Expr {
	return binaryExpr{a: a, b: b, op: func(x, y float64) float64 { return x - y }, name: "Sub"}
}

// Mul returns a lazy elementwise a*b (Hadamard product).
func Mul(a, b *Tensor[float64]) Expr {
	return binaryExpr{a: a, b: b, op: func(x, y float64) float64 { return x * y }, name: "Mul"}
}

type scaleExpr struct {
	a *Tensor[float64]
	s float64
}

func (e scaleExpr) Shape() Dims { return e.a.Dims() }

func (e scaleExpr) EvalInto(dst *Tensor[float64]) error {
	if !e.a.dims.Equal(dst.dims) {
		return fmt.Errorf("tensor: Scale: %w", ErrShapeMismatch)
	}
	ad, dd := e.a.data, dst.data
	for i := range dd {
		dd[i] = ad[i] * e.s
	}
	return nil
}

// Scale returns a lazy a*s.
func Scale(a *Tensor[float64], s float64) Expr {
	return scaleExpr{a: a, s: s}
}

type compareExpr struct {
	a, b *Tensor[float64]
	op   func(x, y float64) bool
	name string
}

func (e compareExpr) Shape() Dims { return e.a.Dims() }

// EvalBool evaluates an element comparison into a fresh bool tensor.
func (e compareExpr) EvalBool() (*Tensor[bool], error) {
	if !e.a.dims.Equal(e.b.dims) {
		return nil, fmt.Errorf("tensor: %s: %w", e.name, ErrShapeMismatch)
	}
	out, err := New[bool](e.a.dims)
	if err != nil {
		return nil, err
	}
	for i := range out.data {
		out.data[i] = e.op(e.a.data[i], e.b.data[i])
	}
	return out, nil
}

// EvalInto satisfies Expr by writing 1/0 into a float64 destination; most
// callers of a compare expression want EvalBool instead.
func (e compareExpr) EvalInto(dst *Tensor[float64]) error {
	b, err := e.EvalBool()
	if err != nil {
		return err
	}
	if !b.dims.Equal(dst.dims) {
		return fmt.Errorf("tensor: %s: %w", e.name, ErrShapeMismatch)
	}
	for i := range dst.data {
		if b.data[i] {
			dst.data[i] = 1
		} else {
			dst.data[i] = 0
		}
	}
	return nil
}

// Less returns a lazy elementwise a<b comparison.
func Less(a, b *Tensor[float64]) compareExpr {
	return compareExpr{a: a, b: b, op: func(x, y float64) bool { return x < y }, name: "Less"}
}

// Greater returns a lazy elementwise a>b comparison.
func Greater(a, b *Tensor[float64]) compareExpr {
	return compareExpr{a: a, b: b, op: func(x, y float64) bool { return x > y }, name: "Greater"}
}
