// SPDX-License-Identifier: MIT
package function

import (
	"math"

	"github.com/katalvlaran/nanogo/tensor"
)

// Kind tags the constraint variants.
type Kind int

const (
	// KindLinearEquality is a.x - b = 0.
	KindLinearEquality Kind = iota
	// KindLinearInequality is a.x - b <= 0.
	KindLinearInequality
	// KindBoxLower is lower - x_i <= 0 (x_i >= lower).
	KindBoxLower
	// KindBoxUpper is x_i - upper <= 0 (x_i <= upper).
	KindBoxUpper
	// KindBall is |x - origin|^2 - radius^2 <= 0.
	KindBall
	// KindQuadraticEquality is 0.5*x'Qx + c.x + d = 0.
	KindQuadraticEquality
	// KindQuadraticInequality is 0.5*x'Qx + c.x + d <= 0.
	KindQuadraticInequality
	// KindFunctionalEquality is fn(x) = 0 for a user-supplied fn.
	KindFunctionalEquality
	// KindFunctionalInequality is fn(x) <= 0 for a user-supplied fn.
	KindFunctionalInequality
)

var kindNames = map[Kind]string{
	KindLinearEquality:       "linear-equality",
	KindLinearInequality:     "linear-inequality",
	KindBoxLower:             "box-lower",
	KindBoxUpper:             "box-upper",
	KindBall:                 "ball",
	KindQuadraticEquality:    "quadratic-equality",
	KindQuadraticInequality:  "quadratic-inequality",
	KindFunctionalEquality:   "functional-equality",
	KindFunctionalInequality: "functional-inequality",
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Constraint is one feasibility condition attached to a Function. Its
// Residual is a scalar that must vanish for an equality constraint and be
// <= 0 for an inequality constraint.
type Constraint interface {
	// Kind tags the variant.
	Kind() Kind
	// Equality reports whether the residual must vanish (true) or only be
	// non-positive (false).
	Equality() bool
	// Convex reports whether the constraint's feasible set is convex.
	Convex() bool
	// Compatible reports whether the constraint fits an n-dimensional
	// function.
	Compatible(n int) bool
	// Residual evaluates the constraint residual at x.
	Residual(x *tensor.Tensor[float64]) float64
}

// LinearEquality is a.x - b = 0.
type LinearEquality struct {
	A *tensor.Tensor[float64]
	B float64
}

// Kind implements Constraint.
func (LinearEquality) Kind() Kind { return KindLinearEquality }

// Equality implements Constraint.
func (LinearEquality) Equality() bool { return true }

// Convex implements Constraint.
func (LinearEquality) Convex() bool { return true }

// Compatible implements Constraint.
func (c LinearEquality) Compatible(n int) bool { return c.A != nil && c.A.Len() == n }

// Residual implements Constraint.
func (c LinearEquality) Residual(x *tensor.Tensor[float64]) float64 {
	dot, _ := tensor.Dot(c.A, x)
	return dot - c.B
}

// LinearInequality is a.x - b <= 0.
type LinearInequality struct {
	A *tensor.Tensor[float64]
	B float64
}

// Kind implements Constraint.
func (LinearInequality) Kind() Kind { return KindLinearInequality }

// Equality implements Constraint.
func (LinearInequality) Equality() bool { return false }

// Convex implements Constraint.
func (LinearInequality) Convex() bool { return true }

// Compatible implements Constraint.
func (c LinearInequality) Compatible(n int) bool { return c.A != nil && c.A.Len() == n }

// Residual implements Constraint.
func (c LinearInequality) Residual(x *tensor.Tensor[float64]) float64 {
	dot, _ := tensor.Dot(c.A, x)
	return dot - c.B
}

// BoxLower bounds one coordinate from below: x_i >= Lower.
type BoxLower struct {
	I     int
	Lower float64
}

// Kind implements Constraint.
func (BoxLower) Kind() Kind { return KindBoxLower }

// Equality implements Constraint.
func (BoxLower) Equality() bool { return false }

// Convex implements Constraint.
func (BoxLower) Convex() bool { return true }

// Compatible implements Constraint.
func (c BoxLower) Compatible(n int) bool { return c.I >= 0 && c.I < n }

// Residual implements Constraint.
func (c BoxLower) Residual(x *tensor.Tensor[float64]) float64 {
	return c.Lower - x.Raw()[c.I]
}

// BoxUpper bounds one coordinate from above: x_i <= Upper.
type BoxUpper struct {
	I     int
	Upper float64
}

// Kind implements Constraint.
func (BoxUpper) Kind() Kind { return KindBoxUpper }

// Equality implements Constraint.
func (BoxUpper) Equality() bool { return false }

// Convex implements Constraint.
func (BoxUpper) Convex() bool { return true }

// Compatible implements Constraint.
func (c BoxUpper) Compatible(n int) bool { return c.I >= 0 && c.I < n }

// Residual implements Constraint.
func (c BoxUpper) Residual(x *tensor.Tensor[float64]) float64 {
	return x.Raw()[c.I] - c.Upper
}

// Ball keeps x inside the euclidean ball of the given origin and radius:
// |x - origin|^2 - radius^2 <= 0.
type Ball struct {
	Origin *tensor.Tensor[float64]
	Radius float64
}

// Kind implements Constraint.
func (Ball) Kind() Kind { return KindBall }

// Equality implements Constraint.
func (Ball) Equality() bool { return false }

// Convex implements Constraint.
func (Ball) Convex() bool { return true }

// Compatible implements Constraint.
func (c Ball) Compatible(n int) bool { return c.Origin != nil && c.Origin.Len() == n && c.Radius > 0 }

// Residual implements Constraint.
func (c Ball) Residual(x *tensor.Tensor[float64]) float64 {
	var s float64
	xd, od := x.Raw(), c.Origin.Raw()
	for i := range xd {
		d := xd[i] - od[i]
		s += d * d
	}
	return s - c.Radius*c.Radius
}

// Quadratic is 0.5*x'Qx + c.x + d compared against zero. With Equality
// false the feasible set is convex whenever Q is positive semidefinite;
// with Equality true it is a quadric surface and never convex (except in
// the degenerate linear case, which callers should express as
// LinearEquality instead).
type Quadratic struct {
	Q  *tensor.Tensor[float64]
	C  *tensor.Tensor[float64]
	D  float64
	Eq bool
}

// Kind implements Constraint.
func (c Quadratic) Kind() Kind {
	if c.Eq {
		return KindQuadraticEquality
	}
	return KindQuadraticInequality
}

// Equality implements Constraint.
func (c Quadratic) Equality() bool { return c.Eq }

// Convex implements Constraint.
func (c Quadratic) Convex() bool { return !c.Eq && isPSD(c.Q) }

// Compatible implements Constraint.
func (c Quadratic) Compatible(n int) bool {
	return c.Q != nil && c.C != nil && c.Q.Rank() == 2 &&
		c.Q.Rows() == n && c.Q.Cols() == n && c.C.Len() == n
}

// Residual implements Constraint.
func (c Quadratic) Residual(x *tensor.Tensor[float64]) float64 {
	n := x.Len()
	qd, cd, xd := c.Q.Raw(), c.C.Raw(), x.Raw()
	var quad, lin float64
	for i := 0; i < n; i++ {
		var row float64
		for j := 0; j < n; j++ {
			row += qd[i*n+j] * xd[j]
		}
		quad += xd[i] * row
		lin += cd[i] * xd[i]
	}
	return 0.5*quad + lin + c.D
}

// Functional wraps a user-supplied Function as a constraint: Fn(x) = 0
// (equality) or Fn(x) <= 0 (inequality).
type Functional struct {
	Fn Function
	Eq bool
}

// Kind implements Constraint.
func (c Functional) Kind() Kind {
	if c.Eq {
		return KindFunctionalEquality
	}
	return KindFunctionalInequality
}

// Equality implements Constraint.
func (c Functional) Equality() bool { return c.Eq }

// Convex implements Constraint. A sublevel-set constraint is convex when
// the wrapped function is; an equality constraint on a nonlinear function
// is not.
func (c Functional) Convex() bool { return !c.Eq && c.Fn.Convex() }

// Compatible implements Constraint.
func (c Functional) Compatible(n int) bool { return c.Fn != nil && c.Fn.Size() == n }

// Residual implements Constraint.
func (c Functional) Residual(x *tensor.Tensor[float64]) float64 {
	return c.Fn.Eval(x, nil)
}

// isPSD checks positive semidefiniteness by attempting a Cholesky-style
// factorization with a small negative tolerance; adequate for the modest
// constraint matrices this package sees.
func isPSD(q *tensor.Tensor[float64]) bool {
	if q == nil || q.Rank() != 2 || q.Rows() != q.Cols() {
		return false
	}
	n := q.Rows()
	l := make([]float64, n*n)
	qd := q.Raw()
	const tol = -1e-10
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			s := qd[i*n+j]
			for k := 0; k < j; k++ {
				s -= l[i*n+k] * l[j*n+k]
			}
			if i == j {
				if s < tol {
					return false
				}
				if s < 0 {
					s = 0
				}
				l[i*n+i] = math.Sqrt(s)
			} else if l[j*n+j] > 0 {
				l[i*n+j] = s / l[j*n+j]
			} else {
				l[i*n+j] = 0
			}
		}
	}
	return true
}
