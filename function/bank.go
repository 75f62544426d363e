// SPDX-License-Identifier: MIT
//
// bank.go is the small library of classic objectives the solver test
// suites exercise: a convex quadratic bowl (Sphere), the nonconvex
// Rosenbrock valley, a general convex quadratic, and the nonsmooth
// L1 distance used by the subgradient and bundle solvers.
package function

import (
	"math"

	"github.com/katalvlaran/nanogo/tensor"
)

// Sphere is f(x) = x.x, the strongly convex smooth baseline: minimum 0 at
// the origin, gradient 2x, strong convexity modulus 2.
type Sphere struct {
	Base
}

// NewSphere builds an n-dimensional Sphere.
func NewSphere(n int) *Sphere {
	return &Sphere{Base: NewBase("sphere", n, true, true, 2)}
}

// Eval implements Function.
func (f *Sphere) Eval(x, g *tensor.Tensor[float64]) float64 {
	var s float64
	xd := x.Raw()
	for i, v := range xd {
		s += v * v
		if g != nil {
			g.Raw()[i] = 2 * v
		}
	}
	return s
}

// Rosenbrock is the classic banana valley
// f(x) = sum_i 100*(x_{i+1} - x_i^2)^2 + (1 - x_i)^2, nonconvex and smooth
// with minimum 0 at (1, ..., 1).
type Rosenbrock struct {
	Base
}

// NewRosenbrock builds an n-dimensional Rosenbrock (n >= 2).
func NewRosenbrock(n int) *Rosenbrock {
	return &Rosenbrock{Base: NewBase("rosenbrock", n, false, true, 0)}
}

// Eval implements Function.
func (f *Rosenbrock) Eval(x, g *tensor.Tensor[float64]) float64 {
	xd := x.Raw()
	n := len(xd)
	if g != nil {
		for i := range g.Raw() {
			g.Raw()[i] = 0
		}
	}
	var s float64
	for i := 0; i+1 < n; i++ {
		t := xd[i+1] - xd[i]*xd[i]
		u := 1 - xd[i]
		s += 100*t*t + u*u
		if g != nil {
			gd := g.Raw()
			gd[i] += -400*t*xd[i] - 2*u
			gd[i+1] += 200 * t
		}
	}
	return s
}

// QuadraticBowl is f(x) = 0.5*x'Qx + c.x for a symmetric PSD Q; the
// smooth convex workhorse for quasi-Newton and CGD tests with a known
// closed-form optimum.
type QuadraticBowl struct {
	Base
	Q *tensor.Tensor[float64]
	C *tensor.Tensor[float64]
}

// NewQuadraticBowl builds the bowl from a symmetric PSD Q (n x n) and c (n).
// Q's positive semidefiniteness is the caller's contract; the convexity
// flag is set from an explicit check so an indefinite Q degrades the flag
// rather than lying to the solvers.
func NewQuadraticBowl(q, c *tensor.Tensor[float64]) *QuadraticBowl {
	n := c.Len()
	return &QuadraticBowl{
		Base: NewBase("quadratic", n, isPSD(q), true, 0),
		Q:    q,
		C:    c,
	}
}

// Eval implements Function.
func (f *QuadraticBowl) Eval(x, g *tensor.Tensor[float64]) float64 {
	n := f.Size()
	qd, cd, xd := f.Q.Raw(), f.C.Raw(), x.Raw()
	var quad, lin float64
	for i := 0; i < n; i++ {
		var row float64
		for j := 0; j < n; j++ {
			row += qd[i*n+j] * xd[j]
		}
		if g != nil {
			g.Raw()[i] = row + cd[i]
		}
		quad += xd[i] * row
		lin += cd[i] * xd[i]
	}
	return 0.5*quad + lin
}

// L1Distance is f(x) = |x - K|_1, convex and nonsmooth with minimum 0 at
// K; Eval returns a subgradient (sign pattern, 0 on the kink).
type L1Distance struct {
	Base
	K *tensor.Tensor[float64]
}

// NewL1Distance builds f(x) = |x - k|_1.
func NewL1Distance(k *tensor.Tensor[float64]) *L1Distance {
	return &L1Distance{Base: NewBase("l1-distance", k.Len(), true, false, 0), K: k.Clone()}
}

// Eval implements Function.
func (f *L1Distance) Eval(x, g *tensor.Tensor[float64]) float64 {
	xd, kd := x.Raw(), f.K.Raw()
	var s float64
	for i := range xd {
		d := xd[i] - kd[i]
		s += math.Abs(d)
		if g != nil {
			switch {
			case d > 0:
				g.Raw()[i] = 1
			case d < 0:
				g.Raw()[i] = -1
			default:
				g.Raw()[i] = 0
			}
		}
	}
	return s
}

// MaxQuad is f(x) = max(x.x, a.x + b), a convex piecewise function whose
// kink exercises the ellipsoid and bundle solvers away from the smooth
// path.
type MaxQuad struct {
	Base
	A *tensor.Tensor[float64]
	B float64
}

// NewMaxQuad builds max(x.x, a.x + b).
func NewMaxQuad(a *tensor.Tensor[float64], b float64) *MaxQuad {
	return &MaxQuad{Base: NewBase("max-quad", a.Len(), true, false, 0), A: a.Clone(), B: b}
}

// Eval implements Function.
func (f *MaxQuad) Eval(x, g *tensor.Tensor[float64]) float64 {
	var quad, lin float64
	xd, ad := x.Raw(), f.A.Raw()
	for i := range xd {
		quad += xd[i] * xd[i]
		lin += ad[i] * xd[i]
	}
	lin += f.B
	if quad >= lin {
		if g != nil {
			for i := range xd {
				g.Raw()[i] = 2 * xd[i]
			}
		}
		return quad
	}
	if g != nil {
		copy(g.Raw(), ad)
	}
	return lin
}
