// SPDX-License-Identifier: MIT
package program

import (
	"fmt"
	"math"

	"github.com/katalvlaran/nanogo/tensor"
)

// Problem is the LP/QP data
//
//	minimize    0.5*x'Qx + c.x
//	subject to  A*x = b  (p equality rows, optional)
//	            G*x <= h (m inequality rows, optional)
//
// Q must be symmetric positive semidefinite (zero for an LP). Optional
// blocks are nil tensors with zero-length right-hand sides.
type Problem struct {
	Q *tensor.Tensor[float64] // n x n, nil for an LP
	C *tensor.Tensor[float64] // n
	A *tensor.Tensor[float64] // p x n, nil when p = 0
	B *tensor.Tensor[float64] // p
	G *tensor.Tensor[float64] // m x n, nil when m = 0
	H *tensor.Tensor[float64] // m
}

// NewLinear builds the LP min c.x (Q = 0) with no constraints attached;
// add blocks with WithEquality/WithInequality.
func NewLinear(c *tensor.Tensor[float64]) *Problem {
	return &Problem{C: c}
}

// NewQuadratic builds the QP min 0.5*x'Qx + c.x. Returns ErrNotSymmetric
// or ErrDimension when the blocks disagree.
func NewQuadratic(q, c *tensor.Tensor[float64]) (*Problem, error) {
	n := c.Len()
	if q.Rank() != 2 || q.Rows() != n || q.Cols() != n {
		return nil, fmt.Errorf("program: NewQuadratic: Q %dx%d vs n=%d: %w", q.Rows(), q.Cols(), n, ErrDimension)
	}
	qd := q.Raw()
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if math.Abs(qd[i*n+j]-qd[j*n+i]) > 1e-12*(1+math.Abs(qd[i*n+j])) {
				return nil, fmt.Errorf("program: NewQuadratic: Q[%d,%d] != Q[%d,%d]: %w", i, j, j, i, ErrNotSymmetric)
			}
		}
	}
	return &Problem{Q: q, C: c}, nil
}

// WithEquality attaches A*x = b.
func (p *Problem) WithEquality(a, b *tensor.Tensor[float64]) (*Problem, error) {
	if a.Rank() != 2 || a.Cols() != p.Dims() || a.Rows() != b.Len() {
		return nil, fmt.Errorf("program: WithEquality: A %dx%d, b %d, n=%d: %w",
			a.Rows(), a.Cols(), b.Len(), p.Dims(), ErrDimension)
	}
	p.A, p.B = a, b
	return p, nil
}

// WithInequality attaches G*x <= h.
func (p *Problem) WithInequality(g, h *tensor.Tensor[float64]) (*Problem, error) {
	if g.Rank() != 2 || g.Cols() != p.Dims() || g.Rows() != h.Len() {
		return nil, fmt.Errorf("program: WithInequality: G %dx%d, h %d, n=%d: %w",
			g.Rows(), g.Cols(), h.Len(), p.Dims(), ErrDimension)
	}
	p.G, p.H = g, h
	return p, nil
}

// Dims returns the design dimension n.
func (p *Problem) Dims() int { return p.C.Len() }

// Equalities returns the number of equality rows.
func (p *Problem) Equalities() int {
	if p.A == nil {
		return 0
	}
	return p.A.Rows()
}

// Inequalities returns the number of inequality rows.
func (p *Problem) Inequalities() int {
	if p.G == nil {
		return 0
	}
	return p.G.Rows()
}

// Value evaluates the objective at x.
func (p *Problem) Value(x *tensor.Tensor[float64]) float64 {
	n := p.Dims()
	cd, xd := p.C.Raw(), x.Raw()
	var lin, quad float64
	for i := 0; i < n; i++ {
		lin += cd[i] * xd[i]
	}
	if p.Q != nil {
		qd := p.Q.Raw()
		for i := 0; i < n; i++ {
			var row float64
			for j := 0; j < n; j++ {
				row += qd[i*n+j] * xd[j]
			}
			quad += xd[i] * row
		}
	}
	return 0.5*quad + lin
}

// Gradient writes Qx + c into g.
func (p *Problem) Gradient(x, g *tensor.Tensor[float64]) {
	if p.Q != nil {
		_ = tensor.Gemv(g, 1, p.Q, x, 0)
		_ = tensor.AddScaled(g, 1, p.C)
	} else {
		_ = tensor.CopyValues(g, p.C)
	}
}

// Feasible reports whether x satisfies every constraint within eps:
// |Ax - b|_inf <= eps and max(Gx - h) <= eps.
func (p *Problem) Feasible(x *tensor.Tensor[float64], eps float64) bool {
	if p.A != nil {
		r, _ := tensor.NewVector(p.A.Rows())
		_ = tensor.Gemv(r, 1, p.A, x, 0)
		_ = tensor.AddScaled(r, -1, p.B)
		if tensor.NormInf(r) > eps {
			return false
		}
	}
	if p.G != nil {
		r, _ := tensor.NewVector(p.G.Rows())
		_ = tensor.Gemv(r, 1, p.G, x, 0)
		_ = tensor.AddScaled(r, -1, p.H)
		for _, v := range r.Raw() {
			if v > eps {
				return false
			}
		}
	}
	return true
}
