// SPDX-License-Identifier: MIT
package function

import (
	"fmt"
	"math"

	"github.com/katalvlaran/nanogo/tensor"
)

// Function is the objective model every solver minimizes against. A
// Function reports its design dimension, convexity/smoothness flags, and
// evaluates value (and optionally gradient) at a point. Concrete
// implementations embed Base for the counter and constraint bookkeeping
// and provide Eval.
//
// Evaluation always goes through the package-level Value/ValueGrad helpers
// so the fcalls/gcalls counters stay accurate; Eval itself is the raw,
// counter-free kernel.
type Function interface {
	// Name identifies the function in logs and test tables.
	Name() string

	// Size returns the design variable dimension n.
	Size() int

	// Convex reports whether the function (with its constraints) is convex.
	Convex() bool

	// Smooth reports whether the function has a continuous gradient
	// everywhere; non-smooth functions still return a subgradient from Eval.
	Smooth() bool

	// StrongConvexity returns the strong convexity modulus mu >= 0
	// (0 when unknown or not strongly convex).
	StrongConvexity() float64

	// Counters exposes the fcalls/gcalls accumulators.
	Counters() *Counters

	// Constraints returns the accepted constraints, in insertion order.
	Constraints() []Constraint

	// Constrain validates and appends a constraint; see Base.Constrain.
	Constrain(c Constraint) error

	// Eval returns f(x), writing the (sub)gradient into g when g is
	// non-nil. g, when given, has exactly Size elements. Eval does not
	// touch the call counters.
	Eval(x, g *tensor.Tensor[float64]) float64
}

// Counters tracks how many value and gradient evaluations a Function has
// served; solvers budget against FCalls()+GCalls().
type Counters struct {
	fcalls int
	gcalls int
}

// FCalls returns the number of value evaluations.
func (c *Counters) FCalls() int { return c.fcalls }

// GCalls returns the number of gradient evaluations.
func (c *Counters) GCalls() int { return c.gcalls }

// Total returns FCalls()+GCalls(), the quantity compared against
// solver::max_evals.
func (c *Counters) Total() int { return c.fcalls + c.gcalls }

// Reset zeroes both counters; used by tests reusing one function across
// solver configurations.
func (c *Counters) Reset() { c.fcalls, c.gcalls = 0, 0 }

// Value evaluates f(x) and increments fcalls.
func Value(f Function, x *tensor.Tensor[float64]) float64 {
	f.Counters().fcalls++
	return f.Eval(x, nil)
}

// ValueGrad evaluates f(x) writing the gradient into g, incrementing both
// counters. g must be a writable vector of exactly f.Size() elements.
func ValueGrad(f Function, x, g *tensor.Tensor[float64]) (float64, error) {
	if g == nil {
		return 0, ErrNilGradient
	}
	if g.Len() != f.Size() {
		return 0, fmt.Errorf("function: ValueGrad: len(g)=%d size=%d: %w", g.Len(), f.Size(), ErrDimension)
	}
	f.Counters().fcalls++
	f.Counters().gcalls++
	return f.Eval(x, g), nil
}

// GradAccuracy returns the relative error between the analytic gradient at
// x and a central-difference estimate, normalized by 1+|f(x)|. Smooth
// functions are expected to score <= 10*sqrt(machine epsilon); the solver
// test suites assert exactly that.
func GradAccuracy(f Function, x *tensor.Tensor[float64]) (float64, error) {
	n := f.Size()
	if x.Len() != n {
		return 0, fmt.Errorf("function: GradAccuracy: len(x)=%d size=%d: %w", x.Len(), n, ErrDimension)
	}

	g, err := tensor.NewVector(n)
	if err != nil {
		return 0, err
	}
	fx, err := ValueGrad(f, x, g)
	if err != nil {
		return 0, err
	}

	// central differences with a per-coordinate step scaled to |x_i|
	h := math.Cbrt(machineEpsilon)
	xp := x.Clone()
	xm := x.Clone()
	var worst float64
	for i := 0; i < n; i++ {
		xi := x.Raw()[i]
		step := h * math.Max(1, math.Abs(xi))
		xp.Raw()[i] = xi + step
		xm.Raw()[i] = xi - step
		gi := (Value(f, xp) - Value(f, xm)) / (2 * step)
		xp.Raw()[i] = xi
		xm.Raw()[i] = xi
		if d := math.Abs(g.Raw()[i] - gi); d > worst {
			worst = d
		}
	}
	return worst / (1 + math.Abs(fx)), nil
}

// machineEpsilon is the double-precision unit roundoff.
const machineEpsilon = 2.220446049250313e-16
