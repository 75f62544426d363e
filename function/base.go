// SPDX-License-Identifier: MIT
package function

import "fmt"

// Base carries the bookkeeping shared by every concrete Function: name,
// dimension, convexity/smoothness flags, strong convexity modulus, call
// counters, and the accepted constraint list. Concrete functions embed it
// and implement only Eval.
type Base struct {
	name        string
	size        int
	convex      bool
	smooth      bool
	strongConv  float64
	counters    Counters
	constraints []Constraint
}

// NewBase builds the embeddable bookkeeping core. size must be positive;
// strongConvexity must be >= 0 (a programmer error otherwise, so both are
// asserted with a panic rather than an error return).
func NewBase(name string, size int, convex, smooth bool, strongConvexity float64) Base {
	if size <= 0 {
		panic(fmt.Sprintf("function: NewBase(%q): size %d must be positive", name, size))
	}
	if strongConvexity < 0 {
		panic(fmt.Sprintf("function: NewBase(%q): strong convexity %g must be >= 0", name, strongConvexity))
	}
	return Base{name: name, size: size, convex: convex, smooth: smooth, strongConv: strongConvexity}
}

// Name implements Function.
func (b *Base) Name() string { return b.name }

// Size implements Function.
func (b *Base) Size() int { return b.size }

// Convex implements Function.
func (b *Base) Convex() bool { return b.convex }

// Smooth implements Function.
func (b *Base) Smooth() bool { return b.smooth }

// StrongConvexity implements Function.
func (b *Base) StrongConvexity() float64 { return b.strongConv }

// Counters implements Function.
func (b *Base) Counters() *Counters { return &b.counters }

// Constraints implements Function. The returned slice is the live backing
// list; callers must treat it as read-only.
func (b *Base) Constraints() []Constraint { return b.constraints }

// Constrain validates c against the function's dimension and declared
// convexity, appending it on success. Dimension-incompatible constraints
// return ErrDimension; a non-convex constraint on a function declared
// convex returns ErrConvexity (accepting it would silently invalidate
// every convexity-dependent solver guarantee).
func (b *Base) Constrain(c Constraint) error {
	if !c.Compatible(b.size) {
		return fmt.Errorf("function: Constrain(%s): %w", c.Kind(), ErrDimension)
	}
	if b.convex && !c.Convex() {
		return fmt.Errorf("function: Constrain(%s): %w", c.Kind(), ErrConvexity)
	}
	b.constraints = append(b.constraints, c)
	return nil
}

// CountEqualities returns how many accepted constraints are equalities.
func (b *Base) CountEqualities() int {
	n := 0
	for _, c := range b.constraints {
		if c.Equality() {
			n++
		}
	}
	return n
}

// CountInequalities returns how many accepted constraints are inequalities.
func (b *Base) CountInequalities() int {
	return len(b.constraints) - b.CountEqualities()
}
