// SPDX-License-Identifier: MIT
package solver

import (
	"fmt"
	"math"

	"github.com/katalvlaran/nanogo/config"
	"github.com/katalvlaran/nanogo/function"
	"github.com/katalvlaran/nanogo/linesearch"
	"github.com/katalvlaran/nanogo/optlog"
	"github.com/katalvlaran/nanogo/state"
	"github.com/katalvlaran/nanogo/tensor"
)

// CGDVariant selects the beta formula of the nonlinear conjugate gradient
// update d_k = -g_k + beta_k * d_{k-1}.
//
// See "A survey of nonlinear conjugate gradient methods" by Hager & Zhang
// for HS/FR/PR/CD/LS/DY/N, "Nonlinear Conjugate Gradient Methods" by Dai
// for DYCD/DYHS, and formula 5.48 of "Numerical optimization" (Nocedal &
// Wright, 2nd edition) for FRPR.
type CGDVariant int

const (
	// CGDHS is Hestenes-Stiefel (1952), clamped at zero.
	CGDHS CGDVariant = iota
	// CGDFR is Fletcher-Reeves (1964).
	CGDFR
	// CGDPR is Polak-Ribiere (1969), clamped at zero.
	CGDPR
	// CGDCD is Fletcher's Conjugate Descent (1987).
	CGDCD
	// CGDLS is Liu-Storey (1991), clamped at zero.
	CGDLS
	// CGDDY is Dai-Yuan (1999).
	CGDDY
	// CGDN is Hager-Zhang (2005), the CG_DESCENT formula with the eta
	// lower bound.
	CGDN
	// CGDDYCD is Dai (2002).
	CGDDYCD
	// CGDDYHS is Dai-Yuan (2001).
	CGDDYHS
	// CGDFRPR is the FR-PR hybrid.
	CGDFRPR
)

var cgdNames = map[CGDVariant]string{
	CGDHS:   "cgd-hs",
	CGDFR:   "cgd-fr",
	CGDPR:   "cgd-pr",
	CGDCD:   "cgd-cd",
	CGDLS:   "cgd-ls",
	CGDDY:   "cgd-dy",
	CGDN:    "cgd-n",
	CGDDYCD: "cgd-dycd",
	CGDDYHS: "cgd-dyhs",
	CGDFRPR: "cgd-frpr",
}

// String implements fmt.Stringer.
func (v CGDVariant) String() string {
	if s, ok := cgdNames[v]; ok {
		return s
	}
	return "cgd-unknown"
}

// CGD is the nonlinear conjugate gradient solver. The zero value is not
// usable; construct with NewCGD.
type CGD struct {
	variant   CGDVariant
	orthotest float64
	eta       float64
	mon       monitor
	lsearch   func() *linesearch.Lsearch
}

// NewCGD builds a CGD solver for the given beta variant. Recognized
// options: solver::{epsilon,max_evals,cgd::orthotest,cgdN::eta} and the
// lsearchk::* family (the default search is CG-DESCENT with tolerances
// (1e-4, 1e-1), the default initializer quadratic).
func NewCGD(variant CGDVariant, p *config.Params, logger optlog.Logger) *CGD {
	searchParams := forwardTolerance(p, 1e-4, 1e-1)
	return &CGD{
		variant:   variant,
		orthotest: p.GetFloat(config.KeyCGDOrthotest, 0.1),
		eta:       p.GetFloat(config.KeyCGDNEta, 0.01),
		mon:       newMonitor(p, logger),
		lsearch: func() *linesearch.Lsearch {
			return &linesearch.Lsearch{
				Init:   &linesearch.QuadraticInit{},
				Search: linesearch.NewCGDescent(searchParams),
			}
		},
	}
}

// SetLsearch overrides the line-search factory (one fresh Lsearch per
// Minimize call, since initializers carry per-run memory).
func (c *CGD) SetLsearch(mk func() *linesearch.Lsearch) { c.lsearch = mk }

// Name implements Solver.
func (c *CGD) Name() string { return c.variant.String() }

// Minimize implements Solver.
func (c *CGD) Minimize(f function.Function, x0 *tensor.Tensor[float64]) (*state.State, error) {
	cstate, err := state.New(f, x0)
	if err != nil {
		return nil, err
	}
	pstate := cstate.Clone()
	lsearch := c.lsearch()

	n := f.Size()
	cdescent, err := tensor.NewVector(n)
	if err != nil {
		return nil, err
	}
	pdescent, err := tensor.NewVector(n)
	if err != nil {
		return nil, err
	}

	for iter := 0; c.mon.budget(f); iter++ {
		if iter == 0 {
			steepest(cdescent, cstate.GX())
		} else {
			beta := c.beta(pstate.GX(), pdescent, cstate.GX())
			cd, gd, pd := cdescent.Raw(), cstate.GX().Raw(), pdescent.Raw()
			for i := range cd {
				cd[i] = -gd[i] + beta*pd[i]
			}

			// restart to steepest descent when the direction is not a
			// descent direction, or when two consecutive gradients are
			// far from orthogonal (Nocedal & Wright, p.124-125)
			gg, _ := tensor.Dot(cstate.GX(), cstate.GX())
			gpg, _ := tensor.Dot(cstate.GX(), pstate.GX())
			if !cstate.HasDescent(cdescent) || math.Abs(gpg) >= c.orthotest*gg {
				steepest(cdescent, cstate.GX())
			}
		}

		pstate.CopyFrom(cstate)
		_ = tensor.CopyValues(pdescent, cdescent)

		iterOK := lsearch.Get(cstate, cdescent, iter)
		if c.mon.doneGradientTest(cstate, iterOK) {
			break
		}
	}
	finish(cstate)
	return pickBest(cstate, pstate), nil
}

// beta evaluates the variant's formula from the previous gradient pg,
// previous direction pd, and current gradient cg.
func (c *CGD) beta(pg, pd, cg *tensor.Tensor[float64]) float64 {
	dot := func(a, b *tensor.Tensor[float64]) float64 {
		v, _ := tensor.Dot(a, b)
		return v
	}
	cgcg := dot(cg, cg)
	cgpg := dot(cg, pg)
	pgpg := dot(pg, pg)
	pdcg := dot(pd, cg)
	pdpg := dot(pd, pg)

	hs := func() float64 { return (cgcg - cgpg) / (pdcg - pdpg) }
	fr := func() float64 { return cgcg / pgpg }
	pr := func() float64 { return (cgcg - cgpg) / pgpg }
	dy := func() float64 { return cgcg / (pdcg - pdpg) }

	switch c.variant {
	case CGDHS:
		return math.Max(0, hs())
	case CGDFR:
		return fr()
	case CGDPR:
		return math.Max(0, pr())
	case CGDCD:
		return -cgcg / pdpg
	case CGDLS:
		return math.Max(0, -(cgcg-cgpg)/pdpg)
	case CGDDY:
		return dy()
	case CGDDYCD:
		return cgcg / math.Max(pdcg-pdpg, -pdpg)
	case CGDDYHS:
		return math.Max(0, math.Min(dy(), hs()))
	case CGDFRPR:
		frv, prv := fr(), pr()
		switch {
		case prv < -frv:
			return -frv
		case math.Abs(prv) <= frv:
			return prv
		default:
			return frv
		}
	case CGDN:
		// y = cg - pg; beta = max(etaLower, (y - 2*pd*|y|^2/pd.y).cg / pd.y)
		pdy := pdcg - pdpg
		yy := cgcg - 2*cgpg + pgpg
		ycg := cgcg - cgpg
		div := 1 / pdy
		etaLower := -1 / (tensor.Norm2(pd) * math.Min(c.eta, math.Sqrt(pgpg)))
		return math.Max(etaLower, div*(ycg-2*pdcg*yy*div))
	default:
		panic(fmt.Sprintf("solver: unknown CGD variant %d", c.variant))
	}
}

// steepest writes -g into d.
func steepest(d, g *tensor.Tensor[float64]) {
	dd, gd := d.Raw(), g.Raw()
	for i := range dd {
		dd[i] = -gd[i]
	}
}
