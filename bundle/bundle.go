// SPDX-License-Identifier: MIT
package bundle

import (
	"fmt"
	"math"
	"sort"

	"github.com/samber/lo"

	"github.com/katalvlaran/nanogo/config"
	"github.com/katalvlaran/nanogo/optlog"
	"github.com/katalvlaran/nanogo/program"
	"github.com/katalvlaran/nanogo/state"
	"github.com/katalvlaran/nanogo/tensor"
)

// machEps is the double-precision unit roundoff, the inactivity
// threshold for plane multipliers.
const machEps = 2.220446049250313e-16

// Solution is the outcome of one bundle subproblem solve.
type Solution struct {
	X      *tensor.Tensor[float64] // proximal point x*
	FHat   float64                 // cutting-plane model value at x*
	Alphas []float64               // multipliers on the plane constraints
	Lambda float64                 // multiplier on the level constraint
	Tau    float64                 // proximity weight used
	GHat   *tensor.Tensor[float64] // smeared (aggregate) subgradient
	GNorm  float64                 // |GHat|
	Epsil  float64                 // smeared error
}

// EpsilConverged reports Epsil <= eps*sqrt(n).
func (s *Solution) EpsilConverged(eps float64) bool {
	return s.Epsil <= eps*math.Sqrt(float64(s.X.Len()))
}

// GNormConverged reports GNorm <= eps*sqrt(n).
func (s *Solution) GNormConverged(eps float64) bool {
	return s.GNorm <= eps*math.Sqrt(float64(s.X.Len()))
}

// Bundle stores up to capacity cutting planes (g_j, e_j) around the
// proximity center (x, gx, fx), where e_j >= 0 is the linearization
// error of plane j at the center: the plane supports f from below with
// value fx - e_j + g_j.(z - x) at z. The last slot is reserved for the
// aggregate plane during compaction.
type Bundle struct {
	capacity int
	size     int
	subg     *tensor.Tensor[float64] // capacity x n subgradients
	errs     []float64               // capacity linearization errors
	alphas   []float64               // multipliers from the last solve

	x  *tensor.Tensor[float64]
	gx *tensor.Tensor[float64]
	fx float64

	qp       *program.Solver
	solved   bool
	solution Solution
	logger   optlog.Logger
}

// New builds a bundle seeded with the state's current point. maxSize
// must be at least 2 (one working slot plus the reserved aggregate slot).
func New(st *state.State, maxSize int, logger optlog.Logger) (*Bundle, error) {
	if maxSize < 2 {
		return nil, fmt.Errorf("bundle: max size %d < 2: %w", maxSize, config.ErrInvalidValue)
	}
	n := st.X().Len()
	subg, err := tensor.NewMatrix(maxSize, n)
	if err != nil {
		return nil, err
	}
	qpParams, err := config.Build(config.WithEpsilon(1e-10))
	if err != nil {
		return nil, err
	}
	b := &Bundle{
		capacity: maxSize,
		subg:     subg,
		errs:     make([]float64, maxSize),
		alphas:   make([]float64, maxSize),
		x:        st.X().Clone(),
		gx:       st.GX().Clone(),
		fx:       st.FX(),
		qp:       program.NewSolver(qpParams, logger),
		logger:   optlog.OrNop(logger),
	}
	b.push(st.GX(), 0)
	return b, nil
}

// NewFromParams builds a bundle reading ::bundle::max_size (default 100).
func NewFromParams(st *state.State, p *config.Params, logger optlog.Logger) (*Bundle, error) {
	return New(st, p.GetInt(config.KeyBundleMaxSize, 100), logger)
}

// Size returns the number of stored planes.
func (b *Bundle) Size() int { return b.size }

// Capacity returns the plane capacity (including the reserved slot).
func (b *Bundle) Capacity() int { return b.capacity }

// X returns the proximity center.
func (b *Bundle) X() *tensor.Tensor[float64] { return b.x }

// FX returns the value at the proximity center.
func (b *Bundle) FX() float64 { return b.fx }

// GX returns the subgradient recorded at the proximity center.
func (b *Bundle) GX() *tensor.Tensor[float64] { return b.gx }

// Moveto performs a serious step: the proximity center shifts to y and
// every stored error is re-anchored there, then the plane at y is
// appended with zero error.
func (b *Bundle) Moveto(y, gy *tensor.Tensor[float64], fy float64) {
	b.compact()
	// e'_j = e_j + fy - fx - g_j.(y - x) keeps each plane a lower
	// support at the new center
	for j := 0; j < b.size; j++ {
		row, _ := b.subg.Row(j)
		b.errs[j] += fy - b.fx - dotDiff(row, y, b.x)
	}
	_ = tensor.CopyValues(b.x, y)
	_ = tensor.CopyValues(b.gx, gy)
	b.fx = fy
	b.push(gy, 0)
}

// Append performs a null step: the plane cut at y joins the bundle while
// the center stays.
func (b *Bundle) Append(y, gy *tensor.Tensor[float64], fy float64) {
	b.compact()
	e := b.fx - (fy + dotDiff(gy, b.x, y))
	b.push(gy, e)
}

func (b *Bundle) push(g *tensor.Tensor[float64], e float64) {
	row, _ := b.subg.Row(b.size)
	_ = tensor.CopyValues(row, g)
	b.errs[b.size] = e
	b.alphas[b.size] = 0
	b.size++
}

// compact enforces the capacity policy before an append: drop planes
// whose multiplier went inactive; if only the reserved slot would remain
// free, stash the aggregate plane there, keep the largest-multiplier
// planes, and restore the aggregate.
func (b *Bundle) compact() {
	if b.size == 0 {
		return
	}
	// drop inactive planes (alpha below machine epsilon); multipliers
	// only exist once a subproblem has been solved
	if b.solved {
		active := lo.Filter(indices(b.size), func(j int, _ int) bool {
			return b.alphas[j] >= machEps
		})
		if len(active) < b.size {
			b.keep(active)
		}
	}
	if b.size+1 < b.capacity {
		return
	}

	// stash the aggregate in the reserved last slot
	ilast := b.capacity - 1
	aggRow, _ := b.subg.Row(ilast)
	smearedInto(aggRow, b)
	b.errs[ilast] = b.SmearedE()

	// keep the planes with the largest multipliers, freeing two working
	// slots for the restored aggregate and the incoming plane
	keepCount := b.size - 2
	if keepCount < 0 {
		keepCount = 0
	}
	order := indices(b.size)
	sort.Slice(order, func(i, j int) bool { return b.alphas[order[i]] > b.alphas[order[j]] })
	kept := append([]int(nil), order[:keepCount]...)
	sort.Ints(kept)
	b.keep(kept)

	// restore the aggregate as an ordinary plane
	row, _ := b.subg.Row(b.size)
	agg, _ := b.subg.Row(ilast)
	_ = tensor.CopyValues(row, agg)
	b.errs[b.size] = b.errs[ilast]
	b.alphas[b.size] = 0
	b.size++
}

// keep compacts storage down to the given (sorted) plane indices.
func (b *Bundle) keep(idx []int) {
	for to, from := range idx {
		if to == from {
			continue
		}
		dst, _ := b.subg.Row(to)
		src, _ := b.subg.Row(from)
		_ = tensor.CopyValues(dst, src)
		b.errs[to] = b.errs[from]
		b.alphas[to] = b.alphas[from]
	}
	b.size = len(idx)
}

// Solve minimizes the doubly-stabilized bundle subproblem
//
//	min  v + |z|^2/(2*tau)
//	s.t. g_j.z - e_j <= v  for every plane j
//	     fx + v <= level   when level is finite
//
// over (z, v) with z = x* - x, returning the proximal point, the plane
// multipliers alpha, the level multiplier lambda, and the smeared
// gradient/error statistics.
func (b *Bundle) Solve(tau, level float64) (*Solution, error) {
	n := b.x.Len()
	m := b.size
	withLevel := !math.IsInf(level, 1) && !math.IsNaN(level)
	rows := m
	if withLevel {
		rows++
	}

	q, err := tensor.NewMatrix(n+1, n+1)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		_ = q.Set(1/tau, i, i)
	}
	c, err := tensor.NewVector(n + 1)
	if err != nil {
		return nil, err
	}
	c.Raw()[n] = 1

	g, err := tensor.NewMatrix(rows, n+1)
	if err != nil {
		return nil, err
	}
	h, err := tensor.NewVector(rows)
	if err != nil {
		return nil, err
	}
	gd := g.Raw()
	sd := b.subg.Raw()
	for j := 0; j < m; j++ {
		copy(gd[j*(n+1):j*(n+1)+n], sd[j*n:j*n+n])
		gd[j*(n+1)+n] = -1
		h.Raw()[j] = b.errs[j]
	}
	if withLevel {
		gd[m*(n+1)+n] = 1
		h.Raw()[m] = level - b.fx
	}

	prob, err := program.NewQuadratic(q, c)
	if err != nil {
		return nil, err
	}
	if _, err := prob.WithInequality(g, h); err != nil {
		return nil, err
	}

	qsol := b.qp.Solve(prob)
	// a MaxIters exit with residuals already tiny is still usable; only
	// a genuinely unsolved subproblem aborts the search
	usable := qsol.Status == state.Converged ||
		(qsol.Status == state.MaxIters && math.Max(qsol.RDual, math.Max(qsol.RPrim, qsol.Mu)) < 1e-8)
	if !usable {
		b.logger.Log(optlog.Error, "bundle: subproblem ended %s (rdual=%g,rprim=%g,mu=%g)",
			qsol.Status, qsol.RDual, qsol.RPrim, qsol.Mu)
		return nil, fmt.Errorf("bundle: subproblem %s: %w", qsol.Status, ErrSubproblem)
	}

	xstar, err := tensor.NewVector(n)
	if err != nil {
		return nil, err
	}
	zd, xd, cd := qsol.X.Raw(), xstar.Raw(), b.x.Raw()
	for i := 0; i < n; i++ {
		xd[i] = cd[i] + zd[i]
	}
	v := zd[n]

	for j := 0; j < m; j++ {
		b.alphas[j] = qsol.Lambda.Raw()[j]
	}
	b.solved = true
	lambda := 0.0
	if withLevel {
		lambda = qsol.Lambda.Raw()[m]
	}

	sol := &b.solution
	sol.X = xstar
	sol.FHat = b.fx + v
	sol.Alphas = append(sol.Alphas[:0], b.alphas[:m]...)
	sol.Lambda = lambda
	sol.Tau = tau

	// aggregate subgradient ghat = (x - x*)/(tau*(1 + lambda)); its norm
	// and the smeared error drive the outer stopping test
	miu := 1 + lambda
	ghat, err := tensor.NewVector(n)
	if err != nil {
		return nil, err
	}
	gh := ghat.Raw()
	for i := 0; i < n; i++ {
		gh[i] = (cd[i] - xd[i]) / (tau * miu)
	}
	sol.GHat = ghat
	sol.GNorm = tensor.Norm2(ghat)
	sol.Epsil = (b.fx - sol.FHat) - tau*miu*sol.GNorm*sol.GNorm
	if sol.Epsil < 0 {
		sol.Epsil = 0
	}
	return sol, nil
}

// FHat evaluates the cutting-plane model max_j fx - e_j + g_j.(z - x).
func (b *Bundle) FHat(z *tensor.Tensor[float64]) float64 {
	best := math.Inf(-1)
	for j := 0; j < b.size; j++ {
		row, _ := b.subg.Row(j)
		if v := b.fx - b.errs[j] + dotDiff(row, z, b.x); v > best {
			best = v
		}
	}
	return best
}

// SmearedE returns sum_j alpha_j*e_j, the multiplier-weighted error.
func (b *Bundle) SmearedE() float64 {
	var s float64
	for j := 0; j < b.size; j++ {
		s += b.alphas[j] * b.errs[j]
	}
	return s
}

// SmearedG writes sum_j alpha_j*g_j into dst.
func (b *Bundle) SmearedG(dst *tensor.Tensor[float64]) {
	smearedInto(dst, b)
}

func smearedInto(dst *tensor.Tensor[float64], b *Bundle) {
	dd := dst.Raw()
	for i := range dd {
		dd[i] = 0
	}
	sd := b.subg.Raw()
	n := b.x.Len()
	for j := 0; j < b.size; j++ {
		a := b.alphas[j]
		if a == 0 {
			continue
		}
		for i := 0; i < n; i++ {
			dd[i] += a * sd[j*n+i]
		}
	}
}

// Errs returns the live linearization errors (read-only view for tests).
func (b *Bundle) Errs() []float64 { return b.errs[:b.size] }

func dotDiff(g, a, c *tensor.Tensor[float64]) float64 {
	gd, ad, cd := g.Raw(), a.Raw(), c.Raw()
	var s float64
	for i := range gd {
		s += gd[i] * (ad[i] - cd[i])
	}
	return s
}

func indices(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}
