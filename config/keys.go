// SPDX-License-Identifier: MIT
//
// keys.go declares the recognized option keys and a typed With*
// constructor for each, so callers write config.Build(config.WithMaxEvals(500),
// config.WithEpsilon(1e-8)) instead of stringly-typed Set calls. Validation
// happens here, at construction time, not when a solver later reads the
// value.
package config

import (
	"fmt"
	"math"
)

// Recognized option keys, exported so callers building a Params from a
// generic table (e.g. a test matrix) can reference them without
// re-deriving the string.
const (
	KeyMaxEvals             = "solver::max_evals"
	KeyEpsilon              = "solver::epsilon"
	KeyTolerance            = "solver::tolerance"
	KeyCGDOrthotest         = "solver::cgd::orthotest"
	KeyCGDNEta              = "solver::cgdN::eta"
	KeyQuasiInit            = "solver::quasi::initialization"
	KeyQuasiSR1R            = "solver::quasi::sr1::r"
	KeyUniversalL0          = "solver::universal::L0"
	KeyUniversalLSearchMax  = "solver::universal::lsearch_max_iters"
	KeyASGAL0               = "solver::asga::L0"
	KeyASGAGamma1           = "solver::asga::gamma1"
	KeyASGAGamma2           = "solver::asga::gamma2"
	KeyASGALSearchMax       = "solver::asga::lsearch_max_iters"
	KeyLSearchTolerance     = "lsearchk::tolerance"
	KeyLSearchMaxIterations = "lsearchk::max_iterations"
	KeyCGDescentEpsilon     = "lsearchk::cgdescent::epsilon"
	KeyCGDescentTheta       = "lsearchk::cgdescent::theta"
	KeyCGDescentGamma       = "lsearchk::cgdescent::gamma"
	KeyCGDescentRho         = "lsearchk::cgdescent::rho"
	KeyMoreThuenteDelta     = "lsearchk::morethuente::delta"
	KeyBundleMaxSize        = "::bundle::max_size"
	KeyCSearchM1M2          = "::csearch::m1m2"
	KeyCSearchM3            = "::csearch::m3"
	KeyCSearchM4            = "::csearch::m4"
	KeyCSearchInterpol      = "::csearch::interpol"
	KeyCSearchExtrapol      = "::csearch::extrapol"
)

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func invalid(key string, v interface{}) error {
	return fmt.Errorf("config: %s=%v: %w", key, v, ErrInvalidValue)
}

// WithMaxEvals sets solver::max_evals, a hard limit on fcalls+gcalls.
func WithMaxEvals(n int) Option {
	return func(p *Params) error {
		if n <= 0 {
			return invalid(KeyMaxEvals, n)
		}
		p.values[KeyMaxEvals] = n
		return nil
	}
}

// WithEpsilon sets solver::epsilon, the convergence tolerance.
func WithEpsilon(eps float64) Option {
	return func(p *Params) error {
		if !finite(eps) || eps <= 0 {
			return invalid(KeyEpsilon, eps)
		}
		p.values[KeyEpsilon] = eps
		return nil
	}
}

// WithTolerance sets solver::tolerance, the (c1, c2) line-search pair.
// Strong-Wolfe variants require 0 < c1 < 1/2 < c2 < 1; weak-Wolfe variants
// require 0 < c1 < c2 < 1. Both are satisfied by 0 < c1 < c2 < 1, which is
// all this constructor enforces; the stricter strong-Wolfe bound c1 < 1/2
// is not checked here or by the searches that read the pair.
func WithTolerance(c1, c2 float64) Option {
	return withPair(KeyTolerance, c1, c2)
}

// WithLSearchTolerance sets lsearchk::tolerance.
func WithLSearchTolerance(c1, c2 float64) Option {
	return withPair(KeyLSearchTolerance, c1, c2)
}

func withPair(key string, a, b float64) Option {
	return func(p *Params) error {
		if !finite(a) || !finite(b) || a <= 0 || b <= a || b >= 1 {
			return invalid(key, Pair{A: a, B: b})
		}
		p.values[key] = Pair{A: a, B: b}
		return nil
	}
}

// WithCGDOrthotest sets solver::cgd::orthotest, the restart threshold in (0,1).
func WithCGDOrthotest(v float64) Option {
	return withUnitInterval(KeyCGDOrthotest, v)
}

// WithCGDNEta sets solver::cgdN::eta, the N+ formula parameter (>0).
func WithCGDNEta(v float64) Option {
	return withPositive(KeyCGDNEta, v)
}

// QuasiInit enumerates the H0 initialization strategies for quasi-Newton
// solvers (solver::quasi::initialization).
type QuasiInit int

const (
	// QuasiInitIdentity starts H0 = I.
	QuasiInitIdentity QuasiInit = iota
	// QuasiInitScaled starts H0 = (dx.dg)/(dg.dg) * I after the first step.
	QuasiInitScaled
)

// GetQuasiInit returns the QuasiInit stored at key, or def if absent.
func (p *Params) GetQuasiInit(key string, def QuasiInit) QuasiInit {
	v, ok := p.raw(key)
	if !ok {
		return def
	}
	qi, ok := v.(QuasiInit)
	if !ok {
		return def
	}
	return qi
}

// WithQuasiInit sets solver::quasi::initialization.
func WithQuasiInit(v QuasiInit) Option {
	return func(p *Params) error {
		if v != QuasiInitIdentity && v != QuasiInitScaled {
			return invalid(KeyQuasiInit, v)
		}
		p.values[KeyQuasiInit] = v
		return nil
	}
}

// WithQuasiSR1R sets solver::quasi::sr1::r, the SR1 curvature-guard
// threshold in (0,1).
func WithQuasiSR1R(v float64) Option {
	return withUnitInterval(KeyQuasiSR1R, v)
}

// WithUniversalL0 sets solver::universal::L0, the initial Lipschitz guess (>0).
func WithUniversalL0(v float64) Option { return withPositive(KeyUniversalL0, v) }

// WithUniversalLSearchMax sets solver::universal::lsearch_max_iters.
func WithUniversalLSearchMax(n int) Option { return withPositiveInt(KeyUniversalLSearchMax, n) }

// WithASGAL0 sets solver::asga::L0 (>0).
func WithASGAL0(v float64) Option { return withPositive(KeyASGAL0, v) }

// WithASGAGamma1 sets solver::asga::gamma1 (>1).
func WithASGAGamma1(v float64) Option {
	return func(p *Params) error {
		if !finite(v) || v <= 1 {
			return invalid(KeyASGAGamma1, v)
		}
		p.values[KeyASGAGamma1] = v
		return nil
	}
}

// WithASGAGamma2 sets solver::asga::gamma2 in (0,1).
func WithASGAGamma2(v float64) Option { return withUnitInterval(KeyASGAGamma2, v) }

// WithASGALSearchMax sets solver::asga::lsearch_max_iters.
func WithASGALSearchMax(n int) Option { return withPositiveInt(KeyASGALSearchMax, n) }

// WithLSearchMaxIterations sets lsearchk::max_iterations.
func WithLSearchMaxIterations(n int) Option { return withPositiveInt(KeyLSearchMaxIterations, n) }

// WithCGDescentParams sets lsearchk::cgdescent::{epsilon,theta,gamma,rho}
// together, since the CG-DESCENT bracketing guard needs all four
// consistently: epsilon > 0, theta and gamma in (0,1), rho > 1.
func WithCGDescentParams(epsilon, theta, gamma, rho float64) Option {
	return func(p *Params) error {
		if !finite(epsilon) || epsilon <= 0 {
			return invalid(KeyCGDescentEpsilon, epsilon)
		}
		if !finite(theta) || theta <= 0 || theta >= 1 {
			return invalid(KeyCGDescentTheta, theta)
		}
		if !finite(gamma) || gamma <= 0 || gamma >= 1 {
			return invalid(KeyCGDescentGamma, gamma)
		}
		if !finite(rho) || rho <= 1 {
			return invalid(KeyCGDescentRho, rho)
		}
		p.values[KeyCGDescentEpsilon] = epsilon
		p.values[KeyCGDescentTheta] = theta
		p.values[KeyCGDescentGamma] = gamma
		p.values[KeyCGDescentRho] = rho
		return nil
	}
}

// WithMoreThuenteDelta sets lsearchk::morethuente::delta, the trust factor
// in (0,1) used to pick the safeguarded interpolant.
func WithMoreThuenteDelta(v float64) Option { return withUnitInterval(KeyMoreThuenteDelta, v) }

// WithBundleMaxSize sets ::bundle::max_size (>= 2, since one slot is
// reserved for the aggregate plane).
func WithBundleMaxSize(n int) Option {
	return func(p *Params) error {
		if n < 2 {
			return invalid(KeyBundleMaxSize, n)
		}
		p.values[KeyBundleMaxSize] = n
		return nil
	}
}

// WithCSearchTests sets ::csearch::{m1m2,m3,m4}: 0 < m1 < m2 < 1, m3 > 0, m4 > 0.
func WithCSearchTests(m1, m2, m3, m4 float64) Option {
	return func(p *Params) error {
		if !finite(m1) || !finite(m2) || m1 <= 0 || m2 <= m1 || m2 >= 1 {
			return invalid(KeyCSearchM1M2, Pair{A: m1, B: m2})
		}
		if !finite(m3) || m3 <= 0 {
			return invalid(KeyCSearchM3, m3)
		}
		if !finite(m4) || m4 <= 0 {
			return invalid(KeyCSearchM4, m4)
		}
		p.values[KeyCSearchM1M2] = Pair{A: m1, B: m2}
		p.values[KeyCSearchM3] = m3
		p.values[KeyCSearchM4] = m4
		return nil
	}
}

// WithCSearchInterpol sets ::csearch::interpol, the interior interpolation
// factor in (0,1).
func WithCSearchInterpol(v float64) Option { return withUnitInterval(KeyCSearchInterpol, v) }

// WithCSearchExtrapol sets ::csearch::extrapol, the extrapolation factor (>1).
func WithCSearchExtrapol(v float64) Option {
	return func(p *Params) error {
		if !finite(v) || v <= 1 {
			return invalid(KeyCSearchExtrapol, v)
		}
		p.values[KeyCSearchExtrapol] = v
		return nil
	}
}

func withUnitInterval(key string, v float64) Option {
	return func(p *Params) error {
		if !finite(v) || v <= 0 || v >= 1 {
			return invalid(key, v)
		}
		p.values[key] = v
		return nil
	}
}

func withPositive(key string, v float64) Option {
	return func(p *Params) error {
		if !finite(v) || v <= 0 {
			return invalid(key, v)
		}
		p.values[key] = v
		return nil
	}
}

func withPositiveInt(key string, n int) Option {
	return func(p *Params) error {
		if n <= 0 {
			return invalid(key, n)
		}
		p.values[key] = n
		return nil
	}
}
