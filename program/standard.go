// SPDX-License-Identifier: MIT
//
// standard.go maps general programs onto the nonnegative standard form
//
//	minimize    cs.z
//	subject to  As*z = bs,  z >= 0
//
// by splitting each free variable into x = xp - xm and introducing one
// slack per inequality row. The returned Recover closure maps a
// standard-form solution vector back to the original variables.
package program

import (
	"fmt"

	"github.com/katalvlaran/nanogo/tensor"
)

// StandardForm is a standard-form rendition of a Problem plus the
// mapping back to the original variable space.
type StandardForm struct {
	Prob *Problem
	// Recover maps a standard-form point z = (xp, xm, s) to the original
	// x = xp - xm.
	Recover func(z *tensor.Tensor[float64]) (*tensor.Tensor[float64], error)
}

// ToStandardForm converts p (free x, optional Ax = b, optional Gx <= h)
// into standard form with variables z = (xp, xm, s) >= 0, where
// x = xp - xm and s are the inequality slacks:
//
//	[ A -A  0 ] z = b
//	[ G -G  I ] z = h
//
// For a QP the quadratic block becomes [[Q, -Q, 0], [-Q, Q, 0], [0, 0, 0]],
// preserving 0.5*z'Qs*z = 0.5*x'Qx.
func ToStandardForm(p *Problem) (*StandardForm, error) {
	n := p.Dims()
	pe := p.Equalities()
	m := p.Inequalities()
	if pe+m == 0 {
		return nil, fmt.Errorf("program: ToStandardForm: nothing to transform: %w", ErrDimension)
	}
	ns := 2*n + m

	cs, err := tensor.NewVector(ns)
	if err != nil {
		return nil, err
	}
	cd, csd := p.C.Raw(), cs.Raw()
	for j := 0; j < n; j++ {
		csd[j] = cd[j]
		csd[n+j] = -cd[j]
	}

	as, err := tensor.NewMatrix(pe+m, ns)
	if err != nil {
		return nil, err
	}
	bs, err := tensor.NewVector(pe + m)
	if err != nil {
		return nil, err
	}
	asd, bsd := as.Raw(), bs.Raw()
	if pe > 0 {
		ad, bd := p.A.Raw(), p.B.Raw()
		for i := 0; i < pe; i++ {
			for j := 0; j < n; j++ {
				asd[i*ns+j] = ad[i*n+j]
				asd[i*ns+n+j] = -ad[i*n+j]
			}
			bsd[i] = bd[i]
		}
	}
	if m > 0 {
		gd, hd := p.G.Raw(), p.H.Raw()
		for i := 0; i < m; i++ {
			row := (pe + i) * ns
			for j := 0; j < n; j++ {
				asd[row+j] = gd[i*n+j]
				asd[row+n+j] = -gd[i*n+j]
			}
			asd[row+2*n+i] = 1
			bsd[pe+i] = hd[i]
		}
	}

	sf := &Problem{C: cs, A: as, B: bs}
	if p.Q != nil {
		qs, err := tensor.NewMatrix(ns, ns)
		if err != nil {
			return nil, err
		}
		qd, qsd := p.Q.Raw(), qs.Raw()
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				v := qd[i*n+j]
				qsd[i*ns+j] = v
				qsd[i*ns+n+j] = -v
				qsd[(n+i)*ns+j] = -v
				qsd[(n+i)*ns+n+j] = v
			}
		}
		sf.Q = qs
	}

	// z >= 0 expressed as -I*z <= 0 so the standard form is itself a
	// solvable Problem
	gi, err := tensor.NewMatrix(ns, ns)
	if err != nil {
		return nil, err
	}
	for i := 0; i < ns; i++ {
		_ = gi.Set(-1, i, i)
	}
	hz, err := tensor.NewVector(ns)
	if err != nil {
		return nil, err
	}
	sf.G, sf.H = gi, hz

	recoverX := func(z *tensor.Tensor[float64]) (*tensor.Tensor[float64], error) {
		if z.Len() != ns {
			return nil, fmt.Errorf("program: Recover: len(z)=%d want %d: %w", z.Len(), ns, ErrDimension)
		}
		x, err := tensor.NewVector(n)
		if err != nil {
			return nil, err
		}
		zd, xd := z.Raw(), x.Raw()
		for j := 0; j < n; j++ {
			xd[j] = zd[j] - zd[n+j]
		}
		return x, nil
	}
	return &StandardForm{Prob: sf, Recover: recoverX}, nil
}
