// Package nanogo is a batteries-included nonlinear optimization toolkit
// for Go: one uniform framework for unconstrained smooth, nonsmooth
// convex, and linearly/quadratically constrained problems, together with
// the worker-pool and statistics primitives higher-level learners reuse.
//
// 🚀 What is nanogo?
//
//	A modern, dependency-light numerical core that brings together:
//
//	  • Tensor primitives: rank-N arrays with owning/view storage,
//	    dense vector/matrix adapters, lazy elementwise expressions
//	  • Line searches: Armijo, weak/strong Wolfe, approximate Wolfe
//	    (backtracking, Lemarechal, More-Thuente, Fletcher, CG_DESCENT)
//	  • Solvers: nonlinear conjugate gradient (ten beta rules),
//	    quasi-Newton (SR1/DFP/BFGS/Hoshino/Fletcher), universal gradient
//	    methods, accelerated subgradient (ASGA), the ellipsoid method,
//	    and a proximal cutting-plane bundle with curve search
//	  • Programs: a primal-dual interior-point solver for LPs and convex
//	    QPs with equality and inequality blocks
//	  • Parallel pool: fixed worker threads, by-index and by-range
//	    map-reduce, fail-fast sections
//
// Under the hood, everything is organized leaf-first:
//
//	tensor/     — storage variants, Dims, slicing, Close, Gemv
//	stats/      — running per-dimension accumulators, scaling, quantiles
//	pool/       — mutex+condvar task queue, Map/MapChunk, Section
//	function/   — objective trait, constraints, gradient checking
//	state/      — per-minimization record and stopping measures
//	linesearch/ — step initializers and the 1-D searches
//	solver/     — CGD, quasi-Newton, universal, ASGA, ellipsoid
//	bundle/     — cutting planes, curve search, proximal bundle
//	program/    — interior-point LP/QP and standard-form transforms
//	config/     — the named-parameter dictionary shared by all of them
//
// A function implementing the value/gradient contract is handed with a
// starting point to a solver; the solver drives a line search or the
// program solver and hands back a state whose status says why it ended.
//
//	go get github.com/katalvlaran/nanogo
package nanogo
