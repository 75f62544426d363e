// Package bundle implements the cutting-plane machinery for nonsmooth
// convex minimization: the Bundle of subgradient planes around a
// proximity center (with multiplier-driven compaction and an aggregate
// plane preserved across trims), the doubly-stabilized bundle subproblem
// solved through the interior-point program solver, the curve search that
// classifies trial points into descent/null/cutting-plane steps, and the
// FPBA proximal-bundle solver driving them.
package bundle
