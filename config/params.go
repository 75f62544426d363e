// Params is a single heterogeneous namespace ("solver::max_evals",
// "lsearchk::cgdescent::epsilon", "::bundle::max_size", ...) shared
// across nine otherwise-unrelated algorithm families. A single Go struct
// can't express that without one field per family, so Params is a
// string-keyed map with typed, validating accessors.
//
// Construction always goes through Build, which applies Option setters in
// order (last-writer-wins) and returns the first validation error
// encountered, so a bad parameter is a configuration error surfaced
// before any solver work starts.
package config

import (
	"fmt"

	"github.com/samber/lo"
)

// Params is an immutable-after-Build dictionary of named options.
type Params struct {
	values map[string]interface{}
}

// Option mutates a Params under construction. Option constructors validate
// eagerly: a call like WithEpsilon(-1) returns an Option that, when applied,
// yields ErrInvalidValue — the invalidity is detected at Build time, not
// deep inside a solver iteration.
type Option func(*Params) error

// Build resolves a sequence of Option setters into a Params, starting from
// an empty dictionary. The first setter to fail aborts resolution and
// returns that error; Params is nil in that case.
//
// Complexity: O(len(opts)).
func Build(opts ...Option) (*Params, error) {
	p := &Params{values: make(map[string]interface{}, len(opts))}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// MustBuild is Build but panics on error; reserved for package-internal
// default tables where the option list is a Go literal, not user input.
func MustBuild(opts ...Option) *Params {
	p, err := Build(opts...)
	if err != nil {
		panic(fmt.Sprintf("config: MustBuild: %v", err))
	}
	return p
}

// Set stores a raw key/value pair unconditionally. Intended for generic
// call sites (e.g. copying defaults); prefer a typed With* constructor when
// one exists so invalid values are rejected at Build time.
func Set(key string, value interface{}) Option {
	return func(p *Params) error {
		p.values[key] = value
		return nil
	}
}

// Merge folds extra's entries into p's, last-writer-wins, and returns a new
// Params (p and extra are left unmodified). Uses lo.Assign to combine the
// two maps without a hand-written loop.
func Merge(p *Params, extra *Params) *Params {
	base := map[string]interface{}{}
	if p != nil {
		base = lo.Assign(base, p.values)
	}
	if extra != nil {
		base = lo.Assign(base, extra.values)
	}
	return &Params{values: base}
}

// Has reports whether key has an explicit value.
func (p *Params) Has(key string) bool {
	if p == nil {
		return false
	}
	_, ok := p.values[key]
	return ok
}

// GetFloat returns the float64 stored at key, or def if absent.
func (p *Params) GetFloat(key string, def float64) float64 {
	v, ok := p.raw(key)
	if !ok {
		return def
	}
	f, ok := v.(float64)
	if !ok {
		return def
	}
	return f
}

// GetInt returns the int stored at key, or def if absent.
func (p *Params) GetInt(key string, def int) int {
	v, ok := p.raw(key)
	if !ok {
		return def
	}
	n, ok := v.(int)
	if !ok {
		return def
	}
	return n
}

// GetBool returns the bool stored at key, or def if absent.
func (p *Params) GetBool(key string, def bool) bool {
	v, ok := p.raw(key)
	if !ok {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		return def
	}
	return b
}

// GetString returns the string stored at key, or def if absent.
func (p *Params) GetString(key string, def string) string {
	v, ok := p.raw(key)
	if !ok {
		return def
	}
	s, ok := v.(string)
	if !ok {
		return def
	}
	return s
}

// Pair is a pair of real-valued tolerances, e.g. (c1, c2) for a Wolfe test.
type Pair struct{ A, B float64 }

// GetPair returns the Pair stored at key, or def if absent.
func (p *Params) GetPair(key string, def Pair) Pair {
	v, ok := p.raw(key)
	if !ok {
		return def
	}
	pr, ok := v.(Pair)
	if !ok {
		return def
	}
	return pr
}

func (p *Params) raw(key string) (interface{}, bool) {
	if p == nil {
		return nil, false
	}
	v, ok := p.values[key]
	return v, ok
}
