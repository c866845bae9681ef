// Package confluence property-tests a ruleset: it generates random
// formations, collects critical pairs (two distinct one-step
// successors of the same term), and searches for a common descendant
// within bounded depth.
//
// The joinability search enumerates descendants breadth-first, level
// by level, because chains can be infinite; see rewrite.Descendants.
package confluence

import (
	"math/rand"

	"github.com/phicalculus/phin/rewrite"
	"github.com/phicalculus/phin/rules"
	"github.com/phicalculus/phin/syntax"
)

// Config bounds the search.
type Config struct {
	// Samples is how many random formations to try.
	Samples int

	// Seed makes runs reproducible.
	Seed int64

	// MaxJoinDepth is how many descendant levels to explore when
	// looking for a common descendant.
	MaxJoinDepth int

	// MaxTermSize drops descendants that grow beyond this size.
	MaxTermSize int

	// MaxFormationDepth and MaxBindings shape the generated terms.
	MaxFormationDepth int
	MaxBindings       int
}

// DefaultConfig mirrors the bounds the ruleset law is stated with.
var DefaultConfig = Config{
	Samples:           100,
	Seed:              1,
	MaxJoinDepth:      7,
	MaxTermSize:       30,
	MaxFormationDepth: 2,
	MaxBindings:       2,
}

func (cfg Config) control() *rewrite.Control {
	return &rewrite.Control{
		MaxSteps:    0,
		MaxDepth:    cfg.MaxJoinDepth,
		MaxTermSize: cfg.MaxTermSize,
	}
}

// Failure reports a critical pair with no common descendant within
// the bounds.
type Failure struct {
	Term  syntax.Object
	Left  syntax.Object
	Right syntax.Object
}

func (f *Failure) Error() string {
	return "critical pair of " + f.Term.String() +
		" does not join: " + f.Left.String() + " vs " + f.Right.String()
}

// Check samples random formations and verifies that every critical
// pair joins.  A nil result means no counterexample was found.
func Check(rs *rules.Ruleset, cfg Config) *Failure {
	if cfg.Samples == 0 {
		cfg = DefaultConfig
	}
	rnd := rand.New(rand.NewSource(cfg.Seed))

	for i := 0; i < cfg.Samples; i++ {
		t := randomFormation(rnd, cfg.MaxFormationDepth, cfg.MaxBindings)
		if syntax.Size(t) > cfg.MaxTermSize {
			// Oversized samples would trip the descendant
			// bound before any join could be seen.
			continue
		}
		if fail := CheckTerm(t, rs, cfg); fail != nil {
			return shrinkFailure(fail, rs, cfg)
		}
	}
	return nil
}

// CheckTerm verifies every critical pair of a single term.
func CheckTerm(t syntax.Object, rs *rules.Ruleset, cfg Config) *Failure {
	ctx := rewrite.NewContext(rs, t)
	for _, pair := range CriticalPairs(t, ctx) {
		if !Joinable(pair[0], pair[1], ctx, cfg) {
			return &Failure{Term: t, Left: pair[0], Right: pair[1]}
		}
	}
	return nil
}

// CriticalPairs returns every unordered pair of distinct one-step
// successors of t.
func CriticalPairs(t syntax.Object, ctx *rewrite.Context) [][2]syntax.Object {
	succs := rewrite.Step(t, ctx)
	var acc [][2]syntax.Object
	for i := 0; i < len(succs); i++ {
		for j := i + 1; j < len(succs); j++ {
			acc = append(acc, [2]syntax.Object{succs[i], succs[j]})
		}
	}
	return acc
}

// Joinable searches for a common descendant of x and y, enumerating
// both descendant trees level by level up to the configured depth.
func Joinable(x, y syntax.Object, ctx *rewrite.Context, cfg Config) bool {
	if syntax.Equal(x, y) {
		return true
	}

	dx := rewrite.NewDescendants(x, ctx, cfg.control())
	dy := rewrite.NewDescendants(y, ctx, cfg.control())

	seenX := map[string]bool{}
	seenY := map[string]bool{}

	for level := 0; level <= cfg.MaxJoinDepth; level++ {
		lx := dx.Next()
		ly := dy.Next()
		if lx == nil && ly == nil {
			return false
		}
		for _, t := range lx {
			seenX[syntax.Key(t)] = true
		}
		for _, t := range ly {
			seenY[syntax.Key(t)] = true
		}
		for k := range seenX {
			if seenY[k] {
				return true
			}
		}
	}
	return false
}

// shrinkFailure reduces a failing term while it keeps producing an
// unjoinable critical pair: bindings are dropped one at a time and
// formation payloads are flattened.  Only variants that still have at
// least two successors are interesting.
func shrinkFailure(fail *Failure, rs *rules.Ruleset, cfg Config) *Failure {
	for {
		shrunk := false
		for _, cand := range shrinkCandidates(fail.Term) {
			ctx := rewrite.NewContext(rs, cand)
			if len(rewrite.Step(cand, ctx)) < 2 {
				continue
			}
			if f := CheckTerm(cand, rs, cfg); f != nil {
				fail = f
				shrunk = true
				break
			}
		}
		if !shrunk {
			return fail
		}
	}
}

// shrinkCandidates proposes smaller variants of a formation: each
// with one binding removed, and each with one nested formation
// payload replaced by ⟦ ⟧.
func shrinkCandidates(t syntax.Object) []syntax.Object {
	f, is := t.(*syntax.Formation)
	if !is {
		return nil
	}

	var acc []syntax.Object
	for i := range f.Bindings {
		bs := make([]syntax.Binding, 0, len(f.Bindings)-1)
		bs = append(bs, f.Bindings[:i]...)
		bs = append(bs, f.Bindings[i+1:]...)
		acc = append(acc, &syntax.Formation{Bindings: bs})
	}
	for i, b := range f.Bindings {
		a, is := b.(*syntax.AlphaBinding)
		if !is {
			continue
		}
		inner, is := a.Obj.(*syntax.Formation)
		if !is || len(inner.Bindings) == 0 {
			continue
		}
		bs := make([]syntax.Binding, len(f.Bindings))
		copy(bs, f.Bindings)
		bs[i] = &syntax.AlphaBinding{Attr: a.Attr, Obj: &syntax.Formation{}}
		acc = append(acc, &syntax.Formation{Bindings: bs})
	}
	return acc
}
