package confluence

import (
	"context"
	"math/rand"
	"testing"

	"github.com/phicalculus/phin/rewrite"
	"github.com/phicalculus/phin/rules"
	"github.com/phicalculus/phin/syntax"
)

func compile(t *testing.T, src string) *rules.Ruleset {
	t.Helper()
	parsed, err := rules.ParseRuleset([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	rs, err := parsed.Compile(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	return rs
}

func parse(t *testing.T, src string) syntax.Object {
	t.Helper()
	obj, err := syntax.ParseObject(src)
	if err != nil {
		t.Fatal(err)
	}
	return obj
}

// vertexRules is confluent: the two firings commute.
var vertexRules = `
rules:
- name: vertex
  pattern: "⟦ ⟧"
  result: "⟦ ν ↦ ⟦ Δ ⤍ 00- ⟧ ⟧"
`

func TestCriticalPairs(t *testing.T) {
	rs := compile(t, vertexRules)
	term := parse(t, "⟦ a ↦ ⟦ ⟧, b ↦ ⟦ ⟧ ⟧")
	ctx := rewrite.NewContext(rs, term)

	pairs := CriticalPairs(term, ctx)
	if len(pairs) != 1 {
		t.Fatalf("got %d pairs, wanted 1", len(pairs))
	}
	if syntax.Equal(pairs[0][0], pairs[0][1]) {
		t.Error("a critical pair must be distinct")
	}
}

func TestJoinableWithinOneStep(t *testing.T) {
	rs := compile(t, vertexRules)
	term := parse(t, "⟦ a ↦ ⟦ ⟧, b ↦ ⟦ ⟧ ⟧")
	ctx := rewrite.NewContext(rs, term)

	pairs := CriticalPairs(term, ctx)
	if len(pairs) != 1 {
		t.Fatalf("got %d pairs", len(pairs))
	}
	cfg := DefaultConfig
	if !Joinable(pairs[0][0], pairs[0][1], ctx, cfg) {
		t.Error("the non-overlapping firings should converge")
	}

	// They converge within one further step, so a depth-1 search
	// already finds the join.
	cfg.MaxJoinDepth = 1
	if !Joinable(pairs[0][0], pairs[0][1], ctx, cfg) {
		t.Error("should join within 1 step")
	}
}

func TestCheckConfluentRuleset(t *testing.T) {
	rs := compile(t, vertexRules)
	cfg := DefaultConfig
	cfg.Samples = 50
	if fail := Check(rs, cfg); fail != nil {
		t.Fatalf("confluent ruleset failed: %s", fail)
	}
}

func TestCheckFindsDivergence(t *testing.T) {
	// Two rules that rewrite the same redex to different normal
	// forms: not confluent.
	rs := compile(t, `
rules:
- name: left
  pattern: "⟦ ⟧"
  result: "⟦ l ↦ ⊥ ⟧"
- name: right
  pattern: "⟦ ⟧"
  result: "⟦ r ↦ ⊥ ⟧"
`)
	cfg := DefaultConfig
	cfg.Samples = 200
	fail := Check(rs, cfg)
	if fail == nil {
		t.Fatal("expected a divergent pair")
	}

	// The counterexample really diverges.
	if f := CheckTerm(fail.Term, rs, cfg); f == nil {
		t.Errorf("shrunk term %s does not fail", fail.Term)
	}
}

func TestJoinableUnequalNormalForms(t *testing.T) {
	rs := compile(t, vertexRules)
	ctx := rewrite.NewContext(rs, parse(t, "⟦ ⟧"))
	cfg := DefaultConfig

	// Two distinct normal forms never join.
	if Joinable(parse(t, "ξ"), parse(t, "Φ"), ctx, cfg) {
		t.Error("distinct normal forms joined")
	}
	if !Joinable(parse(t, "ξ"), parse(t, "ξ"), ctx, cfg) {
		t.Error("a term joins with itself")
	}
}

func TestGeneratorRespectsInvariants(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		f := randomFormation(rnd, 3, 3)

		seen := map[syntax.Attribute]bool{}
		empty, data := false, false
		for _, b := range f.Bindings {
			switch v := b.(type) {
			case *syntax.AlphaBinding:
				if seen[v.Attr] {
					t.Fatalf("duplicate attribute %s in %s", v.Attr, f)
				}
				seen[v.Attr] = true
			case *syntax.EmptyBinding:
				if seen[v.Attr] {
					t.Fatalf("duplicate attribute %s in %s", v.Attr, f)
				}
				seen[v.Attr] = true
				empty = true
			case *syntax.DeltaBinding:
				data = true
			}
		}
		if empty && data {
			t.Fatalf("Δ and ∅ coexist in %s", f)
		}
		if syntax.HasMeta(f) {
			t.Fatalf("generated term has metas: %s", f)
		}
	}
}

func TestShrinkCandidatesAreSmaller(t *testing.T) {
	term := parse(t, "⟦ a ↦ ⟦ x ↦ ξ ⟧, b ↦ ⟦ ⟧ ⟧")
	for _, c := range shrinkCandidates(term) {
		if syntax.Size(c) >= syntax.Size(term) {
			t.Errorf("candidate %s is not smaller", c)
		}
	}
}
