package dataize

import (
	"context"
	"testing"

	"github.com/phicalculus/phin/rewrite"
	"github.com/phicalculus/phin/rules"
	"github.com/phicalculus/phin/syntax"
)

func parse(t *testing.T, src string) syntax.Object {
	t.Helper()
	obj, err := syntax.ParseObject(src)
	if err != nil {
		t.Fatalf("ParseObject(%q): %s", src, err)
	}
	return obj
}

func emptyRuleset(t *testing.T) *rules.Ruleset {
	t.Helper()
	src, err := rules.ParseRuleset([]byte("title: empty\nrules: []\n"))
	if err != nil {
		t.Fatal(err)
	}
	rs, err := src.Compile(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	return rs
}

func newInterp(t *testing.T) *Interp {
	return New(emptyRuleset(t), nil)
}

func TestIntCodecRoundTrip(t *testing.T) {
	for _, n := range []int64{0, 1, -1, 2, 3, 5, 255, -256, 1 << 40, -(1 << 40), 1<<63 - 1, -(1 << 63)} {
		got, ok := DecodeInt(EncodeInt(n))
		if !ok || got != n {
			t.Errorf("round trip of %d: got %d, ok=%v", n, got, ok)
		}
	}
	if _, ok := DecodeInt(syntax.Bytes{0x01}); ok {
		t.Error("short input should not decode")
	}
}

func TestDataizeDelta(t *testing.T) {
	in := newInterp(t)
	r := in.Dataize(parse(t, "⟦ Δ ⤍ 00-00-00-00-00-00-00-07 ⟧"))
	if !r.IsBytes() {
		t.Fatalf("residual: %s", r.Term)
	}
	if got := r.Bytes.String(); got != "00-00-00-00-00-00-00-07" {
		t.Errorf("got %s", got)
	}
}

func TestDataizeEmptyBlocks(t *testing.T) {
	// A formation with an ∅ binding is not decidable, even with Δ.
	in := newInterp(t)
	r := in.Dataize(parse(t, "⟦ Δ ⤍ 07- , a ↦ ∅ ⟧"))
	if r.IsBytes() {
		t.Fatal("should be residual")
	}
}

func TestDataizePlus(t *testing.T) {
	in := newInterp(t)
	term := parse(t, `⟦
		λ ⤍ Lorg_eolang_int_plus,
		ρ ↦ ⟦ Δ ⤍ 00-00-00-00-00-00-00-02 ⟧,
		α0 ↦ ⟦ Δ ⤍ 00-00-00-00-00-00-00-03 ⟧
	⟧`)
	r := in.Dataize(term)
	if !r.IsBytes() {
		t.Fatalf("residual: %s", r.Term)
	}
	if got := r.Bytes.String(); got != "00-00-00-00-00-00-00-05" {
		t.Errorf("2+3 = %s", got)
	}
}

func TestDataizeTimesAndDiv(t *testing.T) {
	in := newInterp(t)

	mk := func(fn string, a, b int64) syntax.Object {
		return &syntax.Formation{Bindings: []syntax.Binding{
			&syntax.LambdaBinding{Fn: fn},
			&syntax.AlphaBinding{Attr: syntax.Rho, Obj: deltaFormation(EncodeInt(a))},
			&syntax.AlphaBinding{Attr: syntax.Alpha(0), Obj: deltaFormation(EncodeInt(b))},
		}}
	}

	r := in.Dataize(mk("Lorg_eolang_int_times", 6, 7))
	if n, _ := DecodeInt(r.Bytes); n != 42 {
		t.Errorf("6*7 = %d", n)
	}

	r = in.Dataize(mk("Lorg_eolang_int_div", -9, 2))
	if n, _ := DecodeInt(r.Bytes); n != -4 {
		t.Errorf("-9/2 = %d", n)
	}

	// Division by zero terminates.
	r = in.Dataize(mk("Lorg_eolang_int_div", 1, 0))
	if r.IsBytes() {
		t.Fatal("1/0 produced bytes")
	}
	if _, is := r.Term.(*syntax.Termination); !is {
		t.Errorf("1/0 = %s, wanted ⊥", r.Term)
	}
}

func TestDataizeGreaterThan(t *testing.T) {
	in := newInterp(t)
	term := parse(t, `⟦
		λ ⤍ Lorg_eolang_int_gt,
		ρ ↦ ⟦ Δ ⤍ 00-00-00-00-00-00-00-05 ⟧,
		α0 ↦ ⟦ Δ ⤍ 00-00-00-00-00-00-00-03 ⟧
	⟧`)
	r := in.Dataize(term)
	if !r.IsBytes() || r.Bytes.String() != "01-" {
		t.Fatalf("5>3 = %v", r)
	}

	term = parse(t, `⟦
		λ ⤍ Lorg_eolang_int_gt,
		ρ ↦ ⟦ Δ ⤍ 00-00-00-00-00-00-00-03 ⟧,
		α0 ↦ ⟦ Δ ⤍ 00-00-00-00-00-00-00-03 ⟧
	⟧`)
	r = in.Dataize(term)
	if !r.IsBytes() || r.Bytes.String() != "00-" {
		t.Fatalf("3>3 = %v", r)
	}
}

func TestTerminationPropagates(t *testing.T) {
	// The numeric operation never runs when an operand is ⊥.
	in := newInterp(t)
	term := parse(t, `⟦
		λ ⤍ Lorg_eolang_int_plus,
		ρ ↦ ⟦ Δ ⤍ 00-00-00-00-00-00-00-02 ⟧,
		α0 ↦ ⊥
	⟧`)
	r := in.Dataize(term)
	if r.IsBytes() {
		t.Fatal("produced bytes from ⊥")
	}
	if _, is := r.Term.(*syntax.Termination); !is {
		t.Errorf("got %s, wanted ⊥", r.Term)
	}
}

func TestBadOperandWidthTerminates(t *testing.T) {
	in := newInterp(t)
	term := parse(t, `⟦
		λ ⤍ Lorg_eolang_int_plus,
		ρ ↦ ⟦ Δ ⤍ 02- ⟧,
		α0 ↦ ⟦ Δ ⤍ 00-00-00-00-00-00-00-03 ⟧
	⟧`)
	r := in.Dataize(term)
	if _, is := r.Term.(*syntax.Termination); !is {
		t.Errorf("got %v, wanted ⊥", r)
	}
}

func TestUnknownBuiltinIsResidual(t *testing.T) {
	in := newInterp(t)
	term := parse(t, "⟦ λ ⤍ Lorg_eolang_who_knows ⟧")
	r := in.Dataize(term)
	if r.IsBytes() {
		t.Fatal("unexpectedly reduced")
	}
	if !syntax.Equal(r.Term, term) {
		t.Errorf("residual changed: %s", r.Term)
	}
}

func TestDataizePhiDescent(t *testing.T) {
	in := newInterp(t)
	term := parse(t, "⟦ φ ↦ ⟦ Δ ⤍ 00-00-00-00-00-00-00-09 ⟧, extra ↦ ξ ⟧")
	r := in.Dataize(term)
	if !r.IsBytes() {
		t.Fatalf("residual: %s", r.Term)
	}
	if n, _ := DecodeInt(r.Bytes); n != 9 {
		t.Errorf("got %d", n)
	}
}

func TestDataizeNestedOperand(t *testing.T) {
	// An operand that itself needs a built-in: (2+3)*4.
	in := newInterp(t)
	inner := parse(t, `⟦
		λ ⤍ Lorg_eolang_int_plus,
		ρ ↦ ⟦ Δ ⤍ 00-00-00-00-00-00-00-02 ⟧,
		α0 ↦ ⟦ Δ ⤍ 00-00-00-00-00-00-00-03 ⟧
	⟧`)
	term := &syntax.Formation{Bindings: []syntax.Binding{
		&syntax.LambdaBinding{Fn: "Lorg_eolang_int_times"},
		&syntax.AlphaBinding{Attr: syntax.Rho, Obj: inner},
		&syntax.AlphaBinding{Attr: syntax.Alpha(0), Obj: deltaFormation(EncodeInt(4))},
	}}
	r := in.Dataize(term)
	if !r.IsBytes() {
		t.Fatalf("residual: %s", r.Term)
	}
	if n, _ := DecodeInt(r.Bytes); n != 20 {
		t.Errorf("(2+3)*4 = %d", n)
	}
}

func TestDataizeNormalizesFirst(t *testing.T) {
	// The rewrite driver runs before inspection.
	src, err := rules.ParseRuleset([]byte(`
rules:
- name: unwrap
  pattern: "⟦ w ↦ !x ⟧"
  result: "!x"
`))
	if err != nil {
		t.Fatal(err)
	}
	rs, err := src.Compile(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	in := New(rs, nil)

	r := in.Dataize(parse(t, "⟦ w ↦ ⟦ Δ ⤍ 0A- ⟧ ⟧"))
	if !r.IsBytes() || r.Bytes.String() != "0A-" {
		t.Fatalf("got %v", r)
	}
}

func TestDataizeResidual(t *testing.T) {
	// P3: a normal-form term without Δ stays residual, unchanged.
	in := newInterp(t)
	term := parse(t, "⟦ a ↦ ξ.b ⟧")
	r := in.Dataize(term)
	if r.IsBytes() {
		t.Fatal("unexpectedly produced bytes")
	}
	if !syntax.Equal(r.Term, term) {
		t.Errorf("residual changed: %s", r.Term)
	}
}

func TestPackage(t *testing.T) {
	in := newInterp(t)
	term := parse(t, `⟦
		λ ⤍ Package,
		a ↦ ⟦ Δ ⤍ 00-00-00-00-00-00-00-01 ⟧,
		b ↦ ⟦
			λ ⤍ Lorg_eolang_int_plus,
			ρ ↦ ⟦ Δ ⤍ 00-00-00-00-00-00-00-02 ⟧,
			α0 ↦ ⟦ Δ ⤍ 00-00-00-00-00-00-00-03 ⟧
		⟧,
		c ↦ ξ.missing
	⟧`)

	r := in.Dataize(term)
	if r.IsBytes() {
		t.Fatal("a package is not bytes")
	}
	f, is := r.Term.(*syntax.Formation)
	if !is {
		t.Fatalf("got %T", r.Term)
	}

	if lambdaOf(f) == nil {
		t.Error("λ Package binding should survive")
	}

	b := payloadOf(f, syntax.Label("b")).(*syntax.Formation)
	d := deltaOf(b)
	if d == nil {
		t.Fatalf("b not dataized: %s", b)
	}
	if n, _ := DecodeInt(d.Bytes); n != 5 {
		t.Errorf("b = %d", n)
	}

	// The undataizable binding is left unchanged.
	c := payloadOf(f, syntax.Label("c"))
	if got := c.String(); got != "ξ.missing" {
		t.Errorf("c = %q", got)
	}
}

func TestPackageDisabledInHeads(t *testing.T) {
	// Inside the head of a dispatch the package machinery is off,
	// so the λ Package formation is opaque there.
	in := newInterp(t)
	term := &syntax.Dispatch{
		Obj:  parse(t, "⟦ λ ⤍ Package, a ↦ ⟦ Δ ⤍ 01- ⟧ ⟧"),
		Attr: syntax.Label("a"),
	}
	r := in.Dataize(term)
	if r.IsBytes() {
		t.Fatal("unexpectedly reduced")
	}
	if !syntax.Equal(r.Term, term) {
		t.Errorf("residual changed: %s", r.Term)
	}
}

func TestControlBoundsRespected(t *testing.T) {
	// A looping ruleset: dataization gives up via its Control
	// instead of spinning.
	src, err := rules.ParseRuleset([]byte(`
rules:
- name: spin
  pattern: "⟦ spin ↦ !x ⟧"
  result: "⟦ spin ↦ ⟦ spin ↦ !x ⟧ ⟧"
`))
	if err != nil {
		t.Fatal(err)
	}
	rs, err := src.Compile(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	in := New(rs, &rewrite.Control{MaxDepth: 5, MaxSteps: 100, MaxTermSize: 100})

	r := in.Dataize(parse(t, "⟦ spin ↦ ξ ⟧"))
	if r.IsBytes() {
		t.Fatal("a loop produced bytes")
	}
}
