package syntax

import (
	"testing"
)

func parse(t *testing.T, src string) Object {
	t.Helper()
	obj, err := ParseObject(src)
	if err != nil {
		t.Fatalf("ParseObject(%q) error: %s", src, err)
	}
	return obj
}

func TestParsePrintRoundTrip(t *testing.T) {
	srcs := []string{
		"Φ",
		"ξ",
		"⊥",
		"⟦ ⟧",
		"⟦ a ↦ ξ.b, c ↦ ∅ ⟧",
		"⟦ Δ ⤍ 01-02 ⟧",
		"⟦ Δ ⤍ 00- ⟧",
		"⟦ Δ ⤍ -- ⟧",
		"⟦ λ ⤍ Lorg_eolang_int_plus ⟧",
		"ξ.b(c ↦ ⟦ ⟧).d",
		"Φ.org.eolang.int(Δ ⤍ 00-00-00-00-00-00-00-02)",
		"⟦ a ↦ ⟦ b ↦ ⟦ c ↦ ∅, d ↦ ⟦ φ ↦ ξ.ρ.c ⟧ ⟧, e ↦ ξ.b(c ↦ ⟦ ⟧).d ⟧.e ⟧",
		"⟦ φ ↦ ξ.ρ.c, ν ↦ ⟦ Δ ⤍ 00- ⟧ ⟧",
		"⟦ α0 ↦ Φ, α1 ↦ ξ ⟧",
		"!x",
		"⟦ !B1, a ↦ !x, !B2 ⟧",
		"⟦ !a ↦ !x ⟧",
		"@phi-of(!x)",
	}
	for _, src := range srcs {
		obj := parse(t, src)
		got := obj.String()
		if got != src {
			t.Errorf("round trip: got %q, wanted %q", got, src)
		}
	}
}

func TestParseProgramBraces(t *testing.T) {
	p, err := ParseProgram("{ ⟦ a ↦ ξ ⟧ }")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := p.String(), "{ ⟦ a ↦ ξ ⟧ }"; got != want {
		t.Errorf("got %q, wanted %q", got, want)
	}

	// Unwrapped programs also parse.
	if _, err = ParseProgram("⟦ a ↦ ξ ⟧"); err != nil {
		t.Fatal(err)
	}
}

func TestParseErrors(t *testing.T) {
	for _, src := range []string{
		"",
		"⟦",
		"⟦ a ⟧",
		"⟦ a ↦ ⟧",
		"⟦ Δ ⤍ zz ⟧",
		"ξ.",
		"Φ(",
		"⟦ α ↦ ξ ⟧",
		"{ ⟦ ⟧",
	} {
		if _, err := ParseObject(src); err == nil {
			t.Errorf("ParseObject(%q) unexpectedly succeeded", src)
		}
	}
}

func TestParseErrorHasPosition(t *testing.T) {
	_, err := ParseObject("⟦ a ↦\n⟧")
	pe, is := err.(*ParseError)
	if !is {
		t.Fatalf("wanted *ParseError, got %T (%v)", err, err)
	}
	if pe.Line != 2 {
		t.Errorf("got line %d, wanted 2", pe.Line)
	}
}

func TestEqualIgnoresBindingOrder(t *testing.T) {
	a := parse(t, "⟦ b ↦ ξ, a ↦ Φ, ρ ↦ ξ, α1 ↦ ξ, α0 ↦ Φ, φ ↦ ξ ⟧")
	b := parse(t, "⟦ φ ↦ ξ, ρ ↦ ξ, a ↦ Φ, b ↦ ξ, α0 ↦ Φ, α1 ↦ ξ ⟧")
	if !Equal(a, b) {
		t.Errorf("Equal(%s, %s) = false", a, b)
	}
	if got := Canonical(a).String(); got != b.String() {
		t.Errorf("Canonical: got %q, wanted %q", got, b.String())
	}
	// Equal(t, Canonical(t)) for good measure.
	if !Equal(a, Canonical(a)) {
		t.Errorf("Equal(t, Canonical(t)) = false")
	}
}

func TestEqualDistinguishes(t *testing.T) {
	pairs := [][2]string{
		{"⟦ a ↦ ξ ⟧", "⟦ a ↦ Φ ⟧"},
		{"⟦ a ↦ ξ ⟧", "⟦ b ↦ ξ ⟧"},
		{"⟦ a ↦ ∅ ⟧", "⟦ a ↦ ξ ⟧"},
		{"⟦ Δ ⤍ 01- ⟧", "⟦ Δ ⤍ 02- ⟧"},
		{"⟦ Δ ⤍ 01- ⟧", "⟦ Δ ⤍ 01-01 ⟧"},
		{"⟦ λ ⤍ A ⟧", "⟦ λ ⤍ B ⟧"},
		{"ξ.a", "ξ.b"},
		{"ξ", "Φ"},
		{"⟦ ⟧", "⊥"},
	}
	for _, p := range pairs {
		a, b := parse(t, p[0]), parse(t, p[1])
		if Equal(a, b) {
			t.Errorf("Equal(%s, %s) = true", a, b)
		}
	}
}

func TestCanonicalDoesNotMutate(t *testing.T) {
	a := parse(t, "⟦ b ↦ ξ, a ↦ Φ ⟧")
	before := a.String()
	Canonical(a)
	if got := a.String(); got != before {
		t.Errorf("Canonical mutated its input: %q became %q", before, got)
	}
}

func TestSize(t *testing.T) {
	for _, c := range []struct {
		src  string
		want int
	}{
		{"ξ", 1},
		{"⟦ ⟧", 1},
		{"⟦ a ↦ ξ ⟧", 3},
		{"ξ.a", 2},
		{"ξ.a(b ↦ Φ)", 5},
		{"⟦ Δ ⤍ 01-02 ⟧", 2},
	} {
		if got := Size(parse(t, c.src)); got != c.want {
			t.Errorf("Size(%s) = %d, wanted %d", c.src, got, c.want)
		}
	}
}

func TestHasMeta(t *testing.T) {
	for _, c := range []struct {
		src  string
		want bool
	}{
		{"⟦ a ↦ ξ ⟧", false},
		{"!x", true},
		{"⟦ !B ⟧", true},
		{"⟦ !a ↦ ξ ⟧", true},
		{"ξ.!a", true},
		{"@phi-of(ξ)", true},
		{"⟦ a ↦ ⟦ b ↦ !x ⟧ ⟧", true},
	} {
		if got := HasMeta(parse(t, c.src)); got != c.want {
			t.Errorf("HasMeta(%s) = %v, wanted %v", c.src, got, c.want)
		}
	}
}

func TestBytesString(t *testing.T) {
	for _, c := range []struct {
		in   Bytes
		want string
	}{
		{Bytes{}, "--"},
		{Bytes{0}, "00-"},
		{Bytes{0xDE, 0xAD}, "DE-AD"},
		{Bytes{0, 0, 0, 0, 0, 0, 0, 2}, "00-00-00-00-00-00-00-02"},
	} {
		if got := c.in.String(); got != c.want {
			t.Errorf("Bytes%v = %q, wanted %q", []byte(c.in), got, c.want)
		}
	}
}

func TestIndent(t *testing.T) {
	obj := parse(t, "⟦ a ↦ ⟦ b ↦ ξ ⟧ ⟧")
	got := Indent(obj)
	want := "⟦\n  a ↦ ⟦\n    b ↦ ξ\n  ⟧\n⟧"
	if got != want {
		t.Errorf("Indent: got %q, wanted %q", got, want)
	}
}
