package syntax

import (
	"fmt"
	"strings"
)

// The printer emits the canonical concrete syntax.  Every variant
// prints to a form the parser reads back, so String is also the
// canonical key used for term identity in search sets.

func (f *Formation) String() string {
	if len(f.Bindings) == 0 {
		return "⟦ ⟧"
	}
	var b strings.Builder
	b.WriteString("⟦ ")
	for i, bd := range f.Bindings {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(bd.String())
	}
	b.WriteString(" ⟧")
	return b.String()
}

func (a *Application) String() string {
	var b strings.Builder
	b.WriteString(a.Obj.String())
	b.WriteString("(")
	for i, bd := range a.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(bd.String())
	}
	b.WriteString(")")
	return b.String()
}

func (d *Dispatch) String() string {
	return d.Obj.String() + "." + d.Attr.String()
}

func (*Global) String() string      { return "Φ" }
func (*This) String() string        { return "ξ" }
func (*Termination) String() string { return "⊥" }

func (m *MetaObject) String() string { return "!" + m.Name }

func (m *MetaFunction) String() string {
	return "@" + m.Name + "(" + m.Arg.String() + ")"
}

func (a Attribute) String() string {
	switch a.Kind {
	case AttrPhi:
		return "φ"
	case AttrRho:
		return "ρ"
	case AttrSigma:
		return "σ"
	case AttrVertex:
		return "ν"
	case AttrLabel:
		return a.Label
	case AttrAlpha:
		return fmt.Sprintf("α%d", a.Index)
	case AttrMeta:
		return "!" + a.Label
	}
	return "?"
}

func (b *AlphaBinding) String() string {
	return b.Attr.String() + " ↦ " + b.Obj.String()
}

func (b *EmptyBinding) String() string {
	return b.Attr.String() + " ↦ ∅"
}

func (b *DeltaBinding) String() string {
	return "Δ ⤍ " + b.Bytes.String()
}

func (b *LambdaBinding) String() string {
	return "λ ⤍ " + b.Fn
}

func (b *MetaBindings) String() string { return "!" + b.Name }

// String prints hex pairs separated by dashes.  The empty sequence is
// "--" and a single byte keeps a trailing dash so that the form is
// never ambiguous with a label.
func (b Bytes) String() string {
	switch len(b) {
	case 0:
		return "--"
	case 1:
		return fmt.Sprintf("%02X-", b[0])
	}
	parts := make([]string, len(b))
	for i, x := range b {
		parts[i] = fmt.Sprintf("%02X", x)
	}
	return strings.Join(parts, "-")
}

func (p *Program) String() string {
	return "{ " + p.Obj.String() + " }"
}

// Indent renders a term across multiple lines for reports and error
// messages.  One binding per line, two-space steps.
func Indent(obj Object) string {
	var b strings.Builder
	indent(&b, obj, 0)
	return b.String()
}

func indent(b *strings.Builder, obj Object, depth int) {
	pad := strings.Repeat("  ", depth)
	switch v := obj.(type) {
	case *Formation:
		if len(v.Bindings) == 0 {
			b.WriteString("⟦ ⟧")
			return
		}
		b.WriteString("⟦\n")
		for i, bd := range v.Bindings {
			b.WriteString(pad + "  ")
			indentBinding(b, bd, depth+1)
			if i < len(v.Bindings)-1 {
				b.WriteString(",")
			}
			b.WriteString("\n")
		}
		b.WriteString(pad + "⟧")
	case *Application:
		indent(b, v.Obj, depth)
		b.WriteString("(")
		for i, bd := range v.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			indentBinding(b, bd, depth)
		}
		b.WriteString(")")
	case *Dispatch:
		indent(b, v.Obj, depth)
		b.WriteString("." + v.Attr.String())
	default:
		b.WriteString(obj.String())
	}
}

func indentBinding(b *strings.Builder, bd Binding, depth int) {
	switch v := bd.(type) {
	case *AlphaBinding:
		b.WriteString(v.Attr.String() + " ↦ ")
		indent(b, v.Obj, depth)
	default:
		b.WriteString(bd.String())
	}
}
