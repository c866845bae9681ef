package rules

import (
	"github.com/phicalculus/phin/match"
	"github.com/phicalculus/phin/syntax"
)

// Condition is a rule side condition evaluated against one match's
// bindings.  The nf callback answers "is this subterm in normal form
// under the current ruleset"; it is supplied by the rewrite driver so
// that a rule conditioned on nf behaves correctly when added to its
// own ruleset.
type Condition interface {
	Holds(bs match.Bindings, nf func(syntax.Object) bool) bool
	validate(rule string, bound *metas) error
}

// NormalFormCond requires the subterms bound to the named
// meta-variables to be in normal form.
type NormalFormCond struct {
	Metas []string
}

func (c *NormalFormCond) Holds(bs match.Bindings, nf func(syntax.Object) bool) bool {
	for _, name := range c.Metas {
		obj, have := bs.Object(name)
		if !have {
			return false
		}
		if !nf(obj) {
			return false
		}
	}
	return true
}

func (c *NormalFormCond) validate(rule string, bound *metas) error {
	for _, name := range c.Metas {
		if !bound.objects[name] {
			return &MalformedRule{Rule: rule, Msg: `nf names unbound "!` + name + `"`}
		}
	}
	return nil
}

// PresentCond requires every listed attribute to occur in the
// bindings-sequence bound to BindingsID.
type PresentCond struct {
	Attrs      []syntax.Attribute
	BindingsID string
}

func (c *PresentCond) Holds(bs match.Bindings, _ func(syntax.Object) bool) bool {
	return attrsIn(c.Attrs, c.BindingsID, bs, true)
}

func (c *PresentCond) validate(rule string, bound *metas) error {
	return validateAttrsCond("present_attrs", rule, c.Attrs, c.BindingsID, bound)
}

// AbsentCond requires none of the listed attributes to occur.
type AbsentCond struct {
	Attrs      []syntax.Attribute
	BindingsID string
}

func (c *AbsentCond) Holds(bs match.Bindings, _ func(syntax.Object) bool) bool {
	return attrsIn(c.Attrs, c.BindingsID, bs, false)
}

func (c *AbsentCond) validate(rule string, bound *metas) error {
	return validateAttrsCond("absent_attrs", rule, c.Attrs, c.BindingsID, bound)
}

// attrsIn tests containment of every attribute in the bound
// bindings-sequence.  Meta attributes resolve through the bindings
// first.
func attrsIn(attrs []syntax.Attribute, id string, bs match.Bindings, want bool) bool {
	list, have := bs.BindingList(id)
	if !have {
		return false
	}
	for _, attr := range attrs {
		if attr.Kind == syntax.AttrMeta {
			resolved, have := bs.Attr(attr.Label)
			if !have {
				return false
			}
			attr = resolved
		}
		if containsAttr(list, attr) != want {
			return false
		}
	}
	return true
}

func containsAttr(list []syntax.Binding, attr syntax.Attribute) bool {
	for _, b := range list {
		switch v := b.(type) {
		case *syntax.AlphaBinding:
			if v.Attr == attr {
				return true
			}
		case *syntax.EmptyBinding:
			if v.Attr == attr {
				return true
			}
		}
	}
	return false
}

func validateAttrsCond(kind, rule string, attrs []syntax.Attribute, id string, bound *metas) error {
	if !bound.bindings[id] {
		return &MalformedRule{Rule: rule, Msg: kind + ` names unbound bindings "!` + id + `"`}
	}
	for _, attr := range attrs {
		if attr.Kind == syntax.AttrMeta && !bound.attrs[attr.Label] {
			return &MalformedRule{Rule: rule, Msg: kind + ` names unbound attribute "!` + attr.Label + `"`}
		}
	}
	return nil
}
