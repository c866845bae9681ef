package syntax

// A hand-written recursive-descent parser for the concrete φ-syntax
// and for MetaPHI patterns.  The grammar is small:
//
//	Program  = ["{"] Object ["}"]
//	Object   = Primary { "." Attribute | "(" Bindings ")" }
//	Primary  = "Φ" | "ξ" | "⊥" | "!"Id | "@"Id "(" Object ")" | Formation
//	Formation = "⟦" Bindings "⟧"
//	Bindings = [ Binding { "," Binding } ]
//	Binding  = "Δ" "⤍" Bytes | "λ" "⤍" Id | "!"Id [ "↦" Value ]
//	         | Attribute "↦" Value
//	Value    = "∅" | Object

type parser struct {
	s   *scanner
	tok token
}

// ParseProgram parses a φ-program, with or without the { } wrapper
// around the global formation.
func ParseProgram(src string) (*Program, error) {
	p := &parser{s: newScanner(src)}
	if err := p.advance(); err != nil {
		return nil, err
	}

	braced := p.tok.kind == tokLBrace
	if braced {
		if err := p.advance(); err != nil {
			return nil, err
		}
	}

	obj, err := p.parseObject()
	if err != nil {
		return nil, err
	}

	if braced {
		if err := p.expect(tokRBrace, "}"); err != nil {
			return nil, err
		}
	}
	if p.tok.kind != tokEOF {
		return nil, p.unexpected("end of program")
	}
	return &Program{Obj: obj}, nil
}

// ParseObject parses a single term, as used for MetaPHI patterns and
// replacements in rulesets.
func ParseObject(src string) (Object, error) {
	p := &parser{s: newScanner(src)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	obj, err := p.parseObject()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, p.unexpected("end of input")
	}
	return obj, nil
}

// ParseAttribute parses a single attribute, as used in ruleset
// present/absent attribute lists.
func ParseAttribute(src string) (Attribute, error) {
	p := &parser{s: newScanner(src)}
	if err := p.advance(); err != nil {
		return Attribute{}, err
	}
	a, err := p.parseAttribute()
	if err != nil {
		return Attribute{}, err
	}
	if p.tok.kind != tokEOF {
		return Attribute{}, p.unexpected("end of input")
	}
	return a, nil
}

func (p *parser) advance() error {
	t, err := p.s.next()
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

func (p *parser) expect(k tokenKind, what string) error {
	if p.tok.kind != k {
		return p.unexpected(what)
	}
	return p.advance()
}

func (p *parser) unexpected(wanted string) error {
	got := p.tok.text
	if p.tok.kind == tokEOF {
		got = "end of input"
	}
	return &ParseError{
		Line: p.tok.line,
		Col:  p.tok.col,
		Msg:  "expected " + wanted + ", found " + got,
	}
}

func (p *parser) parseObject() (Object, error) {
	obj, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		switch p.tok.kind {
		case tokDot:
			if err := p.advance(); err != nil {
				return nil, err
			}
			attr, err := p.parseAttribute()
			if err != nil {
				return nil, err
			}
			obj = &Dispatch{Obj: obj, Attr: attr}
		case tokLParen:
			if err := p.advance(); err != nil {
				return nil, err
			}
			args, err := p.parseBindings(tokRParen)
			if err != nil {
				return nil, err
			}
			if err := p.expect(tokRParen, ")"); err != nil {
				return nil, err
			}
			obj = &Application{Obj: obj, Args: args}
		default:
			return obj, nil
		}
	}
}

func (p *parser) parsePrimary() (Object, error) {
	switch p.tok.kind {
	case tokGlobal:
		return &Global{}, p.advance()
	case tokThis:
		return &This{}, p.advance()
	case tokTerm:
		return &Termination{}, p.advance()
	case tokMeta:
		name := p.tok.text
		return &MetaObject{Name: name}, p.advance()
	case tokMetaFn:
		name := p.tok.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		if err := p.expect(tokLParen, "("); err != nil {
			return nil, err
		}
		arg, err := p.parseObject()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokRParen, ")"); err != nil {
			return nil, err
		}
		return &MetaFunction{Name: name, Arg: arg}, nil
	case tokLForm:
		if err := p.advance(); err != nil {
			return nil, err
		}
		bs, err := p.parseBindings(tokRForm)
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokRForm, "⟧"); err != nil {
			return nil, err
		}
		return &Formation{Bindings: bs}, nil
	}
	return nil, p.unexpected("object")
}

func (p *parser) parseBindings(end tokenKind) ([]Binding, error) {
	var acc []Binding
	if p.tok.kind == end {
		return acc, nil
	}
	for {
		b, err := p.parseBinding()
		if err != nil {
			return nil, err
		}
		acc = append(acc, b)
		if p.tok.kind != tokComma {
			return acc, nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
}

func (p *parser) parseBinding() (Binding, error) {
	switch p.tok.kind {
	case tokDelta:
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.tok.kind != tokDashArrow {
			return nil, p.unexpected("⤍")
		}
		t, err := p.s.bytesToken()
		if err != nil {
			return nil, err
		}
		b := &DeltaBinding{Bytes: t.bytes}
		return b, p.advance()
	case tokLambda:
		if err := p.advance(); err != nil {
			return nil, err
		}
		if err := p.expect(tokDashArrow, "⤍"); err != nil {
			return nil, err
		}
		if p.tok.kind != tokIdent {
			return nil, p.unexpected("built-in name")
		}
		fn := p.tok.text
		return &LambdaBinding{Fn: fn}, p.advance()
	case tokMeta:
		name := p.tok.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.tok.kind != tokMapsto {
			// Bare !B matches a sub-sequence of bindings.
			return &MetaBindings{Name: name}, nil
		}
		return p.parseBoundValue(MetaAttr(name))
	}

	attr, err := p.parseAttribute()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokMapsto {
		return nil, p.unexpected("↦")
	}
	return p.parseBoundValue(attr)
}

func (p *parser) parseBoundValue(attr Attribute) (Binding, error) {
	if err := p.expect(tokMapsto, "↦"); err != nil {
		return nil, err
	}
	if p.tok.kind == tokVoid {
		return &EmptyBinding{Attr: attr}, p.advance()
	}
	obj, err := p.parseObject()
	if err != nil {
		return nil, err
	}
	return &AlphaBinding{Attr: attr, Obj: obj}, nil
}

func (p *parser) parseAttribute() (Attribute, error) {
	switch p.tok.kind {
	case tokPhi:
		return Phi, p.advance()
	case tokRho:
		return Rho, p.advance()
	case tokSigma:
		return Sigma, p.advance()
	case tokVertex:
		return Vertex, p.advance()
	case tokAlpha:
		a := Alpha(p.tok.index)
		return a, p.advance()
	case tokIdent:
		a := Label(p.tok.text)
		return a, p.advance()
	case tokMeta:
		a := MetaAttr(p.tok.text)
		return a, p.advance()
	}
	return Attribute{}, p.unexpected("attribute")
}
