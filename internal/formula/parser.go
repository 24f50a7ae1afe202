package formula

import (
	"fmt"
	"strings"
)

// Expression is a compiled formula, parsed once and evaluated many times.
type Expression struct {
	src  string
	root node
}

// Source returns the original formula string.
func (e *Expression) Source() string {
	return e.src
}

// Parse compiles a formula string. The grammar covers infix arithmetic,
// comparisons, and the named functions ROUNDUP, MAX, AND, OR, IF.
func Parse(src string) (*Expression, error) {
	p := &parser{lex: lexer{src: src}, src: src}
	if err := p.advance(); err != nil {
		return nil, evalErr(src, ErrSyntax, "%v", err)
	}
	root, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, evalErr(src, ErrSyntax, "unexpected trailing input at offset %d", p.tok.pos)
	}
	return &Expression{src: src, root: root}, nil
}

// MustParse is a test helper; it panics on parse failure.
func MustParse(src string) *Expression {
	expr, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return expr
}

type parser struct {
	lex lexer
	src string
	tok token
}

func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) syntaxErr(format string, args ...any) error {
	return evalErr(p.src, ErrSyntax, format, args...)
}

// comparison := additive (('<'|'>'|'<='|'>='|'=='|'!=') additive)?
func (p *parser) parseComparison() (node, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	switch p.tok.kind {
	case tokLT, tokGT, tokLE, tokGE, tokEQ, tokNE:
		op := p.tok.kind
		if err := p.advance(); err != nil {
			return nil, p.syntaxErr("%v", err)
		}
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		return &binaryNode{op: op, left: left, right: right}, nil
	}
	return left, nil
}

// additive := multiplicative (('+'|'-') multiplicative)*
func (p *parser) parseAdditive() (node, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokPlus || p.tok.kind == tokMinus {
		op := p.tok.kind
		if err := p.advance(); err != nil {
			return nil, p.syntaxErr("%v", err)
		}
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, left: left, right: right}
	}
	return left, nil
}

// multiplicative := unary (('*'|'/') unary)*
func (p *parser) parseMultiplicative() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokStar || p.tok.kind == tokSlash {
		op := p.tok.kind
		if err := p.advance(); err != nil {
			return nil, p.syntaxErr("%v", err)
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, left: left, right: right}
	}
	return left, nil
}

// unary := '-'? primary
func (p *parser) parseUnary() (node, error) {
	if p.tok.kind == tokMinus {
		if err := p.advance(); err != nil {
			return nil, p.syntaxErr("%v", err)
		}
		child, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		return &unaryNode{child: child}, nil
	}
	return p.parsePrimary()
}

// primary := number | variable | ident '(' args ')' | '(' comparison ')'
func (p *parser) parsePrimary() (node, error) {
	switch p.tok.kind {
	case tokNumber:
		n := &numberNode{value: p.tok.num}
		if err := p.advance(); err != nil {
			return nil, p.syntaxErr("%v", err)
		}
		return n, nil
	case tokVariable:
		name := p.tok.text
		if err := p.advance(); err != nil {
			return nil, p.syntaxErr("%v", err)
		}
		if dot := strings.IndexByte(name, '.'); dot >= 0 {
			component := name[:dot]
			attribute := name[dot+1:]
			if component == "" || attribute == "" || strings.Contains(attribute, ".") {
				return nil, p.syntaxErr("malformed attribute reference [%s]", name)
			}
			return &variableNode{name: component, attribute: attribute}, nil
		}
		return &variableNode{name: name}, nil
	case tokIdent:
		return p.parseCall()
	case tokLParen:
		if err := p.advance(); err != nil {
			return nil, p.syntaxErr("%v", err)
		}
		inner, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		if p.tok.kind != tokRParen {
			return nil, p.syntaxErr("expected ')' at offset %d", p.tok.pos)
		}
		if err := p.advance(); err != nil {
			return nil, p.syntaxErr("%v", err)
		}
		return inner, nil
	case tokEOF:
		return nil, p.syntaxErr("unexpected end of expression")
	default:
		return nil, p.syntaxErr("unexpected token at offset %d", p.tok.pos)
	}
}

func (p *parser) parseCall() (node, error) {
	name := strings.ToUpper(p.tok.text)
	pos := p.tok.pos
	if err := p.advance(); err != nil {
		return nil, p.syntaxErr("%v", err)
	}
	if p.tok.kind != tokLParen {
		return nil, p.syntaxErr("expected '(' after %s at offset %d", name, pos)
	}
	if err := p.advance(); err != nil {
		return nil, p.syntaxErr("%v", err)
	}

	spec, ok := functions[name]
	if !ok {
		return nil, evalErr(p.src, ErrUnknownFunction, "%s", name)
	}

	var args []node
	if p.tok.kind != tokRParen {
		for {
			arg, err := p.parseComparison()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.tok.kind != tokComma {
				break
			}
			if err := p.advance(); err != nil {
				return nil, p.syntaxErr("%v", err)
			}
		}
	}
	if p.tok.kind != tokRParen {
		return nil, p.syntaxErr("expected ')' closing %s at offset %d", name, p.tok.pos)
	}
	if err := p.advance(); err != nil {
		return nil, p.syntaxErr("%v", err)
	}

	if len(args) < spec.minArgs || (spec.maxArgs >= 0 && len(args) > spec.maxArgs) {
		return nil, evalErr(p.src, ErrArity, "%s takes %s, got %d", name, spec.arityHint(), len(args))
	}
	return &callNode{fn: name, args: args}, nil
}

type functionSpec struct {
	minArgs int
	maxArgs int // -1 for variadic
}

func (s functionSpec) arityHint() string {
	if s.maxArgs < 0 {
		return fmt.Sprintf("at least %d arguments", s.minArgs)
	}
	if s.minArgs == s.maxArgs {
		return fmt.Sprintf("%d arguments", s.minArgs)
	}
	return fmt.Sprintf("%d to %d arguments", s.minArgs, s.maxArgs)
}

var functions = map[string]functionSpec{
	"ROUNDUP": {minArgs: 1, maxArgs: 1},
	"MAX":     {minArgs: 1, maxArgs: -1},
	"AND":     {minArgs: 1, maxArgs: -1},
	"OR":      {minArgs: 1, maxArgs: -1},
	"IF":      {minArgs: 3, maxArgs: 3},
}
