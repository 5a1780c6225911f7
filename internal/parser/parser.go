// Package parser builds the raw syntax tree (internal/ast) from a token
// stream, per spec §4.1. It performs no semantic checks beyond grammar shape
// (balanced delimiters, even map bodies); those belong to internal/analyzer.
package parser

import (
	"math/big"
	"strconv"

	"github.com/andreasronge/ptc-runner-sub009/internal/ast"
	"github.com/andreasronge/ptc-runner-sub009/internal/errs"
	"github.com/andreasronge/ptc-runner-sub009/internal/lexer"
	"github.com/andreasronge/ptc-runner-sub009/internal/token"
)

// Parser is a one-shot recursive-descent reader over a token stream.
type Parser struct {
	l    *lexer.Lexer
	cur  token.Token
	peek token.Token
}

// Parse reads every top-level form in source and returns a Program, or the
// first parse_error encountered.
func Parse(source string) (*ast.Program, *errs.Error) {
	p := &Parser{l: lexer.New(source)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.advance(); err != nil {
		return nil, err
	}

	var forms []ast.Node
	for p.cur.Kind != token.EOF {
		form, err := p.parseForm()
		if err != nil {
			return nil, err
		}
		forms = append(forms, form)
	}
	return &ast.Program{Forms: forms}, nil
}

func (p *Parser) advance() *errs.Error {
	p.cur = p.peek
	tok, err := p.l.NextToken()
	if err != nil {
		if lerr, ok := err.(*lexer.Error); ok {
			return &errs.Error{Reason: errs.ParseError, Message: lerr.Msg, Line: lerr.Line, Column: lerr.Col}
		}
		return errs.New(errs.ParseError, "%s", err.Error())
	}
	p.peek = tok
	return nil
}

func posOf(t token.Token) ast.Pos { return ast.Pos{Line: t.Line, Column: t.Column} }

func (p *Parser) parseErrorf(t token.Token, format string, args ...interface{}) *errs.Error {
	return errs.New(errs.ParseError, format, args...).At(t.Line, t.Column)
}

// parseForm dispatches on the current token's kind and returns one Node,
// leaving cur positioned just past the form.
func (p *Parser) parseForm() (ast.Node, *errs.Error) {
	t := p.cur
	switch t.Kind {
	case token.NIL:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.NilLit{ast.Base{Pos: posOf(t)}}, nil
	case token.TRUE:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.BoolLit{ast.Base{Pos: posOf(t)}, true}, nil
	case token.FALSE:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.BoolLit{ast.Base{Pos: posOf(t)}, false}, nil
	case token.INT:
		if err := p.advance(); err != nil {
			return nil, err
		}
		if _, ok := new(big.Int).SetString(t.Lexeme, 10); !ok {
			return nil, p.parseErrorf(t, "invalid integer literal %q", t.Lexeme)
		}
		return &ast.IntLit{ast.Base{Pos: posOf(t)}, t.Lexeme}, nil
	case token.FLOAT:
		if err := p.advance(); err != nil {
			return nil, err
		}
		if _, err := strconv.ParseFloat(t.Lexeme, 64); err != nil {
			return nil, p.parseErrorf(t, "invalid float literal %q", t.Lexeme)
		}
		return &ast.FloatLit{ast.Base{Pos: posOf(t)}, t.Lexeme}, nil
	case token.STRING:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.StringLit{ast.Base{Pos: posOf(t)}, t.Lexeme}, nil
	case token.CHAR:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.CharLit{ast.Base{Pos: posOf(t)}, t.Lexeme}, nil
	case token.KEYWORD:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.KeywordLit{ast.Base{Pos: posOf(t)}, t.Lexeme}, nil
	case token.PERCENT:
		if err := p.advance(); err != nil {
			return nil, err
		}
		idx := 0
		if len(t.Lexeme) > 1 {
			n, err := strconv.Atoi(t.Lexeme[1:])
			if err != nil {
				return nil, p.parseErrorf(t, "invalid placeholder %q", t.Lexeme)
			}
			idx = n
		}
		return &ast.Percent{ast.Base{Pos: posOf(t)}, idx}, nil
	case token.SYMBOL:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return parseSymbol(t), nil
	case token.LPAREN:
		return p.parseList()
	case token.LBRACKET:
		return p.parseVector()
	case token.LBRACE:
		return p.parseMap()
	case token.HASHBRACE:
		return p.parseSet()
	case token.HASHPAREN:
		return p.parseLambda()
	case token.HASHQUOTE:
		return p.parseVarRef()
	case token.RPAREN, token.RBRACKET, token.RBRACE:
		return nil, p.parseErrorf(t, "unexpected %q", t.Lexeme)
	case token.EOF:
		return nil, p.parseErrorf(t, "unexpected end of input")
	default:
		return nil, p.parseErrorf(t, "unexpected token %q", t.Lexeme)
	}
}

func parseSymbol(t token.Token) *ast.Symbol {
	name := t.Lexeme
	if name == "/" {
		return &ast.Symbol{ast.Base{Pos: posOf(t)}, "", "/"}
	}
	// Split on the last '/' so namespaces like clojure.string/trim work.
	for i := len(name) - 1; i > 0; i-- {
		if name[i] == '/' {
			return &ast.Symbol{ast.Base{Pos: posOf(t)}, name[:i], name[i+1:]}
		}
	}
	return &ast.Symbol{ast.Base{Pos: posOf(t)}, "", name}
}

func (p *Parser) parseList() (ast.Node, *errs.Error) {
	open := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	var items []ast.Node
	for p.cur.Kind != token.RPAREN {
		if p.cur.Kind == token.EOF {
			return nil, p.parseErrorf(open, "unbalanced '(' opened at line %d col %d", open.Line, open.Column)
		}
		item, err := p.parseForm()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return &ast.List{ast.Base{Pos: posOf(open)}, items}, nil
}

func (p *Parser) parseVector() (ast.Node, *errs.Error) {
	open := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	var items []ast.Node
	for p.cur.Kind != token.RBRACKET {
		if p.cur.Kind == token.EOF {
			return nil, p.parseErrorf(open, "unbalanced '[' opened at line %d col %d", open.Line, open.Column)
		}
		item, err := p.parseForm()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return &ast.Vector{ast.Base{Pos: posOf(open)}, items}, nil
}

func (p *Parser) parseMap() (ast.Node, *errs.Error) {
	open := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	var keys, values []ast.Node
	for p.cur.Kind != token.RBRACE {
		if p.cur.Kind == token.EOF {
			return nil, p.parseErrorf(open, "unbalanced '{' opened at line %d col %d", open.Line, open.Column)
		}
		k, err := p.parseForm()
		if err != nil {
			return nil, err
		}
		if p.cur.Kind == token.RBRACE {
			return nil, p.parseErrorf(open, "map literal requires an even number of forms")
		}
		v, err := p.parseForm()
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
		values = append(values, v)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return &ast.MapLit{ast.Base{Pos: posOf(open)}, keys, values}, nil
}

func (p *Parser) parseSet() (ast.Node, *errs.Error) {
	open := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	var items []ast.Node
	for p.cur.Kind != token.RBRACE {
		if p.cur.Kind == token.EOF {
			return nil, p.parseErrorf(open, "unbalanced '#{' opened at line %d col %d", open.Line, open.Column)
		}
		item, err := p.parseForm()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return &ast.SetLit{ast.Base{Pos: posOf(open)}, items}, nil
}

func (p *Parser) parseLambda() (ast.Node, *errs.Error) {
	open := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	var items []ast.Node
	for p.cur.Kind != token.RPAREN {
		if p.cur.Kind == token.EOF {
			return nil, p.parseErrorf(open, "unbalanced '#(' opened at line %d col %d", open.Line, open.Column)
		}
		if p.cur.Kind == token.HASHPAREN {
			return nil, p.parseErrorf(p.cur, "nested #(...) is not allowed")
		}
		item, err := p.parseForm()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return &ast.Lambda{ast.Base{Pos: posOf(open)}, &ast.List{ast.Base{Pos: posOf(open)}, items}}, nil
}

func (p *Parser) parseVarRef() (ast.Node, *errs.Error) {
	quote := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.cur.Kind != token.SYMBOL {
		return nil, p.parseErrorf(p.cur, "expected symbol after #'")
	}
	name := p.cur.Lexeme
	if err := p.advance(); err != nil {
		return nil, err
	}
	return &ast.VarRef{ast.Base{Pos: posOf(quote)}, name}, nil
}
