// Package parser turns CQ text such as
//
//	Q(x, SUM(y * 2)) :- R(x, y, 'a'), S(y, z), z >= 3
//
// into a query.Query.
package parser

import (
	"fmt"
	"os"
	"strconv"

	"golang.org/x/text/unicode/norm"

	"github.com/wbrown/janus-cq/cq"
	"github.com/wbrown/janus-cq/cq/query"
)

const sumKeyword = "SUM"

// ParseQuery parses a conjunctive query
func ParseQuery(input string) (*query.Query, error) {
	lexer := NewLexer(norm.NFC.String(input))
	if err := lexer.Lex(); err != nil {
		return nil, fmt.Errorf("lex error: %w", err)
	}

	p := &parser{lex: lexer}
	q, err := p.parseQuery()
	if err != nil {
		return nil, err
	}
	return q, nil
}

// ParseFile reads and parses the query stored in path
func ParseFile(path string) (*query.Query, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read query file: %w", err)
	}
	q, err := ParseQuery(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return q, nil
}

type parser struct {
	lex *Lexer
}

func (p *parser) expect(tt TokenType, what string) (Token, error) {
	tok := p.lex.NextToken()
	if tok.Type != tt {
		return tok, fmt.Errorf("expected %s at %d:%d, got %s", what, tok.Line, tok.Col, tok)
	}
	return tok, nil
}

func (p *parser) parseQuery() (*query.Query, error) {
	head, err := p.parseHead()
	if err != nil {
		return nil, fmt.Errorf("error parsing head: %w", err)
	}

	if _, err := p.expect(TokenImplies, "':-'"); err != nil {
		return nil, err
	}

	q := &query.Query{Head: head}
	for {
		atom, err := p.parseAtom()
		if err != nil {
			return nil, fmt.Errorf("error parsing body atom %d: %w", len(q.Body)+1, err)
		}
		q.Body = append(q.Body, atom)

		tok := p.lex.NextToken()
		if tok.Type == TokenEOF {
			break
		}
		if tok.Type != TokenComma {
			return nil, fmt.Errorf("expected ',' or end of query at %d:%d, got %s", tok.Line, tok.Col, tok)
		}
	}

	if len(q.RelationalAtoms()) == 0 {
		return nil, fmt.Errorf("query must have at least one relational atom")
	}
	return q, nil
}

func (p *parser) parseHead() (*query.Head, error) {
	name, err := p.expect(TokenIdent, "head name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenLeftParen, "'('"); err != nil {
		return nil, err
	}

	head := &query.Head{Name: name.Value}
	if p.lex.PeekToken().Type == TokenRightParen {
		p.lex.NextToken()
		return head, nil
	}

	for {
		tok := p.lex.NextToken()
		if tok.Type != TokenIdent {
			return nil, fmt.Errorf("expected variable or SUM at %d:%d, got %s", tok.Line, tok.Col, tok)
		}

		if tok.Value == sumKeyword && p.lex.PeekToken().Type == TokenLeftParen {
			if head.Sum != nil {
				return nil, fmt.Errorf("only one SUM aggregate is allowed (%d:%d)", tok.Line, tok.Col)
			}
			agg, err := p.parseSum()
			if err != nil {
				return nil, err
			}
			head.Sum = agg
		} else {
			if head.Sum != nil {
				return nil, fmt.Errorf("SUM aggregate must be the last head item (%d:%d)", tok.Line, tok.Col)
			}
			head.Variables = append(head.Variables, query.Variable(tok.Value))
		}

		tok = p.lex.NextToken()
		if tok.Type == TokenRightParen {
			return head, nil
		}
		if tok.Type != TokenComma {
			return nil, fmt.Errorf("expected ',' or ')' at %d:%d, got %s", tok.Line, tok.Col, tok)
		}
	}
}

func (p *parser) parseSum() (*query.SumAggregate, error) {
	p.lex.NextToken() // (
	agg := &query.SumAggregate{}
	for {
		term, err := p.parseTerm()
		if err != nil {
			return nil, fmt.Errorf("error parsing SUM factor: %w", err)
		}
		if c, ok := query.AsConstant(term); ok && !c.IsInteger() {
			return nil, fmt.Errorf("SUM factor %s is not an integer", c)
		}
		agg.Factors = append(agg.Factors, term)

		tok := p.lex.NextToken()
		if tok.Type == TokenRightParen {
			return agg, nil
		}
		if tok.Type != TokenStar {
			return nil, fmt.Errorf("expected '*' or ')' at %d:%d, got %s", tok.Line, tok.Col, tok)
		}
	}
}

func (p *parser) parseAtom() (query.Atom, error) {
	tok := p.lex.PeekToken()
	if tok.Type == TokenIdent && p.lex.PeekAhead(1).Type == TokenLeftParen {
		return p.parseRelationalAtom()
	}
	return p.parseComparisonAtom()
}

func (p *parser) parseRelationalAtom() (*query.RelationalAtom, error) {
	name := p.lex.NextToken()
	p.lex.NextToken() // (

	atom := &query.RelationalAtom{Name: name.Value}
	if p.lex.PeekToken().Type == TokenRightParen {
		p.lex.NextToken()
		return atom, nil
	}

	for {
		term, err := p.parseTerm()
		if err != nil {
			return nil, fmt.Errorf("in %s: %w", name.Value, err)
		}
		atom.Terms = append(atom.Terms, term)

		tok := p.lex.NextToken()
		if tok.Type == TokenRightParen {
			return atom, nil
		}
		if tok.Type != TokenComma {
			return nil, fmt.Errorf("expected ',' or ')' at %d:%d, got %s", tok.Line, tok.Col, tok)
		}
	}
}

func (p *parser) parseComparisonAtom() (*query.ComparisonAtom, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	opTok, err := p.expect(TokenOp, "comparison operator")
	if err != nil {
		return nil, err
	}
	right, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	return query.NewComparisonAtom(left, query.CompareOp(opTok.Value), right), nil
}

func (p *parser) parseTerm() (query.Term, error) {
	tok := p.lex.NextToken()
	switch tok.Type {
	case TokenIdent:
		return query.Variable(tok.Value), nil
	case TokenInt:
		v, err := strconv.ParseInt(tok.Value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %s at %d:%d: %w", tok.Value, tok.Line, tok.Col, err)
		}
		return cq.Int(v), nil
	case TokenString:
		return cq.Str(tok.Value), nil
	default:
		return nil, fmt.Errorf("expected term at %d:%d, got %s", tok.Line, tok.Col, tok)
	}
}
