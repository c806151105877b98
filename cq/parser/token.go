package parser

import "fmt"

// TokenType represents the type of a CQ token
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenIdent
	TokenInt
	TokenString
	TokenLeftParen
	TokenRightParen
	TokenComma
	TokenImplies // :-
	TokenStar
	TokenOp // = != < <= > >=
)

// Token represents a lexical token of CQ text
type Token struct {
	Type  TokenType
	Value string
	Line  int
	Col   int
}

// String returns a string representation of the token
func (t Token) String() string {
	switch t.Type {
	case TokenEOF:
		return fmt.Sprintf("EOF[%d:%d]", t.Line, t.Col)
	case TokenIdent:
		return fmt.Sprintf("Ident[%d:%d]:%s", t.Line, t.Col, t.Value)
	case TokenInt:
		return fmt.Sprintf("Int[%d:%d]:%s", t.Line, t.Col, t.Value)
	case TokenString:
		return fmt.Sprintf("String[%d:%d]:%q", t.Line, t.Col, t.Value)
	case TokenLeftParen:
		return fmt.Sprintf("LeftParen[%d:%d]", t.Line, t.Col)
	case TokenRightParen:
		return fmt.Sprintf("RightParen[%d:%d]", t.Line, t.Col)
	case TokenComma:
		return fmt.Sprintf("Comma[%d:%d]", t.Line, t.Col)
	case TokenImplies:
		return fmt.Sprintf("Implies[%d:%d]", t.Line, t.Col)
	case TokenStar:
		return fmt.Sprintf("Star[%d:%d]", t.Line, t.Col)
	case TokenOp:
		return fmt.Sprintf("Op[%d:%d]:%s", t.Line, t.Col, t.Value)
	default:
		return fmt.Sprintf("Unknown[%d:%d]:%s", t.Line, t.Col, t.Value)
	}
}
