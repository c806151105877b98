package parser

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Lexer tokenizes CQ text
type Lexer struct {
	input   string
	pos     int
	line    int
	col     int
	tokens  []Token
	current int
}

// NewLexer creates a new lexer for the given input
func NewLexer(input string) *Lexer {
	return &Lexer{
		input: input,
		line:  1,
		col:   1,
	}
}

// Lex tokenizes the entire input
func (l *Lexer) Lex() error {
	for l.pos < len(l.input) {
		l.skipWhitespaceAndComments()
		if l.pos >= len(l.input) {
			break
		}

		startLine, startCol := l.line, l.col
		emit := func(tt TokenType, value string) {
			l.tokens = append(l.tokens, Token{Type: tt, Value: value, Line: startLine, Col: startCol})
		}

		ch := l.peek()
		switch {
		case ch == '\'':
			str, err := l.readString()
			if err != nil {
				return err
			}
			emit(TokenString, str)
		case ch == '(':
			l.advance()
			emit(TokenLeftParen, "")
		case ch == ')':
			l.advance()
			emit(TokenRightParen, "")
		case ch == ',':
			l.advance()
			emit(TokenComma, "")
		case ch == '*':
			l.advance()
			emit(TokenStar, "")
		case ch == ':':
			l.advance()
			if l.peek() != '-' {
				return fmt.Errorf("expected ':-' at %d:%d", startLine, startCol)
			}
			l.advance()
			emit(TokenImplies, ":-")
		case ch == '=':
			l.advance()
			emit(TokenOp, "=")
		case ch == '!':
			l.advance()
			if l.peek() != '=' {
				return fmt.Errorf("expected '!=' at %d:%d", startLine, startCol)
			}
			l.advance()
			emit(TokenOp, "!=")
		case ch == '<' || ch == '>':
			l.advance()
			op := string(ch)
			if l.peek() == '=' {
				l.advance()
				op += "="
			}
			emit(TokenOp, op)
		case ch == '-' || isDigit(ch):
			num, err := l.readInt()
			if err != nil {
				return err
			}
			emit(TokenInt, num)
		default:
			ident := l.readIdent()
			if ident == "" {
				r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
				return fmt.Errorf("unexpected character '%c' at %d:%d", r, l.line, l.col)
			}
			emit(TokenIdent, ident)
		}
	}

	l.tokens = append(l.tokens, Token{Type: TokenEOF, Line: l.line, Col: l.col})
	return nil
}

// NextToken returns the next token
func (l *Lexer) NextToken() Token {
	if l.current >= len(l.tokens) {
		return Token{Type: TokenEOF, Line: l.line, Col: l.col}
	}
	token := l.tokens[l.current]
	l.current++
	return token
}

// PeekToken returns the next token without advancing
func (l *Lexer) PeekToken() Token {
	if l.current >= len(l.tokens) {
		return Token{Type: TokenEOF, Line: l.line, Col: l.col}
	}
	return l.tokens[l.current]
}

// PeekAhead returns the token n positions after the next one
func (l *Lexer) PeekAhead(n int) Token {
	if l.current+n >= len(l.tokens) {
		return Token{Type: TokenEOF, Line: l.line, Col: l.col}
	}
	return l.tokens[l.current+n]
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) advance() {
	if l.pos < len(l.input) {
		if l.input[l.pos] == '\n' {
			l.line++
			l.col = 1
		} else {
			l.col++
		}
		l.pos++
	}
}

// skipWhitespaceAndComments skips whitespace and '%' line comments
func (l *Lexer) skipWhitespaceAndComments() {
	for l.pos < len(l.input) {
		ch := l.peek()
		if unicode.IsSpace(rune(ch)) {
			l.advance()
		} else if ch == '%' {
			for l.pos < len(l.input) && l.peek() != '\n' {
				l.advance()
			}
		} else {
			break
		}
	}
}

// readString reads a single-quoted literal; quotes are not part of the value
func (l *Lexer) readString() (string, error) {
	line, col := l.line, l.col
	var result strings.Builder
	l.advance() // opening quote

	for l.pos < len(l.input) {
		ch := l.peek()
		if ch == '\'' {
			l.advance()
			return result.String(), nil
		}
		if ch == '\n' {
			break
		}
		result.WriteByte(ch)
		l.advance()
	}

	return "", fmt.Errorf("unterminated string at %d:%d", line, col)
}

func (l *Lexer) readInt() (string, error) {
	line, col := l.line, l.col
	start := l.pos
	if l.peek() == '-' {
		l.advance()
	}
	for l.pos < len(l.input) && isDigit(l.peek()) {
		l.advance()
	}
	lit := l.input[start:l.pos]
	if lit == "-" {
		return "", fmt.Errorf("expected digits after '-' at %d:%d", line, col)
	}
	return lit, nil
}

func (l *Lexer) readIdent() string {
	start := l.pos
	for l.pos < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if !(r == '_' || unicode.IsLetter(r) || (l.pos > start && unicode.IsDigit(r))) {
			break
		}
		for i := 0; i < size; i++ {
			l.advance()
		}
	}
	return l.input[start:l.pos]
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
