// Package cq holds the value layer shared by every stage of conjunctive
// query evaluation: constants, their ordering, and their binary encoding.
package cq

import (
	"errors"
	"fmt"
	"strconv"
)

// Kind identifies which variant a Constant holds.
type Kind uint8

const (
	KindInteger Kind = iota + 1
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "int"
	case KindString:
		return "string"
	default:
		return "invalid"
	}
}

// ErrKindMismatch is returned when an integer is compared against a string.
var ErrKindMismatch = errors.New("cannot compare constants of different kinds")

// Constant is an immutable integer or string value. The zero Constant is
// invalid. Constant is comparable and may be used as a map key.
type Constant struct {
	kind Kind
	i    int64
	s    string
}

// Int returns an integer constant.
func Int(v int64) Constant {
	return Constant{kind: KindInteger, i: v}
}

// Str returns a string constant. The value is stored without quotes.
func Str(v string) Constant {
	return Constant{kind: KindString, s: v}
}

func (c Constant) Kind() Kind      { return c.kind }
func (c Constant) IsInteger() bool { return c.kind == KindInteger }
func (c Constant) IsString() bool  { return c.kind == KindString }
func (c Constant) IsValid() bool   { return c.kind == KindInteger || c.kind == KindString }

// IsVariable reports false; it lets Constant act as a query term.
func (c Constant) IsVariable() bool { return false }

// IntValue returns the integer payload. ok is false for string constants.
func (c Constant) IntValue() (v int64, ok bool) {
	return c.i, c.kind == KindInteger
}

// StringValue returns the string payload. ok is false for integer constants.
func (c Constant) StringValue() (v string, ok bool) {
	return c.s, c.kind == KindString
}

// String renders the constant in query/CSV literal form: integers bare,
// strings single-quoted.
func (c Constant) String() string {
	switch c.kind {
	case KindInteger:
		return strconv.FormatInt(c.i, 10)
	case KindString:
		return "'" + c.s + "'"
	default:
		return "<invalid>"
	}
}

// GoString is used by %#v and keeps test failure output readable.
func (c Constant) GoString() string {
	switch c.kind {
	case KindInteger:
		return fmt.Sprintf("cq.Int(%d)", c.i)
	case KindString:
		return fmt.Sprintf("cq.Str(%q)", c.s)
	default:
		return "cq.Constant{}"
	}
}

// ParseLiteral parses a single field as written in a relation file or in a
// query: a leading single quote makes a string (surrounding quotes stripped),
// anything else must be a signed integer.
func ParseLiteral(field string) (Constant, error) {
	if field == "" {
		return Constant{}, fmt.Errorf("empty literal")
	}
	if field[0] == '\'' {
		if len(field) < 2 || field[len(field)-1] != '\'' {
			return Constant{}, fmt.Errorf("unterminated string literal %s", field)
		}
		return Str(field[1 : len(field)-1]), nil
	}
	v, err := strconv.ParseInt(field, 10, 64)
	if err != nil {
		return Constant{}, fmt.Errorf("invalid integer literal %q: %w", field, err)
	}
	return Int(v), nil
}
