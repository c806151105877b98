package cq

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		name        string
		left, right Constant
		want        int
	}{
		{"int less", Int(1), Int(2), -1},
		{"int equal", Int(7), Int(7), 0},
		{"int greater", Int(10), Int(-3), 1},
		{"string less", Str("abc"), Str("abd"), -1},
		{"string equal", Str("x"), Str("x"), 0},
		{"string greater", Str("b"), Str("a"), 1},
		{"empty string first", Str(""), Str("a"), -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compare(tt.left, tt.right)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompareKindMismatch(t *testing.T) {
	_, err := Compare(Int(1), Str("1"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrKindMismatch))

	_, err = Compare(Constant{}, Int(1))
	assert.Error(t, err)
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(Int(3), Int(3)))
	assert.False(t, Equal(Int(3), Str("3")))
	assert.True(t, Equal(Str("a"), Str("a")))
}

func TestParseLiteral(t *testing.T) {
	c, err := ParseLiteral("'hello'")
	require.NoError(t, err)
	assert.Equal(t, Str("hello"), c)

	c, err = ParseLiteral("-42")
	require.NoError(t, err)
	assert.Equal(t, Int(-42), c)

	c, err = ParseLiteral("''")
	require.NoError(t, err)
	assert.Equal(t, Str(""), c)

	_, err = ParseLiteral("'open")
	assert.Error(t, err)
	_, err = ParseLiteral("12x")
	assert.Error(t, err)
	_, err = ParseLiteral("")
	assert.Error(t, err)
}

func TestConstantString(t *testing.T) {
	assert.Equal(t, "42", Int(42).String())
	assert.Equal(t, "'adbs'", Str("adbs").String())
	assert.False(t, Int(1).IsVariable())
}

func TestRowEncoding(t *testing.T) {
	row := []Constant{Int(1), Str("a, b"), Int(-9000000000), Str("")}

	decoded, err := DecodeRow(EncodeRow(row))
	require.NoError(t, err)
	assert.Equal(t, row, decoded)

	_, err = DecodeRow([]byte{0x02, byte(KindInteger), 0x00})
	assert.Error(t, err)
}
