package cq

import (
	"fmt"
	"strings"
)

// Compare compares two constants and returns:
//
//	-1 if left < right
//	 0 if left == right
//	 1 if left > right
//
// Integers compare numerically and strings compare bytewise. Comparing an
// integer with a string returns ErrKindMismatch.
func Compare(left, right Constant) (int, error) {
	if !left.IsValid() || !right.IsValid() {
		return 0, fmt.Errorf("compare %#v with %#v: invalid constant", left, right)
	}
	if left.kind != right.kind {
		return 0, fmt.Errorf("compare %s with %s: %w", left, right, ErrKindMismatch)
	}

	if left.kind == KindString {
		return strings.Compare(left.s, right.s), nil
	}
	return compareInt64s(left.i, right.i), nil
}

// Equal reports whether two constants hold the same kind and value.
func Equal(left, right Constant) bool {
	return left == right
}

func compareInt64s(a, b int64) int {
	if a < b {
		return -1
	} else if a > b {
		return 1
	}
	return 0
}
