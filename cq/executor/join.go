package executor

import (
	"errors"

	"github.com/wbrown/janus-cq/cq/query"
)

// Join is a tuple-at-a-time nested loop join. Both cursors are fetched
// when the join is built and again on Reset, so an empty child makes the
// whole join empty. For a fixed left tuple every matching right tuple is
// produced before the left cursor advances.
type Join struct {
	left, right Operator
	cond        *Condition
	symbols     []query.Variable

	leftOK  bool
	rightOK bool
	current Tuple
	err     error
}

// NewJoin builds a join; a nil condition makes it a cartesian product.
func NewJoin(left, right Operator, cond *Condition) *Join {
	j := &Join{left: left, right: right, cond: cond}
	j.symbols = append(append([]query.Variable(nil), left.Symbols()...), right.Symbols()...)
	j.prime()
	return j
}

// prime fetches the first tuple of both children.
func (j *Join) prime() {
	j.leftOK = j.left.Next()
	j.rightOK = j.right.Next()
	j.err = errors.Join(j.left.Err(), j.right.Err())
}

func (j *Join) Symbols() []query.Variable { return j.symbols }

func (j *Join) Next() bool {
	if j.err != nil {
		return false
	}
	for j.leftOK {
		for j.rightOK {
			candidate := Concat(j.left.Tuple(), j.right.Tuple())
			j.rightOK = j.right.Next()
			if err := j.right.Err(); err != nil {
				j.err = err
				return false
			}

			ok, err := j.cond.Eval(candidate)
			if err != nil {
				j.err = err
				return false
			}
			if ok {
				j.current = candidate
				return true
			}
		}

		// inner side exhausted: rewind it and advance the outer cursor
		if err := j.right.Reset(); err != nil {
			j.err = err
			return false
		}
		j.rightOK = j.right.Next()
		j.leftOK = j.left.Next()
		if err := errors.Join(j.left.Err(), j.right.Err()); err != nil {
			j.err = err
			return false
		}
		if !j.rightOK {
			j.leftOK = false
		}
	}
	return false
}

func (j *Join) Tuple() Tuple { return j.current }
func (j *Join) Err() error   { return j.err }

func (j *Join) Reset() error {
	if err := errors.Join(j.left.Reset(), j.right.Reset()); err != nil {
		j.err = err
		return err
	}
	j.current = Tuple{}
	j.prime()
	return j.err
}

func (j *Join) Close() error {
	return errors.Join(j.left.Close(), j.right.Close())
}

func (j *Join) String() string {
	if j.cond == nil {
		return "Join (cartesian)"
	}
	return "Join " + j.cond.String()
}
