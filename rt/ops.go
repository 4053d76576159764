package rt

import (
	"reflect"
	"strconv"
	"strings"

	"tlog.app/go/errors"
)

type (
	binop func(a, b Value) Value

	kinds [2]Kind
)

var addTable = map[kinds]binop{
	{KindInt, KindInt}: func(a, b Value) Value {
		return Of(a.x.(int64) + b.x.(int64))
	},
	{KindText, KindText}: func(a, b Value) Value {
		return Of(a.x.(string) + b.x.(string))
	},
	{KindText, KindInt}: func(a, b Value) Value {
		return Of(a.x.(string) + strconv.FormatInt(b.x.(int64), 10))
	},
}

var mulTable = map[kinds]binop{
	{KindInt, KindInt}: func(a, b Value) Value {
		return Of(a.x.(int64) * b.x.(int64))
	},
	{KindText, KindInt}: func(a, b Value) Value {
		n := b.x.(int64)
		if n < 0 {
			fail("*", errors.Wrap(ErrNegativeRepeat, "%d", n))
		}

		return Of(strings.Repeat(a.x.(string), int(n)))
	},
}

// Add is the + of effectful code: int sum, text concatenation,
// and text followed by an int's decimal form.
func Add(a, b Value) Value {
	return dispatch("+", addTable, a, b)
}

// Mul is the * of effectful code: int product and text repetition.
func Mul(a, b Value) Value {
	return dispatch("*", mulTable, a, b)
}

// Equal compares values of the same kind.
func Equal(a, b Value) bool {
	return a.k == b.k && reflect.DeepEqual(a.x, b.x)
}

func dispatch(op string, t map[kinds]binop, a, b Value) Value {
	f, ok := t[kinds{a.k, b.k}]
	if !ok {
		fail(op, errors.Wrap(ErrUnsupported, "%v %s %v", a.k, op, b.k))
	}

	return f(a, b)
}

// Index is a bounds checked element access.
func Index[T any](l []T, i int64) T {
	if i < 0 || i >= int64(len(l)) {
		fail("index", errors.Wrap(ErrIndex, "%d with length %d", i, len(l)))
	}

	return l[i]
}
