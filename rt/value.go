package rt

import (
	"fmt"
	"reflect"
	"strconv"

	"tlog.app/go/errors"
	"tlog.app/go/tlog/tlwire"
)

type (
	Kind int

	// Value is a value whose kind is known at run time only.
	Value struct {
		k Kind
		x interface{}
	}
)

const (
	KindNil Kind = iota
	KindInt
	KindText
	KindBool
	KindArray
	KindTask
	KindOther
)

var kindNames = [...]string{
	KindNil:   "nil",
	KindInt:   "int",
	KindText:  "text",
	KindBool:  "bool",
	KindArray: "array",
	KindTask:  "task",
	KindOther: "other",
}

// Of wraps x. Values are returned as is.
func Of(x interface{}) Value {
	switch x := x.(type) {
	case Value:
		return x
	case nil:
		return Value{}
	case int64:
		return Value{k: KindInt, x: x}
	case int:
		return Value{k: KindInt, x: int64(x)}
	case string:
		return Value{k: KindText, x: x}
	case bool:
		return Value{k: KindBool, x: x}
	case *Task:
		return Value{k: KindTask, x: x}
	}

	if reflect.TypeOf(x).Kind() == reflect.Slice {
		return Value{k: KindArray, x: x}
	}

	return Value{k: KindOther, x: x}
}

func (v Value) Kind() Kind { return v.k }

func (v Value) Any() interface{} { return v.x }

func (v Value) Int() int64 {
	if v.k != KindInt {
		fail("int", errors.Wrap(ErrKind, "%v", v.k))
	}

	return v.x.(int64)
}

func (v Value) Text() string {
	if v.k != KindText {
		fail("text", errors.Wrap(ErrKind, "%v", v.k))
	}

	return v.x.(string)
}

func (v Value) Bool() bool {
	if v.k != KindBool {
		fail("bool", errors.Wrap(ErrKind, "%v", v.k))
	}

	return v.x.(bool)
}

func (v Value) Task() *Task {
	if v.k != KindTask {
		fail("task", errors.Wrap(ErrKind, "%v", v.k))
	}

	return v.x.(*Task)
}

// Array returns elements of an array value wrapped into Values.
func (v Value) Array() []Value {
	if v.k != KindArray {
		fail("array", errors.Wrap(ErrKind, "%v", v.k))
	}

	if l, ok := v.x.([]Value); ok {
		return l
	}

	rv := reflect.ValueOf(v.x)
	l := make([]Value, rv.Len())

	for i := range l {
		l[i] = Of(rv.Index(i).Interface())
	}

	return l
}

// String is the display form: text as is, numbers in decimal.
func (v Value) String() string {
	switch v.k {
	case KindNil:
		return "()"
	case KindInt:
		return strconv.FormatInt(v.x.(int64), 10)
	case KindText:
		return v.x.(string)
	case KindBool:
		return strconv.FormatBool(v.x.(bool))
	default:
		return fmt.Sprint(v.x)
	}
}

func (v Value) TlogAppend(b []byte) []byte {
	var e tlwire.LowEncoder

	switch v.k {
	case KindNil:
		return e.AppendNil(b)
	case KindInt:
		return e.AppendInt(b, int(v.x.(int64)))
	default:
		return e.AppendString(b, v.String())
	}
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}

	return kindNames[k]
}

// Format is the textual form of x used for infra call arguments.
func Format(x interface{}) string {
	return Of(x).String()
}

// ToValues wraps every element of l.
func ToValues[T any](l []T) []Value {
	r := make([]Value, len(l))

	for i, x := range l {
		r[i] = Of(x)
	}

	return r
}

// Coerce converts arrays of Values into typed slices.
func Coerce[T any](l []Value, conv func(Value) T) []T {
	r := make([]T, len(l))

	for i, x := range l {
		r[i] = conv(x)
	}

	return r
}
