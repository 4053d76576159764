package rt

import (
	"fmt"

	"tlog.app/go/errors"
	"tlog.app/go/loc"
)

type (
	// Failure is a run time error of a generated program.
	// It's raised as a panic and recovered by Main.
	Failure struct {
		Op    string
		Err   error
		Where loc.PC
	}
)

var (
	ErrTimeout        = errors.New("timeout")
	ErrIndex          = errors.New("index out of range")
	ErrUnsupported    = errors.New("unsupported operands")
	ErrNegativeRepeat = errors.New("negative repeat count")
	ErrUnknownService = errors.New("unknown service")
	ErrMissingReturn  = errors.New("function ended without return")
	ErrKind           = errors.New("unexpected value kind")
)

// MissingReturn is raised by functions falling off the end without a value.
var MissingReturn = &Failure{Op: "return", Err: ErrMissingReturn}

func fail(op string, err error) {
	panic(&Failure{
		Op:    op,
		Err:   err,
		Where: loc.Caller(2),
	})
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.Op, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }
