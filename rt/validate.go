package rt

type (
	// Validator checks untrusted text and returns the accepted value.
	Validator interface {
		Validate(s string) (string, error)
	}

	ValidatorFunc func(s string) (string, error)
)

// DefaultValidator is used by Validate. It accepts everything.
var DefaultValidator Validator = ValidatorFunc(func(s string) (string, error) { return s, nil })

// Validate runs DefaultValidator and fails the program if it rejects s.
func Validate(s string) string {
	r, err := DefaultValidator.Validate(s)
	if err != nil {
		fail("validate", err)
	}

	return r
}

func (f ValidatorFunc) Validate(s string) (string, error) { return f(s) }
