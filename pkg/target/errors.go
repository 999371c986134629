package target

import "errors"

// ErrMalformed is the root of all target validation failures. Check with
// errors.Is(err, target.ErrMalformed) to distinguish a bad target from a
// probe-time failure.
var ErrMalformed = errors.New("target: malformed")

// Specific validation failures, all wrapping ErrMalformed.
var (
	ErrInvalidURL        = &validationError{"target: invalid URL"}
	ErrUnsupportedScheme = &validationError{"target: unsupported scheme"}
	ErrInvalidMethod     = &validationError{"target: invalid method"}
)

type validationError struct{ msg string }

func (e *validationError) Error() string { return e.msg }

func (e *validationError) Unwrap() error { return ErrMalformed }
