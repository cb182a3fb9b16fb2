package game

import (
	"errors"
	"fmt"
)

// The engine surfaces three classes of failure. Illegal transitions
// and validation failures reject the request without mutating anything;
// invariant violations are unexpected internal states that are logged
// and never silently recovered.
var (
	ErrIllegalTransition = errors.New("action not legal in current match state")
	ErrValidation        = errors.New("action data failed validation")
	ErrInvariant         = errors.New("engine invariant violated")
)

// illegalTransitionf wraps ErrIllegalTransition with context.
func illegalTransitionf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrIllegalTransition, fmt.Sprintf(format, args...))
}

// validationf wraps ErrValidation with context.
func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// invariantf wraps ErrInvariant with context.
func invariantf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvariant, fmt.Sprintf(format, args...))
}
