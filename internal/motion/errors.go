package motion

import (
	"errors"
	"fmt"
)

var (
	// ErrDomain matches every *DomainError.
	ErrDomain = errors.New("interpolation domain error")
	// ErrInvalidSpring is wrapped by spring validation failures.
	ErrInvalidSpring = errors.New("invalid spring config")
)

// DomainError reports a malformed curve or a value outside a curve that
// refuses to extrapolate.
type DomainError struct {
	Reason string
	Value  float64
}

func (e *DomainError) Error() string {
	if e.Value != 0 {
		return fmt.Sprintf("interpolate: %s (value %g)", e.Reason, e.Value)
	}
	return "interpolate: " + e.Reason
}

func (e *DomainError) Is(target error) bool {
	return target == ErrDomain
}
