package setback

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidProfile       = errors.New("invalid profile")
	ErrPhysicallyInfeasible = errors.New("physically infeasible")
	ErrInvalidPolicy        = errors.New("invalid policy")
)

// InvalidProfileError reports malformed or out-of-domain input. Field is the
// wire name of the offending field.
type InvalidProfileError struct {
	Field  string
	Reason string
}

func (e *InvalidProfileError) Error() string {
	return fmt.Sprintf("invalid profile: %s: %s", e.Field, e.Reason)
}

func (e *InvalidProfileError) Is(target error) bool { return target == ErrInvalidProfile }

func invalidField(field, format string, args ...any) error {
	return &InvalidProfileError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Infeasibility kinds.
const (
	KindHeatingMode          = "heating_mode"
	KindNonPositiveTau       = "non_positive_tau"
	KindInsufficientCapacity = "insufficient_capacity"
)

// PhysicallyInfeasibleError reports inputs that are consistent on their own but
// describe a situation the cooling model cannot represent.
type PhysicallyInfeasibleError struct {
	Kind   string
	Detail string
}

func (e *PhysicallyInfeasibleError) Error() string {
	return fmt.Sprintf("physically infeasible (%s): %s", e.Kind, e.Detail)
}

func (e *PhysicallyInfeasibleError) Is(target error) bool {
	return target == ErrPhysicallyInfeasible
}

// ErrorKind classifies err for reporting: "invalid_profile", one of the
// infeasibility kinds, "invalid_policy" or "internal".
func ErrorKind(err error) string {
	var pie *PhysicallyInfeasibleError
	switch {
	case errors.As(err, &pie):
		return pie.Kind
	case errors.Is(err, ErrInvalidProfile):
		return "invalid_profile"
	case errors.Is(err, ErrInvalidPolicy):
		return "invalid_policy"
	default:
		return "internal"
	}
}
