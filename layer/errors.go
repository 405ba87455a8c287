package layer

import "errors"

// ErrInvariantViolated is the sentinel wrapped by every CheckInvariants
// failure; inspect with errors.Is.
var ErrInvariantViolated = errors.New("layer: invariant violated")

func errInvariant(detail string) error {
	return &invariantError{detail: detail}
}

type invariantError struct{ detail string }

func (e *invariantError) Error() string { return "layer: invariant violated: " + e.detail }
func (e *invariantError) Unwrap() error { return ErrInvariantViolated }
