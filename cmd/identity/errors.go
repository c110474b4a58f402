package identity

import (
	"errors"
	"fmt"
)

// ErrNotConfigured is returned when a provider is constructed without its required settings.
var ErrNotConfigured = errors.New("identity provider not configured")

// ProviderError is the tagged failure every Provider method returns.
// Kind is empty when the failure carries no recognizable discriminant (network, serialization).
// Err holds the raw cause for server-side logs; it must never reach a response body.
type ProviderError struct {
	Op   string
	Kind Failure
	Err  error
}

func (e ProviderError) Error() string {
	switch {
	case e.Kind == "" && e.Err == nil:
		return e.Op + ": provider failure"
	case e.Kind == "":
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Err == nil:
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	default:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
}

func (e ProviderError) Unwrap() error { return e.Err }

// Fail builds a ProviderError with the given discriminant.
func Fail(op string, kind Failure, err error) error {
	return ProviderError{Op: op, Kind: kind, Err: err}
}

// KindOf extracts the discriminant from err. ok is false when err is not a ProviderError
// or carries no discriminant.
func KindOf(err error) (Failure, bool) {
	var pe ProviderError
	if !errors.As(err, &pe) {
		return "", false
	}
	if pe.Kind == "" {
		return "", false
	}
	return pe.Kind, true
}
