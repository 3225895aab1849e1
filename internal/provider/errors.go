package provider

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an identifier is valid but the upstream has
// no data for it. It is expected and non-fatal: the router treats it as
// permission to fall through to the next provider in a chain.
var ErrNotFound = errors.New("no data for identifier")

// ProviderError reports a failed provider call: transport error, non-2xx
// status or malformed payload. Unlike ErrNotFound it short-circuits router
// fallback, so an upstream outage stays visible instead of being
// reinterpreted as "not found, try the next one".
type ProviderError struct {
	Provider   string
	StatusCode int // 0 when the request never produced a status
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is the expected no-data result.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
