package emissions

import (
	"errors"
	"fmt"
)

// ErrMissingCredential is returned when a network operation is attempted
// without an API key. It is fatal for the whole calculation.
var ErrMissingCredential = errors.New("API_KEY environment variable not set")

// ValidationError reports a bad request builder argument. No partial request
// object exists when it is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PermissionError reports an HTTP 403 from the estimation API. The affected
// item is dropped and the rest of the batch continues.
type PermissionError struct {
	Provider ProviderID
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("forbidden for %s: check your API key permissions for cloud computing endpoints", e.Provider)
}

// HTTPError reports a non-403 HTTP error response. The affected item is
// dropped and the rest of the batch continues.
type HTTPError struct {
	Provider ProviderID
	Status   int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error from %s: status %d", e.Provider, e.Status)
}

// ConnectivityError reports a network-level failure (dial, timeout). It aborts
// the whole batch for the provider.
type ConnectivityError struct {
	Provider ProviderID
	Err      error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("network failure for %s: %v (verify your internet connection and DNS configuration)", e.Provider, e.Err)
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}
