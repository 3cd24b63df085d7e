// Package providers contains clients for third-party blockchain data APIs.
// All calls are pure reads; failures surface as *Error so callers can treat
// provider trouble as a partial failure instead of a crash.
package providers

import "fmt"

// Error describes a failed call to an upstream data provider.
type Error struct {
	Provider string // e.g. "solscan"
	Endpoint string // request path
	Status   int    // HTTP status, 0 on transport failure
	Message  string // upstream message or error class
	Err      error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s: status %d: %s", e.Provider, e.Endpoint, e.Status, e.Message)
	}
	return fmt.Sprintf("%s %s: %s", e.Provider, e.Endpoint, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}
