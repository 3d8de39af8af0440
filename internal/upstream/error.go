package upstream

import (
	"fmt"
	"strings"
)

// Error reports a request to the school server that failed at the transport
// level or carried a non-success verdict the caller cannot interpret.
type Error struct {
	Endpoint string
	Status   int
	Codes    []string
	cause    error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "upstream %s request failed", e.Endpoint)
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	if len(e.Codes) > 0 {
		fmt.Fprintf(&b, ": %s", strings.Join(e.Codes, ", "))
	}
	if e.cause != nil {
		fmt.Fprintf(&b, ": %v", e.cause)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.cause }

// HTTPStatus reports the upstream response status, zero when the request
// never completed.
func (e *Error) HTTPStatus() int { return e.Status }

// RejectionCodes reports any application-level codes the server returned.
func (e *Error) RejectionCodes() []string { return e.Codes }
