package types

import (
	"fmt"
	"time"
)

// ValidationError reports input that can never be accepted by the remote
// service: a missing required field, a malformed date, an out-of-window
// arrival. Never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Reason)
}

// ResolutionError reports a lookup category that could not be matched
// against live server reference data. Retrying with the same input is
// futile, so it is never retried.
type ResolutionError struct {
	Category Category
	Input    string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("could not resolve %s from %q against server reference data", e.Category, e.Input)
}

// TimeoutError records both the configured deadline and the observed
// elapsed time. External is set when the request died well before the
// configured deadline, which points at a timeout source layered beneath
// this client rather than our own deadline.
type TimeoutError struct {
	Step       string
	Configured time.Duration
	Elapsed    time.Duration
	External   bool
}

func (e *TimeoutError) Error() string {
	if e.External {
		return fmt.Sprintf("step %s timed out after %v, well under the configured %v (external timeout source suspected)",
			e.Step, e.Elapsed.Round(time.Millisecond), e.Configured)
	}
	return fmt.Sprintf("step %s exceeded the configured %v deadline (elapsed %v)",
		e.Step, e.Configured, e.Elapsed.Round(time.Millisecond))
}

// ServerRejectionError carries the remote envelope's non-success code and
// message. Retried only when the classifier marks the code transient.
type ServerRejectionError struct {
	Step        string
	MessageCode string
	MessageDesc string
}

func (e *ServerRejectionError) Error() string {
	if e.MessageDesc != "" {
		return fmt.Sprintf("step %s rejected by server: %s (%s)", e.Step, e.MessageCode, e.MessageDesc)
	}
	return fmt.Sprintf("step %s rejected by server: %s", e.Step, e.MessageCode)
}

// StructuralResponseError reports a success-status response missing a
// field the protocol depends on (e.g. no preview token). It indicates a
// contract break on the remote side and is never retried.
type StructuralResponseError struct {
	Step    string
	Missing string
}

func (e *StructuralResponseError) Error() string {
	return fmt.Sprintf("step %s returned success but response is missing %s", e.Step, e.Missing)
}
