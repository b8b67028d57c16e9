package engine

import (
	"context"
	"errors"
	"time"

	"arrivalcard/internal/types"
)

// Classification is the classifier's verdict on a failed attempt:
// terminal category, whether a retry can help, and how long to wait
// before one.
type Classification struct {
	Category    types.FailureCategory
	Recoverable bool
	Backoff     time.Duration
}

// transientRejectionCodes are the server rejection codes worth retrying:
// gateway hiccups and throttling, not business rejections.
var transientRejectionCodes = map[string]bool{
	"HTTP_429": true,
	"HTTP_502": true,
	"HTTP_503": true,
	"HTTP_504": true,
	"E9000":    true, // service busy
}

// Classify maps a thrown failure to its category. Validation, resolution
// and structural failures are never retried: retrying identical bad
// input, or a broken server contract, cannot succeed. Server rejections
// retry only on known-transient codes and get the longest backoff; a
// cold network blip gets the shortest.
func Classify(err error) Classification {
	var vErr *types.ValidationError
	if errors.As(err, &vErr) {
		return Classification{Category: types.FailureValidation}
	}
	var rErr *types.ResolutionError
	if errors.As(err, &rErr) {
		return Classification{Category: types.FailureResolution}
	}
	var sErr *types.StructuralResponseError
	if errors.As(err, &sErr) {
		return Classification{Category: types.FailureStructural}
	}
	var tErr *types.TimeoutError
	if errors.As(err, &tErr) {
		return Classification{
			Category:    types.FailureTimeout,
			Recoverable: true,
			Backoff:     2 * time.Second,
		}
	}
	var jErr *types.ServerRejectionError
	if errors.As(err, &jErr) {
		return Classification{
			Category:    types.FailureRejected,
			Recoverable: transientRejectionCodes[jErr.MessageCode],
			Backoff:     5 * time.Second,
		}
	}
	if errors.Is(err, context.Canceled) {
		return Classification{Category: types.FailureCancelled}
	}
	// Anything else is connection-level: DNS, refused, reset.
	return Classification{
		Category:    types.FailureNetwork,
		Recoverable: true,
		Backoff:     time.Second,
	}
}

// remediation returns the user-facing message and suggestions for a
// terminal category. Raw server codes and wrapped error chains never
// appear here; they go in the technical message instead.
func remediation(cls Classification, err error) (string, []string) {
	switch cls.Category {
	case types.FailureValidation, types.FailureResolution:
		// Our own validation text is written for humans; surface it.
		return err.Error(), []string{
			"Review the traveler details and correct the highlighted field.",
		}
	case types.FailureTimeout:
		return "The arrival-card service did not respond in time.", []string{
			"Check your internet connection.",
			"Try again in a few minutes.",
		}
	case types.FailureRejected:
		return "The arrival-card service rejected the submission.", []string{
			"Verify the trip details, especially the arrival date.",
			"Try again later; the service may be under maintenance.",
		}
	case types.FailureStructural:
		return "The arrival-card service returned an unexpected response.", []string{
			"Try again later.",
			"If this keeps happening, contact support with the correlation ID.",
		}
	case types.FailureCancelled:
		return "The submission was cancelled before it completed.", []string{
			"Submit again when ready.",
		}
	default:
		return "A network problem interrupted the submission.", []string{
			"Check your internet connection and try again.",
		}
	}
}
