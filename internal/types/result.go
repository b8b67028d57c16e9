package types

import "time"

// FailureCategory is the terminal classification attached to a failed
// submission.
type FailureCategory string

const (
	FailureTimeout    FailureCategory = "timeout"
	FailureValidation FailureCategory = "validation"
	FailureResolution FailureCategory = "resolution"
	FailureRejected   FailureCategory = "rejected-by-server"
	FailureStructural FailureCategory = "structural"
	FailureNetwork    FailureCategory = "network"
	FailureCancelled  FailureCategory = "cancelled"
)

// SubmissionFailure describes a terminally failed submission in terms the
// caller can show directly: Message is user-facing, TechnicalMessage is
// for diagnostics, CorrelationID for support lookup. Raw server codes and
// stack traces never appear in Message.
type SubmissionFailure struct {
	Message          string          `json:"message"`
	TechnicalMessage string          `json:"technical_message"`
	Category         FailureCategory `json:"category"`
	Recoverable      bool            `json:"recoverable"`
	Suggestions      []string        `json:"suggestions,omitempty"`
	Attempts         int             `json:"attempts"`
	CorrelationID    string          `json:"correlation_id"`
}

// SubmissionResult is the terminal value of a submission: either a card
// number plus (best-effort) document, or a classified failure.
type SubmissionResult struct {
	Success     bool             `json:"success"`
	CardNumber  string           `json:"card_number,omitempty"`
	Document    []byte           `json:"document,omitempty"`
	SubmittedAt time.Time        `json:"submitted_at,omitempty"`
	Traveler    *TravelerRequest `json:"traveler,omitempty"`

	// DocumentError is set when the card number was issued but the
	// document download failed; the submission is still a success.
	DocumentError string `json:"document_error,omitempty"`

	Failure *SubmissionFailure `json:"failure,omitempty"`
}
