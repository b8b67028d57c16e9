// Package engine is the public face of the submission core: it wires the
// protocol driver, classifies failures, and runs the bounded retry loop.
// Callers hand it a TravelerRequest and get back a SubmissionResult;
// every failure path is classified, correlated and phrased for humans.
package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"arrivalcard/internal/config"
	"arrivalcard/internal/logging"
	"arrivalcard/internal/payload"
	"arrivalcard/internal/protocol"
	"arrivalcard/internal/refdata"
	"arrivalcard/internal/session"
	"arrivalcard/internal/types"
)

// Engine owns one configured submission pipeline. It is safe for
// concurrent submissions of different travelers: all per-submission
// state lives in the session.State created per attempt. Two simultaneous
// attempts for the same traveler are the caller's responsibility to
// prevent; the remote service has no idempotency protection.
type Engine struct {
	driver      *protocol.Driver
	maxAttempts int
	log         *zap.Logger

	// sleep is swappable in tests to keep the retry loop fast.
	sleep func(ctx context.Context, d time.Duration) error
}

// New builds an engine from configuration. audit may be nil.
func New(cfg *config.Config, log *zap.Logger, audit logging.AuditLogger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	client := protocol.NewClient(cfg.API.BaseURL, cfg.StepTimeout(), log)
	resolver := refdata.NewResolver(client, log, audit)
	lead, grace := cfg.ArrivalWindow()
	driver := protocol.NewDriver(client, resolver, payload.Window{MaxLead: lead, Grace: grace}, log)
	return &Engine{
		driver:      driver,
		maxAttempts: cfg.Submission.MaxAttempts,
		log:         log,
		sleep:       sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Submit runs the whole flow for one traveler, retrying recoverable
// failures up to the configured attempt cap. Each attempt restarts from
// step 1 with a fresh session: intermediate tokens are single-use and
// bound to the abandoned submission ID, so partial progress is never
// resumed. Submit never returns an error; failures are delivered inside
// the result.
func (e *Engine) Submit(ctx context.Context, req *types.TravelerRequest) *types.SubmissionResult {
	if err := req.Validate(); err != nil {
		// Precondition failures never reach the network and never count
		// as an attempt.
		return e.failure(err, Classify(err), 0, nil)
	}

	var history []string
	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		st := session.New(req.VerificationToken)
		e.log.Info("starting submission attempt",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", e.maxAttempts),
			zap.String("submission_id", st.SubmissionID))

		result, err := e.driver.Run(ctx, req, st)
		if err == nil {
			return result
		}

		cls := Classify(err)
		history = append(history, string(cls.Category))
		e.log.Warn("submission attempt failed",
			zap.Int("attempt", attempt),
			zap.String("category", string(cls.Category)),
			zap.Bool("recoverable", cls.Recoverable),
			zap.Error(err))

		if !cls.Recoverable || attempt == e.maxAttempts {
			return e.failure(err, cls, attempt, history)
		}

		// Backoff grows with the attempt number, scaled per category.
		if err := e.sleep(ctx, cls.Backoff*time.Duration(attempt)); err != nil {
			return e.failure(err, Classify(err), attempt, history)
		}
	}
	// Unreachable: the loop always returns from its final iteration.
	panic("engine: retry loop exited without a result")
}

// failure assembles the terminal failure result: user-facing message,
// technical message with the attempt history, correlation ID, and
// per-category remediation suggestions.
func (e *Engine) failure(err error, cls Classification, attempts int, history []string) *types.SubmissionResult {
	correlationID := uuid.NewString()
	message, suggestions := remediation(cls, err)

	technical := err.Error()
	if len(history) > 0 {
		technical = fmt.Sprintf("%s (attempt classifications: %s)", technical, strings.Join(history, ", "))
	}

	e.log.Error("submission failed terminally",
		zap.String("correlation_id", correlationID),
		zap.String("category", string(cls.Category)),
		zap.Int("attempts", attempts),
		zap.Error(err))

	return &types.SubmissionResult{
		Failure: &types.SubmissionFailure{
			Message:          message,
			TechnicalMessage: technical,
			Category:         cls.Category,
			Recoverable:      cls.Recoverable,
			Suggestions:      suggestions,
			Attempts:         attempts,
			CorrelationID:    correlationID,
		},
	}
}
