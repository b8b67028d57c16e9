package protocol

import (
	"context"
	"time"

	"go.uber.org/zap"

	"arrivalcard/internal/payload"
	"arrivalcard/internal/refdata"
	"arrivalcard/internal/session"
	"arrivalcard/internal/types"
)

// Driver executes one full submission attempt: the nine-step sequence,
// strictly in order, threading each step's single-use token into the
// next. A Driver carries no per-submission state of its own; everything
// transient lives in the session.State it is handed.
type Driver struct {
	client   *Client
	resolver *refdata.Resolver
	window   payload.Window
	log      *zap.Logger
	now      func() time.Time
}

// NewDriver wires a driver from its collaborators.
func NewDriver(client *Client, resolver *refdata.Resolver, window payload.Window, log *zap.Logger) *Driver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Driver{
		client:   client,
		resolver: resolver,
		window:   window,
		log:      log,
		now:      time.Now,
	}
}

// Run performs steps 1-9 for one attempt. On success the result carries
// the card number and, best-effort, the downloaded document. Any error
// is returned unwrapped for the classifier; no retrying happens here.
func (d *Driver) Run(ctx context.Context, req *types.TravelerRequest, st *session.State) (*types.SubmissionResult, error) {
	log := d.log.With(zap.String("submission_id", st.SubmissionID))

	// Step 1: the single most common failure point; tagged so telemetry
	// can separate it from everything downstream.
	actionToken, err := d.client.InitActionToken(ctx, st.VerificationToken, st.SubmissionID)
	if err != nil {
		log.Warn("action token initialization failed",
			zap.Bool("init_step_failure", true), zap.Error(err))
		return nil, err
	}
	st.ActionToken = actionToken
	log.Debug("action token acquired")

	// Step 2: session init, seeds the small option lists.
	lists, err := d.client.GotoAdd(ctx, st.ActionToken)
	if err != nil {
		return nil, err
	}
	st.SeedLists(lists)

	// Step 3: reference resolution. Not a remote step itself, but every
	// lookup it issues happens here, before the health check.
	if err := d.resolver.ResolveAll(ctx, req, st); err != nil {
		return nil, err
	}

	// The form is assembled and validated before any further network
	// traffic; a validation failure never reaches the wire.
	form, err := payload.Build(req, st, d.window, d.now())
	if err != nil {
		return nil, err
	}

	// Step 4: mandatory health-declaration confirmation.
	if err := d.client.CheckHealthDeclaration(ctx, st.ActionToken); err != nil {
		return nil, err
	}

	// Step 5: form submission; first call of a session also yields the
	// form-template ID.
	formToken, templateID, err := d.client.Next(ctx, st.ActionToken, st.FormToken, st.FormTemplateID, form)
	if err != nil {
		return nil, err
	}
	st.FormToken = formToken
	if templateID != "" {
		st.FormTemplateID = templateID
	}

	// Step 6: exchange for the preview token.
	previewToken, err := d.client.GotoPreview(ctx, st.ActionToken, st.FormToken)
	if err != nil {
		return nil, err
	}
	st.FormToken = previewToken

	// Step 7: finalize. From here the submission exists server-side.
	resultToken, err := d.client.Submit(ctx, st.ActionToken, st.FormToken, req.Email)
	if err != nil {
		return nil, err
	}
	st.FormToken = resultToken
	log.Info("submission accepted by server")

	// Steps 8-9 run on a cancellation-detached context: the submission
	// has already taken effect, and losing the card number to a caller
	// cancel would strand the traveler with an untracked submission.
	postCtx := context.WithoutCancel(ctx)

	cardNo, err := d.client.GotoSubmitted(postCtx, st.ActionToken, st.FormToken)
	if err != nil {
		return nil, err
	}
	result := &types.SubmissionResult{
		Success:     true,
		CardNumber:  cardNo,
		SubmittedAt: d.now().UTC(),
		Traveler:    req,
	}

	// Step 9 is best-effort: the card number is the authoritative
	// success signal, but a failed download is still reported.
	doc, err := d.client.DownloadDocument(postCtx, st.ActionToken, st.FormToken)
	if err != nil {
		log.Warn("card issued but document download failed", zap.Error(err))
		result.DocumentError = err.Error()
	} else {
		result.Document = doc
	}

	log.Info("submission complete", zap.String("card_number", cardNo))
	return result, nil
}
