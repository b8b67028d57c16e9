// Package protocol implements the client side of the remote arrival-card
// service: a JSON-over-HTTP transport with a bearer credential issued at
// step 1, one typed call per protocol step, and the driver that executes
// the nine-step sequence.
package protocol

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"arrivalcard/internal/types"
)

// successCode is the envelope messageCode signalling success; any other
// code is a rejection regardless of HTTP status.
const successCode = "S0000"

// envelope is the common response wrapper for every JSON endpoint.
type envelope struct {
	MessageCode string          `json:"messageCode"`
	MessageDesc string          `json:"messageDesc,omitempty"`
	Data        json.RawMessage `json:"data,omitempty"`
}

// Client talks to the remote arrival-card service. It is stateless with
// respect to a submission: bearer credentials are passed per call so a
// single Client can serve concurrent submissions.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	log        *zap.Logger
}

// NewClient creates a client for the service rooted at baseURL, applying
// timeout as the per-step request deadline.
func NewClient(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: baseURL,
		timeout: timeout,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// post executes one JSON protocol call and decodes the envelope. A
// deadline-exceeded failure is surfaced as *types.TimeoutError carrying
// observed vs configured durations; a non-success messageCode becomes
// *types.ServerRejectionError.
func (c *Client) post(ctx context.Context, step, path, bearer string, body any) (*envelope, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s request: %w", step, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", step, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if timeoutErr := c.asTimeout(step, start, err); timeoutErr != nil {
			return nil, timeoutErr
		}
		return nil, fmt.Errorf("%s request failed: %w", step, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		if timeoutErr := c.asTimeout(step, start, err); timeoutErr != nil {
			return nil, timeoutErr
		}
		return nil, fmt.Errorf("failed to read %s response: %w", step, err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, &types.ServerRejectionError{
				Step:        step,
				MessageCode: fmt.Sprintf("HTTP_%d", resp.StatusCode),
				MessageDesc: http.StatusText(resp.StatusCode),
			}
		}
		return nil, &types.StructuralResponseError{Step: step, Missing: "response envelope"}
	}

	if env.MessageCode != successCode {
		return nil, &types.ServerRejectionError{
			Step:        step,
			MessageCode: env.MessageCode,
			MessageDesc: env.MessageDesc,
		}
	}

	c.log.Debug("protocol step completed",
		zap.String("step", step),
		zap.Duration("elapsed", time.Since(start)))
	return &env, nil
}

// asTimeout converts deadline failures into a TimeoutError. A failure
// observed at less than half the configured deadline means something
// below us (proxy, OS, mobile network stack) cut the request short.
func (c *Client) asTimeout(step string, start time.Time, err error) error {
	var isTimeout bool
	if errors.Is(err, context.DeadlineExceeded) {
		isTimeout = true
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		isTimeout = true
	}
	if !isTimeout {
		return nil
	}
	elapsed := time.Since(start)
	return &types.TimeoutError{
		Step:       step,
		Configured: c.timeout,
		Elapsed:    elapsed,
		External:   elapsed < c.timeout/2,
	}
}

// decodeData unmarshals the envelope's data object into out, reporting a
// missing or malformed data section as a structural failure.
func decodeData(step string, env *envelope, out any) error {
	if len(env.Data) == 0 {
		return &types.StructuralResponseError{Step: step, Missing: "data"}
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &types.StructuralResponseError{Step: step, Missing: "well-formed data"}
	}
	return nil
}
