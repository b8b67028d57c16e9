package protocol

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arrivalcard/internal/types"
)

func TestEnvelopeRejectionRegardlessOfHTTPStatus(t *testing.T) {
	// HTTP 200 with a non-success messageCode is still a rejection.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"messageCode":"E1001","messageDesc":"token expired"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nil)
	_, err := c.InitActionToken(context.Background(), "verify-token-123", "acabcdefghij12345678")

	var rErr *types.ServerRejectionError
	require.ErrorAs(t, err, &rErr)
	assert.Equal(t, "E1001", rErr.MessageCode)
	assert.Equal(t, "token expired", rErr.MessageDesc)
}

func TestNonJSONErrorStatusBecomesRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nil)
	_, err := c.GotoAdd(context.Background(), "bearer")

	var rErr *types.ServerRejectionError
	require.ErrorAs(t, err, &rErr)
	assert.Equal(t, "HTTP_502", rErr.MessageCode)
}

func TestMalformedSuccessBodyIsStructural(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html>maintenance page</html>`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nil)
	_, err := c.GotoAdd(context.Background(), "bearer")

	var sErr *types.StructuralResponseError
	require.ErrorAs(t, err, &sErr)
	assert.Equal(t, "response envelope", sErr.Missing)
}

func TestMissingDataSectionIsStructural(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"messageCode":"S0000"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nil)
	_, err := c.InitActionToken(context.Background(), "verify-token-123", "acabcdefghij12345678")

	var sErr *types.StructuralResponseError
	require.ErrorAs(t, err, &sErr)
	assert.Equal(t, StepInitActionToken, sErr.Step)
}

// timeoutShapedErr mimics a net error that reports itself as a timeout.
type timeoutShapedErr struct{}

func (timeoutShapedErr) Error() string { return "read tcp 10.0.0.5:443: i/o timeout" }
func (timeoutShapedErr) Timeout() bool { return true }

func TestEarlyTimeoutFlaggedExternal(t *testing.T) {
	c := NewClient("http://unused.invalid", time.Second, nil)

	t.Run("failure well before the deadline is external", func(t *testing.T) {
		// Died after ~100ms of a 1s budget: something beneath this
		// client cut the request short.
		start := time.Now().Add(-100 * time.Millisecond)
		err := c.asTimeout(StepNext, start, timeoutShapedErr{})

		var tErr *types.TimeoutError
		require.ErrorAs(t, err, &tErr)
		assert.True(t, tErr.External)
		assert.Equal(t, StepNext, tErr.Step)
		assert.Equal(t, time.Second, tErr.Configured)
		assert.Contains(t, tErr.Error(), "external timeout source")
	})

	t.Run("failure near the deadline is our own", func(t *testing.T) {
		start := time.Now().Add(-900 * time.Millisecond)
		err := c.asTimeout(StepNext, start, timeoutShapedErr{})

		var tErr *types.TimeoutError
		require.ErrorAs(t, err, &tErr)
		assert.False(t, tErr.External)
		assert.NotContains(t, tErr.Error(), "external timeout source")
	})

	t.Run("non-timeout error passes through", func(t *testing.T) {
		start := time.Now().Add(-100 * time.Millisecond)
		assert.Nil(t, c.asTimeout(StepNext, start, fmt.Errorf("connection refused")))
	})
}

func TestDeadlineBecomesTimeoutError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 100*time.Millisecond, nil)
	_, err := c.GotoAdd(context.Background(), "bearer")

	var tErr *types.TimeoutError
	require.ErrorAs(t, err, &tErr)
	assert.Equal(t, StepGotoAdd, tErr.Step)
	assert.Equal(t, 100*time.Millisecond, tErr.Configured)
	assert.Greater(t, tErr.Elapsed, 50*time.Millisecond)
	assert.False(t, tErr.External, "a deadline hit at the configured duration is our own timeout")
}
