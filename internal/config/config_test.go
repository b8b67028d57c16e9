package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 3, cfg.Submission.MaxAttempts)
	assert.Equal(t, 30*time.Second, cfg.StepTimeout())

	lead, grace := cfg.ArrivalWindow()
	assert.Equal(t, 72*time.Hour, lead)
	assert.Equal(t, 24*time.Hour, grace)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api:
  base_url: https://staging.example.gov/api/v1
  timeout: 10s
submission:
  max_attempts: 5
  max_arrival_lead_hours: 48
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://staging.example.gov/api/v1", cfg.API.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.StepTimeout())
	assert.Equal(t, 5, cfg.Submission.MaxAttempts)

	lead, grace := cfg.ArrivalWindow()
	assert.Equal(t, 48*time.Hour, lead)
	// Unset values still get defaults.
	assert.Equal(t, 24*time.Hour, grace)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ARRIVALCARD_BASE_URL", "https://override.example.gov")
	t.Setenv("ARRIVALCARD_MAX_ATTEMPTS", "7")
	t.Setenv("ARRIVALCARD_DEBUG", "true")

	cfg := Default()
	assert.Equal(t, "https://override.example.gov", cfg.API.BaseURL)
	assert.Equal(t, 7, cfg.Submission.MaxAttempts)
	assert.True(t, cfg.Logging.Debug)
}

func TestMalformedTimeoutFallsBack(t *testing.T) {
	cfg := Default()
	cfg.API.Timeout = "not-a-duration"
	assert.Equal(t, 30*time.Second, cfg.StepTimeout())
}
