package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, 50, cfg.Campaign.SessionQuota)
	assert.Equal(t, 2*time.Second, cfg.Campaign.PacingDelay)
	assert.Equal(t, 15*time.Second, cfg.Timeouts.Suggestion)
	assert.Equal(t, 20*time.Second, cfg.Timeouts.Results)
	assert.Equal(t, "website_analysis_results.json", cfg.Output.ResultsFile)
	assert.Equal(t, "domains_without_suggestions.txt", cfg.Output.SideLogFile)
	assert.False(t, cfg.Browser.Headless)
	assert.Empty(t, cfg.Status.Addr)
	assert.Equal(t, 5, cfg.Status.RequestsPerSecond)
	assert.Equal(t, 10, cfg.Status.Burst)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("STACKSCOUT_SESSION_QUOTA", "10")
	t.Setenv("STACKSCOUT_HEADLESS", "true")
	t.Setenv("STACKSCOUT_SUGGESTION_TIMEOUT", "3s")
	t.Setenv("STACKSCOUT_STATUS_API_KEYS", "a, b,,c")

	cfg := Load()

	assert.Equal(t, 10, cfg.Campaign.SessionQuota)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 3*time.Second, cfg.Timeouts.Suggestion)
	assert.Equal(t, []string{"a", "b", "c"}, cfg.Status.APIKeys)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("STACKSCOUT_SESSION_QUOTA", "many")
	t.Setenv("STACKSCOUT_HEADLESS", "sometimes")
	t.Setenv("STACKSCOUT_RESULTS_TIMEOUT", "soon")

	cfg := Load()

	assert.Equal(t, 50, cfg.Campaign.SessionQuota)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, 20*time.Second, cfg.Timeouts.Results)
}
