package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	assert.Equal(t, "openai", cfg.LLM.PreferredProvider)
	assert.Equal(t, 1500, cfg.LLM.MaxTokens)
	assert.InDelta(t, 0.3, cfg.LLM.Temperature, 0.0001)
	assert.Equal(t, 60000, cfg.LLM.Timeout)
	assert.Equal(t, "https://api.openai.com/v1", cfg.LLM.OpenAI.BaseURL)
	assert.Equal(t, "https://api.anthropic.com", cfg.LLM.Anthropic.BaseURL)

	assert.Equal(t, "https://api.bfl.ai", cfg.Flux.BaseURL)
	assert.Equal(t, "flux-kontext-pro", cfg.Flux.Model)
	assert.Equal(t, 2000, cfg.Flux.PollInterval)
	assert.Equal(t, 300000, cfg.Flux.Timeout)
	assert.Equal(t, 1000, cfg.Flux.RetryBackoffBase)
	assert.Equal(t, 10000, cfg.Flux.RetryBackoffCap)
	assert.Equal(t, "png", cfg.Flux.OutputFormat)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestApplyDefaults_DoesNotOverrideSetValues(t *testing.T) {
	cfg := &Config{}
	cfg.LLM.PreferredProvider = "anthropic"
	cfg.Flux.PollInterval = 500
	applyDefaults(cfg)

	assert.Equal(t, "anthropic", cfg.LLM.PreferredProvider)
	assert.Equal(t, 500, cfg.Flux.PollInterval)
}

func TestOverrideEmptyConfig(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-from-env")
	t.Setenv("FLUX_API_KEY", "flux-from-env")

	cfg := &Config{}
	cfg.LLM.Anthropic.APIKey = "already-set"
	t.Setenv("ANTHROPIC_API_KEY", "should-not-win")

	overrideEmptyConfig(cfg)

	assert.Equal(t, "sk-from-env", cfg.LLM.OpenAI.APIKey)
	assert.Equal(t, "flux-from-env", cfg.Flux.APIKey)
	assert.Equal(t, "already-set", cfg.LLM.Anthropic.APIKey)
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv("TEST_OPENAI_KEY", "sk-expanded")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
app:
  name: logo-engine
  environment: test
llm:
  preferred_provider: anthropic
  openai:
    api_key: ${TEST_OPENAI_KEY}
flux:
  poll_interval: 250
  safety_tolerance: 1
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "logo-engine", cfg.App.Name)
	assert.Equal(t, "anthropic", cfg.LLM.PreferredProvider)
	assert.Equal(t, "sk-expanded", cfg.LLM.OpenAI.APIKey)
	assert.Equal(t, 250, cfg.Flux.PollInterval)
	assert.Equal(t, 1, cfg.Flux.SafetyTolerance)

	// Unset fields still pick up defaults.
	assert.Equal(t, "flux-kontext-pro", cfg.Flux.Model)
	assert.Equal(t, 1500, cfg.LLM.MaxTokens)
	assert.Equal(t, 3, cfg.Flux.MaxRetries)
	assert.Equal(t, 2, cfg.Flux.SafetyTolerance)
}

func TestLoadFromFile_ExplicitZeroSurvives(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
flux:
  max_retries: 0
  safety_tolerance: 0
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	// Zero is an operator choice here, not an unset key: no retries and the
	// strictest moderation level must not be rewritten to the defaults.
	assert.Equal(t, 0, cfg.Flux.MaxRetries)
	assert.Equal(t, 0, cfg.Flux.SafetyTolerance)
}

func TestProviderConfigured(t *testing.T) {
	assert.False(t, ProviderConfig{}.Configured())
	assert.True(t, ProviderConfig{APIKey: "anything"}.Configured())
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 2*time.Second, GetDuration(2000))
	assert.Equal(t, time.Duration(0), GetDuration(0))
	assert.Equal(t, 250*time.Millisecond, GetDuration(250))
}
