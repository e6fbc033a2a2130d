package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "logo-engine/internal/common/errors"
	"logo-engine/internal/common/logger"
)

// fakeProvider is a scriptable Provider for service tests.
type fakeProvider struct {
	name       string
	credErr    error
	sendErr    error
	text       string
	usage      *TokenUsage
	lastPrompt string
	lastParams GenerationParams
	calls      int
}

func (f *fakeProvider) Name() string            { return f.name }
func (f *fakeProvider) CheckCredentials() error { return f.credErr }

func (f *fakeProvider) SendPrompt(ctx context.Context, prompt string, params GenerationParams) (map[string]interface{}, error) {
	f.calls++
	f.lastPrompt = prompt
	f.lastParams = params
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	return map[string]interface{}{"text": f.text}, nil
}

func (f *fakeProvider) ExtractText(resp map[string]interface{}) string {
	s, _ := resp["text"].(string)
	return s
}

func (f *fakeProvider) ExtractUsage(resp map[string]interface{}) *TokenUsage {
	return f.usage
}

func newTestService(t *testing.T, providers map[string]Provider, preferred string) *Service {
	t.Helper()
	return NewServiceWithProviders(providers, preferred, GenerationParams{MaxTokens: 500, Temperature: 0.3}, logger.NewTestLogger(t))
}

func TestService_Extract_Success(t *testing.T) {
	fake := &fakeProvider{
		name:  ProviderOpenAI,
		text:  `{"companyName":"Beanly","industry":"coffee shop","businessType":"small company"}`,
		usage: &TokenUsage{PromptTokens: 100, CompletionTokens: 40, TotalTokens: 140},
	}
	svc := newTestService(t, map[string]Provider{ProviderOpenAI: fake}, ProviderOpenAI)

	result, err := svc.Extract(context.Background(), &ExtractionRequest{
		UserInput: "A small coffee shop called Beanly",
	})
	require.NoError(t, err)
	require.True(t, result.Success)

	assert.Equal(t, "Beanly", result.ExtractedInfo.CompanyName)
	assert.Equal(t, IndustryFoodBeverage, result.ExtractedInfo.Industry)
	assert.Equal(t, BusinessTypeSmallBusiness, result.ExtractedInfo.BusinessType)
	assert.InDelta(t, 0.80, result.Confidence, 0.0001)
	assert.Empty(t, result.MissingFields)
	assert.Len(t, result.Suggestions, 4)
	assert.Equal(t, ProviderOpenAI, result.Provider)
	assert.Equal(t, 140, result.Usage.TotalTokens)
	assert.Greater(t, result.ProcessingTime.Nanoseconds(), int64(0))

	// The prompt carries the schema and the enum vocabularies.
	assert.Contains(t, fake.lastPrompt, "A small coffee shop called Beanly")
	assert.Contains(t, fake.lastPrompt, `"companyName"`)
	assert.Contains(t, fake.lastPrompt, IndustryFoodBeverage)
	assert.Contains(t, fake.lastPrompt, BusinessTypeFranchise)
	assert.Contains(t, fake.lastPrompt, "minimalist")
}

func TestService_Extract_NoProviderConfigured(t *testing.T) {
	svc := newTestService(t, map[string]Provider{}, "")

	// Top-level boundary: a failure result, not an error.
	result, err := svc.Extract(context.Background(), &ExtractionRequest{UserInput: "anything"})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "no LLM provider is configured")
	assert.Equal(t, []string{"companyName", "industry", "businessType"}, result.MissingFields)
}

func TestService_Extract_ExplicitUnconfiguredProvider(t *testing.T) {
	svc := newTestService(t, map[string]Provider{
		ProviderOpenAI: &fakeProvider{name: ProviderOpenAI, text: "{}"},
	}, ProviderOpenAI)

	// Naming an unavailable provider is the one case that errors.
	result, err := svc.Extract(context.Background(), &ExtractionRequest{
		UserInput: "anything",
		Provider:  ProviderAnthropic,
	})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, apperrors.IsConfiguration(err))
}

func TestService_Extract_ProviderFailureBecomesResult(t *testing.T) {
	fake := &fakeProvider{
		name:    ProviderOpenAI,
		sendErr: apperrors.NewProviderAPIError(ProviderOpenAI, 500, "server error", nil),
	}
	svc := newTestService(t, map[string]Provider{ProviderOpenAI: fake}, ProviderOpenAI)

	result, err := svc.Extract(context.Background(), &ExtractionRequest{UserInput: "anything"})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "server error")
	assert.Equal(t, ProviderOpenAI, result.Provider)
	assert.Equal(t, []string{"companyName", "industry", "businessType"}, result.MissingFields)
}

func TestService_Extract_ParsingFailureBecomesResult(t *testing.T) {
	fake := &fakeProvider{
		name:  ProviderOpenAI,
		text:  "I cannot help with that.",
		usage: &TokenUsage{PromptTokens: 10, CompletionTokens: 8, TotalTokens: 18},
	}
	svc := newTestService(t, map[string]Provider{ProviderOpenAI: fake}, ProviderOpenAI)

	result, err := svc.Extract(context.Background(), &ExtractionRequest{UserInput: "anything"})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "not valid JSON")
	// Tokens were spent even though parsing failed.
	require.NotNil(t, result.Usage)
	assert.Equal(t, 18, result.Usage.TotalTokens)
}

func TestService_SelectProvider_FallbackOrder(t *testing.T) {
	t.Run("preferred wins when healthy", func(t *testing.T) {
		anthropic := &fakeProvider{name: ProviderAnthropic, text: "{}"}
		openai := &fakeProvider{name: ProviderOpenAI, text: "{}"}
		svc := newTestService(t, map[string]Provider{
			ProviderOpenAI:    openai,
			ProviderAnthropic: anthropic,
		}, ProviderAnthropic)

		result, err := svc.Extract(context.Background(), &ExtractionRequest{UserInput: "x"})
		require.NoError(t, err)
		assert.Equal(t, ProviderAnthropic, result.Provider)
		assert.Equal(t, 0, openai.calls)
	})

	t.Run("invalid preferred credential falls through", func(t *testing.T) {
		openai := &fakeProvider{
			name:    ProviderOpenAI,
			credErr: apperrors.NewConfigurationError(ProviderOpenAI, "bad key"),
		}
		google := &fakeProvider{name: ProviderGoogle, text: "{}"}
		svc := newTestService(t, map[string]Provider{
			ProviderOpenAI: openai,
			ProviderGoogle: google,
		}, ProviderOpenAI)

		result, err := svc.Extract(context.Background(), &ExtractionRequest{UserInput: "x"})
		require.NoError(t, err)
		assert.Equal(t, ProviderGoogle, result.Provider)
	})

	t.Run("request override beats preference", func(t *testing.T) {
		openai := &fakeProvider{name: ProviderOpenAI, text: "{}"}
		google := &fakeProvider{name: ProviderGoogle, text: "{}"}
		svc := newTestService(t, map[string]Provider{
			ProviderOpenAI: openai,
			ProviderGoogle: google,
		}, ProviderOpenAI)

		result, err := svc.Extract(context.Background(), &ExtractionRequest{
			UserInput: "x",
			Provider:  ProviderGoogle,
		})
		require.NoError(t, err)
		assert.Equal(t, ProviderGoogle, result.Provider)
		assert.Equal(t, 0, openai.calls)
	})
}

func TestService_Extract_RequestOverridesParams(t *testing.T) {
	fake := &fakeProvider{name: ProviderOpenAI, text: "{}"}
	svc := newTestService(t, map[string]Provider{ProviderOpenAI: fake}, ProviderOpenAI)

	temp := 0.9
	tokens := 42
	_, err := svc.Extract(context.Background(), &ExtractionRequest{
		UserInput:   "x",
		Temperature: &temp,
		MaxTokens:   &tokens,
	})
	require.NoError(t, err)
	assert.Equal(t, 42, fake.lastParams.MaxTokens)
	assert.InDelta(t, 0.9, fake.lastParams.Temperature, 0.0001)
}

func TestService_HealthCheck(t *testing.T) {
	healthy := &fakeProvider{name: ProviderOpenAI, text: "{}"}
	broken := &fakeProvider{
		name:    ProviderAnthropic,
		sendErr: errors.New("connection refused"),
	}
	badKey := &fakeProvider{
		name:    ProviderGoogle,
		credErr: apperrors.NewConfigurationError(ProviderGoogle, "API key is not configured"),
	}
	svc := newTestService(t, map[string]Provider{
		ProviderOpenAI:    healthy,
		ProviderAnthropic: broken,
		ProviderGoogle:    badKey,
	}, "")

	health := svc.HealthCheck(context.Background())
	require.Len(t, health, 3)

	assert.True(t, health[ProviderOpenAI].Available)
	assert.Empty(t, health[ProviderOpenAI].Error)

	// One provider failing never affects another's report.
	assert.False(t, health[ProviderAnthropic].Available)
	assert.Contains(t, health[ProviderAnthropic].Error, "connection refused")

	assert.False(t, health[ProviderGoogle].Available)
	assert.Contains(t, health[ProviderGoogle].Error, "not configured")
	assert.Equal(t, 0, badKey.calls, "credential failures skip the network probe")
}
