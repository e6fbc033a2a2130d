package llm

import (
	"context"
	"strings"

	"logo-engine/internal/common/config"
	apperrors "logo-engine/internal/common/errors"
	commonhttp "logo-engine/internal/common/http"
	"logo-engine/internal/common/logger"
)

type openAIProvider struct {
	cfg    config.ProviderConfig
	client *commonhttp.Client
	logger logger.Logger
}

// NewOpenAIProvider builds the OpenAI chat-completions variant.
func NewOpenAIProvider(cfg config.ProviderConfig, client *commonhttp.Client, log logger.Logger) Provider {
	return &openAIProvider{
		cfg:    cfg,
		client: client,
		logger: log.With(map[string]interface{}{"provider": ProviderOpenAI}),
	}
}

func (p *openAIProvider) Name() string { return ProviderOpenAI }

func (p *openAIProvider) CheckCredentials() error {
	if p.cfg.APIKey == "" {
		return apperrors.NewConfigurationError(ProviderOpenAI, "API key is not configured")
	}
	// OpenAI keys are always sk-prefixed; anything else is a paste error.
	if !strings.HasPrefix(p.cfg.APIKey, "sk-") {
		return apperrors.NewConfigurationError(ProviderOpenAI, "API key does not match the expected sk- format")
	}
	return nil
}

func (p *openAIProvider) SendPrompt(ctx context.Context, prompt string, params GenerationParams) (map[string]interface{}, error) {
	if err := p.CheckCredentials(); err != nil {
		return nil, err
	}

	messages := []map[string]interface{}{}
	if params.System != "" {
		messages = append(messages, map[string]interface{}{"role": "system", "content": params.System})
	}
	messages = append(messages, map[string]interface{}{"role": "user", "content": prompt})

	payload := map[string]interface{}{
		"model":       p.cfg.Model,
		"messages":    messages,
		"max_tokens":  params.MaxTokens,
		"temperature": params.Temperature,
	}
	headers := map[string]string{
		"Authorization": "Bearer " + p.cfg.APIKey,
	}

	p.logger.Debug("sending prompt", map[string]interface{}{
		"model":     p.cfg.Model,
		"maxTokens": params.MaxTokens,
	})

	return postJSON(ctx, p.client, ProviderOpenAI, p.cfg.BaseURL+"/chat/completions", headers, payload)
}

func (p *openAIProvider) ExtractText(resp map[string]interface{}) string {
	return nestedString(resp, "choices", 0, "message", "content")
}

func (p *openAIProvider) ExtractUsage(resp map[string]interface{}) *TokenUsage {
	prompt, pok := nestedInt(resp, "usage", "prompt_tokens")
	completion, cok := nestedInt(resp, "usage", "completion_tokens")
	if !pok && !cok {
		return nil
	}
	total, tok := nestedInt(resp, "usage", "total_tokens")
	if !tok {
		// Totals are computed, not trusted, when the vendor omits them.
		total = prompt + completion
	}
	return &TokenUsage{
		PromptTokens:     prompt,
		CompletionTokens: completion,
		TotalTokens:      total,
	}
}
