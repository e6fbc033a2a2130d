package llm

import (
	"context"

	"logo-engine/internal/common/config"
	apperrors "logo-engine/internal/common/errors"
	commonhttp "logo-engine/internal/common/http"
	"logo-engine/internal/common/logger"
)

const anthropicVersion = "2023-06-01"

type anthropicProvider struct {
	cfg    config.ProviderConfig
	client *commonhttp.Client
	logger logger.Logger
}

// NewAnthropicProvider builds the Anthropic messages-API variant.
func NewAnthropicProvider(cfg config.ProviderConfig, client *commonhttp.Client, log logger.Logger) Provider {
	return &anthropicProvider{
		cfg:    cfg,
		client: client,
		logger: log.With(map[string]interface{}{"provider": ProviderAnthropic}),
	}
}

func (p *anthropicProvider) Name() string { return ProviderAnthropic }

func (p *anthropicProvider) CheckCredentials() error {
	if p.cfg.APIKey == "" {
		return apperrors.NewConfigurationError(ProviderAnthropic, "API key is not configured")
	}
	return nil
}

func (p *anthropicProvider) SendPrompt(ctx context.Context, prompt string, params GenerationParams) (map[string]interface{}, error) {
	if err := p.CheckCredentials(); err != nil {
		return nil, err
	}

	payload := map[string]interface{}{
		"model":       p.cfg.Model,
		"max_tokens":  params.MaxTokens,
		"temperature": params.Temperature,
		"messages": []map[string]interface{}{
			{"role": "user", "content": prompt},
		},
	}
	// Anthropic takes the system instruction as a top-level field, not a
	// message.
	if params.System != "" {
		payload["system"] = params.System
	}

	headers := map[string]string{
		"x-api-key":         p.cfg.APIKey,
		"anthropic-version": anthropicVersion,
	}

	p.logger.Debug("sending prompt", map[string]interface{}{
		"model":     p.cfg.Model,
		"maxTokens": params.MaxTokens,
	})

	return postJSON(ctx, p.client, ProviderAnthropic, p.cfg.BaseURL+"/v1/messages", headers, payload)
}

func (p *anthropicProvider) ExtractText(resp map[string]interface{}) string {
	return nestedString(resp, "content", 0, "text")
}

func (p *anthropicProvider) ExtractUsage(resp map[string]interface{}) *TokenUsage {
	prompt, pok := nestedInt(resp, "usage", "input_tokens")
	completion, cok := nestedInt(resp, "usage", "output_tokens")
	if !pok && !cok {
		return nil
	}
	// Anthropic never reports a total; it is always computed.
	return &TokenUsage{
		PromptTokens:     prompt,
		CompletionTokens: completion,
		TotalTokens:      prompt + completion,
	}
}
