package llm

import (
	"context"
	"fmt"

	"logo-engine/internal/common/config"
	apperrors "logo-engine/internal/common/errors"
	commonhttp "logo-engine/internal/common/http"
	"logo-engine/internal/common/logger"
)

type googleProvider struct {
	cfg    config.ProviderConfig
	client *commonhttp.Client
	logger logger.Logger
}

// NewGoogleProvider builds the Gemini generateContent variant.
func NewGoogleProvider(cfg config.ProviderConfig, client *commonhttp.Client, log logger.Logger) Provider {
	return &googleProvider{
		cfg:    cfg,
		client: client,
		logger: log.With(map[string]interface{}{"provider": ProviderGoogle}),
	}
}

func (p *googleProvider) Name() string { return ProviderGoogle }

func (p *googleProvider) CheckCredentials() error {
	if p.cfg.APIKey == "" {
		return apperrors.NewConfigurationError(ProviderGoogle, "API key is not configured")
	}
	return nil
}

func (p *googleProvider) SendPrompt(ctx context.Context, prompt string, params GenerationParams) (map[string]interface{}, error) {
	if err := p.CheckCredentials(); err != nil {
		return nil, err
	}

	// Gemini has no separate system channel on this endpoint; the
	// instruction rides ahead of the user text in the same part.
	text := prompt
	if params.System != "" {
		text = params.System + "\n\n" + prompt
	}

	payload := map[string]interface{}{
		"contents": []map[string]interface{}{
			{"parts": []map[string]interface{}{{"text": text}}},
		},
		"generationConfig": map[string]interface{}{
			"maxOutputTokens": params.MaxTokens,
			"temperature":     params.Temperature,
		},
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", p.cfg.BaseURL, p.cfg.Model, p.cfg.APIKey)

	p.logger.Debug("sending prompt", map[string]interface{}{
		"model":     p.cfg.Model,
		"maxTokens": params.MaxTokens,
	})

	return postJSON(ctx, p.client, ProviderGoogle, url, nil, payload)
}

func (p *googleProvider) ExtractText(resp map[string]interface{}) string {
	return nestedString(resp, "candidates", 0, "content", "parts", 0, "text")
}

func (p *googleProvider) ExtractUsage(resp map[string]interface{}) *TokenUsage {
	prompt, pok := nestedInt(resp, "usageMetadata", "promptTokenCount")
	completion, cok := nestedInt(resp, "usageMetadata", "candidatesTokenCount")
	if !pok && !cok {
		return nil
	}
	total, tok := nestedInt(resp, "usageMetadata", "totalTokenCount")
	if !tok {
		total = prompt + completion
	}
	return &TokenUsage{
		PromptTokens:     prompt,
		CompletionTokens: completion,
		TotalTokens:      total,
	}
}
