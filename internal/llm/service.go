package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"logo-engine/internal/common/config"
	apperrors "logo-engine/internal/common/errors"
	commonhttp "logo-engine/internal/common/http"
	"logo-engine/internal/common/logger"
	"logo-engine/internal/common/metrics"
)

// extractionSystem is the instruction sent through each vendor's system
// channel.
const extractionSystem = "You are a business analyst who extracts structured information " +
	"from business descriptions. Respond with a single JSON object and nothing else."

// Service orchestrates one extraction: provider selection, prompt
// construction, the vendor call, and response normalization. It is
// explicitly constructed with its configuration; there is no shared
// module-level instance.
type Service struct {
	providers map[string]Provider
	// order fixes provider priority when no override or preference applies.
	order     []string
	preferred string
	defaults  GenerationParams
	logger    logger.Logger
}

// NewService builds a Service from configuration. Providers are
// instantiated only for vendors that have a credential at all; key format
// problems surface later as configuration errors.
func NewService(cfg config.LLMConfig, log logger.Logger) *Service {
	client := commonhttp.NewClient(config.GetDuration(cfg.Timeout))
	log = log.With(map[string]interface{}{"component": "extraction"})

	providers := make(map[string]Provider)
	if cfg.OpenAI.Configured() {
		providers[ProviderOpenAI] = NewOpenAIProvider(cfg.OpenAI, client, log)
	}
	if cfg.Anthropic.Configured() {
		providers[ProviderAnthropic] = NewAnthropicProvider(cfg.Anthropic, client, log)
	}
	if cfg.Google.Configured() {
		providers[ProviderGoogle] = NewGoogleProvider(cfg.Google, client, log)
	}

	return &Service{
		providers: providers,
		order:     []string{ProviderOpenAI, ProviderAnthropic, ProviderGoogle},
		preferred: cfg.PreferredProvider,
		defaults: GenerationParams{
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			System:      extractionSystem,
		},
		logger: log,
	}
}

// NewServiceWithProviders wires explicit provider instances; used by tests
// and anywhere a custom variant is needed.
func NewServiceWithProviders(providers map[string]Provider, preferred string, defaults GenerationParams, log logger.Logger) *Service {
	if defaults.System == "" {
		defaults.System = extractionSystem
	}
	return &Service{
		providers: providers,
		order:     []string{ProviderOpenAI, ProviderAnthropic, ProviderGoogle},
		preferred: preferred,
		defaults:  defaults,
		logger:    log,
	}
}

// Extract runs one extraction attempt. The error return is non-nil only
// when the request explicitly names a provider that is not configured;
// every other failure comes back as a non-success result. When no provider
// is available at all, this is a top-level boundary and must not fail hard:
// it reports a structured failure result instead.
func (s *Service) Extract(ctx context.Context, req *ExtractionRequest) (*ExtractionResult, error) {
	start := time.Now()

	provider, err := s.selectProvider(req.Provider)
	if err != nil {
		return nil, err
	}
	if provider == nil {
		s.logger.Warn("no LLM provider available", nil)
		return &ExtractionResult{
			Success:        false,
			Error:          "no LLM provider is configured",
			MissingFields:  append([]string{}, requiredFields...),
			ProcessingTime: time.Since(start),
		}, nil
	}

	params := s.defaults
	if req.MaxTokens != nil {
		params.MaxTokens = *req.MaxTokens
	}
	if req.Temperature != nil {
		params.Temperature = *req.Temperature
	}

	prompt := buildExtractionPrompt(req.UserInput, req.Context)

	resp, err := provider.SendPrompt(ctx, prompt, params)
	if err != nil {
		return s.failure(provider.Name(), start, nil, err), nil
	}

	text := provider.ExtractText(resp)
	usage := provider.ExtractUsage(resp)

	info, err := ParseBusinessInformation(provider.Name(), text)
	if err != nil {
		return s.failure(provider.Name(), start, usage, err), nil
	}

	result := &ExtractionResult{
		Success:        true,
		ExtractedInfo:  info,
		Confidence:     ScoreConfidence(info),
		MissingFields:  MissingFields(info),
		Suggestions:    Suggestions(info),
		Usage:          usage,
		Provider:       provider.Name(),
		ProcessingTime: time.Since(start),
	}

	metrics.ExtractionsTotal.WithLabelValues(provider.Name(), metrics.OutcomeSuccess).Inc()
	metrics.ExtractionDuration.WithLabelValues(provider.Name()).Observe(result.ProcessingTime.Seconds())

	s.logger.Info("extraction completed", map[string]interface{}{
		"provider":   provider.Name(),
		"confidence": result.Confidence,
		"missing":    len(result.MissingFields),
	})

	return result, nil
}

func (s *Service) failure(provider string, start time.Time, usage *TokenUsage, err error) *ExtractionResult {
	metrics.ExtractionsTotal.WithLabelValues(provider, metrics.OutcomeFailure).Inc()
	s.logger.WithError(err).Error("extraction failed", map[string]interface{}{
		"provider": provider,
	})
	return &ExtractionResult{
		Success:        false,
		Error:          err.Error(),
		Usage:          usage,
		Provider:       provider,
		MissingFields:  append([]string{}, requiredFields...),
		ProcessingTime: time.Since(start),
	}
}

// selectProvider resolves the provider priority chain: explicit request
// override, configured preference, then the first provider holding a valid
// credential. A nil, nil return means nothing is available.
func (s *Service) selectProvider(override string) (Provider, error) {
	if override != "" {
		p, ok := s.providers[override]
		if !ok {
			return nil, apperrors.NewConfigurationError(override,
				fmt.Sprintf("provider %q was requested but is not configured", override))
		}
		if err := p.CheckCredentials(); err != nil {
			return nil, apperrors.NewConfigurationError(override,
				fmt.Sprintf("provider %q was requested but its credential is invalid", override))
		}
		return p, nil
	}

	if p, ok := s.providers[s.preferred]; ok && p.CheckCredentials() == nil {
		return p, nil
	}

	for _, name := range s.order {
		if p, ok := s.providers[name]; ok && p.CheckCredentials() == nil {
			return p, nil
		}
	}
	return nil, nil
}

// buildExtractionPrompt embeds the user input, optional context, and the
// exact JSON schema plus allowed enum values the model must use.
func buildExtractionPrompt(userInput, extra string) string {
	var parts []string

	parts = append(parts, "Extract structured business information from the description below.")
	parts = append(parts, fmt.Sprintf("\nBusiness description: %s", userInput))
	if extra != "" {
		parts = append(parts, fmt.Sprintf("\nAdditional context: %s", extra))
	}

	parts = append(parts, "\nRespond with a JSON object using exactly this schema:")
	parts = append(parts, `{
  "companyName": "string",
  "industry": "string",
  "businessType": "string",
  "targetAudience": "string",
  "brandPersonality": ["string"],
  "colorPreferences": ["string"],
  "stylePreferences": ["string"],
  "existingBranding": {
    "hasLogo": false,
    "brandColors": ["string"],
    "brandFonts": ["string"],
    "brandDescription": "string"
  },
  "additionalRequirements": "string"
}`)

	parts = append(parts, "\nAllowed industry values: "+strings.Join(industryCategories(), ", "))
	parts = append(parts, "Allowed businessType values: "+strings.Join(businessTypeCategories(), ", "))
	parts = append(parts, "Allowed stylePreferences values: "+strings.Join(styleValues(), ", "))

	parts = append(parts, "\nOmit any field you cannot determine from the description. Do not invent values.")

	return strings.Join(parts, "\n")
}

func industryCategories() []string {
	return []string{
		IndustryTechnology, IndustryHealthcare, IndustryFinance, IndustryEducation,
		IndustryRetail, IndustryFoodBeverage, IndustryRealEstate, IndustryFitness,
		IndustryBeauty, IndustryAutomotive, IndustryTravel, IndustryEntertain,
		IndustryConstruction, IndustryLegal, IndustryMarketing, IndustryConsulting,
		IndustryNonprofit, IndustryOther,
	}
}

func businessTypeCategories() []string {
	return []string{
		BusinessTypeSmallBusiness, BusinessTypeStartup, BusinessTypeEnterprise,
		BusinessTypeFreelance, BusinessTypeEcommerce, BusinessTypeNonprofit,
		BusinessTypeFranchise, BusinessTypeAgency,
	}
}

func styleValues() []string {
	return []string{
		"modern", "minimalist", "vintage", "classic", "playful", "bold",
		"elegant", "professional", "creative", "abstract", "geometric",
		"mascot", "wordmark", "emblem",
	}
}

// healthProbe is a deliberately tiny extraction used to verify a provider
// end to end without a meaningful token spend.
const healthProbe = "A small coffee shop called Beanly"

// HealthCheck probes every configured provider concurrently. One
// provider's failure never affects another's result.
func (s *Service) HealthCheck(ctx context.Context) map[string]ProviderHealth {
	out := make(map[string]ProviderHealth, len(s.providers))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for name, p := range s.providers {
		wg.Add(1)
		go func(name string, p Provider) {
			defer wg.Done()

			start := time.Now()
			h := s.probe(ctx, p)
			h.Latency = time.Since(start)

			mu.Lock()
			out[name] = h
			mu.Unlock()
		}(name, p)
	}

	wg.Wait()
	return out
}

func (s *Service) probe(ctx context.Context, p Provider) (h ProviderHealth) {
	defer func() {
		if r := recover(); r != nil {
			h = ProviderHealth{Error: fmt.Sprintf("panic during probe: %v", r)}
		}
	}()

	if err := p.CheckCredentials(); err != nil {
		return ProviderHealth{Error: err.Error()}
	}

	params := GenerationParams{MaxTokens: 50, Temperature: 0, System: extractionSystem}
	resp, err := p.SendPrompt(ctx, buildExtractionPrompt(healthProbe, ""), params)
	if err != nil {
		return ProviderHealth{Error: err.Error()}
	}
	if strings.TrimSpace(p.ExtractText(resp)) == "" {
		return ProviderHealth{Error: "provider returned an empty response"}
	}
	return ProviderHealth{Available: true}
}
