package llm

import "time"

// Provider name identifiers. These are the closed set of vendor variants.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGoogle    = "google"
)

// ExtractionRequest is the immutable input to one extraction attempt.
type ExtractionRequest struct {
	UserInput string `json:"userInput"`
	Context   string `json:"context,omitempty"`

	// Provider forces a specific vendor. Empty means "pick for me".
	Provider string `json:"provider,omitempty"`

	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   *int     `json:"maxTokens,omitempty"`
}

// TokenUsage is the canonical usage triple. Vendors report these under
// different names; the provider variants normalize them here.
type TokenUsage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
	TotalTokens      int `json:"totalTokens"`
}

// ExistingBranding captures what the business already has.
type ExistingBranding struct {
	HasLogo          bool     `json:"hasLogo"`
	BrandColors      []string `json:"brandColors,omitempty"`
	BrandFonts       []string `json:"brandFonts,omitempty"`
	BrandDescription string   `json:"brandDescription,omitempty"`
}

// BusinessInformation is the canonical extraction schema. Every field is
// independently optional; companyName, industry and businessType are
// "required" only in the sense that their absence lowers confidence and is
// reported through missingFields.
type BusinessInformation struct {
	CompanyName            string            `json:"companyName,omitempty"`
	Industry               string            `json:"industry,omitempty"`
	BusinessType           string            `json:"businessType,omitempty"`
	TargetAudience         string            `json:"targetAudience,omitempty"`
	BrandPersonality       []string          `json:"brandPersonality,omitempty"`
	ColorPreferences       []string          `json:"colorPreferences,omitempty"`
	StylePreferences       []string          `json:"stylePreferences,omitempty"`
	ExistingBranding       *ExistingBranding `json:"existingBranding,omitempty"`
	AdditionalRequirements string            `json:"additionalRequirements,omitempty"`
}

// ExtractionResult is the value object returned to the caller. It is
// created once per extraction call and never retained by the service.
type ExtractionResult struct {
	Success        bool                 `json:"success"`
	ExtractedInfo  *BusinessInformation `json:"extractedInfo,omitempty"`
	Confidence     float64              `json:"confidence"`
	MissingFields  []string             `json:"missingFields"`
	Suggestions    []string             `json:"suggestions,omitempty"`
	Usage          *TokenUsage          `json:"usage,omitempty"`
	Provider       string               `json:"provider,omitempty"`
	ProcessingTime time.Duration        `json:"processingTime"`
	Error          string               `json:"error,omitempty"`
}

// GenerationParams are the per-call LLM knobs.
type GenerationParams struct {
	MaxTokens   int
	Temperature float64

	// System is the instruction sent through the vendor's system channel.
	// OpenAI takes it as a leading system message, Anthropic as a top-level
	// field, Google folds it into the content.
	System string
}

// ProviderHealth is one provider's entry in the health check report.
type ProviderHealth struct {
	Available bool          `json:"available"`
	Latency   time.Duration `json:"latency"`
	Error     string        `json:"error,omitempty"`
}
