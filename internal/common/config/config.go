package config

// Config is the main application configuration struct.
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	LLM     LLMConfig     `mapstructure:"llm"`
	Flux    FluxConfig    `mapstructure:"flux"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// --- Core App Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// LLMConfig holds settings for the business-information extraction providers.
type LLMConfig struct {
	OpenAI    ProviderConfig `mapstructure:"openai"`
	Anthropic ProviderConfig `mapstructure:"anthropic"`
	Google    ProviderConfig `mapstructure:"google"`

	// PreferredProvider is used when a request does not name one.
	PreferredProvider string `mapstructure:"preferred_provider"`

	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
	Timeout     int     `mapstructure:"timeout"` // milliseconds
}

// ProviderConfig holds per-vendor credentials and endpoint settings.
type ProviderConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// Configured reports whether the vendor has a credential at all. Key format
// checks are the provider's own concern.
func (p ProviderConfig) Configured() bool {
	return p.APIKey != ""
}

// FluxConfig holds settings for the image generation client.
type FluxConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`

	PollInterval     int `mapstructure:"poll_interval"` // milliseconds
	Timeout          int `mapstructure:"timeout"`       // milliseconds, whole-job deadline
	MaxRetries       int `mapstructure:"max_retries"`
	RetryBackoffBase int `mapstructure:"retry_backoff_base"` // milliseconds
	RetryBackoffCap  int `mapstructure:"retry_backoff_cap"`  // milliseconds

	SafetyTolerance int    `mapstructure:"safety_tolerance"` // 0-2
	OutputFormat    string `mapstructure:"output_format"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
