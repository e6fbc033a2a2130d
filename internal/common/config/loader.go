package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like OPENAI_API_KEY
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	setDefaults()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	envConfigFile := fmt.Sprintf("config.%s", env)
	viper.SetConfigName(envConfigFile)
	_ = viper.MergeInConfig() // ignore error if not found

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	return &cfg, nil
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	return &cfg, nil
}

func loadEnvFile() {
	// Try multiple paths (for running from different directories)
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

// Direct override if config values are still empty after expansion
func overrideEmptyConfig(cfg *Config) {
	if cfg.LLM.OpenAI.APIKey == "" {
		if val := os.Getenv("OPENAI_API_KEY"); val != "" {
			cfg.LLM.OpenAI.APIKey = val
		}
	}
	if cfg.LLM.Anthropic.APIKey == "" {
		if val := os.Getenv("ANTHROPIC_API_KEY"); val != "" {
			cfg.LLM.Anthropic.APIKey = val
		}
	}
	if cfg.LLM.Google.APIKey == "" {
		if val := os.Getenv("GOOGLE_AI_API_KEY"); val != "" {
			cfg.LLM.Google.APIKey = val
		}
	}
	if cfg.Flux.APIKey == "" {
		if val := os.Getenv("FLUX_API_KEY"); val != "" {
			cfg.Flux.APIKey = val
		}
	}
}

// setDefaults registers defaults for numeric fields where zero is a
// meaningful operator choice. Viper keeps these in a separate layer, so an
// explicit max_retries: 0 (no retries) or safety_tolerance: 0 (strictest
// moderation) in the config file is not mistaken for an unset key.
func setDefaults() {
	viper.SetDefault("flux.max_retries", 3)
	viper.SetDefault("flux.safety_tolerance", 2)
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	// LLM defaults
	if cfg.LLM.PreferredProvider == "" {
		cfg.LLM.PreferredProvider = "openai"
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 1500
	}
	if cfg.LLM.Temperature == 0 {
		cfg.LLM.Temperature = 0.3
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = 60000
	}
	if cfg.LLM.OpenAI.Model == "" {
		cfg.LLM.OpenAI.Model = "gpt-4o-mini"
	}
	if cfg.LLM.OpenAI.BaseURL == "" {
		cfg.LLM.OpenAI.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.LLM.Anthropic.Model == "" {
		cfg.LLM.Anthropic.Model = "claude-3-5-haiku-20241022"
	}
	if cfg.LLM.Anthropic.BaseURL == "" {
		cfg.LLM.Anthropic.BaseURL = "https://api.anthropic.com"
	}
	if cfg.LLM.Google.Model == "" {
		cfg.LLM.Google.Model = "gemini-1.5-flash"
	}
	if cfg.LLM.Google.BaseURL == "" {
		cfg.LLM.Google.BaseURL = "https://generativelanguage.googleapis.com"
	}

	// Flux defaults
	if cfg.Flux.BaseURL == "" {
		cfg.Flux.BaseURL = "https://api.bfl.ai"
	}
	if cfg.Flux.Model == "" {
		cfg.Flux.Model = "flux-kontext-pro"
	}
	if cfg.Flux.PollInterval == 0 {
		cfg.Flux.PollInterval = 2000
	}
	if cfg.Flux.Timeout == 0 {
		cfg.Flux.Timeout = 300000
	}
	if cfg.Flux.RetryBackoffBase == 0 {
		cfg.Flux.RetryBackoffBase = 1000
	}
	if cfg.Flux.RetryBackoffCap == 0 {
		cfg.Flux.RetryBackoffCap = 10000
	}
	if cfg.Flux.OutputFormat == "" {
		cfg.Flux.OutputFormat = "png"
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
