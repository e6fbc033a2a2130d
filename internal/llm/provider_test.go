package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logo-engine/internal/common/config"
	apperrors "logo-engine/internal/common/errors"
	commonhttp "logo-engine/internal/common/http"
	"logo-engine/internal/common/logger"
)

func testClient() *commonhttp.Client {
	return commonhttp.NewClient(5 * time.Second)
}

func providerConfig(apiKey, baseURL string) config.ProviderConfig {
	return config.ProviderConfig{
		APIKey:  apiKey,
		Model:   "test-model",
		BaseURL: baseURL,
	}
}

// jsonServer returns a server that records the last request body and
// replies with the given response.
func jsonServer(t *testing.T, status int, response map[string]interface{}, lastBody *map[string]interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if lastBody != nil {
			var body map[string]interface{}
			_ = json.NewDecoder(r.Body).Decode(&body)
			*lastBody = body
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(response)
	}))
}

func TestOpenAIProvider_CheckCredentials(t *testing.T) {
	tests := []struct {
		name    string
		apiKey  string
		wantErr bool
	}{
		{"valid sk key", "sk-test123", false},
		{"missing key", "", true},
		{"wrong format", "pk-test123", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewOpenAIProvider(providerConfig(tt.apiKey, "http://unused"), testClient(), logger.NewNoOpLogger())
			err := p.CheckCredentials()
			if tt.wantErr {
				assert.True(t, apperrors.IsConfiguration(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOpenAIProvider_SendPrompt(t *testing.T) {
	var lastBody map[string]interface{}
	server := jsonServer(t, http.StatusOK, map[string]interface{}{
		"choices": []interface{}{
			map[string]interface{}{
				"message": map[string]interface{}{"content": `{"companyName":"Beanly"}`},
			},
		},
		"usage": map[string]interface{}{
			"prompt_tokens":     120,
			"completion_tokens": 30,
			"total_tokens":      150,
		},
	}, &lastBody)
	defer server.Close()

	p := NewOpenAIProvider(providerConfig("sk-test", server.URL), testClient(), logger.NewTestLogger(t))

	resp, err := p.SendPrompt(context.Background(), "describe Beanly", GenerationParams{
		MaxTokens:   100,
		Temperature: 0.3,
		System:      "extract business info",
	})
	require.NoError(t, err)

	// System instruction rides as the leading message.
	messages := lastBody["messages"].([]interface{})
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]interface{})["role"])
	assert.Equal(t, "user", messages[1].(map[string]interface{})["role"])

	assert.Equal(t, `{"companyName":"Beanly"}`, p.ExtractText(resp))

	usage := p.ExtractUsage(resp)
	require.NotNil(t, usage)
	assert.Equal(t, 120, usage.PromptTokens)
	assert.Equal(t, 30, usage.CompletionTokens)
	assert.Equal(t, 150, usage.TotalTokens)
}

func TestOpenAIProvider_APIError(t *testing.T) {
	server := jsonServer(t, http.StatusTooManyRequests, map[string]interface{}{
		"error": map[string]interface{}{"message": "rate limited"},
	}, nil)
	defer server.Close()

	p := NewOpenAIProvider(providerConfig("sk-test", server.URL), testClient(), logger.NewNoOpLogger())

	_, err := p.SendPrompt(context.Background(), "hello", GenerationParams{MaxTokens: 10})
	require.Error(t, err)

	var apiErr *apperrors.ProviderAPIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, ProviderOpenAI, apiErr.Provider)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.NotNil(t, apiErr.Body, "vendor error body is preserved")
}

func TestAnthropicProvider_SendPrompt(t *testing.T) {
	var lastBody map[string]interface{}
	var gotVersion string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotVersion = r.Header.Get("anthropic-version")
		_ = json.NewDecoder(r.Body).Decode(&lastBody)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"content": []interface{}{
				map[string]interface{}{"type": "text", "text": `{"companyName":"Beanly"}`},
			},
			"usage": map[string]interface{}{
				"input_tokens":  80,
				"output_tokens": 20,
			},
		})
	}))
	defer server.Close()

	p := NewAnthropicProvider(providerConfig("key", server.URL), testClient(), logger.NewTestLogger(t))

	resp, err := p.SendPrompt(context.Background(), "describe Beanly", GenerationParams{
		MaxTokens: 100,
		System:    "extract business info",
	})
	require.NoError(t, err)

	assert.Equal(t, anthropicVersion, gotVersion)

	// System instruction is a top-level field, never a message.
	assert.Equal(t, "extract business info", lastBody["system"])
	messages := lastBody["messages"].([]interface{})
	require.Len(t, messages, 1)
	assert.Equal(t, "user", messages[0].(map[string]interface{})["role"])

	assert.Equal(t, `{"companyName":"Beanly"}`, p.ExtractText(resp))

	usage := p.ExtractUsage(resp)
	require.NotNil(t, usage)
	assert.Equal(t, 100, usage.TotalTokens, "total is computed from input and output")
}

func TestGoogleProvider_SendPrompt(t *testing.T) {
	var lastBody map[string]interface{}
	var gotPath, gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		_ = json.NewDecoder(r.Body).Decode(&lastBody)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []interface{}{
				map[string]interface{}{
					"content": map[string]interface{}{
						"parts": []interface{}{
							map[string]interface{}{"text": `{"companyName":"Beanly"}`},
						},
					},
				},
			},
			"usageMetadata": map[string]interface{}{
				"promptTokenCount":     90,
				"candidatesTokenCount": 25,
				"totalTokenCount":      115,
			},
		})
	}))
	defer server.Close()

	p := NewGoogleProvider(providerConfig("g-key", server.URL), testClient(), logger.NewTestLogger(t))

	resp, err := p.SendPrompt(context.Background(), "describe Beanly", GenerationParams{
		MaxTokens: 100,
		System:    "extract business info",
	})
	require.NoError(t, err)

	assert.Equal(t, "/v1beta/models/test-model:generateContent", gotPath)
	assert.Equal(t, "g-key", gotKey, "credential travels as a query parameter")

	// System instruction is folded into the single text part.
	contents := lastBody["contents"].([]interface{})
	parts := contents[0].(map[string]interface{})["parts"].([]interface{})
	text := parts[0].(map[string]interface{})["text"].(string)
	assert.Contains(t, text, "extract business info")
	assert.Contains(t, text, "describe Beanly")

	assert.Equal(t, `{"companyName":"Beanly"}`, p.ExtractText(resp))

	usage := p.ExtractUsage(resp)
	require.NotNil(t, usage)
	assert.Equal(t, 115, usage.TotalTokens)
}

func TestExtractText_MalformedEnvelope(t *testing.T) {
	providers := []Provider{
		NewOpenAIProvider(providerConfig("sk-x", ""), testClient(), logger.NewNoOpLogger()),
		NewAnthropicProvider(providerConfig("x", ""), testClient(), logger.NewNoOpLogger()),
		NewGoogleProvider(providerConfig("x", ""), testClient(), logger.NewNoOpLogger()),
	}
	envelopes := []map[string]interface{}{
		nil,
		{},
		{"choices": []interface{}{}},
		{"content": "not an array"},
		{"candidates": []interface{}{map[string]interface{}{"content": 7}}},
	}

	// No envelope shape may panic; a miss is an empty string and nil usage.
	for _, p := range providers {
		for _, env := range envelopes {
			assert.Empty(t, p.ExtractText(env))
			assert.Nil(t, p.ExtractUsage(env))
		}
	}
}

func TestExtractUsage_ComputedTotal(t *testing.T) {
	p := NewOpenAIProvider(providerConfig("sk-x", ""), testClient(), logger.NewNoOpLogger())
	usage := p.ExtractUsage(map[string]interface{}{
		"usage": map[string]interface{}{
			"prompt_tokens":     float64(10),
			"completion_tokens": float64(5),
		},
	})
	require.NotNil(t, usage)
	assert.Equal(t, 15, usage.TotalTokens)
}
