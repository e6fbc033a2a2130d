package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "logo-engine/internal/common/errors"
	commonhttp "logo-engine/internal/common/http"
)

// Provider is the per-vendor capability interface. One variant exists per
// vendor, selected once at construction time. SendPrompt returns the
// vendor's native response body untouched; shape normalization is the
// Extract* methods' job.
type Provider interface {
	Name() string

	// CheckCredentials fails fast when the configured key is missing or
	// malformed, before any network call is made.
	CheckCredentials() error

	SendPrompt(ctx context.Context, prompt string, params GenerationParams) (map[string]interface{}, error)

	// ExtractText pulls the assistant's raw text out of the vendor
	// envelope. Returns an empty string when the expected path is absent.
	ExtractText(resp map[string]interface{}) string

	// ExtractUsage pulls token accounting out of the vendor envelope.
	// Returns nil when the vendor reported no usage data.
	ExtractUsage(resp map[string]interface{}) *TokenUsage
}

// postJSON sends a JSON request and decodes a JSON object response. Any
// non-2xx status becomes a ProviderAPIError carrying the parsed error body
// when the vendor sent one.
func postJSON(ctx context.Context, client *commonhttp.Client, provider, url string, headers map[string]string, payload map[string]interface{}) (map[string]interface{}, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s request: %w", provider, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", provider, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", provider, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", provider, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody map[string]interface{}
		_ = json.Unmarshal(raw, &errBody)
		return nil, apperrors.NewProviderAPIError(provider, resp.StatusCode,
			fmt.Sprintf("%s API returned status %d", provider, resp.StatusCode), errBody)
	}

	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", provider, err)
	}
	return out, nil
}

// nestedValue walks a decoded JSON structure by string keys and integer
// indexes. It never panics; any miss returns nil.
func nestedValue(root interface{}, path ...interface{}) interface{} {
	cur := root
	for _, p := range path {
		switch key := p.(type) {
		case string:
			obj, ok := cur.(map[string]interface{})
			if !ok {
				return nil
			}
			cur, ok = obj[key]
			if !ok {
				return nil
			}
		case int:
			arr, ok := cur.([]interface{})
			if !ok || key < 0 || key >= len(arr) {
				return nil
			}
			cur = arr[key]
		default:
			return nil
		}
	}
	return cur
}

func nestedString(root interface{}, path ...interface{}) string {
	s, _ := nestedValue(root, path...).(string)
	return s
}

// nestedInt handles JSON numbers, which decode as float64.
func nestedInt(root interface{}, path ...interface{}) (int, bool) {
	switch n := nestedValue(root, path...).(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	default:
		return 0, false
	}
}
