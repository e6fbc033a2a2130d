package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateGenerationRequest(t *testing.T) {
	tests := []struct {
		name    string
		options map[string]interface{}
		valid   bool
		errHint string
	}{
		{
			"all knobs valid",
			map[string]interface{}{
				"prompt":           "a logo",
				"aspect_ratio":     "1:1",
				"safety_tolerance": 2,
				"output_format":    "png",
				"variation_count":  3,
				"seed":             42,
			},
			true, "",
		},
		{"empty options", map[string]interface{}{}, true, ""},
		{"empty prompt", map[string]interface{}{"prompt": ""}, false, "prompt"},
		{"free-form aspect ratio", map[string]interface{}{"aspect_ratio": "wide"}, false, "aspect_ratio"},
		{"ratio with spaces", map[string]interface{}{"aspect_ratio": "16 : 9"}, false, "aspect_ratio"},
		{"tolerance above range", map[string]interface{}{"safety_tolerance": 3}, false, "safety_tolerance"},
		{"negative tolerance", map[string]interface{}{"safety_tolerance": -1}, false, "safety_tolerance"},
		{"gif output", map[string]interface{}{"output_format": "gif"}, false, "output_format"},
		{"jpeg output", map[string]interface{}{"output_format": "jpeg"}, true, ""},
		{"nine variations", map[string]interface{}{"variation_count": 9}, false, "variation_count"},
		{"zero variations", map[string]interface{}{"variation_count": 0}, true, ""},
		{"unknown keys pass through", map[string]interface{}{"webhook_url": "https://example.com"}, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ValidateGenerationRequest(tt.options)
			require.NoError(t, err)
			assert.Equal(t, tt.valid, res.Valid)
			if !tt.valid {
				require.NotEmpty(t, res.Errors)
				found := false
				for _, e := range res.Errors {
					if strings.Contains(e, tt.errHint) {
						found = true
					}
				}
				assert.True(t, found, "expected an error mentioning %q, got %v", tt.errHint, res.Errors)
			}
		})
	}
}
