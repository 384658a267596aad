package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func verdictSchema() *Schema {
	return &Schema{
		Name: "test-verdict",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"accuracy": map[string]any{"type": "string", "enum": []string{"good", "partial"}},
				"keywords": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				"attempts": map[string]any{"type": "integer", "minimum": 0},
			},
			"required":             []string{"accuracy", "keywords"},
			"additionalProperties": false,
		},
	}
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		valid bool
	}{
		{"complete", `{"accuracy":"good","keywords":["cache"],"attempts":2}`, true},
		{"optional omitted", `{"accuracy":"partial","keywords":[]}`, true},
		{"missing required", `{"accuracy":"good"}`, false},
		{"wrong item type", `{"accuracy":"good","keywords":[1]}`, false},
		{"enum violation", `{"accuracy":"perfect","keywords":[]}`, false},
		{"extra property", `{"accuracy":"good","keywords":[],"score":9}`, false},
		{"negative integer", `{"accuracy":"good","keywords":[],"attempts":-1}`, false},
		{"malformed", `{accuracy}`, false},
		{"empty", ``, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(verdictSchema(), json.RawMessage(tt.raw))
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			var inv *ErrInvalidResponse
			assert.ErrorAs(t, err, &inv)
		})
	}
}

func TestValidateResponseNilSchema(t *testing.T) {
	assert.NoError(t, validateResponse(nil, json.RawMessage(`free text`)))
}
