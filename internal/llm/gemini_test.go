package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestGeminiModels(t *testing.T) {
	assert.Equal(t, "gemini-2.5-flash", resolveModel("gemini-flash", geminiModels))
	assert.Equal(t, "gemini-2.5-pro", resolveModel("gemini-pro", geminiModels))
	assert.Equal(t, "gemini-2.0-flash", resolveModel("gemini-2.0-flash", geminiModels))
}

func TestGeminiSchema(t *testing.T) {
	s := geminiSchema(verdictSchema().Definition)

	assert.Equal(t, genai.TypeObject, s.Type)
	require.Len(t, s.Properties, 3)
	assert.Equal(t, []string{"good", "partial"}, s.Properties["accuracy"].Enum)
	assert.Equal(t, genai.TypeArray, s.Properties["keywords"].Type)
	assert.Equal(t, genai.TypeString, s.Properties["keywords"].Items.Type)
	assert.Equal(t, genai.TypeInteger, s.Properties["attempts"].Type)
	assert.Equal(t, []string{"accuracy", "keywords"}, s.Required)
}

func TestGeminiSchemaAcceptsAnySlices(t *testing.T) {
	s := geminiSchema(map[string]any{
		"type":     "object",
		"required": []any{"a", 1, "b"},
		"properties": map[string]any{
			"a": map[string]any{"type": "mystery"},
			"b": map[string]any{"type": "boolean", "description": "flag"},
		},
	})
	assert.Equal(t, []string{"a", "b"}, s.Required)
	assert.Equal(t, genai.TypeString, s.Properties["a"].Type)
	assert.Equal(t, "flag", s.Properties["b"].Description)
}

func TestGeminiContents(t *testing.T) {
	out := geminiContents([]Message{{Role: RoleUser, Content: "q"}, {Role: RoleAssistant, Content: "a"}})
	require.Len(t, out, 2)
	assert.Equal(t, "user", out[0].Role)
	assert.Equal(t, "model", out[1].Role)
	assert.Equal(t, "a", out[1].Parts[0].Text)
}
