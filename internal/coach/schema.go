package coach

import (
	"github.com/abhisek/prepwise/internal/llm"
	"github.com/abhisek/prepwise/internal/scoring"
)

func labelEnum() []any {
	labels := scoring.Labels()
	out := make([]any, len(labels))
	for i, l := range labels {
		out[i] = l
	}
	return out
}

// EvaluationSchema is the JSON contract for answer evaluation.
var EvaluationSchema = &llm.Schema{
	Name:        "answer-evaluation",
	Description: "Assessment of one interview answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"accuracy": map[string]any{
				"type":        "string",
				"enum":        labelEnum(),
				"description": "How correct and complete the answer is",
			},
			"feedback": map[string]any{
				"type":        "string",
				"description": "Two or three sentences of feedback for the candidate",
			},
			"expected_answer": map[string]any{
				"type":        "string",
				"description": "A short model answer",
			},
			"keywords": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Key concepts a strong answer mentions",
			},
			"answer_summary": map[string]any{
				"type":        "string",
				"description": "One sentence restating the candidate's answer",
			},
		},
		"required":             []any{"accuracy", "feedback", "expected_answer", "keywords", "answer_summary"},
		"additionalProperties": false,
	},
}

type evaluationOutput struct {
	Accuracy       string   `json:"accuracy"`
	Feedback       string   `json:"feedback"`
	ExpectedAnswer string   `json:"expected_answer"`
	Keywords       []string `json:"keywords"`
	AnswerSummary  string   `json:"answer_summary"`
}
