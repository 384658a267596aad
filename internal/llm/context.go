package llm

import "context"

type purposeKey struct{}

// Purposes label generation calls for logs and metrics.
const (
	PurposeQuestion   = "question"
	PurposeFollowUp   = "followup"
	PurposeEvaluation = "evaluation"
	PurposeSummary    = "summary"
)

// WithPurpose attaches a purpose label to ctx.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the purpose label on ctx, or "unknown".
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey{}).(string); ok && v != "" {
		return v
	}
	return "unknown"
}
