// Package coach produces interview content with a language model and
// degrades to canned content when the model fails.
package coach

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/abhisek/prepwise/internal/apperr"
	"github.com/abhisek/prepwise/internal/interview"
	"github.com/abhisek/prepwise/internal/llm"
	"github.com/abhisek/prepwise/internal/metrics"
	"github.com/abhisek/prepwise/internal/scoring"
	"github.com/abhisek/prepwise/internal/speech"
)

// FallbackFeedback is the feedback of a substituted evaluation.
const FallbackFeedback = "Automatic feedback is unavailable for this answer. Compare it with your notes and try again later."

// Config controls generation budgets.
type Config struct {
	QuestionTokens   int
	FollowUpTokens   int
	EvaluationTokens int
	SummaryTokens    int

	Temperature float64

	// MaxPriorQuestions caps the already-asked list sent with a question
	// prompt.
	MaxPriorQuestions int
}

func DefaultConfig() Config {
	return Config{
		QuestionTokens:    200,
		FollowUpTokens:    100,
		EvaluationTokens:  600,
		SummaryTokens:     800,
		Temperature:       0.7,
		MaxPriorQuestions: 8,
	}
}

// Coach implements interview.Coach on top of an llm.Provider.
type Coach struct {
	provider    llm.Provider
	pools       *Pools
	transcriber speech.Transcriber
	config      Config
	logger      *zap.Logger
}

var _ interview.Coach = (*Coach)(nil)

// Option customizes a Coach.
type Option func(*Coach)

func WithTranscriber(t speech.Transcriber) Option {
	return func(c *Coach) { c.transcriber = t }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Coach) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithConfig(cfg Config) Option {
	return func(c *Coach) { c.config = cfg }
}

// New returns a Coach. A nil pools uses the embedded pools.
func New(provider llm.Provider, pools *Pools, opts ...Option) (*Coach, error) {
	if provider == nil {
		return nil, errors.New("coach: provider is required")
	}
	if pools == nil {
		p, err := LoadPools()
		if err != nil {
			return nil, err
		}
		pools = p
	}
	c := &Coach{provider: provider, pools: pools, config: DefaultConfig(), logger: zap.NewNop()}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// PreparedQuestion generates the next question for round. On failure the
// first pool question not yet asked in the interview is returned.
func (c *Coach) PreparedQuestion(ctx context.Context, iv *interview.Interview, round int) (string, error) {
	asked := askedTexts(iv)
	resp, err := c.provider.Generate(llm.WithPurpose(ctx, llm.PurposeQuestion), llm.Request{
		System:      interviewerSystem,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: questionMessage(iv, round, asked, c.config.MaxPriorQuestions)}},
		MaxTokens:   c.config.QuestionTokens,
		Temperature: c.config.Temperature,
	})
	if err == nil {
		if q := cleanQuestion(resp.Text()); q != "" {
			return q, nil
		}
		err = errors.New("empty question")
	}
	if ctx.Err() != nil {
		return "", classify(ctx.Err(), "question generation")
	}

	q := nextUnasked(c.pools.Lookup(iv.Role, iv.Difficulty), asked)
	c.fallback(llm.PurposeQuestion, iv, err)
	return q, nil
}

// FollowUp generates a question probing answer. On failure a generic
// follow-up is returned.
func (c *Coach) FollowUp(ctx context.Context, iv *interview.Interview, question, answer string) (string, error) {
	if strings.TrimSpace(question) == "" || strings.TrimSpace(answer) == "" {
		return "", apperr.New(apperr.KindInvalidInput, "both question and answer are required")
	}
	resp, err := c.provider.Generate(llm.WithPurpose(ctx, llm.PurposeFollowUp), llm.Request{
		System:      followUpSystem,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: followUpMessage(question, answer)}},
		MaxTokens:   c.config.FollowUpTokens,
		Temperature: c.config.Temperature,
	})
	if err == nil {
		if q := cleanQuestion(resp.Text()); q != "" {
			return q, nil
		}
		err = errors.New("empty follow-up")
	}
	if ctx.Err() != nil {
		return "", classify(ctx.Err(), "follow-up generation")
	}

	pool := c.pools.FollowUps()
	c.fallback(llm.PurposeFollowUp, iv, err)
	return pool[countFollowUps(iv)%len(pool)], nil
}

// Evaluate grades answer. Model output that is missing or breaks the
// evaluation contract is replaced by a neutral "partial" evaluation with
// Fallback set.
func (c *Coach) Evaluate(ctx context.Context, iv *interview.Interview, question, answer string) (*interview.Evaluation, error) {
	if strings.TrimSpace(question) == "" || strings.TrimSpace(answer) == "" {
		return nil, apperr.New(apperr.KindInvalidInput, "both question and answer are required")
	}

	ev, err := c.evaluate(ctx, iv, question, answer)
	if err == nil {
		return ev, nil
	}
	if ctx.Err() != nil {
		return nil, classify(ctx.Err(), "evaluation")
	}
	c.fallback(llm.PurposeEvaluation, iv, err)
	return &interview.Evaluation{
		Accuracy: scoring.LabelPartial,
		Score:    scoring.ScoreFromAccuracyLabel(scoring.LabelPartial),
		Feedback: FallbackFeedback,
		Fallback: true,
	}, nil
}

func (c *Coach) evaluate(ctx context.Context, iv *interview.Interview, question, answer string) (*interview.Evaluation, error) {
	resp, err := c.provider.Generate(llm.WithPurpose(ctx, llm.PurposeEvaluation), llm.Request{
		System:    evaluatorSystem,
		Messages:  []llm.Message{{Role: llm.RoleUser, Content: evaluationMessage(iv, question, answer)}},
		Schema:    EvaluationSchema,
		MaxTokens: c.config.EvaluationTokens,
	})
	if err != nil {
		return nil, classify(err, "evaluation")
	}

	var out evaluationOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, apperr.Wrap(apperr.KindGenerationFailed, err, "evaluation is not a JSON object")
	}
	label := strings.ToLower(strings.TrimSpace(out.Accuracy))
	if label == "" {
		return nil, apperr.New(apperr.KindGenerationFailed, "evaluation has no accuracy label")
	}
	return &interview.Evaluation{
		Accuracy:       label,
		Score:          scoring.ScoreFromAccuracyLabel(label),
		Feedback:       strings.TrimSpace(out.Feedback),
		ExpectedAnswer: strings.TrimSpace(out.ExpectedAnswer),
		AnswerSummary:  strings.TrimSpace(out.AnswerSummary),
		Keywords:       nonBlank(out.Keywords),
	}, nil
}

// Summarize writes the overall interview summary. Failures are returned;
// the caller decides on a placeholder.
func (c *Coach) Summarize(ctx context.Context, iv *interview.Interview) (string, error) {
	resp, err := c.provider.Generate(llm.WithPurpose(ctx, llm.PurposeSummary), llm.Request{
		System:      summarySystem,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: summaryMessage(iv)}},
		MaxTokens:   c.config.SummaryTokens,
		Temperature: c.config.Temperature,
	})
	if err != nil {
		return "", classify(err, "summary generation")
	}
	text := resp.Text()
	if text == "" {
		return "", apperr.New(apperr.KindGenerationFailed, "summary generation returned no text")
	}
	return text, nil
}

// TranscribeAnswer converts a recorded answer to text.
func (c *Coach) TranscribeAnswer(ctx context.Context, audio []byte, filename string) (string, error) {
	if c.transcriber == nil {
		return "", apperr.New(apperr.KindGenerationFailed, "speech-to-text is not configured")
	}
	return c.transcriber.Transcribe(ctx, audio, filename)
}

func (c *Coach) fallback(purpose string, iv *interview.Interview, err error) {
	metrics.AIFallback(purpose)
	fields := []zap.Field{zap.String("purpose", purpose), zap.Error(err)}
	if iv != nil {
		fields = append(fields, zap.String("session_id", iv.ID), zap.String("user_id", iv.UserID))
	}
	c.logger.Warn("using fallback content", fields...)
}

// classify maps provider failures onto the error taxonomy.
func classify(err error, what string) error {
	var timeout *llm.ErrTimeout
	if errors.As(err, &timeout) || errors.Is(err, context.DeadlineExceeded) {
		return apperr.Wrap(apperr.KindTimeout, err, what+" timed out")
	}
	return apperr.Wrap(apperr.KindGenerationFailed, err, what+" failed")
}

func askedTexts(iv *interview.Interview) []string {
	if iv == nil {
		return nil
	}
	qs := iv.Questions()
	out := make([]string, 0, len(qs))
	for _, q := range qs {
		out = append(out, q.Text)
	}
	return out
}

func countFollowUps(iv *interview.Interview) int {
	if iv == nil {
		return 0
	}
	n := 0
	for _, q := range iv.Questions() {
		if q.Kind == interview.KindFollowUp {
			n++
		}
	}
	return n
}

// nextUnasked returns the first pool entry not in asked, cycling through
// the pool once every entry has been used.
func nextUnasked(pool, asked []string) string {
	seen := make(map[string]bool, len(asked))
	for _, a := range asked {
		seen[normalizeText(a)] = true
	}
	for _, q := range pool {
		if !seen[normalizeText(q)] {
			return q
		}
	}
	return pool[len(asked)%len(pool)]
}
