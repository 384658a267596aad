package llm

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/prepwise/internal/metrics"
)

// LoggingProvider records every generation call in the structured log and
// in the AI request metrics.
type LoggingProvider struct {
	inner  Provider
	logger *zap.Logger
}

// WithLogging wraps p with call logging. A nil logger discards the log
// lines but metrics are still recorded.
func WithLogging(p Provider, logger *zap.Logger) Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingProvider{inner: p, logger: logger}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	resp, err := l.inner.Generate(ctx, req)
	elapsed := time.Since(start)

	logFields := []zap.Field{
		zap.String("purpose", purpose),
		zap.String("model", l.inner.ModelID()),
		zap.Duration("latency", elapsed),
		zap.Bool("structured", req.Schema != nil),
	}

	if err != nil {
		metrics.AIRequest(purpose, "error", elapsed)
		l.logger.Warn("model call failed", append(logFields, zap.Error(err))...)
		return nil, err
	}

	metrics.AIRequest(purpose, "ok", elapsed)
	logFields = append(logFields,
		zap.String("served_by", resp.Model),
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens),
	)
	if c := LookupCost(resp.Model); c != nil {
		logFields = append(logFields, zap.Float64("cost_usd", c.Cost(resp.Usage.InputTokens, resp.Usage.OutputTokens)))
	}
	l.logger.Debug("model call", logFields...)
	return resp, nil
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}
