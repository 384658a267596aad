package llm

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/abhisek/prepwise/internal/metrics"
)

func scrape(t *testing.T) string {
	t.Helper()
	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestLoggingRecordsSuccess(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	mock := NewMockProvider(MockResponse{Content: []byte(`{"accuracy":"good"}`), Usage: Usage{InputTokens: 12, OutputTokens: 4}})

	ctx := WithPurpose(context.Background(), "logging-ok")
	_, err := WithLogging(mock, zap.New(core)).Generate(ctx, Request{})
	require.NoError(t, err)

	entries := logs.FilterMessage("model call").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "logging-ok", fields["purpose"])
	assert.Equal(t, int64(12), fields["input_tokens"])
	assert.Contains(t, scrape(t), `prepwise_ai_requests_total{outcome="ok",purpose="logging-ok"} 1`)
}

func TestLoggingRecordsFailure(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	mock := NewMockProvider(MockResponse{Err: errors.New("boom")})

	ctx := WithPurpose(context.Background(), "logging-err")
	_, err := WithLogging(mock, zap.New(core)).Generate(ctx, Request{})
	require.EqualError(t, err, "boom")

	entries := logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, entries, 1)
	assert.Equal(t, "model call failed", entries[0].Message)
	assert.Contains(t, scrape(t), `prepwise_ai_requests_total{outcome="error",purpose="logging-err"} 1`)
}

func TestLoggingNilLogger(t *testing.T) {
	p := WithLogging(NewMockProvider(TextResponse("ok")), nil)
	_, err := p.Generate(context.Background(), Request{})
	assert.NoError(t, err)
	assert.Equal(t, "mock", p.ModelID())
}

func TestLookupCost(t *testing.T) {
	c := LookupCost("gpt-4o-mini")
	require.NotNil(t, c)
	assert.InDelta(t, 0.00075, c.Cost(1000, 1000), 1e-12)
	assert.Nil(t, LookupCost("mock"))
}
