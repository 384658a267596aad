package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		InitialWait: time.Millisecond,
		MaxWait:     5 * time.Millisecond,
		Multiplier:  2.0,
	}
}

func unavailable() MockResponse {
	return MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("503")}}
}

func TestRetry(t *testing.T) {
	ok := MockResponse{Content: json.RawMessage(`{"ok":true}`)}
	invalid := MockResponse{Err: &ErrInvalidResponse{Content: json.RawMessage(`nope`), Err: errors.New("not json")}}

	tests := []struct {
		name      string
		responses []MockResponse
		wantErr   bool
		wantCalls int
	}{
		{"first attempt succeeds", []MockResponse{ok}, false, 1},
		{"transient then success", []MockResponse{unavailable(), ok}, false, 2},
		{"attempts exhausted", []MockResponse{unavailable(), unavailable(), unavailable(), ok}, true, 3},
		{"truncation not retried", []MockResponse{{Err: &ErrMaxTokensExceeded{}}, ok}, true, 1},
		{"invalid response retried once", []MockResponse{invalid, invalid, ok}, true, 2},
		{"invalid then valid", []MockResponse{invalid, ok}, false, 2},
		{"rate limit with retry-after", []MockResponse{{Err: &ErrRateLimit{RetryAfter: time.Millisecond}}, ok}, false, 2},
		{"deadline not retried", []MockResponse{{Err: context.DeadlineExceeded}, ok}, true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockProvider(tt.responses...)
			resp, err := WithRetry(mock, fastPolicy()).Generate(context.Background(), Request{})
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.JSONEq(t, `{"ok":true}`, string(resp.Content))
			}
			assert.Equal(t, tt.wantCalls, mock.CallCount())
		})
	}
}

func TestRetryStopsWhenContextCancelled(t *testing.T) {
	mock := NewMockProvider(unavailable(), unavailable(), MockResponse{Content: json.RawMessage(`{}`)})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := WithRetry(mock, fastPolicy()).Generate(ctx, Request{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, mock.CallCount())
}

func TestRetryNormalizesPolicy(t *testing.T) {
	mock := NewMockProvider(unavailable(), unavailable())
	_, err := WithRetry(mock, RetryPolicy{}).Generate(context.Background(), Request{})
	assert.Error(t, err)
	assert.Equal(t, 1, mock.CallCount())
}

func TestRetryBackoffIsCapped(t *testing.T) {
	r := WithRetry(NewMockProvider(), RetryPolicy{
		MaxAttempts: 5,
		InitialWait: 100 * time.Millisecond,
		MaxWait:     300 * time.Millisecond,
		Multiplier:  2,
	}).(*RetryProvider)

	cause := errors.New("x")
	for attempt := range 5 {
		d := r.wait(attempt, cause)
		assert.LessOrEqual(t, d, 360*time.Millisecond, "attempt %d", attempt)
		assert.GreaterOrEqual(t, d, 80*time.Millisecond, "attempt %d", attempt)
	}
	assert.Equal(t, 7*time.Second, r.wait(0, &ErrRateLimit{RetryAfter: 7 * time.Second}))
}

func TestRetryModelID(t *testing.T) {
	assert.Equal(t, "mock", WithRetry(NewMockProvider(), fastPolicy()).ModelID())
}
