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

func TestMockProvider_ReplaysInOrder(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"accuracy":"good"}`), Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		TextResponse("Tell me about a time you disagreed."),
	)

	first, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "evaluate"}}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"accuracy":"good"}`, string(first.Content))
	assert.Equal(t, 10, first.Usage.InputTokens)
	assert.Equal(t, "end", first.StopReason)

	second, err := mock.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "Tell me about a time you disagreed.", second.Text())

	_, err = mock.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	assert.ErrorAs(t, err, &unavail)
	assert.Equal(t, 3, mock.CallCount())
}

func TestMockProvider_RecordsRequests(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: &ErrRateLimit{}})

	_, err := mock.Generate(context.Background(), Request{System: "sys", Messages: []Message{{Role: RoleUser, Content: "hello"}}})
	var rl *ErrRateLimit
	require.ErrorAs(t, err, &rl)

	last, ok := mock.LastRequest()
	require.True(t, ok)
	assert.Equal(t, "sys", last.System)
	assert.Equal(t, "mock", mock.ModelID())
}

func TestMockProvider_BlockHonoursContext(t *testing.T) {
	mock := NewMockProvider(TextResponse("late"))
	mock.Block = make(chan struct{})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := mock.Generate(ctx, Request{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestResponseText(t *testing.T) {
	tests := map[string]string{
		"  plain text \n":      "plain text",
		`"quoted \"summary\""`: `quoted "summary"`,
		`{"kept":"as json"}`:   `{"kept":"as json"}`,
		`"unterminated`:        `"unterminated`,
		"":                     "",
	}
	for in, want := range tests {
		r := &Response{Content: json.RawMessage(in)}
		assert.Equal(t, want, r.Text(), "input %q", in)
	}
	var nilResp *Response
	assert.Empty(t, nilResp.Text())
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "unknown", PurposeFrom(ctx))
	assert.Equal(t, "unknown", PurposeFrom(WithPurpose(ctx, "")))
	assert.Equal(t, PurposeEvaluation, PurposeFrom(WithPurpose(ctx, PurposeEvaluation)))
}

func TestErrorsUnwrap(t *testing.T) {
	cause := errors.New("boom")
	assert.ErrorIs(t, &ErrRateLimit{Err: cause}, cause)
	assert.ErrorIs(t, &ErrInvalidResponse{Err: cause}, cause)
	assert.ErrorIs(t, &ErrProviderUnavailable{Err: cause}, cause)
	assert.ErrorIs(t, &ErrTimeout{After: time.Second, Err: context.DeadlineExceeded}, context.DeadlineExceeded)
	assert.Equal(t, "model provider unavailable", (&ErrProviderUnavailable{}).Error())
}
