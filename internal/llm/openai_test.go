package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talking_menu/internal/common"
)

func sseServer(t *testing.T, status int, events ...string) (*httptest.Server, *chatRequest) {
	t.Helper()
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"message":"quota exceeded","type":"insufficient_quota"}}`))
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		for _, e := range events {
			_, _ = fmt.Fprintf(w, "data: %s\n\n", e)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

func TestStreamChat_CollectsDeltasAndUsage(t *testing.T) {
	srv, got := sseServer(t, http.StatusOK,
		`{"model":"gpt-4o-mini-2024","choices":[{"delta":{"role":"assistant"}}]}`,
		`{"choices":[{"delta":{"content":"Try the "}}]}`,
		`{"choices":[{"delta":{"content":"pho bo."}}]}`,
		`{"choices":[{"delta":{},"finish_reason":"stop"}]}`,
		`{"choices":[],"usage":{"prompt_tokens":12,"completion_tokens":5,"total_tokens":17,"prompt_tokens_details":{"cached_tokens":8,"audio_tokens":0},"completion_tokens_details":{"reasoning_tokens":2,"audio_tokens":0,"accepted_prediction_tokens":1,"rejected_prediction_tokens":0}}}`,
		`[DONE]`,
	)
	client := NewOpenAIClient(srv.URL+"/v1/", "sk-test", "gpt-4o-mini", time.Second)

	var deltas []string
	res, err := client.StreamChat(context.Background(), StreamRequest{
		Messages: []Message{{Role: RoleSystem, Content: "menu"}, {Role: RoleUser, Content: "what is good?"}},
	}, func(d string) error {
		deltas = append(deltas, d)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Try the ", "pho bo."}, deltas)
	assert.Equal(t, "Try the pho bo.", res.Text)
	assert.Equal(t, "gpt-4o-mini-2024", res.Model)
	require.NotNil(t, res.Usage)
	assert.Equal(t, int64(17), res.Usage.TotalTokens)
	require.NotNil(t, res.Usage.PromptTokensDetails)
	assert.Equal(t, int64(8), res.Usage.PromptTokensDetails.CachedTokens)
	require.NotNil(t, res.Usage.CompletionTokensDetails)
	assert.Equal(t, int64(2), res.Usage.CompletionTokensDetails.ReasoningTokens)
	assert.Equal(t, int64(1), res.Usage.CompletionTokensDetails.AcceptedPredictionTokens)

	assert.True(t, got.Stream)
	require.NotNil(t, got.StreamOptions)
	assert.True(t, got.StreamOptions.IncludeUsage)
	assert.Equal(t, "gpt-4o-mini", got.Model)
	assert.Len(t, got.Messages, 2)
}

func TestStreamChat_UpstreamError(t *testing.T) {
	srv, _ := sseServer(t, http.StatusTooManyRequests)
	client := NewOpenAIClient(srv.URL+"/v1", "sk-test", "gpt-4o-mini", time.Second)

	_, err := client.StreamChat(context.Background(), StreamRequest{Messages: []Message{{Role: RoleUser, Content: "hi"}}}, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadGateway, common.StatusOf(err))
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestStreamChat_CallbackErrorStops(t *testing.T) {
	srv, _ := sseServer(t, http.StatusOK,
		`{"choices":[{"delta":{"content":"a"}}]}`,
		`{"choices":[{"delta":{"content":"b"}}]}`,
		`[DONE]`,
	)
	client := NewOpenAIClient(srv.URL+"/v1", "sk-test", "gpt-4o-mini", time.Second)

	stop := errors.New("client gone")
	calls := 0
	_, err := client.StreamChat(context.Background(), StreamRequest{Messages: []Message{{Role: RoleUser, Content: "hi"}}}, func(string) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestStreamChat_MalformedChunk(t *testing.T) {
	srv, _ := sseServer(t, http.StatusOK, `{not json`)
	client := NewOpenAIClient(srv.URL+"/v1", "sk-test", "gpt-4o-mini", time.Second)

	_, err := client.StreamChat(context.Background(), StreamRequest{Messages: []Message{{Role: RoleUser, Content: "hi"}}}, nil)
	assert.Equal(t, http.StatusBadGateway, common.StatusOf(err))
}

func TestStreamChat_TruncatedStreamFails(t *testing.T) {
	srv, _ := sseServer(t, http.StatusOK,
		`{"choices":[{"delta":{"content":"The pho is made wi"}}]}`,
	)
	client := NewOpenAIClient(srv.URL+"/v1", "sk-test", "gpt-4o-mini", time.Second)

	var deltas []string
	res, err := client.StreamChat(context.Background(), StreamRequest{Messages: []Message{{Role: RoleUser, Content: "hi"}}}, func(d string) error {
		deltas = append(deltas, d)
		return nil
	})
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Equal(t, http.StatusBadGateway, common.StatusOf(err))
	assert.Equal(t, []string{"The pho is made wi"}, deltas)
}

func TestStreamChat_FinishReasonWithoutDone(t *testing.T) {
	srv, _ := sseServer(t, http.StatusOK,
		`{"choices":[{"delta":{"content":"Pho."}}]}`,
		`{"choices":[{"delta":{},"finish_reason":"stop"}]}`,
	)
	client := NewOpenAIClient(srv.URL+"/v1", "sk-test", "gpt-4o-mini", time.Second)

	res, err := client.StreamChat(context.Background(), StreamRequest{Messages: []Message{{Role: RoleUser, Content: "hi"}}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Pho.", res.Text)
	assert.Nil(t, res.Usage)
}
