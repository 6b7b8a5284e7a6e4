package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/mongonsh/simple-voice-assistant/application/ports/outbound"
	"github.com/mongonsh/simple-voice-assistant/config"
	"github.com/mongonsh/simple-voice-assistant/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClaudeGenerator(url string, stream bool) outbound.TextGeneratorPort {
	conf := &config.AnthropicConfig{
		ApiUrl:    url,
		ApiKey:    "test-key",
		Model:     config.DefaultAnthropicModel,
		MaxTokens: config.DefaultAnthropicMaxTokens,
		Stream:    stream,
	}
	return NewClaudeTextGenerator(http.DefaultClient, conf, NewZerologWrapperWithWriter(io.Discard, "debug"))
}

func TestClaudeTextGenerator_Generate(t *testing.T) {
	var received claudeRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersionValue, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"model": "claude-sonnet-4-5",
			"stop_reason": "end_turn",
			"content": [{"type": "text", "text": "An API is a contract."}, {"type": "text", "text": "ignored"}],
			"usage": {"input_tokens": 12, "output_tokens": 7}
		}`)
	}))
	defer server.Close()

	generator := newTestClaudeGenerator(server.URL, false)

	generation, err := generator.Generate(context.Background(), outbound.GenerateTextRequest{
		SystemPrompt: "Be concise.",
		Messages: []domain.ConversationTurn{
			{Role: domain.UserRole, Content: "What is 25 * 4?"},
			{Role: domain.AssistantRole, Content: "100"},
			{Role: domain.UserRole, Content: "Now divide that by 5"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "An API is a contract.", generation.Text)
	assert.Equal(t, domain.Usage{InputTokens: 12, OutputTokens: 7}, generation.Usage)
	assert.Equal(t, "end_turn", generation.StopReason)

	assert.Equal(t, config.DefaultAnthropicModel, received.Model)
	assert.Equal(t, 1024, received.MaxTokens)
	assert.Equal(t, "Be concise.", received.System)
	assert.False(t, received.Stream)
	require.Len(t, received.Messages, 3)
	assert.Equal(t, claudeMessage{Role: "assistant", Content: "100"}, received.Messages[1])
}

func TestClaudeTextGenerator_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"type":"error","error":{"type":"rate_limit_error","message":"Number of requests has exceeded your rate limit"}}`)
	}))
	defer server.Close()

	generator := newTestClaudeGenerator(server.URL, false)

	_, err := generator.Generate(context.Background(), outbound.GenerateTextRequest{
		Messages: []domain.ConversationTurn{domain.NewUserTurn("hi")},
	})

	var upstreamErr *domain.UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, http.StatusTooManyRequests, upstreamErr.Status)
	assert.Equal(t, "Number of requests has exceeded your rate limit", upstreamErr.Message)
	assert.ErrorIs(t, err, domain.ErrRateLimited)
}

func TestClaudeTextGenerator_InvalidRole(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	generator := newTestClaudeGenerator(server.URL, false)

	_, err := generator.Generate(context.Background(), outbound.GenerateTextRequest{
		Messages: []domain.ConversationTurn{{Role: "system", Content: "hi"}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidRole)
	assert.False(t, called)
}

func TestClaudeTextGenerator_EmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"content": [], "usage": {"input_tokens": 3, "output_tokens": 0}}`)
	}))
	defer server.Close()

	generator := newTestClaudeGenerator(server.URL, false)

	_, err := generator.Generate(context.Background(), outbound.GenerateTextRequest{
		Messages: []domain.ConversationTurn{domain.NewUserTurn("hi")},
	})
	assert.ErrorIs(t, err, domain.ErrEmptyGeneration)
}

func TestClaudeTextGenerator_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	generator := newTestClaudeGenerator(url, false)

	_, err := generator.Generate(context.Background(), outbound.GenerateTextRequest{
		Messages: []domain.ConversationTurn{domain.NewUserTurn("hi")},
	})

	var upstreamErr *domain.UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Zero(t, upstreamErr.Status)
}

func TestClaudeTextGenerator_GenerateStream(t *testing.T) {
	events := []struct{ name, data string }{
		{"message_start", `{"type":"message_start","message":{"model":"claude-sonnet-4-5","content":[],"usage":{"input_tokens":25,"output_tokens":1}}}`},
		{"content_block_start", `{"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}`},
		{"ping", `{"type":"ping"}`},
		{"content_block_delta", `{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"One, "}}`},
		{"content_block_delta", `{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"two."}}`},
		{"content_block_stop", `{"type":"content_block_stop","index":0}`},
		{"message_delta", `{"type":"message_delta","delta":{"stop_reason":"end_turn"},"usage":{"output_tokens":9}}`},
		{"message_stop", `{"type":"message_stop"}`},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req claudeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)

		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, ev := range events {
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.name, ev.data)
			flusher.Flush()
		}
	}))
	defer server.Close()

	generator := newTestClaudeGenerator(server.URL, true)

	generation, err := generator.Generate(context.Background(), outbound.GenerateTextRequest{
		Messages: []domain.ConversationTurn{domain.NewUserTurn("Count to two")},
	})
	require.NoError(t, err)

	assert.Equal(t, "One, two.", generation.Text)
	assert.Equal(t, "end_turn", generation.StopReason)
	assert.Equal(t, domain.Usage{InputTokens: 25, OutputTokens: 9}, generation.Usage)
}

func TestClaudeTextGenerator_GenerateStreamRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`)
	}))
	defer server.Close()

	generator := newTestClaudeGenerator(server.URL, true)

	_, err := generator.Generate(context.Background(), outbound.GenerateTextRequest{
		Messages: []domain.ConversationTurn{domain.NewUserTurn("hi")},
	})

	var upstreamErr *domain.UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, http.StatusUnauthorized, upstreamErr.Status)
	assert.Equal(t, "invalid x-api-key", upstreamErr.Message)
}

func TestClaudeTextGenerator_GenerateStreamTruncated(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		fmt.Fprint(w, "event: message_start\ndata: {\"type\":\"message_start\",\"message\":{\"model\":\"claude-sonnet-4-5\",\"content\":[],\"usage\":{\"input_tokens\":4,\"output_tokens\":1}}}\n\n")
		fmt.Fprint(w, "event: content_block_delta\ndata: {\"type\":\"content_block_delta\",\"index\":0,\"delta\":{\"type\":\"text_delta\",\"text\":\"partial\"}}\n\n")
		flusher.Flush()
	}))
	defer server.Close()

	generator := newTestClaudeGenerator(server.URL, true)

	generation, err := generator.Generate(context.Background(), outbound.GenerateTextRequest{
		Messages: []domain.ConversationTurn{domain.NewUserTurn("Tell me a story")},
	})

	var upstreamErr *domain.UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, "stream ended before message_stop", upstreamErr.Message)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Empty(t, generation.Text)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}
