package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/donovanhide/eventsource"
	"github.com/mongonsh/simple-voice-assistant/application/ports/outbound"
	"github.com/mongonsh/simple-voice-assistant/config"
	"github.com/mongonsh/simple-voice-assistant/domain"
)

const (
	anthropicService      = "anthropic"
	anthropicVersionKey   = "anthropic-version"
	anthropicVersionValue = "2023-06-01"
	textContentType       = "text"
	textDeltaType         = "text_delta"
)

type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	System    string          `json:"system,omitempty"`
	Messages  []claudeMessage `json:"messages"`
	Stream    bool            `json:"stream,omitempty"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
	Model      string          `json:"model"`
	StopReason string          `json:"stop_reason"`
	Content    []claudeContent `json:"content"`
	Usage      claudeUsage     `json:"usage"`
}

type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type claudeUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type claudeErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

type claudeStreamEvent struct {
	Type    string          `json:"type"`
	Message *claudeResponse `json:"message,omitempty"`
	Delta   struct {
		Type       string `json:"type"`
		Text       string `json:"text"`
		StopReason string `json:"stop_reason"`
	} `json:"delta"`
	Usage *claudeUsage `json:"usage,omitempty"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type claudeTextGenerator struct {
	ContentFetcher
	logger          outbound.LoggerPort
	anthropicConfig *config.AnthropicConfig
	streamClient    *http.Client
}

func NewClaudeTextGenerator(client *http.Client, anthropicConfig *config.AnthropicConfig, logger outbound.LoggerPort) outbound.TextGeneratorPort {
	if client == nil {
		client = &http.Client{}
	}
	// eventsource installs its own redirect policy on the client it is given.
	streamClient := &http.Client{Transport: client.Transport, Timeout: client.Timeout}

	return &claudeTextGenerator{
		ContentFetcher:  NewContentFetcher(logger, client, anthropicService, decodeClaudeError),
		logger:          logger,
		anthropicConfig: anthropicConfig,
		streamClient:    streamClient,
	}
}

func (c *claudeTextGenerator) Generate(ctx context.Context, req outbound.GenerateTextRequest) (domain.Generation, error) {
	messages, err := c.toClaudeMessages(req.Messages)
	if err != nil {
		return domain.Generation{}, err
	}

	if c.anthropicConfig.Stream {
		return c.generateStream(ctx, req.SystemPrompt, messages)
	}

	httpReq, err := c.createRequest(ctx, req.SystemPrompt, messages, false)
	if err != nil {
		return domain.Generation{}, err
	}

	payload, err := c.FetchContent(httpReq)
	if err != nil {
		return domain.Generation{}, err
	}

	var res claudeResponse
	if err := json.Unmarshal(payload, &res); err != nil {
		c.logger.Error(err, "Failed to unmarshal the messages response")
		return domain.Generation{}, domain.NewUpstreamError(anthropicService, http.StatusOK, "malformed response", err)
	}

	text, ok := firstText(res.Content)
	if !ok {
		return domain.Generation{}, domain.NewUpstreamError(anthropicService, http.StatusOK, "empty response", domain.ErrEmptyGeneration)
	}

	return domain.Generation{
		Text:       text,
		Model:      res.Model,
		StopReason: res.StopReason,
		Usage: domain.Usage{
			InputTokens:  res.Usage.InputTokens,
			OutputTokens: res.Usage.OutputTokens,
		},
	}, nil
}

func (c *claudeTextGenerator) generateStream(ctx context.Context, systemPrompt string, messages []claudeMessage) (domain.Generation, error) {
	httpReq, err := c.createRequest(ctx, systemPrompt, messages, true)
	if err != nil {
		return domain.Generation{}, err
	}

	stream, err := eventsource.SubscribeWith("", c.streamClient, httpReq)
	if err != nil {
		var subErr eventsource.SubscriptionError
		if errors.As(err, &subErr) {
			return domain.Generation{}, decodeClaudeError(subErr.Code, []byte(subErr.Message))
		}
		c.logger.Error(err, "Failed to subscribe to the messages stream")
		return domain.Generation{}, domain.NewUpstreamError(anthropicService, 0, "request failed", err)
	}
	defer stream.Close()

	generation := domain.Generation{Model: c.anthropicConfig.Model}
	var builder strings.Builder

	for {
		select {
		case <-ctx.Done():
			return domain.Generation{}, domain.NewUpstreamError(anthropicService, 0, "stream interrupted", ctx.Err())
		case ev, ok := <-stream.Events:
			if !ok {
				return domain.Generation{}, c.truncatedStream(generation, &builder)
			}
			done, err := c.applyStreamEvent(ev, &generation, &builder)
			if err != nil {
				return domain.Generation{}, err
			}
			if done {
				return c.finishStream(generation, &builder)
			}
		case err := <-stream.Errors:
			if err == io.EOF {
				return domain.Generation{}, c.truncatedStream(generation, &builder)
			}
			c.logger.Error(err, "Error occurred during streaming")
			return domain.Generation{}, domain.NewUpstreamError(anthropicService, 0, "stream failed", err)
		}
	}
}

func (c *claudeTextGenerator) applyStreamEvent(ev eventsource.Event, generation *domain.Generation, builder *strings.Builder) (bool, error) {
	var payload claudeStreamEvent
	if err := json.Unmarshal([]byte(ev.Data()), &payload); err != nil {
		c.logger.Error(err, "Failed to unmarshal event data")
		return false, domain.NewUpstreamError(anthropicService, http.StatusOK, "malformed stream event", err)
	}

	switch payload.Type {
	case "message_start":
		if payload.Message != nil {
			generation.Model = payload.Message.Model
			generation.Usage.InputTokens = payload.Message.Usage.InputTokens
			generation.Usage.OutputTokens = payload.Message.Usage.OutputTokens
		}
	case "content_block_delta":
		if payload.Delta.Type == textDeltaType {
			builder.WriteString(payload.Delta.Text)
		}
	case "message_delta":
		if payload.Delta.StopReason != "" {
			generation.StopReason = payload.Delta.StopReason
		}
		if payload.Usage != nil {
			generation.Usage.OutputTokens = payload.Usage.OutputTokens
		}
	case "message_stop":
		return true, nil
	case "error":
		msg := "stream error"
		if payload.Error != nil {
			msg = payload.Error.Message
		}
		return false, domain.NewUpstreamError(anthropicService, 0, msg, nil)
	}
	return false, nil
}

// truncatedStream reports a stream that closed before message_stop. Partial
// text is never returned as a reply.
func (c *claudeTextGenerator) truncatedStream(generation domain.Generation, builder *strings.Builder) error {
	err := domain.NewUpstreamError(anthropicService, 0, "stream ended before message_stop", io.ErrUnexpectedEOF)
	c.logger.ErrorWithFields(err, "Messages stream closed early", map[string]interface{}{
		"model":          generation.Model,
		"received_bytes": builder.Len(),
	})
	return err
}

func (c *claudeTextGenerator) finishStream(generation domain.Generation, builder *strings.Builder) (domain.Generation, error) {
	if builder.Len() == 0 {
		return domain.Generation{}, domain.NewUpstreamError(anthropicService, http.StatusOK, "empty response", domain.ErrEmptyGeneration)
	}
	generation.Text = builder.String()
	return generation, nil
}

func (c *claudeTextGenerator) toClaudeMessages(turns []domain.ConversationTurn) ([]claudeMessage, error) {
	messages := make([]claudeMessage, 0, len(turns))
	for _, turn := range turns {
		if !turn.Role.Valid() {
			return nil, domain.NewUpstreamError(anthropicService, 0, fmt.Sprintf("invalid message role %q", turn.Role), domain.ErrInvalidRole)
		}
		messages = append(messages, claudeMessage{
			Role:    string(turn.Role),
			Content: turn.Content,
		})
	}
	return messages, nil
}

func (c *claudeTextGenerator) createRequest(ctx context.Context, systemPrompt string, messages []claudeMessage, stream bool) (*http.Request, error) {
	promptReq := claudeRequest{
		Model:     c.anthropicConfig.Model,
		MaxTokens: c.anthropicConfig.MaxTokens,
		System:    systemPrompt,
		Messages:  messages,
		Stream:    stream,
	}

	payloadBytes, err := json.Marshal(promptReq)
	if err != nil {
		c.logger.Error(err, "Failed to marshal the request body")
		return nil, domain.NewUpstreamError(anthropicService, 0, "failed to encode request", err)
	}

	url := strings.TrimSuffix(c.anthropicConfig.ApiUrl, "/") + "/v1/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payloadBytes))
	if err != nil {
		c.logger.Error(err, "Failed to create the HTTP request")
		return nil, domain.NewUpstreamError(anthropicService, 0, "failed to create request", err)
	}

	req.Header.Set("x-api-key", c.anthropicConfig.ApiKey)
	req.Header.Set(anthropicVersionKey, anthropicVersionValue)
	req.Header.Set("Content-Type", "application/json")

	return req, nil
}

func firstText(blocks []claudeContent) (string, bool) {
	for _, block := range blocks {
		if block.Type == textContentType {
			return block.Text, true
		}
	}
	return "", false
}

func decodeClaudeError(status int, body []byte) *domain.UpstreamError {
	var errRes claudeErrorResponse
	message := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &errRes); err == nil && errRes.Error.Message != "" {
		message = errRes.Error.Message
	}

	var cause error
	switch status {
	case http.StatusUnauthorized:
		cause = domain.ErrUnauthorized
	case http.StatusTooManyRequests:
		cause = domain.ErrRateLimited
	}
	return domain.NewUpstreamError(anthropicService, status, message, cause)
}
