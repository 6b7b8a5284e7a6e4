package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mongonsh/simple-voice-assistant/application/ports/inbound"
	"github.com/mongonsh/simple-voice-assistant/application/ports/outbound"
	"github.com/mongonsh/simple-voice-assistant/config"
	"github.com/mongonsh/simple-voice-assistant/domain"
)

const recordTimeout = 10 * time.Second

type chatOrchestrator struct {
	logger         outbound.LoggerPort
	textGenerator  outbound.TextGeneratorPort
	speechRenderer inbound.SpeechRendererPort
	recorder       outbound.ExchangeRecorderPort
	workerPool     outbound.TaskDispatcher
	metrics        outbound.MetricsPort
	chatConfig     *config.ChatConfig
	audioBaseUrl   string
}

func NewChatOrchestrator(logger outbound.LoggerPort, textGenerator outbound.TextGeneratorPort, speechRenderer inbound.SpeechRendererPort,
	recorder outbound.ExchangeRecorderPort, workerPool outbound.TaskDispatcher, metrics outbound.MetricsPort,
	chatConfig *config.ChatConfig, publicBaseUrl string) inbound.ChatOrchestratorPort {
	return &chatOrchestrator{
		logger:         logger,
		textGenerator:  textGenerator,
		speechRenderer: speechRenderer,
		recorder:       recorder,
		workerPool:     workerPool,
		metrics:        metrics,
		chatConfig:     chatConfig,
		audioBaseUrl:   strings.TrimSuffix(publicBaseUrl, "/") + "/audio/",
	}
}

func (c *chatOrchestrator) Handle(ctx context.Context, req domain.ChatRequest) (domain.ChatResponse, error) {
	start := time.Now()

	if req.Message == "" {
		c.metrics.ObserveChat(outbound.ChatOutcomeValidationError, time.Since(start))
		return domain.ChatResponse{}, &domain.ValidationError{Message: domain.MissingMessage}
	}

	messages := append(c.priorTurns(req.History), domain.NewUserTurn(req.Message))

	c.logger.DebugWithFields("Generating reply", map[string]interface{}{
		"turns": len(messages),
	})

	generation, err := c.textGenerator.Generate(ctx, outbound.GenerateTextRequest{
		SystemPrompt: c.chatConfig.SystemPrompt,
		Messages:     messages,
	})
	if err != nil {
		c.logger.Error(err, "Text generation failed")
		c.metrics.ObserveChat(outbound.ChatOutcomeUpstreamError, time.Since(start))
		var upstreamErr *domain.UpstreamError
		if errors.As(err, &upstreamErr) {
			return domain.ChatResponse{}, upstreamErr
		}
		return domain.ChatResponse{}, domain.NewUpstreamError("generation", 0, "", err)
	}
	c.metrics.ObserveUsage(generation.Model, generation.Usage)

	res := domain.ChatResponse{Response: generation.Text}

	outcome := c.speechRenderer.Render(ctx, generation.Text)
	c.metrics.ObserveSynthesis(outcome.Ready())

	var audioID string
	if outcome.Ready() {
		artifact := outcome.Artifact()
		audioID = artifact.ID
		audioUrl := c.audioBaseUrl + artifact.FileName()
		res.AudioURL = &audioUrl
	} else {
		c.logger.WarnWithError(outcome.Reason(), "Continuing without audio", nil)
	}

	c.metrics.ObserveChat(outbound.ChatOutcomeOK, time.Since(start))
	c.logger.InfoWithFields("Chat reply ready", map[string]interface{}{
		"input_tokens":  generation.Usage.InputTokens,
		"output_tokens": generation.Usage.OutputTokens,
		"audio":         outcome.Ready(),
		"duration_ms":   time.Since(start).Milliseconds(),
	})

	c.record(domain.Exchange{
		ID:        uuid.NewString(),
		Request:   req,
		Reply:     generation.Text,
		AudioID:   audioID,
		Usage:     generation.Usage,
		CreatedAt: start,
	})

	return res, nil
}

// priorTurns returns a fresh slice so the caller's history is never aliased.
func (c *chatOrchestrator) priorTurns(history []domain.ConversationTurn) []domain.ConversationTurn {
	if c.chatConfig.HistoryMode == config.TrimLastHistory && len(history) > 0 {
		history = history[:len(history)-1]
	}
	turns := make([]domain.ConversationTurn, len(history), len(history)+1)
	copy(turns, history)
	return turns
}

func (c *chatOrchestrator) record(exchange domain.Exchange) {
	err := c.workerPool.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		if err := c.recorder.Record(ctx, exchange); err != nil {
			c.logger.ErrorWithFields(err, "Failed to record exchange", map[string]interface{}{
				"exchange_id": exchange.ID,
			})
		}
	})
	if err != nil {
		c.logger.Error(err, "Failed to submit task to worker pool")
	}
}
