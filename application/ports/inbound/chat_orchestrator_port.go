package inbound

import (
	"context"

	"github.com/mongonsh/simple-voice-assistant/domain"
)

type ChatOrchestratorPort interface {
	Handle(ctx context.Context, req domain.ChatRequest) (domain.ChatResponse, error)
}
