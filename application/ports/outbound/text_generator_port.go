package outbound

import (
	"context"

	"github.com/mongonsh/simple-voice-assistant/domain"
)

type GenerateTextRequest struct {
	SystemPrompt string
	Messages     []domain.ConversationTurn
}

type TextGeneratorPort interface {
	Generate(ctx context.Context, req GenerateTextRequest) (domain.Generation, error)
}
