package inbound

import (
	"context"

	"github.com/mongonsh/simple-voice-assistant/domain"
)

type SpeechRendererPort interface {
	Render(ctx context.Context, text string) domain.SynthesisOutcome
}
