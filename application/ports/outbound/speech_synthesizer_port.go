package outbound

import (
	"context"
	"io"

	"github.com/mongonsh/simple-voice-assistant/domain"
)

type SynthesizeSpeechRequest struct {
	Text  string
	Voice domain.VoiceConfig
}

// SpeechSynthesizerPort returns a single pass audio stream. The caller must
// drain and close it; a partial read leaves a truncated result.
type SpeechSynthesizerPort interface {
	Synthesize(ctx context.Context, req SynthesizeSpeechRequest) (io.ReadCloser, error)
}
