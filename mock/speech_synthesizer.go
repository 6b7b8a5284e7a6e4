package mock

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/mongonsh/simple-voice-assistant/application/ports/outbound"
	"github.com/mongonsh/simple-voice-assistant/domain"
)

// silentFrame is one MPEG-1 Layer III frame (128 kbps, 44.1 kHz) of silence.
var silentFrame = append([]byte{0xFF, 0xFB, 0x90, 0x64}, make([]byte, 413)...)

type SpeechSynthesizer struct {
	mu    sync.Mutex
	audio []byte
	err   error
	calls []outbound.SynthesizeSpeechRequest
}

func NewSpeechSynthesizer() *SpeechSynthesizer {
	return &SpeechSynthesizer{audio: silentFrame}
}

func NewSpeechSynthesizerWithAudio(audio []byte) *SpeechSynthesizer {
	return &SpeechSynthesizer{audio: audio}
}

// FailWith makes every following call return err.
func (s *SpeechSynthesizer) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *SpeechSynthesizer) Synthesize(ctx context.Context, req outbound.SynthesizeSpeechRequest) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, req)

	if err := ctx.Err(); err != nil {
		return nil, domain.NewUpstreamError("mock", 0, "cancelled", err)
	}
	if s.err != nil {
		return nil, s.err
	}
	if req.Text == "" {
		return nil, domain.NewUpstreamError("mock", 0, "nothing to synthesize", domain.ErrEmptyText)
	}
	return io.NopCloser(bytes.NewReader(s.audio)), nil
}

func (s *SpeechSynthesizer) Calls() []outbound.SynthesizeSpeechRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	calls := make([]outbound.SynthesizeSpeechRequest, len(s.calls))
	copy(calls, s.calls)
	return calls
}
