package services

import (
	"context"
	"fmt"
	"io"

	"github.com/mongonsh/simple-voice-assistant/application/ports/inbound"
	"github.com/mongonsh/simple-voice-assistant/application/ports/outbound"
	"github.com/mongonsh/simple-voice-assistant/domain"
)

type speechRenderer struct {
	logger      outbound.LoggerPort
	synthesizer outbound.SpeechSynthesizerPort
	audioStore  outbound.AudioStorePort
	voice       domain.VoiceConfig
	enabled     bool
}

func NewSpeechRenderer(logger outbound.LoggerPort, synthesizer outbound.SpeechSynthesizerPort, audioStore outbound.AudioStorePort,
	voice domain.VoiceConfig, enabled bool) inbound.SpeechRendererPort {
	return &speechRenderer{
		logger:      logger,
		synthesizer: synthesizer,
		audioStore:  audioStore,
		voice:       voice,
		enabled:     enabled,
	}
}

func (s *speechRenderer) Render(ctx context.Context, text string) domain.SynthesisOutcome {
	if !s.enabled {
		return domain.Skipped(domain.ErrSpeechDisabled)
	}

	stream, err := s.synthesizer.Synthesize(ctx, outbound.SynthesizeSpeechRequest{
		Text:  text,
		Voice: s.voice,
	})
	if err != nil {
		return domain.Skipped(err)
	}
	defer func(stream io.ReadCloser) {
		err := stream.Close()
		if err != nil {
			s.logger.Error(err, "Failed to close the audio stream")
		}
	}(stream)

	artifact, err := s.audioStore.Save(ctx, stream)
	if err != nil {
		return domain.Skipped(fmt.Errorf("failed to store audio: %w", err))
	}

	s.logger.DebugWithFields("Audio artifact ready", map[string]interface{}{
		"artifact_id": artifact.ID,
		"bytes":       len(artifact.Bytes),
		"voice_id":    s.voice.VoiceID,
	})

	return domain.Ready(artifact)
}
