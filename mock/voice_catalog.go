package mock

import (
	"context"

	"github.com/mongonsh/simple-voice-assistant/domain"
)

type VoiceCatalog struct {
	Voices []domain.Voice
	Err    error
}

func NewVoiceCatalog() *VoiceCatalog {
	return &VoiceCatalog{
		Voices: []domain.Voice{
			{Name: "Rachel", VoiceID: "21m00Tcm4TlvDq8ikWAM"},
			{Name: "Adam", VoiceID: "pNInz6obpgDQGcFmaJgB"},
		},
	}
}

func (v *VoiceCatalog) List(ctx context.Context) ([]domain.Voice, error) {
	if v.Err != nil {
		return nil, v.Err
	}
	return v.Voices, ctx.Err()
}
