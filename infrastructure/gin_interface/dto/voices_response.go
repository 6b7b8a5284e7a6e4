package dto

import "github.com/mongonsh/simple-voice-assistant/domain"

type Voice struct {
	Name    string `json:"name"`
	VoiceID string `json:"voice_id"`
}

type VoicesResponse struct {
	Voices []Voice `json:"voices"`
}

func NewVoicesResponse(voices []domain.Voice) VoicesResponse {
	res := VoicesResponse{Voices: make([]Voice, 0, len(voices))}
	for _, v := range voices {
		res.Voices = append(res.Voices, Voice{Name: v.Name, VoiceID: v.VoiceID})
	}
	return res
}
