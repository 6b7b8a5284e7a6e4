package dto

import "github.com/mongonsh/simple-voice-assistant/domain"

// ChatResponse always carries audio_url, null when no audio was produced.
type ChatResponse struct {
	Response string  `json:"response"`
	AudioURL *string `json:"audio_url"`
}

func NewChatResponse(res domain.ChatResponse) ChatResponse {
	return ChatResponse{
		Response: res.Response,
		AudioURL: res.AudioURL,
	}
}
