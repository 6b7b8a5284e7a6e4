package dto

import (
	"encoding/json"
	"fmt"

	"github.com/mongonsh/simple-voice-assistant/domain"
)

type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Message string     `json:"message"`
	History []ChatTurn `json:"history"`
}

// RawChatRequest is bound first so that each field can be decoded on its own.
type RawChatRequest struct {
	Message json.RawMessage `json:"message"`
	History json.RawMessage `json:"history"`
}

// Parse rejects a non-string message as missing and a malformed history as
// invalid. An empty message passes through and is rejected by the orchestrator.
func (r RawChatRequest) Parse() (ChatRequest, error) {
	var req ChatRequest
	if len(r.Message) > 0 {
		if err := json.Unmarshal(r.Message, &req.Message); err != nil {
			return ChatRequest{}, &domain.ValidationError{Message: domain.MissingMessage}
		}
	}
	if len(r.History) > 0 {
		if err := json.Unmarshal(r.History, &req.History); err != nil {
			return ChatRequest{}, &domain.ValidationError{Message: fmt.Sprintf("invalid history: %v", err)}
		}
	}
	return req, nil
}

func (r ChatRequest) ToDomain() domain.ChatRequest {
	history := make([]domain.ConversationTurn, 0, len(r.History))
	for _, turn := range r.History {
		history = append(history, domain.ConversationTurn{
			Role:    domain.Role(turn.Role),
			Content: turn.Content,
		})
	}
	return domain.ChatRequest{
		Message: r.Message,
		History: history,
	}
}
