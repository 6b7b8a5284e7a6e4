package config

import (
	"fmt"
)

const DefaultSystemPrompt = "You are a helpful voice assistant. Keep your responses concise and conversational, " +
	"suitable for spoken dialogue. Avoid using markdown, bullet points, or complex formatting " +
	"since your responses will be read aloud."

type HistoryMode string

const (
	// TrimLastHistory drops the final history entry, which browser clients
	// send as a duplicate of the current message.
	TrimLastHistory HistoryMode = "trim-last"
	// ExclusiveHistory forwards history untouched; callers must omit the
	// current message from it.
	ExclusiveHistory HistoryMode = "exclusive"
)

type ChatConfig struct {
	SystemPrompt  string
	HistoryMode   HistoryMode
	SpeechEnabled bool
}

func GetChatConfig() (*ChatConfig, error) {
	mode := HistoryMode(getEnvOrDefault("HISTORY_MODE", string(TrimLastHistory)))
	if mode != TrimLastHistory && mode != ExclusiveHistory {
		return nil, fmt.Errorf("HISTORY_MODE must be one of %q, %q", TrimLastHistory, ExclusiveHistory)
	}
	speechEnabled, err := getBoolEnv("SPEECH_ENABLED", true)
	if err != nil {
		return nil, err
	}

	return &ChatConfig{
		SystemPrompt:  getEnvOrDefault("SYSTEM_PROMPT", DefaultSystemPrompt),
		HistoryMode:   mode,
		SpeechEnabled: speechEnabled,
	}, nil
}
