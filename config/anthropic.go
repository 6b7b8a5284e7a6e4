package config

import (
	"fmt"
	"os"
)

const (
	DefaultAnthropicApiUrl    = "https://api.anthropic.com"
	DefaultAnthropicModel     = "claude-sonnet-4-5"
	DefaultAnthropicMaxTokens = 1024
)

type AnthropicConfig struct {
	ApiUrl    string
	ApiKey    string
	Model     string
	MaxTokens int
	Stream    bool
}

func GetAnthropicConfig() (*AnthropicConfig, error) {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" && !MockMode() {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY must be set")
	}
	maxTokens, err := getIntEnv("ANTHROPIC_MAX_TOKENS", DefaultAnthropicMaxTokens)
	if err != nil {
		return nil, err
	}
	if maxTokens <= 0 {
		return nil, fmt.Errorf("ANTHROPIC_MAX_TOKENS must be positive")
	}
	stream, err := getBoolEnv("ANTHROPIC_STREAM", false)
	if err != nil {
		return nil, err
	}

	return &AnthropicConfig{
		ApiUrl:    getEnvOrDefault("ANTHROPIC_API_URL", DefaultAnthropicApiUrl),
		ApiKey:    apiKey,
		Model:     getEnvOrDefault("ANTHROPIC_MODEL", DefaultAnthropicModel),
		MaxTokens: maxTokens,
		Stream:    stream,
	}, nil
}
