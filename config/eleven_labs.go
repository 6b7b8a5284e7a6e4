package config

import (
	"fmt"
	"os"

	"github.com/mongonsh/simple-voice-assistant/domain"
)

const (
	DefaultElevenLabsApiUrl  = "https://api.elevenlabs.io"
	DefaultElevenLabsVoiceId = "21m00Tcm4TlvDq8ikWAM"
	DefaultElevenLabsModelId = "eleven_multilingual_v2"
)

type ElevenLabsConfig struct {
	ApiUrl  string
	ApiKey  string
	VoiceId string
	ModelId string
	// Settings stays nil unless one of the tuning variables is set, in which
	// case unset parameters take the vendor defaults.
	Settings *domain.VoiceSettings
}

func (c *ElevenLabsConfig) VoiceConfig() domain.VoiceConfig {
	return domain.VoiceConfig{
		VoiceID:  c.VoiceId,
		ModelID:  c.ModelId,
		Settings: c.Settings,
	}
}

func GetElevenLabsConfig() (*ElevenLabsConfig, error) {
	apiKey := os.Getenv("ELEVENLABS_API_KEY")
	if apiKey == "" && !MockMode() {
		return nil, fmt.Errorf("ELEVENLABS_API_KEY must be set")
	}

	settings, err := getVoiceSettings()
	if err != nil {
		return nil, err
	}

	return &ElevenLabsConfig{
		ApiUrl:   getEnvOrDefault("ELEVEN_LABS_API_URL", DefaultElevenLabsApiUrl),
		ApiKey:   apiKey,
		VoiceId:  getEnvOrDefault("ELEVEN_LABS_VOICE_ID", DefaultElevenLabsVoiceId),
		ModelId:  getEnvOrDefault("ELEVEN_LABS_MODEL_ID", DefaultElevenLabsModelId),
		Settings: settings,
	}, nil
}

func getVoiceSettings() (*domain.VoiceSettings, error) {
	keys := []string{
		"ELEVEN_LABS_STABILITY",
		"ELEVEN_LABS_SIMILARITY_BOOST",
		"ELEVEN_LABS_STYLE",
		"ELEVEN_LABS_SPEAKER_BOOST",
	}
	configured := false
	for _, key := range keys {
		if os.Getenv(key) != "" {
			configured = true
			break
		}
	}
	if !configured {
		return nil, nil
	}

	stability, err := getFloatEnv("ELEVEN_LABS_STABILITY", 0.5)
	if err != nil {
		return nil, err
	}
	similarityBoost, err := getFloatEnv("ELEVEN_LABS_SIMILARITY_BOOST", 0.75)
	if err != nil {
		return nil, err
	}
	style, err := getFloatEnv("ELEVEN_LABS_STYLE", 0)
	if err != nil {
		return nil, err
	}
	speakerBoost, err := getBoolEnv("ELEVEN_LABS_SPEAKER_BOOST", true)
	if err != nil {
		return nil, err
	}

	settings := &domain.VoiceSettings{
		Stability:       stability,
		SimilarityBoost: similarityBoost,
		Style:           style,
		UseSpeakerBoost: speakerBoost,
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid eleven labs voice settings: %w", err)
	}
	return settings, nil
}
