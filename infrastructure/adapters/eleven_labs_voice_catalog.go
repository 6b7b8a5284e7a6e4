package adapters

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mongonsh/simple-voice-assistant/application/ports/outbound"
	"github.com/mongonsh/simple-voice-assistant/config"
	"github.com/mongonsh/simple-voice-assistant/domain"
)

type elevenLabsVoicesResponse struct {
	Voices []struct {
		VoiceID string `json:"voice_id"`
		Name    string `json:"name"`
	} `json:"voices"`
}

type elevenLabsVoiceCatalog struct {
	ContentFetcher
	logger           outbound.LoggerPort
	elevenLabsConfig *config.ElevenLabsConfig
}

func NewElevenLabsVoiceCatalog(client *http.Client, elevenLabsConfig *config.ElevenLabsConfig, logger outbound.LoggerPort) outbound.VoiceCatalogPort {
	return &elevenLabsVoiceCatalog{
		ContentFetcher:   NewContentFetcher(logger, client, elevenLabsService, decodeElevenLabsError),
		logger:           logger,
		elevenLabsConfig: elevenLabsConfig,
	}
}

func (e *elevenLabsVoiceCatalog) List(ctx context.Context) ([]domain.Voice, error) {
	endpoint := strings.TrimSuffix(e.elevenLabsConfig.ApiUrl, "/") + "/v1/voices"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, domain.NewUpstreamError(elevenLabsService, 0, "failed to create request", err)
	}
	req.Header.Set("xi-api-key", e.elevenLabsConfig.ApiKey)
	req.Header.Set("Accept", "application/json")

	payload, err := e.FetchContent(req)
	if err != nil {
		return nil, err
	}

	var res elevenLabsVoicesResponse
	if err := json.Unmarshal(payload, &res); err != nil {
		e.logger.Error(err, "Failed to unmarshal the voices response")
		return nil, domain.NewUpstreamError(elevenLabsService, http.StatusOK, "malformed response", err)
	}

	voices := make([]domain.Voice, 0, len(res.Voices))
	for _, v := range res.Voices {
		voices = append(voices, domain.Voice{Name: v.Name, VoiceID: v.VoiceID})
	}
	return voices, nil
}
