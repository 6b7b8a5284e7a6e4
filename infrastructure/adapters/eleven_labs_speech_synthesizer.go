package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/mongonsh/simple-voice-assistant/application/ports/outbound"
	"github.com/mongonsh/simple-voice-assistant/config"
	"github.com/mongonsh/simple-voice-assistant/domain"
)

const (
	elevenLabsService   = "elevenlabs"
	elevenLabsMP3Format = "mp3_44100_128"
)

type ElevenLabsRequest struct {
	Text          string         `json:"text"`
	ModelId       string         `json:"model_id,omitempty"`
	VoiceSettings *VoiceSettings `json:"voice_settings,omitempty"`
}

type VoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

type elevenLabsErrorResponse struct {
	Detail json.RawMessage `json:"detail"`
}

type elevenLabsErrorDetail struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type elevenLabsSpeechSynthesizer struct {
	ContentFetcher
	logger           outbound.LoggerPort
	elevenLabsConfig *config.ElevenLabsConfig
}

func NewElevenLabsSpeechSynthesizer(client *http.Client, elevenLabsConfig *config.ElevenLabsConfig, logger outbound.LoggerPort) outbound.SpeechSynthesizerPort {
	return &elevenLabsSpeechSynthesizer{
		ContentFetcher:   NewContentFetcher(logger, client, elevenLabsService, decodeElevenLabsError),
		logger:           logger,
		elevenLabsConfig: elevenLabsConfig,
	}
}

func (e *elevenLabsSpeechSynthesizer) Synthesize(ctx context.Context, params outbound.SynthesizeSpeechRequest) (io.ReadCloser, error) {
	if strings.TrimSpace(params.Text) == "" {
		return nil, domain.NewUpstreamError(elevenLabsService, 0, "nothing to synthesize", domain.ErrEmptyText)
	}
	if params.Voice.VoiceID == "" {
		return nil, domain.NewUpstreamError(elevenLabsService, 0, "missing voice id", domain.ErrInvalidVoice)
	}

	req, err := e.getRequest(ctx, params)
	if err != nil {
		e.logger.ErrorWithFields(err, "Failed to construct the HTTP request for audio fetching", map[string]interface{}{
			"voice_id": params.Voice.VoiceID,
		})
		return nil, err
	}

	return e.FetchStream(req)
}

func (e *elevenLabsSpeechSynthesizer) getRequest(ctx context.Context, params outbound.SynthesizeSpeechRequest) (*http.Request, error) {
	reqBody := ElevenLabsRequest{
		Text:    params.Text,
		ModelId: params.Voice.ModelID,
	}
	if s := params.Voice.Settings; s != nil {
		reqBody.VoiceSettings = &VoiceSettings{
			Stability:       s.Stability,
			SimilarityBoost: s.SimilarityBoost,
			Style:           s.Style,
			UseSpeakerBoost: s.UseSpeakerBoost,
		}
	}

	jsonPayload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, domain.NewUpstreamError(elevenLabsService, 0, "failed to encode request", err)
	}

	endpoint := strings.TrimSuffix(e.elevenLabsConfig.ApiUrl, "/") + "/v1/text-to-speech/" +
		url.PathEscape(params.Voice.VoiceID) + "?output_format=" + elevenLabsMP3Format

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonPayload))
	if err != nil {
		return nil, domain.NewUpstreamError(elevenLabsService, 0, "failed to create request", err)
	}

	reqHeaders := map[string]string{
		"Accept":       domain.AudioMimeType,
		"xi-api-key":   e.elevenLabsConfig.ApiKey,
		"Content-Type": "application/json",
	}
	for key, value := range reqHeaders {
		req.Header.Set(key, value)
	}

	return req, nil
}

func decodeElevenLabsError(status int, body []byte) *domain.UpstreamError {
	message := strings.TrimSpace(string(body))

	var errRes elevenLabsErrorResponse
	if err := json.Unmarshal(body, &errRes); err == nil && len(errRes.Detail) > 0 {
		var detail elevenLabsErrorDetail
		var text string
		switch {
		case json.Unmarshal(errRes.Detail, &detail) == nil && detail.Message != "":
			message = detail.Message
		case json.Unmarshal(errRes.Detail, &text) == nil && text != "":
			message = text
		}
	}

	var cause error
	switch status {
	case http.StatusUnauthorized:
		cause = domain.ErrUnauthorized
	case http.StatusNotFound:
		cause = domain.ErrInvalidVoice
	case http.StatusTooManyRequests:
		cause = domain.ErrRateLimited
	}
	return domain.NewUpstreamError(elevenLabsService, status, message, cause)
}
