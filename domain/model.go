package domain

import (
	"time"
)

type Role string

const (
	UserRole      Role = "user"
	AssistantRole Role = "assistant"
)

func (r Role) Valid() bool {
	return r == UserRole || r == AssistantRole
}

const (
	AudioMimeType      = "audio/mpeg"
	AudioFileExtension = ".mp3"
)

type ConversationTurn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

func NewUserTurn(content string) ConversationTurn {
	return ConversationTurn{Role: UserRole, Content: content}
}

type ChatRequest struct {
	Message string
	History []ConversationTurn
}

type ChatResponse struct {
	Response string
	AudioURL *string
}

type Usage struct {
	InputTokens  int
	OutputTokens int
}

type Generation struct {
	Text       string
	Model      string
	StopReason string
	Usage      Usage
}

type AudioArtifact struct {
	ID       string
	Bytes    []byte
	MimeType string
}

func NewAudioArtifact(id string, content []byte) AudioArtifact {
	return AudioArtifact{
		ID:       id,
		Bytes:    content,
		MimeType: AudioMimeType,
	}
}

func (a AudioArtifact) FileName() string {
	return a.ID + AudioFileExtension
}

type VoiceSettings struct {
	Stability       float64
	SimilarityBoost float64
	Style           float64
	UseSpeakerBoost bool
}

func (v VoiceSettings) Validate() error {
	params := map[string]float64{
		"stability":        v.Stability,
		"similarity_boost": v.SimilarityBoost,
		"style":            v.Style,
	}
	for name, value := range params {
		if value < 0 || value > 1 {
			return &ValidationError{Message: name + " must be within [0,1]"}
		}
	}
	return nil
}

type VoiceConfig struct {
	VoiceID  string
	ModelID  string
	Settings *VoiceSettings
}

type Voice struct {
	Name    string
	VoiceID string
}

type Exchange struct {
	ID        string
	Request   ChatRequest
	Reply     string
	AudioID   string
	Usage     Usage
	CreatedAt time.Time
}
