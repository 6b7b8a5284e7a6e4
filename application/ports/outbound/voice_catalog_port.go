package outbound

import (
	"context"

	"github.com/mongonsh/simple-voice-assistant/domain"
)

type VoiceCatalogPort interface {
	List(ctx context.Context) ([]domain.Voice, error)
}
