package outbound

import (
	"context"
	"io"

	"github.com/mongonsh/simple-voice-assistant/domain"
)

type AudioStorePort interface {
	Save(ctx context.Context, content io.Reader) (domain.AudioArtifact, error)
	// Load accepts the artifact file name as it appears in audio URLs and
	// returns *domain.NotFoundError when nothing is stored under it.
	Load(ctx context.Context, fileName string) (io.ReadCloser, error)
}
