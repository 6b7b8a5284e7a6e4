package adapters

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mongonsh/simple-voice-assistant/application/ports/outbound"
	"github.com/mongonsh/simple-voice-assistant/domain"
)

type fsAudioStore struct {
	logger outbound.LoggerPort
	dir    string
}

func NewFsAudioStore(dir string, logger outbound.LoggerPort) (outbound.AudioStorePort, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &fsAudioStore{
		logger: logger,
		dir:    dir,
	}, nil
}

func (s *fsAudioStore) Save(ctx context.Context, content io.Reader) (domain.AudioArtifact, error) {
	payload, err := io.ReadAll(content)
	if err != nil {
		s.logger.Error(err, "Failed to drain the audio stream")
		return domain.AudioArtifact{}, err
	}
	if err := ctx.Err(); err != nil {
		return domain.AudioArtifact{}, err
	}

	artifact := domain.NewAudioArtifact(newArtifactID(), payload)

	tmp, err := os.CreateTemp(s.dir, ".partial-*")
	if err != nil {
		s.logger.Error(err, "Failed to create the audio file")
		return domain.AudioArtifact{}, err
	}
	defer func() {
		// no-op once renamed
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		s.logger.Error(err, "Failed to write the audio file")
		return domain.AudioArtifact{}, err
	}
	if err := tmp.Close(); err != nil {
		s.logger.Error(err, "Failed to close the audio file")
		return domain.AudioArtifact{}, err
	}

	path := filepath.Join(s.dir, artifact.FileName())
	if err := os.Rename(tmp.Name(), path); err != nil {
		s.logger.Error(err, "Failed to publish the audio file")
		return domain.AudioArtifact{}, err
	}

	s.logger.DebugWithFields("Saved audio artifact", map[string]interface{}{
		"path":  path,
		"bytes": len(payload),
	})

	return artifact, nil
}

func (s *fsAudioStore) Load(_ context.Context, fileName string) (io.ReadCloser, error) {
	id, ok := artifactIDFromFileName(fileName)
	if !ok {
		return nil, &domain.NotFoundError{ID: fileName}
	}

	file, err := os.Open(filepath.Join(s.dir, id+domain.AudioFileExtension))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &domain.NotFoundError{ID: fileName}
	}
	if err != nil {
		s.logger.ErrorWithFields(err, "Failed to open the audio file", map[string]interface{}{
			"file": fileName,
		})
		return nil, err
	}
	return file, nil
}
