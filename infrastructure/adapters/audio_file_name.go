package adapters

import (
	"strings"

	"github.com/google/uuid"
	"github.com/mongonsh/simple-voice-assistant/domain"
)

func newArtifactID() string {
	return uuid.NewString()
}

// artifactIDFromFileName accepts only canonical "<uuid>.mp3" names so that
// nothing outside the store can be addressed through a URL.
func artifactIDFromFileName(fileName string) (string, bool) {
	id, found := strings.CutSuffix(fileName, domain.AudioFileExtension)
	if !found {
		return "", false
	}
	parsed, err := uuid.Parse(id)
	if err != nil || parsed.String() != id {
		return "", false
	}
	return id, true
}
