package mock

import (
	"os"

	"github.com/mongonsh/simple-voice-assistant/application/ports/outbound"
)

type Adapters struct {
	TextGenerator     *TextGenerator
	SpeechSynthesizer *SpeechSynthesizer
	VoiceCatalog      *VoiceCatalog
}

// Init builds the offline adapters. MOCK_REPLIES_FILE may point at a JSON
// array of canned replies; otherwise the generator echoes the user.
func Init(logger outbound.LoggerPort) Adapters {
	var replies []string
	if fileName := os.Getenv("MOCK_REPLIES_FILE"); fileName != "" {
		read, err := NewFileReplyReader(logger).Read(fileName)
		if err != nil {
			logger.ErrorWithFields(err, "Failed to read mock replies, echoing instead", map[string]interface{}{
				"file": fileName,
			})
		}
		replies = read
	}

	logger.Warn("Mock mode enabled, vendor APIs will not be called")

	return Adapters{
		TextGenerator:     NewTextGenerator(replies...),
		SpeechSynthesizer: NewSpeechSynthesizer(),
		VoiceCatalog:      NewVoiceCatalog(),
	}
}
