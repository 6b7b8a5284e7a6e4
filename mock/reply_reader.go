package mock

import (
	"encoding/json"
	"os"

	"github.com/mongonsh/simple-voice-assistant/application/ports/outbound"
)

type ReplyReader interface {
	Read(fileName string) ([]string, error)
}

type fileReplyReader struct {
	logger outbound.LoggerPort
}

func NewFileReplyReader(logger outbound.LoggerPort) ReplyReader {
	return &fileReplyReader{
		logger: logger,
	}
}

// Read expects a JSON array of reply strings.
func (f *fileReplyReader) Read(fileName string) ([]string, error) {
	file, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer func(file *os.File) {
		err := file.Close()
		if err != nil {
			f.logger.Error(err, "failed to close file")
		}
	}(file)

	var replies []string
	if err := json.NewDecoder(file).Decode(&replies); err != nil {
		f.logger.Error(err, "failed to decode json")
		return nil, err
	}

	return replies, nil
}
