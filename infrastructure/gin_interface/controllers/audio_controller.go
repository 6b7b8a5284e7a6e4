package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mongonsh/simple-voice-assistant/application/ports/outbound"
	"github.com/mongonsh/simple-voice-assistant/domain"
	"github.com/mongonsh/simple-voice-assistant/infrastructure/gin_interface/dto"
)

type AudioController interface {
	GetAudio(c *gin.Context)
	RegisterRoutes(g *gin.Engine)
}

type audioController struct {
	logger     outbound.LoggerPort
	audioStore outbound.AudioStorePort
}

func NewAudioController(logger outbound.LoggerPort, audioStore outbound.AudioStorePort) AudioController {
	return &audioController{
		logger:     logger,
		audioStore: audioStore,
	}
}

func (s *audioController) GetAudio(c *gin.Context) {
	fileName := c.Param("filename")

	audio, err := s.audioStore.Load(c.Request.Context(), fileName)
	if err != nil {
		var notFoundErr *domain.NotFoundError
		if errors.As(err, &notFoundErr) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: domain.AudioNotFound})
			return
		}
		s.logger.ErrorWithFields(err, "Failed to load audio", map[string]interface{}{
			"file": fileName,
		})
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}
	defer func(audio io.ReadCloser) {
		err := audio.Close()
		if err != nil {
			s.logger.Error(err, "Failed to close the audio file")
		}
	}(audio)

	c.DataFromReader(http.StatusOK, -1, domain.AudioMimeType, audio, nil)
}

func (s *audioController) RegisterRoutes(g *gin.Engine) {
	g.GET("/audio/:filename", s.GetAudio)
}
