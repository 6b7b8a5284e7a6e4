package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mongonsh/simple-voice-assistant/application/ports/outbound"
	"github.com/mongonsh/simple-voice-assistant/infrastructure/gin_interface/dto"
)

type VoicesController interface {
	ListVoices(c *gin.Context)
	RegisterRoutes(g *gin.Engine)
}

type voicesController struct {
	logger       outbound.LoggerPort
	voiceCatalog outbound.VoiceCatalogPort
}

func NewVoicesController(logger outbound.LoggerPort, voiceCatalog outbound.VoiceCatalogPort) VoicesController {
	return &voicesController{
		logger:       logger,
		voiceCatalog: voiceCatalog,
	}
}

func (s *voicesController) ListVoices(c *gin.Context) {
	voices, err := s.voiceCatalog.List(c.Request.Context())
	if err != nil {
		s.logger.Error(err, "Failed to list voices")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.NewVoicesResponse(voices))
}

func (s *voicesController) RegisterRoutes(g *gin.Engine) {
	g.GET("/voices", s.ListVoices)
}
