package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mongonsh/simple-voice-assistant/application/ports/inbound"
	"github.com/mongonsh/simple-voice-assistant/application/ports/outbound"
	"github.com/mongonsh/simple-voice-assistant/domain"
	"github.com/mongonsh/simple-voice-assistant/infrastructure/gin_interface/dto"
)

type ChatController interface {
	Chat(c *gin.Context)
	RegisterRoutes(g *gin.Engine)
}

type chatController struct {
	logger           outbound.LoggerPort
	chatOrchestrator inbound.ChatOrchestratorPort
}

func NewChatController(logger outbound.LoggerPort, chatOrchestrator inbound.ChatOrchestratorPort) ChatController {
	return &chatController{
		logger:           logger,
		chatOrchestrator: chatOrchestrator,
	}
}

func (s *chatController) Chat(c *gin.Context) {
	var rawRequest dto.RawChatRequest
	if err := c.ShouldBindJSON(&rawRequest); err != nil {
		s.logger.DebugWithFields("Rejected chat body", map[string]interface{}{
			"error": err.Error(),
		})
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: domain.MissingMessage})
		return
	}

	chatRequest, err := rawRequest.Parse()
	if err != nil {
		s.respondValidation(c, err)
		return
	}

	res, err := s.chatOrchestrator.Handle(c.Request.Context(), chatRequest.ToDomain())
	if err != nil {
		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) {
			s.respondValidation(c, validationErr)
			return
		}
		s.logger.Error(err, "Chat request failed")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.NewChatResponse(res))
}

func (s *chatController) respondValidation(c *gin.Context, err error) {
	var validationErr *domain.ValidationError
	if !errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: validationErr.Message})
}

func (s *chatController) RegisterRoutes(g *gin.Engine) {
	g.POST("/chat", s.Chat)
}
