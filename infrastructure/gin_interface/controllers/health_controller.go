package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mongonsh/simple-voice-assistant/infrastructure/gin_interface/dto"
)

type HealthController interface {
	Health(c *gin.Context)
	RegisterRoutes(g *gin.Engine)
}

type healthController struct {
	metricsHandler http.Handler
}

// NewHealthController serves /health and, when metricsHandler is non-nil, /metrics.
func NewHealthController(metricsHandler http.Handler) HealthController {
	return &healthController{metricsHandler: metricsHandler}
}

func (s *healthController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{Status: "ok"})
}

func (s *healthController) RegisterRoutes(g *gin.Engine) {
	g.GET("/health", s.Health)
	if s.metricsHandler != nil {
		g.GET("/metrics", gin.WrapH(s.metricsHandler))
	}
}
