package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/mongonsh/simple-voice-assistant/application/ports/outbound"
)

const (
	ContextUserIDKey = "userID"
	ContextScopesKey = "scopes"
)

// PublicPaths are reachable without a token. Audio is fetched by <audio>
// elements that cannot attach an Authorization header.
var PublicPaths = []string{"/health", "/metrics", "/audio/"}

type CustomClaims struct {
	jwt.RegisteredClaims
	Scopes string `json:"scope,omitempty"`
}

type AuthHandler interface {
	AuthMiddleware() gin.HandlerFunc
	Close()
}

type authHandler struct {
	logger      outbound.LoggerPort
	jwks        *keyfunc.JWKS
	publicPaths []string
}

func NewAuthHandler(jwksURL string, logger outbound.LoggerPort) (AuthHandler, error) {
	options := keyfunc.Options{
		RefreshErrorHandler: func(err error) {
			logger.ErrorWithFields(err, "There was an error with the jwt.Keyfunc", map[string]interface{}{
				"jwks_url": jwksURL,
			})
		},
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  time.Minute * 5,
		RefreshTimeout:    time.Second * 10,
		RefreshUnknownKID: true,
	}

	jwks, err := keyfunc.Get(jwksURL, options)
	if err != nil {
		return nil, err
	}

	return &authHandler{
		logger:      logger,
		jwks:        jwks,
		publicPaths: PublicPaths,
	}, nil
}

func (h *authHandler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.isPublic(c.Request.URL.Path) {
			c.Next()
			return
		}
		tokenString := c.GetHeader("Authorization")
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header is required"})
			return
		}

		tokenString = strings.TrimPrefix(tokenString, "Bearer ")

		var claims CustomClaims
		token, err := jwt.ParseWithClaims(tokenString, &claims, h.jwks.Keyfunc)
		if err != nil || !token.Valid {
			h.logger.DebugWithFields("Rejected token", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(ContextUserIDKey, claims.Subject)
		c.Set(ContextScopesKey, strings.Fields(claims.Scopes))

		c.Next()
	}
}

func (h *authHandler) Close() {
	h.jwks.EndBackground()
}

func (h *authHandler) isPublic(path string) bool {
	for _, p := range h.publicPaths {
		if path == p || (strings.HasSuffix(p, "/") && strings.HasPrefix(path, p)) {
			return true
		}
	}
	return false
}
