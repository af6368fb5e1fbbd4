package httpapi

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/foxobr/ficha-rpg/internal/auth"
)

// NewRouter assembles the gin engine with all routes mounted.
//
// Catalog and auth endpoints are public; everything under /api requires
// a bearer token.
func NewRouter(h *Handlers, mw *auth.Middleware, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))

	r.GET("/health", h.Health)

	r.POST("/auth/signup", h.Signup)
	r.POST("/auth/login", h.Login)

	cat := r.Group("/catalog")
	{
		cat.GET("/classes", h.ListClasses)
		cat.GET("/skills", h.ListSkills)
		cat.GET("/conditions", h.ListConditions)
	}

	api := r.Group("/api", mw.RequireUser())
	{
		api.GET("/me", h.CurrentUser)

		api.POST("/sessions", h.CreateSession)
		api.GET("/sessions", h.ListSessions)
		api.GET("/sessions/:id", h.GetSession)
		api.POST("/sessions/:id/join", h.JoinSession)
		api.PUT("/sessions/:id/character", h.SaveCharacter)
		api.GET("/sessions/:id/players/:userId/character", h.GetCharacter)
		api.POST("/sessions/:id/players/:userId/conditions", h.ApplyCondition)
	}

	return r
}

// requestLogger emits one structured line per request.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}
