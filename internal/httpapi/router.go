package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/notechat/internal/common"
	"github.com/suPer8Hu/notechat/internal/config"
	"github.com/suPer8Hu/notechat/internal/httpapi/handlers"
	"github.com/suPer8Hu/notechat/internal/httpapi/middleware"
)

// NewRouter builds the API. limiter may be nil to disable rate limiting.
func NewRouter(cfg config.Config, h *handlers.Handler, limiter middleware.RateLimiter) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery())

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	r.GET("/ping", h.Ping)

	authGroup := r.Group("/")
	authGroup.Use(middleware.AuthRequired(cfg.JWTSecret, cfg.JWTAudience))
	authGroup.Use(middleware.RateLimit(limiter, cfg.RateLimitPerMinute, time.Minute))
	authGroup.GET("/me", h.Me)

	// Notes (dashboard)
	authGroup.GET("/notes", h.ListNotes)
	authGroup.POST("/notes", h.AddNote)

	// Chat
	authGroup.GET("/chat/messages", h.ListChatMessages)
	authGroup.POST("/chat/messages", h.SendChatMessage)
	authGroup.DELETE("/chat/messages", h.NewChat)
	authGroup.POST("/chat/messages/async", h.SendChatMessageAsync)
	authGroup.GET("/chat/jobs/:job_id", h.GetChatJob)
	return r
}
