package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/notechat/internal/chat"
	"github.com/suPer8Hu/notechat/internal/common"
	"github.com/suPer8Hu/notechat/internal/httpapi/middleware"
	"github.com/suPer8Hu/notechat/internal/notes"
)

// JobPublisher enqueues an async chat job for the worker.
type JobPublisher interface {
	PublishJob(ctx context.Context, jobID string) error
}

type Handler struct {
	ChatSvc  *chat.Service
	NotesSvc *notes.Service
	Jobs     JobPublisher
}

// NewHandler wires the services. jobs may be nil, in which case the async
// endpoint answers 503.
func NewHandler(chatSvc *chat.Service, notesSvc *notes.Service, jobs JobPublisher) *Handler {
	return &Handler{ChatSvc: chatSvc, NotesSvc: notesSvc, Jobs: jobs}
}

func ownerFromContext(c *gin.Context) (string, bool) {
	owner := middleware.Owner(c)
	return owner, owner != ""
}

func requestID(c *gin.Context) string {
	return c.GetString(middleware.RequestIDKey)
}

func (h *Handler) Ping(c *gin.Context) {
	common.OK(c, gin.H{"pong": true})
}

func (h *Handler) Me(c *gin.Context) {
	owner, ok := ownerFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	common.OK(c, gin.H{
		"id":    owner,
		"email": c.GetString(middleware.EmailKey),
	})
}
