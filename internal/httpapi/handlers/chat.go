package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/notechat/internal/chat"
	"github.com/suPer8Hu/notechat/internal/common"
)

// failChat maps the chat error taxonomy onto the response envelope.
func failChat(c *gin.Context, op string, owner string, err error) {
	switch {
	case errors.Is(err, chat.ErrUnauthenticated):
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
	case errors.Is(err, chat.ErrEmptyMessage):
		common.Fail(c, http.StatusBadRequest, 10002, "message is empty")
	case errors.Is(err, chat.ErrJobNotFound):
		common.Fail(c, http.StatusNotFound, 40402, "job not found")
	case errors.Is(err, chat.ErrEmptyReply):
		log.Printf("[%s] request_id=%s owner=%s err=%v", op, requestID(c), owner, err)
		common.Fail(c, http.StatusBadGateway, 50202, "model returned no content")
	case errors.Is(err, chat.ErrGeneration):
		log.Printf("[%s] request_id=%s owner=%s err=%v", op, requestID(c), owner, err)
		common.Fail(c, http.StatusBadGateway, 50201, "generation failed")
	case errors.Is(err, chat.ErrStoreUnavailable):
		log.Printf("[%s] request_id=%s owner=%s err=%v", op, requestID(c), owner, err)
		common.Fail(c, http.StatusServiceUnavailable, 50301, "conversation store unavailable")
	default:
		log.Printf("[%s] request_id=%s owner=%s err=%v", op, requestID(c), owner, err)
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
	}
}

type sendMessageReq struct {
	Message string `json:"message"`
}

func (h *Handler) SendChatMessage(c *gin.Context) {
	owner, ok := ownerFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req sendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	reply, msgID, err := h.ChatSvc.SendMessage(c.Request.Context(), owner, req.Message)
	if err != nil {
		failChat(c, "SendChatMessage", owner, err)
		return
	}

	common.OK(c, gin.H{
		"reply":      reply,
		"message_id": msgID,
	})
}

func (h *Handler) ListChatMessages(c *gin.Context) {
	owner, ok := ownerFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	msgs, err := h.ChatSvc.History(c.Request.Context(), owner)
	if err != nil {
		failChat(c, "ListChatMessages", owner, err)
		return
	}

	window := h.ChatSvc.WindowSize()
	common.OK(c, gin.H{
		"messages":      msgs,
		"window_size":   window,
		"limit_reached": len(msgs) >= window,
	})
}

func (h *Handler) NewChat(c *gin.Context) {
	owner, ok := ownerFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	n, err := h.ChatSvc.NewChat(c.Request.Context(), owner)
	if err != nil {
		failChat(c, "NewChat", owner, err)
		return
	}
	common.OK(c, gin.H{"deleted": n})
}

func (h *Handler) SendChatMessageAsync(c *gin.Context) {
	owner, ok := ownerFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	if h.Jobs == nil {
		common.Fail(c, http.StatusServiceUnavailable, 50302, "async chat disabled")
		return
	}

	var req sendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	// read idempotency key
	idempoKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
	if len(idempoKey) > 128 {
		common.Fail(c, http.StatusBadRequest, 10003, "idempotency key too long")
		return
	}
	var idempoKeyPtr *string
	if idempoKey != "" {
		idempoKeyPtr = &idempoKey
	}

	job, created, err := h.ChatSvc.SubmitAsync(c.Request.Context(), owner, req.Message, idempoKeyPtr)
	if err != nil {
		failChat(c, "SendChatMessageAsync", owner, err)
		return
	}

	// Enqueue only when a new job was created
	if created {
		if err := h.Jobs.PublishJob(c.Request.Context(), job.ID); err != nil {
			log.Printf("[SendChatMessageAsync] PublishJob failed request_id=%s owner=%s job_id=%s err=%v", requestID(c), owner, job.ID, err)
			if markErr := h.ChatSvc.FailJob(c.Request.Context(), job.ID, "enqueue failed"); markErr != nil {
				log.Printf("[SendChatMessageAsync] FailJob failed job_id=%s err=%v", job.ID, markErr)
			}
			common.Fail(c, http.StatusInternalServerError, 50002, "enqueue failed")
			return
		}
	}

	common.OK(c, gin.H{"job_id": job.ID, "created": created})
}

func (h *Handler) GetChatJob(c *gin.Context) {
	owner, ok := ownerFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	jobID := c.Param("job_id")
	if jobID == "" {
		common.Fail(c, http.StatusBadRequest, 10002, "job_id required")
		return
	}

	j, err := h.ChatSvc.GetJob(c.Request.Context(), owner, jobID)
	if err != nil {
		failChat(c, "GetChatJob", owner, err)
		return
	}

	common.OK(c, gin.H{
		"job": gin.H{
			"id":                j.ID,
			"status":            j.Status,
			"result_message_id": j.ResultMessageID,
			"error":             j.Error,
			"created_at":        j.CreatedAt,
			"updated_at":        j.UpdatedAt,
		},
	})
}
