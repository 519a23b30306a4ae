package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/notechat/internal/common"
	"github.com/suPer8Hu/notechat/internal/notes"
)

type addNoteReq struct {
	Title string `json:"title"`
}

func (h *Handler) ListNotes(c *gin.Context) {
	owner, ok := ownerFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	list, err := h.NotesSvc.List(c.Request.Context(), owner)
	if err != nil {
		log.Printf("[ListNotes] request_id=%s owner=%s err=%v", requestID(c), owner, err)
		common.Fail(c, http.StatusServiceUnavailable, 50301, "notes store unavailable")
		return
	}
	common.OK(c, gin.H{"notes": list})
}

func (h *Handler) AddNote(c *gin.Context) {
	owner, ok := ownerFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req addNoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	n, err := h.NotesSvc.Add(c.Request.Context(), owner, req.Title)
	if err != nil {
		if errors.Is(err, notes.ErrInvalidTitle) {
			common.Fail(c, http.StatusBadRequest, 10002, err.Error())
			return
		}
		log.Printf("[AddNote] request_id=%s owner=%s err=%v", requestID(c), owner, err)
		common.Fail(c, http.StatusServiceUnavailable, 50301, "notes store unavailable")
		return
	}
	common.OK(c, gin.H{"note": n})
}
