package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/proglot/tutor/internal/ai"
	"github.com/proglot/tutor/internal/tutor"
)

// failFromErr maps the gateway/controller failure taxonomy to user-facing
// responses. Quota exhaustion points at the export fallback; everything
// unclassified is surfaced with its raw detail.
func failFromErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, tutor.ErrUnknownLanguage):
		Fail(c, http.StatusNotFound, 40401, "unknown language")
	case errors.Is(err, tutor.ErrConfirmationMismatch):
		Fail(c, http.StatusBadRequest, 10003, "please type 'delete' to confirm")
	case errors.Is(err, ai.ErrQuotaExceeded):
		Fail(c, http.StatusTooManyRequests, 42901,
			"API quota exceeded; use the export endpoint to continue the lesson on the web")
	case errors.Is(err, ai.ErrUnavailable):
		Fail(c, http.StatusServiceUnavailable, 50301,
			"model service temporarily unavailable, please try again")
	default:
		Fail(c, http.StatusInternalServerError, 50001, err.Error())
	}
}

func (h *Handler) ListLanguages(c *gin.Context) {
	OK(c, gin.H{"languages": tutor.Languages})
}

type openSessionReq struct {
	Language string `json:"language" binding:"required"`
}

// OpenSession binds (or rebinds) the active session to a language and fires
// the cold-start greeting on a fresh track.
func (h *Handler) OpenSession(c *gin.Context) {
	var req openSessionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	view, err := h.Svc.Open(c.Request.Context(), req.Language)
	if err != nil {
		failFromErr(c, err)
		return
	}
	OK(c, view)
}

type sendMessageReq struct {
	Language string `json:"language" binding:"required"`
	Message  string `json:"message" binding:"required"`
}

func (h *Handler) SendMessage(c *gin.Context) {
	var req sendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	reply, err := h.Svc.Send(c.Request.Context(), req.Language, req.Message)
	if err != nil {
		failFromErr(c, err)
		return
	}
	OK(c, gin.H{
		"language": req.Language,
		"reply":    reply,
	})
}

func (h *Handler) ListMessages(c *gin.Context) {
	view, err := h.Svc.History(c.Request.Context(), c.Param("language"))
	if err != nil {
		failFromErr(c, err)
		return
	}
	OK(c, view)
}

type clearHistoryReq struct {
	Confirm string `json:"confirm"`
}

func (h *Handler) ClearHistory(c *gin.Context) {
	var req clearHistoryReq
	_ = c.ShouldBindJSON(&req) // missing body counts as an empty phrase

	if err := h.Svc.Clear(c.Request.Context(), c.Param("language"), req.Confirm); err != nil {
		failFromErr(c, err)
		return
	}
	OK(c, gin.H{"cleared": true})
}

// ExportTranscript returns the plain-text continuation block built from the
// full on-disk transcript.
func (h *Handler) ExportTranscript(c *gin.Context) {
	text, err := h.Svc.Export(c.Request.Context(), c.Param("language"))
	if err != nil {
		failFromErr(c, err)
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}
