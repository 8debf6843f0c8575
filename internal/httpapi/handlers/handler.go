package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/proglot/tutor/internal/tutor"
)

type Handler struct {
	Svc *tutor.Service
}

func NewHandler(svc *tutor.Service) *Handler {
	return &Handler{Svc: svc}
}

// OK writes the standard success envelope.
func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "ok",
		"data":    data,
	})
}

// Fail writes the standard error envelope.
func Fail(c *gin.Context, httpStatus int, code int, msg string) {
	c.JSON(httpStatus, gin.H{
		"code":    code,
		"message": msg,
		"data":    nil,
	})
}

func (h *Handler) Ping(c *gin.Context) {
	OK(c, gin.H{"pong": true})
}
