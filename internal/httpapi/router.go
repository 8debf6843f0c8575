package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/proglot/tutor/internal/httpapi/handlers"
	"github.com/proglot/tutor/internal/httpapi/middleware"
	"github.com/proglot/tutor/internal/tutor"
)

func NewRouter(svc *tutor.Service) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	h := handlers.NewHandler(svc)

	r.GET("/ping", h.Ping)
	r.GET("/languages", h.ListLanguages)

	r.POST("/chat/open", h.OpenSession)
	r.POST("/chat/messages", h.SendMessage)
	r.GET("/chat/:language/messages", h.ListMessages)
	r.GET("/chat/:language/export", h.ExportTranscript)
	r.DELETE("/chat/:language/history", h.ClearHistory)

	return r
}
