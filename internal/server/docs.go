package server

import (
	_ "embed"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"taskmgmt/internal/service"
)

//go:embed openapi.yaml
var openAPIDocument []byte

// mountDocs serves the API description and the JSON fallback for unknown routes.
func (s *Server) mountDocs() {
	s.engine.GET("/api/docs/openapi.yaml", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/yaml; charset=utf-8", openAPIDocument)
	})

	s.engine.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, service.Fail[any](service.KindNotFound, "Endpoint not found."))
			return
		}
		c.String(http.StatusNotFound, "404 page not found")
	})
}
