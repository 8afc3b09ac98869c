package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// handleListUsers returns every account. Managers only.
func (s *Server) handleListUsers(c *gin.Context) {
	res, err := s.deps.Users.List(c.Request.Context())
	respond(s, c, http.StatusOK, res, err)
}

// handleGetUser returns one account; employees may only read their own.
func (s *Server) handleGetUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	res, err := s.deps.Users.Get(c.Request.Context(), mustActor(c), id)
	respond(s, c, http.StatusOK, res, err)
}
