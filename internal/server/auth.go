package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskmgmt/internal/service"
)

// handleRegister creates an account and returns a token for it.
func (s *Server) handleRegister(c *gin.Context) {
	var req service.RegisterInput
	if !bindJSON(c, &req) {
		return
	}
	res, err := s.deps.Auth.Register(c.Request.Context(), req)
	respond(s, c, http.StatusOK, res, err)
}

// handleLogin exchanges credentials for a token.
func (s *Server) handleLogin(c *gin.Context) {
	var req service.LoginInput
	if !bindJSON(c, &req) {
		return
	}
	res, err := s.deps.Auth.Login(c.Request.Context(), req)
	respond(s, c, http.StatusOK, res, err)
}
