package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskmgmt/internal/service"
)

func (s *Server) handleAddUpdate(c *gin.Context) {
	taskID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req service.CreateUpdateInput
	if !bindJSON(c, &req) {
		return
	}
	res, err := s.deps.Updates.Add(c.Request.Context(), mustActor(c), taskID, req)
	respond(s, c, http.StatusCreated, res, err)
}

func (s *Server) handleListUpdates(c *gin.Context) {
	taskID, ok := parseID(c, "id")
	if !ok {
		return
	}
	res, err := s.deps.Updates.List(c.Request.Context(), taskID)
	respond(s, c, http.StatusOK, res, err)
}
