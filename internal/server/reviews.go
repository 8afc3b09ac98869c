package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskmgmt/internal/service"
)

// handleAddReview rates a completed task.
func (s *Server) handleAddReview(c *gin.Context) {
	taskID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req service.ReviewInput
	if !bindJSON(c, &req) {
		return
	}
	res, err := s.deps.Reviews.Add(c.Request.Context(), mustActor(c), taskID, req)
	respond(s, c, http.StatusCreated, res, err)
}

func (s *Server) handleListReviews(c *gin.Context) {
	taskID, ok := parseID(c, "id")
	if !ok {
		return
	}
	res, err := s.deps.Reviews.List(c.Request.Context(), taskID)
	respond(s, c, http.StatusOK, res, err)
}

func (s *Server) handleUpdateReview(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req service.ReviewInput
	if !bindJSON(c, &req) {
		return
	}
	res, err := s.deps.Reviews.Update(c.Request.Context(), id, req)
	respond(s, c, http.StatusOK, res, err)
}

func (s *Server) handleDeleteReview(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	res, err := s.deps.Reviews.Delete(c.Request.Context(), id)
	respond(s, c, http.StatusOK, res, err)
}
