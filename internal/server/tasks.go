package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskmgmt/internal/service"
)

// handleCreateTask creates a task created by the caller.
func (s *Server) handleCreateTask(c *gin.Context) {
	var req service.CreateTaskInput
	if !bindJSON(c, &req) {
		return
	}

	res, err := s.deps.Tasks.Create(c.Request.Context(), mustActor(c), req)
	if err == nil && res.Success {
		c.Header("Location", fmt.Sprintf("/api/tasks/%d", res.Data.ID))
	}
	respond(s, c, http.StatusCreated, res, err)
}

// handleListTasks returns all tasks to managers and assigned tasks to employees.
func (s *Server) handleListTasks(c *gin.Context) {
	res, err := s.deps.Tasks.List(c.Request.Context(), mustActor(c))
	respond(s, c, http.StatusOK, res, err)
}

// handleGetTask returns one task when the caller may see it.
func (s *Server) handleGetTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	res, err := s.deps.Tasks.Get(c.Request.Context(), mustActor(c), id)
	respond(s, c, http.StatusOK, res, err)
}

// handleUpdateTask replaces every mutable field of a task.
func (s *Server) handleUpdateTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req service.UpdateTaskInput
	if !bindJSON(c, &req) {
		return
	}
	res, err := s.deps.Tasks.Update(c.Request.Context(), id, req)
	respond(s, c, http.StatusOK, res, err)
}

// handleDeleteTask removes a task with its updates and reviews.
func (s *Server) handleDeleteTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	res, err := s.deps.Tasks.Delete(c.Request.Context(), id)
	respond(s, c, http.StatusOK, res, err)
}

// handleUpdateTaskStatus changes only the status; the assignee alone may call it.
func (s *Server) handleUpdateTaskStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req service.StatusInput
	if !bindJSON(c, &req) {
		return
	}
	res, err := s.deps.Tasks.UpdateStatus(c.Request.Context(), mustActor(c), id, req)
	respond(s, c, http.StatusOK, res, err)
}
