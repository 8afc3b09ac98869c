package service

import (
	"context"
	"errors"
	"strings"

	"taskmgmt/internal/models"
	"taskmgmt/internal/policy"
)

// UpdateService handles progress notes on tasks.
type UpdateService struct {
	updates UpdateStore
	tasks   TaskStore
}

func NewUpdateService(updates UpdateStore, tasks TaskStore) *UpdateService {
	return &UpdateService{updates: updates, tasks: tasks}
}

// Add posts a note on a task assigned to the actor.
func (s *UpdateService) Add(ctx context.Context, actor policy.Actor, taskID int64, in CreateUpdateInput) (Result[*models.TaskUpdate], error) {
	if errs := in.Validate(); len(errs) > 0 {
		return invalid[*models.TaskUpdate](errs), nil
	}
	task, res, err := findTask[*models.TaskUpdate](ctx, s.tasks, taskID)
	if task == nil {
		return res, err
	}
	if !policy.CanAddUpdate(actor.ID, *task) {
		return Fail[*models.TaskUpdate](KindForbidden, "You can only add updates to your own tasks."), nil
	}

	attachment := in.AttachmentURL
	if attachment != nil && strings.TrimSpace(*attachment) == "" {
		attachment = nil
	}
	update, err := s.updates.CreateUpdate(ctx, models.TaskUpdate{
		TaskID:        taskID,
		UpdatedBy:     actor.ID,
		Text:          in.Text,
		AttachmentURL: attachment,
	})
	if errors.Is(err, models.ErrNotFound) {
		return Fail[*models.TaskUpdate](KindNotFound, msgTaskNotFound), nil
	}
	if err != nil {
		return Result[*models.TaskUpdate]{}, err
	}
	return OK(&update, "Task update added successfully."), nil
}

// List returns the notes of a task, newest first.
func (s *UpdateService) List(ctx context.Context, taskID int64) (Result[[]models.TaskUpdate], error) {
	task, res, err := findTask[[]models.TaskUpdate](ctx, s.tasks, taskID)
	if task == nil {
		return res, err
	}
	updates, err := s.updates.ListUpdates(ctx, taskID)
	if err != nil {
		return Result[[]models.TaskUpdate]{}, err
	}
	return OK(updates, ""), nil
}
