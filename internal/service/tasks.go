package service

import (
	"context"
	"errors"

	"taskmgmt/internal/models"
	"taskmgmt/internal/policy"
)

const (
	msgTaskNotFound     = "Task not found."
	msgAssigneeNotFound = "Assigned user not found."
	msgInvalidStatus    = "Invalid status. Must be 'Pending', 'InProgress', or 'Done'."
	msgNotYourTask      = "You can only update the status of your own tasks."
)

// TaskService implements the task lifecycle use cases.
type TaskService struct {
	tasks TaskStore
	users UserStore
}

func NewTaskService(tasks TaskStore, users UserStore) *TaskService {
	return &TaskService{tasks: tasks, users: users}
}

// Create inserts a Pending task created by the actor.
func (s *TaskService) Create(ctx context.Context, actor policy.Actor, in CreateTaskInput) (Result[*models.Task], error) {
	if errs := in.Validate(); len(errs) > 0 {
		return invalid[*models.Task](errs), nil
	}
	if !policy.CanCreateTaskFor(actor, in.AssignedTo) {
		return Fail[*models.Task](KindForbidden, "You can only create tasks for yourself."), nil
	}
	if _, err := s.users.GetUser(ctx, in.AssignedTo); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return Fail[*models.Task](KindNotFound, msgAssigneeNotFound), nil
		}
		return Result[*models.Task]{}, err
	}

	task, err := s.tasks.CreateTask(ctx, models.Task{
		Title:       in.Title,
		Description: in.Description,
		Status:      models.StatusPending,
		DueDate:     in.DueDate.Ptr(),
		CreatedBy:   actor.ID,
		AssignedTo:  in.AssignedTo,
	})
	if errors.Is(err, models.ErrNotFound) {
		return Fail[*models.Task](KindNotFound, msgAssigneeNotFound), nil
	}
	if err != nil {
		return Result[*models.Task]{}, err
	}
	return OK(&task, "Task created successfully."), nil
}

// List returns every task for managers and the assigned tasks for everyone else.
func (s *TaskService) List(ctx context.Context, actor policy.Actor) (Result[[]models.Task], error) {
	var (
		tasks []models.Task
		err   error
	)
	if policy.HasRole(actor, models.RoleManager) {
		tasks, err = s.tasks.ListTasks(ctx)
	} else {
		tasks, err = s.tasks.ListTasksByAssignee(ctx, actor.ID)
	}
	if err != nil {
		return Result[[]models.Task]{}, err
	}
	return OK(tasks, ""), nil
}

// Get returns one task if the actor may see it.
func (s *TaskService) Get(ctx context.Context, actor policy.Actor, id int64) (Result[*models.Task], error) {
	task, res, err := findTask[*models.Task](ctx, s.tasks, id)
	if task == nil {
		return res, err
	}
	if !policy.CanViewTask(actor, *task) {
		return Fail[*models.Task](KindForbidden, "You don't have permission to view this task."), nil
	}
	return OK(task, ""), nil
}

// Update overwrites every mutable field of a task.
func (s *TaskService) Update(ctx context.Context, id int64, in UpdateTaskInput) (Result[*models.Task], error) {
	if errs := in.Validate(); len(errs) > 0 {
		return invalid[*models.Task](errs), nil
	}
	task, res, err := findTask[*models.Task](ctx, s.tasks, id)
	if task == nil {
		return res, err
	}
	if _, err := s.users.GetUser(ctx, in.AssignedTo); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return Fail[*models.Task](KindNotFound, msgAssigneeNotFound), nil
		}
		return Result[*models.Task]{}, err
	}
	if !policy.IsValidStatus(in.Status) {
		return Fail[*models.Task](KindConflict, msgInvalidStatus), nil
	}

	task.Title = in.Title
	task.Description = in.Description
	task.AssignedTo = in.AssignedTo
	task.DueDate = in.DueDate.Ptr()
	task.Status = in.Status

	updated, err := s.tasks.UpdateTask(ctx, *task)
	if errors.Is(err, models.ErrNotFound) {
		// The task vanished or the assignee was removed in between.
		return Fail[*models.Task](KindNotFound, msgTaskNotFound), nil
	}
	if err != nil {
		return Result[*models.Task]{}, err
	}
	return OK(&updated, "Task updated successfully."), nil
}

// Delete removes a task together with its updates and reviews.
func (s *TaskService) Delete(ctx context.Context, id int64) (Result[bool], error) {
	found, err := s.tasks.DeleteTask(ctx, id)
	if err != nil {
		return Result[bool]{}, err
	}
	if !found {
		return Fail[bool](KindNotFound, msgTaskNotFound), nil
	}
	return OK(true, "Task deleted successfully."), nil
}

// UpdateStatus moves the task to a new status. Only the assignee may do so.
func (s *TaskService) UpdateStatus(ctx context.Context, actor policy.Actor, id int64, in StatusInput) (Result[*models.Task], error) {
	if errs := in.Validate(); len(errs) > 0 {
		return invalid[*models.Task](errs), nil
	}
	task, res, err := findTask[*models.Task](ctx, s.tasks, id)
	if task == nil {
		return res, err
	}
	if !policy.IsValidStatus(in.Status) {
		return Fail[*models.Task](KindConflict, msgInvalidStatus), nil
	}
	if !policy.CanUpdateTaskStatus(actor.ID, *task) {
		return Fail[*models.Task](KindForbidden, msgNotYourTask), nil
	}

	found, err := s.tasks.UpdateTaskStatus(ctx, id, actor.ID, in.Status)
	if err != nil {
		return Result[*models.Task]{}, err
	}

	task, res, err = findTask[*models.Task](ctx, s.tasks, id)
	if task == nil {
		return res, err
	}
	if !found {
		// Reassigned between the check and the write.
		return Fail[*models.Task](KindForbidden, msgNotYourTask), nil
	}
	return OK(task, "Task status updated successfully."), nil
}

// findTask fetches a task. When it returns a nil task, the Result and error
// are what the caller should return.
func findTask[T any](ctx context.Context, tasks TaskStore, id int64) (*models.Task, Result[T], error) {
	task, err := tasks.GetTask(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return nil, Fail[T](KindNotFound, msgTaskNotFound), nil
	}
	if err != nil {
		return nil, Result[T]{}, err
	}
	return &task, Result[T]{}, nil
}
