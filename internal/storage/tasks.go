package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"taskmgmt/internal/models"
)

const taskSelect = `SELECT t.id, t.title, t.description, t.status, t.created_at, t.due_date,
        t.created_by, c.full_name, t.assigned_to, a.full_name
        FROM tasks t
        JOIN users c ON c.id = t.created_by
        JOIN users a ON a.id = t.assigned_to`

func scanTask(row scanner) (models.Task, error) {
	var (
		t   models.Task
		due sql.NullTime
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.CreatedAt, &due,
		&t.CreatedBy, &t.CreatorName, &t.AssignedTo, &t.AssignedToName); err != nil {
		return models.Task{}, err
	}
	t.DueDate = timePtr(due)
	return t, nil
}

func (s *Store) listTasks(ctx context.Context, where string, args ...any) ([]models.Task, error) {
	rows, err := s.query(ctx, taskSelect+where+` ORDER BY t.created_at DESC, t.id DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// GetTask retrieves a task with creator and assignee names resolved.
func (s *Store) GetTask(ctx context.Context, id int64) (models.Task, error) {
	t, err := scanTask(s.queryRow(ctx, taskSelect+` WHERE t.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, models.ErrNotFound
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// ListTasks returns every task, newest first.
func (s *Store) ListTasks(ctx context.Context) ([]models.Task, error) {
	return s.listTasks(ctx, "")
}

// ListTasksByAssignee returns the tasks assigned to userID, newest first.
func (s *Store) ListTasksByAssignee(ctx context.Context, userID int64) ([]models.Task, error) {
	return s.listTasks(ctx, ` WHERE t.assigned_to = ?`, userID)
}

// CreateTask inserts a task and reloads it with relations.
func (s *Store) CreateTask(ctx context.Context, t models.Task) (models.Task, error) {
	if t.Status == "" {
		t.Status = models.StatusPending
	}
	id, err := s.insert(ctx, `INSERT INTO tasks(title, description, status, due_date, created_by, assigned_to)
        VALUES(?, ?, ?, ?, ?, ?) RETURNING id`,
		strings.TrimSpace(t.Title), strings.TrimSpace(t.Description), t.Status, nullTime(t.DueDate), t.CreatedBy, t.AssignedTo)
	if err != nil {
		if isForeignKeyViolation(err) {
			return models.Task{}, models.ErrNotFound
		}
		return models.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return s.GetTask(ctx, id)
}

// UpdateTask overwrites every mutable field of the task.
func (s *Store) UpdateTask(ctx context.Context, t models.Task) (models.Task, error) {
	res, err := s.exec(ctx, `UPDATE tasks SET title = ?, description = ?, status = ?, due_date = ?, assigned_to = ? WHERE id = ?`,
		strings.TrimSpace(t.Title), strings.TrimSpace(t.Description), t.Status, nullTime(t.DueDate), t.AssignedTo, t.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return models.Task{}, models.ErrNotFound
		}
		return models.Task{}, fmt.Errorf("update task: %w", err)
	}
	found, err := affected(res)
	if err != nil {
		return models.Task{}, err
	}
	if !found {
		return models.Task{}, models.ErrNotFound
	}
	return s.GetTask(ctx, t.ID)
}

// UpdateTaskStatus changes only the status column, and only while the task is
// still assigned to assignee. It reports false when the task no longer exists
// or has been reassigned.
func (s *Store) UpdateTaskStatus(ctx context.Context, id, assignee int64, status string) (bool, error) {
	res, err := s.exec(ctx, `UPDATE tasks SET status = ? WHERE id = ? AND assigned_to = ?`, status, id, assignee)
	if err != nil {
		return false, fmt.Errorf("update task status: %w", err)
	}
	return affected(res)
}

// DeleteTask removes a task; its updates and reviews go with it.
func (s *Store) DeleteTask(ctx context.Context, id int64) (bool, error) {
	res, err := s.exec(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete task: %w", err)
	}
	return affected(res)
}
