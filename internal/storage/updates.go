package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"taskmgmt/internal/models"
)

const updateSelect = `SELECT u.id, u.task_id, u.updated_by, usr.full_name, u.update_text, u.attachment_url, u.created_at
        FROM task_updates u
        JOIN users usr ON usr.id = u.updated_by`

func scanUpdate(row scanner) (models.TaskUpdate, error) {
	var (
		u          models.TaskUpdate
		attachment sql.NullString
	)
	if err := row.Scan(&u.ID, &u.TaskID, &u.UpdatedBy, &u.UpdatedByName, &u.Text, &attachment, &u.CreatedAt); err != nil {
		return models.TaskUpdate{}, err
	}
	u.AttachmentURL = stringPtr(attachment)
	return u, nil
}

// GetUpdate fetches one progress note.
func (s *Store) GetUpdate(ctx context.Context, id int64) (models.TaskUpdate, error) {
	u, err := scanUpdate(s.queryRow(ctx, updateSelect+` WHERE u.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.TaskUpdate{}, models.ErrNotFound
	}
	if err != nil {
		return models.TaskUpdate{}, fmt.Errorf("get update: %w", err)
	}
	return u, nil
}

// CreateUpdate inserts a progress note and returns it with the author name.
func (s *Store) CreateUpdate(ctx context.Context, u models.TaskUpdate) (models.TaskUpdate, error) {
	id, err := s.insert(ctx, `INSERT INTO task_updates(task_id, updated_by, update_text, attachment_url) VALUES(?, ?, ?, ?) RETURNING id`,
		u.TaskID, u.UpdatedBy, strings.TrimSpace(u.Text), nullString(u.AttachmentURL))
	if err != nil {
		if isForeignKeyViolation(err) {
			return models.TaskUpdate{}, models.ErrNotFound
		}
		return models.TaskUpdate{}, fmt.Errorf("insert update: %w", err)
	}
	return s.GetUpdate(ctx, id)
}

// ListUpdates returns the notes of a task, newest first.
func (s *Store) ListUpdates(ctx context.Context, taskID int64) ([]models.TaskUpdate, error) {
	rows, err := s.query(ctx, updateSelect+` WHERE u.task_id = ? ORDER BY u.created_at DESC, u.id DESC`, taskID)
	if err != nil {
		return nil, fmt.Errorf("list updates: %w", err)
	}
	defer rows.Close()

	updates := []models.TaskUpdate{}
	for rows.Next() {
		u, err := scanUpdate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan update: %w", err)
		}
		updates = append(updates, u)
	}
	return updates, rows.Err()
}
