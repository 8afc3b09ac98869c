package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"taskmgmt/internal/models"
)

const reviewSelect = `SELECT r.id, r.task_id, r.reviewed_by, usr.full_name, r.comments, r.rating, r.created_at
        FROM task_reviews r
        JOIN users usr ON usr.id = r.reviewed_by`

func scanReview(row scanner) (models.TaskReview, error) {
	var r models.TaskReview
	if err := row.Scan(&r.ID, &r.TaskID, &r.ReviewedBy, &r.ReviewerName, &r.Comments, &r.Rating, &r.CreatedAt); err != nil {
		return models.TaskReview{}, err
	}
	return r, nil
}

// GetReview fetches a review by id.
func (s *Store) GetReview(ctx context.Context, id int64) (models.TaskReview, error) {
	r, err := scanReview(s.queryRow(ctx, reviewSelect+` WHERE r.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.TaskReview{}, models.ErrNotFound
	}
	if err != nil {
		return models.TaskReview{}, fmt.Errorf("get review: %w", err)
	}
	return r, nil
}

// CreateReview inserts a review and returns it with the reviewer name.
func (s *Store) CreateReview(ctx context.Context, r models.TaskReview) (models.TaskReview, error) {
	id, err := s.insert(ctx, `INSERT INTO task_reviews(task_id, reviewed_by, rating, comments) VALUES(?, ?, ?, ?) RETURNING id`,
		r.TaskID, r.ReviewedBy, r.Rating, strings.TrimSpace(r.Comments))
	if err != nil {
		if isForeignKeyViolation(err) {
			return models.TaskReview{}, models.ErrNotFound
		}
		return models.TaskReview{}, fmt.Errorf("insert review: %w", err)
	}
	return s.GetReview(ctx, id)
}

// ListReviews returns the reviews of a task, newest first.
func (s *Store) ListReviews(ctx context.Context, taskID int64) ([]models.TaskReview, error) {
	rows, err := s.query(ctx, reviewSelect+` WHERE r.task_id = ? ORDER BY r.created_at DESC, r.id DESC`, taskID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []models.TaskReview{}
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

// UpdateReview replaces the rating and comments of a review.
func (s *Store) UpdateReview(ctx context.Context, r models.TaskReview) (models.TaskReview, error) {
	res, err := s.exec(ctx, `UPDATE task_reviews SET rating = ?, comments = ? WHERE id = ?`, r.Rating, strings.TrimSpace(r.Comments), r.ID)
	if err != nil {
		return models.TaskReview{}, fmt.Errorf("update review: %w", err)
	}
	found, err := affected(res)
	if err != nil {
		return models.TaskReview{}, err
	}
	if !found {
		return models.TaskReview{}, models.ErrNotFound
	}
	return s.GetReview(ctx, r.ID)
}

// DeleteReview removes a review. It reports false when none matched.
func (s *Store) DeleteReview(ctx context.Context, id int64) (bool, error) {
	res, err := s.exec(ctx, `DELETE FROM task_reviews WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete review: %w", err)
	}
	return affected(res)
}
