package service

import (
	"context"
	"errors"

	"taskmgmt/internal/models"
	"taskmgmt/internal/policy"
)

const msgReviewNotFound = "Review not found."

// ReviewService handles manager reviews of completed tasks.
type ReviewService struct {
	reviews ReviewStore
	tasks   TaskStore
}

func NewReviewService(reviews ReviewStore, tasks TaskStore) *ReviewService {
	return &ReviewService{reviews: reviews, tasks: tasks}
}

// Add reviews a task. The task must be Done.
func (s *ReviewService) Add(ctx context.Context, actor policy.Actor, taskID int64, in ReviewInput) (Result[*models.TaskReview], error) {
	if errs := in.Validate(); len(errs) > 0 {
		return invalid[*models.TaskReview](errs), nil
	}
	task, res, err := findTask[*models.TaskReview](ctx, s.tasks, taskID)
	if task == nil {
		return res, err
	}
	if !policy.CanReview(*task) {
		return Fail[*models.TaskReview](KindConflict, "You can only review completed tasks."), nil
	}

	review, err := s.reviews.CreateReview(ctx, models.TaskReview{
		TaskID:     taskID,
		ReviewedBy: actor.ID,
		Rating:     in.Rating,
		Comments:   in.Comments,
	})
	if errors.Is(err, models.ErrNotFound) {
		return Fail[*models.TaskReview](KindNotFound, msgTaskNotFound), nil
	}
	if err != nil {
		return Result[*models.TaskReview]{}, err
	}
	return OK(&review, "Task review added successfully."), nil
}

// List returns the reviews of a task, newest first.
func (s *ReviewService) List(ctx context.Context, taskID int64) (Result[[]models.TaskReview], error) {
	task, res, err := findTask[[]models.TaskReview](ctx, s.tasks, taskID)
	if task == nil {
		return res, err
	}
	reviews, err := s.reviews.ListReviews(ctx, taskID)
	if err != nil {
		return Result[[]models.TaskReview]{}, err
	}
	return OK(reviews, ""), nil
}

// Update replaces the rating and comment of a review.
func (s *ReviewService) Update(ctx context.Context, reviewID int64, in ReviewInput) (Result[*models.TaskReview], error) {
	if errs := in.Validate(); len(errs) > 0 {
		return invalid[*models.TaskReview](errs), nil
	}
	review, err := s.reviews.GetReview(ctx, reviewID)
	if errors.Is(err, models.ErrNotFound) {
		return Fail[*models.TaskReview](KindNotFound, msgReviewNotFound), nil
	}
	if err != nil {
		return Result[*models.TaskReview]{}, err
	}

	review.Rating = in.Rating
	review.Comments = in.Comments
	updated, err := s.reviews.UpdateReview(ctx, review)
	if errors.Is(err, models.ErrNotFound) {
		return Fail[*models.TaskReview](KindNotFound, msgReviewNotFound), nil
	}
	if err != nil {
		return Result[*models.TaskReview]{}, err
	}
	return OK(&updated, "Review updated successfully."), nil
}

// Delete removes a review.
func (s *ReviewService) Delete(ctx context.Context, reviewID int64) (Result[bool], error) {
	found, err := s.reviews.DeleteReview(ctx, reviewID)
	if err != nil {
		return Result[bool]{}, err
	}
	if !found {
		return Fail[bool](KindNotFound, msgReviewNotFound), nil
	}
	return OK(true, "Review deleted successfully."), nil
}
