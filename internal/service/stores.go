package service

import (
	"context"

	"taskmgmt/internal/models"
)

// UserStore persists user accounts.
type UserStore interface {
	GetUser(ctx context.Context, id int64) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	CreateUser(ctx context.Context, u models.User) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
}

// TaskStore persists tasks. Reads resolve creator and assignee names.
type TaskStore interface {
	GetTask(ctx context.Context, id int64) (models.Task, error)
	ListTasks(ctx context.Context) ([]models.Task, error)
	ListTasksByAssignee(ctx context.Context, userID int64) ([]models.Task, error)
	CreateTask(ctx context.Context, t models.Task) (models.Task, error)
	UpdateTask(ctx context.Context, t models.Task) (models.Task, error)
	UpdateTaskStatus(ctx context.Context, id, assignee int64, status string) (bool, error)
	DeleteTask(ctx context.Context, id int64) (bool, error)
}

// UpdateStore persists progress notes.
type UpdateStore interface {
	CreateUpdate(ctx context.Context, u models.TaskUpdate) (models.TaskUpdate, error)
	ListUpdates(ctx context.Context, taskID int64) ([]models.TaskUpdate, error)
}

// ReviewStore persists manager reviews.
type ReviewStore interface {
	GetReview(ctx context.Context, id int64) (models.TaskReview, error)
	CreateReview(ctx context.Context, r models.TaskReview) (models.TaskReview, error)
	ListReviews(ctx context.Context, taskID int64) ([]models.TaskReview, error)
	UpdateReview(ctx context.Context, r models.TaskReview) (models.TaskReview, error)
	DeleteReview(ctx context.Context, id int64) (bool, error)
}

// PasswordHasher turns passwords into stored digests and checks them.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
	NeedsRehash(digest string) bool
}

// TokenIssuer signs bearer tokens for authenticated users.
type TokenIssuer interface {
	Issue(user models.User) (string, error)
}
