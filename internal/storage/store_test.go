package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskmgmt/internal/models"
)

// openTestStore creates a file-backed SQLite store in a temporary directory.
func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(context.Background(), DriverSQLite, filepath.Join(t.TempDir(), "nested", "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seedUser(t *testing.T, store *Store, name, email string, role models.Role) models.User {
	t.Helper()

	u, err := store.CreateUser(context.Background(), models.User{
		FullName:     name,
		Email:        email,
		PasswordHash: "hash",
		Role:         role,
	})
	require.NoError(t, err)
	return u
}

func seedTask(t *testing.T, store *Store, title string, creator, assignee models.User) models.Task {
	t.Helper()

	task, err := store.CreateTask(context.Background(), models.Task{
		Title:       title,
		Description: "description of " + title,
		CreatedBy:   creator.ID,
		AssignedTo:  assignee.ID,
	})
	require.NoError(t, err)
	return task
}

func TestOpen_Errors(t *testing.T) {
	_, err := Open(context.Background(), DriverSQLite, "", nil)
	assert.Error(t, err)

	_, err = Open(context.Background(), "oracle", "somewhere", nil)
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestOpen_MigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "again.db")

	first, err := Open(context.Background(), DriverSQLite, path, nil)
	require.NoError(t, err)
	seedUser(t, first, "Keep Me", "keep@example.com", models.RoleManager)
	require.NoError(t, first.Close())

	second, err := Open(context.Background(), DriverSQLite, path, nil)
	require.NoError(t, err)
	defer second.Close()

	users, err := second.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.NoError(t, second.Ping(context.Background()))
}

func TestStore_Users(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	created := seedUser(t, store, "  Maria Manager ", "maria@example.com", models.RoleManager)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Maria Manager", created.FullName)
	assert.Equal(t, models.RoleManager, created.Role)
	assert.False(t, created.CreatedAt.IsZero())

	t.Run("get by id", func(t *testing.T) {
		u, err := store.GetUser(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created, u)
	})

	t.Run("get by email", func(t *testing.T) {
		u, err := store.GetUserByEmail(ctx, "maria@example.com")
		require.NoError(t, err)
		assert.Equal(t, created.ID, u.ID)

		_, err = store.GetUserByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := store.GetUser(ctx, 4242)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("email exists", func(t *testing.T) {
		exists, err := store.EmailExists(ctx, "maria@example.com")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = store.EmailExists(ctx, "other@example.com")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := store.CreateUser(ctx, models.User{
			FullName:     "Someone Else",
			Email:        "maria@example.com",
			PasswordHash: "x",
			Role:         models.RoleEmployee,
		})
		assert.ErrorIs(t, err, models.ErrDuplicateEmail)

		users, err := store.ListUsers(ctx)
		require.NoError(t, err)
		assert.Len(t, users, 1)
	})

	t.Run("email ignores case", func(t *testing.T) {
		u, err := store.GetUserByEmail(ctx, " MARIA@Example.COM ")
		require.NoError(t, err)
		assert.Equal(t, created.ID, u.ID)

		exists, err := store.EmailExists(ctx, "Maria@example.com")
		require.NoError(t, err)
		assert.True(t, exists)

		_, err = store.CreateUser(ctx, models.User{
			FullName:     "Shouting Maria",
			Email:        "MARIA@EXAMPLE.COM",
			PasswordHash: "x",
			Role:         models.RoleEmployee,
		})
		assert.ErrorIs(t, err, models.ErrDuplicateEmail)
	})

	t.Run("email stored lower case", func(t *testing.T) {
		u := seedUser(t, store, "Eli Employee", "  Eli@Example.com", models.RoleEmployee)
		assert.Equal(t, "eli@example.com", u.Email)
	})

	t.Run("update password hash", func(t *testing.T) {
		require.NoError(t, store.UpdatePasswordHash(ctx, created.ID, "new-hash"))
		u, err := store.GetUser(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "new-hash", u.PasswordHash)

		assert.ErrorIs(t, store.UpdatePasswordHash(ctx, 999, "x"), models.ErrNotFound)
	})
}

func TestStore_Tasks(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	manager := seedUser(t, store, "Maria Manager", "maria@example.com", models.RoleManager)
	emp := seedUser(t, store, "Eli Employee", "eli@example.com", models.RoleEmployee)
	other := seedUser(t, store, "Fay Employee", "fay@example.com", models.RoleEmployee)

	due := time.Date(2030, 1, 15, 12, 0, 0, 0, time.UTC)
	task, err := store.CreateTask(ctx, models.Task{
		Title:       "Write report",
		Description: "Quarterly numbers",
		DueDate:     &due,
		CreatedBy:   manager.ID,
		AssignedTo:  emp.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, task.Status)
	assert.Equal(t, "Maria Manager", task.CreatorName)
	assert.Equal(t, "Eli Employee", task.AssignedToName)
	require.NotNil(t, task.DueDate)
	assert.True(t, due.Equal(*task.DueDate))

	second := seedTask(t, store, "Second", manager, other)

	t.Run("list all newest first", func(t *testing.T) {
		tasks, err := store.ListTasks(ctx)
		require.NoError(t, err)
		require.Len(t, tasks, 2)
		assert.Equal(t, second.ID, tasks[0].ID)
		assert.Equal(t, task.ID, tasks[1].ID)
	})

	t.Run("list by assignee", func(t *testing.T) {
		tasks, err := store.ListTasksByAssignee(ctx, emp.ID)
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, task.ID, tasks[0].ID)

		tasks, err = store.ListTasksByAssignee(ctx, manager.ID)
		require.NoError(t, err)
		assert.Empty(t, tasks)
	})

	t.Run("status only update", func(t *testing.T) {
		found, err := store.UpdateTaskStatus(ctx, task.ID, emp.ID, models.StatusInProgress)
		require.NoError(t, err)
		assert.True(t, found)

		got, err := store.GetTask(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusInProgress, got.Status)
		assert.Equal(t, task.Title, got.Title)
		assert.Equal(t, task.Description, got.Description)

		found, err = store.UpdateTaskStatus(ctx, 999, emp.ID, models.StatusDone)
		require.NoError(t, err)
		assert.False(t, found)

		// Not the current assignee: nothing is written.
		found, err = store.UpdateTaskStatus(ctx, task.ID, other.ID, models.StatusDone)
		require.NoError(t, err)
		assert.False(t, found)
		got, err = store.GetTask(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusInProgress, got.Status)
	})

	t.Run("full update", func(t *testing.T) {
		updated, err := store.UpdateTask(ctx, models.Task{
			ID:          task.ID,
			Title:       "Write final report",
			Description: "Annual numbers",
			Status:      models.StatusDone,
			AssignedTo:  other.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, "Write final report", updated.Title)
		assert.Equal(t, models.StatusDone, updated.Status)
		assert.Equal(t, "Fay Employee", updated.AssignedToName)
		assert.Equal(t, manager.ID, updated.CreatedBy)
		assert.Nil(t, updated.DueDate)

		_, err = store.UpdateTask(ctx, models.Task{ID: 999, Title: "x", Status: models.StatusDone, AssignedTo: other.ID})
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("unknown assignee", func(t *testing.T) {
		_, err := store.CreateTask(ctx, models.Task{Title: "orphan", CreatedBy: manager.ID, AssignedTo: 999})
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("missing task", func(t *testing.T) {
		_, err := store.GetTask(ctx, 999)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestStore_DeleteTaskCascades(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	manager := seedUser(t, store, "Maria Manager", "maria@example.com", models.RoleManager)
	emp := seedUser(t, store, "Eli Employee", "eli@example.com", models.RoleEmployee)

	doomed := seedTask(t, store, "Doomed", manager, emp)
	kept := seedTask(t, store, "Kept", manager, emp)

	for _, taskID := range []int64{doomed.ID, kept.ID} {
		_, err := store.CreateUpdate(ctx, models.TaskUpdate{TaskID: taskID, UpdatedBy: emp.ID, Text: "progress"})
		require.NoError(t, err)
		_, err = store.CreateReview(ctx, models.TaskReview{TaskID: taskID, ReviewedBy: manager.ID, Rating: 3})
		require.NoError(t, err)
	}

	found, err := store.DeleteTask(ctx, doomed.ID)
	require.NoError(t, err)
	assert.True(t, found)

	found, err = store.DeleteTask(ctx, doomed.ID)
	require.NoError(t, err)
	assert.False(t, found)

	updates, err := store.ListUpdates(ctx, doomed.ID)
	require.NoError(t, err)
	assert.Empty(t, updates)
	reviews, err := store.ListReviews(ctx, doomed.ID)
	require.NoError(t, err)
	assert.Empty(t, reviews)

	updates, err = store.ListUpdates(ctx, kept.ID)
	require.NoError(t, err)
	assert.Len(t, updates, 1)
	reviews, err = store.ListReviews(ctx, kept.ID)
	require.NoError(t, err)
	assert.Len(t, reviews, 1)

	users, err := store.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestStore_Updates(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	manager := seedUser(t, store, "Maria Manager", "maria@example.com", models.RoleManager)
	emp := seedUser(t, store, "Eli Employee", "eli@example.com", models.RoleEmployee)
	task := seedTask(t, store, "Task", manager, emp)

	link := "https://files.example.com/report.pdf"
	first, err := store.CreateUpdate(ctx, models.TaskUpdate{TaskID: task.ID, UpdatedBy: emp.ID, Text: "started", AttachmentURL: &link})
	require.NoError(t, err)
	assert.Equal(t, "Eli Employee", first.UpdatedByName)
	require.NotNil(t, first.AttachmentURL)
	assert.Equal(t, link, *first.AttachmentURL)

	second, err := store.CreateUpdate(ctx, models.TaskUpdate{TaskID: task.ID, UpdatedBy: emp.ID, Text: "halfway"})
	require.NoError(t, err)
	assert.Nil(t, second.AttachmentURL)

	updates, err := store.ListUpdates(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, updates, 2)
	assert.Equal(t, second.ID, updates[0].ID)
	assert.Equal(t, first.ID, updates[1].ID)

	_, err = store.CreateUpdate(ctx, models.TaskUpdate{TaskID: 999, UpdatedBy: emp.ID, Text: "nowhere"})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestStore_Reviews(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	manager := seedUser(t, store, "Maria Manager", "maria@example.com", models.RoleManager)
	emp := seedUser(t, store, "Eli Employee", "eli@example.com", models.RoleEmployee)
	task := seedTask(t, store, "Task", manager, emp)

	first, err := store.CreateReview(ctx, models.TaskReview{TaskID: task.ID, ReviewedBy: manager.ID, Rating: 4, Comments: "good"})
	require.NoError(t, err)
	assert.Equal(t, "Maria Manager", first.ReviewerName)
	assert.Equal(t, 4, first.Rating)

	second, err := store.CreateReview(ctx, models.TaskReview{TaskID: task.ID, ReviewedBy: manager.ID, Rating: 2})
	require.NoError(t, err)

	reviews, err := store.ListReviews(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, second.ID, reviews[0].ID)

	t.Run("update", func(t *testing.T) {
		updated, err := store.UpdateReview(ctx, models.TaskReview{ID: first.ID, Rating: 5, Comments: "excellent"})
		require.NoError(t, err)
		assert.Equal(t, 5, updated.Rating)
		assert.Equal(t, "excellent", updated.Comments)
		assert.Equal(t, task.ID, updated.TaskID)

		_, err = store.UpdateReview(ctx, models.TaskReview{ID: 999, Rating: 1})
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("rating constraint", func(t *testing.T) {
		_, err := store.CreateReview(ctx, models.TaskReview{TaskID: task.ID, ReviewedBy: manager.ID, Rating: 6})
		assert.Error(t, err)
	})

	t.Run("delete", func(t *testing.T) {
		found, err := store.DeleteReview(ctx, second.ID)
		require.NoError(t, err)
		assert.True(t, found)

		found, err = store.DeleteReview(ctx, second.ID)
		require.NoError(t, err)
		assert.False(t, found)

		_, err = store.GetReview(ctx, second.ID)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}
