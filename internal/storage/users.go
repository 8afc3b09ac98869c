package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"taskmgmt/internal/models"
)

const userColumns = `id, full_name, email, password_hash, role, created_at`

func scanUser(row scanner) (models.User, error) {
	var (
		u    models.User
		role string
	)
	if err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &role, &u.CreatedAt); err != nil {
		return models.User{}, err
	}
	u.Role = models.Role(role)
	return u, nil
}

// GetUser fetches a user by id.
func (s *Store) GetUser(ctx context.Context, id int64) (models.User, error) {
	u, err := scanUser(s.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, models.ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// normalizeEmail is the stored form of an address. Emails compare without
// regard to case.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// GetUserByEmail fetches a user by email, ignoring case.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	u, err := scanUser(s.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = ?`, normalizeEmail(email)))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, models.ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// EmailExists reports whether any user already uses email in any letter case.
func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := s.queryRow(ctx, `SELECT COUNT(1) FROM users WHERE lower(email) = ?`, normalizeEmail(email)).Scan(&count); err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	return count > 0, nil
}

// CreateUser inserts a user and returns the stored row.
func (s *Store) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	id, err := s.insert(ctx, `INSERT INTO users(full_name, email, password_hash, role) VALUES(?, ?, ?, ?) RETURNING id`,
		strings.TrimSpace(u.FullName), normalizeEmail(u.Email), u.PasswordHash, string(u.Role))
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, models.ErrDuplicateEmail
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return s.GetUser(ctx, id)
}

// ListUsers returns every user ordered by id.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdatePasswordHash replaces the stored credential digest.
func (s *Store) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	res, err := s.exec(ctx, `UPDATE users SET password_hash = ? WHERE id = ?`, hash, id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	found, err := affected(res)
	if err != nil {
		return err
	}
	if !found {
		return models.ErrNotFound
	}
	return nil
}
