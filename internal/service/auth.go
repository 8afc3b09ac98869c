package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"taskmgmt/internal/models"
	"taskmgmt/internal/policy"
)

const (
	msgInvalidRole        = "Invalid role. Must be 'Employee' or 'Manager'."
	msgEmailExists        = "Email already exists."
	msgInvalidCredentials = "Invalid email or password."
)

// AuthResponse is returned by both registration and login.
type AuthResponse struct {
	UserID   int64       `json:"userID"`
	FullName string      `json:"fullName"`
	Email    string      `json:"email"`
	Role     models.Role `json:"role"`
	Token    string      `json:"token"`
}

// AuthService registers accounts and exchanges credentials for tokens.
type AuthService struct {
	users  UserStore
	hasher PasswordHasher
	tokens TokenIssuer
	logger *slog.Logger
}

// NewAuthService wires the account use cases.
func NewAuthService(users UserStore, hasher PasswordHasher, tokens TokenIssuer, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &AuthService{users: users, hasher: hasher, tokens: tokens, logger: logger}
}

// Register creates an account and signs a token for it.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (Result[*AuthResponse], error) {
	if errs := in.Validate(); len(errs) > 0 {
		return invalid[*AuthResponse](errs), nil
	}
	if !policy.IsValidRole(in.Role) {
		return Fail[*AuthResponse](KindValidation, msgInvalidRole), nil
	}

	exists, err := s.users.EmailExists(ctx, in.Email)
	if err != nil {
		return Result[*AuthResponse]{}, err
	}
	if exists {
		return Fail[*AuthResponse](KindConflict, msgEmailExists), nil
	}

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return Result[*AuthResponse]{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, models.User{
		FullName:     in.FullName,
		Email:        in.Email,
		PasswordHash: digest,
		Role:         models.Role(in.Role),
	})
	if errors.Is(err, models.ErrDuplicateEmail) {
		return Fail[*AuthResponse](KindConflict, msgEmailExists), nil
	}
	if err != nil {
		return Result[*AuthResponse]{}, err
	}

	resp, err := s.respond(user)
	if err != nil {
		return Result[*AuthResponse]{}, err
	}
	s.logger.Info("user registered", slog.Int64("user_id", user.ID), slog.String("role", string(user.Role)))
	return OK(resp, "User registered successfully."), nil
}

// Login checks the credentials and signs a token. Digests in an outdated
// format are replaced after a successful match.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (Result[*AuthResponse], error) {
	if errs := in.Validate(); len(errs) > 0 {
		return invalid[*AuthResponse](errs), nil
	}

	user, err := s.users.GetUserByEmail(ctx, in.Email)
	if errors.Is(err, models.ErrNotFound) {
		return Fail[*AuthResponse](KindUnauthorized, msgInvalidCredentials), nil
	}
	if err != nil {
		return Result[*AuthResponse]{}, err
	}
	if !s.hasher.Verify(in.Password, user.PasswordHash) {
		return Fail[*AuthResponse](KindUnauthorized, msgInvalidCredentials), nil
	}

	if s.hasher.NeedsRehash(user.PasswordHash) {
		s.rehash(ctx, user.ID, in.Password)
	}

	resp, err := s.respond(user)
	if err != nil {
		return Result[*AuthResponse]{}, err
	}
	return OK(resp, "Login successful."), nil
}

// rehash upgrades a stored digest. Failures are logged and do not fail the login.
func (s *AuthService) rehash(ctx context.Context, userID int64, password string) {
	digest, err := s.hasher.Hash(password)
	if err == nil {
		err = s.users.UpdatePasswordHash(ctx, userID, digest)
	}
	if err != nil {
		s.logger.Warn("password rehash failed", slog.Int64("user_id", userID), slog.String("error", err.Error()))
		return
	}
	s.logger.Info("password digest upgraded", slog.Int64("user_id", userID))
}

func (s *AuthService) respond(user models.User) (*AuthResponse, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResponse{
		UserID:   user.ID,
		FullName: user.FullName,
		Email:    user.Email,
		Role:     user.Role,
		Token:    token,
	}, nil
}
