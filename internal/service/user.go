package service

import (
	"context"
	"log/slog"

	"github.com/aidar/kickoff/internal/domain"
	"github.com/aidar/kickoff/internal/repository"
)

// UserService handles business logic for users
type UserService struct {
	userRepo repository.UserRepository
	auth     *AuthService
	matches  *MatchService
	logger   *slog.Logger
}

// NewUserService creates a new UserService
func NewUserService(
	userRepo repository.UserRepository,
	auth *AuthService,
	matches *MatchService,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		userRepo: userRepo,
		auth:     auth,
		matches:  matches,
		logger:   logger,
	}
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, domain.ErrUserNotFound
	}
	return s.userRepo.GetByID(ctx, userID)
}

// DeleteAccount removes the user from every match, deletes the matches they
// organize, revokes their tokens and deletes the account.
func (s *UserService) DeleteAccount(ctx context.Context, userID string) error {
	if _, err := s.GetByID(ctx, userID); err != nil {
		return err
	}

	if err := s.matches.RemoveUser(ctx, userID); err != nil {
		return err
	}
	if err := s.auth.RevokeAll(ctx, userID); err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return err
	}

	s.logger.Info("Account deleted", "user_id", userID)
	return nil
}
