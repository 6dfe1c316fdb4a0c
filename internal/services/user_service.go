package services

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"bank-dashboard/internal/dto"
	"bank-dashboard/internal/models"
	"bank-dashboard/internal/repositories"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrForbidden    = errors.New("operation not permitted on another user")
)

type userService struct {
	userRepo        repositories.UserRepositoryInterface
	auditRepo       repositories.AuditLogRepositoryInterface
	passwordService PasswordServiceInterface
	logger          *slog.Logger
}

func NewUserService(
	userRepo repositories.UserRepositoryInterface,
	auditRepo repositories.AuditLogRepositoryInterface,
	passwordService PasswordServiceInterface,
	logger *slog.Logger,
) UserServiceInterface {
	return &userService{
		userRepo:        userRepo,
		auditRepo:       auditRepo,
		passwordService: passwordService,
		logger:          logger,
	}
}

func (s *userService) GetUser(userID int64) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *userService) ListUsers(offset, limit int) ([]*models.User, int64, error) {
	users, total, err := s.userRepo.List(offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// UpdateUser changes the caller's own email and/or password.
func (s *userService) UpdateUser(requestorID, userID int64, req *dto.UpdateUserRequest, ipAddress, userAgent string) (*models.User, error) {
	if requestorID != userID {
		return nil, ErrForbidden
	}

	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	changed := make([]string, 0, 2)

	if email := strings.TrimSpace(req.Email); email != "" && !strings.EqualFold(email, user.Email) {
		existing, err := s.userRepo.GetByEmail(email)
		if err == nil && existing.ID != user.ID {
			return nil, ErrEmailTaken
		}
		if err != nil && !errors.Is(err, repositories.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		updates["email"] = email
		changed = append(changed, "email")
	}

	if req.Password != "" {
		if err := s.passwordService.ValidatePassword(req.Password); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrWeakPassword, err)
		}
		hash, err := s.passwordService.HashPassword(req.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		updates["password_hash"] = hash
		changed = append(changed, "password")
	}

	if len(updates) == 0 {
		return user, nil
	}

	if err := s.userRepo.UpdateFields(userID, updates); err != nil {
		switch {
		case errors.Is(err, repositories.ErrEmailAlreadyExists):
			return nil, ErrEmailTaken
		case errors.Is(err, repositories.ErrUserNotFound):
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	createAuditLog(s.auditRepo, s.logger, &userID, models.AuditActionUserUpdated, models.AuditResourceUser,
		idString(userID), ipAddress, userAgent, map[string]interface{}{"fields": changed})

	return s.GetUser(userID)
}

// DeleteUser removes the caller together with their accounts.
func (s *userService) DeleteUser(requestorID, userID int64, ipAddress, userAgent string) error {
	if requestorID != userID {
		return ErrForbidden
	}

	if err := s.userRepo.Delete(userID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	createAuditLog(s.auditRepo, s.logger, &userID, models.AuditActionUserDeleted, models.AuditResourceUser,
		idString(userID), ipAddress, userAgent, nil)

	return nil
}
