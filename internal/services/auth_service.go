package services

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"bank-dashboard/internal/dto"
	"bank-dashboard/internal/models"
	"bank-dashboard/internal/repositories"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountLocked      = errors.New("account is locked due to too many failed attempts")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrEmailTaken         = errors.New("email already exists")
	ErrWeakPassword       = errors.New("password does not meet requirements")
)

// AuthService handles registration, login and logout
type AuthService struct {
	userRepo             repositories.UserRepositoryInterface
	auditRepo            repositories.AuditLogRepositoryInterface
	blacklistedTokenRepo repositories.BlacklistedTokenRepositoryInterface
	passwordService      PasswordServiceInterface
	tokenService         TokenServiceInterface
	metrics              MetricsRecorderInterface
	maxFailedAttempts    int
	logger               *slog.Logger
}

func NewAuthService(
	userRepo repositories.UserRepositoryInterface,
	auditRepo repositories.AuditLogRepositoryInterface,
	blacklistedTokenRepo repositories.BlacklistedTokenRepositoryInterface,
	passwordService PasswordServiceInterface,
	tokenService TokenServiceInterface,
	metrics MetricsRecorderInterface,
	maxFailedAttempts int,
	logger *slog.Logger,
) AuthServiceInterface {
	return &AuthService{
		userRepo:             userRepo,
		auditRepo:            auditRepo,
		blacklistedTokenRepo: blacklistedTokenRepo,
		passwordService:      passwordService,
		tokenService:         tokenService,
		metrics:              metrics,
		maxFailedAttempts:    maxFailedAttempts,
		logger:               logger,
	}
}

// Register creates a new user
func (s *AuthService) Register(req *dto.CreateUserRequest, ipAddress, userAgent string) (*models.User, error) {
	if _, err := s.userRepo.GetByUsername(req.Username); err == nil {
		s.auditFailedRegistration(req.Username, ipAddress, userAgent, "username_already_exists")
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	if _, err := s.userRepo.GetByEmail(req.Email); err == nil {
		s.auditFailedRegistration(req.Username, ipAddress, userAgent, "email_already_exists")
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing email: %w", err)
	}

	if err := s.passwordService.ValidatePassword(req.Password); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWeakPassword, err)
	}

	hashedPassword, err := s.passwordService.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hashedPassword,
	}

	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.IncrementCounter("user_registered", nil)
	s.createAuditLog(&user.ID, models.AuditActionRegister, models.AuditResourceUser, idString(user.ID), ipAddress, userAgent, nil)

	return user, nil
}

// Login authenticates a user by username and issues an access token
func (s *AuthService) Login(req *dto.LoginRequest, ipAddress, userAgent string) (*dto.LoginResponse, error) {
	user, err := s.userRepo.GetByUsername(req.Username)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			s.auditFailedLogin(nil, req.Username, ipAddress, userAgent, "user_not_found")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user.IsLocked() {
		s.auditFailedLogin(&user.ID, req.Username, ipAddress, userAgent, "account_locked")
		return nil, ErrAccountLocked
	}

	if !s.passwordService.ComparePassword(req.Password, user.PasswordHash) {
		user.IncrementFailedAttempts(s.maxFailedAttempts)
		if err := s.userRepo.UpdateFailedLoginAttempts(user); err != nil {
			s.logger.Error("failed to update login attempts",
				"error", err,
				"user_id", user.ID)
		}

		if user.IsLocked() {
			s.metrics.IncrementCounter("authentication_event", map[string]string{"event_type": "account_locked"})
			s.createAuditLog(&user.ID, models.AuditActionAccountLocked, models.AuditResourceUser, idString(user.ID), ipAddress, userAgent, nil)
		}

		s.auditFailedLogin(&user.ID, req.Username, ipAddress, userAgent, "invalid_password")
		return nil, ErrInvalidCredentials
	}

	if err := s.userRepo.RecordSuccessfulLogin(user.ID); err != nil {
		s.logger.Warn("failed to record successful login",
			"error", err,
			"user_id", user.ID)
	}

	token, _, err := s.tokenService.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.metrics.IncrementCounter("authentication_event", map[string]string{"event_type": "login_success"})
	s.createAuditLog(&user.ID, models.AuditActionLogin, models.AuditResourceAuth, idString(user.ID), ipAddress, userAgent, nil)

	return &dto.LoginResponse{
		User:  dto.NewUserResponse(user),
		Token: token,
	}, nil
}

// Logout revokes the access token. It never fails for a malformed or expired
// token since the client discards it either way.
func (s *AuthService) Logout(accessToken, ipAddress, userAgent string) error {
	claims, err := s.tokenService.ValidateAccessToken(accessToken)
	if err != nil {
		jti, _ := s.tokenService.GetJTI(accessToken)
		if jti != "" {
			if err := s.blacklistToken(jti, 0, time.Now().Add(24*time.Hour)); err != nil {
				s.logger.Error("failed to blacklist expired token",
					"error", err,
					"jti", jti)
			}
		}
		return nil
	}

	expiry, _ := s.tokenService.GetTokenExpiry(accessToken)
	if err := s.blacklistToken(claims.ID, claims.UserID, expiry); err != nil {
		s.logger.Error("failed to blacklist token",
			"error", err,
			"jti", claims.ID,
			"user_id", claims.UserID)
	}

	s.metrics.IncrementCounter("authentication_event", map[string]string{"event_type": "logout"})
	s.createAuditLog(&claims.UserID, models.AuditActionLogout, models.AuditResourceAuth, idString(claims.UserID), ipAddress, userAgent, nil)

	return nil
}

func (s *AuthService) blacklistToken(jti string, userID int64, expiresAt time.Time) error {
	token := &models.BlacklistedToken{
		JTI:       jti,
		UserID:    userID,
		ExpiresAt: expiresAt,
	}
	return s.blacklistedTokenRepo.Create(token)
}

func (s *AuthService) auditFailedRegistration(username, ipAddress, userAgent, reason string) {
	metadata := map[string]interface{}{
		"username": username,
		"reason":   reason,
	}
	s.createAuditLog(nil, models.AuditActionRegister, models.AuditResourceUser, "", ipAddress, userAgent, metadata)
}

func (s *AuthService) auditFailedLogin(userID *int64, username, ipAddress, userAgent, reason string) {
	s.metrics.IncrementCounter("authentication_event", map[string]string{"event_type": "login_failed"})

	metadata := map[string]interface{}{
		"username": username,
		"reason":   reason,
	}
	s.createAuditLog(userID, models.AuditActionFailedLogin, models.AuditResourceAuth, "", ipAddress, userAgent, metadata)
}

func (s *AuthService) createAuditLog(userID *int64, action, resource, resourceID, ipAddress, userAgent string, metadata map[string]interface{}) {
	createAuditLog(s.auditRepo, s.logger, userID, action, resource, resourceID, ipAddress, userAgent, metadata)
}

func createAuditLog(repo repositories.AuditLogRepositoryInterface, logger *slog.Logger, userID *int64, action, resource, resourceID, ipAddress, userAgent string, metadata map[string]interface{}) {
	log := &models.AuditLog{
		UserID:     userID,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Metadata:   metadata,
	}

	if err := repo.Create(log); err != nil {
		logger.Error("failed to create audit log",
			"error", err,
			"action", action,
			"resource", resource,
			"resource_id", resourceID)
	}
}

func idString(id int64) string {
	return strconv.FormatInt(id, 10)
}
