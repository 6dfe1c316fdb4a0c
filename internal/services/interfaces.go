package services

import (
	"context"
	"time"

	"bank-dashboard/internal/dto"
	"bank-dashboard/internal/models"

	"github.com/shopspring/decimal"
)

// AccountServiceInterface defines account-related business operations.
// Every call is scoped to the requesting user.
type AccountServiceInterface interface {
	CreateAccount(ctx context.Context, userID int64, req *dto.CreateAccountRequest) (*models.Account, error)
	GetUserAccounts(userID int64) ([]models.Account, error)
	GetAccount(accountID, userID int64) (*models.Account, error)
	DeleteAccount(ctx context.Context, accountID, userID int64) error
	Deposit(ctx context.Context, accountID, userID int64, amount decimal.Decimal) (*models.Account, error)
	Withdraw(ctx context.Context, accountID, userID int64, amount decimal.Decimal) (*models.Account, error)
	Transfer(ctx context.Context, fromAccountID, toAccountID, userID int64, amount decimal.Decimal) (*models.Account, *models.Account, error)
}

type AuthServiceInterface interface {
	Register(req *dto.CreateUserRequest, ipAddress, userAgent string) (*models.User, error)
	Login(req *dto.LoginRequest, ipAddress, userAgent string) (*dto.LoginResponse, error)
	Logout(accessToken, ipAddress, userAgent string) error
}

// UserServiceInterface covers profile reads and self-service changes
type UserServiceInterface interface {
	GetUser(userID int64) (*models.User, error)
	ListUsers(offset, limit int) ([]*models.User, int64, error)
	UpdateUser(requestorID, userID int64, req *dto.UpdateUserRequest, ipAddress, userAgent string) (*models.User, error)
	DeleteUser(requestorID, userID int64, ipAddress, userAgent string) error
}

type TokenServiceInterface interface {
	GenerateAccessToken(user *models.User) (string, time.Time, error)
	ValidateAccessToken(tokenString string) (*models.CustomClaims, error)
	ExtractTokenFromHeader(authHeader string) (string, error)
	GetJTI(tokenString string) (string, error)
	GetTokenExpiry(tokenString string) (time.Time, error)
}

type PasswordServiceInterface interface {
	ValidatePassword(password string) error
	HashPassword(password string) (string, error)
	ComparePassword(password, hash string) bool
}

type MetricsRecorderInterface interface {
	IncrementCounter(name string, tags map[string]string)
	RecordProcessingTime(name string, duration time.Duration)
	RecordGauge(name string, value float64, tags map[string]string)
}

type AuditLoggerInterface interface {
	LogAccountCreated(ctx context.Context, accountID, userID int64, accountType, initialBalance string)
	LogAccountDeleted(ctx context.Context, accountID, userID int64)
	LogBalanceUpdate(ctx context.Context, accountID int64, operation, amount, oldBalance, newBalance string)
	LogBalanceUpdateFailed(ctx context.Context, accountID int64, operation, amount, errorMsg string)
	LogTransferCompleted(ctx context.Context, fromAccountID, toAccountID int64, amount string, durationMs int64)
	LogTransferFailed(ctx context.Context, fromAccountID, toAccountID int64, amount, errorMsg string)
	LogAuthorizationFailure(ctx context.Context, operation string, userID, accountID int64)
}
