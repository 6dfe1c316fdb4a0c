package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"bank-dashboard/internal/dto"
	"bank-dashboard/internal/models"
	"bank-dashboard/internal/repositories"
	"bank-dashboard/internal/validation"

	"github.com/shopspring/decimal"
)

var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrUnauthorized        = errors.New("unauthorized access to account")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidBalance      = errors.New("initial balance cannot be negative")
	ErrInvalidAccountType  = errors.New("invalid account type")
	ErrHolderNameRequired  = errors.New("account holder name is required")
	ErrSameAccountTransfer = errors.New("cannot transfer to same account")
)

const (
	operationDeposit  = "deposit"
	operationWithdraw = "withdraw"
)

// accountService implements AccountServiceInterface interface
type accountService struct {
	accountRepo repositories.AccountRepositoryInterface
	metrics     MetricsRecorderInterface
	auditLogger AuditLoggerInterface
	logger      *slog.Logger
}

func NewAccountService(
	accountRepo repositories.AccountRepositoryInterface,
	metrics MetricsRecorderInterface,
	auditLogger AuditLoggerInterface,
	logger *slog.Logger,
) AccountServiceInterface {
	return &accountService{
		accountRepo: accountRepo,
		metrics:     metrics,
		auditLogger: auditLogger,
		logger:      logger,
	}
}

// CreateAccount opens an account owned by userID.
func (s *accountService) CreateAccount(ctx context.Context, userID int64, req *dto.CreateAccountRequest) (*models.Account, error) {
	holder := strings.TrimSpace(req.AccountHolderName)
	if holder == "" {
		return nil, ErrHolderNameRequired
	}

	accountType := models.NormalizeAccountType(req.AccountType)
	if !models.IsValidAccountType(accountType) {
		return nil, ErrInvalidAccountType
	}

	if req.Balance.IsNegative() || !validation.HasMoneyScale(req.Balance) {
		return nil, ErrInvalidBalance
	}

	account := &models.Account{
		UserID:            userID,
		AccountHolderName: holder,
		Balance:           req.Balance,
		AccountType:       accountType,
	}

	if err := s.accountRepo.Create(account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.metrics.IncrementCounter("account_created", map[string]string{"account_type": accountType})
	s.auditLogger.LogAccountCreated(ctx, account.ID, userID, accountType, account.Balance.StringFixed(models.BalanceScale))

	return account, nil
}

func (s *accountService) GetUserAccounts(userID int64) ([]models.Account, error) {
	accounts, err := s.accountRepo.GetByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user accounts: %w", err)
	}
	return accounts, nil
}

// GetAccount returns the account if userID owns it.
func (s *accountService) GetAccount(accountID, userID int64) (*models.Account, error) {
	account, err := s.accountRepo.GetByID(accountID)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if !account.IsOwnedBy(userID) {
		return nil, ErrUnauthorized
	}

	return account, nil
}

func (s *accountService) DeleteAccount(ctx context.Context, accountID, userID int64) error {
	if _, err := s.authorizedAccount(ctx, "delete", accountID, userID); err != nil {
		return err
	}

	if err := s.accountRepo.Delete(accountID); err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("failed to delete account: %w", err)
	}

	s.metrics.IncrementCounter("account_deleted", nil)
	s.auditLogger.LogAccountDeleted(ctx, accountID, userID)

	return nil
}

func (s *accountService) Deposit(ctx context.Context, accountID, userID int64, amount decimal.Decimal) (*models.Account, error) {
	return s.updateBalance(ctx, operationDeposit, accountID, userID, amount)
}

func (s *accountService) Withdraw(ctx context.Context, accountID, userID int64, amount decimal.Decimal) (*models.Account, error) {
	return s.updateBalance(ctx, operationWithdraw, accountID, userID, amount)
}

func (s *accountService) updateBalance(ctx context.Context, operation string, accountID, userID int64, amount decimal.Decimal) (*models.Account, error) {
	if !isValidAmount(amount) {
		return nil, ErrInvalidAmount
	}

	account, err := s.authorizedAccount(ctx, operation, accountID, userID)
	if err != nil {
		return nil, err
	}
	oldBalance := account.Balance

	op := repositories.BalanceCredit
	if operation == operationWithdraw {
		op = repositories.BalanceDebit
	}

	start := time.Now()
	updated, err := s.accountRepo.UpdateBalance(accountID, amount, op)
	s.metrics.RecordProcessingTime(operation, time.Since(start))
	if err != nil {
		s.metrics.IncrementCounter("account_operation", map[string]string{"operation": operation, "status": "failed"})
		s.auditLogger.LogBalanceUpdateFailed(ctx, accountID, operation, amount.String(), err.Error())

		switch {
		case errors.Is(err, repositories.ErrInsufficientFunds):
			return nil, ErrInsufficientFunds
		case errors.Is(err, repositories.ErrAccountNotFound):
			return nil, ErrAccountNotFound
		case errors.Is(err, repositories.ErrInvalidAmount):
			return nil, ErrInvalidAmount
		}
		return nil, fmt.Errorf("failed to %s: %w", operation, err)
	}

	s.metrics.IncrementCounter("account_operation", map[string]string{"operation": operation, "status": "success"})
	s.auditLogger.LogBalanceUpdate(ctx, accountID, operation, amount.String(),
		oldBalance.StringFixed(models.BalanceScale), updated.Balance.StringFixed(models.BalanceScale))

	return updated, nil
}

// Transfer moves amount between two accounts that both belong to userID.
func (s *accountService) Transfer(ctx context.Context, fromAccountID, toAccountID, userID int64, amount decimal.Decimal) (*models.Account, *models.Account, error) {
	if !isValidAmount(amount) {
		return nil, nil, ErrInvalidAmount
	}
	if fromAccountID == toAccountID {
		return nil, nil, ErrSameAccountTransfer
	}

	if _, err := s.authorizedAccount(ctx, "transfer", fromAccountID, userID); err != nil {
		return nil, nil, err
	}
	if _, err := s.authorizedAccount(ctx, "transfer", toAccountID, userID); err != nil {
		return nil, nil, err
	}

	start := time.Now()
	from, to, err := s.accountRepo.ExecuteAtomicTransfer(fromAccountID, toAccountID, amount)
	duration := time.Since(start)
	if err != nil {
		s.metrics.IncrementCounter("transfers_total", map[string]string{"status": "failed"})
		s.metrics.RecordProcessingTime("transfer_duration_failed", duration)
		s.auditLogger.LogTransferFailed(ctx, fromAccountID, toAccountID, amount.String(), err.Error())

		switch {
		case errors.Is(err, repositories.ErrInsufficientFunds):
			return nil, nil, ErrInsufficientFunds
		case errors.Is(err, repositories.ErrAccountNotFound):
			return nil, nil, ErrAccountNotFound
		case errors.Is(err, repositories.ErrSameAccount):
			return nil, nil, ErrSameAccountTransfer
		}
		return nil, nil, fmt.Errorf("failed to transfer: %w", err)
	}

	s.metrics.IncrementCounter("transfers_total", map[string]string{"status": "success"})
	s.metrics.RecordProcessingTime("transfer_duration_success", duration)
	s.metrics.RecordGauge("transfer_amount", amount.InexactFloat64(), nil)
	s.auditLogger.LogTransferCompleted(ctx, fromAccountID, toAccountID, amount.String(), duration.Milliseconds())

	return from, to, nil
}

func (s *accountService) authorizedAccount(ctx context.Context, operation string, accountID, userID int64) (*models.Account, error) {
	account, err := s.GetAccount(accountID, userID)
	if errors.Is(err, ErrUnauthorized) {
		s.auditLogger.LogAuthorizationFailure(ctx, operation, userID, accountID)
	}
	return account, err
}

func isValidAmount(amount decimal.Decimal) bool {
	return amount.IsPositive() && validation.HasMoneyScale(amount)
}
