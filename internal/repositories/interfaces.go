package repositories

import (
	"time"

	"bank-dashboard/internal/models"

	"github.com/shopspring/decimal"
)

// BalanceOperation selects the direction of a balance update.
type BalanceOperation string

const (
	BalanceCredit BalanceOperation = "credit"
	BalanceDebit  BalanceOperation = "debit"
)

type AccountRepositoryInterface interface {
	Create(account *models.Account) error
	GetByID(id int64) (*models.Account, error)
	GetByUserID(userID int64) ([]models.Account, error)
	Delete(id int64) error
	UpdateBalance(accountID int64, amount decimal.Decimal, op BalanceOperation) (*models.Account, error)
	ExecuteAtomicTransfer(fromAccountID, toAccountID int64, amount decimal.Decimal) (from, to *models.Account, err error)
}

type UserRepositoryInterface interface {
	Create(user *models.User) error
	GetByID(id int64) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	List(offset, limit int) ([]*models.User, int64, error)
	UpdateFields(userID int64, fields map[string]interface{}) error
	UpdateFailedLoginAttempts(user *models.User) error
	RecordSuccessfulLogin(userID int64) error
	Delete(userID int64) error
}

type AuditLogRepositoryInterface interface {
	Create(log *models.AuditLog) error
	DeleteOlderThan(duration time.Duration) (int64, error)
}

type BlacklistedTokenRepositoryInterface interface {
	Create(token *models.BlacklistedToken) error
	GetByJTI(jti string) (*models.BlacklistedToken, error)
	DeleteExpired() (int64, error)
}
