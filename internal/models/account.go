package models

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	AccountTypeSavings = "SAVINGS"
	AccountTypeCurrent = "CURRENT"

	// BalanceScale is the number of decimal places balances are stored and
	// displayed with.
	BalanceScale = 2
)

var (
	ErrInvalidAccountType = errors.New("invalid account type")
	ErrInvalidBalance     = errors.New("balance cannot be negative")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrNonPositiveAmount  = errors.New("amount must be greater than zero")
	ErrHolderNameRequired = errors.New("account holder name is required")
)

// Account is a bank account owned by a single user.
type Account struct {
	ID                int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID            int64           `gorm:"not null;index" json:"-"`
	AccountHolderName string          `gorm:"type:varchar(100);not null;index" json:"accountHolderName"`
	Balance           decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"balance"`
	AccountType       string          `gorm:"type:varchar(20);not null" json:"accountType"`
	CreatedAt         time.Time       `gorm:"not null" json:"-"`
	UpdatedAt         time.Time       `gorm:"not null" json:"-"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = now
	}
	a.AccountType = NormalizeAccountType(a.AccountType)
	a.Balance = a.Balance.Round(BalanceScale)

	return a.Validate()
}

func (a *Account) BeforeUpdate(tx *gorm.DB) error {
	a.UpdatedAt = time.Now()
	return a.Validate()
}

func (a *Account) Validate() error {
	if a.UserID == 0 {
		return errors.New("user ID is required")
	}

	if strings.TrimSpace(a.AccountHolderName) == "" {
		return ErrHolderNameRequired
	}

	if !IsValidAccountType(a.AccountType) {
		return ErrInvalidAccountType
	}

	if a.Balance.IsNegative() {
		return ErrInvalidBalance
	}

	return nil
}

// CanWithdraw reports whether amount is positive and covered by the balance.
func (a *Account) CanWithdraw(amount decimal.Decimal) bool {
	return amount.IsPositive() && a.Balance.GreaterThanOrEqual(amount)
}

func (a *Account) Debit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrNonPositiveAmount
	}

	if a.Balance.LessThan(amount) {
		return ErrInsufficientFunds
	}

	a.Balance = a.Balance.Sub(amount)
	return nil
}

func (a *Account) Credit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrNonPositiveAmount
	}

	a.Balance = a.Balance.Add(amount)
	return nil
}

func (a *Account) IsOwnedBy(userID int64) bool {
	return a.UserID == userID
}

func (a *Account) TableName() string {
	return "accounts"
}

func IsValidAccountType(accountType string) bool {
	switch accountType {
	case AccountTypeSavings, AccountTypeCurrent:
		return true
	default:
		return false
	}
}

// NormalizeAccountType upper-cases and trims the type so "savings" and
// " SAVINGS " are both accepted.
func NormalizeAccountType(accountType string) string {
	return strings.ToUpper(strings.TrimSpace(accountType))
}
