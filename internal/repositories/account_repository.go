package repositories

import (
	"errors"
	"fmt"

	"bank-dashboard/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrSameAccount       = errors.New("source and destination accounts are the same")
	ErrInvalidAmount     = errors.New("amount must be greater than zero")
	ErrInvalidBalanceOp  = errors.New("invalid balance operation")
)

type accountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) AccountRepositoryInterface {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(account *models.Account) error {
	if err := r.db.Omit("User").Create(account).Error; err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (r *accountRepository) GetByID(id int64) (*models.Account, error) {
	var account models.Account
	if err := r.db.First(&account, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

func (r *accountRepository) GetByUserID(userID int64) ([]models.Account, error) {
	accounts := []models.Account{}
	if err := r.db.Where("user_id = ?", userID).Order("id ASC").Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("failed to get accounts for user: %w", err)
	}
	return accounts, nil
}

func (r *accountRepository) Delete(id int64) error {
	result := r.db.Delete(&models.Account{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete account: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// UpdateBalance credits or debits the account under a row lock and returns
// the updated row. A debit never takes the balance below zero.
func (r *accountRepository) UpdateBalance(accountID int64, amount decimal.Decimal, op BalanceOperation) (*models.Account, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	var updated *models.Account
	err := r.db.Transaction(func(tx *gorm.DB) error {
		account, err := lockAccount(tx, accountID)
		if err != nil {
			return err
		}

		if err := applyBalanceOperation(account, amount, op); err != nil {
			return err
		}

		if err := saveBalance(tx, account); err != nil {
			return err
		}

		updated = account
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ExecuteAtomicTransfer moves amount between two accounts in one database
// transaction. Rows are locked in ascending id order so concurrent transfers
// in opposite directions cannot deadlock.
func (r *accountRepository) ExecuteAtomicTransfer(fromAccountID, toAccountID int64, amount decimal.Decimal) (*models.Account, *models.Account, error) {
	if fromAccountID == toAccountID {
		return nil, nil, ErrSameAccount
	}
	if !amount.IsPositive() {
		return nil, nil, ErrInvalidAmount
	}

	var from, to *models.Account
	err := r.db.Transaction(func(tx *gorm.DB) error {
		firstID, secondID := fromAccountID, toAccountID
		if firstID > secondID {
			firstID, secondID = secondID, firstID
		}

		first, err := lockAccount(tx, firstID)
		if err != nil {
			return err
		}
		second, err := lockAccount(tx, secondID)
		if err != nil {
			return err
		}

		from, to = first, second
		if from.ID != fromAccountID {
			from, to = second, first
		}

		if err := applyBalanceOperation(from, amount, BalanceDebit); err != nil {
			return err
		}
		if err := applyBalanceOperation(to, amount, BalanceCredit); err != nil {
			return err
		}

		if err := saveBalance(tx, from); err != nil {
			return err
		}
		return saveBalance(tx, to)
	})
	if err != nil {
		return nil, nil, err
	}
	return from, to, nil
}

func lockAccount(tx *gorm.DB, id int64) (*models.Account, error) {
	var account models.Account
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&account, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to lock account %d: %w", id, err)
	}
	return &account, nil
}

func applyBalanceOperation(account *models.Account, amount decimal.Decimal, op BalanceOperation) error {
	switch op {
	case BalanceCredit:
		return account.Credit(amount)
	case BalanceDebit:
		if err := account.Debit(amount); err != nil {
			if errors.Is(err, models.ErrInsufficientFunds) {
				return ErrInsufficientFunds
			}
			return err
		}
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrInvalidBalanceOp, op)
	}
}

func saveBalance(tx *gorm.DB, account *models.Account) error {
	if err := tx.Model(account).Update("balance", account.Balance).Error; err != nil {
		return fmt.Errorf("failed to update account balance: %w", err)
	}
	return nil
}
