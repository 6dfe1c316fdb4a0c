package dto

import (
	"bank-dashboard/internal/models"

	"github.com/shopspring/decimal"
)

// Account Request DTOs

// CreateAccountRequest represents the request payload for creating a new account
type CreateAccountRequest struct {
	AccountHolderName string          `json:"accountHolderName" validate:"required,max=100"`
	Balance           decimal.Decimal `json:"balance" validate:"non_negative_amount,money"`
	AccountType       string          `json:"accountType" validate:"required,account_type"`
}

// AmountRequest is the body of deposit and withdraw calls
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"positive_amount,money"`
}

// TransferRequest moves funds between two accounts owned by the caller
type TransferRequest struct {
	FromAccountID int64           `json:"fromAccountId" validate:"required,gt=0"`
	ToAccountID   int64           `json:"toAccountId" validate:"required,gt=0,nefield=FromAccountID"`
	Amount        decimal.Decimal `json:"amount" validate:"positive_amount,money"`
}

// Account Response DTOs

// AccountResponse represents a single account in API responses
type AccountResponse struct {
	ID                int64           `json:"id"`
	AccountHolderName string          `json:"accountHolderName"`
	Balance           decimal.Decimal `json:"balance"`
	AccountType       string          `json:"accountType"`
}

// TransferResponse carries both accounts after a transfer
type TransferResponse struct {
	From AccountResponse `json:"from"`
	To   AccountResponse `json:"to"`
}

// MessageResponse represents a simple message response
type MessageResponse struct {
	Message string `json:"message"`
}

// NewAccountResponse maps a stored account onto its API representation.
func NewAccountResponse(account *models.Account) AccountResponse {
	return AccountResponse{
		ID:                account.ID,
		AccountHolderName: account.AccountHolderName,
		Balance:           account.Balance.Round(models.BalanceScale),
		AccountType:       account.AccountType,
	}
}

// NewAccountListResponse always returns a non-nil slice so an empty list
// encodes as [].
func NewAccountListResponse(accounts []models.Account) []AccountResponse {
	out := make([]AccountResponse, 0, len(accounts))
	for i := range accounts {
		out = append(out, NewAccountResponse(&accounts[i]))
	}
	return out
}

// NewUserResponse maps a stored user onto its API representation.
func NewUserResponse(user *models.User) UserResponse {
	return UserResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	}
}
