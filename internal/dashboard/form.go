package dashboard

import (
	"strings"

	"bank-dashboard/internal/dto"
	"bank-dashboard/internal/models"

	"github.com/shopspring/decimal"
)

// FormError is an inline validation failure. No request was sent.
type FormError struct {
	Field   string
	Message string
}

func (e *FormError) Error() string {
	return e.Field + ": " + e.Message
}

// CreateForm is the raw create-account input.
type CreateForm struct {
	AccountHolderName string
	Balance           string
	AccountType       string
}

// Request validates the form and converts it for the API.
func (f CreateForm) Request() (dto.CreateAccountRequest, error) {
	holder := strings.TrimSpace(f.AccountHolderName)
	if holder == "" {
		return dto.CreateAccountRequest{}, &FormError{Field: "accountHolderName", Message: "Account holder name is required"}
	}

	balance := decimal.Zero
	if raw := strings.TrimSpace(f.Balance); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			return dto.CreateAccountRequest{}, &FormError{Field: "balance", Message: "Balance must be a number"}
		}
		balance = parsed
	}
	if balance.IsNegative() {
		return dto.CreateAccountRequest{}, &FormError{Field: "balance", Message: "Balance cannot be negative"}
	}
	if !balance.Equal(balance.Round(models.BalanceScale)) {
		return dto.CreateAccountRequest{}, &FormError{Field: "balance", Message: "Balance can have at most two decimal places"}
	}

	accountType := strings.ToUpper(strings.TrimSpace(f.AccountType))
	if accountType != models.AccountTypeSavings && accountType != models.AccountTypeCurrent {
		return dto.CreateAccountRequest{}, &FormError{Field: "accountType", Message: "Account type must be SAVINGS or CURRENT"}
	}

	return dto.CreateAccountRequest{
		AccountHolderName: holder,
		Balance:           balance,
		AccountType:       accountType,
	}, nil
}
