package models

import (
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccount_Validate(t *testing.T) {
	holder := gofakeit.Username()

	tests := []struct {
		name    string
		account Account
		wantErr error
	}{
		{
			name:    "valid savings account",
			account: Account{UserID: 1, AccountHolderName: holder, AccountType: AccountTypeSavings, Balance: decimal.RequireFromString("100.00")},
		},
		{
			name:    "valid current account with zero balance",
			account: Account{UserID: 1, AccountHolderName: holder, AccountType: AccountTypeCurrent},
		},
		{
			name:    "missing holder",
			account: Account{UserID: 1, AccountHolderName: "  ", AccountType: AccountTypeSavings},
			wantErr: ErrHolderNameRequired,
		},
		{
			name:    "unknown type",
			account: Account{UserID: 1, AccountHolderName: holder, AccountType: "CHECKING"},
			wantErr: ErrInvalidAccountType,
		},
		{
			name:    "negative balance",
			account: Account{UserID: 1, AccountHolderName: holder, AccountType: AccountTypeSavings, Balance: decimal.NewFromInt(-5)},
			wantErr: ErrInvalidBalance,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.account.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("missing user", func(t *testing.T) {
		account := Account{AccountHolderName: holder, AccountType: AccountTypeSavings}
		assert.EqualError(t, account.Validate(), "user ID is required")
	})
}

func TestAccount_Debit(t *testing.T) {
	account := Account{Balance: decimal.RequireFromString("100.00")}

	require.NoError(t, account.Debit(decimal.RequireFromString("40.25")))
	assert.True(t, account.Balance.Equal(decimal.RequireFromString("59.75")))

	assert.ErrorIs(t, account.Debit(decimal.RequireFromString("59.76")), ErrInsufficientFunds)
	assert.ErrorIs(t, account.Debit(decimal.Zero), ErrNonPositiveAmount)
	assert.ErrorIs(t, account.Debit(decimal.NewFromInt(-1)), ErrNonPositiveAmount)
	assert.True(t, account.Balance.Equal(decimal.RequireFromString("59.75")))

	require.NoError(t, account.Debit(decimal.RequireFromString("59.75")))
	assert.True(t, account.Balance.IsZero())
}

func TestAccount_Credit(t *testing.T) {
	account := Account{Balance: decimal.RequireFromString("100.00")}

	require.NoError(t, account.Credit(decimal.NewFromInt(50)))
	assert.Equal(t, "150.00", account.Balance.StringFixed(BalanceScale))

	assert.ErrorIs(t, account.Credit(decimal.Zero), ErrNonPositiveAmount)
}

func TestAccount_CanWithdraw(t *testing.T) {
	account := Account{Balance: decimal.RequireFromString("100.00")}

	assert.True(t, account.CanWithdraw(decimal.NewFromInt(100)))
	assert.True(t, account.CanWithdraw(decimal.RequireFromString("0.01")))
	assert.False(t, account.CanWithdraw(decimal.NewFromInt(150)))
	assert.False(t, account.CanWithdraw(decimal.Zero))
}

func TestAccount_IsOwnedBy(t *testing.T) {
	account := Account{UserID: 7}
	assert.True(t, account.IsOwnedBy(7))
	assert.False(t, account.IsOwnedBy(8))
}

func TestNormalizeAccountType(t *testing.T) {
	assert.Equal(t, AccountTypeSavings, NormalizeAccountType(" savings "))
	assert.Equal(t, AccountTypeCurrent, NormalizeAccountType("Current"))
	assert.True(t, IsValidAccountType(NormalizeAccountType("current")))
	assert.False(t, IsValidAccountType("checking"))
}
