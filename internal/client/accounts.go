package client

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"bank-dashboard/internal/dto"

	"github.com/shopspring/decimal"
)

const (
	msgFetchAccounts = "Failed to fetch accounts"
	msgCreateAccount = "Failed to create account"
	msgDeposit       = "Failed to deposit"
	msgWithdraw      = "Failed to withdraw"
	msgDeleteAccount = "Failed to delete account"
	msgTransfer      = "Failed to transfer"
)

// AccountClient covers /accounts.
type AccountClient struct {
	c *Client
}

func accountPath(id int64, suffix string) string {
	return "/accounts/" + strconv.FormatInt(id, 10) + suffix
}

func (a *AccountClient) Create(ctx context.Context, req dto.CreateAccountRequest) (*dto.AccountResponse, error) {
	var out dto.AccountResponse
	if err := a.c.call(ctx, http.MethodPost, "/accounts", req, &out, msgCreateAccount); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListAll returns the accounts the server exposes to the caller. A null body
// is treated as an empty list.
func (a *AccountClient) ListAll(ctx context.Context) ([]dto.AccountResponse, error) {
	var out []dto.AccountResponse
	if err := a.c.call(ctx, http.MethodGet, "/accounts", nil, &out, msgFetchAccounts); err != nil {
		return nil, err
	}
	if out == nil {
		out = []dto.AccountResponse{}
	}
	return out, nil
}

func (a *AccountClient) Get(ctx context.Context, id int64) (*dto.AccountResponse, error) {
	var out dto.AccountResponse
	if err := a.c.call(ctx, http.MethodGet, accountPath(id, ""), nil, &out, msgFetchAccounts); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *AccountClient) Deposit(ctx context.Context, id int64, amount decimal.Decimal) (*dto.AccountResponse, error) {
	return a.balance(ctx, accountPath(id, "/deposit"), amount, msgDeposit)
}

// Withdraw shows a plain-text error body as is, ahead of the fallback.
func (a *AccountClient) Withdraw(ctx context.Context, id int64, amount decimal.Decimal) (*dto.AccountResponse, error) {
	acc, err := a.balance(ctx, accountPath(id, "/withdraw"), amount, msgWithdraw)
	if err != nil {
		return nil, preferText(err)
	}
	return acc, nil
}

func (a *AccountClient) balance(ctx context.Context, path string, amount decimal.Decimal, fallback string) (*dto.AccountResponse, error) {
	var out dto.AccountResponse
	if err := a.c.call(ctx, http.MethodPut, path, dto.AmountRequest{Amount: amount}, &out, fallback); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete returns the server's confirmation message.
func (a *AccountClient) Delete(ctx context.Context, id int64) (string, error) {
	raw, err := a.c.callRaw(ctx, http.MethodDelete, accountPath(id, ""), nil, msgDeleteAccount)
	if err != nil {
		return "", err
	}
	return confirmation(raw, "Account deleted successfully"), nil
}

func (a *AccountClient) Transfer(ctx context.Context, from, to int64, amount decimal.Decimal) (*dto.TransferResponse, error) {
	req := dto.TransferRequest{FromAccountID: from, ToAccountID: to, Amount: amount}
	var out dto.TransferResponse
	if err := a.c.call(ctx, http.MethodPost, "/accounts/transfer", req, &out, msgTransfer); err != nil {
		return nil, err
	}
	return &out, nil
}

// confirmation accepts {"message": ...}, a bare string or plain text.
func confirmation(raw []byte, fallback string) string {
	var msg dto.MessageResponse
	if json.Unmarshal(raw, &msg) == nil && msg.Message != "" {
		return msg.Message
	}
	var s string
	if json.Unmarshal(raw, &s) == nil && s != "" {
		return s
	}
	if text := strings.TrimSpace(string(raw)); text != "" && !json.Valid(raw) {
		return text
	}
	return fallback
}
