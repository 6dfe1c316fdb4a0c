package handlers

import (
	"context"
	stderrors "errors"
	"net/http"

	"bank-dashboard/internal/dto"
	"bank-dashboard/internal/errors"
	"bank-dashboard/internal/models"
	"bank-dashboard/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// AccountHandler handles account-related HTTP requests
type AccountHandler struct {
	accountService services.AccountServiceInterface
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accountService services.AccountServiceInterface) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
	}
}

// CreateAccount creates a new bank account for the authenticated user
// @Summary Create a new account
// @Description Create a SAVINGS or CURRENT account with an optional opening balance
// @Tags Accounts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateAccountRequest true "Account creation details"
// @Success 201 {object} dto.AccountResponse "Account created successfully"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001 - Invalid request body or validation error"
// @Failure 401 {object} errors.ErrorResponse "AUTH_002 - Missing or invalid authentication"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /accounts [post]
func (h *AccountHandler) CreateAccount(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	var req dto.CreateAccountRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	account, err := h.accountService.CreateAccount(c.Request().Context(), userID, &req)
	if err != nil {
		return h.sendAccountError(c, err)
	}

	return c.JSON(http.StatusCreated, dto.NewAccountResponse(account))
}

// GetAccount retrieves a specific account by ID
// @Summary Get account by ID
// @Tags Accounts
// @Security BearerAuth
// @Produce json
// @Param id path int true "Account ID"
// @Success 200 {object} dto.AccountResponse "Account details"
// @Failure 400 {object} errors.ErrorResponse "ACCOUNT_003 - Invalid account ID"
// @Failure 403 {object} errors.ErrorResponse "ACCOUNT_004 - Account belongs to another user"
// @Failure 404 {object} errors.ErrorResponse "ACCOUNT_001 - Account not found"
// @Router /accounts/{id} [get]
func (h *AccountHandler) GetAccount(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	accountID, err := parseIDParam(c, "id")
	if err != nil {
		return SendError(c, errors.AccountInvalidID)
	}

	account, err := h.accountService.GetAccount(accountID, userID)
	if err != nil {
		return h.sendAccountError(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewAccountResponse(account))
}

// GetUserAccounts retrieves all accounts for the authenticated user
// @Summary Get all user accounts
// @Tags Accounts
// @Security BearerAuth
// @Produce json
// @Success 200 {array} dto.AccountResponse "List of the caller's accounts"
// @Failure 401 {object} errors.ErrorResponse "AUTH_002 - Missing or invalid authentication"
// @Router /accounts [get]
func (h *AccountHandler) GetUserAccounts(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	accounts, err := h.accountService.GetUserAccounts(userID)
	if err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewAccountListResponse(accounts))
}

// DeleteAccount removes an account owned by the caller
// @Summary Delete account
// @Tags Accounts
// @Security BearerAuth
// @Produce json
// @Param id path int true "Account ID"
// @Success 200 {object} dto.MessageResponse "Account deleted successfully"
// @Failure 403 {object} errors.ErrorResponse "ACCOUNT_004 - Account belongs to another user"
// @Failure 404 {object} errors.ErrorResponse "ACCOUNT_001 - Account not found"
// @Router /accounts/{id} [delete]
func (h *AccountHandler) DeleteAccount(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	accountID, err := parseIDParam(c, "id")
	if err != nil {
		return SendError(c, errors.AccountInvalidID)
	}

	if err := h.accountService.DeleteAccount(c.Request().Context(), accountID, userID); err != nil {
		return h.sendAccountError(c, err)
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Account deleted successfully"})
}

// Deposit credits an account
// @Summary Deposit
// @Tags Accounts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Account ID"
// @Param request body dto.AmountRequest true "Amount to deposit"
// @Success 200 {object} dto.AccountResponse "Updated account"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001 - Amount must be positive with at most two decimals"
// @Failure 403 {object} errors.ErrorResponse "ACCOUNT_004 - Account belongs to another user"
// @Failure 404 {object} errors.ErrorResponse "ACCOUNT_001 - Account not found"
// @Router /accounts/{id}/deposit [put]
func (h *AccountHandler) Deposit(c echo.Context) error {
	return h.updateBalance(c, h.accountService.Deposit)
}

// Withdraw debits an account, refusing to overdraw it
// @Summary Withdraw
// @Tags Accounts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Account ID"
// @Param request body dto.AmountRequest true "Amount to withdraw"
// @Success 200 {object} dto.AccountResponse "Updated account"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001 - Amount must be positive with at most two decimals"
// @Failure 422 {object} errors.ErrorResponse "ACCOUNT_002 - Insufficient balance"
// @Router /accounts/{id}/withdraw [put]
func (h *AccountHandler) Withdraw(c echo.Context) error {
	return h.updateBalance(c, h.accountService.Withdraw)
}

type balanceFunc func(ctx context.Context, accountID, userID int64, amount decimal.Decimal) (*models.Account, error)

func (h *AccountHandler) updateBalance(c echo.Context, apply balanceFunc) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	accountID, err := parseIDParam(c, "id")
	if err != nil {
		return SendError(c, errors.AccountInvalidID)
	}

	var req dto.AmountRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	account, err := apply(c.Request().Context(), accountID, userID, req.Amount)
	if err != nil {
		return h.sendAccountError(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewAccountResponse(account))
}

// Transfer moves funds between two of the caller's accounts
// @Summary Transfer between accounts
// @Tags Accounts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.TransferRequest true "Transfer details"
// @Success 200 {object} dto.TransferResponse "Both accounts after the transfer"
// @Failure 400 {object} errors.ErrorResponse "TRANSACTION_002 - Cannot transfer to the same account"
// @Failure 422 {object} errors.ErrorResponse "ACCOUNT_002 - Insufficient balance"
// @Router /accounts/transfer [post]
func (h *AccountHandler) Transfer(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	var req dto.TransferRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if req.FromAccountID != 0 && req.FromAccountID == req.ToAccountID {
		return SendError(c, errors.TransactionSameAccount)
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	from, to, err := h.accountService.Transfer(c.Request().Context(), req.FromAccountID, req.ToAccountID, userID, req.Amount)
	if err != nil {
		return h.sendAccountError(c, err)
	}

	return c.JSON(http.StatusOK, dto.TransferResponse{
		From: dto.NewAccountResponse(from),
		To:   dto.NewAccountResponse(to),
	})
}

func (h *AccountHandler) sendAccountError(c echo.Context, err error) error {
	switch {
	case stderrors.Is(err, services.ErrAccountNotFound):
		return SendError(c, errors.AccountNotFound)
	case stderrors.Is(err, services.ErrUnauthorized):
		return SendError(c, errors.AccountOperationNotPermitted)
	case stderrors.Is(err, services.ErrInsufficientFunds):
		return SendError(c, errors.AccountInsufficientBalance)
	case stderrors.Is(err, services.ErrInvalidAmount):
		return SendError(c, errors.TransactionInvalidAmount)
	case stderrors.Is(err, services.ErrSameAccountTransfer):
		return SendError(c, errors.TransactionSameAccount)
	case stderrors.Is(err, services.ErrInvalidAccountType):
		return SendError(c, errors.AccountInvalidType)
	case stderrors.Is(err, services.ErrInvalidBalance):
		return SendError(c, errors.ValidationOutOfRange, errors.WithDetails("balance: must be zero or positive with at most two decimal places"))
	case stderrors.Is(err, services.ErrHolderNameRequired):
		return SendError(c, errors.ValidationRequiredField, errors.WithDetails("accountHolderName: is required"))
	}
	return SendSystemError(c, err)
}
