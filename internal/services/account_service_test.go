package services

import (
	"context"
	"errors"
	"testing"

	"bank-dashboard/internal/dto"
	"bank-dashboard/internal/logging"
	"bank-dashboard/internal/models"
	"bank-dashboard/internal/repositories"
	"bank-dashboard/internal/repositories/repository_mocks"
	"bank-dashboard/internal/services/service_mocks"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type AccountServiceTestSuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	accountRepo *repository_mocks.MockAccountRepositoryInterface
	metrics     *service_mocks.MockMetricsRecorderInterface
	auditLogger *service_mocks.MockAuditLoggerInterface
	service     AccountServiceInterface
	ctx         context.Context
	userID      int64
}

func (s *AccountServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.accountRepo = repository_mocks.NewMockAccountRepositoryInterface(s.ctrl)
	s.metrics = service_mocks.NewMockMetricsRecorderInterface(s.ctrl)
	s.auditLogger = service_mocks.NewMockAuditLoggerInterface(s.ctrl)

	s.metrics.EXPECT().IncrementCounter(gomock.Any(), gomock.Any()).AnyTimes()
	s.metrics.EXPECT().RecordProcessingTime(gomock.Any(), gomock.Any()).AnyTimes()
	s.metrics.EXPECT().RecordGauge(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()

	s.service = NewAccountService(s.accountRepo, s.metrics, s.auditLogger, logging.Discard())
	s.ctx = context.Background()
	s.userID = 7
}

func (s *AccountServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestAccountServiceSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}

func (s *AccountServiceTestSuite) account(id int64, owner int64, balance string) *models.Account {
	return &models.Account{
		ID:                id,
		UserID:            owner,
		AccountHolderName: gofakeit.Username(),
		Balance:           decimal.RequireFromString(balance),
		AccountType:       models.AccountTypeSavings,
	}
}

func (s *AccountServiceTestSuite) TestCreateAccount_Success() {
	req := &dto.CreateAccountRequest{
		AccountHolderName: "  alice  ",
		Balance:           decimal.RequireFromString("25.50"),
		AccountType:       "current",
	}

	s.accountRepo.EXPECT().Create(gomock.Any()).DoAndReturn(func(a *models.Account) error {
		a.ID = 11
		return nil
	})
	s.auditLogger.EXPECT().LogAccountCreated(s.ctx, int64(11), s.userID, models.AccountTypeCurrent, "25.50")

	account, err := s.service.CreateAccount(s.ctx, s.userID, req)
	s.Require().NoError(err)
	s.Equal(int64(11), account.ID)
	s.Equal(s.userID, account.UserID)
	s.Equal("alice", account.AccountHolderName)
	s.Equal(models.AccountTypeCurrent, account.AccountType)
}

func (s *AccountServiceTestSuite) TestCreateAccount_Validation() {
	tests := []struct {
		name    string
		req     *dto.CreateAccountRequest
		wantErr error
	}{
		{
			name:    "negative balance",
			req:     &dto.CreateAccountRequest{AccountHolderName: "alice", Balance: decimal.NewFromInt(-5), AccountType: "SAVINGS"},
			wantErr: ErrInvalidBalance,
		},
		{
			name:    "too many decimals",
			req:     &dto.CreateAccountRequest{AccountHolderName: "alice", Balance: decimal.RequireFromString("0.001"), AccountType: "SAVINGS"},
			wantErr: ErrInvalidBalance,
		},
		{
			name:    "unknown type",
			req:     &dto.CreateAccountRequest{AccountHolderName: "alice", AccountType: "CHECKING"},
			wantErr: ErrInvalidAccountType,
		},
		{
			name:    "blank holder",
			req:     &dto.CreateAccountRequest{AccountHolderName: "   ", AccountType: "SAVINGS"},
			wantErr: ErrHolderNameRequired,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			account, err := s.service.CreateAccount(s.ctx, s.userID, tt.req)
			s.ErrorIs(err, tt.wantErr)
			s.Nil(account)
		})
	}
}

func (s *AccountServiceTestSuite) TestGetAccount_NotOwned() {
	s.accountRepo.EXPECT().GetByID(int64(3)).Return(s.account(3, 99, "10"), nil)

	account, err := s.service.GetAccount(3, s.userID)
	s.ErrorIs(err, ErrUnauthorized)
	s.Nil(account)
}

func (s *AccountServiceTestSuite) TestGetAccount_NotFound() {
	s.accountRepo.EXPECT().GetByID(int64(3)).Return(nil, repositories.ErrAccountNotFound)

	_, err := s.service.GetAccount(3, s.userID)
	s.ErrorIs(err, ErrAccountNotFound)
}

func (s *AccountServiceTestSuite) TestGetUserAccounts() {
	accounts := []models.Account{*s.account(1, s.userID, "1"), *s.account(2, s.userID, "2")}
	s.accountRepo.EXPECT().GetByUserID(s.userID).Return(accounts, nil)

	got, err := s.service.GetUserAccounts(s.userID)
	s.NoError(err)
	s.Len(got, 2)
}

func (s *AccountServiceTestSuite) TestDeposit_Success() {
	s.accountRepo.EXPECT().GetByID(int64(1)).Return(s.account(1, s.userID, "100.00"), nil)
	s.accountRepo.EXPECT().UpdateBalance(int64(1), decimal.NewFromInt(50), repositories.BalanceCredit).
		Return(s.account(1, s.userID, "150.00"), nil)
	s.auditLogger.EXPECT().LogBalanceUpdate(s.ctx, int64(1), "deposit", "50", "100.00", "150.00")

	account, err := s.service.Deposit(s.ctx, 1, s.userID, decimal.NewFromInt(50))
	s.Require().NoError(err)
	s.True(account.Balance.Equal(decimal.NewFromInt(150)))
}

func (s *AccountServiceTestSuite) TestWithdraw_InsufficientFunds() {
	amount := decimal.NewFromInt(150)
	s.accountRepo.EXPECT().GetByID(int64(1)).Return(s.account(1, s.userID, "100.00"), nil)
	s.accountRepo.EXPECT().UpdateBalance(int64(1), amount, repositories.BalanceDebit).
		Return(nil, repositories.ErrInsufficientFunds)
	s.auditLogger.EXPECT().LogBalanceUpdateFailed(s.ctx, int64(1), "withdraw", "150", gomock.Any())

	account, err := s.service.Withdraw(s.ctx, 1, s.userID, amount)
	s.ErrorIs(err, ErrInsufficientFunds)
	s.Nil(account)
}

func (s *AccountServiceTestSuite) TestWithdraw_InvalidAmountMakesNoCalls() {
	for _, amount := range []string{"0", "-1", "0.001"} {
		_, err := s.service.Withdraw(s.ctx, 1, s.userID, decimal.RequireFromString(amount))
		s.ErrorIs(err, ErrInvalidAmount, amount)
	}
}

func (s *AccountServiceTestSuite) TestWithdraw_NotOwnedIsAudited() {
	s.accountRepo.EXPECT().GetByID(int64(1)).Return(s.account(1, 99, "100.00"), nil)
	s.auditLogger.EXPECT().LogAuthorizationFailure(s.ctx, "withdraw", s.userID, int64(1))

	_, err := s.service.Withdraw(s.ctx, 1, s.userID, decimal.NewFromInt(5))
	s.ErrorIs(err, ErrUnauthorized)
}

func (s *AccountServiceTestSuite) TestWithdraw_RepositoryFailureIsWrapped() {
	s.accountRepo.EXPECT().GetByID(int64(1)).Return(s.account(1, s.userID, "100.00"), nil)
	s.accountRepo.EXPECT().UpdateBalance(int64(1), gomock.Any(), repositories.BalanceDebit).
		Return(nil, errors.New("connection reset"))
	s.auditLogger.EXPECT().LogBalanceUpdateFailed(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any())

	_, err := s.service.Withdraw(s.ctx, 1, s.userID, decimal.NewFromInt(5))
	s.Error(err)
	s.Contains(err.Error(), "failed to withdraw")
}

func (s *AccountServiceTestSuite) TestDeleteAccount() {
	s.accountRepo.EXPECT().GetByID(int64(4)).Return(s.account(4, s.userID, "0"), nil)
	s.accountRepo.EXPECT().Delete(int64(4)).Return(nil)
	s.auditLogger.EXPECT().LogAccountDeleted(s.ctx, int64(4), s.userID)

	s.NoError(s.service.DeleteAccount(s.ctx, 4, s.userID))
}

func (s *AccountServiceTestSuite) TestDeleteAccount_NotOwned() {
	s.accountRepo.EXPECT().GetByID(int64(4)).Return(s.account(4, 99, "0"), nil)
	s.auditLogger.EXPECT().LogAuthorizationFailure(s.ctx, "delete", s.userID, int64(4))

	s.ErrorIs(s.service.DeleteAccount(s.ctx, 4, s.userID), ErrUnauthorized)
}

func (s *AccountServiceTestSuite) TestTransfer_Success() {
	amount := decimal.NewFromFloat(gofakeit.Price(1, 50)).Round(2)
	s.accountRepo.EXPECT().GetByID(int64(1)).Return(s.account(1, s.userID, "100.00"), nil)
	s.accountRepo.EXPECT().GetByID(int64(2)).Return(s.account(2, s.userID, "0"), nil)
	s.accountRepo.EXPECT().ExecuteAtomicTransfer(int64(1), int64(2), amount).
		Return(s.account(1, s.userID, "90.00"), s.account(2, s.userID, "10.00"), nil)
	s.auditLogger.EXPECT().LogTransferCompleted(s.ctx, int64(1), int64(2), amount.String(), gomock.Any())

	from, to, err := s.service.Transfer(s.ctx, 1, 2, s.userID, amount)
	s.Require().NoError(err)
	s.Equal(int64(1), from.ID)
	s.Equal(int64(2), to.ID)
}

func (s *AccountServiceTestSuite) TestTransfer_SameAccount() {
	_, _, err := s.service.Transfer(s.ctx, 1, 1, s.userID, decimal.NewFromInt(1))
	s.ErrorIs(err, ErrSameAccountTransfer)
}

func (s *AccountServiceTestSuite) TestTransfer_DestinationNotOwned() {
	s.accountRepo.EXPECT().GetByID(int64(1)).Return(s.account(1, s.userID, "100.00"), nil)
	s.accountRepo.EXPECT().GetByID(int64(2)).Return(s.account(2, 99, "0"), nil)
	s.auditLogger.EXPECT().LogAuthorizationFailure(s.ctx, "transfer", s.userID, int64(2))

	_, _, err := s.service.Transfer(s.ctx, 1, 2, s.userID, decimal.NewFromInt(1))
	s.ErrorIs(err, ErrUnauthorized)
}

func (s *AccountServiceTestSuite) TestTransfer_InsufficientFunds() {
	amount := decimal.NewFromInt(500)
	s.accountRepo.EXPECT().GetByID(int64(1)).Return(s.account(1, s.userID, "100.00"), nil)
	s.accountRepo.EXPECT().GetByID(int64(2)).Return(s.account(2, s.userID, "0"), nil)
	s.accountRepo.EXPECT().ExecuteAtomicTransfer(int64(1), int64(2), amount).
		Return(nil, nil, repositories.ErrInsufficientFunds)
	s.auditLogger.EXPECT().LogTransferFailed(s.ctx, int64(1), int64(2), "500", gomock.Any())

	_, _, err := s.service.Transfer(s.ctx, 1, 2, s.userID, amount)
	s.ErrorIs(err, ErrInsufficientFunds)
}
