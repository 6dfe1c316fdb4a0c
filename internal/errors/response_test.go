package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ResponseTestSuite struct {
	suite.Suite
}

func TestResponseTestSuite(t *testing.T) {
	suite.Run(t, new(ResponseTestSuite))
}

func (s *ResponseTestSuite) TestNewErrorResponse_Defaults() {
	resp := NewErrorResponse(AccountNotFound, "trace-1")

	s.Equal("ACCOUNT_001", resp.Error.Code)
	s.Equal("Account not found", resp.Error.Message)
	s.Equal("trace-1", resp.Error.TraceID)
	s.Empty(resp.Error.Details)
}

func (s *ResponseTestSuite) TestNewErrorResponse_Options() {
	resp := NewErrorResponse(AccountInsufficientBalance, "trace-2",
		WithMessage("balance too low"),
		WithDetails("amount: 150.00", "balance: 100.00"),
	)

	s.Equal("balance too low", resp.Error.Message)
	s.Equal([]string{"amount: 150.00", "balance: 100.00"}, resp.Error.Details)
}

func (s *ResponseTestSuite) TestNewValidationError_SortedDetails() {
	resp := NewValidationError(map[string]string{
		"balance":           "must not be negative",
		"accountHolderName": "is required",
	}, "trace-3")

	s.Equal(string(ValidationGeneral), resp.Error.Code)
	s.Equal([]string{"accountHolderName: is required", "balance: must not be negative"}, resp.Error.Details)
}

func (s *ResponseTestSuite) TestWrapSystemError_HidesCause() {
	cause := stderrors.New("pq: connection refused")
	resp, err := WrapSystemError(cause, "trace-4")

	s.Equal(cause, err)
	s.Equal(string(SystemInternalError), resp.Error.Code)
	s.NotContains(resp.Error.Message, "pq")

	resp, err = WrapDatabaseError(cause, "trace-5")
	s.Equal(cause, err)
	s.Equal(http.StatusInternalServerError, resp.GetHTTPStatus())
}

func (s *ResponseTestSuite) TestGetHTTPStatus() {
	testCases := []struct {
		code   ErrorCode
		status int
	}{
		{ValidationGeneral, http.StatusBadRequest},
		{TransactionInvalidAmount, http.StatusBadRequest},
		{TransactionSameAccount, http.StatusBadRequest},
		{AuthInvalidCredentials, http.StatusUnauthorized},
		{AuthExpiredToken, http.StatusUnauthorized},
		{AuthAccountLocked, http.StatusForbidden},
		{AccountOperationNotPermitted, http.StatusForbidden},
		{AccountNotFound, http.StatusNotFound},
		{UserAlreadyExists, http.StatusConflict},
		{AccountInsufficientBalance, http.StatusUnprocessableEntity},
		{SystemRateLimitExceeded, http.StatusTooManyRequests},
		{SystemServiceUnavailable, http.StatusServiceUnavailable},
		{SystemDatabaseError, http.StatusInternalServerError},
		{"UNKNOWN", http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		s.Run(string(tc.code), func() {
			s.Equal(tc.status, GetHTTPStatus(tc.code))
		})
	}
}

func (s *ResponseTestSuite) TestClientServerClassification() {
	s.True(NewErrorResponse(UserNotFound, "").IsClientError())
	s.False(NewErrorResponse(UserNotFound, "").IsServerError())
	s.True(NewErrorResponse(SystemInternalError, "").IsServerError())
}

func (s *ResponseTestSuite) TestJSONShape() {
	data, err := json.Marshal(NewErrorResponse(AuthMissingToken, "abc"))
	s.Require().NoError(err)
	s.JSONEq(`{"error":{"code":"AUTH_002","message":"Authorization token is required","trace_id":"abc"}}`, string(data))
}

func (s *ResponseTestSuite) TestString() {
	s.Equal("[USER_001] User not found (trace: t)", NewErrorResponse(UserNotFound, "t").String())
}
