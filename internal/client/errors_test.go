package client

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAPIError(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		contentType string
		body        string
		wantMessage string
		wantText    string
		wantCode    string
		wantErr     error
	}{
		{
			name:        "envelope details win",
			status:      http.StatusBadRequest,
			contentType: "application/json",
			body:        `{"error":{"code":"VALIDATION_001","message":"Validation failed","details":["amount: must be greater than zero","amount: at most two decimals"]}}`,
			wantMessage: "amount: must be greater than zero; amount: at most two decimals",
			wantCode:    "VALIDATION_001",
		},
		{
			name:        "envelope message",
			status:      http.StatusUnprocessableEntity,
			contentType: "application/json",
			body:        `{"error":{"code":"ACCOUNT_002","message":"Insufficient balance"}}`,
			wantMessage: "Insufficient balance",
			wantCode:    "ACCOUNT_002",
		},
		{
			name:        "flat message",
			status:      http.StatusBadRequest,
			contentType: "application/json",
			body:        `{"message":"Account not found"}`,
			wantMessage: "Account not found",
		},
		{
			name:        "plain text",
			status:      http.StatusBadRequest,
			contentType: "text/plain",
			body:        "Insufficient funds\n",
			wantMessage: "Failed to deposit",
			wantText:    "Insufficient funds",
		},
		{
			name:        "empty body",
			status:      http.StatusInternalServerError,
			wantMessage: "Failed to deposit",
		},
		{
			name:        "json without message",
			status:      http.StatusInternalServerError,
			contentType: "application/json",
			body:        `{"status":"bad"}`,
			wantMessage: "Failed to deposit",
		},
		{
			name:        "json array",
			status:      http.StatusInternalServerError,
			contentType: "application/json",
			body:        `[1,2]`,
			wantMessage: "Failed to deposit",
		},
		{
			name:        "unauthorized",
			status:      http.StatusUnauthorized,
			contentType: "application/json",
			body:        `{"error":{"code":"AUTH_003","message":"Token has expired"}}`,
			wantMessage: "Token has expired",
			wantCode:    "AUTH_003",
			wantErr:     ErrUnauthenticated,
		},
		{
			name:        "html login page",
			status:      http.StatusOK,
			contentType: "text/html; charset=utf-8",
			body:        "<html><form>login</form></html>",
			wantMessage: "Not authenticated",
			wantErr:     ErrUnauthenticated,
		},
		{
			name:        "forbidden",
			status:      http.StatusForbidden,
			contentType: "application/json",
			body:        `{"error":{"code":"ACCOUNT_004","message":"You are not authorized to access this account"}}`,
			wantMessage: "You are not authorized to access this account",
			wantCode:    "ACCOUNT_004",
			wantErr:     ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &http.Response{StatusCode: tt.status, Header: http.Header{}}
			if tt.contentType != "" {
				resp.Header.Set("Content-Type", tt.contentType)
			}

			err := newAPIError(resp, []byte(tt.body), "Failed to deposit")

			assert.Equal(t, tt.wantMessage, err.Message)
			assert.Equal(t, tt.wantText, err.text)
			assert.Equal(t, tt.wantCode, err.Code)
			assert.Equal(t, tt.status, err.Status)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err.Unwrap())
			}
		})
	}
}

func TestIsAuthFailure(t *testing.T) {
	assert.True(t, IsAuthFailure(&APIError{Err: ErrUnauthenticated}))
	assert.True(t, IsAuthFailure(&APIError{Err: ErrForbidden}))
	assert.False(t, IsAuthFailure(&APIError{Status: 500}))
	assert.False(t, IsAuthFailure(nil))
}

func TestPreferText(t *testing.T) {
	err := preferText(&APIError{Status: 400, Message: "Failed to withdraw", text: "Insufficient balance"})
	assert.EqualError(t, err, "Insufficient balance")

	err = preferText(&APIError{Status: 500, Message: "Failed to withdraw"})
	assert.EqualError(t, err, "Failed to withdraw")
}
