package client

import (
	"context"
	"net/http"
	"strconv"

	"bank-dashboard/internal/dto"
)

const (
	msgRegister   = "Failed to register. Please try again."
	msgLogin      = "Failed to login. Please try again."
	msgLogout     = "Failed to logout"
	msgFetchUser  = "Failed to fetch user"
	msgFetchUsers = "Failed to fetch users"
	msgUpdateUser = "Failed to update user"
	msgDeleteUser = "Failed to delete user"
)

// UserClient covers /users, including login and logout.
type UserClient struct {
	c *Client
}

func userPath(id int64) string {
	return "/users/" + strconv.FormatInt(id, 10)
}

func (u *UserClient) Register(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error) {
	var out dto.UserResponse
	if err := u.c.call(ctx, http.MethodPost, "/users", req, &out, msgRegister); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login does not touch the session; the caller decides where to keep it.
func (u *UserClient) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	var out dto.LoginResponse
	if err := u.c.call(ctx, http.MethodPost, "/users/login", req, &out, msgLogin); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, &APIError{Status: http.StatusOK, Message: msgLogin, Err: ErrInvalidResponse}
	}
	return &out, nil
}

// Logout asks the server to revoke the current token.
func (u *UserClient) Logout(ctx context.Context) error {
	return u.c.call(ctx, http.MethodPost, "/users/logout", nil, nil, msgLogout)
}

func (u *UserClient) Get(ctx context.Context, id int64) (*dto.UserResponse, error) {
	var out dto.UserResponse
	if err := u.c.call(ctx, http.MethodGet, userPath(id), nil, &out, msgFetchUser); err != nil {
		return nil, err
	}
	return &out, nil
}

func (u *UserClient) List(ctx context.Context) ([]dto.UserResponse, error) {
	var out []dto.UserResponse
	if err := u.c.call(ctx, http.MethodGet, "/users", nil, &out, msgFetchUsers); err != nil {
		return nil, err
	}
	return out, nil
}

func (u *UserClient) Update(ctx context.Context, id int64, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	var out dto.UserResponse
	if err := u.c.call(ctx, http.MethodPut, userPath(id), req, &out, msgUpdateUser); err != nil {
		return nil, err
	}
	return &out, nil
}

func (u *UserClient) Delete(ctx context.Context, id int64) (string, error) {
	raw, err := u.c.callRaw(ctx, http.MethodDelete, userPath(id), nil, msgDeleteUser)
	if err != nil {
		return "", err
	}
	return confirmation(raw, "User deleted successfully"), nil
}
