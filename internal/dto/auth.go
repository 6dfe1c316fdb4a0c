package dto

// User Request DTOs

// CreateUserRequest contains user registration data
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,username"`
	Password string `json:"password" validate:"required"`
	Email    string `json:"email" validate:"required,email,max=255"`
}

// UpdateUserRequest carries the fields a user may change on their own
// profile. Empty fields are left untouched.
type UpdateUserRequest struct {
	Email    string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Password string `json:"password,omitempty"`
}

// LoginRequest contains login credentials
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// User Response DTOs

// UserResponse is the public view of a user
type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// LoginResponse is returned on successful login
type LoginResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}
