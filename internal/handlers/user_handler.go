package handlers

import (
	stderrors "errors"
	"net/http"
	"strconv"
	"strings"

	"bank-dashboard/internal/dto"
	"bank-dashboard/internal/errors"
	"bank-dashboard/internal/services"

	"github.com/labstack/echo/v4"
)

// UserHandler serves registration, login/logout and the user resource
type UserHandler struct {
	authService services.AuthServiceInterface
	userService services.UserServiceInterface
}

// NewUserHandler creates a new user handler
func NewUserHandler(authService services.AuthServiceInterface, userService services.UserServiceInterface) *UserHandler {
	return &UserHandler{
		authService: authService,
		userService: userService,
	}
}

// Register handles user registration
// @Summary Register a new user
// @Tags Users
// @Accept json
// @Produce json
// @Param request body dto.CreateUserRequest true "Registration details"
// @Success 201 {object} dto.UserResponse "User created"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001 / VALIDATION_006"
// @Failure 409 {object} errors.ErrorResponse "USER_002 Username already exists / USER_003 Email already exists"
// @Router /users [post]
func (h *UserHandler) Register(c echo.Context) error {
	var req dto.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	if err := c.Validate(req); err != nil {
		return err
	}

	user, err := h.authService.Register(&req, getClientIP(c), c.Request().UserAgent())
	if err != nil {
		return h.sendUserError(c, err)
	}

	return c.JSON(http.StatusCreated, dto.NewUserResponse(user))
}

// Login handles user authentication
// @Summary Login
// @Description Authenticate with username and password and receive a bearer token
// @Tags Users
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.LoginResponse "User and token"
// @Failure 401 {object} errors.ErrorResponse "AUTH_001 - Invalid username or password"
// @Failure 403 {object} errors.ErrorResponse "AUTH_006 - Account locked"
// @Router /users/login [post]
func (h *UserHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	resp, err := h.authService.Login(&req, getClientIP(c), c.Request().UserAgent())
	if err != nil {
		return h.sendUserError(c, err)
	}

	return c.JSON(http.StatusOK, resp)
}

// Logout revokes the bearer token
// @Summary Logout
// @Tags Users
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.MessageResponse "Logout successful"
// @Failure 401 {object} errors.ErrorResponse "AUTH_002 or AUTH_004"
// @Router /users/logout [post]
func (h *UserHandler) Logout(c echo.Context) error {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return SendError(c, errors.AuthMissingToken)
	}

	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
		return SendError(c, errors.AuthInvalidTokenFormat)
	}

	// Always succeeds so a client can drop its session regardless.
	_ = h.authService.Logout(tokenParts[1], getClientIP(c), c.Request().UserAgent())

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Logout successful"})
}

// ListUsers pages through registered users
// @Summary List users
// @Tags Users
// @Security BearerAuth
// @Produce json
// @Param offset query int false "Offset" default(0)
// @Param limit query int false "Page size" default(20)
// @Success 200 {array} dto.UserResponse "Users; total in X-Total-Count"
// @Router /users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	offset, limit := pagination(c)

	users, total, err := h.userService.ListUsers(offset, limit)
	if err != nil {
		return SendSystemError(c, err)
	}

	out := make([]dto.UserResponse, 0, len(users))
	for _, user := range users {
		out = append(out, dto.NewUserResponse(user))
	}

	c.Response().Header().Set("X-Total-Count", strconv.FormatInt(total, 10))
	return c.JSON(http.StatusOK, out)
}

// GetUser returns a single user
// @Summary Get user
// @Tags Users
// @Security BearerAuth
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} dto.UserResponse
// @Failure 404 {object} errors.ErrorResponse "USER_001 - User not found"
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		return SendError(c, errors.UserInvalidID)
	}

	user, err := h.userService.GetUser(userID)
	if err != nil {
		return h.sendUserError(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// UpdateUser changes the caller's email and/or password
// @Summary Update user
// @Tags Users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param request body dto.UpdateUserRequest true "Fields to change"
// @Success 200 {object} dto.UserResponse
// @Failure 403 {object} errors.ErrorResponse "AUTH_005 - Not the caller's profile"
// @Failure 409 {object} errors.ErrorResponse "USER_003 - Email already exists"
// @Router /users/{id} [put]
func (h *UserHandler) UpdateUser(c echo.Context) error {
	requestorID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	userID, err := parseIDParam(c, "id")
	if err != nil {
		return SendError(c, errors.UserInvalidID)
	}

	var req dto.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	user, err := h.userService.UpdateUser(requestorID, userID, &req, getClientIP(c), c.Request().UserAgent())
	if err != nil {
		return h.sendUserError(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// DeleteUser removes the caller and their accounts
// @Summary Delete user
// @Tags Users
// @Security BearerAuth
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} dto.MessageResponse "User deleted successfully"
// @Failure 403 {object} errors.ErrorResponse "AUTH_005 - Not the caller's profile"
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(c echo.Context) error {
	requestorID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	userID, err := parseIDParam(c, "id")
	if err != nil {
		return SendError(c, errors.UserInvalidID)
	}

	if err := h.userService.DeleteUser(requestorID, userID, getClientIP(c), c.Request().UserAgent()); err != nil {
		return h.sendUserError(c, err)
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "User deleted successfully"})
}

func (h *UserHandler) sendUserError(c echo.Context, err error) error {
	switch {
	case stderrors.Is(err, services.ErrInvalidCredentials):
		return SendError(c, errors.AuthInvalidCredentials)
	case stderrors.Is(err, services.ErrAccountLocked):
		return SendError(c, errors.AuthAccountLocked)
	case stderrors.Is(err, services.ErrUsernameTaken):
		return SendError(c, errors.UserAlreadyExists)
	case stderrors.Is(err, services.ErrEmailTaken):
		return SendError(c, errors.UserEmailExists)
	case stderrors.Is(err, services.ErrWeakPassword):
		return SendError(c, errors.ValidationWeakPassword, errors.WithDetails(weakPasswordDetail(err)))
	case stderrors.Is(err, services.ErrUserNotFound):
		return SendError(c, errors.UserNotFound)
	case stderrors.Is(err, services.ErrForbidden):
		return SendError(c, errors.AuthInsufficientPermission)
	}
	return SendSystemError(c, err)
}

// weakPasswordDetail strips the sentinel prefix so only the policy message
// is shown.
func weakPasswordDetail(err error) string {
	msg := err.Error()
	prefix := services.ErrWeakPassword.Error() + ": "
	return "password: " + strings.TrimPrefix(msg, prefix)
}
